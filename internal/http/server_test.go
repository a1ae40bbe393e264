package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"billtrack/internal/core"
	"billtrack/internal/service"
	"billtrack/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := service.New(store.NewMemory(), 8, time.Minute)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewServer(":0", svc, 7)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func createBill(t *testing.T, srv *Server) core.Bill {
	t.Helper()
	due := time.Now().UTC().AddDate(0, 0, 5).Format("2006-01-02")
	rec := doJSON(t, srv, http.MethodPost, "/api/bills",
		`{"name":"Electricity","amount":"80.50","dueDate":"`+due+`","category":"utilities","frequency":"monthly"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var b core.Bill
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode created bill: %v", err)
	}
	return b
}

func TestCreateAndGetBill(t *testing.T) {
	srv := newTestServer(t)
	b := createBill(t, srv)

	if b.ID == "" || b.Status != core.StatusPending {
		t.Errorf("created bill = %+v", b)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/bills/"+b.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"Electricity"`) {
		t.Errorf("get body = %s", rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/bills/does-not-exist", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing bill status = %d, want 404", rec.Code)
	}
}

func TestCreateBillValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/bills",
		`{"name":"","amount":"10","dueDate":"2026-03-20","category":"utilities","frequency":"monthly"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("blank name status = %d, want 422", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/bills", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec.Code)
	}
}

func TestListBills(t *testing.T) {
	srv := newTestServer(t)
	createBill(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/bills", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var bills []core.Bill
	if err := json.Unmarshal(rec.Body.Bytes(), &bills); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(bills) != 1 {
		t.Errorf("list = %d bills, want 1", len(bills))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/bills?q=yacht", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &bills); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(bills) != 0 {
		t.Errorf("search = %d bills, want 0", len(bills))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/bills?status=pending", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &bills); err != nil {
		t.Fatalf("decode filter: %v", err)
	}
	if len(bills) != 1 {
		t.Errorf("filter = %d bills, want 1", len(bills))
	}
}

func TestUpdateAndDeleteBill(t *testing.T) {
	srv := newTestServer(t)
	b := createBill(t, srv)

	rec := doJSON(t, srv, http.MethodPut, "/api/bills/"+b.ID, `{"name":"Power"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"Power"`) {
		t.Errorf("update body = %s", rec.Body)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/bills/"+b.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/bills/"+b.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestPaymentFlow(t *testing.T) {
	srv := newTestServer(t)
	b := createBill(t, srv)
	today := time.Now().UTC().Format("2006-01-02")

	rec := doJSON(t, srv, http.MethodPost, "/api/bills/"+b.ID+"/payments",
		`{"amount":"30","paidDate":"`+today+`","paymentMethod":"credit-card"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add payment status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/bills/"+b.ID+"/payments", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list payments status = %d", rec.Code)
	}
	var payments []core.PaymentRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &payments); err != nil {
		t.Fatalf("decode payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(payments))
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/bills/"+b.ID+"/pay", `{"paymentMethod":"auto-pay"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("pay status = %d, body %s", rec.Code, rec.Body)
	}
	var paid core.Bill
	if err := json.Unmarshal(rec.Body.Bytes(), &paid); err != nil {
		t.Fatalf("decode paid bill: %v", err)
	}
	if paid.Status != core.StatusPaid {
		t.Errorf("status after pay = %s, want paid", paid.Status)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/bills/"+b.ID+"/payments",
		`{"amount":"30","paidDate":"`+today+`","paymentMethod":"barter"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid method status = %d, want 422", rec.Code)
	}
}

func TestGenerateNextEndpoint(t *testing.T) {
	srv := newTestServer(t)
	b := createBill(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/bills/"+b.ID+"/next", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("next status = %d, body %s", rec.Code, rec.Body)
	}
	var next core.Bill
	if err := json.Unmarshal(rec.Body.Bytes(), &next); err != nil {
		t.Fatalf("decode next: %v", err)
	}
	if next.ID == b.ID {
		t.Error("next occurrence reused the source id")
	}
	want := core.NextDueDate(b.DueDate, b.Frequency)
	if next.DueDate.String() != want.String() {
		t.Errorf("next due date = %s, want %s", next.DueDate, want)
	}
}

func TestSummaryAndAnalyticsEndpoints(t *testing.T) {
	srv := newTestServer(t)
	createBill(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"totalBills":1`) {
		t.Errorf("summary body = %s", rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/analytics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics status = %d", rec.Code)
	}
	for _, key := range []string{"currentMonthSpending", "monthlyTrends", "chartData"} {
		if !strings.Contains(rec.Body.String(), key) {
			t.Errorf("analytics body missing %q", key)
		}
	}
}

func TestPaymentsInRangeEndpoint(t *testing.T) {
	srv := newTestServer(t)
	b := createBill(t, srv)
	today := time.Now().UTC().Format("2006-01-02")
	doJSON(t, srv, http.MethodPost, "/api/bills/"+b.ID+"/payments",
		`{"amount":"30","paidDate":"`+today+`","paymentMethod":"cash"}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/payments?start="+today+"&end="+today, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("range status = %d, body %s", rec.Code, rec.Body)
	}
	var payments []core.PaymentRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &payments); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("payments = %d, want 1", len(payments))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/payments?start=bad&end="+today, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad start status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/payments?start=2026-03-10&end=2026-03-01", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("inverted range status = %d, want 400", rec.Code)
	}
}

func TestExportImportEndpoints(t *testing.T) {
	srv := newTestServer(t)
	createBill(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	exported := rec.Body.String()

	fresh := newTestServer(t)
	rec = doJSON(t, fresh, http.MethodPost, "/api/import", exported)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"bills":1`) {
		t.Errorf("import stats = %s", rec.Body)
	}

	rec = doJSON(t, fresh, http.MethodPost, "/api/import", `{"payments": []}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid import status = %d, want 422", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body)
	}
	rec = doJSON(t, srv, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ready" {
		t.Errorf("readyz = %d %q", rec.Code, rec.Body)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/bills", "")

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
