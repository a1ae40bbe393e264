package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Monthly    Frequency = "monthly"
	Quarterly  Frequency = "quarterly"
	SemiAnnual Frequency = "semi-annual"
	Annual     Frequency = "annual"
)

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
	StatusPartial Status = "partial"
)

const (
	CategoryUtilities      Category = "utilities"
	CategoryRent           Category = "rent"
	CategoryMortgage       Category = "mortgage"
	CategoryInsurance      Category = "insurance"
	CategorySubscriptions  Category = "subscriptions"
	CategoryInternet       Category = "internet"
	CategoryPhone          Category = "phone"
	CategoryFood           Category = "food"
	CategoryTransportation Category = "transportation"
	CategoryHealthcare     Category = "healthcare"
	CategoryEntertainment  Category = "entertainment"
	CategoryOther          Category = "other"
)

const (
	MethodCreditCard    PaymentMethod = "credit-card"
	MethodDebitCard     PaymentMethod = "debit-card"
	MethodBankTransfer  PaymentMethod = "bank-transfer"
	MethodCash          PaymentMethod = "cash"
	MethodCheck         PaymentMethod = "check"
	MethodDigitalWallet PaymentMethod = "digital-wallet"
	MethodAutoPay       PaymentMethod = "auto-pay"
)

type (
	Frequency     string
	Status        string
	Category      string
	PaymentMethod string

	// Bill is a recurring obligation to pay a fixed amount by a due date.
	// Status is derived, never set directly by callers; PaymentHistory is
	// materialized from the payment store in recording order.
	Bill struct {
		ID             string          `json:"id"`
		Name           string          `json:"name"`
		Amount         decimal.Decimal `json:"amount"`
		DueDate        Date            `json:"dueDate"`
		Category       Category        `json:"category"`
		Frequency      Frequency       `json:"frequency"`
		Status         Status          `json:"status"`
		PaymentHistory []PaymentRecord `json:"paymentHistory"`
		Notes          string          `json:"notes,omitempty"`
		CreatedAt      time.Time       `json:"createdAt"`
		UpdatedAt      time.Time       `json:"updatedAt"`
	}

	// PaymentRecord is a single payment applied toward a bill.
	PaymentRecord struct {
		ID       string          `json:"id"`
		BillID   string          `json:"billId"`
		Amount   decimal.Decimal `json:"amount"`
		PaidDate Date            `json:"paidDate"`
		Method   PaymentMethod   `json:"paymentMethod"`
		Notes    string          `json:"notes,omitempty"`
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidMethod    = errors.New("invalid payment method")
)

// Months returns the due-date advancement step for the frequency.
func (f Frequency) Months() int {
	switch f {
	case Monthly:
		return 1
	case Quarterly:
		return 3
	case SemiAnnual:
		return 6
	case Annual:
		return 12
	}
	return 0
}

func (f Frequency) Valid() bool { return f.Months() != 0 }

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue, StatusPartial:
		return true
	}
	return false
}

func (c Category) Valid() bool {
	switch c {
	case CategoryUtilities, CategoryRent, CategoryMortgage, CategoryInsurance,
		CategorySubscriptions, CategoryInternet, CategoryPhone, CategoryFood,
		CategoryTransportation, CategoryHealthcare, CategoryEntertainment,
		CategoryOther:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodBankTransfer, MethodCash,
		MethodCheck, MethodDigitalWallet, MethodAutoPay:
		return true
	}
	return false
}

func (b Bill) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if len(b.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if b.DueDate.IsZero() {
		return ErrInvalidDate
	}
	if !b.Category.Valid() {
		return ErrInvalidCategory
	}
	if !b.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}

func (p PaymentRecord) Validate() error {
	if strings.TrimSpace(p.BillID) == "" {
		return errors.New("empty bill id")
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if p.PaidDate.IsZero() {
		return ErrInvalidDate
	}
	if !p.Method.Valid() {
		return ErrInvalidMethod
	}
	return nil
}

// TotalPaid sums the bill's recorded payments.
func (b Bill) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range b.PaymentHistory {
		total = total.Add(p.Amount)
	}
	return total
}

// Remaining returns the unpaid balance, never negative.
func (b Bill) Remaining() decimal.Decimal {
	rem := b.Amount.Sub(b.TotalPaid())
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// Clone returns a deep copy, including the payment history slice.
func (b Bill) Clone() Bill {
	out := b
	if b.PaymentHistory != nil {
		out.PaymentHistory = make([]PaymentRecord, len(b.PaymentHistory))
		copy(out.PaymentHistory, b.PaymentHistory)
	}
	return out
}
