// Package backup serializes the full bill and payment dataset to a
// portable JSON document and restores it, leaving the stores untouched
// when an import fails partway.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"billtrack/internal/core"
	"billtrack/internal/store"
)

// Version identifies the export document format.
const Version = "1.0"

// Data is the portable backup document.
type Data struct {
	Bills      []core.Bill          `json:"bills"`
	Payments   []core.PaymentRecord `json:"payments"`
	ExportDate time.Time            `json:"exportDate"`
	Version    string               `json:"version"`
}

// ImportStats reports what a successful import wrote.
type ImportStats struct {
	Bills    int `json:"bills"`
	Payments int `json:"payments"`
}

// ValidationError marks a malformed import payload. It is raised to the
// caller; the stores are never touched before validation passes.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "invalid import data: " + e.Msg
}

// Export serializes the current dataset as indented JSON.
func Export(ctx context.Context, s store.Store) ([]byte, error) {
	bills, err := s.GetBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bills: %w", err)
	}
	payments, err := s.GetPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}

	doc := Data{
		Bills:      bills,
		Payments:   payments,
		ExportDate: time.Now().UTC(),
		Version:    Version,
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return out, nil
}

// Import validates and writes a backup document. The previous dataset is
// snapshotted first; if either write fails, both stores are restored to
// the snapshot before the error is returned.
func Import(ctx context.Context, s store.Store, raw []byte) (ImportStats, error) {
	var probe struct {
		Bills    json.RawMessage `json:"bills"`
		Payments json.RawMessage `json:"payments"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ImportStats{}, &ValidationError{Msg: "not valid JSON"}
	}
	if !isJSONArray(probe.Bills) {
		return ImportStats{}, &ValidationError{Msg: "missing bills array"}
	}
	if !isJSONArray(probe.Payments) {
		return ImportStats{}, &ValidationError{Msg: "missing payments array"}
	}

	var bills []core.Bill
	if err := json.Unmarshal(probe.Bills, &bills); err != nil {
		return ImportStats{}, &ValidationError{Msg: "bills is not an array of bills"}
	}
	var payments []core.PaymentRecord
	if err := json.Unmarshal(probe.Payments, &payments); err != nil {
		return ImportStats{}, &ValidationError{Msg: "payments is not an array of payments"}
	}

	prevBills, err := s.GetBills(ctx)
	if err != nil {
		return ImportStats{}, fmt.Errorf("snapshot bills: %w", err)
	}
	prevPayments, err := s.GetPayments(ctx)
	if err != nil {
		return ImportStats{}, fmt.Errorf("snapshot payments: %w", err)
	}

	if err := s.SaveBills(ctx, bills); err != nil {
		return ImportStats{}, fmt.Errorf("import bills: %w", err)
	}
	if err := s.SavePayments(ctx, payments); err != nil {
		// Roll back the bills write so the dataset stays consistent.
		if rbErr := s.SaveBills(ctx, prevBills); rbErr != nil {
			slog.ErrorContext(ctx, "Restore after failed import failed", "error", rbErr)
		}
		if rbErr := s.SavePayments(ctx, prevPayments); rbErr != nil {
			slog.ErrorContext(ctx, "Restore after failed import failed", "error", rbErr)
		}
		return ImportStats{}, fmt.Errorf("import payments: %w", err)
	}

	slog.InfoContext(ctx, "Data imported", "bills", len(bills), "payments", len(payments))
	return ImportStats{Bills: len(bills), Payments: len(payments)}, nil
}

func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
