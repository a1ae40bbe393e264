// Package storage provides the SQLite-backed bill and payment store.
//
// Saves replace the stored list wholesale inside a transaction; the
// position column preserves recording order across replacement. Bill rows
// never embed payment history, which the service layer materializes from
// the payments table.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"billtrack/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) GetBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, amount, due_date, category, frequency, status, notes, created_at, updated_at
		FROM bills ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		var (
			b                            core.Bill
			amount, due, created, updated string
		)
		if err := rows.Scan(&b.ID, &b.Name, &amount, &due, &b.Category, &b.Frequency,
			&b.Status, &b.Notes, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		if b.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse bill amount %q: %w", amount, err)
		}
		if b.DueDate, err = core.ParseDate(due); err != nil {
			return nil, fmt.Errorf("parse bill due date: %w", err)
		}
		if b.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("parse bill created_at: %w", err)
		}
		if b.UpdatedAt, err = time.Parse(time.RFC3339, updated); err != nil {
			return nil, fmt.Errorf("parse bill updated_at: %w", err)
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return bills, nil
}

func (r *SQLiteRepository) SaveBills(ctx context.Context, bills []core.Bill) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bills tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bills`); err != nil {
		return fmt.Errorf("clear bills: %w", err)
	}
	for i, b := range bills {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bills (id, name, amount, due_date, category, frequency, status, notes, position, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.Name, b.Amount.String(), b.DueDate.String(), string(b.Category),
			string(b.Frequency), string(b.Status), b.Notes, i,
			b.CreatedAt.UTC().Format(time.RFC3339), b.UpdatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert bill %s: %w", b.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bills: %w", err)
	}

	slog.DebugContext(ctx, "Bills saved", "count", len(bills))
	return nil
}

func (r *SQLiteRepository) GetPayments(ctx context.Context) ([]core.PaymentRecord, error) {
	return r.queryPayments(ctx, `
		SELECT id, bill_id, amount, paid_date, payment_method, notes
		FROM payments ORDER BY position`)
}

func (r *SQLiteRepository) SavePayments(ctx context.Context, payments []core.PaymentRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payments tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments`); err != nil {
		return fmt.Errorf("clear payments: %w", err)
	}
	for i, p := range payments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payments (id, bill_id, amount, paid_date, payment_method, notes, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.BillID, p.Amount.String(), p.PaidDate.String(), string(p.Method), p.Notes, i)
		if err != nil {
			return fmt.Errorf("insert payment %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payments: %w", err)
	}

	slog.DebugContext(ctx, "Payments saved", "count", len(payments))
	return nil
}

// GetPaymentsByDateRange relies on ISO dates comparing lexicographically.
func (r *SQLiteRepository) GetPaymentsByDateRange(ctx context.Context, start, end core.Date) ([]core.PaymentRecord, error) {
	return r.queryPayments(ctx, `
		SELECT id, bill_id, amount, paid_date, payment_method, notes
		FROM payments WHERE paid_date >= ? AND paid_date <= ? ORDER BY position`,
		start.String(), end.String())
}

func (r *SQLiteRepository) GetPaymentsByBillID(ctx context.Context, billID string) ([]core.PaymentRecord, error) {
	return r.queryPayments(ctx, `
		SELECT id, bill_id, amount, paid_date, payment_method, notes
		FROM payments WHERE bill_id = ? ORDER BY position`, billID)
}

func (r *SQLiteRepository) queryPayments(ctx context.Context, query string, args ...any) ([]core.PaymentRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []core.PaymentRecord
	for rows.Next() {
		var (
			p            core.PaymentRecord
			amount, paid string
		)
		if err := rows.Scan(&p.ID, &p.BillID, &amount, &paid, &p.Method, &p.Notes); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse payment amount %q: %w", amount, err)
		}
		if p.PaidDate, err = core.ParseDate(paid); err != nil {
			return nil, fmt.Errorf("parse payment paid date: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}
