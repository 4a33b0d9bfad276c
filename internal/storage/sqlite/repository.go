// Package sqlite persists ledger records in SQLite. Each entity kind has its own
// table holding the record as a JSON body keyed by id.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"kakeibo/internal/core"
	"kakeibo/internal/storage"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db        *sql.DB
	accounts  *table[core.Account]
	methods   *table[core.PaymentMethod]
	txs       *table[core.Transaction]
	recurring *table[core.RecurringPayment]
	goals     *table[core.SavingsGoal]
}

var _ storage.Store = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
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

	return &Repository{
		db:        db,
		accounts:  &table[core.Account]{db: db, name: "accounts"},
		methods:   &table[core.PaymentMethod]{db: db, name: "payment_methods"},
		txs:       &table[core.Transaction]{db: db, name: "transactions"},
		recurring: &table[core.RecurringPayment]{db: db, name: "recurring_payments"},
		goals:     &table[core.SavingsGoal]{db: db, name: "savings_goals"},
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Accounts() storage.Repository[core.Account]             { return r.accounts }
func (r *Repository) PaymentMethods() storage.Repository[core.PaymentMethod] { return r.methods }
func (r *Repository) Transactions() storage.Repository[core.Transaction]     { return r.txs }
func (r *Repository) SavingsGoals() storage.Repository[core.SavingsGoal]     { return r.goals }

func (r *Repository) RecurringPayments() storage.Repository[core.RecurringPayment] {
	return r.recurring
}

// table implements storage.Repository over one entity table. name is always one of
// the constants above, never user input.
type table[T storage.Record[T]] struct {
	db   *sql.DB
	name string
}

func (t *table[T]) List(ctx context.Context) ([]T, error) {
	rows, err := t.db.QueryContext(ctx, fmt.Sprintf("SELECT body FROM %s ORDER BY seq", t.name))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		var record T
		if err := json.Unmarshal([]byte(body), &record); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t.name, err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.name, err)
	}
	return out, nil
}

func (t *table[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	record, err := t.get(ctx, t.db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	return record, true, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (t *table[T]) get(ctx context.Context, q queryer, id string) (T, error) {
	var (
		record T
		body   string
	)
	err := q.QueryRowContext(ctx, fmt.Sprintf("SELECT body FROM %s WHERE id = ?", t.name), id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record, err
		}
		return record, fmt.Errorf("get %s %s: %w", t.name, id, err)
	}
	if err := json.Unmarshal([]byte(body), &record); err != nil {
		return record, fmt.Errorf("decode %s %s: %w", t.name, id, err)
	}
	return record, nil
}

func (t *table[T]) Create(ctx context.Context, record T) (T, error) {
	id := record.RecordID()
	if id == "" {
		id = uuid.NewString()
	}
	record = record.WithRecordID(id)

	body, err := json.Marshal(record)
	if err != nil {
		return record, fmt.Errorf("encode %s: %w", t.name, err)
	}

	now := time.Now().UTC()
	_, err = t.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (id, body, created_at, updated_at) VALUES (?, ?, ?, ?)", t.name),
		id, string(body), now, now)
	if err != nil {
		return record, fmt.Errorf("insert %s: %w", t.name, err)
	}

	slog.DebugContext(ctx, "Record created", "table", t.name, "id", id)
	return record, nil
}

func (t *table[T]) Update(ctx context.Context, id string, patch func(*T)) (T, error) {
	var zero T
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("begin update %s: %w", t.name, err)
	}
	defer tx.Rollback()

	record, err := t.get(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("update %s %s: %w", t.name, id, storage.ErrNotFound)
	}
	if err != nil {
		return zero, err
	}

	patch(&record)
	record = record.WithRecordID(id)

	body, err := json.Marshal(record)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", t.name, err)
	}
	_, err = tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET body = ?, updated_at = ? WHERE id = ?", t.name),
		string(body), time.Now().UTC(), id)
	if err != nil {
		return zero, fmt.Errorf("update %s %s: %w", t.name, id, err)
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("commit update %s: %w", t.name, err)
	}

	slog.DebugContext(ctx, "Record updated", "table", t.name, "id", id)
	return record, nil
}

func (t *table[T]) Delete(ctx context.Context, id string) error {
	_, err := t.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.name), id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", t.name, id, err)
	}
	return nil
}
