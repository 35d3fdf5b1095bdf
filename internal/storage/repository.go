// Package storage reads the bot's SQLite expenses table.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"spendview/internal/core"
	"spendview/internal/source"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db     *sql.DB
	schema Schema
}

var _ source.ExpenseFetcher = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	schema, err := MigrateSchema(dbPath)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db, schema: schema}, nil
}

// Schema reports the migration state found when the repository opened.
func (r *SQLiteRepository) Schema() Schema {
	return r.schema
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// FetchExpenses implements source.ExpenseFetcher. Category and payment type
// ids are resolved to their names; unknown ids keep their numeric text.
// Rows with unreadable timestamps are skipped.
func (r *SQLiteRepository) FetchExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, selectExpenses)
	if err != nil {
		return nil, fmt.Errorf("select expenses: %w", err)
	}
	defer rows.Close()

	out := []core.Expense{}
	for rows.Next() {
		var (
			e                         core.Expense
			createdAt, updatedAt      string
			description               sql.NullString
			categoryID, paymentTypeID int
		)
		if err := rows.Scan(&e.ID, &createdAt, &updatedAt, &categoryID, &description, &e.Amount, &paymentTypeID, &e.UserID); err != nil {
			return nil, fmt.Errorf("row scan: %w", err)
		}

		if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			slog.WarnContext(ctx, "Skipping expense with bad created_at", "id", e.ID, "value", createdAt, "error", err)
			continue
		}
		if e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			e.UpdatedAt = e.CreatedAt
		}

		e.Description = description.String
		e.Category = nameOrID(core.CategoryName, categoryID)
		e.PaymentType = nameOrID(core.PaymentTypeName, paymentTypeID)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

// Insert writes a raw row. categoryID and paymentTypeID use the bot's
// numbering.
func (r *SQLiteRepository) Insert(ctx context.Context, e core.Expense, categoryID, paymentTypeID int) error {
	_, err := r.db.ExecContext(ctx, insertExpense,
		e.ID,
		e.CreatedAt.Format(time.RFC3339),
		e.UpdatedAt.Format(time.RFC3339),
		categoryID,
		e.Description,
		e.Amount,
		paymentTypeID,
		e.UserID,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func nameOrID(lookup func(int) (string, bool), id int) string {
	if name, ok := lookup(id); ok {
		return name
	}
	return strconv.Itoa(id)
}
