package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensetracker/internal/core"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteRepository stores expenses in a single SQLite table.
//
// The pool holds at most one connection and keeps none idle, so every
// operation dials its own connection and releases it when done. This also
// means only one statement runs against the file at a time.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// withConn runs fn on a connection acquired for this call only.
func (r *SQLiteRepository) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// EnsureSchema creates the expenses table if it does not exist.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	return r.withConn(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create expenses table: %w", err)
		}
		return nil
	})
}

// Insert appends one expense and returns the id assigned by SQLite.
func (r *SQLiteRepository) Insert(ctx context.Context, e core.NewExpense) (core.ExpenseID, error) {
	var id int64
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx,
			`INSERT INTO expenses (description, amount, date) VALUES (?, ?, ?)`,
			e.Description, e.Amount, e.Date)
		if err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read inserted id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"description", e.Description,
		"amount", e.Amount,
		"date", e.Date)

	return core.ExpenseID(id), nil
}

// Delete removes the expense with the given id. Deleting an id that does
// not exist is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, id core.ExpenseID) error {
	var affected int64
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, int64(id))
		if err != nil {
			return fmt.Errorf("delete expense %d: %w", id, err)
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Expense deleted from SQLite", "id", int64(id), "rows_affected", affected)
	return nil
}

// ListAll returns every stored expense in the table's natural scan order.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Expense, error) {
	var expenses []core.Expense
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `SELECT id, description, amount, date FROM expenses`)
		if err != nil {
			return fmt.Errorf("query expenses: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				e  core.Expense
				id int64
			)
			if err := rows.Scan(&id, &e.Description, &e.Amount, &e.Date); err != nil {
				return fmt.Errorf("scan expense: %w", err)
			}
			e.ID = core.ExpenseID(id)
			expenses = append(expenses, e)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate expenses: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expenses, nil
}
