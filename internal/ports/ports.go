package ports

import (
	"context"

	"expensetracker/internal/core"
)

// Ports for storage adapters.
type (
	SchemaEnsurer interface {
		EnsureSchema(ctx context.Context) error
	}

	ExpenseWriter interface {
		Insert(ctx context.Context, e core.NewExpense) (core.ExpenseID, error)
	}

	ExpenseDeleter interface {
		// Delete removes the expense with id; an absent id is not an error.
		Delete(ctx context.Context, id core.ExpenseID) error
	}

	// ExpenseLister returns every stored expense in storage order.
	ExpenseLister interface {
		ListAll(ctx context.Context) ([]core.Expense, error)
	}

	// ExpenseStore is the full set of operations a storage backend provides.
	ExpenseStore interface {
		SchemaEnsurer
		ExpenseWriter
		ExpenseDeleter
		ExpenseLister
		Close() error
	}
)
