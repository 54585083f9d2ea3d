package memory

import (
	"context"
	"sync"

	"expensetracker/internal/core"
)

// Store keeps expenses in memory. Ids come from a counter and are never
// reused, mirroring SQLite AUTOINCREMENT.
type Store struct {
	mu     sync.Mutex
	lastID core.ExpenseID
	items  []core.Expense
}

func New(seed ...core.NewExpense) *Store {
	s := &Store{}
	for _, e := range seed {
		_, _ = s.Insert(context.Background(), e)
	}
	return s
}

// EnsureSchema is a no-op for the memory store.
func (s *Store) EnsureSchema(_ context.Context) error { return nil }

// Insert stores the expense and assigns the next id.
func (s *Store) Insert(_ context.Context, e core.NewExpense) (core.ExpenseID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	s.items = append(s.items, core.Expense{
		ID:          s.lastID,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date,
	})
	return s.lastID, nil
}

// Delete removes the expense with id if present.
func (s *Store) Delete(_ context.Context, id core.ExpenseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// ListAll returns a copy of the stored expenses in insertion order.
func (s *Store) ListAll(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...), nil
}

func (s *Store) Close() error { return nil }
