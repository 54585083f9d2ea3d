package core

import (
	"errors"
	"strconv"
)

type (
	// ExpenseID is the storage-assigned identifier of an expense.
	ExpenseID int64

	// Expense is one stored spending entry.
	Expense struct {
		ID          ExpenseID
		Description string
		Amount      float64
		Date        string // YYYY-MM-DD, kept as entered
	}

	// NewExpense is a validated expense that has not been stored yet.
	NewExpense struct {
		Description string
		Amount      float64
		Date        string
	}
)

var (
	ErrMissingField  = errors.New("all fields are required")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNoSelection   = errors.New("no row selected")
	ErrInvalidID     = errors.New("invalid expense id")
)

// ParseExpenseInput validates the three raw form fields of the add flow.
// Every field must be non-empty and amount must parse as a finite number.
// Description and date are stored exactly as entered.
func ParseExpenseInput(description, amount, date string) (NewExpense, error) {
	if description == "" || amount == "" || date == "" {
		return NewExpense{}, ErrMissingField
	}
	v, err := ParseAmount(amount)
	if err != nil {
		return NewExpense{}, err
	}
	return NewExpense{
		Description: description,
		Amount:      v,
		Date:        date,
	}, nil
}

// ParseExpenseID parses the id submitted for the selected row.
func ParseExpenseID(s string) (ExpenseID, error) {
	if s == "" {
		return 0, ErrNoSelection
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return ExpenseID(id), nil
}

// String implements fmt.Stringer
func (id ExpenseID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Input returns the insertable part of the expense.
func (e Expense) Input() NewExpense {
	return NewExpense{Description: e.Description, Amount: e.Amount, Date: e.Date}
}
