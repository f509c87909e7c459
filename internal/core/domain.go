package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Date is a calendar date without a time component. All comparisons and
	// formatting stay in year/month/day space so a stored date never drifts
	// across a month boundary through timezone conversion.
	Date struct {
		Year  int
		Month int // 1-12
		Day   int
	}

	Money struct {
		Cents int64
	}

	// Transaction is an immutable ledger entry. Sign is carried by Type;
	// Amount is always non-negative.
	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
	}

	// Goal is a savings goal. Current starts at zero and only changes
	// through an explicit progress update.
	Goal struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Target   Money  `json:"target"`
		Current  Money  `json:"current"`
		Category string `json:"category"`
		Deadline Date   `json:"deadline"`
	}

	// Snapshot is the full in-memory contents of both collections at a
	// point in time, the sole input to every derivation function.
	Snapshot struct {
		Transactions []Transaction
		Goals        []Goal
	}
)

// Category vocabularies. A transaction's category must belong to the set
// matching its type; goals use a separate set.
var (
	IncomeCategories  = []string{"Salário", "Freelance", "Investimentos", "Outros"}
	ExpenseCategories = []string{"Alimentação", "Transporte", "Moradia", "Entretenimento", "Saúde", "Compras", "Outros"}
	GoalCategories    = []string{"viagem", "casa", "carro", "educacao", "emergencia", "outros"}
)

var (
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidTarget   = errors.New("invalid goal target")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyName       = errors.New("empty goal name")
	ErrEmptyCategory   = errors.New("empty category")
	ErrUnknownCategory = errors.New("category not in vocabulary")
)

// CategoriesFor returns the vocabulary for a transaction type.
func CategoriesFor(t TransactionType) []string {
	if t == Income {
		return IncomeCategories
	}
	return ExpenseCategories
}

func inVocabulary(vocab []string, category string) bool {
	for _, c := range vocab {
		if c == category {
			return true
		}
	}
	return false
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates a time.Time to its calendar date in its own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// IsZero reports whether the date is unset (the optional-deadline case).
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	if d.Month < 1 || d.Month > 12 {
		return ErrInvalidDate
	}
	if d.Day < 1 || d.Day > 31 {
		return ErrInvalidDate
	}
	return nil
}

// Time returns midnight of the date in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc)
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !inVocabulary(CategoriesFor(t.Type), t.Category) {
		return ErrUnknownCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.Target.Cents <= 0 {
		return ErrInvalidTarget
	}
	if g.Current.Cents < 0 {
		return ErrInvalidAmount
	}
	if g.Category != "" && !inVocabulary(GoalCategories, g.Category) {
		return ErrUnknownCategory
	}
	if !g.Deadline.IsZero() {
		if err := g.Deadline.Validate(); err != nil {
			return err
		}
	}
	return nil
}
