package core

import "time"

const trendMonths = 6

type (
	// CategoryAmount is an amount aggregated by category name.
	CategoryAmount struct {
		Name   string `json:"category"`
		Amount Money  `json:"amount"`
	}

	// Summary holds the headline totals derived from a snapshot.
	Summary struct {
		TotalIncome   Money `json:"totalIncome"`
		TotalExpenses Money `json:"totalExpenses"`
		Balance       Money `json:"balance"`
		// BalancePercent is balance/totalIncome as a percentage. When there
		// is no income the denominator is forced to one currency unit, so
		// the figure is informational only.
		BalancePercent float64 `json:"balancePercent"`
	}

	// MonthPoint is one bucket of the trailing monthly trend series.
	MonthPoint struct {
		Label    string `json:"monthLabel"`
		Year     int    `json:"year"`
		Month    int    `json:"month"`
		Income   Money  `json:"income"`
		Expenses Money  `json:"expenses"`
		Balance  Money  `json:"balance"`
	}
)

// Summarize recomputes the headline totals from the full snapshot. There is
// no incremental state: the result is a pure function of the snapshot.
func Summarize(s Snapshot) Summary {
	var income, expenses int64
	for _, t := range s.Transactions {
		switch t.Type {
		case Income:
			income += t.Amount.Cents
		case Expense:
			expenses += t.Amount.Cents
		}
	}
	balance := income - expenses

	denom := float64(income) / 100.0
	if income == 0 {
		denom = 1
	}

	return Summary{
		TotalIncome:    Money{Cents: income},
		TotalExpenses:  Money{Cents: expenses},
		Balance:        Money{Cents: balance},
		BalancePercent: float64(balance) / 100.0 / denom * 100.0,
	}
}

// ExpensesByCategory sums expense transactions per vocabulary category,
// preserving vocabulary order. Categories whose sum is exactly zero are
// omitted so empty chart segments are never rendered.
func ExpensesByCategory(s Snapshot) []CategoryAmount {
	sums := make(map[string]int64, len(ExpenseCategories))
	for _, t := range s.Transactions {
		if t.Type == Expense {
			sums[t.Category] += t.Amount.Cents
		}
	}

	out := make([]CategoryAmount, 0, len(ExpenseCategories))
	for _, name := range ExpenseCategories {
		if cents := sums[name]; cents != 0 {
			out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
		}
	}
	return out
}

// MonthlySeries produces the trailing six calendar months ending at now's
// month, oldest first. A transaction belongs to a bucket iff its date's
// year and month both match; buckets with no transactions are still
// emitted with zero values.
func MonthlySeries(s Snapshot, now time.Time) []MonthPoint {
	out := make([]MonthPoint, 0, trendMonths)
	for i := trendMonths - 1; i >= 0; i-- {
		// Normalizing to day 1 keeps the walk on consecutive months even
		// when now is the 29th-31st.
		m := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		year, month := m.Year(), int(m.Month())

		var income, expenses int64
		for _, t := range s.Transactions {
			if t.Date.Year != year || t.Date.Month != month {
				continue
			}
			switch t.Type {
			case Income:
				income += t.Amount.Cents
			case Expense:
				expenses += t.Amount.Cents
			}
		}

		out = append(out, MonthPoint{
			Label:    MonthLabel(month),
			Year:     year,
			Month:    month,
			Income:   Money{Cents: income},
			Expenses: Money{Cents: expenses},
			Balance:  Money{Cents: income - expenses},
		})
	}
	return out
}
