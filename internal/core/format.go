package core

import (
	"fmt"
	"strconv"
)

// Short month labels for trend series axes (pt-BR).
var monthLabels = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// MonthLabel returns the short pt-BR label for a month (1-12).
func MonthLabel(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthLabels[month-1]
}

// FormatBRL formats cents as a Brazilian Real currency string with pt-BR
// grouping and decimal separators, e.g. "R$ 1.234,56". A zero amount
// renders as "R$ 0,00", never as an empty string.
func FormatBRL(m Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	units := strconv.FormatInt(cents/100, 10)

	// Insert thousands separators right to left.
	var grouped []byte
	for i, r := range units {
		if i > 0 && (len(units)-i)%3 == 0 {
			grouped = append(grouped, '.')
		}
		grouped = append(grouped, byte(r))
	}

	s := fmt.Sprintf("R$ %s,%02d", grouped, cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// FormatDateShort renders a date in the local short form dd/mm/yyyy.
// Unset dates render as the empty string.
func FormatDateShort(d Date) string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, d.Month, d.Year)
}
