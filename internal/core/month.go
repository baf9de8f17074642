package core

import (
	"fmt"
	"time"
)

// Month arithmetic is pure over a caller-supplied instant so the store and
// its tests can inject a clock.

var spanishMonths = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthID returns a "YYYY-MM" token for t's calendar month. Two instants lie
// in the same month iff their tokens are equal, and tokens order
// lexicographically in calendar order.
func MonthID(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// DaysInMonth returns the number of days in t's calendar month.
func DaysInMonth(t time.Time) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// RemainingDaysIncludingToday returns how many days remain in t's month
// counting t's day itself. Never less than 1.
func RemainingDaysIncludingToday(t time.Time) int {
	remaining := DaysInMonth(t) - t.Day() + 1
	if remaining < 1 {
		return 1
	}
	return remaining
}

// MonthLabel returns a capitalized Spanish "Month Year" label, e.g.
// "Agosto 2026".
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", spanishMonths[int(t.Month())-1], t.Year())
}
