package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	WeekendsOnly CalendarID = "WEEKENDS"
	GBLO         CalendarID = "GBLO"
	USNY         CalendarID = "USNY"
	EUTA         CalendarID = "EUTA"
)

// Holiday data covers these years. Outside them only weekends are known.
const (
	FirstHolidayYear = 2025
	LastHolidayYear  = 2030
)

// ErrNoHolidayData is returned for dates outside the years with holiday data.
var ErrNoHolidayData = errors.New("no holiday data")

var holidays = map[CalendarID]map[string]struct{}{
	GBLO: dateSet(
		"2025-01-01", "2025-04-18", "2025-04-21", "2025-05-05", "2025-05-26", "2025-08-25", "2025-12-25", "2025-12-26",
		"2026-01-01", "2026-04-03", "2026-04-06", "2026-05-04", "2026-05-25", "2026-08-31", "2026-12-25", "2026-12-28",
		"2027-01-01", "2027-03-26", "2027-03-29", "2027-05-03", "2027-05-31", "2027-08-30", "2027-12-27", "2027-12-28",
		"2028-01-03", "2028-04-14", "2028-04-17", "2028-05-01", "2028-05-29", "2028-08-28", "2028-12-25", "2028-12-26",
		"2029-01-01", "2029-03-30", "2029-04-02", "2029-05-07", "2029-05-28", "2029-08-27", "2029-12-25", "2029-12-26",
		"2030-01-01", "2030-04-19", "2030-04-22", "2030-05-06", "2030-05-27", "2030-08-26", "2030-12-25", "2030-12-26",
	),
	USNY: dateSet(
		"2025-01-01", "2025-01-20", "2025-02-17", "2025-05-26", "2025-06-19", "2025-07-04", "2025-09-01", "2025-10-13", "2025-11-11", "2025-11-27", "2025-12-25",
		"2026-01-01", "2026-01-19", "2026-02-16", "2026-05-25", "2026-06-19", "2026-07-03", "2026-09-07", "2026-10-12", "2026-11-11", "2026-11-26", "2026-12-25",
		"2027-01-01", "2027-01-18", "2027-02-15", "2027-05-31", "2027-06-18", "2027-07-05", "2027-09-06", "2027-10-11", "2027-11-11", "2027-11-25", "2027-12-24",
		"2028-01-17", "2028-02-21", "2028-05-29", "2028-06-19", "2028-07-04", "2028-09-04", "2028-10-09", "2028-11-10", "2028-11-23", "2028-12-25",
		"2029-01-01", "2029-01-15", "2029-02-19", "2029-05-28", "2029-06-19", "2029-07-04", "2029-09-03", "2029-10-08", "2029-11-12", "2029-11-22", "2029-12-25",
		"2030-01-01", "2030-01-21", "2030-02-18", "2030-05-27", "2030-06-19", "2030-07-04", "2030-09-02", "2030-10-14", "2030-11-11", "2030-11-28", "2030-12-25",
	),
	EUTA: dateSet(
		"2025-01-01", "2025-04-18", "2025-04-21", "2025-05-01", "2025-12-25", "2025-12-26",
		"2026-01-01", "2026-04-03", "2026-04-06", "2026-05-01", "2026-12-25", "2026-12-26",
		"2027-01-01", "2027-03-26", "2027-03-29", "2027-05-01", "2027-12-25", "2027-12-26",
		"2028-01-01", "2028-04-14", "2028-04-17", "2028-05-01", "2028-12-25", "2028-12-26",
		"2029-01-01", "2029-03-30", "2029-04-02", "2029-05-01", "2029-12-25", "2029-12-26",
		"2030-01-01", "2030-04-19", "2030-04-22", "2030-05-01", "2030-12-25", "2030-12-26",
	),
}

func dateSet(dates ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

func (c CalendarID) String() string {
	return string(c)
}

func (c CalendarID) IsValid() bool {
	if c == WeekendsOnly {
		return true
	}
	_, ok := holidays[c]
	return ok
}

func NewCalendarID(s string) (CalendarID, error) {
	c := CalendarID(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid calendar: %s", s)
	}
	return c, nil
}

// CheckCoverage fails when cal has holidays and t falls outside the years
// they are known for.
func CheckCoverage(cal CalendarID, t time.Time) error {
	if cal == WeekendsOnly {
		return nil
	}
	if y := t.Year(); y < FirstHolidayYear || y > LastHolidayYear {
		return fmt.Errorf("%w: %s in %d, known %d-%d", ErrNoHolidayData, cal, y, FirstHolidayYear, LastHolidayYear)
	}
	return nil
}

// IsBusinessDay checks weekends and the holiday set of the calendar.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	_, holiday := holidays[cal][t.Format(time.DateOnly)]
	return !holiday
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	adjusted := t
	for !IsBusinessDay(cal, adjusted) {
		adjusted = adjusted.AddDate(0, 0, 1)
	}
	if adjusted.Month() != origMonth {
		adjusted = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, adjusted) {
			adjusted = adjusted.AddDate(0, 0, -1)
		}
	}
	return adjusted
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

// AddMonths behaves like Excel's EDATE: day-of-month is clamped to the target month's length.
func AddMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	day := t.Day()
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
