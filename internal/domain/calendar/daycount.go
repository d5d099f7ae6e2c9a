package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DayCount names a day count convention.
type DayCount string

const (
	Act360  DayCount = "ACT/360"
	Act365F DayCount = "ACT/365F"
	Thirty  DayCount = "30/360"
)

func (dc DayCount) String() string {
	return string(dc)
}

func (dc DayCount) IsValid() bool {
	switch dc {
	case Act360, Act365F, Thirty:
		return true
	default:
		return false
	}
}

func NewDayCount(s string) (DayCount, error) {
	dc := DayCount(strings.ToUpper(strings.TrimSpace(s)))
	if !dc.IsValid() {
		return "", fmt.Errorf("invalid day count: %s", s)
	}
	return dc, nil
}

// YearFraction computes the accrual fraction between two dates.
func (dc DayCount) YearFraction(start, end time.Time) float64 {
	switch dc {
	case Act360:
		return days(start, end) / 360.0
	case Thirty:
		d1 := min(start.Day(), 30)
		d2 := end.Day()
		if d2 > 30 && d1 == 30 {
			d2 = 30
		}
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
	default:
		return days(start, end) / 365.0
	}
}

func days(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}
