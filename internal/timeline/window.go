// Package timeline computes the rolling window of recent calendar days that
// template placeholders are filled from, and spreads items across it.
package timeline

import (
	"time"
)

// Size is the number of days in a window, today included.
const Size = 7

// Binding names exposed to templates.
const (
	VarDate       = "date"
	VarDateUS     = "date_us"
	VarDateEU     = "date_eu"
	VarDateShort  = "date_short"
	VarSyslogDate = "syslog_date"
	VarDayOffset  = "day_offset"
)

// Day is one calendar day of a window.
type Day struct {
	Date   time.Time // midnight in the location of the generating instant
	Offset int       // days before today, 0 = today
}

// ISO formats the day as YYYY-MM-DD.
func (d Day) ISO() string { return d.Date.Format("2006-01-02") }

// US formats the day as MM/DD/YYYY.
func (d Day) US() string { return d.Date.Format("01/02/2006") }

// EU formats the day as DD/MM/YYYY.
func (d Day) EU() string { return d.Date.Format("02/01/2006") }

// Short formats the day as YYYYMMDD.
func (d Day) Short() string { return d.Date.Format("20060102") }

// Syslog formats the day BSD-syslog style with a space-padded day of month,
// e.g. "Jan  6" and "Jan 15".
func (d Day) Syslog() string { return d.Date.Format("Jan _2") }

// Bindings returns the template variables for the day.
func (d Day) Bindings() map[string]any {
	return map[string]any{
		VarDate:       d.ISO(),
		VarDateUS:     d.US(),
		VarDateEU:     d.EU(),
		VarDateShort:  d.Short(),
		VarSyslogDate: d.Syslog(),
		VarDayOffset:  d.Offset,
	}
}

// Window is an ordered run of days, newest first.
type Window struct {
	Days []Day
}

// Len reports the number of days in the window.
func (w Window) Len() int { return len(w.Days) }

// Generate builds the Size-day window ending on the calendar day of now,
// in now's location. Two instants on the same calendar day produce the same
// window.
func Generate(now time.Time) Window {
	y, m, d := now.Date()
	loc := now.Location()
	days := make([]Day, Size)
	for i := 0; i < Size; i++ {
		days[i] = Day{
			Date:   time.Date(y, m, d-i, 0, 0, 0, 0, loc),
			Offset: i,
		}
	}
	return Window{Days: days}
}
