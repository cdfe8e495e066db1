package ledger

import (
	"time"
)

// =============================================================================
// DATE - Calendar date (day granularity, UTC)
// =============================================================================

// Date is a calendar date. The wall-clock portion is always midnight UTC;
// no timezone handling beyond calendar dates is attempted.
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseISO parses the storage format YYYY-MM-DD.
func ParseISO(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, &InvalidDateError{Input: s}
	}
	return Date{Time: t}, nil
}

// ParseDisplay parses the display format DD/MM/YYYY. Nonexistent calendar
// dates (e.g. 31/02/2024) are rejected.
func ParseDisplay(s string) (Date, error) {
	if len(s) != 10 || s[2] != '/' || s[5] != '/' {
		return Date{}, &InvalidDateError{Input: s}
	}
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return Date{}, &InvalidDateError{Input: s}
	}
	return Date{Time: t}, nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.normalize().AddDate(0, 0, n)} }

// AddMonths moves the date by whole calendar months, clamping the day to
// the end of shorter months: Jan 31 + 1 month = Feb 29 (in a leap year),
// not Mar 2. Repeated anchored additions from the same origin therefore
// never drift.
func (d Date) AddMonths(n int) Date {
	first := time.Date(d.Time.Year(), d.Time.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := d.Time.Day()
	if day > last {
		day = last
	}
	return Date{Time: time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)}
}

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

// ISO returns the storage format YYYY-MM-DD.
func (d Date) ISO() string { return d.normalize().Format("2006-01-02") }

// Display returns the display format DD/MM/YYYY.
func (d Date) Display() string { return d.normalize().Format("02/01/2006") }

func (d Date) String() string { return d.ISO() }

// JSON encoding uses the storage format.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseISO(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
