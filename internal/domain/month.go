package domain

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar month. It marshals as "YYYY-MM".
type MonthKey struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey accepts "YYYY-MM".
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return MonthOf(t), nil
}

func (m MonthKey) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label is the display form, e.g. "March 2024".
func (m MonthKey) Label() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s %d", m.Month.String(), m.Year)
}

func (m MonthKey) Before(other MonthKey) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

func (m MonthKey) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

func (m MonthKey) MarshalText() ([]byte, error) {
	if m.IsZero() {
		return []byte{}, nil
	}
	return []byte(m.String()), nil
}

func (m *MonthKey) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*m = MonthKey{}
		return nil
	}
	parsed, err := ParseMonthKey(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
