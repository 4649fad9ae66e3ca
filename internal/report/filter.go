package report

import (
	"fmt"
	"strings"
	"time"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/clock"
	"bakeryledger/backend/internal/domain"
)

type Kind string

const (
	KindToday    Kind = "today"
	KindSpecific Kind = "specific"
	KindLast7    Kind = "last-7"
	KindMonthly  Kind = "monthly"
	KindRange    Kind = "range"
	KindAll      Kind = "all"
)

const trailingDays = 7

// Filter selects a subset of the ascending day records.
type Filter struct {
	Kind  Kind            `json:"kind"`
	Date  string          `json:"date,omitempty"`
	Month domain.MonthKey `json:"month,omitzero"`
	Start string          `json:"start,omitempty"`
	End   string          `json:"end,omitempty"`
}

// ParseFilter validates the query form of a filter. An empty kind means today.
func ParseFilter(kind, date, month, start, end string) (Filter, error) {
	f := Filter{Kind: Kind(strings.ToLower(strings.TrimSpace(kind)))}
	if f.Kind == "" {
		f.Kind = KindToday
	}

	switch f.Kind {
	case KindToday, KindLast7, KindAll:
	case KindSpecific:
		if err := checkDate("date", date); err != nil {
			return Filter{}, err
		}
		f.Date = date
	case KindMonthly:
		key, err := domain.ParseMonthKey(strings.TrimSpace(month))
		if err != nil {
			return Filter{}, apperror.NewValidation(err.Error())
		}
		f.Month = key
	case KindRange:
		if err := checkDate("start", start); err != nil {
			return Filter{}, err
		}
		if err := checkDate("end", end); err != nil {
			return Filter{}, err
		}
		if end < start {
			return Filter{}, apperror.NewValidation("range end is before start")
		}
		f.Start, f.End = start, end
	default:
		return Filter{}, apperror.NewValidation(fmt.Sprintf("unknown filter %q", kind))
	}
	return f, nil
}

func checkDate(field, value string) error {
	if _, err := time.Parse(clock.DateLayout, value); err != nil {
		return apperror.NewValidation(field + " must be YYYY-MM-DD").WithDetail(field, value)
	}
	return nil
}

// Apply filters records that are already sorted by timestamp. Calendar
// comparisons happen in loc.
func (f Filter) Apply(records []DayRecord, today string, loc *time.Location) []DayRecord {
	if loc == nil {
		loc = time.Local
	}
	out := make([]DayRecord, 0, len(records))
	switch f.Kind {
	case KindAll:
		out = append(out, records...)
	case KindLast7:
		from := max(len(records)-trailingDays, 0)
		out = append(out, records[from:]...)
	case KindSpecific:
		out = keep(out, records, func(r DayRecord) bool { return r.Date == f.Date })
	case KindMonthly:
		out = keep(out, records, func(r DayRecord) bool { return f.Month.Contains(r.Timestamp.In(loc)) })
	case KindRange:
		start, end := rangeBounds(f.Start, f.End, loc)
		out = keep(out, records, func(r DayRecord) bool {
			return !r.Timestamp.Before(start) && !r.Timestamp.After(end)
		})
	default:
		out = keep(out, records, func(r DayRecord) bool { return r.Date == today })
	}
	return out
}

// rangeBounds spans 00:00:00.000 of start through 23:59:59.999 of end.
func rangeBounds(start, end string, loc *time.Location) (time.Time, time.Time) {
	from, _ := time.ParseInLocation(clock.DateLayout, start, loc)
	to, _ := time.ParseInLocation(clock.DateLayout, end, loc)
	return from, time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
}

func keep(out, records []DayRecord, pred func(DayRecord) bool) []DayRecord {
	for _, record := range records {
		if pred(record) {
			out = append(out, record)
		}
	}
	return out
}

// Key is a stable textual form used in cache keys.
func (f Filter) Key() string {
	switch f.Kind {
	case KindSpecific:
		return string(f.Kind) + ":" + f.Date
	case KindMonthly:
		return string(f.Kind) + ":" + f.Month.String()
	case KindRange:
		return string(f.Kind) + ":" + f.Start + ".." + f.End
	default:
		return string(f.Kind)
	}
}

func (f Filter) Describe() string {
	switch f.Kind {
	case KindSpecific:
		return f.Date
	case KindMonthly:
		return f.Month.Label()
	case KindRange:
		return f.Start + " to " + f.End
	case KindLast7:
		return "Last 7 days"
	case KindAll:
		return "All days"
	default:
		return "Today"
	}
}
