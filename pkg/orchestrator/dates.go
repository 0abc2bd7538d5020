package orchestrator

import "time"

// Period is an inclusive date window.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Days returns the period length in whole days, minimum 1.
func (p Period) Days() int {
	d := int(p.To.Sub(p.From).Hours()/24) + 1
	if d < 1 {
		return 1
	}
	return d
}

// MonthWindow returns the calendar-month-to-date window for the given
// instant, in UTC.
func MonthWindow(now time.Time) Period {
	now = now.UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return Period{From: from, To: to}
}

// PreviousPeriod returns the equivalent window immediately preceding p.
// For a month-to-date window this is the same day span of the previous
// month, clamped to that month's length.
func PreviousPeriod(p Period) Period {
	if isMonthToDate(p) {
		prevMonth := p.From.AddDate(0, -1, 0)
		from := time.Date(prevMonth.Year(), prevMonth.Month(), 1, 0, 0, 0, 0, time.UTC)
		day := p.To.Day()
		if last := lastDayOfMonth(from); day > last {
			day = last
		}
		to := time.Date(from.Year(), from.Month(), day, 0, 0, 0, 0, time.UTC)
		return Period{From: from, To: to}
	}

	days := p.Days()
	to := p.From.AddDate(0, 0, -1)
	from := to.AddDate(0, 0, -(days - 1))
	return Period{From: from, To: to}
}

// MonthKey returns the "YYYY-MM" label for the period's month.
func (p Period) MonthKey() string {
	return p.From.Format("2006-01")
}

func isMonthToDate(p Period) bool {
	return p.From.Day() == 1 &&
		p.From.Year() == p.To.Year() &&
		p.From.Month() == p.To.Month()
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
