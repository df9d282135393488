package recurring

import "time"

// RecurringUnit is the unit of the billing cadence of a contract group.
type RecurringUnit string

const (
	UnitDay   RecurringUnit = "day"
	UnitWeek  RecurringUnit = "week"
	UnitMonth RecurringUnit = "month"
	UnitYear  RecurringUnit = "year"
)

// AllRecurringUnits returns all valid recurring units
func AllRecurringUnits() []RecurringUnit {
	return []RecurringUnit{UnitDay, UnitWeek, UnitMonth, UnitYear}
}

// IsValid checks whether the unit is one of the known values
func (u RecurringUnit) IsValid() bool {
	switch u {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
		return true
	}
	return false
}

// AddTo advances t by value steps of the unit. Month and year steps are
// calendar-aware: when the source day does not exist in the target month the
// result clamps to the last valid day (Jan 31 + 1 month = Feb 28/29).
// time.AddDate would normalize into the following month instead, which is the
// wrong behavior for billing dates.
func (u RecurringUnit) AddTo(t time.Time, value int) time.Time {
	switch u {
	case UnitDay:
		return t.AddDate(0, 0, value)
	case UnitWeek:
		return t.AddDate(0, 0, 7*value)
	case UnitMonth:
		return addMonthsClamped(t, value)
	case UnitYear:
		return addMonthsClamped(t, 12*value)
	default:
		return t
	}
}

// addMonthsClamped adds months keeping the day-of-month, clamping to the last
// day of the target month on overflow.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	// Normalize the target month using the first day, then restore the day.
	first := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	target := first.AddDate(0, months, 0)
	if last := daysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	hour, minute, sec := t.Clock()
	return time.Date(target.Year(), target.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// daysInMonth returns the number of days in the given month
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ChangeMethod is the policy applied after billing-affecting fields of a
// contract group change while invoices are already pending.
type ChangeMethod string

const (
	// ChangeMethodDoNothing leaves already generated invoices untouched
	ChangeMethodDoNothing ChangeMethod = "do_nothing"
	// ChangeMethodCleanInvoices cancels pending invoices, rewinds the
	// contracts and regenerates with the new settings
	ChangeMethodCleanInvoices ChangeMethod = "clean_invoices"
)

// IsValid checks whether the change method is one of the known values
func (m ChangeMethod) IsValid() bool {
	return m == ChangeMethodDoNothing || m == ChangeMethodCleanInvoices
}
