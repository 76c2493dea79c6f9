package payroll

import (
	"time"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/payroll"
)

const periodEndDay = 29

// CurrentPeriod returns the pay cycle containing today's calendar date.
// Cycles run from the 30th of a month to the 29th of the next month. Month
// arithmetic is done by hand: a 29th that does not exist (February in a common
// year) is clamped to the last day of the month, and a cycle whose 30th does
// not exist starts on the day after the previous cycle ended, so cycles are
// contiguous and never overlap.
func CurrentPeriod(today time.Time) payroll.PayrollPeriod {
	year, month, day := today.Date()

	endYear, endMonth := year, month
	if day > periodEndDay {
		endYear, endMonth = shiftMonth(year, month, 1)
	}

	prevYear, prevMonth := shiftMonth(endYear, endMonth, -1)

	return payroll.PayrollPeriod{
		Start: dayAfter(cycleEnd(prevYear, prevMonth)),
		End:   cycleEnd(endYear, endMonth),
	}
}

// PayableWorkdays counts days in [start, end] whose weekday is in workdays and
// whose date is not a holiday.
func PayableWorkdays(period payroll.PayrollPeriod, workdays []time.Weekday, holidays []time.Time) int {
	var weekdayMask [7]bool
	for _, wd := range workdays {
		if wd >= time.Sunday && wd <= time.Saturday {
			weekdayMask[wd] = true
		}
	}

	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[h.Format(payroll.DateLayout)] = struct{}{}
	}

	start := payroll.TruncateDate(period.Start)
	end := payroll.TruncateDate(period.End)

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !weekdayMask[d.Weekday()] {
			continue
		}
		if _, isHoliday := holidaySet[d.Format(payroll.DateLayout)]; isHoliday {
			continue
		}
		count++
	}
	return count
}

// TargetMinutes is the attendance target for the whole period. Zero when no payable day falls in range.
func TargetMinutes(period payroll.PayrollPeriod, rule payroll.CompensationRule) int {
	return rule.DailyTargetMinutes * PayableWorkdays(period, rule.Workdays, rule.Holidays)
}

func cycleEnd(year int, month time.Month) time.Time {
	day := periodEndDay
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return payroll.Date(year, month, day)
}

func dayAfter(t time.Time) time.Time {
	year, month, day := t.Date()
	if day < daysInMonth(year, month) {
		return payroll.Date(year, month, day+1)
	}
	nextYear, nextMonth := shiftMonth(year, month, 1)
	return payroll.Date(nextYear, nextMonth, 1)
}

func shiftMonth(year int, month time.Month, delta int) (int, time.Month) {
	idx := int(month) - 1 + delta
	year += idx / 12
	idx %= 12
	if idx < 0 {
		idx += 12
		year--
	}
	return year, time.Month(idx + 1)
}

func daysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if isLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
