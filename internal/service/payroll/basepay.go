package payroll

import (
	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// ResolveMode picks the compensation mode from the profile. A monthly salary
// takes precedence over an hourly rate; valid reports whether exactly one of
// the two is set.
func ResolveMode(profile payroll.CreatorCompensationProfile) (mode payroll.CompensationMode, valid bool) {
	hasSalary := isPositive(profile.BaseSalary)
	hasHourly := isPositive(profile.HourlyRate)

	switch {
	case hasSalary && hasHourly:
		return payroll.CompensationModeMonthly, false
	case hasSalary:
		return payroll.CompensationModeMonthly, true
	case hasHourly:
		return payroll.CompensationModeHourly, true
	default:
		return payroll.CompensationModeNone, false
	}
}

// Clamp bounds ratio to [floorPct, capPct].
func Clamp(ratio, floorPct, capPct decimal.Decimal) decimal.Decimal {
	if ratio.LessThan(floorPct) {
		return floorPct
	}
	if ratio.GreaterThan(capPct) {
		return capPct
	}
	return ratio
}

// AchievementRatio is totalMinutes / targetMinutes, or zero when there is no target.
func AchievementRatio(totalMinutes, targetMinutes int) decimal.Decimal {
	if targetMinutes <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(totalMinutes)).Div(decimal.NewFromInt(int64(targetMinutes)))
}

// MonthlyBasePay scales the salary by the attendance ratio clamped to the rule's floor and cap.
func MonthlyBasePay(baseSalary decimal.Decimal, totalMinutes, targetMinutes int, rule payroll.CompensationRule) decimal.Decimal {
	ratio := AchievementRatio(totalMinutes, targetMinutes)
	clamped := Clamp(ratio, rule.FloorPct, rule.CapPct)

	if clamped.Equal(ratio) && targetMinutes > 0 {
		// unclamped: multiply before dividing to avoid carrying the ratio's truncation
		return baseSalary.Mul(decimal.NewFromInt(int64(totalMinutes))).
			Div(decimal.NewFromInt(int64(targetMinutes))).
			Round(0)
	}
	return baseSalary.Mul(clamped).Round(0)
}

// HourlyBasePay pays the hourly rate for every minute streamed. No floor or cap applies.
func HourlyBasePay(hourlyRate decimal.Decimal, totalMinutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(totalMinutes)).Mul(hourlyRate).Div(minutesPerHour).Round(0)
}

// BasePay computes the attendance-driven part of the payout for the given mode.
func BasePay(mode payroll.CompensationMode, profile payroll.CreatorCompensationProfile, totalMinutes, targetMinutes int, rule payroll.CompensationRule) decimal.Decimal {
	switch mode {
	case payroll.CompensationModeMonthly:
		return MonthlyBasePay(*profile.BaseSalary, totalMinutes, targetMinutes, rule)
	case payroll.CompensationModeHourly:
		return HourlyBasePay(*profile.HourlyRate, totalMinutes)
	case payroll.CompensationModeNone:
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// BelowMinimum reports whether attendance fell strictly short of the rule's minimum.
func BelowMinimum(totalMinutes int, rule payroll.CompensationRule) bool {
	return totalMinutes < rule.MinimumMinutes
}

// BaseSalaryReference is the configured monthly salary, or the hourly rate for hourly creators.
func BaseSalaryReference(mode payroll.CompensationMode, profile payroll.CreatorCompensationProfile) decimal.Decimal {
	switch mode {
	case payroll.CompensationModeMonthly:
		return *profile.BaseSalary
	case payroll.CompensationModeHourly:
		return *profile.HourlyRate
	default:
		return decimal.Zero
	}
}

func isPositive(d *decimal.Decimal) bool {
	return d != nil && d.IsPositive()
}
