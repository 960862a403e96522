package attendance

import (
	"github.com/shopspring/decimal"

	"github.com/workpulse/hr-backend-go/internal/domain/business"
)

var minutesPerHour = decimal.NewFromInt(60)

// CalculateFine computes the punctuality fine for lateMinutes of deviation
// of the given kind. Deviations within the grace period cost nothing; beyond
// it the full deviation is chargeable. Override rules are evaluated in order
// and the first matching rule wins; otherwise the configured method applies.
// The result is rounded to 2 decimal places and never negative.
func CalculateFine(minutes int, kind business.FineApplicability, cfg business.FineConfig, dailySalary float64, shiftHours float64) decimal.Decimal {
	if !cfg.Enabled || minutes <= 0 || minutes <= cfg.GraceMinutes {
		return decimal.Zero
	}

	chargeable := decimal.NewFromInt(int64(minutes))
	salary := decimal.NewFromFloat(dailySalary)

	for _, rule := range cfg.Rules {
		if !rule.Matches(kind) {
			continue
		}
		switch rule.Payout {
		case business.PayoutCustom:
			return decimal.NewFromFloat(rule.CustomAmount).Round(2)
		case business.PayoutHalfDay:
			return salary.Div(decimal.NewFromInt(2)).Round(2)
		case business.PayoutFullDay:
			return salary.Round(2)
		case business.Payout1xSalary, business.Payout2xSalary, business.Payout3xSalary:
			multiplier := decimal.NewFromInt(1)
			if rule.Payout == business.Payout2xSalary {
				multiplier = decimal.NewFromInt(2)
			} else if rule.Payout == business.Payout3xSalary {
				multiplier = decimal.NewFromInt(3)
			}
			perMinute := salaryPerMinute(salary, shiftHours)
			return perMinute.Mul(chargeable).Mul(multiplier).Round(2)
		}
	}

	switch cfg.Method {
	case business.FineFixedPerHour:
		rate := decimal.NewFromFloat(cfg.RatePerHour)
		return rate.Mul(chargeable).Div(minutesPerHour).Round(2)
	default: // shift_based
		return salaryPerMinute(salary, shiftHours).Mul(chargeable).Round(2)
	}
}

func salaryPerMinute(dailySalary decimal.Decimal, shiftHours float64) decimal.Decimal {
	if shiftHours <= 0 || dailySalary.Sign() <= 0 {
		return decimal.Zero
	}
	shiftMinutes := decimal.NewFromFloat(shiftHours).Mul(minutesPerHour)
	return dailySalary.Div(shiftMinutes)
}
