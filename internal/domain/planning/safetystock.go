package planning

import (
	"fmt"
	"math"
)

const (
	// DefaultServiceLevelZ covers roughly a 95% service level.
	DefaultServiceLevelZ = 1.65
	// DefaultSigmaCoefficient is the demand-stddev proxy applied when the
	// caller has no measured deviation: sigma = coefficient * daily demand.
	DefaultSigmaCoefficient = 0.2
)

// SafetyStockInput parameterizes the buffer calculation. DemandStdDev is
// optional; nil falls back to SigmaCoefficient * AverageDailyDemand.
type SafetyStockInput struct {
	LeadTimeDays       float64
	AverageDailyDemand float64
	DemandStdDev       *float64
	ServiceLevelZ      float64
	SigmaCoefficient   float64
}

// SafetyStock returns the required buffer units: base cover for the lead time
// plus a z-scaled variability term.
//
//	required = demand*leadTime + z*sigma*sqrt(leadTime)
//
// Non-positive lead time or demand is a validation error, never a silently
// clamped zero.
func SafetyStock(in SafetyStockInput) (float64, error) {
	if in.LeadTimeDays <= 0 {
		return 0, fmt.Errorf("%w: lead time must be > 0 days, got %v", ErrValidation, in.LeadTimeDays)
	}
	if in.AverageDailyDemand <= 0 {
		return 0, fmt.Errorf("%w: average daily demand must be > 0, got %v", ErrValidation, in.AverageDailyDemand)
	}
	if in.DemandStdDev != nil && *in.DemandStdDev < 0 {
		return 0, fmt.Errorf("%w: demand stddev must be >= 0, got %v", ErrValidation, *in.DemandStdDev)
	}

	z := in.ServiceLevelZ
	if z == 0 {
		z = DefaultServiceLevelZ
	}
	if z < 0 {
		return 0, fmt.Errorf("%w: service level z must be >= 0, got %v", ErrValidation, z)
	}

	coefficient := in.SigmaCoefficient
	if coefficient == 0 {
		coefficient = DefaultSigmaCoefficient
	}
	if coefficient < 0 {
		return 0, fmt.Errorf("%w: sigma coefficient must be >= 0, got %v", ErrValidation, coefficient)
	}

	sigma := coefficient * in.AverageDailyDemand
	if in.DemandStdDev != nil {
		sigma = *in.DemandStdDev
	}

	baseCover := in.AverageDailyDemand * in.LeadTimeDays
	buffer := z * sigma * math.Sqrt(in.LeadTimeDays)

	return baseCover + buffer, nil
}
