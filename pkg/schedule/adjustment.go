package schedule

import (
	"fmt"
	"time"
)

// AdjustmentPolicy moves a resolved date off a weekend.
type AdjustmentPolicy string

const (
	AdjustNone                AdjustmentPolicy = "none"
	AdjustNextBusinessDay     AdjustmentPolicy = "next_business_day"
	AdjustPreviousBusinessDay AdjustmentPolicy = "previous_business_day"
)

// ParseAdjustmentPolicy validates a policy string. "" means AdjustNone.
func ParseAdjustmentPolicy(s string) (AdjustmentPolicy, error) {
	switch AdjustmentPolicy(s) {
	case "", AdjustNone:
		return AdjustNone, nil
	case AdjustNextBusinessDay:
		return AdjustNextBusinessDay, nil
	case AdjustPreviousBusinessDay:
		return AdjustPreviousBusinessDay, nil
	default:
		return "", fmt.Errorf("unknown adjustment policy %q", s)
	}
}

// Adjust applies the policy to a raw scheduled date. A date that already is a
// business day is returned unchanged regardless of policy.
func Adjust(t time.Time, policy AdjustmentPolicy) time.Time {
	switch policy {
	case AdjustNextBusinessDay:
		return NearestBusinessDay(t, Forward)
	case AdjustPreviousBusinessDay:
		return NearestBusinessDay(t, Backward)
	default:
		return t
	}
}
