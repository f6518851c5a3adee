package obligation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrCategoryNotFound marks a referential failure: the definition points at a
// category the user does not have. It blocks the mutation like a field
// violation does, but callers may render it differently.
var ErrCategoryNotFound = errors.New("referenced category not found")

var ErrOccurrenceNotFound = errors.New("occurrence not found")

var ErrDefinitionNotFound = errors.New("definition not found")

type FieldViolation struct {
	Field   string
	Message string
}

// ValidationError collects every field violation of an input at once instead
// of failing on the first one. The mutation is rejected before anything is
// persisted.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		messages = append(messages, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

func validateDefinition(def Definition) error {
	var violations []FieldViolation
	if strings.TrimSpace(def.Name) == "" {
		violations = append(violations, FieldViolation{"name", "must not be blank"})
	}
	if !def.Amount.IsPositive() {
		violations = append(violations, FieldViolation{"amount", "must be positive"})
	}
	if def.IntervalMonths <= 0 {
		violations = append(violations, FieldViolation{"intervalMonths", "must be positive"})
	}
	if def.LeadTimeMonths < 0 {
		violations = append(violations, FieldViolation{"leadTimeMonths", "must not be negative"})
	}
	switch def.Strategy {
	case StrategyEven, StrategyNone:
	case StrategyFixed:
		if !def.CustomMonthlyAmount.IsPositive() {
			violations = append(violations, FieldViolation{"customMonthlyAmount", "must be positive for the fixed strategy"})
		}
	default:
		violations = append(violations, FieldViolation{"savingStrategy", "must be one of even, fixed, none"})
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// validateCompletion checks the actuals supplied when marking an occurrence
// completed. Both actuals are required, and the actual date must lie within
// maxDriftDays of the scheduled date so a mismatched transaction link is
// rejected instead of silently accepted.
func validateCompletion(scheduledDate, actualDate time.Time, actualAmount decimal.Decimal, maxDriftDays int) error {
	var violations []FieldViolation
	if actualDate.IsZero() {
		violations = append(violations, FieldViolation{"actualDate", "is required to complete an occurrence"})
	}
	if !actualAmount.IsPositive() {
		violations = append(violations, FieldViolation{"actualAmount", "must be positive"})
	}
	if !actualDate.IsZero() {
		drift := actualDate.Sub(scheduledDate).Hours() / 24
		if drift < 0 {
			drift = -drift
		}
		if drift > float64(maxDriftDays) {
			violations = append(violations, FieldViolation{
				"actualDate",
				fmt.Sprintf("must be within %d days of the scheduled date", maxDriftDays),
			})
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
