package budget

import (
	"fmt"
	"strings"

	"costwise-hq/atlas/pkg/costs"
)

// FieldError is a validation failure for one settings field.
type FieldError struct {
	// Field is the dotted path to the field (e.g. "accountBudgets[2].monthlyBudgetLimit").
	Field string

	// Message is a human-readable description of what is invalid.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every validation failure found in a
// settings update. A rejected update leaves the stored settings
// untouched; no partial write occurs.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "budget settings validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("budget settings validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("budget settings validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// ValidateSettings checks a settings object before it is written.
// All failures are collected and returned together.
func ValidateSettings(s *Settings) error {
	var errs []FieldError

	switch s.Mode {
	case ModeConsolidated, ModeAccountSpecific:
	default:
		errs = append(errs, FieldError{
			Field:   "mode",
			Message: fmt.Sprintf("must be %s or %s, got %q", ModeConsolidated, ModeAccountSpecific, s.Mode),
		})
	}

	if s.MonthlyBudgetLimit <= 0 {
		errs = append(errs, FieldError{
			Field:   "monthlyBudgetLimit",
			Message: fmt.Sprintf("must be greater than zero, got %v", s.MonthlyBudgetLimit),
		})
	}

	if s.AlertThreshold < 0 || s.AlertThreshold > 100 {
		errs = append(errs, FieldError{
			Field:   "alertThreshold",
			Message: fmt.Sprintf("must be between 0 and 100, got %v", s.AlertThreshold),
		})
	}

	for i := range s.AccountBudgets {
		ab := &s.AccountBudgets[i]
		prefix := fmt.Sprintf("accountBudgets[%d]", i)

		if _, err := costs.ParseProvider(string(ab.Provider)); err != nil {
			errs = append(errs, FieldError{
				Field:   prefix + ".provider",
				Message: fmt.Sprintf("unknown provider %q", ab.Provider),
			})
		}
		if ab.AccountID == "" {
			errs = append(errs, FieldError{Field: prefix + ".accountId", Message: "must not be empty"})
		}
		// Disabled budgets may keep whatever values they had; only an
		// enabled budget must carry a usable limit.
		if ab.Enabled && ab.MonthlyBudgetLimit <= 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".monthlyBudgetLimit",
				Message: fmt.Sprintf("must be greater than zero for an enabled budget, got %v", ab.MonthlyBudgetLimit),
			})
		}
		if ab.AlertThreshold != nil && (*ab.AlertThreshold < 0 || *ab.AlertThreshold > 100) {
			errs = append(errs, FieldError{
				Field:   prefix + ".alertThreshold",
				Message: fmt.Sprintf("must be between 0 and 100, got %v", *ab.AlertThreshold),
			})
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
