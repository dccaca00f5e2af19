// Package validation holds the pre-query consistency checks. A query that
// fails here is rejected before any matching runs.
package validation

import (
	"strconv"
	"strings"

	"github.com/covernest/ratedesk/internal/rates"
)

const maxGVWTons = 50

// Error is a business-rule violation. The message is surfaced to the caller
// verbatim and the request is never retried.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// ValidateQuery runs the cross-field consistency rules and returns the
// first failure found. Checks are independent and short-circuiting.
func ValidateQuery(q *rates.Query) error {
	age := strings.TrimSpace(q.VehicleAge)
	business := strings.ToLower(rates.NormalizeBusinessType(q.BusinessType))
	bundle := rates.IsBundlePolicy(q.PolicyType)

	if age != "" && age != "1" && business == "new" && !bundle {
		return &Error{
			Field:   "business_type",
			Message: "Business Type cannot be New when Vehicle Age is not 1.",
		}
	}
	if (age == "1" || bundle) && business != "new" {
		return &Error{
			Field:   "business_type",
			Message: "Business Type must be New when Vehicle Age is 1 or Policy Type is Bundle.",
		}
	}

	if gvw := strings.TrimSpace(q.GVWValue); gvw != "" {
		n, err := strconv.ParseFloat(gvw, 64)
		if err != nil {
			return &Error{
				Field:   "gvw_value",
				Message: "GVW Slab (Ton) must be a valid number.",
			}
		}
		if n < 0 || n > maxGVWTons {
			return &Error{
				Field:   "gvw_value",
				Message: "GVW highest is 50. If more than 50, enter 50.",
			}
		}
	}
	return nil
}
