package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/creator-payroll-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	details := runDetails(err)

	switch {
	// User / token errors
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, user.ErrAgencyIDRequired):
		Forbidden(w, "Agency membership required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrDuplicatePeriod):
		Conflict(w, "Payroll already computed for this period", details)
	case errors.Is(err, payroll.ErrConfigurationMissing):
		UnprocessableEntity(w, "CONFIGURATION_MISSING", "Payroll rules are not configured for this agency", details)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		UnprocessableEntity(w, "INVALID_PERIOD", "Payroll period ends before it starts", details)
	case errors.Is(err, payroll.ErrAggregationFailure):
		BadGateway(w, "Failed to aggregate creator performance, nothing was saved", details)
	case errors.Is(err, payroll.ErrPayoutNotFound):
		NotFound(w, "Payout not found")
	case errors.Is(err, payroll.ErrInvalidPayoutStatus):
		ValidationError(w, map[string]string{"status": "must be one of DRAFT, APPROVED, PAID"})
	case errors.Is(err, payroll.ErrTenantRequired):
		Forbidden(w, "Agency membership required")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

// runDetails exposes where a payroll run stopped. The agency is the caller's
// own, so it is echoed back alongside the period.
func runDetails(err error) map[string]string {
	var runErr *payroll.RunError
	if !errors.As(err, &runErr) {
		return nil
	}

	details := map[string]string{
		"agency_id": runErr.TenantID,
		"period":    runErr.Period.String(),
		"stage":     string(runErr.Stage),
	}
	if runErr.CreatorID != "" {
		details["creator_id"] = runErr.CreatorID
	}
	return details
}
