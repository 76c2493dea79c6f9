package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/creator-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/creator-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/creator-payroll-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Runs
	ComputePayroll(w http.ResponseWriter, r *http.Request)
	PreviewPeriod(w http.ResponseWriter, r *http.Request)

	// Payouts
	ListPayouts(w http.ResponseWriter, r *http.Request)
	UpdatePayoutStatus(w http.ResponseWriter, r *http.Request)

	// Summary
	GetPayoutSummary(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== RUNS ==========

func (h *payrollHandlerImpl) ComputePayroll(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyIDFromRequest(w, r)
	if !ok {
		return
	}

	var req payroll.ComputePayrollRequest
	// an empty body computes the current period
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.ComputePayroll(r.Context(), agencyID, req.ParsedReferenceDate())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if len(result.Payouts) == 0 {
		response.SuccessWithMessage(w, "No active creators found, nothing was saved", result)
		return
	}
	response.Created(w, "Payroll computed", result)
}

func (h *payrollHandlerImpl) PreviewPeriod(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyIDFromRequest(w, r)
	if !ok {
		return
	}

	var req payroll.ComputePayrollRequest
	if date := r.URL.Query().Get("date"); date != "" {
		req.ReferenceDate = &date
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.PreviewPeriod(r.Context(), agencyID, req.ParsedReferenceDate())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== PAYOUTS ==========

func (h *payrollHandlerImpl) ListPayouts(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyIDFromRequest(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := payroll.PayoutFilter{
		Page:  validator.Atoi(query.Get("page"), 1),
		Limit: validator.Atoi(query.Get("limit"), 20),
	}
	if v := query.Get("period_start"); v != "" {
		filter.PeriodStart = &v
	}
	if v := query.Get("period_end"); v != "" {
		filter.PeriodEnd = &v
	}
	if v := query.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := query.Get("creator_id"); v != "" {
		filter.CreatorID = &v
	}

	result, err := h.payrollService.ListPayouts(r.Context(), agencyID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = int((result.TotalCount + int64(result.Limit) - 1) / int64(result.Limit))
	}
	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}

func (h *payrollHandlerImpl) UpdatePayoutStatus(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyIDFromRequest(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Payout ID is required", nil)
		return
	}

	var req payroll.UpdatePayoutStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	if err := h.payrollService.SetPayoutStatus(r.Context(), agencyID, req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payout status updated", map[string]string{
		"id":     id,
		"status": req.Status,
	})
}

// ========== SUMMARY ==========

func (h *payrollHandlerImpl) GetPayoutSummary(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyIDFromRequest(w, r)
	if !ok {
		return
	}

	req := payroll.PayoutSummaryRequest{
		PeriodStart: r.URL.Query().Get("period_start"),
		PeriodEnd:   r.URL.Query().Get("period_end"),
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GetPayoutSummary(r.Context(), agencyID, req.Period())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func agencyIDFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || claims.AgencyID == "" {
		response.HandleError(w, user.ErrAgencyIDRequired)
		return "", false
	}
	return claims.AgencyID, true
}
