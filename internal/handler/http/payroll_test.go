package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/creator-payroll-go/internal/pkg/jwt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

// fakePayrollService records the arguments it was called with.
type fakePayrollService struct {
	computeErr    error
	computeResult payroll.PayoutBatchResult
	statusErr     error

	gotTenant    string
	gotReference *time.Time
	gotStatusReq payroll.UpdatePayoutStatusRequest
	gotFilter    payroll.PayoutFilter
	gotPeriod    payroll.PayrollPeriod
}

func (f *fakePayrollService) ComputePayroll(ctx context.Context, tenantID string, referenceDate *time.Time) (payroll.PayoutBatchResult, error) {
	f.gotTenant = tenantID
	f.gotReference = referenceDate
	return f.computeResult, f.computeErr
}

func (f *fakePayrollService) Run(ctx context.Context, tenantID string, period payroll.PayrollPeriod) (payroll.PayoutBatchResult, error) {
	return f.computeResult, f.computeErr
}

func (f *fakePayrollService) PreviewPeriod(ctx context.Context, tenantID string, referenceDate *time.Time) (payroll.PeriodPreviewResponse, error) {
	f.gotTenant = tenantID
	f.gotReference = referenceDate
	return payroll.PeriodPreviewResponse{PeriodStart: "2025-03-30", PeriodEnd: "2025-04-29", PayableWorkdays: 22, TargetMinutes: 2640}, nil
}

func (f *fakePayrollService) SetPayoutStatus(ctx context.Context, tenantID string, req payroll.UpdatePayoutStatusRequest) error {
	f.gotTenant = tenantID
	f.gotStatusReq = req
	return f.statusErr
}

func (f *fakePayrollService) ListPayouts(ctx context.Context, tenantID string, filter payroll.PayoutFilter) (payroll.ListPayoutResponse, error) {
	f.gotTenant = tenantID
	f.gotFilter = filter
	return payroll.ListPayoutResponse{
		Data:       []payroll.PayoutResponse{{ID: "p-1", CreatorID: "c-1", Status: "DRAFT"}},
		TotalCount: 41,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (f *fakePayrollService) GetPayoutSummary(ctx context.Context, tenantID string, period payroll.PayrollPeriod) (payroll.PayoutSummaryResponse, error) {
	f.gotTenant = tenantID
	f.gotPeriod = period
	return payroll.PayoutSummaryResponse{TotalPayouts: 2, TotalPayout: decimal.NewFromInt(6200000)}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalItems int64 `json:"total_items"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func newTestRouter(t *testing.T, svc payroll.PayrollService) (http.Handler, jwt.Service) {
	t.Helper()
	jwtService := jwt.NewJWTService(handlerTestSecret, time.Hour)
	router := NewRouter(jwtService, NewPayrollHandler(svc), RouterOptions{
		Logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		LogLevel: slog.LevelError,
	})
	return router, jwtService
}

func doRequest(t *testing.T, router http.Handler, jwtService jwt.Service, role user.Role, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, _, err := jwtService.GenerateAccessToken("user-1", "agency-1", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

// ===== COMPUTE PAYROLL TESTS =====

func TestPayrollHandler_ComputePayroll_Success(t *testing.T) {
	svc := &fakePayrollService{computeResult: payroll.PayoutBatchResult{
		RunID:   "run-1",
		Payouts: []payroll.PayoutResponse{{ID: "p-1"}},
	}}
	router, jwtService := newTestRouter(t, svc)

	rec, env := doRequest(t, router, jwtService, user.RoleAdmin, http.MethodPost, "/api/v1/payroll/runs",
		map[string]string{"reference_date": "2025-05-02"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "agency-1", svc.gotTenant)
	require.NotNil(t, svc.gotReference)
	assert.Equal(t, "2025-05-02", svc.gotReference.Format(payroll.DateLayout))
}

func TestPayrollHandler_ComputePayroll_EmptyBody(t *testing.T) {
	svc := &fakePayrollService{}
	router, jwtService := newTestRouter(t, svc)

	rec, env := doRequest(t, router, jwtService, user.RoleAgencyOwner, http.MethodPost, "/api/v1/payroll/runs", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Nil(t, svc.gotReference)
}

func TestPayrollHandler_ComputePayroll_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"duplicate period", &payroll.RunError{Stage: payroll.RunStageValidating, Err: payroll.ErrDuplicatePeriod}, http.StatusConflict},
		{"configuration missing", payroll.ErrConfigurationMissing, http.StatusUnprocessableEntity},
		{"aggregation failure", fmt.Errorf("%w: timeout", payroll.ErrAggregationFailure), http.StatusBadGateway},
		{"inverted period", &payroll.RunError{Stage: payroll.RunStageValidating, Err: payroll.ErrInvalidPeriod}, http.StatusUnprocessableEntity},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, jwtService := newTestRouter(t, &fakePayrollService{computeErr: tt.err})

			rec, env := doRequest(t, router, jwtService, user.RoleAdmin, http.MethodPost, "/api/v1/payroll/runs", nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
		})
	}
}

func TestPayrollHandler_ComputePayroll_ReportsRunContext(t *testing.T) {
	period := payroll.PayrollPeriod{
		Start: time.Date(2025, time.March, 30, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.April, 29, 0, 0, 0, 0, time.UTC),
	}
	svc := &fakePayrollService{computeErr: &payroll.RunError{
		TenantID:  "agency-1",
		Period:    period,
		Stage:     payroll.RunStageAggregating,
		CreatorID: "creator-42",
		Err:       fmt.Errorf("%w: connection reset", payroll.ErrAggregationFailure),
	}}
	router, jwtService := newTestRouter(t, svc)

	rec, env := doRequest(t, router, jwtService, user.RoleAdmin, http.MethodPost, "/api/v1/payroll/runs", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UPSTREAM_FAILURE", env.Error.Code)
	assert.Equal(t, "creator-42", env.Error.Details["creator_id"])
	assert.Equal(t, "2025-03-30..2025-04-29", env.Error.Details["period"])
	assert.Equal(t, "aggregating", env.Error.Details["stage"])
	assert.Equal(t, "agency-1", env.Error.Details["agency_id"])
}

func TestPayrollHandler_ComputePayroll_DuplicateReportsPeriod(t *testing.T) {
	svc := &fakePayrollService{computeErr: &payroll.RunError{
		TenantID: "agency-1",
		Period: payroll.PayrollPeriod{
			Start: time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, time.May, 29, 0, 0, 0, 0, time.UTC),
		},
		Stage: payroll.RunStageValidating,
		Err:   payroll.ErrDuplicatePeriod,
	}}
	router, jwtService := newTestRouter(t, svc)

	rec, env := doRequest(t, router, jwtService, user.RoleAdmin, http.MethodPost, "/api/v1/payroll/runs", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "2025-04-30..2025-05-29", env.Error.Details["period"])
	assert.NotContains(t, env.Error.Details, "creator_id")
}

func TestPayrollHandler_ComputePayroll_InvalidDate(t *testing.T) {
	router, jwtService := newTestRouter(t, &fakePayrollService{})

	rec, env := doRequest(t, router, jwtService, user.RoleAdmin, http.MethodPost, "/api/v1/payroll/runs",
		map[string]string{"reference_date": "02/05/2025"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "reference_date")
}

// ===== AUTHORIZATION TESTS =====

func TestPayrollHandler_Authorization(t *testing.T) {
	tests := []struct {
		name       string
		role       user.Role
		method     string
		path       string
		wantStatus int
	}{
		{"no token", "", http.MethodGet, "/api/v1/payroll/payouts", http.StatusUnauthorized},
		{"investor can view", user.RoleInvestor, http.MethodGet, "/api/v1/payroll/payouts", http.StatusOK},
		{"investor cannot compute", user.RoleInvestor, http.MethodPost, "/api/v1/payroll/runs", http.StatusForbidden},
		{"creator cannot view", user.RoleCreator, http.MethodGet, "/api/v1/payroll/payouts", http.StatusForbidden},
		{"investor cannot change status", user.RoleInvestor, http.MethodPatch, "/api/v1/payroll/payouts/p-1/status", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, jwtService := newTestRouter(t, &fakePayrollService{})

			rec, _ := doRequest(t, router, jwtService, tt.role, tt.method, tt.path, map[string]string{"status": "PAID"})

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestPayrollHandler_TokenWithoutAgency(t *testing.T) {
	router, jwtService := newTestRouter(t, &fakePayrollService{})
	_, token, err := jwtService.JWTAuth().Encode(map[string]any{
		"user_id": "user-1",
		"role":    "ADMIN",
		"type":    "access",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payroll/payouts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// ===== PAYOUT TESTS =====

func TestPayrollHandler_ListPayouts(t *testing.T) {
	svc := &fakePayrollService{}
	router, jwtService := newTestRouter(t, svc)

	rec, env := doRequest(t, router, jwtService, user.RoleAdmin, http.MethodGet,
		"/api/v1/payroll/payouts?status=DRAFT&page=2&limit=20&period_start=2025-03-30", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotFilter.Status)
	assert.Equal(t, "DRAFT", *svc.gotFilter.Status)
	require.NotNil(t, svc.gotFilter.PeriodStart)
	assert.Equal(t, 2, svc.gotFilter.Page)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(41), env.Meta.TotalItems)
	assert.Equal(t, 3, env.Meta.TotalPages)
}

func TestPayrollHandler_UpdatePayoutStatus(t *testing.T) {
	svc := &fakePayrollService{}
	router, jwtService := newTestRouter(t, svc)

	rec, env := doRequest(t, router, jwtService, user.RoleAdmin, http.MethodPatch,
		"/api/v1/payroll/payouts/p-1/status", map[string]string{"status": "APPROVED"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "p-1", svc.gotStatusReq.ID)
	assert.Equal(t, "APPROVED", svc.gotStatusReq.Status)
}

func TestPayrollHandler_UpdatePayoutStatus_NotFound(t *testing.T) {
	router, jwtService := newTestRouter(t, &fakePayrollService{statusErr: payroll.ErrPayoutNotFound})

	rec, _ := doRequest(t, router, jwtService, user.RoleAdmin, http.MethodPatch,
		"/api/v1/payroll/payouts/missing/status", map[string]string{"status": "PAID"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ===== SUMMARY / PREVIEW TESTS =====

func TestPayrollHandler_GetPayoutSummary(t *testing.T) {
	svc := &fakePayrollService{}
	router, jwtService := newTestRouter(t, svc)

	rec, _ := doRequest(t, router, jwtService, user.RoleInvestor, http.MethodGet,
		"/api/v1/payroll/summary?period_start=2025-03-30&period_end=2025-04-29", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-03-30", svc.gotPeriod.Start.Format(payroll.DateLayout))
	assert.Equal(t, "2025-04-29", svc.gotPeriod.End.Format(payroll.DateLayout))
}

func TestPayrollHandler_GetPayoutSummary_MissingPeriod(t *testing.T) {
	router, jwtService := newTestRouter(t, &fakePayrollService{})

	rec, env := doRequest(t, router, jwtService, user.RoleAdmin, http.MethodGet, "/api/v1/payroll/summary", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "period_start")
	assert.Contains(t, env.Error.Details, "period_end")
}

func TestPayrollHandler_PreviewPeriod(t *testing.T) {
	svc := &fakePayrollService{}
	router, jwtService := newTestRouter(t, svc)

	rec, env := doRequest(t, router, jwtService, user.RoleAdmin, http.MethodGet, "/api/v1/payroll/period?date=2025-04-15", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotReference)
	var preview payroll.PeriodPreviewResponse
	require.NoError(t, json.Unmarshal(env.Data, &preview))
	assert.Equal(t, 2640, preview.TargetMinutes)
}

func TestRouter_Heartbeat(t *testing.T) {
	router, _ := newTestRouter(t, &fakePayrollService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
