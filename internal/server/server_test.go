package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/spotlane/pricing/internal/pricing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePricingService struct {
	calculateCalls int
	lastRequest    pricingdomain.CalculateRequest
	calc           *pricingdomain.PriceCalculation
	err            error
}

func (f *fakePricingService) CalculatePrice(ctx context.Context, req pricingdomain.CalculateRequest) (*pricingdomain.PriceCalculation, error) {
	f.calculateCalls++
	f.lastRequest = req
	_ = ctx
	if f.err != nil {
		return nil, f.err
	}
	return f.calc, nil
}

func (f *fakePricingService) PriceForRange(ctx context.Context, req pricingdomain.CalculateRequest) (*pricingdomain.PriceCalculation, error) {
	return f.CalculatePrice(ctx, req)
}

func (f *fakePricingService) Historical(ctx context.Context, req pricingdomain.HistoricalRequest) (*pricingdomain.HistoricalResponse, error) {
	_ = ctx
	_ = req
	if f.err != nil {
		return nil, f.err
	}
	return &pricingdomain.HistoricalResponse{ParkingID: req.ParkingID}, nil
}

func newTestServer(pricingSvc pricingdomain.Service) *Server {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	return NewServer(ServerParams{
		Gin:        engine,
		PricingSvc: pricingSvc,
	})
}

func TestCalculatePrice_OK(t *testing.T) {
	fake := &fakePricingService{
		calc: &pricingdomain.PriceCalculation{
			ParkingID:     "42",
			DurationHours: 3,
			SubtotalCents: 3000,
			TaxCents:      300,
			TotalCents:    3300,
			Currency:      "EUR",
		},
	}
	srv := newTestServer(fake)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/price-rules/calculate-price/42?startDate=2026-03-02T10:00:00Z&endDate=2026-03-02T13:00:00Z", nil)
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fake.calculateCalls)
	assert.Equal(t, "42", fake.lastRequest.ParkingID)
	assert.Equal(t, 3.0, fake.lastRequest.EndDate.Sub(fake.lastRequest.StartDate).Hours())

	var body struct {
		Data pricingdomain.PriceCalculation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3300), body.Data.TotalCents)
}

func TestCalculatePrice_BadDates(t *testing.T) {
	fake := &fakePricingService{}
	srv := newTestServer(fake)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/price-rules/calculate-price/42?startDate=tomorrow&endDate=2026-03-02T13:00:00Z", nil)
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, fake.calculateCalls)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestCalculatePrice_ParkingNotFound(t *testing.T) {
	fake := &fakePricingService{err: pricingdomain.ErrParkingNotFound}
	srv := newTestServer(fake)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/price-rules/calculate-price/42?startDate=2026-03-02T10:00:00Z&endDate=2026-03-02T13:00:00Z", nil)
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestCalculatePrice_InvalidIntervalMapsTo400(t *testing.T) {
	fake := &fakePricingService{err: pricingdomain.ErrInvalidInterval}
	srv := newTestServer(fake)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/price-rules/calculate-price/42?startDate=2026-03-02T13:00:00Z&endDate=2026-03-02T10:00:00Z", nil)
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_interval")
}

func TestPriceForRange_UsesQueryParkingID(t *testing.T) {
	fake := &fakePricingService{
		calc: &pricingdomain.PriceCalculation{TotalCents: 100},
	}
	srv := newTestServer(fake)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/pricing/price-for-range?parkingId=42&startDate=2026-03-02T10:00:00Z&endDate=2026-03-02T13:00:00Z", nil)
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", fake.lastRequest.ParkingID)
}

func TestHistorical_InvalidDays(t *testing.T) {
	fake := &fakePricingService{}
	srv := newTestServer(fake)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pricing/historical/42?days=soon", nil)
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePriceRule_MalformedBody(t *testing.T) {
	srv := newTestServer(&fakePricingService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/price-rules", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}
