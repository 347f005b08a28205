package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/spotlane/pricing/internal/pricing/domain"
)

// Query timestamps accept RFC 3339 or a bare local datetime.
var calculateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseCalculateTime(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range calculateTimeLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func bindCalculateRequest(c *gin.Context, parkingID string) (pricingdomain.CalculateRequest, bool) {
	start, ok := parseCalculateTime(c.Query("startDate"))
	if !ok {
		AbortWithError(c, newValidationError("startDate", "invalid_interval", "invalid value"))
		return pricingdomain.CalculateRequest{}, false
	}
	end, ok := parseCalculateTime(c.Query("endDate"))
	if !ok {
		AbortWithError(c, newValidationError("endDate", "invalid_interval", "invalid value"))
		return pricingdomain.CalculateRequest{}, false
	}

	return pricingdomain.CalculateRequest{
		ParkingID: strings.TrimSpace(parkingID),
		StartDate: start,
		EndDate:   end,
	}, true
}

func (s *Server) CalculatePrice(c *gin.Context) {
	req, ok := bindCalculateRequest(c, c.Param("parkingId"))
	if !ok {
		return
	}

	resp, err := s.pricingSvc.CalculatePrice(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PriceForRange(c *gin.Context) {
	req, ok := bindCalculateRequest(c, c.Query("parkingId"))
	if !ok {
		return
	}

	resp, err := s.pricingSvc.PriceForRange(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Browsing previews only need the bottom line.
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"parking_id":  resp.ParkingID,
		"total_cents": resp.TotalCents,
		"currency":    resp.Currency,
	}})
}

func (s *Server) HistoricalPricing(c *gin.Context) {
	days := 0
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("days", "invalid_range", "invalid value"))
			return
		}
		days = parsed
	}

	var startDate, endDate time.Time
	if raw := strings.TrimSpace(c.Query("startDate")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, newValidationError("startDate", "invalid_range", "invalid value"))
			return
		}
		startDate = parsed
	}
	if raw := strings.TrimSpace(c.Query("endDate")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			AbortWithError(c, newValidationError("endDate", "invalid_range", "invalid value"))
			return
		}
		endDate = parsed
	}

	resp, err := s.pricingSvc.Historical(c.Request.Context(), pricingdomain.HistoricalRequest{
		ParkingID: strings.TrimSpace(c.Param("parkingId")),
		Days:      days,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// CalculateRateLimit throttles the public calculate endpoint per client IP.
func (s *Server) CalculateRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.calculateLimiter.Enabled() {
			c.Next()
			return
		}

		result, err := s.calculateLimiter.AllowClient(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Redis being down should not take the endpoint with it.
			c.Next()
			return
		}
		if !result.Allowed {
			if result.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			}
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		c.Next()
	}
}

func isPricingValidationError(err error) bool {
	switch err {
	case pricingdomain.ErrInvalidParking,
		pricingdomain.ErrInvalidInterval,
		pricingdomain.ErrInvalidRange,
		pricingdomain.ErrNegativeBasePrice:
		return true
	default:
		return false
	}
}
