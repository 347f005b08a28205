package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	priceruledomain "github.com/spotlane/pricing/internal/pricerule/domain"
)

type createPriceRuleRequest struct {
	ParkingID       string                     `json:"parking_id"`
	Name            string                     `json:"name"`
	Description     string                     `json:"description"`
	Type            string                     `json:"type"`
	AdjustmentType  string                     `json:"adjustment_type"`
	AdjustmentValue float64                    `json:"adjustment_value"`
	Conditions      priceruledomain.Conditions `json:"conditions"`
	Priority        int                        `json:"priority"`
	IsActive        *bool                      `json:"is_active"`
}

func (s *Server) CreatePriceRule(c *gin.Context) {
	var req createPriceRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.priceRuleSvc.Create(c.Request.Context(), priceruledomain.CreateRequest{
		ParkingID:       strings.TrimSpace(req.ParkingID),
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		AdjustmentType:  req.AdjustmentType,
		AdjustmentValue: req.AdjustmentValue,
		Conditions:      req.Conditions,
		Priority:        req.Priority,
		IsActive:        req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPriceRuleByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.priceRuleSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPriceRules(c *gin.Context) {
	var req priceruledomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.priceRuleSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePriceRule(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req priceruledomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.priceRuleSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePriceRule(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.priceRuleSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func isPriceRuleValidationError(err error) bool {
	switch err {
	case priceruledomain.ErrInvalidID,
		priceruledomain.ErrInvalidParking,
		priceruledomain.ErrInvalidName,
		priceruledomain.ErrInvalidRuleType,
		priceruledomain.ErrInvalidAdjustmentType,
		priceruledomain.ErrInvalidAdjustmentValue,
		priceruledomain.ErrInvalidTimeCondition,
		priceruledomain.ErrInvalidDayCondition,
		priceruledomain.ErrInvalidDateCondition,
		priceruledomain.ErrInvalidDurationCondition:
		return true
	default:
		return false
	}
}
