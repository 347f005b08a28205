package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	parkingdomain "github.com/spotlane/pricing/internal/parking/domain"
)

type createParkingRequest struct {
	OwnerID        string         `json:"owner_id"`
	Title          string         `json:"title"`
	Address        string         `json:"address"`
	Timezone       string         `json:"timezone"`
	BasePriceCents int64          `json:"base_price_cents"`
	Currency       string         `json:"currency"`
	Metadata       map[string]any `json:"metadata"`
}

func (s *Server) CreateParking(c *gin.Context) {
	var req createParkingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.parkingSvc.Create(c.Request.Context(), parkingdomain.CreateRequest{
		OwnerID:        strings.TrimSpace(req.OwnerID),
		Title:          req.Title,
		Address:        req.Address,
		Timezone:       req.Timezone,
		BasePriceCents: req.BasePriceCents,
		Currency:       req.Currency,
		Metadata:       req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetParkingByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.parkingSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListParkings(c *gin.Context) {
	var req parkingdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.parkingSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateBasePriceRequest struct {
	BasePriceCents int64 `json:"base_price_cents"`
}

func (s *Server) UpdateParkingBasePrice(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updateBasePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.parkingSvc.UpdateBasePrice(c.Request.Context(), id, req.BasePriceCents)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isParkingValidationError(err error) bool {
	switch err {
	case parkingdomain.ErrInvalidID,
		parkingdomain.ErrInvalidOwner,
		parkingdomain.ErrInvalidTitle,
		parkingdomain.ErrInvalidTimezone,
		parkingdomain.ErrInvalidBasePrice,
		parkingdomain.ErrInvalidCurrency:
		return true
	default:
		return false
	}
}
