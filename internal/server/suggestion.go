package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	suggestiondomain "github.com/spotlane/pricing/internal/suggestion/domain"
)

type suggestPriceRequest struct {
	ParkingID string `json:"parking_id"`
}

func (s *Server) SuggestPrice(c *gin.Context) {
	var req suggestPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.suggestionSvc.Generate(c.Request.Context(), suggestiondomain.GenerateRequest{
		ParkingID: strings.TrimSpace(req.ParkingID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSuggestions(c *gin.Context) {
	var req suggestiondomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.suggestionSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSuggestionByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.suggestionSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApplySuggestion(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.suggestionSvc.Apply(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isSuggestionValidationError(err error) bool {
	switch err {
	case suggestiondomain.ErrInvalidID,
		suggestiondomain.ErrInvalidParking:
		return true
	default:
		return false
	}
}
