package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	resourcedomain "github.com/smallbiznis/tally/internal/resource/domain"
)

type createResourceRequest struct {
	ExternalID     int64   `json:"external_id"`
	SubscriptionID *string `json:"subscription_id"`
	IsPrePaid      *bool   `json:"is_pre_paid"`
	IsProrated     *bool   `json:"is_prorated"`
}

type updateResourceRequest struct {
	ExternalID     *int64  `json:"external_id,omitempty"`
	SubscriptionID *string `json:"subscription_id,omitempty"`
	IsPrePaid      *bool   `json:"is_pre_paid,omitempty"`
	IsProrated     *bool   `json:"is_prorated,omitempty"`
}

func (s *Server) CreateResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	subscriptionID := ""
	if req.SubscriptionID != nil {
		subscriptionID = strings.TrimSpace(*req.SubscriptionID)
	}

	resp, err := s.resourceSvc.Create(c.Request.Context(), resourcedomain.CreateResourceRequest{
		ExternalID:     req.ExternalID,
		SubscriptionID: subscriptionID,
		IsPrePaid:      req.IsPrePaid,
		IsProrated:     req.IsProrated,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListResources(c *gin.Context) {
	var query struct {
		PageToken      string `form:"page_token"`
		PageSize       int    `form:"page_size"`
		SubscriptionID string `form:"subscription_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.resourceSvc.List(c.Request.Context(), resourcedomain.ListResourceRequest{
		PageToken:      query.PageToken,
		PageSize:       query.PageSize,
		SubscriptionID: strings.TrimSpace(query.SubscriptionID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetResourceByID(c *gin.Context) {
	resp, err := s.resourceSvc.GetByID(c.Request.Context(), resourcedomain.GetResourceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateResource(c *gin.Context) {
	var req updateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.resourceSvc.Update(c.Request.Context(), resourcedomain.UpdateResourceRequest{
		ID:             strings.TrimSpace(c.Param("id")),
		ExternalID:     req.ExternalID,
		SubscriptionID: req.SubscriptionID,
		IsPrePaid:      req.IsPrePaid,
		IsProrated:     req.IsProrated,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ActivateResource(c *gin.Context) {
	resp, err := s.resourceSvc.Activate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateResource(c *gin.Context) {
	resp, err := s.resourceSvc.Deactivate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DaysActive(c *gin.Context) {
	rawFrom := strings.TrimSpace(c.Query("from"))
	if rawFrom == "" {
		AbortWithError(c, newValidationError("from", "invalid_from", "from is required"))
		return
	}

	from, err := resourcedomain.ParseInstant(rawFrom)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from instant"))
		return
	}

	req := resourcedomain.DaysActiveRequest{
		ID:   strings.TrimSpace(c.Param("id")),
		From: from,
	}

	if rawTo := strings.TrimSpace(c.Query("to")); rawTo != "" {
		to, err := resourcedomain.ParseInstant(rawTo)
		if err != nil {
			AbortWithError(c, newValidationError("to", "invalid_to", "invalid to instant"))
			return
		}
		req.To = &to
	}

	resp, err := s.resourceSvc.DaysActive(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
