package handlers

import (
	"net/http"
	"strings"

	"aduan-agent/config"
	apperrors "aduan-agent/errors"
	"aduan-agent/pipeline"
	"aduan-agent/social"
	"aduan-agent/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ComplaintHandler struct {
	pipeline *pipeline.Pipeline
	resolver *social.Resolver
	cfg      *config.Config
	logger   *zap.Logger
}

func NewComplaintHandler(p *pipeline.Pipeline, resolver *social.Resolver, cfg *config.Config, logger *zap.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		pipeline: p,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
	}
}

// validateComplaint returns the trimmed complaint text or an invalid-input
// error with a user-facing message.
func (h *ComplaintHandler) validateComplaint(req *types.ComplaintRequest) (string, error) {
	complaint := strings.TrimSpace(req.Text())
	if complaint == "" {
		return "", apperrors.WrapError(apperrors.ErrInvalidInput, "Complaint is missing")
	}
	if len(complaint) < h.cfg.MinComplaintLength {
		return "", apperrors.WrapErrorf(apperrors.ErrInvalidInput,
			"Complaint must be at least %d characters", h.cfg.MinComplaintLength)
	}
	return complaint, nil
}

// abortWithError maps a validation error onto an HTTP status. Anything that
// is not invalid input is an internal failure and stays generic.
func abortWithError(c *gin.Context, err error) {
	if apperrors.IsInvalidInput(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// ProcessComplaint handles POST /api/complaint.
func (h *ComplaintHandler) ProcessComplaint(c *gin.Context) {
	var req types.ComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format in request body"})
		return
	}

	complaint, err := h.validateComplaint(&req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	tone := pipeline.NormalizeTone(req.Tone)
	result := h.pipeline.Process(c.Request.Context(), complaint, tone)

	contacts := make([]types.SuggestedContact, 0, len(result.Matches))
	for _, m := range result.Matches {
		contacts = append(contacts, types.SuggestedContact{
			Name:        m.Name,
			Score:       m.Score,
			Description: m.Description,
			SocialMedia: m.SocialMedia,
			Website:     m.Website,
			Phone:       m.Phone,
			Email:       m.Email,
		})
	}

	c.JSON(http.StatusOK, types.ComplaintResponse{
		GeneratedText:     result.GeneratedText,
		SuggestedContacts: contacts,
		Rationale:         result.Rationale,
		SocialHandleInfo:  result.SocialHandle,
	})
}

// LookupHandle handles POST /api/social-handle for direct handle lookups.
func (h *ComplaintHandler) LookupHandle(c *gin.Context) {
	var req types.HandleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format in request body"})
		return
	}

	name := strings.TrimSpace(req.MinistryName)
	if name == "" {
		abortWithError(c, apperrors.WrapError(apperrors.ErrInvalidInput, "ministry_name is required"))
		return
	}

	c.JSON(http.StatusOK, h.resolver.Resolve(c.Request.Context(), name))
}
