package handler

import (
	"errors"
	"net/http"

	"github.com/dorian/quill/internal/api/middleware"
	"github.com/dorian/quill/internal/logger"
	"github.com/dorian/quill/internal/service"
	"github.com/gin-gonic/gin"
)

// UserHandler handles creation listing and like-toggle endpoints.
type UserHandler struct {
	creations *service.CreationService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(creations *service.CreationService) *UserHandler {
	return &UserHandler{creations: creations}
}

type toggleLikeRequest struct {
	ID string `json:"id" binding:"required"`
}

// GetUserCreations handles GET /api/user/get-user-creations.
func (h *UserHandler) GetUserCreations(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, errors.New("caller identity missing"))
		return
	}

	creations, err := h.creations.ListUserCreations(c.Request.Context(), caller.UserID)
	if err != nil {
		logger.CtxError(c.Request.Context(), "Listing user creations failed: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"creations": creations,
	})
}

// GetPublishedCreations handles GET /api/user/get-published-creations.
func (h *UserHandler) GetPublishedCreations(c *gin.Context) {
	creations, err := h.creations.ListPublished(c.Request.Context())
	if err != nil {
		logger.CtxError(c.Request.Context(), "Listing published creations failed: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"creations": creations,
	})
}

// ToggleLikeCreation handles POST /api/user/toggle-like-creation.
func (h *UserHandler) ToggleLikeCreation(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, errors.New("caller identity missing"))
		return
	}

	var req toggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	liked, err := h.creations.ToggleLike(c.Request.Context(), caller.UserID, req.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	if liked {
		respondMessage(c, "Creation liked")
	} else {
		respondMessage(c, "Creation unliked")
	}
}
