package handler

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/dorian/quill/internal/api/middleware"
	"github.com/dorian/quill/internal/logger"
	"github.com/dorian/quill/internal/service"
	"github.com/gin-gonic/gin"
)

// AIHandler handles the generation endpoints.
type AIHandler struct {
	creations *service.CreationService
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(creations *service.CreationService) *AIHandler {
	return &AIHandler{creations: creations}
}

type articleRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Length int    `json:"length" binding:"required"`
}

type blogTitleRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type imageRequest struct {
	Prompt  string `json:"prompt" binding:"required"`
	Publish bool   `json:"publish"`
}

// GenerateArticle handles POST /api/ai/generate-article.
func (h *AIHandler) GenerateArticle(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, errors.New("caller identity missing"))
		return
	}

	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	content, err := h.creations.GenerateArticle(c.Request.Context(), caller, req.Prompt, req.Length)
	if err != nil {
		logger.CtxError(c.Request.Context(), "Article generation failed: %v", err)
		respondError(c, err)
		return
	}

	respondContent(c, content)
}

// GenerateBlogTitle handles POST /api/ai/generate-blog-title.
func (h *AIHandler) GenerateBlogTitle(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, errors.New("caller identity missing"))
		return
	}

	var req blogTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	content, err := h.creations.GenerateBlogTitle(c.Request.Context(), caller, req.Prompt)
	if err != nil {
		logger.CtxError(c.Request.Context(), "Blog title generation failed: %v", err)
		respondError(c, err)
		return
	}

	respondContent(c, content)
}

// GenerateImage handles POST /api/ai/generate-image.
func (h *AIHandler) GenerateImage(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, errors.New("caller identity missing"))
		return
	}

	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	content, err := h.creations.GenerateImage(c.Request.Context(), caller, req.Prompt, req.Publish)
	if err != nil {
		logger.CtxError(c.Request.Context(), "Image generation failed: %v", err)
		respondError(c, err)
		return
	}

	respondContent(c, content)
}

// RemoveBackground handles POST /api/ai/remove-image-background.
func (h *AIHandler) RemoveBackground(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, errors.New("caller identity missing"))
		return
	}

	filename, data, err := readUpload(c, "image")
	if err != nil {
		respondError(c, err)
		return
	}

	content, err := h.creations.RemoveBackground(c.Request.Context(), caller, filename, data)
	if err != nil {
		logger.CtxError(c.Request.Context(), "Background removal failed: %v", err)
		respondError(c, err)
		return
	}

	respondContent(c, content)
}

// RemoveObject handles POST /api/ai/remove-image-object.
func (h *AIHandler) RemoveObject(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, errors.New("caller identity missing"))
		return
	}

	object := c.PostForm("object")
	if object == "" {
		respondError(c, errors.New("object is required"))
		return
	}

	filename, data, err := readUpload(c, "image")
	if err != nil {
		respondError(c, err)
		return
	}

	content, err := h.creations.RemoveObject(c.Request.Context(), caller, filename, data, object)
	if err != nil {
		logger.CtxError(c.Request.Context(), "Object removal failed: %v", err)
		respondError(c, err)
		return
	}

	respondContent(c, content)
}

// ReviewResume handles POST /api/ai/resume-review.
func (h *AIHandler) ReviewResume(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, errors.New("caller identity missing"))
		return
	}

	_, data, err := readUpload(c, "resume")
	if err != nil {
		respondError(c, err)
		return
	}

	content, err := h.creations.ReviewResume(c.Request.Context(), caller, data)
	if err != nil {
		logger.CtxError(c.Request.Context(), "Resume review failed: %v", err)
		respondError(c, err)
		return
	}

	respondContent(c, content)
}

// readUpload fetches a multipart file field, rejecting oversize uploads
// before the bytes are read.
func readUpload(c *gin.Context, field string) (string, []byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", nil, errors.New(field + " file is required")
	}
	if fileHeader.Size > service.MaxUploadBytes {
		return "", nil, service.ErrFileTooLarge
	}

	data, err := readFile(fileHeader)
	if err != nil {
		return "", nil, err
	}
	return fileHeader.Filename, data, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
