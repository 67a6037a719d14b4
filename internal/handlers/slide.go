package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/dbrainio/presenton/internal/logger"
  "github.com/dbrainio/presenton/internal/services"
)

type SlideHandler struct {
  log *logger.Logger
  svc services.SlideCollectionManager
}

func NewSlideHandler(log *logger.Logger, svc services.SlideCollectionManager) *SlideHandler {
  return &SlideHandler{
    log: log.With("handler", "SlideHandler"),
    svc: svc,
  }
}

type createSlideRequest struct {
  PresentationID uuid.UUID `json:"presentation_id" binding:"required"`
  SlideIndex     *int      `json:"slide_index" binding:"required"`
  Content        string    `json:"content" binding:"required"`
}

// POST /api/slide/create
func (h *SlideHandler) CreateSlide(c *gin.Context) {
  var req createSlideRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  updated, err := h.svc.InsertSlide(c.Request.Context(), req.PresentationID, *req.SlideIndex, req.Content)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, updated)
}

type editSlideRequest struct {
  PresentationID uuid.UUID `json:"presentation_id" binding:"required"`
  SlideIndex     *int      `json:"slide_index" binding:"required"`
  Prompt         string    `json:"prompt" binding:"required"`
}

// POST /api/slide/edit
func (h *SlideHandler) EditSlide(c *gin.Context) {
  var req editSlideRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  slide, err := h.svc.ReplaceSlideContent(c.Request.Context(), req.PresentationID, *req.SlideIndex, req.Prompt)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, slide)
}

type editSlideHTMLRequest struct {
  ID     uuid.UUID `json:"id" binding:"required"`
  Prompt string    `json:"prompt" binding:"required"`
  HTML   *string   `json:"html"`
}

// POST /api/slide/edit-html
func (h *SlideHandler) EditSlideHTML(c *gin.Context) {
  var req editSlideHTMLRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  slide, err := h.svc.ReplaceSlideHTML(c.Request.Context(), req.ID, req.Prompt, req.HTML)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, slide)
}

type deleteSlideRequest struct {
  PresentationID uuid.UUID `json:"presentation_id" binding:"required"`
  SlideIndex     *int      `json:"slide_index" binding:"required"`
}

// POST /api/slide/delete
func (h *SlideHandler) DeleteSlide(c *gin.Context) {
  var req deleteSlideRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  updated, err := h.svc.DeleteSlide(c.Request.Context(), req.PresentationID, *req.SlideIndex)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, updated)
}
