package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/dbrainio/presenton/internal/services"
  "github.com/dbrainio/presenton/internal/types"
)

type PresentationHandler struct {
  svc services.PresentationService
}

func NewPresentationHandler(svc services.PresentationService) *PresentationHandler {
  return &PresentationHandler{svc: svc}
}

type createPresentationRequest struct {
  Layout       types.PresentationLayout `json:"layout" binding:"required"`
  Language     string                   `json:"language"`
  Tone         string                   `json:"tone"`
  Verbosity    string                   `json:"verbosity"`
  Instructions string                   `json:"instructions"`
}

// POST /api/presentation
func (h *PresentationHandler) CreatePresentation(c *gin.Context) {
  var req createPresentationRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  presentation, err := h.svc.CreatePresentation(c.Request.Context(), services.CreatePresentationInput{
    Layout:       req.Layout,
    Language:     req.Language,
    Tone:         req.Tone,
    Verbosity:    req.Verbosity,
    Instructions: req.Instructions,
  })
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, presentation)
}

// GET /api/presentation/:id
func (h *PresentationHandler) GetPresentation(c *gin.Context) {
  presentationID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "bad_request", err)
    return
  }

  withSlides, err := h.svc.GetPresentationWithSlides(c.Request.Context(), presentationID)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, withSlides)
}
