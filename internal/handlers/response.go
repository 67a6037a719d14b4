package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/dbrainio/presenton/internal/services"
)

type APIError struct {
  Message string `json:"message"`
  Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps the service error taxonomy onto HTTP statuses.
func RespondServiceError(c *gin.Context, err error) {
  switch {
  case errors.Is(err, services.ErrNotFound):
    RespondError(c, http.StatusNotFound, "not_found", err)
  case errors.Is(err, services.ErrIndexOutOfRange):
    RespondError(c, http.StatusBadRequest, "index_out_of_range", err)
  case errors.Is(err, services.ErrNoHTMLContent):
    RespondError(c, http.StatusBadRequest, "no_html_content", err)
  case errors.Is(err, services.ErrGenerationFailed):
    RespondError(c, http.StatusBadGateway, "generation_failed", err)
  case errors.Is(err, services.ErrConsistencyViolation):
    RespondError(c, http.StatusInternalServerError, "consistency_violation", err)
  default:
    RespondError(c, http.StatusInternalServerError, "internal", err)
  }
}
