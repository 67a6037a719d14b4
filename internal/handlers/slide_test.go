package handlers

import (
  "bytes"
  "context"
  "encoding/json"
  "net/http"
  "net/http/httptest"
  "strings"
  "testing"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/dbrainio/presenton/internal/logger"
  "github.com/dbrainio/presenton/internal/types"
)

type fakeCollectionManager struct {
  collection *types.PresentationWithSlides
  slide      *types.Slide
}

func (f *fakeCollectionManager) InsertSlide(_ context.Context, _ uuid.UUID, _ int, _ string) (*types.PresentationWithSlides, error) {
  return f.collection, nil
}

func (f *fakeCollectionManager) DeleteSlide(_ context.Context, _ uuid.UUID, _ int) (*types.PresentationWithSlides, error) {
  return f.collection, nil
}

func (f *fakeCollectionManager) ReplaceSlideContent(_ context.Context, _ uuid.UUID, _ int, _ string) (*types.Slide, error) {
  return f.slide, nil
}

func (f *fakeCollectionManager) ReplaceSlideHTML(_ context.Context, _ uuid.UUID, _ string, _ *string) (*types.Slide, error) {
  return f.slide, nil
}

func noteCarryingSlide() *types.Slide {
  return &types.Slide{
    ID:          uuid.New(),
    Index:       0,
    Layout:      "body",
    SpeakerNote: "internal note",
    Content: datatypes.JSONMap{
      "title":              "Roadmap",
      types.SpeakerNoteKey: "internal note",
    },
  }
}

func newSlideTestRouter(t *testing.T) (*gin.Engine, *fakeCollectionManager) {
  t.Helper()
  gin.SetMode(gin.TestMode)

  log, err := logger.New("test")
  if err != nil {
    t.Fatalf("logger: %v", err)
  }

  svc := &fakeCollectionManager{
    collection: &types.PresentationWithSlides{
      Presentation: types.Presentation{ID: uuid.New(), NSlides: 1},
      Slides:       []*types.Slide{noteCarryingSlide()},
    },
    slide: noteCarryingSlide(),
  }
  h := NewSlideHandler(log, svc)

  router := gin.New()
  router.POST("/api/slide/create", h.CreateSlide)
  router.POST("/api/slide/edit", h.EditSlide)
  return router, svc
}

func TestCreateSlideResponseOmitsReservedKey(t *testing.T) {
  router, svc := newSlideTestRouter(t)

  body, _ := json.Marshal(map[string]any{
    "presentation_id": svc.collection.ID,
    "slide_index":     0,
    "content":         "intro slide",
  })
  req := httptest.NewRequest(http.MethodPost, "/api/slide/create", bytes.NewReader(body))
  req.Header.Set("Content-Type", "application/json")
  rec := httptest.NewRecorder()
  router.ServeHTTP(rec, req)

  if rec.Code != http.StatusOK {
    t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
  }
  if strings.Contains(rec.Body.String(), types.SpeakerNoteKey) {
    t.Fatalf("reserved key leaked into response: %s", rec.Body.String())
  }

  var resp struct {
    Slides []struct {
      Content     map[string]any `json:"content"`
      SpeakerNote string         `json:"speaker_note"`
    } `json:"slides"`
  }
  if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
    t.Fatalf("decode response: %v", err)
  }
  if len(resp.Slides) != 1 {
    t.Fatalf("slides in response: want=1 got=%d", len(resp.Slides))
  }
  if resp.Slides[0].Content["title"] != "Roadmap" {
    t.Fatalf("public content fields lost: %v", resp.Slides[0].Content)
  }
  if resp.Slides[0].SpeakerNote != "internal note" {
    t.Fatalf("speaker note column must still serialize: %q", resp.Slides[0].SpeakerNote)
  }
}

func TestEditSlideResponseOmitsReservedKey(t *testing.T) {
  router, _ := newSlideTestRouter(t)

  body, _ := json.Marshal(map[string]any{
    "presentation_id": uuid.New(),
    "slide_index":     0,
    "prompt":          "make it shorter",
  })
  req := httptest.NewRequest(http.MethodPost, "/api/slide/edit", bytes.NewReader(body))
  req.Header.Set("Content-Type", "application/json")
  rec := httptest.NewRecorder()
  router.ServeHTTP(rec, req)

  if rec.Code != http.StatusOK {
    t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
  }
  if strings.Contains(rec.Body.String(), types.SpeakerNoteKey) {
    t.Fatalf("reserved key leaked into response: %s", rec.Body.String())
  }
}
