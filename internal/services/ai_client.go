package services

import (
  "context"

  "github.com/dbrainio/presenton/internal/types"
)

// SlideGenerator is the content-generation collaborator. Implementations call
// out to an LLM; failures and empty results surface as ErrGenerationFailed to
// callers, which abort without committing.
type SlideGenerator interface {
  GenerateSlideContent(ctx context.Context, layout types.SlideLayout, outline types.SlideOutline, language, tone, verbosity, instructions string) (map[string]any, error)
  GenerateEditedSlideContent(ctx context.Context, prompt string, slide *types.Slide, language string, layout types.SlideLayout) (map[string]any, error)
  SelectSlideLayout(ctx context.Context, prompt string, layout types.PresentationLayout, slide *types.Slide) (types.SlideLayout, error)
  GenerateStructure(ctx context.Context, outline types.PresentationOutline, layout types.PresentationLayout, instructions string, singleSlide bool) (types.PresentationStructure, error)
  GenerateEditedSlideHTML(ctx context.Context, prompt, html string) (string, error)
}
