package services

import (
  "context"
  "encoding/json"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/dbrainio/presenton/internal/logger"
  "github.com/dbrainio/presenton/internal/repos"
  "github.com/dbrainio/presenton/internal/types"
)

type CreatePresentationInput struct {
  Layout       types.PresentationLayout
  Language     string
  Tone         string
  Verbosity    string
  Instructions string
}

type PresentationService interface {
  CreatePresentation(ctx context.Context, input CreatePresentationInput) (*types.Presentation, error)
  GetPresentationWithSlides(ctx context.Context, presentationID uuid.UUID) (*types.PresentationWithSlides, error)
}

type presentationService struct {
  db               *gorm.DB
  log              *logger.Logger
  presentationRepo repos.PresentationRepo
  slideRepo        repos.SlideRepo
}

func NewPresentationService(db *gorm.DB, baseLog *logger.Logger, presentationRepo repos.PresentationRepo, slideRepo repos.SlideRepo) PresentationService {
  return &presentationService{
    db:               db,
    log:              baseLog.With("service", "PresentationService"),
    presentationRepo: presentationRepo,
    slideRepo:        slideRepo,
  }
}

func (s *presentationService) CreatePresentation(ctx context.Context, input CreatePresentationInput) (*types.Presentation, error) {
  layoutDoc, err := json.Marshal(input.Layout)
  if err != nil {
    return nil, fmt.Errorf("marshal layout: %w", err)
  }

  presentation := &types.Presentation{
    ID:           uuid.New(),
    NSlides:      0,
    Layout:       datatypes.JSON(layoutDoc),
    Language:     input.Language,
    Tone:         input.Tone,
    Verbosity:    input.Verbosity,
    Instructions: input.Instructions,
  }
  if _, err := s.presentationRepo.Create(ctx, nil, presentation); err != nil {
    s.log.Warn("CreatePresentation: create failed", "error", err)
    return nil, err
  }
  return presentation, nil
}

func (s *presentationService) GetPresentationWithSlides(ctx context.Context, presentationID uuid.UUID) (*types.PresentationWithSlides, error) {
  presentation, err := s.presentationRepo.GetByID(ctx, nil, presentationID)
  if err != nil {
    return nil, err
  }
  if presentation == nil {
    return nil, fmt.Errorf("%w: presentation %s", ErrNotFound, presentationID)
  }

  slides, err := s.slideRepo.ListByPresentation(ctx, nil, presentationID)
  if err != nil {
    return nil, err
  }
  return &types.PresentationWithSlides{Presentation: *presentation, Slides: slides}, nil
}
