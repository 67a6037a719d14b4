package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/dbrainio/presenton/internal/clients/redis"
  "github.com/dbrainio/presenton/internal/logger"
  "github.com/dbrainio/presenton/internal/repos"
  "github.com/dbrainio/presenton/internal/types"
)

// SlideCollectionManager mutates the ordered slide collection of a
// presentation. Every operation is atomic: index contiguity, the denormalized
// slide count, and generated assets are committed together or not at all.
type SlideCollectionManager interface {
  InsertSlide(ctx context.Context, presentationID uuid.UUID, index int, outlineText string) (*types.PresentationWithSlides, error)
  DeleteSlide(ctx context.Context, presentationID uuid.UUID, index int) (*types.PresentationWithSlides, error)
  ReplaceSlideContent(ctx context.Context, presentationID uuid.UUID, index int, prompt string) (*types.Slide, error)
  ReplaceSlideHTML(ctx context.Context, slideID uuid.UUID, prompt string, html *string) (*types.Slide, error)
}

type slideCollectionManager struct {
  db               *gorm.DB
  log              *logger.Logger
  presentationRepo repos.PresentationRepo
  slideRepo        repos.SlideRepo
  assetRepo        repos.ImageAssetRepo
  coordinator      AssetCoordinator
  generator        SlideGenerator
  locker           redis.PresentationLocker
}

func NewSlideCollectionManager(
  db *gorm.DB,
  baseLog *logger.Logger,
  presentationRepo repos.PresentationRepo,
  slideRepo repos.SlideRepo,
  assetRepo repos.ImageAssetRepo,
  coordinator AssetCoordinator,
  generator SlideGenerator,
  locker redis.PresentationLocker,
) SlideCollectionManager {
  return &slideCollectionManager{
    db:               db,
    log:              baseLog.With("service", "SlideCollectionManager"),
    presentationRepo: presentationRepo,
    slideRepo:        slideRepo,
    assetRepo:        assetRepo,
    coordinator:      coordinator,
    generator:        generator,
    locker:           locker,
  }
}

func (s *slideCollectionManager) InsertSlide(ctx context.Context, presentationID uuid.UUID, index int, outlineText string) (*types.PresentationWithSlides, error) {
  unlock, err := s.locker.Lock(ctx, presentationID)
  if err != nil {
    return nil, err
  }
  defer unlock()

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
  if index < 0 || index > len(slides) {
    return nil, fmt.Errorf("%w: insert at %d with %d slides", ErrIndexOutOfRange, index, len(slides))
  }

  outline := types.SlideOutline{Content: outlineText}
  slideLayout, layoutGroup, err := s.resolveLayout(ctx, presentation, outline)
  if err != nil {
    return nil, err
  }

  content, err := s.generator.GenerateSlideContent(
    ctx,
    slideLayout,
    outline,
    presentation.Language,
    presentation.Tone,
    presentation.Verbosity,
    presentation.Instructions,
  )
  if err != nil {
    return nil, err
  }

  // Reconcile mutates content in place; the slide is built from it after.
  assets, err := s.coordinator.Reconcile(ctx, presentationID, nil, content)
  if err != nil {
    return nil, err
  }

  newSlide := &types.Slide{
    ID:             uuid.New(),
    PresentationID: presentationID,
    Index:          index,
    Layout:         slideLayout.ID,
    LayoutGroup:    layoutGroup,
    Content:        datatypes.JSONMap(content),
    SpeakerNote:    types.SpeakerNoteFromContent(content),
  }

  err = s.db.Transaction(func(tx *gorm.DB) error {
    // Shift in descending index order so no two live rows share an index
    // while the batch is applied row by row.
    shifted, err := s.slideRepo.ListFromIndexDesc(ctx, tx, presentationID, index)
    if err != nil {
      return err
    }
    for _, slide := range shifted {
      slide.Index++
    }
    if err := s.slideRepo.SaveAll(ctx, tx, shifted); err != nil {
      return err
    }

    if _, err := s.slideRepo.Create(ctx, tx, newSlide); err != nil {
      return err
    }
    if _, err := s.assetRepo.Create(ctx, tx, assets); err != nil {
      return err
    }

    // Counter is derived from the listing rather than the stored value, so a
    // stale counter recovers here.
    return s.presentationRepo.SetSlideCount(ctx, tx, presentationID, len(slides)+1)
  })
  if err != nil {
    return nil, err
  }

  return s.collection(ctx, presentationID)
}

func (s *slideCollectionManager) DeleteSlide(ctx context.Context, presentationID uuid.UUID, index int) (*types.PresentationWithSlides, error) {
  unlock, err := s.locker.Lock(ctx, presentationID)
  if err != nil {
    return nil, err
  }
  defer unlock()

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
  if index < 0 || index >= len(slides) {
    return nil, fmt.Errorf("%w: delete at %d with %d slides", ErrIndexOutOfRange, index, len(slides))
  }

  target, err := s.slideRepo.GetByPresentationAndIndex(ctx, nil, presentationID, index)
  if err != nil {
    return nil, err
  }
  if target == nil {
    // The range check said this index is live; a failed point lookup means
    // the collection is already inconsistent.
    return nil, fmt.Errorf("%w: no slide at index %d of presentation %s", ErrConsistencyViolation, index, presentationID)
  }

  err = s.db.Transaction(func(tx *gorm.DB) error {
    if err := s.slideRepo.DeleteByID(ctx, tx, target.ID); err != nil {
      return err
    }

    // Ascending order here, the mirror of the insert shift.
    shifted, err := s.slideRepo.ListAfterIndexAsc(ctx, tx, presentationID, index)
    if err != nil {
      return err
    }
    for _, slide := range shifted {
      slide.Index--
    }
    if err := s.slideRepo.SaveAll(ctx, tx, shifted); err != nil {
      return err
    }

    return s.presentationRepo.SetSlideCount(ctx, tx, presentationID, len(slides)-1)
  })
  if err != nil {
    return nil, err
  }

  return s.collection(ctx, presentationID)
}

func (s *slideCollectionManager) ReplaceSlideContent(ctx context.Context, presentationID uuid.UUID, index int, prompt string) (*types.Slide, error) {
  unlock, err := s.locker.Lock(ctx, presentationID)
  if err != nil {
    return nil, err
  }
  defer unlock()

  presentation, err := s.presentationRepo.GetByID(ctx, nil, presentationID)
  if err != nil {
    return nil, err
  }
  if presentation == nil {
    return nil, fmt.Errorf("%w: presentation %s", ErrNotFound, presentationID)
  }

  slide, err := s.slideRepo.GetByPresentationAndIndex(ctx, nil, presentationID, index)
  if err != nil {
    return nil, err
  }
  if slide == nil {
    return nil, fmt.Errorf("%w: slide at index %d of presentation %s", ErrNotFound, index, presentationID)
  }

  layout := presentation.GetLayout()
  slideLayout, err := s.generator.SelectSlideLayout(ctx, prompt, layout, slide)
  if err != nil {
    return nil, err
  }

  newContent, err := s.generator.GenerateEditedSlideContent(ctx, prompt, slide, presentation.Language, slideLayout)
  if err != nil {
    return nil, err
  }

  assets, err := s.coordinator.Reconcile(ctx, presentationID, map[string]any(slide.Content), newContent)
  if err != nil {
    return nil, err
  }

  // A content replace always reassigns the slide identity so downstream
  // consumers can track the update.
  oldID := slide.ID
  slide.ID = uuid.New()
  slide.Layout = slideLayout.ID
  slide.Content = datatypes.JSONMap(newContent)
  slide.SpeakerNote = types.SpeakerNoteFromContent(newContent)

  err = s.db.Transaction(func(tx *gorm.DB) error {
    if err := s.slideRepo.Reassign(ctx, tx, oldID, slide); err != nil {
      return err
    }
    _, err := s.assetRepo.Create(ctx, tx, assets)
    return err
  })
  if err != nil {
    return nil, err
  }

  return slide, nil
}

func (s *slideCollectionManager) ReplaceSlideHTML(ctx context.Context, slideID uuid.UUID, prompt string, html *string) (*types.Slide, error) {
  resolved, err := s.slideRepo.GetByID(ctx, nil, slideID)
  if err != nil {
    return nil, err
  }
  if resolved == nil {
    return nil, fmt.Errorf("%w: slide %s", ErrNotFound, slideID)
  }

  unlock, err := s.locker.Lock(ctx, resolved.PresentationID)
  if err != nil {
    return nil, err
  }
  defer unlock()

  // Re-read under the lock; the first lookup only located the presentation.
  slide, err := s.slideRepo.GetByID(ctx, nil, slideID)
  if err != nil {
    return nil, err
  }
  if slide == nil {
    return nil, fmt.Errorf("%w: slide %s", ErrNotFound, slideID)
  }

  htmlToEdit := ""
  if html != nil && *html != "" {
    htmlToEdit = *html
  } else if slide.HTMLContent != nil {
    htmlToEdit = *slide.HTMLContent
  }
  if htmlToEdit == "" {
    return nil, ErrNoHTMLContent
  }

  edited, err := s.generator.GenerateEditedSlideHTML(ctx, prompt, htmlToEdit)
  if err != nil {
    return nil, err
  }

  // Same identity-reassignment rule as content edits; HTML edits skip asset
  // reconciliation entirely.
  oldID := slide.ID
  slide.ID = uuid.New()
  slide.HTMLContent = &edited

  err = s.db.Transaction(func(tx *gorm.DB) error {
    return s.slideRepo.Reassign(ctx, tx, oldID, slide)
  })
  if err != nil {
    return nil, err
  }

  return slide, nil
}

// resolveLayout picks the slot template for a new slide: ordered layouts map
// positionally, unordered ones go through structure generation. Out-of-bounds
// suggestions clamp to the first template.
func (s *slideCollectionManager) resolveLayout(ctx context.Context, presentation *types.Presentation, outline types.SlideOutline) (types.SlideLayout, string, error) {
  layout := presentation.GetLayout()
  if len(layout.Slides) == 0 {
    return types.SlideLayout{}, "", fmt.Errorf("%w: presentation %s has no layout templates", ErrGenerationFailed, presentation.ID)
  }

  var structure types.PresentationStructure
  if layout.Ordered {
    structure = layout.ToStructure()
  } else {
    var err error
    structure, err = s.generator.GenerateStructure(
      ctx,
      types.PresentationOutline{Slides: []types.SlideOutline{outline}},
      layout,
      presentation.Instructions,
      true,
    )
    if err != nil {
      return types.SlideLayout{}, "", err
    }
  }
  if len(structure.Slides) == 0 {
    return types.SlideLayout{}, "", fmt.Errorf("%w: empty structure for presentation %s", ErrGenerationFailed, presentation.ID)
  }

  layoutIndex := structure.Slides[0]
  if layoutIndex < 0 || layoutIndex >= len(layout.Slides) {
    layoutIndex = 0
  }
  return layout.Slides[layoutIndex], layout.Name, nil
}

func (s *slideCollectionManager) collection(ctx context.Context, presentationID uuid.UUID) (*types.PresentationWithSlides, error) {
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
