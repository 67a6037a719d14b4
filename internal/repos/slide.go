package repos

import (
  "context"
  "errors"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/dbrainio/presenton/internal/logger"
  "github.com/dbrainio/presenton/internal/types"
)

type SlideRepo interface {
  GetByID(ctx context.Context, tx *gorm.DB, slideID uuid.UUID) (*types.Slide, error)
  GetByPresentationAndIndex(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID, index int) (*types.Slide, error)
  ListByPresentation(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID) ([]*types.Slide, error)
  ListFromIndexDesc(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID, index int) ([]*types.Slide, error)
  ListAfterIndexAsc(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID, index int) ([]*types.Slide, error)
  Create(ctx context.Context, tx *gorm.DB, slide *types.Slide) (*types.Slide, error)
  Reassign(ctx context.Context, tx *gorm.DB, oldID uuid.UUID, slide *types.Slide) error
  SaveAll(ctx context.Context, tx *gorm.DB, slides []*types.Slide) error
  DeleteByID(ctx context.Context, tx *gorm.DB, slideID uuid.UUID) error
}

type slideRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewSlideRepo(db *gorm.DB, baseLog *logger.Logger) SlideRepo {
  repoLog := baseLog.With("repo", "SlideRepo")
  return &slideRepo{db: db, log: repoLog}
}

func (r *slideRepo) GetByID(ctx context.Context, tx *gorm.DB, slideID uuid.UUID) (*types.Slide, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var slide types.Slide
  err := transaction.WithContext(ctx).
    Where("id = ?", slideID).
    First(&slide).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &slide, nil
}

func (r *slideRepo) GetByPresentationAndIndex(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID, index int) (*types.Slide, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var slide types.Slide
  err := transaction.WithContext(ctx).
    Where(`presentation_id = ? AND "index" = ?`, presentationID, index).
    First(&slide).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &slide, nil
}

func (r *slideRepo) ListByPresentation(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID) ([]*types.Slide, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Slide
  if err := transaction.WithContext(ctx).
    Where("presentation_id = ?", presentationID).
    Order(`"index" ASC`).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// ListFromIndexDesc returns slides with index >= the given index, highest
// index first. Insert shifts apply in this order so no two live rows ever
// momentarily share an index if the batch is applied row by row.
func (r *slideRepo) ListFromIndexDesc(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID, index int) ([]*types.Slide, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Slide
  if err := transaction.WithContext(ctx).
    Where(`presentation_id = ? AND "index" >= ?`, presentationID, index).
    Order(`"index" DESC`).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

// ListAfterIndexAsc returns slides with index > the given index, lowest index
// first. Delete shifts apply in this order; see ListFromIndexDesc.
func (r *slideRepo) ListAfterIndexAsc(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID, index int) ([]*types.Slide, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.Slide
  if err := transaction.WithContext(ctx).
    Where(`presentation_id = ? AND "index" > ?`, presentationID, index).
    Order(`"index" ASC`).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *slideRepo) Create(ctx context.Context, tx *gorm.DB, slide *types.Slide) (*types.Slide, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).Create(slide).Error; err != nil {
    return nil, err
  }
  return slide, nil
}

// Reassign rewrites the row that currently holds oldID with the slide's new
// identity and content fields. Edits reassign the slide id so downstream
// consumers see the row as new content; the index and presentation reference
// stay put.
func (r *slideRepo) Reassign(ctx context.Context, tx *gorm.DB, oldID uuid.UUID, slide *types.Slide) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  res := transaction.WithContext(ctx).
    Model(&types.Slide{}).
    Where("id = ?", oldID).
    Updates(map[string]any{
      "id":           slide.ID,
      "layout":       slide.Layout,
      "content":      slide.Content,
      "speaker_note": slide.SpeakerNote,
      "html_content": slide.HTMLContent,
    })
  if res.Error != nil {
    return res.Error
  }
  if res.RowsAffected == 0 {
    return gorm.ErrRecordNotFound
  }
  return nil
}

// SaveAll persists slides one row at a time in the order given. Callers
// encode the shift direction in the slice order; this method must not reorder
// or batch them.
func (r *slideRepo) SaveAll(ctx context.Context, tx *gorm.DB, slides []*types.Slide) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  for _, slide := range slides {
    if err := transaction.WithContext(ctx).Save(slide).Error; err != nil {
      return err
    }
  }
  return nil
}

func (r *slideRepo) DeleteByID(ctx context.Context, tx *gorm.DB, slideID uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).
    Unscoped().
    Where("id = ?", slideID).
    Delete(&types.Slide{}).Error; err != nil {
    return err
  }
  return nil
}
