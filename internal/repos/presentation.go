package repos

import (
  "context"
  "errors"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/dbrainio/presenton/internal/logger"
  "github.com/dbrainio/presenton/internal/types"
)

type PresentationRepo interface {
  GetByID(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID) (*types.Presentation, error)
  Create(ctx context.Context, tx *gorm.DB, presentation *types.Presentation) (*types.Presentation, error)
  SetSlideCount(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID, nSlides int) error
}

type presentationRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPresentationRepo(db *gorm.DB, baseLog *logger.Logger) PresentationRepo {
  repoLog := baseLog.With("repo", "PresentationRepo")
  return &presentationRepo{db: db, log: repoLog}
}

func (r *presentationRepo) GetByID(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID) (*types.Presentation, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var presentation types.Presentation
  err := transaction.WithContext(ctx).
    Where("id = ?", presentationID).
    First(&presentation).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &presentation, nil
}

func (r *presentationRepo) Create(ctx context.Context, tx *gorm.DB, presentation *types.Presentation) (*types.Presentation, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).Create(presentation).Error; err != nil {
    return nil, err
  }
  return presentation, nil
}

// SetSlideCount updates just the denormalized counter column. The counter is
// a cache over the live slide rows; callers derive the authoritative value
// from an ordered listing.
func (r *presentationRepo) SetSlideCount(ctx context.Context, tx *gorm.DB, presentationID uuid.UUID, nSlides int) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if nSlides < 0 {
    nSlides = 0
  }
  if err := transaction.WithContext(ctx).
    Model(&types.Presentation{}).
    Where("id = ?", presentationID).
    Update("n_slides", nSlides).Error; err != nil {
    return err
  }
  return nil
}
