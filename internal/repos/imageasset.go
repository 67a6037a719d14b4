package repos

import (
  "context"

  "gorm.io/gorm"

  "github.com/dbrainio/presenton/internal/logger"
  "github.com/dbrainio/presenton/internal/types"
)

type ImageAssetRepo interface {
  Create(ctx context.Context, tx *gorm.DB, assets []*types.ImageAsset) ([]*types.ImageAsset, error)
}

type imageAssetRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewImageAssetRepo(db *gorm.DB, baseLog *logger.Logger) ImageAssetRepo {
  repoLog := baseLog.With("repo", "ImageAssetRepo")
  return &imageAssetRepo{db: db, log: repoLog}
}

func (r *imageAssetRepo) Create(ctx context.Context, tx *gorm.DB, assets []*types.ImageAsset) ([]*types.ImageAsset, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(assets) == 0 {
    return []*types.ImageAsset{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&assets).Error; err != nil {
    return nil, err
  }
  return assets, nil
}
