package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ImageAsset struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	// IsUploaded indicates whether the image made it to object storage; when
	// storage is unconfigured assets stay local and this remains false.
	IsUploaded bool           `gorm:"column:is_uploaded;not null;default:false" json:"is_uploaded"`
	Path       string         `gorm:"column:path;not null" json:"path"`
	StorageURL *string        `gorm:"column:storage_url" json:"storage_url,omitempty"`
	Extras     datatypes.JSON `gorm:"column:extras;type:jsonb" json:"extras,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (ImageAsset) TableName() string { return "image_asset" }
