package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Presentation struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	NSlides      int            `gorm:"column:n_slides;not null;default:0" json:"n_slides"`
	Layout       datatypes.JSON `gorm:"column:layout;type:jsonb" json:"layout"`
	Language     string         `gorm:"column:language" json:"language"`
	Tone         string         `gorm:"column:tone" json:"tone"`
	Verbosity    string         `gorm:"column:verbosity" json:"verbosity"`
	Instructions string         `gorm:"column:instructions" json:"instructions"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Presentation) TableName() string { return "presentation" }

// GetLayout decodes the stored layout document. A presentation without a
// usable layout still decodes to an empty layout with zero slide templates.
func (p *Presentation) GetLayout() PresentationLayout {
	var layout PresentationLayout
	if len(p.Layout) == 0 {
		return layout
	}
	_ = json.Unmarshal(p.Layout, &layout)
	return layout
}

// PresentationWithSlides is the response shape for operations that return the
// whole updated collection.
type PresentationWithSlides struct {
	Presentation
	Slides []*Slide `json:"slides"`
}
