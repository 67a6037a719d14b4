package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SpeakerNoteKey is the reserved content key carrying the speaker note. It is
// written by the content generator and mirrored into Slide.SpeakerNote; it is
// stripped from content handed to API consumers.
const SpeakerNoteKey = "__speaker_note__"

type Slide struct {
	ID             uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PresentationID uuid.UUID         `gorm:"type:uuid;not null;index" json:"presentation_id"`
	Presentation   *Presentation     `gorm:"constraint:OnDelete:CASCADE;foreignKey:PresentationID;references:ID" json:"presentation,omitempty"`
	Index          int               `gorm:"column:index;not null" json:"index"`
	Layout         string            `gorm:"column:layout;not null" json:"layout"`
	LayoutGroup    string            `gorm:"column:layout_group" json:"layout_group"`
	Content        datatypes.JSONMap `gorm:"column:content;type:jsonb" json:"content"`
	SpeakerNote    string            `gorm:"column:speaker_note" json:"speaker_note"`
	HTMLContent    *string           `gorm:"column:html_content" json:"html_content,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:now()" json:"updated_at"`
}

func (Slide) TableName() string { return "slide" }

// SpeakerNoteFromContent pulls the reserved speaker note entry out of a
// generated content document, defaulting to the empty string.
func SpeakerNoteFromContent(content map[string]any) string {
	if content == nil {
		return ""
	}
	if note, ok := content[SpeakerNoteKey].(string); ok {
		return note
	}
	return ""
}

// MarshalJSON serializes the slide with reserved content keys stripped. The
// speaker note reaches API consumers only through the SpeakerNote column.
func (s Slide) MarshalJSON() ([]byte, error) {
	type slideDoc Slide
	doc := slideDoc(s)
	doc.Content = datatypes.JSONMap(s.PublicContent())
	return json.Marshal(doc)
}

// PublicContent returns the slide content without reserved keys.
func (s *Slide) PublicContent() map[string]any {
	if s.Content == nil {
		return nil
	}
	out := make(map[string]any, len(s.Content))
	for k, v := range s.Content {
		if k == SpeakerNoteKey {
			continue
		}
		out[k] = v
	}
	return out
}
