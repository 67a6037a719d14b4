package types

import "fmt"

// ImagePrompt describes one image to fetch or generate for a slide.
type ImagePrompt struct {
	Prompt      string  `json:"prompt"`
	ThemePrompt *string `json:"theme_prompt,omitempty"`
	// PresentationID groups generated images per presentation in object storage.
	PresentationID *string `json:"presentation_id,omitempty"`
}

func (p ImagePrompt) GetImagePrompt(withTheme bool) string {
	if withTheme && p.ThemePrompt != nil && *p.ThemePrompt != "" {
		return fmt.Sprintf("%s, %s", p.Prompt, *p.ThemePrompt)
	}
	return p.Prompt
}
