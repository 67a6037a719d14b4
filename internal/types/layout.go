package types

// SlideLayout is one named slot template inside a presentation layout.
type SlideLayout struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	JSONSchema map[string]any `json:"json_schema,omitempty"`
}

// PresentationLayout is the template set a presentation's slides are generated
// against. Ordered layouts consume their slots positionally; unordered ones
// require a structure-generation call to pick slots.
type PresentationLayout struct {
	Name    string        `json:"name"`
	Ordered bool          `json:"ordered"`
	Slides  []SlideLayout `json:"slides"`
}

// ToStructure maps an ordered layout to the slot sequence it implies.
func (l PresentationLayout) ToStructure() PresentationStructure {
	slots := make([]int, len(l.Slides))
	for i := range l.Slides {
		slots[i] = i
	}
	return PresentationStructure{Slides: slots}
}

// PresentationStructure is a sequence of layout slot indices, one per slide.
type PresentationStructure struct {
	Slides []int `json:"slides"`
}

type SlideOutline struct {
	Content string `json:"content"`
}

type PresentationOutline struct {
	Slides []SlideOutline `json:"slides"`
}
