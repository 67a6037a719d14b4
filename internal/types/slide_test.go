package types

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestSpeakerNoteFromContent(t *testing.T) {
	cases := []struct {
		name    string
		content map[string]any
		want    string
	}{
		{
			name:    "present",
			content: map[string]any{"title": "Intro", SpeakerNoteKey: "welcome everyone"},
			want:    "welcome everyone",
		},
		{
			name:    "absent",
			content: map[string]any{"title": "Intro"},
			want:    "",
		},
		{
			name:    "non string value",
			content: map[string]any{SpeakerNoteKey: 42},
			want:    "",
		},
		{
			name:    "nil content",
			content: nil,
			want:    "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SpeakerNoteFromContent(tc.content)
			if got != tc.want {
				t.Fatalf("want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestSlidePublicContentStripsReservedKey(t *testing.T) {
	s := &Slide{
		Content: datatypes.JSONMap{
			"title":        "Closing",
			"body":         "thanks",
			SpeakerNoteKey: "wrap up quickly",
		},
	}

	public := s.PublicContent()
	if _, ok := public[SpeakerNoteKey]; ok {
		t.Fatal("reserved speaker note key leaked into public content")
	}
	if public["title"] != "Closing" || public["body"] != "thanks" {
		t.Fatalf("public content fields lost: %v", public)
	}

	// the original map must not be mutated
	if _, ok := s.Content[SpeakerNoteKey]; !ok {
		t.Fatal("PublicContent mutated the stored content")
	}
}

func TestSlideMarshalJSONStripsReservedKey(t *testing.T) {
	s := &Slide{
		ID:          uuid.New(),
		Index:       1,
		Layout:      "body",
		SpeakerNote: "do not surface me",
		Content: datatypes.JSONMap{
			"title":        "Agenda",
			SpeakerNoteKey: "do not surface me",
		},
	}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal slide: %v", err)
	}
	if bytes.Contains(raw, []byte(SpeakerNoteKey)) {
		t.Fatalf("reserved key leaked into serialized slide: %s", raw)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal slide: %v", err)
	}
	content, _ := decoded["content"].(map[string]any)
	if content["title"] != "Agenda" {
		t.Fatalf("public content fields lost: %v", decoded["content"])
	}
	if decoded["speaker_note"] != "do not surface me" {
		t.Fatalf("speaker note column must still serialize: %v", decoded["speaker_note"])
	}
}

func TestPresentationLayoutToStructure(t *testing.T) {
	layout := PresentationLayout{
		Name:    "pitch",
		Ordered: true,
		Slides: []SlideLayout{
			{ID: "intro", Name: "Intro"},
			{ID: "body", Name: "Body"},
			{ID: "close", Name: "Close"},
		},
	}

	structure := layout.ToStructure()
	want := []int{0, 1, 2}
	if len(structure.Slides) != len(want) {
		t.Fatalf("structure length: want=%d got=%d", len(want), len(structure.Slides))
	}
	for i, idx := range structure.Slides {
		if idx != want[i] {
			t.Fatalf("structure[%d]: want=%d got=%d", i, want[i], idx)
		}
	}
}
