package classifier

import (
	"testing"

	"github.com/cratedig/cratedig/internal/models"
)

func categoryName(c *models.Category) string {
	if c == nil {
		return "<nil>"
	}
	return string(*c)
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		n     int
		want  []*models.Category
	}{
		{
			name:  "clean reply",
			reply: "Track 1: **Dance Pop**\nTrack 2: **House**\nTrack 3: **Bass**",
			n:     3,
			want:  []*models.Category{ptr(models.DancePop), ptr(models.House), ptr(models.Bass)},
		},
		{
			name:  "surrounding prose",
			reply: "Here are my predictions:\n\nTrack 1: **House** because of the four-on-the-floor kick.\nThanks!",
			n:     2,
			want:  []*models.Category{ptr(models.House), nil},
		},
		{
			name:  "case insensitive label",
			reply: "track 1: **dance pop**\nTRACK 2: **HOUSE**",
			n:     2,
			want:  []*models.Category{ptr(models.DancePop), ptr(models.House)},
		},
		{
			name:  "containment both directions",
			reply: "Track 1: **bass music**\nTrack 2: **Pop**",
			n:     2,
			want:  []*models.Category{ptr(models.Bass), ptr(models.DancePop)},
		},
		{
			name:  "unknown label stays nil",
			reply: "Track 1: **Techno**\nTrack 2: **House**",
			n:     2,
			want:  []*models.Category{nil, ptr(models.House)},
		},
		{
			name:  "out of range numbers ignored",
			reply: "Track 0: **House**\nTrack 1: **Bass**\nTrack 99: **Dance Pop**",
			n:     2,
			want:  []*models.Category{ptr(models.Bass), nil},
		},
		{
			name:  "duplicate number last match wins",
			reply: "Track 1: **House**\nTrack 1: **Bass**",
			n:     1,
			want:  []*models.Category{ptr(models.Bass)},
		},
		{
			name:  "failed duplicate keeps earlier resolution",
			reply: "Track 1: **House**\nTrack 1: **Techno**",
			n:     1,
			want:  []*models.Category{ptr(models.House)},
		},
		{
			name:  "garbage reply",
			reply: "I cannot classify these tracks.",
			n:     3,
			want:  []*models.Category{nil, nil, nil},
		},
		{
			name:  "empty reply",
			reply: "",
			n:     2,
			want:  []*models.Category{nil, nil},
		},
		{
			name:  "spaced track header",
			reply: "Track   7: **House**",
			n:     7,
			want:  []*models.Category{nil, nil, nil, nil, nil, nil, ptr(models.House)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResponse(tt.reply, tt.n)
			if len(got) != tt.n {
				t.Fatalf("expected %d results, got %d", tt.n, len(got))
			}
			for i := range got {
				if categoryName(got[i]) != categoryName(tt.want[i]) {
					t.Errorf("result[%d] = %s, want %s", i, categoryName(got[i]), categoryName(tt.want[i]))
				}
			}
		})
	}
}

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		raw    string
		want   models.Category
		wantOK bool
	}{
		{"Dance Pop", models.DancePop, true},
		{"House", models.House, true},
		{"Bass", models.Bass, true},
		{"  House  ", models.House, true},
		{"house", models.House, true},
		{"deep house", models.House, true},
		{"bass music", models.Bass, true},
		{"Pop", models.DancePop, true},
		{"Dance", models.DancePop, true},
		{"Techno", "", false},
		{"Drum & Bass", models.Bass, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := resolveCategory(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("resolveCategory(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("resolveCategory(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func ptr(c models.Category) *models.Category {
	return &c
}
