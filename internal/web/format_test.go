package web

import (
	"testing"

	"github.com/user/icebreaker-videos/internal/model"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, ""},
		{-5, ""},
		{7, "0:07"},
		{60, "1:00"},
		{125, "2:05"},
		{3725, "62:05"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestVideoURLs(t *testing.T) {
	v := &model.Video{VideoID: "dQw4w9WgXcQ"}
	if got := ThumbnailURL(v); got != "https://img.youtube.com/vi/dQw4w9WgXcQ/mqdefault.jpg" {
		t.Errorf("ThumbnailURL() = %s", got)
	}
	if got := EmbedURL(v); got != "https://www.youtube.com/embed/dQw4w9WgXcQ" {
		t.Errorf("EmbedURL() = %s", got)
	}
}

func TestCategoryLabel(t *testing.T) {
	tests := []struct {
		category model.Category
		want     string
	}{
		{model.CategoryShort, "Short"},
		{model.CategoryLong, "Long"},
		{"", "Long"},
		{"weird", "Long"},
	}
	for _, tt := range tests {
		if got := CategoryLabel(&model.Video{Category: tt.category}); got != tt.want {
			t.Errorf("CategoryLabel(%q) = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestToggleTagURL(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		search   string
		selected []string
		slug     string
		want     string
	}{
		{"add first", "/", "", nil, "energizer", "/?tags=energizer"},
		{"add second", "/", "", []string{"energizer"}, "virtual", "/?tags=energizer%2Cvirtual"},
		{"remove last", "/shorts", "", []string{"energizer"}, "energizer", "/shorts"},
		{"keeps search", "/", "trust fall", []string{"energizer", "virtual"}, "energizer", "/?search=trust+fall&tags=virtual"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToggleTagURL(tt.path, tt.search, tt.selected, tt.slug); got != tt.want {
				t.Errorf("ToggleTagURL() = %s, want %s", got, tt.want)
			}
		})
	}

	if got := ClearTagsURL("/", "knot"); got != "/?search=knot" {
		t.Errorf("ClearTagsURL() = %s", got)
	}
}
