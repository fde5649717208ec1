package web

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/user/icebreaker-videos/internal/model"
)

// FormatDuration renders seconds as m:ss, empty when unknown
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ThumbnailURL returns the YouTube thumbnail of a video
func ThumbnailURL(v *model.Video) string {
	return "https://img.youtube.com/vi/" + url.PathEscape(v.VideoID) + "/mqdefault.jpg"
}

// EmbedURL returns the YouTube player URL of a video
func EmbedURL(v *model.Video) string {
	return "https://www.youtube.com/embed/" + url.PathEscape(v.VideoID)
}

// CategoryLabel returns the short badge text for a video
func CategoryLabel(v *model.Video) string {
	if v.EffectiveCategory() == model.CategoryShort {
		return "Short"
	}
	return "Long"
}

// Plural returns "s" unless n is one
func Plural(n int64) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// JoinNames joins tag names the way page headings show them
func JoinNames(names []string) string {
	return strings.Join(names, " + ")
}

// ToggleTagURL returns path with slug added to or removed from the selected tags,
// keeping the search text
func ToggleTagURL(path, search string, selected []string, slug string) string {
	next := make([]string, 0, len(selected)+1)
	found := false
	for _, s := range selected {
		if s == slug {
			found = true
			continue
		}
		next = append(next, s)
	}
	if !found {
		next = append(next, slug)
	}
	return withQuery(path, search, next)
}

// ClearTagsURL returns path without any selected tags, keeping the search text
func ClearTagsURL(path, search string) string {
	return withQuery(path, search, nil)
}

func withQuery(path, search string, tags []string) string {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if len(tags) > 0 {
		q.Set("tags", strings.Join(tags, ","))
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
