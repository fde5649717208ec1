package store

import (
	"context"
	"strings"

	"github.com/user/icebreaker-videos/internal/model"
)

// Store defines the read operations the site performs against persistent storage
type Store interface {
	// Video operations
	FindVideos(ctx context.Context, filter VideoFilter, limit, offset int) ([]*model.Video, error)
	CountVideos(ctx context.Context, filter VideoFilter) (int64, error)
	GetVideoBySlug(ctx context.Context, slug string) (*model.Video, error)
	GetRelatedVideos(ctx context.Context, excludeID uint, limit int) ([]*model.Video, error)
	ListSitemapVideos(ctx context.Context) ([]*model.Video, error)

	// Tag operations
	ListTagsWithCounts(ctx context.Context) ([]*model.TagWithCount, error)
	GetTagsBySlugs(ctx context.Context, slugs []string) ([]*model.Tag, error)
	GetTagsByVideoID(ctx context.Context, videoID uint) ([]*model.Tag, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// VideoFilter is the predicate shared by FindVideos and CountVideos.
// Zero-valued fields do not constrain the result.
type VideoFilter struct {
	// TagIDs selects videos carrying at least one of the tags
	TagIDs []uint
	// Category restricts to a single category
	Category model.Category
	// Search is a case-insensitive substring matched against title or description
	Search string
}

// LikePattern returns a lower-cased LIKE pattern matching s as a literal substring
func LikePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// MatchesSearch reports whether title or description contains search, ignoring case
func MatchesSearch(v *model.Video, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(v.Title), needle) ||
		strings.Contains(strings.ToLower(v.DescriptionText()), needle)
}
