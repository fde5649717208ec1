package query

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/user/icebreaker-videos/internal/model"
	"github.com/user/icebreaker-videos/internal/store"
	"github.com/user/icebreaker-videos/internal/tags"
)

const (
	// PageSize is the number of videos in one page of results
	PageSize = 20
	// RelatedLimit is the number of related videos shown next to a video
	RelatedLimit = 4
	// MaxPage is the highest page whose offset fits in an int
	MaxPage = math.MaxInt / PageSize
)

// Request describes one page of a video listing.
// Empty fields do not constrain the result.
type Request struct {
	Search   string
	TagSlugs []string
	Category model.Category
	Page     int
}

// Result is one page of a video listing plus the size of the whole listing
type Result struct {
	Videos  []*model.Video `json:"videos"`
	Total   int64          `json:"total"`
	HasMore bool           `json:"hasMore"`
	Page    int            `json:"page"`
	// Tags are the requested tags that exist, ordered by name
	Tags []*model.Tag `json:"-"`
}

// Offset returns the position of the first video of the page in the listing
func (r *Result) Offset() int {
	return Offset(r.Page)
}

// NormalizePage clamps page numbers into [1, MaxPage]
func NormalizePage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	}
	return page
}

// Offset returns the listing offset of page
func Offset(page int) int {
	return (NormalizePage(page) - 1) * PageSize
}

// Engine resolves listing requests into paginated, counted results
type Engine struct {
	store store.Store
	tags  *tags.Directory
}

// NewEngine creates a query engine
func NewEngine(store store.Store, directory *tags.Directory) *Engine {
	return &Engine{
		store: store,
		tags:  directory,
	}
}

// FirstPage returns the first page of the listing, as used for the initial render
func (e *Engine) FirstPage(ctx context.Context, req Request) (*Result, error) {
	req.Page = 1
	return e.Find(ctx, req)
}

// Page returns the requested page of the listing, as used for incremental fetches
func (e *Engine) Page(ctx context.Context, req Request) (*Result, error) {
	return e.Find(ctx, req)
}

// Find resolves req. Tags are combined with OR, category and search narrow the
// tag selection. When tags were requested but none of them exist, the
// result is empty.
func (e *Engine) Find(ctx context.Context, req Request) (*Result, error) {
	page := NormalizePage(req.Page)
	result := &Result{
		Videos: []*model.Video{},
		Page:   page,
		Tags:   []*model.Tag{},
	}

	filter := store.VideoFilter{
		Search: strings.TrimSpace(req.Search),
	}
	if req.Category != "" {
		if c, ok := model.ParseCategory(string(req.Category)); ok {
			filter.Category = c
		} else {
			log.Debug().Str("category", string(req.Category)).Msg("Ignoring unknown category")
		}
	}

	if slugs := tags.NormalizeSlugs(req.TagSlugs); len(slugs) > 0 {
		resolved, err := e.tags.ResolveSlugs(ctx, slugs)
		if err != nil {
			return nil, err
		}
		if len(resolved) == 0 {
			return result, nil
		}
		result.Tags = resolved
		filter.TagIDs = tags.IDs(resolved)
	}

	total, err := e.store.CountVideos(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}
	result.Total = total

	offset := Offset(page)
	if int64(offset) >= total {
		return result, nil
	}

	videos, err := e.store.FindVideos(ctx, filter, PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to find videos: %w", err)
	}
	if videos != nil {
		result.Videos = videos
	}
	result.HasMore = int64(offset+len(result.Videos)) < total

	return result, nil
}

// VideoBySlug returns the video with slug, nil when there is none
func (e *Engine) VideoBySlug(ctx context.Context, slug string) (*model.Video, error) {
	video, err := e.store.GetVideoBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get video %q: %w", slug, err)
	}
	return video, nil
}

// Related returns the newest videos other than video
func (e *Engine) Related(ctx context.Context, video *model.Video, limit int) ([]*model.Video, error) {
	if limit <= 0 {
		limit = RelatedLimit
	}
	videos, err := e.store.GetRelatedVideos(ctx, video.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get related videos: %w", err)
	}
	if videos == nil {
		videos = []*model.Video{}
	}
	return videos, nil
}
