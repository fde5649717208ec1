package tags

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/icebreaker-videos/internal/model"
	"github.com/user/icebreaker-videos/internal/store"
)

// Directory answers tag questions for the site: the full tag list with
// usage counts, the tags of a single video and slug resolution
type Directory struct {
	store store.Store
}

// NewDirectory creates a tag directory backed by store
func NewDirectory(store store.Store) *Directory {
	return &Directory{store: store}
}

// GetAllTags returns every tag with its distinct video count, most used first.
// Ties are ordered by name.
func (d *Directory) GetAllTags(ctx context.Context) ([]*model.TagWithCount, error) {
	tags, err := d.store.ListTagsWithCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all tags: %w", err)
	}
	if tags == nil {
		tags = []*model.TagWithCount{}
	}
	return tags, nil
}

// GetTagsByVideoID returns the tags of a video ordered by name.
// A missing video yields an empty slice, not an error.
func (d *Directory) GetTagsByVideoID(ctx context.Context, videoID uint) ([]*model.Tag, error) {
	tags, err := d.store.GetTagsByVideoID(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags for video %d: %w", videoID, err)
	}
	if tags == nil {
		tags = []*model.Tag{}
	}
	return tags, nil
}

// ResolveSlugs returns the tags named by slugs. Unknown slugs are dropped,
// so the result may be shorter than the input or empty.
func (d *Directory) ResolveSlugs(ctx context.Context, slugs []string) ([]*model.Tag, error) {
	slugs = NormalizeSlugs(slugs)
	if len(slugs) == 0 {
		return []*model.Tag{}, nil
	}
	tags, err := d.store.GetTagsBySlugs(ctx, slugs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tag slugs: %w", err)
	}
	if tags == nil {
		tags = []*model.Tag{}
	}
	return tags, nil
}

// NormalizeSlugs trims slugs, drops empty entries and removes duplicates,
// keeping first-seen order
func NormalizeSlugs(slugs []string) []string {
	out := make([]string, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// SplitSlugs splits a joined slug list such as "a,b" or "a+b"
func SplitSlugs(joined, sep string) []string {
	if joined == "" {
		return nil
	}
	return NormalizeSlugs(strings.Split(joined, sep))
}

// NamesFor returns the display names of the known slugs, in request order
func NamesFor(all []*model.TagWithCount, slugs []string) []string {
	bySlug := make(map[string]string, len(all))
	for _, t := range all {
		bySlug[t.Slug] = t.Name
	}
	var names []string
	for _, s := range slugs {
		if name, ok := bySlug[s]; ok {
			names = append(names, name)
		}
	}
	return names
}

// IDs returns the ids of tags
func IDs(tags []*model.Tag) []uint {
	ids := make([]uint, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}
