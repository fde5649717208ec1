// Package storetest provides an in-memory store.Store with the same query
// semantics as the SQL implementation, for use in tests.
package storetest

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/user/icebreaker-videos/internal/model"
	"github.com/user/icebreaker-videos/internal/store"
)

// BaseTime is the creation time given to videos added without one
var BaseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Store is an in-memory store.Store
type Store struct {
	mu      sync.Mutex
	videos  []*model.Video
	tags    []*model.Tag
	links   map[uint]map[uint]bool
	nextID  uint
	nextTag uint
	err     error
	calls   map[string]int
}

var _ store.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{
		links: make(map[uint]map[uint]bool),
		calls: make(map[string]int),
	}
}

// AddVideo inserts a video, filling in the ID, category and timestamps when unset.
// It panics if the external id or slug is already taken.
func (s *Store) AddVideo(v *model.Video) *model.Video {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.videos {
		if existing.Slug == v.Slug || existing.VideoID == v.VideoID {
			panic(fmt.Sprintf("storetest: duplicate video slug %q or id %q", v.Slug, v.VideoID))
		}
	}

	s.nextID++
	if v.ID == 0 {
		v.ID = s.nextID
	} else if v.ID > s.nextID {
		s.nextID = v.ID
	}
	if v.Category == "" {
		v.Category = model.CategoryLong
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = BaseTime.Add(time.Duration(v.ID) * time.Minute)
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = v.CreatedAt
	}
	s.videos = append(s.videos, v)
	return v
}

// AddTag inserts a tag. It panics if the name or slug is already taken.
func (s *Store) AddTag(name, slug string) *model.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tags {
		if existing.Name == name || existing.Slug == slug {
			panic(fmt.Sprintf("storetest: duplicate tag %q/%q", name, slug))
		}
	}
	s.nextTag++
	tag := &model.Tag{ID: s.nextTag, Name: name, Slug: slug}
	s.tags = append(s.tags, tag)
	return tag
}

// TagVideo associates a video with tags; repeated pairs are ignored
func (s *Store) TagVideo(videoID uint, tagIDs ...uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.links[videoID] == nil {
		s.links[videoID] = make(map[uint]bool)
	}
	for _, id := range tagIDs {
		s.links[videoID][id] = true
	}
}

// DeleteVideo removes a video and, like the cascading foreign key, its tag links
func (s *Store) DeleteVideo(videoID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.videos = slices.DeleteFunc(s.videos, func(v *model.Video) bool { return v.ID == videoID })
	delete(s.links, videoID)
}

// SetError makes every subsequent call fail with err; nil restores normal operation
func (s *Store) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns how many times the named method has been invoked
func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *Store) enter(method string) error {
	s.calls[method]++
	return s.err
}

func (s *Store) matches(v *model.Video, f store.VideoFilter) bool {
	if len(f.TagIDs) > 0 {
		tagged := false
		for _, id := range f.TagIDs {
			if s.links[v.ID][id] {
				tagged = true
				break
			}
		}
		if !tagged {
			return false
		}
	}
	if f.Category != "" && v.Category != f.Category {
		return false
	}
	return store.MatchesSearch(v, f.Search)
}

func (s *Store) selectVideos(f store.VideoFilter) []*model.Video {
	var out []*model.Video
	for _, v := range s.videos {
		if s.matches(v, f) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b *model.Video) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func copyVideos(in []*model.Video) []*model.Video {
	out := make([]*model.Video, len(in))
	for i, v := range in {
		c := *v
		out[i] = &c
	}
	return out
}

// FindVideos returns one window of the matching videos, newest first
func (s *Store) FindVideos(ctx context.Context, filter store.VideoFilter, limit, offset int) ([]*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("FindVideos"); err != nil {
		return nil, err
	}
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("storetest: negative limit %d or offset %d", limit, offset)
	}

	all := s.selectVideos(filter)
	if offset >= len(all) {
		return []*model.Video{}, nil
	}
	end := min(offset+limit, len(all))
	return copyVideos(all[offset:end]), nil
}

// CountVideos returns the number of matching videos
func (s *Store) CountVideos(ctx context.Context, filter store.VideoFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CountVideos"); err != nil {
		return 0, err
	}
	return int64(len(s.selectVideos(filter))), nil
}

// GetVideoBySlug returns the video with slug, nil when absent
func (s *Store) GetVideoBySlug(ctx context.Context, slug string) (*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetVideoBySlug"); err != nil {
		return nil, err
	}
	for _, v := range s.videos {
		if v.Slug == slug {
			c := *v
			return &c, nil
		}
	}
	return nil, nil
}

// GetRelatedVideos returns the newest videos other than excludeID
func (s *Store) GetRelatedVideos(ctx context.Context, excludeID uint, limit int) ([]*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetRelatedVideos"); err != nil {
		return nil, err
	}
	var out []*model.Video
	for _, v := range s.selectVideos(store.VideoFilter{}) {
		if v.ID != excludeID {
			out = append(out, v)
		}
		if len(out) == limit {
			break
		}
	}
	return copyVideos(out), nil
}

// ListSitemapVideos returns every video, most recently updated first
func (s *Store) ListSitemapVideos(ctx context.Context) ([]*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListSitemapVideos"); err != nil {
		return nil, err
	}
	out := copyVideos(s.videos)
	slices.SortFunc(out, func(a, b *model.Video) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

// ListTagsWithCounts returns all tags with distinct video counts, most used first
func (s *Store) ListTagsWithCounts(ctx context.Context) ([]*model.TagWithCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListTagsWithCounts"); err != nil {
		return nil, err
	}

	out := make([]*model.TagWithCount, 0, len(s.tags))
	for _, t := range s.tags {
		var n int64
		for _, v := range s.videos {
			if s.links[v.ID][t.ID] {
				n++
			}
		}
		out = append(out, &model.TagWithCount{Tag: *t, VideoCount: n})
	}
	slices.SortFunc(out, func(a, b *model.TagWithCount) int {
		if c := cmp.Compare(b.VideoCount, a.VideoCount); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// GetTagsBySlugs returns the known tags among slugs ordered by name
func (s *Store) GetTagsBySlugs(ctx context.Context, slugs []string) ([]*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetTagsBySlugs"); err != nil {
		return nil, err
	}
	var out []*model.Tag
	for _, t := range s.tags {
		if slices.Contains(slugs, t.Slug) {
			c := *t
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *model.Tag) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

// GetTagsByVideoID returns the tags of a video ordered by name
func (s *Store) GetTagsByVideoID(ctx context.Context, videoID uint) ([]*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetTagsByVideoID"); err != nil {
		return nil, err
	}
	var out []*model.Tag
	for _, t := range s.tags {
		if s.links[videoID][t.ID] {
			c := *t
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *model.Tag) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

// Ping reports the configured error, if any
func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enter("Ping")
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}
