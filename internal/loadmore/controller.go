// Package loadmore is the client side of incremental listing: a controller
// that appends pages of videos fetched from the site's JSON API.
package loadmore

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/user/icebreaker-videos/internal/model"
)

// Page is one page of results as served by GET /api/videos
type Page struct {
	Videos  []*model.Video `json:"videos"`
	Total   int64          `json:"total"`
	HasMore bool           `json:"hasMore"`
	Page    int            `json:"page"`
}

// Request is the filter a listing was rendered with
type Request struct {
	Search   string
	Tags     []string
	Category model.Category
}

// Fetcher retrieves a page of a listing
type Fetcher interface {
	Fetch(ctx context.Context, req Request, page int) (*Page, error)
}

// Controller holds the videos loaded so far for one listing.
// At most one fetch is in flight at a time.
type Controller struct {
	fetcher Fetcher

	mu         sync.Mutex
	req        Request
	videos     []*model.Video
	page       int
	total      int64
	hasMore    bool
	loading    bool
	generation uint64
}

// NewController creates a controller seeded with the initially rendered page
func NewController(fetcher Fetcher, req Request, initial *Page) *Controller {
	c := &Controller{fetcher: fetcher}
	c.Reset(req, initial)
	return c
}

// Reset replaces the state with a new listing. A fetch in flight for the
// previous listing is discarded when it completes.
func (c *Controller) Reset(req Request, initial *Page) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.req = req
	c.loading = false
	c.videos = nil
	c.page = 1
	c.total = 0
	c.hasMore = false
	if initial != nil {
		c.videos = append([]*model.Video(nil), initial.Videos...)
		if initial.Page > 0 {
			c.page = initial.Page
		}
		c.total = initial.Total
		c.hasMore = initial.HasMore
	}
}

// LoadMore fetches the next page and appends it. It reports whether a page
// was appended: nothing happens while another fetch is running or once the
// listing is exhausted. On failure the loaded videos are kept and the error
// is returned; the caller decides whether to try again.
func (c *Controller) LoadMore(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.loading || !c.hasMore {
		c.mu.Unlock()
		return false, nil
	}
	c.loading = true
	generation := c.generation
	req := c.req
	next := c.page + 1
	c.mu.Unlock()

	page, err := c.fetcher.Fetch(ctx, req, next)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		log.Debug().Int("page", next).Msg("Discarding page fetched before reset")
		return false, nil
	}
	c.loading = false

	if err != nil {
		log.Error().Err(err).Int("page", next).Msg("Error loading more videos")
		return false, fmt.Errorf("failed to load page %d: %w", next, err)
	}

	c.videos = append(c.videos, page.Videos...)
	c.page = next
	c.total = page.Total
	c.hasMore = page.HasMore
	return true, nil
}

// LoadAll keeps loading until the listing is exhausted or limit videos are
// loaded; a limit of 0 means no limit
func (c *Controller) LoadAll(ctx context.Context, limit int) error {
	for c.HasMore() {
		if limit > 0 && len(c.Videos()) >= limit {
			return nil
		}
		loaded, err := c.LoadMore(ctx)
		if err != nil {
			return err
		}
		if !loaded {
			return nil
		}
	}
	return nil
}

// Videos returns the loaded videos in listing order
func (c *Controller) Videos() []*model.Video {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*model.Video(nil), c.videos...)
}

// Page returns the number of the last loaded page
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Total returns the total reported by the last loaded page
func (c *Controller) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}
