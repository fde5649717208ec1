package loadmore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/user/icebreaker-videos/internal/model"
)

const pageSize = 20

// fakeFetcher serves pages of a fixed catalog
type fakeFetcher struct {
	mu      sync.Mutex
	catalog []*model.Video
	calls   []int
	errs    []error
	// started and release, when set, make Fetch block until released
	started chan int
	release chan struct{}
}

func newCatalog(n int) []*model.Video {
	videos := make([]*model.Video, n)
	for i := range videos {
		videos[i] = &model.Video{ID: uint(n - i), Slug: fmt.Sprintf("video-%d", n-i)}
	}
	return videos
}

func (f *fakeFetcher) page(page int) *Page {
	offset := (page - 1) * pageSize
	var videos []*model.Video
	if offset < len(f.catalog) {
		videos = f.catalog[offset:min(offset+pageSize, len(f.catalog))]
	}
	return &Page{
		Videos:  videos,
		Total:   int64(len(f.catalog)),
		HasMore: offset+len(videos) < len(f.catalog),
		Page:    page,
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, req Request, page int) (*Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, page)
	var err error
	if len(f.errs) > 0 {
		err, f.errs = f.errs[0], f.errs[1:]
	}
	f.mu.Unlock()

	if f.started != nil {
		f.started <- page
		<-f.release
	}
	if err != nil {
		return nil, err
	}
	return f.page(page), nil
}

func (f *fakeFetcher) Calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.calls...)
}

func slugs(videos []*model.Video) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.Slug
	}
	return out
}

func sameOrder(a, b []*model.Video) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Slug != b[i].Slug {
			return false
		}
	}
	return true
}

func TestLoadMore_AppendsPages(t *testing.T) {
	f := &fakeFetcher{catalog: newCatalog(37)}
	c := NewController(f, Request{Tags: []string{"energizer"}}, f.page(1))

	if len(c.Videos()) != 20 || !c.HasMore() || c.Page() != 1 {
		t.Fatalf("initial state: %d videos, hasMore %v, page %d", len(c.Videos()), c.HasMore(), c.Page())
	}

	loaded, err := c.LoadMore(context.Background())
	if err != nil || !loaded {
		t.Fatalf("LoadMore() = %v, %v", loaded, err)
	}
	if !sameOrder(c.Videos(), f.catalog) {
		t.Errorf("loaded videos %v, want the whole catalog in order", slugs(c.Videos()))
	}
	if c.HasMore() || c.Page() != 2 || c.Total() != 37 {
		t.Errorf("after page 2: hasMore %v, page %d, total %d", c.HasMore(), c.Page(), c.Total())
	}

	loaded, err = c.LoadMore(context.Background())
	if err != nil || loaded {
		t.Errorf("LoadMore() on an exhausted listing = %v, %v", loaded, err)
	}
	if calls := f.Calls(); len(calls) != 1 || calls[0] != 2 {
		t.Errorf("fetch calls = %v, want [2]", calls)
	}
}

func TestLoadMore_FailureKeepsLoadedVideos(t *testing.T) {
	boom := errors.New("connection reset")
	f := &fakeFetcher{catalog: newCatalog(45), errs: []error{boom}}
	c := NewController(f, Request{}, f.page(1))

	loaded, err := c.LoadMore(context.Background())
	if loaded || !errors.Is(err, boom) {
		t.Fatalf("LoadMore() = %v, %v; want false and the fetch error", loaded, err)
	}
	if len(c.Videos()) != 20 || c.Page() != 1 || !c.HasMore() || c.Loading() {
		t.Errorf("state after failure: %d videos, page %d, hasMore %v, loading %v",
			len(c.Videos()), c.Page(), c.HasMore(), c.Loading())
	}
	if calls := f.Calls(); len(calls) != 1 {
		t.Errorf("failed fetch was retried: calls = %v", calls)
	}

	if loaded, err := c.LoadMore(context.Background()); !loaded || err != nil {
		t.Fatalf("LoadMore() after failure = %v, %v", loaded, err)
	}
	if c.Page() != 2 || len(c.Videos()) != 40 {
		t.Errorf("page %d with %d videos, want page 2 with 40", c.Page(), len(c.Videos()))
	}
}

func TestLoadMore_OneFetchInFlight(t *testing.T) {
	f := &fakeFetcher{
		catalog: newCatalog(60),
		started: make(chan int, 1),
		release: make(chan struct{}),
	}
	c := NewController(f, Request{}, f.page(1))

	done := make(chan bool)
	go func() {
		loaded, _ := c.LoadMore(context.Background())
		done <- loaded
	}()
	<-f.started

	if !c.Loading() {
		t.Errorf("Loading() = false during a fetch")
	}
	if loaded, err := c.LoadMore(context.Background()); loaded || err != nil {
		t.Errorf("concurrent LoadMore() = %v, %v; want a no-op", loaded, err)
	}

	close(f.release)
	if !<-done {
		t.Fatal("first LoadMore() did not append")
	}
	if calls := f.Calls(); len(calls) != 1 {
		t.Errorf("fetch calls = %v, want one", calls)
	}
	if c.Page() != 2 || len(c.Videos()) != 40 {
		t.Errorf("page %d with %d videos", c.Page(), len(c.Videos()))
	}
}

func TestReset_DiscardsFetchInFlight(t *testing.T) {
	f := &fakeFetcher{
		catalog: newCatalog(60),
		started: make(chan int, 1),
		release: make(chan struct{}),
	}
	c := NewController(f, Request{Search: "old"}, f.page(1))

	done := make(chan bool)
	go func() {
		loaded, _ := c.LoadMore(context.Background())
		done <- loaded
	}()
	<-f.started

	fresh := &Page{Videos: newCatalog(3), Total: 3, HasMore: false, Page: 1}
	c.Reset(Request{Search: "new"}, fresh)
	close(f.release)

	if <-done {
		t.Error("LoadMore() appended a page fetched before the reset")
	}
	if !sameOrder(c.Videos(), fresh.Videos) || c.Page() != 1 || c.HasMore() || c.Loading() {
		t.Errorf("state after reset: %v, page %d, hasMore %v, loading %v",
			slugs(c.Videos()), c.Page(), c.HasMore(), c.Loading())
	}
}

func TestReset_NilInitialPage(t *testing.T) {
	f := &fakeFetcher{catalog: newCatalog(30)}
	c := NewController(f, Request{}, nil)

	if len(c.Videos()) != 0 || c.HasMore() || c.Page() != 1 {
		t.Errorf("empty controller: %d videos, hasMore %v, page %d", len(c.Videos()), c.HasMore(), c.Page())
	}
	if loaded, _ := c.LoadMore(context.Background()); loaded {
		t.Error("LoadMore() fetched without a page to continue from")
	}
}

func TestLoadAll(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		limit   int
		want    int
		fetches int
	}{
		{"exhausts listing", 65, 0, 65, 3},
		{"stops at limit", 65, 30, 40, 1},
		{"limit within first page", 65, 10, 20, 0},
		{"single page", 12, 0, 12, 0},
		{"empty", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{catalog: newCatalog(tt.total)}
			c := NewController(f, Request{}, f.page(1))

			if err := c.LoadAll(context.Background(), tt.limit); err != nil {
				t.Fatalf("LoadAll() error = %v", err)
			}
			if got := len(c.Videos()); got != tt.want {
				t.Errorf("loaded %d videos, want %d", got, tt.want)
			}
			if got := len(f.Calls()); got != tt.fetches {
				t.Errorf("fetched %d times, want %d", got, tt.fetches)
			}
		})
	}
}

func TestLoadAll_StopsOnError(t *testing.T) {
	boom := errors.New("HTTP status 500")
	f := &fakeFetcher{catalog: newCatalog(65), errs: []error{nil, boom}}
	c := NewController(f, Request{}, f.page(1))

	if err := c.LoadAll(context.Background(), 0); !errors.Is(err, boom) {
		t.Fatalf("LoadAll() error = %v, want %v", err, boom)
	}
	if len(c.Videos()) != 40 {
		t.Errorf("kept %d videos, want the 40 loaded before the failure", len(c.Videos()))
	}
}

// Property: loading a listing to the end yields every video exactly once,
// in listing order, with one fetch per page after the first
func TestProperty_LoadAllMatchesListing(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("load all yields the listing in order", prop.ForAll(
		func(n int) bool {
			f := &fakeFetcher{catalog: newCatalog(n)}
			c := NewController(f, Request{}, f.page(1))
			if err := c.LoadAll(context.Background(), 0); err != nil {
				return false
			}

			pages := max(1, (n+pageSize-1)/pageSize)
			return sameOrder(c.Videos(), f.catalog) &&
				!c.HasMore() &&
				c.Page() == pages &&
				len(f.Calls()) == pages-1
		},
		gen.IntRange(0, 150),
	))

	properties.Property("pages are fetched in sequence", prop.ForAll(
		func(n int) bool {
			f := &fakeFetcher{catalog: newCatalog(n)}
			c := NewController(f, Request{}, f.page(1))
			_ = c.LoadAll(context.Background(), 0)

			for i, page := range f.Calls() {
				if page != i+2 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 150),
	))

	properties.TestingRun(t)
}
