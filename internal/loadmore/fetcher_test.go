package loadmore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/user/icebreaker-videos/internal/cache"
	"github.com/user/icebreaker-videos/internal/config"
	"github.com/user/icebreaker-videos/internal/model"
	"github.com/user/icebreaker-videos/internal/query"
	"github.com/user/icebreaker-videos/internal/revalidate"
	"github.com/user/icebreaker-videos/internal/sitemap"
	"github.com/user/icebreaker-videos/internal/store/storetest"
	"github.com/user/icebreaker-videos/internal/tags"
	"github.com/user/icebreaker-videos/internal/web"
)

func newTestFetcher(t *testing.T, baseURL string) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(&FetcherConfig{BaseURL: baseURL, RateLimit: 1000, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewHTTPFetcher() error = %v", err)
	}
	return f
}

func TestNewHTTPFetcher_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *FetcherConfig
	}{
		{"relative URL", &FetcherConfig{BaseURL: "/api", RateLimit: 1}},
		{"empty URL", &FetcherConfig{BaseURL: "", RateLimit: 1}},
		{"zero rate", &FetcherConfig{BaseURL: "http://localhost:8080", RateLimit: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewHTTPFetcher(tt.cfg); err == nil {
				t.Error("NewHTTPFetcher() succeeded, want error")
			}
		})
	}

	if _, err := NewHTTPFetcher(nil); err != nil {
		t.Errorf("NewHTTPFetcher(nil) error = %v", err)
	}
}

func TestHTTPFetcher_URL(t *testing.T) {
	f := newTestFetcher(t, "https://icebreakergames.video/")

	tests := []struct {
		req  Request
		page int
		want string
	}{
		{Request{}, 2, "https://icebreakergames.video/api/videos?page=2"},
		{Request{Search: "trust fall"}, 3, "https://icebreakergames.video/api/videos?page=3&search=trust+fall"},
		{Request{Tags: []string{"energizer", "virtual"}}, 2, "https://icebreakergames.video/api/videos?page=2&tags=energizer%2Cvirtual"},
		{Request{Category: model.CategoryShort}, 2, "https://icebreakergames.video/api/videos?category=short&page=2"},
	}

	for _, tt := range tests {
		if got := f.URL(tt.req, tt.page); got != tt.want {
			t.Errorf("URL(%+v, %d) = %q, want %q", tt.req, tt.page, got, tt.want)
		}
	}
}

func TestHTTPFetcher_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"Failed to fetch videos"}`)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, srv.URL).Fetch(context.Background(), Request{}, 2)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Fetch() error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusInternalServerError || statusErr.Message != "Failed to fetch videos" {
		t.Errorf("StatusError = %+v", statusErr)
	}
}

func TestHTTPFetcher_InvalidBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>")
	}))
	defer srv.Close()

	if _, err := newTestFetcher(t, srv.URL).Fetch(context.Background(), Request{}, 2); err == nil {
		t.Error("Fetch() accepted a non-JSON body")
	}
}

func TestHTTPFetcher_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"videos":[],"total":0,"hasMore":false,"page":2}`)
	}))
	defer srv.Close()

	f, err := NewHTTPFetcher(&FetcherConfig{BaseURL: srv.URL, RateLimit: 0.01, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Fetch(context.Background(), Request{}, 2); err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}

	// the next token is 100s away, beyond the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := f.Fetch(ctx, Request{}, 3); err == nil {
		t.Error("second Fetch() was not held back by the rate limiter")
	}
}

// newSite serves the real site handler over a catalog of n energizer videos
// and 5 shorts
func newSite(t *testing.T, n int) *httptest.Server {
	t.Helper()
	st := storetest.New()
	energizer := st.AddTag("Energizer", "energizer")
	for i := 1; i <= n; i++ {
		v := st.AddVideo(&model.Video{
			VideoID:  fmt.Sprintf("v%d", i),
			Slug:     fmt.Sprintf("energizer-%d", i),
			Title:    fmt.Sprintf("Energizer %d", i),
			VideoURL: fmt.Sprintf("https://www.youtube.com/watch?v=v%d", i),
		})
		st.TagVideo(v.ID, energizer.ID)
	}
	for i := 1; i <= 5; i++ {
		st.AddVideo(&model.Video{
			VideoID:  fmt.Sprintf("s%d", i),
			Slug:     fmt.Sprintf("short-%d", i),
			Title:    fmt.Sprintf("Short %d", i),
			VideoURL: fmt.Sprintf("https://www.youtube.com/watch?v=s%d", i),
			Category: model.CategoryShort,
		})
	}

	directory := tags.NewDirectory(st)
	pages := cache.NewMemoryCache(time.Minute)
	server := web.NewServer(web.Deps{
		Store:       st,
		Engine:      query.NewEngine(st, directory),
		Tags:        directory,
		Pages:       pages,
		Revalidator: revalidate.NewService(pages, ""),
		Sitemap:     sitemap.NewGenerator(st, directory, "http://example.test"),
		Site:        config.SiteConfig{BaseURL: "http://example.test", Name: "Icebreaker Games"},
	})

	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestController_AgainstSite(t *testing.T) {
	srv := newSite(t, 37)
	f := newTestFetcher(t, srv.URL)
	req := Request{Tags: []string{"energizer"}}

	first, err := f.Fetch(context.Background(), req, 1)
	if err != nil {
		t.Fatalf("Fetch(page 1) error = %v", err)
	}
	if len(first.Videos) != 20 || first.Total != 37 || !first.HasMore || first.Page != 1 {
		t.Fatalf("page 1 = %d videos, total %d, hasMore %v, page %d", len(first.Videos), first.Total, first.HasMore, first.Page)
	}

	c := NewController(f, req, first)
	if err := c.LoadAll(context.Background(), 0); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	videos := c.Videos()
	if len(videos) != 37 || c.HasMore() || c.Page() != 2 {
		t.Fatalf("loaded %d videos, hasMore %v, page %d", len(videos), c.HasMore(), c.Page())
	}
	seen := make(map[string]bool)
	for i, v := range videos {
		if want := fmt.Sprintf("energizer-%d", 37-i); v.Slug != want {
			t.Errorf("video %d = %s, want %s", i, v.Slug, want)
		}
		if seen[v.Slug] {
			t.Errorf("video %s loaded twice", v.Slug)
		}
		seen[v.Slug] = true
	}
}

func TestController_AgainstSite_Filters(t *testing.T) {
	srv := newSite(t, 10)
	f := newTestFetcher(t, srv.URL)

	tests := []struct {
		name  string
		req   Request
		total int64
	}{
		{"category", Request{Category: model.CategoryShort}, 5},
		{"search", Request{Search: "ENERGIZER 1"}, 2},
		{"unknown tag", Request{Tags: []string{"nope"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.Fetch(context.Background(), tt.req, 1)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if page.Total != tt.total || int64(len(page.Videos)) != tt.total || page.HasMore {
				t.Errorf("got %d videos, total %d, hasMore %v; want %d", len(page.Videos), page.Total, page.HasMore, tt.total)
			}
		})
	}
}
