// Package sitemap lists the public URLs of the site for search engines
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/user/icebreaker-videos/internal/model"
	"github.com/user/icebreaker-videos/internal/store"
	"github.com/user/icebreaker-videos/internal/tags"
)

// Change frequencies used by the site
const (
	Daily  = "daily"
	Weekly = "weekly"
)

// Namespace is the sitemaps.org schema namespace
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Entry is one URL of the sitemap
type Entry struct {
	URL             string
	LastModified    time.Time
	ChangeFrequency string
	Priority        float64
}

// Generator builds the sitemap from the current catalog
type Generator struct {
	store   store.Store
	tags    *tags.Directory
	baseURL string
	now     func() time.Time
}

// NewGenerator creates a generator producing absolute URLs under baseURL
func NewGenerator(store store.Store, directory *tags.Directory, baseURL string) *Generator {
	return &Generator{
		store:   store,
		tags:    directory,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// Entries returns the static pages, then every video, then the tag pages
// in their plain, shorts and long-form variants
func (g *Generator) Entries(ctx context.Context) ([]Entry, error) {
	videos, err := g.store.ListSitemapVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos for sitemap: %w", err)
	}
	allTags, err := g.tags.GetAllTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags for sitemap: %w", err)
	}

	now := g.now().UTC()
	entries := make([]Entry, 0, 3+len(videos)+3*len(allTags))
	entries = append(entries,
		Entry{URL: g.baseURL, LastModified: now, ChangeFrequency: Daily, Priority: 1.0},
		Entry{URL: g.baseURL + "/shorts", LastModified: now, ChangeFrequency: Daily, Priority: 0.9},
		Entry{URL: g.baseURL + "/long-form", LastModified: now, ChangeFrequency: Daily, Priority: 0.9},
	)

	for _, v := range videos {
		entries = append(entries, Entry{
			URL:             g.baseURL + VideoPath(v),
			LastModified:    v.LastModified().UTC(),
			ChangeFrequency: Weekly,
			Priority:        0.7,
		})
	}

	variants := []struct {
		prefix   string
		priority float64
	}{
		{"/tag/", 0.8},
		{"/shorts/tag/", 0.7},
		{"/long-form/tag/", 0.7},
	}
	for _, variant := range variants {
		for _, t := range allTags {
			entries = append(entries, Entry{
				URL:             g.baseURL + variant.prefix + t.Slug,
				LastModified:    now,
				ChangeFrequency: Weekly,
				Priority:        variant.priority,
			})
		}
	}

	return entries, nil
}

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []url    `xml:"url"`
}

type url struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// WriteXML encodes entries as a sitemaps.org urlset
func WriteXML(w io.Writer, entries []Entry) error {
	set := urlset{Xmlns: Namespace, URLs: make([]url, len(entries))}
	for i, e := range entries {
		set.URLs[i] = url{
			Loc:        e.URL,
			LastMod:    e.LastModified.Format(time.RFC3339),
			ChangeFreq: e.ChangeFrequency,
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	return enc.Flush()
}

// VideoPath returns the site path of a video detail page
func VideoPath(v *model.Video) string {
	return "/video/" + v.Slug
}
