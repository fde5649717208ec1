package web

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/user/icebreaker-videos/internal/config"
	"github.com/user/icebreaker-videos/internal/model"
	"github.com/user/icebreaker-videos/internal/query"
	"github.com/user/icebreaker-videos/internal/tags"
)

// section is one of the three top-level listings of the site
type section struct {
	path         string
	category     model.Category
	heading      string
	subheading   string
	emptyTitle   string
	emptyMessage string
	// noun is used in the "no ... found with the selected tags" message
	noun string
	// tagTitle and tagHeading build the titles of the tag pages under the section
	tagTitle   func(site config.SiteConfig, names string) string
	tagHeading func(names string) string
	title      func(site config.SiteConfig) string
}

var (
	homeSection = section{
		path:         "/",
		heading:      "Discover Icebreaker Games",
		subheading:   "Fun and engaging activities to energize your team, classroom, or event",
		emptyTitle:   "No videos found",
		emptyMessage: "Check back soon for new icebreaker games!",
		noun:         "videos",
		title: func(site config.SiteConfig) string {
			return site.Name + " - Fun Video Resources for Teams & Classrooms"
		},
		tagTitle: func(site config.SiteConfig, names string) string {
			return names + " - " + site.Name
		},
		tagHeading: func(names string) string {
			return names + " Icebreaker Games"
		},
	}

	shortsSection = section{
		path:         "/shorts",
		category:     model.CategoryShort,
		heading:      "Short Videos",
		subheading:   "Quick and engaging icebreaker ideas that you can learn in minutes",
		emptyTitle:   "No short videos found",
		emptyMessage: "Check back soon for quick icebreaker game ideas!",
		noun:         "short videos",
		title: func(site config.SiteConfig) string {
			return "Short Videos - " + site.Name
		},
		tagTitle: func(site config.SiteConfig, names string) string {
			return names + " - Short Icebreaker Videos"
		},
		tagHeading: func(names string) string {
			return names + " - Short Videos"
		},
	}

	longFormSection = section{
		path:         "/long-form",
		category:     model.CategoryLong,
		heading:      "Long Form Videos",
		subheading:   "In-depth tutorials and comprehensive guides for icebreaker games",
		emptyTitle:   "No long videos found",
		emptyMessage: "Check back soon for in-depth icebreaker game tutorials!",
		noun:         "long videos",
		title: func(site config.SiteConfig) string {
			return "Long Form Videos - " + site.Name
		},
		tagTitle: func(site config.SiteConfig, names string) string {
			return names + " - Long Form Icebreaker Videos"
		},
		tagHeading: func(names string) string {
			return names + " - Long Form Videos"
		},
	}
)

// tagOption is one entry of the tag filter
type tagOption struct {
	Name     string
	Slug     string
	Count    int64
	Selected bool
	URL      string
}

// tagFilterView is the tag filter shown above listings
type tagFilterView struct {
	Tags          []tagOption
	SelectedNames []string
	ClearURL      string
}

// Multiple reports whether more than one tag is selected
func (f tagFilterView) Multiple() bool {
	return len(f.SelectedNames) > 1
}

// pageView holds what the layout needs
type pageView struct {
	Site        config.SiteConfig
	Title       string
	Description string
	Canonical   string
	Nav         string
}

// listingView is the data of a listing page
type listingView struct {
	pageView
	Heading      string
	Subheading   string
	Search       string
	Filter       tagFilterView
	Videos       []*model.Video
	Total        int64
	HasMore      bool
	Page         int
	EmptyTitle   string
	EmptyMessage string
	// LoadMoreURL is the API query for further pages, without the page parameter
	LoadMoreURL string
}

// videoView is the data of a video detail page
type videoView struct {
	pageView
	Video   *model.Video
	Tags    []*model.Tag
	Related []*model.Video
}

// CategoryText is the long badge text on the detail page
func (v videoView) CategoryText() string {
	return CategoryLabel(v.Video) + " Video"
}

func newTagFilter(all []*model.TagWithCount, basePath, search string, selected []string) tagFilterView {
	filter := tagFilterView{
		Tags:     make([]tagOption, 0, len(all)),
		ClearURL: ClearTagsURL(basePath, search),
	}
	for _, t := range all {
		filter.Tags = append(filter.Tags, tagOption{
			Name:     t.Name,
			Slug:     t.Slug,
			Count:    t.VideoCount,
			Selected: slices.Contains(selected, t.Slug),
			URL:      ToggleTagURL(basePath, search, selected, t.Slug),
		})
	}
	filter.SelectedNames = tags.NamesFor(all, selected)
	return filter
}

// loadMoreURL returns the API query the client uses for further pages
func loadMoreURL(req query.Request) string {
	q := url.Values{}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if len(req.TagSlugs) > 0 {
		q.Set("tags", strings.Join(req.TagSlugs, ","))
	}
	if req.Category != "" {
		q.Set("category", string(req.Category))
	}
	if len(q) == 0 {
		return "/api/videos"
	}
	return "/api/videos?" + q.Encode()
}

// emptyText explains an empty listing
func (s section) emptyText(search string, tagged bool) string {
	switch {
	case search != "":
		return "No results for \"" + search + "\". Try a different search term."
	case tagged:
		return fmt.Sprintf("No %s found with the selected tags. Try different tags.", s.noun)
	default:
		return s.emptyMessage
	}
}
