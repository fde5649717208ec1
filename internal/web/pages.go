package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/icebreaker-videos/internal/model"
	"github.com/user/icebreaker-videos/internal/query"
	"github.com/user/icebreaker-videos/internal/tags"
)

func (s *Server) page(title, description, path, nav string) pageView {
	return pageView{
		Site:        s.deps.Site,
		Title:       title,
		Description: description,
		Canonical:   s.deps.Site.BaseURL + path,
		Nav:         nav,
	}
}

// handleListing serves a section listing; ?tags=a,b filters by tag and, on
// the home page, ?search= filters by text
func (s *Server) handleListing(sec section) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := query.Request{
			TagSlugs: tags.SplitSlugs(c.Query("tags"), ","),
			Category: sec.category,
		}
		if sec.category == "" {
			req.Search = c.Query("search")
		}

		view, ok := s.listing(c, sec, req)
		if !ok {
			return
		}
		view.pageView = s.page(sec.title(s.deps.Site), sec.subheading, sec.path, sec.path)
		view.Heading = sec.heading
		s.render(c, http.StatusOK, "listing", view)
	}
}

// handleTagListing serves /tag/a+b style pages. Unknown tags yield 404.
func (s *Server) handleTagListing(sec section) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := query.Request{
			TagSlugs: tags.SplitSlugs(c.Param("slugs"), "+"),
			Category: sec.category,
			Search:   c.Query("search"),
		}
		if len(req.TagSlugs) == 0 {
			s.handleNotFound(c)
			return
		}

		view, ok := s.listing(c, sec, req)
		if !ok {
			return
		}
		if len(view.Filter.SelectedNames) == 0 {
			s.handleNotFound(c)
			return
		}

		names := JoinNames(view.Filter.SelectedNames)
		view.pageView = s.page(sec.tagTitle(s.deps.Site, names), sec.subheading, c.Request.URL.Path, sec.path)
		view.Heading = sec.tagHeading(names)
		s.render(c, http.StatusOK, "listing", view)
	}
}

// listing runs the first-page query and builds the shared part of a listing view.
// It writes the error page itself and reports false on failure.
func (s *Server) listing(c *gin.Context, sec section, req query.Request) (*listingView, bool) {
	ctx := c.Request.Context()

	start := time.Now()
	result, err := s.deps.Engine.FirstPage(ctx, req)
	RecordQueryDuration("page", time.Since(start))
	if err != nil {
		s.handleError(c, err, "Failed to load videos")
		return nil, false
	}

	allTags, err := s.deps.Tags.GetAllTags(ctx)
	if err != nil {
		s.handleError(c, err, "Failed to load tags")
		return nil, false
	}

	resolved := make([]string, 0, len(result.Tags))
	for _, slug := range req.TagSlugs {
		for _, t := range result.Tags {
			if t.Slug == slug {
				resolved = append(resolved, slug)
			}
		}
	}

	return &listingView{
		Subheading:   sec.subheading,
		Search:       req.Search,
		Filter:       newTagFilter(allTags, sec.path, req.Search, resolved),
		Videos:       result.Videos,
		Total:        result.Total,
		HasMore:      result.HasMore,
		Page:         result.Page,
		EmptyTitle:   sec.emptyTitle,
		EmptyMessage: sec.emptyText(req.Search, len(req.TagSlugs) > 0),
		LoadMoreURL:  loadMoreURL(req),
	}, true
}

// handleVideo serves the detail page of a video
func (s *Server) handleVideo(c *gin.Context) {
	ctx := c.Request.Context()

	video, err := s.deps.Engine.VideoBySlug(ctx, c.Param("slug"))
	if err != nil {
		s.handleError(c, err, "Failed to load video")
		return
	}
	if video == nil {
		s.handleNotFound(c)
		return
	}

	videoTags, err := s.deps.Tags.GetTagsByVideoID(ctx, video.ID)
	if err != nil {
		s.handleError(c, err, "Failed to load video tags")
		return
	}

	related, err := s.deps.Engine.Related(ctx, video, query.RelatedLimit)
	if err != nil {
		s.handleError(c, err, "Failed to load related videos")
		return
	}

	description := video.DescriptionText()
	if description == "" {
		description = "Watch " + video.Title + " on " + s.deps.Site.Name
	}

	nav := longFormSection.path
	if video.EffectiveCategory() == model.CategoryShort {
		nav = shortsSection.path
	}

	s.render(c, http.StatusOK, "video", videoView{
		pageView: s.page(video.Title+" - "+s.deps.Site.Name, description, c.Request.URL.Path, nav),
		Video:    video,
		Tags:     videoTags,
		Related:  related,
	})
}

// handleNotFound renders the 404 page
func (s *Server) handleNotFound(c *gin.Context) {
	s.render(c, http.StatusNotFound, "notfound", s.page("Page Not Found - "+s.deps.Site.Name, "", c.Request.URL.Path, ""))
}

// handleError logs err and renders the error page without partial data
func (s *Server) handleError(c *gin.Context, err error, msg string) {
	requestLog(c).Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	RecordError("storage")
	c.Error(err)
	s.render(c, http.StatusInternalServerError, "error", s.page("Something went wrong - "+s.deps.Site.Name, "", c.Request.URL.Path, ""))
}
