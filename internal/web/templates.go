package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/icebreaker-videos/internal/cache"
	"github.com/user/icebreaker-videos/internal/model"
	"github.com/user/icebreaker-videos/internal/sitemap"
)

const htmlContentType = "text/html; charset=utf-8"

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"duration": func(v *model.Video) string {
		return FormatDuration(v.Duration())
	},
	"thumbnail": ThumbnailURL,
	"embed":     EmbedURL,
	"category":  CategoryLabel,
	"videoPath": sitemap.VideoPath,
	"plural":    Plural,
	"join":      JoinNames,
}

// views holds one template set per page, each sharing the layout and card partials
type views struct {
	pages map[string]*template.Template
}

func loadViews() *views {
	base := template.Must(template.New("").Funcs(templateFuncs).
		ParseFS(templateFS, "templates/layout.html", "templates/card.html"))

	v := &views{pages: make(map[string]*template.Template)}
	for _, name := range []string{"listing", "video", "notfound", "error"} {
		page := template.Must(base.Clone())
		v.pages[name] = template.Must(page.ParseFS(templateFS, "templates/"+name+".html"))
	}
	return v
}

func (v *views) execute(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// render writes the named page. Successful renders of cacheable requests are
// stored in the page cache.
func (s *Server) render(c *gin.Context, status int, name string, data interface{}) {
	body, err := s.views.execute(name, data)
	if err != nil {
		requestLog(c).Error().Err(err).Str("template", name).Msg("Failed to render page")
		RecordError("render")
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	if path := c.GetString(cachePathKey); path != "" && status == http.StatusOK {
		page := &cache.Page{Body: body, ContentType: htmlContentType, RenderedAt: time.Now()}
		if err := s.deps.Pages.Set(c.Request.Context(), path, page); err != nil {
			requestLog(c).Warn().Err(err).Str("path", path).Msg("Failed to cache page")
			RecordCacheResult("error")
		}
	}

	c.Data(status, htmlContentType, body)
}

const cachePathKey = "page_cache_path"

// pageCache serves cached pages and marks misses so render stores the result.
// Requests with a query string bypass the cache.
func (s *Server) pageCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || c.Request.URL.RawQuery != "" {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		page, ok, err := s.deps.Pages.Get(c.Request.Context(), path)
		if err != nil {
			requestLog(c).Warn().Err(err).Str("path", path).Msg("Page cache lookup failed")
			RecordCacheResult("error")
			c.Next()
			return
		}
		if ok {
			RecordCacheResult("hit")
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, page.ContentType, page.Body)
			c.Abort()
			return
		}

		RecordCacheResult("miss")
		c.Header("X-Cache", "MISS")
		c.Set(cachePathKey, path)
		c.Next()
	}
}
