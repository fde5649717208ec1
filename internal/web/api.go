package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/icebreaker-videos/internal/model"
	"github.com/user/icebreaker-videos/internal/query"
	"github.com/user/icebreaker-videos/internal/revalidate"
	"github.com/user/icebreaker-videos/internal/tags"
)

// VideosResponse is one page of the incremental fetch API
type VideosResponse struct {
	Videos  []*model.Video `json:"videos"`
	Total   int64          `json:"total"`
	HasMore bool           `json:"hasMore"`
	Page    int            `json:"page"`
}

// pageParam parses the page query value; anything unparsable is the first page
func pageParam(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return query.NormalizePage(page)
}

// handleAPIVideos serves GET /api/videos?page=&search=&tags=a,b&category=
func (s *Server) handleAPIVideos(c *gin.Context) {
	req := query.Request{
		Search:   c.Query("search"),
		TagSlugs: tags.SplitSlugs(c.Query("tags"), ","),
		Category: model.Category(c.Query("category")),
		Page:     pageParam(c.Query("page")),
	}

	start := time.Now()
	result, err := s.deps.Engine.Page(c.Request.Context(), req)
	RecordQueryDuration("api", time.Since(start))
	if err != nil {
		requestLog(c).Error().Err(err).Msg("Error fetching videos")
		RecordError("storage")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch videos"})
		return
	}

	c.JSON(http.StatusOK, VideosResponse{
		Videos:  result.Videos,
		Total:   result.Total,
		HasMore: result.HasMore,
		Page:    result.Page,
	})
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// handleRevalidate serves POST /api/revalidate?secret=&path=
func (s *Server) handleRevalidate(c *gin.Context) {
	result, err := s.deps.Revalidator.Revalidate(c.Request.Context(), c.Query("secret"), c.Query("path"))
	switch {
	case errors.Is(err, revalidate.ErrUnauthorized):
		RecordRevalidation("unauthorized")
		c.JSON(http.StatusUnauthorized, gin.H{
			"success":   false,
			"message":   "Invalid or missing secret token",
			"timestamp": timestamp(),
		})
		return
	case err != nil:
		requestLog(c).Error().Err(err).Msg("Revalidation error")
		RecordRevalidation("error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Error occurred during revalidation",
			"error":     err.Error(),
			"timestamp": timestamp(),
		})
		return
	}

	RecordRevalidation("success")
	response := gin.H{
		"success":   true,
		"message":   result.Message(),
		"timestamp": timestamp(),
	}
	if result.Path != "" {
		response["path"] = result.Path
	} else {
		response["paths"] = result.Paths
	}
	c.JSON(http.StatusOK, response)
}

// handleRevalidateInfo serves GET /api/revalidate?secret= with usage information
func (s *Server) handleRevalidateInfo(c *gin.Context) {
	if !s.deps.Revalidator.Authorize(c.Query("secret")) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Invalid secret. Use POST method with valid secret to revalidate.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Revalidation API is active. Use POST method to trigger revalidation.",
		"usage": gin.H{
			"method": "POST",
			"url":    "/api/revalidate?secret=YOUR_SECRET_KEY",
			"optionalParams": gin.H{
				"path": "Specific path to revalidate (e.g., /long-form)",
			},
			"defaultPaths": revalidate.DefaultPaths,
		},
	})
}
