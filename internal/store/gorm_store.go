package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/icebreaker-videos/internal/config"
	"github.com/user/icebreaker-videos/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore implements Store on top of gorm, backed by MySQL or PostgreSQL
type GormStore struct {
	db     *gorm.DB
	driver string
}

// Open creates a new store instance for the configured driver
func Open(cfg *config.DBConfig) (*GormStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverMySQL, "":
		dialector = mysql.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.MaxConns / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverMySQL
	}
	return &GormStore{db: db, driver: driver}, nil
}

// filter applies a VideoFilter to a query over the videos table
func (s *GormStore) filter(f VideoFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(f.TagIDs) > 0 {
			// IN over the association keeps each video once however many tags match
			tagged := s.db.Model(&model.VideoTag{}).
				Select("video_tags.video_id").
				Where("video_tags.tag_id IN ?", f.TagIDs)
			db = db.Where("videos.id IN (?)", tagged)
		}
		if f.Category != "" {
			db = db.Where("videos.category = ?", f.Category)
		}
		if f.Search != "" {
			pattern := LikePattern(f.Search)
			db = db.Where("(LOWER(videos.title) LIKE ? OR LOWER(videos.description) LIKE ?)", pattern, pattern)
		}
		return db
	}
}

// newestFirst orders videos by creation time with id as the tie-breaker
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("videos.created_at DESC").Order("videos.id DESC")
}

// FindVideos returns one window of the videos matching filter, newest first
func (s *GormStore) FindVideos(ctx context.Context, filter VideoFilter, limit, offset int) ([]*model.Video, error) {
	// gorm drops a negative limit or offset instead of failing
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("invalid window: limit %d, offset %d", limit, offset)
	}
	var videos []*model.Video
	result := s.db.WithContext(ctx).
		Model(&model.Video{}).
		Scopes(s.filter(filter), newestFirst).
		Limit(limit).
		Offset(offset).
		Find(&videos)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find videos: %w", result.Error)
	}
	return videos, nil
}

// CountVideos returns the number of videos matching filter
func (s *GormStore) CountVideos(ctx context.Context, filter VideoFilter) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.Video{}).
		Scopes(s.filter(filter)).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count videos: %w", result.Error)
	}
	return count, nil
}

// GetVideoBySlug retrieves a video by its slug, nil when absent
func (s *GormStore) GetVideoBySlug(ctx context.Context, slug string) (*model.Video, error) {
	var video model.Video
	result := s.db.WithContext(ctx).Where("slug = ?", slug).Take(&video)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get video by slug: %w", result.Error)
	}
	return &video, nil
}

// GetRelatedVideos returns the newest videos other than excludeID
func (s *GormStore) GetRelatedVideos(ctx context.Context, excludeID uint, limit int) ([]*model.Video, error) {
	var videos []*model.Video
	result := s.db.WithContext(ctx).
		Model(&model.Video{}).
		Where("videos.id <> ?", excludeID).
		Scopes(newestFirst).
		Limit(limit).
		Find(&videos)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get related videos: %w", result.Error)
	}
	return videos, nil
}

// ListSitemapVideos returns every video with only the fields a sitemap needs,
// most recently updated first
func (s *GormStore) ListSitemapVideos(ctx context.Context) ([]*model.Video, error) {
	var videos []*model.Video
	result := s.db.WithContext(ctx).
		Model(&model.Video{}).
		Select("id", "slug", "created_at", "updated_at").
		Order("updated_at DESC").
		Order("id DESC").
		Find(&videos)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list sitemap videos: %w", result.Error)
	}
	return videos, nil
}

// ListTagsWithCounts returns all tags with their distinct video counts,
// most used first
func (s *GormStore) ListTagsWithCounts(ctx context.Context) ([]*model.TagWithCount, error) {
	var tags []*model.TagWithCount
	result := s.db.WithContext(ctx).
		Model(&model.Tag{}).
		Select("tags.id, tags.name, tags.slug, COUNT(DISTINCT video_tags.video_id) AS video_count").
		Joins("LEFT JOIN video_tags ON video_tags.tag_id = tags.id").
		Group("tags.id, tags.name, tags.slug").
		Order("video_count DESC").
		Order("tags.name ASC").
		Order("tags.id ASC").
		Scan(&tags)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list tags: %w", result.Error)
	}
	return tags, nil
}

// GetTagsBySlugs returns the tags whose slug is in slugs; unknown slugs are skipped
func (s *GormStore) GetTagsBySlugs(ctx context.Context, slugs []string) ([]*model.Tag, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var tags []*model.Tag
	result := s.db.WithContext(ctx).
		Where("slug IN ?", slugs).
		Order("name ASC").
		Find(&tags)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get tags by slugs: %w", result.Error)
	}
	return tags, nil
}

// GetTagsByVideoID returns the tags of a video ordered by name
func (s *GormStore) GetTagsByVideoID(ctx context.Context, videoID uint) ([]*model.Tag, error) {
	var tags []*model.Tag
	result := s.db.WithContext(ctx).
		Model(&model.Tag{}).
		Joins("JOIN video_tags ON video_tags.tag_id = tags.id").
		Where("video_tags.video_id = ?", videoID).
		Order("tags.name ASC").
		Find(&tags)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get tags by video id: %w", result.Error)
	}
	return tags, nil
}

// Ping checks database connectivity
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying db: %w", err)
	}
	return sqlDB.Close()
}

// DB returns the underlying gorm.DB instance (for testing purposes)
func (s *GormStore) DB() *gorm.DB {
	return s.db
}
