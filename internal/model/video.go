package model

import (
	"time"
)

// Category classifies a video as a short clip or a long-form video
type Category string

const (
	CategoryShort Category = "short"
	CategoryLong  Category = "long"
)

// ParseCategory returns the category named by s and whether it is known
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryShort:
		return CategoryShort, true
	case CategoryLong:
		return CategoryLong, true
	default:
		return "", false
	}
}

// Video represents an icebreaker game video
type Video struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	VideoID         string    `gorm:"column:video_id;uniqueIndex;size:15;not null" json:"videoId"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     *string   `gorm:"type:text" json:"description"`
	ChannelTitle    *string   `gorm:"size:100" json:"channelTitle"`
	Slug            string    `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	VideoURL        string    `gorm:"column:video_url;size:255;not null" json:"videoUrl"`
	DurationSeconds *int      `json:"durationSeconds"`
	Category        Category  `gorm:"size:20;not null;default:long" json:"category"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName returns the table name for Video
func (Video) TableName() string {
	return "videos"
}

// EffectiveCategory returns the video category, defaulting to long
func (v *Video) EffectiveCategory() Category {
	if c, ok := ParseCategory(string(v.Category)); ok {
		return c
	}
	return CategoryLong
}

// DescriptionText returns the description or an empty string
func (v *Video) DescriptionText() string {
	if v.Description == nil {
		return ""
	}
	return *v.Description
}

// ChannelText returns the channel title or an empty string
func (v *Video) ChannelText() string {
	if v.ChannelTitle == nil {
		return ""
	}
	return *v.ChannelTitle
}

// Duration returns the duration in seconds, 0 when unknown
func (v *Video) Duration() int {
	if v.DurationSeconds == nil {
		return 0
	}
	return *v.DurationSeconds
}

// LastModified is updatedAt, falling back to createdAt when unset
func (v *Video) LastModified() time.Time {
	if v.UpdatedAt.IsZero() {
		return v.CreatedAt
	}
	return v.UpdatedAt
}
