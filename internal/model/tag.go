package model

// Tag represents a label that can be attached to many videos
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:50;not null" json:"slug"`
}

// TableName returns the table name for Tag
func (Tag) TableName() string {
	return "tags"
}

// TagWithCount is a tag with the number of distinct videos carrying it
type TagWithCount struct {
	Tag
	VideoCount int64 `json:"videoCount"`
}

// VideoTag is the many-to-many association between videos and tags
type VideoTag struct {
	VideoID uint `gorm:"primaryKey;column:video_id"`
	TagID   uint `gorm:"primaryKey;column:tag_id"`
}

// TableName returns the table name for VideoTag
func (VideoTag) TableName() string {
	return "video_tags"
}
