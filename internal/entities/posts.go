package entities

import (
	"time"

	"gorm.io/gorm"
)

type PostStatus string

const (
	PostStatusDraft   PostStatus = "draft"
	PostStatusFuture  PostStatus = "future" // scheduled for a later publish date
	PostStatusPublish PostStatus = "publish"
)

// Meta field keys written by the importer for SEO plugins.
const (
	MetaKeyDescription   = "seo_description"
	MetaKeyFocusKeywords = "seo_focus_keywords"
)

type Post struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"size:512" json:"title"`
	Slug      string     `gorm:"index;size:256" json:"slug"`
	Body      string     `gorm:"type:text" json:"body,omitempty"`
	Status    PostStatus `gorm:"size:20;index;default:'draft'" json:"status"`
	PublishAt time.Time  `gorm:"index" json:"publish_at"`
	AuthorID  uint       `gorm:"index" json:"author_id,omitempty"`

	FeaturedImageID *uint       `json:"featured_image_id,omitempty"`
	FeaturedImage   *Attachment `gorm:"foreignKey:FeaturedImageID" json:"featured_image,omitempty"`

	Tags []Tag      `gorm:"many2many:post_tags;" json:"tags,omitempty"`
	Meta []PostMeta `gorm:"foreignKey:PostID" json:"meta,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	Posts     []Post    `gorm:"many2many:post_tags;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// PostMeta is a free-form key/value field attached to a post, used for
// SEO description and focus keywords the way plugin meta fields work.
type PostMeta struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	PostID uint   `gorm:"index" json:"post_id"`
	Key    string `gorm:"index;size:100" json:"key"`
	Value  string `gorm:"type:text" json:"value"`
}

// Attachment is a file accepted into the media library. Width and height
// are filled in later by the background metadata task.
type Attachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FileName    string    `gorm:"size:255" json:"file_name"`
	StoragePath string    `gorm:"size:1024" json:"storage_path"`
	URL         string    `gorm:"size:2048" json:"url"`
	MimeType    string    `gorm:"size:100" json:"mime_type,omitempty"`
	Title       string    `gorm:"size:256" json:"title,omitempty"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ImportLog keeps the per-image outcome log of a bundle import so the
// operator can review it after the fact.
type ImportLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"index" json:"post_id"`
	SourceFile string    `gorm:"size:255" json:"source_file"`
	Entries    string    `gorm:"type:text" json:"entries"` // JSON array of log lines
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (Post) TableName() string {
	return "posts"
}

func (Tag) TableName() string {
	return "tags"
}

func (PostMeta) TableName() string {
	return "post_meta"
}

func (Attachment) TableName() string {
	return "attachments"
}

func (ImportLog) TableName() string {
	return "import_logs"
}
