package database

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gurkhatech/bundlepress/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Post{},
		&entities.Tag{},
		&entities.PostMeta{},
		&entities.Attachment{},
		&entities.ImportLog{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CountPostsOnDate reports how many published or scheduled posts fall on the
// given calendar day. The time portion of day is ignored.
func (d *Database) CountPostsOnDate(day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var count int64
	err := d.DB.Model(&entities.Post{}).
		Where("status IN ?", []entities.PostStatus{entities.PostStatusPublish, entities.PostStatusFuture}).
		Where("publish_at >= ? AND publish_at < ?", start, end).
		Count(&count).Error
	return count, err
}

// CreateScheduledPost persists a new post. The caller is expected to have set
// Status and PublishAt already.
func (d *Database) CreateScheduledPost(post *entities.Post) error {
	return d.DB.Create(post).Error
}

func (d *Database) GetPostByID(id uint) (*entities.Post, error) {
	var post entities.Post
	err := d.DB.Preload("Tags").Preload("FeaturedImage").First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (d *Database) GetOrCreateTag(name string) (*entities.Tag, error) {
	var tag entities.Tag
	err := d.DB.Where("name = ?", name).First(&tag).Error
	if err == gorm.ErrRecordNotFound {
		tag = entities.Tag{Name: name}
		if err := d.DB.Create(&tag).Error; err != nil {
			return nil, err
		}
		return &tag, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// SetPostTags replaces the post's tag set with the given names, creating
// missing tags on the fly.
func (d *Database) SetPostTags(postID uint, names []string) error {
	var post entities.Post
	if err := d.DB.First(&post, postID).Error; err != nil {
		return err
	}

	tags := make([]entities.Tag, 0, len(names))
	for _, name := range names {
		tag, err := d.GetOrCreateTag(name)
		if err != nil {
			return fmt.Errorf("failed to resolve tag %q: %w", name, err)
		}
		tags = append(tags, *tag)
	}

	return d.DB.Model(&post).Association("Tags").Replace(tags)
}

// SetPostMeta upserts a single meta field for a post.
func (d *Database) SetPostMeta(postID uint, key, value string) error {
	var meta entities.PostMeta
	result := d.DB.Where("post_id = ? AND key = ?", postID, key).First(&meta)

	if result.Error == gorm.ErrRecordNotFound {
		meta = entities.PostMeta{PostID: postID, Key: key, Value: value}
		return d.DB.Create(&meta).Error
	} else if result.Error != nil {
		return result.Error
	}

	meta.Value = value
	return d.DB.Save(&meta).Error
}

func (d *Database) SetFeaturedImage(postID, attachmentID uint) error {
	return d.DB.Model(&entities.Post{}).
		Where("id = ?", postID).
		Update("featured_image_id", attachmentID).Error
}

func (d *Database) CreateAttachment(att *entities.Attachment) error {
	return d.DB.Create(att).Error
}

func (d *Database) GetAttachmentByID(id uint) (*entities.Attachment, error) {
	var att entities.Attachment
	err := d.DB.First(&att, id).Error
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (d *Database) UpdateAttachment(att *entities.Attachment) error {
	return d.DB.Save(att).Error
}

// SaveImportLog stores the per-image outcome log of an import keyed by the
// created post.
func (d *Database) SaveImportLog(postID uint, sourceFile string, entries []string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode import log: %w", err)
	}
	logEntry := entities.ImportLog{
		PostID:     postID,
		SourceFile: sourceFile,
		Entries:    string(data),
	}
	return d.DB.Create(&logEntry).Error
}

// GetImportLog returns the most recent import log for a post along with its
// decoded entries.
func (d *Database) GetImportLog(postID uint) (*entities.ImportLog, []string, error) {
	var logEntry entities.ImportLog
	err := d.DB.Where("post_id = ?", postID).Order("created_at DESC").First(&logEntry).Error
	if err != nil {
		return nil, nil, err
	}

	var entries []string
	if err := json.Unmarshal([]byte(logEntry.Entries), &entries); err != nil {
		return nil, nil, fmt.Errorf("failed to decode import log: %w", err)
	}
	return &logEntry, entries, nil
}

// DeleteImportLogsBefore removes import logs created before the cutoff.
func (d *Database) DeleteImportLogsBefore(cutoff time.Time) (int64, error) {
	result := d.DB.Where("created_at < ?", cutoff).Delete(&entities.ImportLog{})
	return result.RowsAffected, result.Error
}
