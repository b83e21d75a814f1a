package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkhatech/bundlepress/internal/entities"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := NewDatabase(":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createPostOn(t *testing.T, db *Database, day time.Time, status entities.PostStatus) *entities.Post {
	t.Helper()

	post := &entities.Post{
		Title:     "Post on " + day.Format("2006-01-02"),
		Slug:      "post-" + day.Format("2006-01-02"),
		Status:    status,
		PublishAt: day,
	}
	require.NoError(t, db.CreateScheduledPost(post))
	return post
}

func TestCountPostsOnDate(t *testing.T) {
	db := setupTestDB(t)

	day := time.Date(2026, 3, 14, 11, 30, 0, 0, time.UTC)
	createPostOn(t, db, day, entities.PostStatusFuture)
	createPostOn(t, db, day.Add(5*time.Hour), entities.PostStatusPublish)

	// Drafts must not count against the day.
	createPostOn(t, db, day, entities.PostStatusDraft)

	count, err := db.CountPostsOnDate(day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = db.CountPostsOnDate(day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSetPostTags(t *testing.T) {
	db := setupTestDB(t)

	post := createPostOn(t, db, time.Now(), entities.PostStatusFuture)

	err := db.SetPostTags(post.ID, []string{"travel", "nepal"})
	require.NoError(t, err)

	saved, err := db.GetPostByID(post.ID)
	require.NoError(t, err)
	require.Len(t, saved.Tags, 2)

	// Replacing must not duplicate existing tags.
	err = db.SetPostTags(post.ID, []string{"nepal", "trekking"})
	require.NoError(t, err)

	saved, err = db.GetPostByID(post.ID)
	require.NoError(t, err)
	names := []string{saved.Tags[0].Name, saved.Tags[1].Name}
	assert.ElementsMatch(t, []string{"nepal", "trekking"}, names)
}

func TestSetPostMeta_Upsert(t *testing.T) {
	db := setupTestDB(t)

	post := createPostOn(t, db, time.Now(), entities.PostStatusFuture)

	require.NoError(t, db.SetPostMeta(post.ID, entities.MetaKeyDescription, "first"))
	require.NoError(t, db.SetPostMeta(post.ID, entities.MetaKeyDescription, "second"))

	var metas []entities.PostMeta
	require.NoError(t, db.DB.Where("post_id = ?", post.ID).Find(&metas).Error)
	require.Len(t, metas, 1)
	assert.Equal(t, "second", metas[0].Value)
}

func TestSetFeaturedImage(t *testing.T) {
	db := setupTestDB(t)

	post := createPostOn(t, db, time.Now(), entities.PostStatusFuture)
	att := &entities.Attachment{FileName: "featured-image.png", URL: "/uploads/featured-image.png"}
	require.NoError(t, db.CreateAttachment(att))

	require.NoError(t, db.SetFeaturedImage(post.ID, att.ID))

	saved, err := db.GetPostByID(post.ID)
	require.NoError(t, err)
	require.NotNil(t, saved.FeaturedImageID)
	assert.Equal(t, att.ID, *saved.FeaturedImageID)
	require.NotNil(t, saved.FeaturedImage)
	assert.Equal(t, "featured-image.png", saved.FeaturedImage.FileName)
}

func TestImportLogRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	post := createPostOn(t, db, time.Now(), entities.PostStatusFuture)

	entries := []string{
		"Image 'pic.png' uploaded successfully.",
		"Image 'missing.jpg' not found in the bundle.",
	}
	require.NoError(t, db.SaveImportLog(post.ID, "bundle.zip", entries))

	record, loaded, err := db.GetImportLog(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "bundle.zip", record.SourceFile)
	assert.Equal(t, entries, loaded)
}

func TestDeleteImportLogsBefore(t *testing.T) {
	db := setupTestDB(t)

	post := createPostOn(t, db, time.Now(), entities.PostStatusFuture)
	require.NoError(t, db.SaveImportLog(post.ID, "bundle.zip", []string{"entry"}))

	// A cutoff in the past removes nothing.
	removed, err := db.DeleteImportLogsBefore(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	removed, err = db.DeleteImportLogsBefore(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, _, err = db.GetImportLog(post.ID)
	assert.Error(t, err)
}
