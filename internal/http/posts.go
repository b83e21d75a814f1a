package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gurkhatech/bundlepress/internal/entities"
)

// PostStore reads imported posts and their import logs.
type PostStore interface {
	GetPostByID(id uint) (*entities.Post, error)
	GetImportLog(postID uint) (*entities.ImportLog, []string, error)
}

type PostsController struct {
	store PostStore
}

func NewPostsController(store PostStore) *PostsController {
	return &PostsController{store: store}
}

type PostResponse struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Status        string    `json:"status"`
	PublishAt     time.Time `json:"publish_at"`
	Tags          []string  `json:"tags"`
	FeaturedImage string    `json:"featured_image,omitempty"`
	Body          string    `json:"body"`
}

func (c *PostsController) GetPost(ctx *gin.Context) {
	id, err := parsePostID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	post, err := c.store.GetPostByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load post"})
		return
	}

	resp := PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Slug:      post.Slug,
		Status:    string(post.Status),
		PublishAt: post.PublishAt,
		Tags:      make([]string, 0, len(post.Tags)),
		Body:      post.Body,
	}
	for _, tag := range post.Tags {
		resp.Tags = append(resp.Tags, tag.Name)
	}
	if post.FeaturedImage != nil {
		resp.FeaturedImage = post.FeaturedImage.URL
	}

	ctx.JSON(http.StatusOK, resp)
}

func (c *PostsController) GetImportLog(ctx *gin.Context) {
	id, err := parsePostID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	logRecord, entries, err := c.store.GetImportLog(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "no import log for post"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load import log"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"post_id":     logRecord.PostID,
		"source_file": logRecord.SourceFile,
		"created_at":  logRecord.CreatedAt.Format(time.RFC3339),
		"entries":     entries,
	})
}

func parsePostID(ctx *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	return uint(id), err
}
