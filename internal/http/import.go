package http

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gurkhatech/bundlepress/internal/importer"
)

// DefaultMaxUploadSize caps archive uploads at 100 MB.
const DefaultMaxUploadSize = 100 * 1024 * 1024

// BundleImporter runs the import pipeline for uploaded archives.
type BundleImporter interface {
	ImportArchive(archivePath, sourceName string) importer.Result
	ImportBatch(uploads []importer.Upload) []importer.Result
}

type ImportController struct {
	importer      BundleImporter
	maxUploadSize int64
}

func NewImportController(imp BundleImporter, maxUploadSize int64) *ImportController {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &ImportController{
		importer:      imp,
		maxUploadSize: maxUploadSize,
	}
}

// Import handles a single bundle upload from the "zip_file" form field.
func (c *ImportController) Import(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("zip_file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "no bundle file provided"})
		return
	}
	defer file.Close()

	tempDir, err := os.MkdirTemp("", "bundle-upload-*")
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create temporary directory"})
		return
	}
	defer os.RemoveAll(tempDir)

	archivePath, err := c.saveUpload(file, header, tempDir)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := c.importer.ImportArchive(archivePath, header.Filename)
	if !result.Success {
		ctx.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// ImportBulk handles multiple bundle uploads from the "zip_files" form field.
// Each archive is imported independently; one bad archive never blocks the
// rest. Empty form slots are skipped without a result entry, and the result
// order matches the order of the uploaded files.
func (c *ImportController) ImportBulk(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	headers := form.File["zip_files"]
	if len(headers) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "no bundle files provided"})
		return
	}

	tempDir, err := os.MkdirTemp("", "bundle-upload-*")
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create temporary directory"})
		return
	}
	defer os.RemoveAll(tempDir)

	// Save-stage failures fill their slot immediately; saved archives get a
	// placeholder slot that the batch results are written back into, so the
	// response order always matches the upload order.
	uploads := make([]importer.Upload, 0, len(headers))
	slots := make([]int, 0, len(headers))
	results := make([]importer.Result, 0, len(headers))
	for i, header := range headers {
		if header.Filename == "" {
			continue
		}
		file, err := header.Open()
		if err != nil {
			results = append(results, importer.Result{
				SourceFile: header.Filename,
				Error:      "failed to read uploaded file",
			})
			continue
		}
		archivePath, err := c.saveUploadAs(file, header, tempDir, fmt.Sprintf("bundle-%d.zip", i))
		file.Close()
		if err != nil {
			results = append(results, importer.Result{
				SourceFile: header.Filename,
				Error:      err.Error(),
			})
			continue
		}
		uploads = append(uploads, importer.Upload{Path: archivePath, Name: header.Filename})
		slots = append(slots, len(results))
		results = append(results, importer.Result{})
	}

	for i, r := range c.importer.ImportBatch(uploads) {
		results[slots[i]] = r
	}

	imported := 0
	for _, r := range results {
		if r.Success {
			imported++
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"failed":   len(results) - imported,
		"results":  results,
	})
}

func (c *ImportController) saveUpload(file multipart.File, header *multipart.FileHeader, tempDir string) (string, error) {
	return c.saveUploadAs(file, header, tempDir, "bundle.zip")
}

func (c *ImportController) saveUploadAs(file multipart.File, header *multipart.FileHeader, tempDir, filename string) (string, error) {
	if header.Size > c.maxUploadSize {
		return "", fmt.Errorf("file too large (max %d MB)", c.maxUploadSize/(1024*1024))
	}

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".zip" {
		return "", fmt.Errorf("invalid file type: expected .zip archive")
	}

	destPath := filepath.Join(tempDir, filename)
	destFile, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file")
	}
	defer destFile.Close()

	// Copy with size limit
	limitedReader := io.LimitReader(file, c.maxUploadSize+1)
	written, err := io.Copy(destFile, limitedReader)
	if err != nil {
		return "", fmt.Errorf("failed to save file")
	}
	if written > c.maxUploadSize {
		return "", fmt.Errorf("file too large (max %d MB)", c.maxUploadSize/(1024*1024))
	}

	return destPath, nil
}
