package adminController

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/media"
	"github.com/junaidrashid-git/storefront-api/models"
)

// MediaLibrary stores uploaded images and their thumbnails.
type MediaLibrary interface {
	Upload(ctx context.Context, originalName string, r io.Reader) (*models.MediaAsset, error)
	List(ctx context.Context) ([]models.MediaAsset, error)
	Delete(ctx context.Context, id uint) error
}

// POST /admin/media (multipart field "file")
func UploadMedia(library MediaLibrary, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, fileHeader, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
			return
		}
		defer file.Close()

		asset, err := library.Upload(c.Request.Context(), fileHeader.Filename, file)
		switch {
		case errors.Is(err, media.ErrUnsupportedImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only JPEG, PNG and GIF images are accepted"})
			return
		case errors.Is(err, media.ErrTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
			return
		case err != nil:
			logger.Error("media upload failed", zap.String("file", fileHeader.Filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "File uploaded", "data": asset})
	}
}

// GET /admin/media
func ListMedia(library MediaLibrary) gin.HandlerFunc {
	return func(c *gin.Context) {
		assets, err := library.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list media"})
			return
		}
		c.JSON(http.StatusOK, assets)
	}
}

// DELETE /admin/media/:id removes the record and both files.
func DeleteMedia(library MediaLibrary, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid media ID"})
			return
		}

		err = library.Delete(c.Request.Context(), uint(id))
		if errors.Is(err, media.ErrAssetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Media not found"})
			return
		}
		if err != nil {
			logger.Error("media delete failed", zap.Uint64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete media"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Media deleted"})
	}
}
