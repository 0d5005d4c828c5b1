// Package media stores uploaded catalog images with their thumbnails and
// backs the uploads directory up every night.
package media

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/storefront-api/models"
)

const (
	MaxUploadSize  = 20 << 20
	ThumbnailWidth = 400
	mediaDir       = "media"
	thumbDir       = "thumbs"
)

var (
	ErrAssetNotFound    = errors.New("media asset not found")
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrTooLarge         = errors.New("file exceeds upload limit")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// AssetRepository persists media asset records.
type AssetRepository interface {
	CreateAsset(ctx context.Context, a *models.MediaAsset) error
	ListAssets(ctx context.Context) ([]models.MediaAsset, error)
	AssetByID(ctx context.Context, id uint) (*models.MediaAsset, error)
	DeleteAsset(ctx context.Context, id uint) error
}

// Library writes files under <root>/media and serves them from
// <publicBaseURL>/uploads/media.
type Library struct {
	root          string
	publicBaseURL string
	repo          AssetRepository
	logger        *zap.Logger
}

func NewLibrary(root, publicBaseURL string, repo AssetRepository, logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Library{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		repo:          repo,
		logger:        logger,
	}
}

// Upload stores an image, renders a ThumbnailWidth-wide JPEG thumbnail and
// records the asset.
func (l *Library) Upload(ctx context.Context, originalName string, r io.Reader) (*models.MediaAsset, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrUnsupportedImage
	}

	base := SanitizeName(originalName)
	name := uuid.NewString()[:8] + "_" + base + ext
	dir := filepath.Join(l.root, mediaDir)
	if err := os.MkdirAll(filepath.Join(dir, thumbDir), 0o755); err != nil {
		return nil, errors.Wrap(err, "create media folder")
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, errors.Wrap(err, "save file")
	}

	thumbName := strings.TrimSuffix(name, ext) + ".jpg"
	thumb := img
	if img.Bounds().Dx() > ThumbnailWidth {
		thumb = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	}
	if err := imaging.Save(thumb, filepath.Join(dir, thumbDir, thumbName), imaging.JPEGQuality(75)); err != nil {
		_ = os.Remove(path)
		return nil, errors.Wrap(err, "save thumbnail")
	}

	asset := &models.MediaAsset{
		FileName:     name,
		OriginalName: originalName,
		FileURL:      l.publicBaseURL + "/uploads/" + mediaDir + "/" + name,
		ThumbnailURL: l.publicBaseURL + "/uploads/" + mediaDir + "/" + thumbDir + "/" + thumbName,
		ContentType:  contentType,
		Size:         int64(len(data)),
		Width:        img.Bounds().Dx(),
		Height:       img.Bounds().Dy(),
	}
	if err := l.repo.CreateAsset(ctx, asset); err != nil {
		l.removeFiles(name)
		return nil, errors.Wrap(err, "record media asset")
	}

	l.logger.Info("media uploaded", zap.String("file", name), zap.Int64("size", asset.Size))
	return asset, nil
}

func (l *Library) List(ctx context.Context) ([]models.MediaAsset, error) {
	return l.repo.ListAssets(ctx)
}

// Delete removes the asset record and its files. Files already gone are
// not an error.
func (l *Library) Delete(ctx context.Context, id uint) error {
	asset, err := l.repo.AssetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := l.repo.DeleteAsset(ctx, id); err != nil {
		return err
	}
	l.removeFiles(asset.FileName)
	return nil
}

func (l *Library) removeFiles(name string) {
	dir := filepath.Join(l.root, mediaDir)
	thumb := strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	for _, p := range []string{filepath.Join(dir, name), filepath.Join(dir, thumbDir, thumb)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			l.logger.Warn("failed to remove media file", zap.String("path", p), zap.Error(err))
		}
	}
}

var unsafeChars = regexp.MustCompile(`[^\w\-]+`)

// SanitizeName turns an uploaded file name into a safe base name: image
// extensions are stripped (repeatedly, for names like a.jpg.jpg), unsafe
// runs become underscores and the result is capped at 64 characters.
func SanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	for {
		ext := strings.ToLower(filepath.Ext(base))
		if ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".gif" || ext == ".webp" {
			base = base[:len(base)-len(ext)]
			continue
		}
		break
	}
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "_")
	if len(base) > 64 {
		base = base[:64]
	}
	if base == "" {
		base = "image"
	}
	return base
}

// GormAssets is the Postgres AssetRepository.
type GormAssets struct {
	db *gorm.DB
}

func NewGormAssets(db *gorm.DB) *GormAssets {
	return &GormAssets{db: db}
}

func (g *GormAssets) CreateAsset(ctx context.Context, a *models.MediaAsset) error {
	return errors.Wrap(g.db.WithContext(ctx).Create(a).Error, "create media asset")
}

func (g *GormAssets) ListAssets(ctx context.Context) ([]models.MediaAsset, error) {
	var list []models.MediaAsset
	if err := g.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, errors.Wrap(err, "list media assets")
	}
	return list, nil
}

func (g *GormAssets) AssetByID(ctx context.Context, id uint) (*models.MediaAsset, error) {
	var a models.MediaAsset
	err := g.db.WithContext(ctx).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load media asset")
	}
	return &a, nil
}

func (g *GormAssets) DeleteAsset(ctx context.Context, id uint) error {
	res := g.db.WithContext(ctx).Delete(&models.MediaAsset{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete media asset")
	}
	if res.RowsAffected == 0 {
		return ErrAssetNotFound
	}
	return nil
}
