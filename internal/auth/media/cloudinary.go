// Package media hosts tweet attachments with an external provider.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aussiebroadwan/chirp/pkg/idx"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// DefaultFolder is where tweet attachments are stored in Cloudinary.
const DefaultFolder = "tweets"

// ErrNotConfigured is returned when Cloudinary credentials are incomplete.
var ErrNotConfigured = errors.New("media: cloudinary configuration is missing")

// CloudinaryConfig holds the account credentials. Folder defaults to
// DefaultFolder.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether every credential is set.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// assetUploader is the part of the Cloudinary upload API we call.
type assetUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryUploader uploads attachments to Cloudinary and returns their
// secure URL. It implements service.MediaUploader.
type CloudinaryUploader struct {
	folder string
	api    assetUploader
}

// NewCloudinaryUploader builds an uploader from cfg. No request is made.
func NewCloudinaryUploader(cfg CloudinaryConfig) (*CloudinaryUploader, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return newCloudinaryUploader(&cld.Upload, cfg.Folder), nil
}

func newCloudinaryUploader(api assetUploader, folder string) *CloudinaryUploader {
	if folder == "" {
		folder = DefaultFolder
	}
	return &CloudinaryUploader{folder: folder, api: api}
}

// Upload stores data and returns its public HTTPS URL. Cloudinary detects
// whether it is an image or a video.
func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte, filename, _ string) (string, error) {
	res, err := u.api.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     publicID(filename),
		Folder:       u.folder,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	// API failures come back in the result, not as err
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("cloudinary returned no url")
	}

	return res.SecureURL, nil
}

// publicID names the asset after the uploaded file's stem plus a ULID, so
// two "photo.jpg" uploads never overwrite each other. An empty filename
// lets Cloudinary pick the name.
func publicID(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" || stem == "." || stem == "/" {
		return ""
	}
	return stem + "_" + strings.ToLower(idx.New().String())
}
