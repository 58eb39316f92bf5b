package media

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"visage/models"
)

// Cloudinary stores media on Cloudinary. Inline sources (data URIs and
// remote URLs) are handed to Cloudinary as-is.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(url string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary configuration error: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, src Source, target Target) (*Result, error) {
	if src.Empty() {
		return nil, ErrEmptySource
	}
	var file interface{} = src.Data
	if src.Reader != nil {
		file = src.Reader
	}

	params := uploader.UploadParams{
		Folder:         target.Folder,
		PublicID:       target.PublicID,
		Transformation: target.Transformation,
		ResourceType:   "auto",
	}
	res, err := c.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}

	typ := models.MediaImage
	if res.ResourceType == "video" {
		typ = models.MediaVideo
	}
	return &Result{URL: res.SecureURL, PublicID: res.PublicID, Type: typ}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, mediaURL, folder string) error {
	publicID := PublicID(mediaURL, folder)
	if publicID == "" {
		return nil
	}
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(TypeFromExtension(mediaURL)),
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy %s: %s", publicID, res.Error.Message)
	}
	return nil
}
