package utils

import (
	"context"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"familyconnect/config"
)

// Uploader stores chat attachments in Cloudinary and returns their public
// URL. Upload failures surface to the caller; they are not retried.
type Uploader struct {
	cld *cloudinary.Cloudinary
}

func NewUploader() (*Uploader, error) {
	if config.AppConfig.CloudinaryURL == "" {
		return &Uploader{}, nil
	}
	cld, err := cloudinary.NewFromURL(config.AppConfig.CloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &Uploader{cld: cld}, nil
}

// Upload streams the multipart file to Cloudinary.
func (u *Uploader) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if u.cld == nil {
		return "", BadRequest("File uploads are not configured")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: "family-connect-uploads",
	})
	if err != nil {
		return "", err
	}
	return resp.SecureURL, nil
}
