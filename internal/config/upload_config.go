package config

import "fmt"

type UploadConfig interface {
	GetCloudName() string
	GetUploadAPIKey() string
	GetUploadURL() string
}

type Upload struct{}

var _ UploadConfig = Upload{}

func (Upload) GetCloudName() string {
	return GetEnv("CLOUDINARY_CLOUD_NAME", "")
}

func (Upload) GetUploadAPIKey() string {
	return GetEnv("CLOUDINARY_API_KEY", "")
}

// GetUploadURL returns the file host upload endpoint. CLOUDINARY_UPLOAD_URL overrides
// the URL derived from the cloud name.
func (u Upload) GetUploadURL() string {
	return GetEnv("CLOUDINARY_UPLOAD_URL", fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", u.GetCloudName()))
}
