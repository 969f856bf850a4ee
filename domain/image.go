package domain

import "mime/multipart"

// Image is an uploaded post image on its way into the image store.
// After a successful Create, Ref holds the opaque reference string the
// owning post stores; nothing else about the file leaks into the core.
type Image struct {
	OwnerID     int
	File        multipart.File
	Filename    string
	ContentType string
	Extension   string
	Ref         string
}

// ImageService is a set of methods to validate and store post images.
type ImageService interface {
	Create(img *Image) error
	Delete(ref string) error
}
