package models

import "time"

// File describes an uploaded payload. The bytes live in blob storage under
// Path; Filename is the generated, storage-unique name.
type File struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Mimetype     string    `json:"mimetype"`
	Size         int64     `json:"size"`
	Path         string    `json:"-"`
	UploadedBy   int64     `json:"uploadedBy"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Uploader     *UserRef  `json:"uploader,omitempty"`
}
