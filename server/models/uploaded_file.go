package models

// UploadedFile points at a blob in the configured storage bucket.
type UploadedFile struct {
	BaseModel
	PersonID    uint   `json:"person_id" gorm:"not null;index"`
	ObjectName  string `json:"-" gorm:"not null;unique"`
	FileName    string `json:"file_name" gorm:"not null"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	UploadedBy  string `json:"uploaded_by"`
}

func (f UploadedFile) SearchText() string {
	return f.FileName
}
