package knowledge

import "time"

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FilePath   string    `json:"-"`
	FileSize   int64     `json:"file_size"`
	Status     string    `json:"status"`
	UploadDate time.Time `json:"upload_date"`
}
