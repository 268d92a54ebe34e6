package entities

import "time"

// ArchivedExport describes one rendered export kept in object storage
type ArchivedExport struct {
	Key              string    `json:"key"`
	TranscriptionSid string    `json:"transcription_sid"`
	Format           string    `json:"format"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	ArchivedAt       time.Time `json:"archived_at"`
}
