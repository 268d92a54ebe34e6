package records

import "github.com/johnquangdev/call-assistant/internal/domain/entities"

// ListRecordingsResponse wraps stored recordings
type ListRecordingsResponse struct {
	Recordings []entities.Recording `json:"recordings"`
	Total      int                  `json:"total"`
}

// ListTranscriptionsResponse wraps stored transcriptions
type ListTranscriptionsResponse struct {
	Transcriptions []entities.Transcription `json:"transcriptions"`
	Total          int                      `json:"total"`
}

// ListArchivesResponse lists archived export objects
type ListArchivesResponse struct {
	Sid     string                    `json:"sid"`
	Exports []entities.ArchivedExport `json:"exports"`
}
