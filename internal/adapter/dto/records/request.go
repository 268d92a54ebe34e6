package records

// SidParam identifies a recording or transcription in the path
type SidParam struct {
	Sid string `param:"sid" validate:"required"`
}

// ExportRequest selects an export format; empty means json
type ExportRequest struct {
	Sid    string `param:"sid" validate:"required"`
	Format string `query:"format"`
}

// SearchRequest filters transcriptions
type SearchRequest struct {
	Query     string `query:"q"`
	Topic     string `query:"topic"`
	Sentiment string `query:"sentiment" validate:"omitempty,oneof=positive negative neutral"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=100"`
}
