// Package analytics derives metadata and export artifacts from transcript text
// using deterministic keyword and pattern heuristics.
package analytics

import "github.com/johnquangdev/call-assistant/internal/domain/entities"

// Result is everything derived from one transcript
type Result struct {
	Metadata entities.Metadata
	Exports  entities.Exports
}

// Engine derives metadata and exports from transcript text
type Engine interface {
	Analyze(sid, text string) Result
}

// Analyzer runs every extractor over the transcript
type Analyzer struct {
	ChunkWords int
}

var _ Engine = (*Analyzer)(nil)

// NewAnalyzer creates an analyzer with the default chunk size
func NewAnalyzer() *Analyzer {
	return &Analyzer{ChunkWords: DefaultChunkWords}
}

// Analyze never fails; text without matches yields empty sequences
func (a *Analyzer) Analyze(sid, text string) Result {
	return Result{
		Metadata: entities.Metadata{
			WordCount:   WordCount(text),
			Speakers:    ExtractSpeakers(text),
			Topics:      ExtractTopics(text),
			ActionItems: ExtractActionItems(text),
			Sentiment:   DetectSentiment(text),
		},
		Exports: entities.Exports{
			Summary:      Summarize(text),
			KeyInsights:  ExtractKeyInsights(text),
			VectorChunks: ChunkWords(sid, text, a.ChunkWords),
		},
	}
}
