package analytics

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/johnquangdev/call-assistant/internal/domain/entities"
)

// DefaultChunkWords is the window size for vector chunks
const DefaultChunkWords = 200

const (
	minActionItemLength = 5
	minSentenceLength   = 10
	summarySentences    = 3
)

var (
	actionItemPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:need to|will|should|must)\s+([^.!?]+)`),
		regexp.MustCompile(`(?i)\b(?:action item|todo|task):\s*([^.!?]+)`),
		regexp.MustCompile(`(?i)\b(?:decision|decided):\s*([^.!?]+)`),
	}

	insightPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:important|key|critical|essential):\s*([^.!?]+)`),
		regexp.MustCompile(`(?i)\b(?:note that|remember that|keep in mind):?\s*([^.!?]+)`),
	}

	speakerPattern = regexp.MustCompile(`(?i)\b(speaker|participant|caller)\s*(\d+)`)

	sentenceSplit = regexp.MustCompile(`[.!?]+`)
)

// WordCount returns the number of whitespace-separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ExtractTopics returns vocabulary topics found in text, ordered by first occurrence
func ExtractTopics(text string) []string {
	lower := strings.ToLower(text)

	type hit struct {
		topic  string
		offset int
	}
	hits := make([]hit, 0)
	for _, topic := range topicVocabulary {
		if idx := strings.Index(lower, topic); idx >= 0 {
			hits = append(hits, hit{topic: topic, offset: idx})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].offset < hits[j].offset })

	topics := make([]string, 0, len(hits))
	for _, h := range hits {
		topics = append(topics, h.topic)
	}
	return topics
}

// ExtractActionItems returns commitments and decisions stated in text
func ExtractActionItems(text string) []string {
	items := make([]string, 0)
	seen := make(map[string]struct{})
	for _, pattern := range actionItemPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			item := strings.TrimSpace(m[1])
			if len(item) <= minActionItemLength {
				continue
			}
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			items = append(items, item)
		}
	}
	return items
}

// DetectSentiment compares positive and negative word hits; a tie is neutral
func DetectSentiment(text string) entities.Sentiment {
	positive, negative := 0, 0
	for _, token := range tokens(text) {
		if _, ok := positiveWords[token]; ok {
			positive++
		}
		if _, ok := negativeWords[token]; ok {
			negative++
		}
	}
	switch {
	case positive > negative:
		return entities.SentimentPositive
	case negative > positive:
		return entities.SentimentNegative
	default:
		return entities.SentimentNeutral
	}
}

// ExtractSpeakers returns speaker labels such as "Speaker 1", deduplicated in first-seen order
func ExtractSpeakers(text string) []string {
	speakers := make([]string, 0)
	seen := make(map[string]struct{})
	for _, m := range speakerPattern.FindAllStringSubmatch(text, -1) {
		role := strings.ToLower(m[1])
		label := strings.ToUpper(role[:1]) + role[1:] + " " + m[2]
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		speakers = append(speakers, label)
	}
	return speakers
}

// Summarize joins the first three substantial sentences of text
func Summarize(text string) string {
	sentences := make([]string, 0, summarySentences)
	for _, s := range sentenceSplit.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len(s) <= minSentenceLength {
			continue
		}
		sentences = append(sentences, s)
		if len(sentences) == summarySentences {
			break
		}
	}
	if len(sentences) == 0 {
		return ""
	}
	return strings.Join(sentences, ". ") + "."
}

// ExtractKeyInsights returns clauses introduced by emphasis markers
func ExtractKeyInsights(text string) []string {
	insights := make([]string, 0)
	for _, pattern := range insightPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			if clause := strings.TrimSpace(m[1]); clause != "" {
				insights = append(insights, clause)
			}
		}
	}
	return insights
}

// ChunkWords splits text into non-overlapping windows of size words
func ChunkWords(sid, text string, size int) []entities.VectorChunk {
	if size <= 0 {
		size = DefaultChunkWords
	}
	words := strings.Fields(text)
	chunks := make([]entities.VectorChunk, 0, (len(words)+size-1)/size)
	for start, index := 0, 0; start < len(words); start, index = start+size, index+1 {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, entities.VectorChunk{
			ID:        fmt.Sprintf("%s_chunk_%d", sid, index),
			Index:     index,
			Text:      strings.Join(words[start:end], " "),
			StartWord: start,
			WordCount: end - start,
		})
	}
	return chunks
}

// FormalityCounts returns formal and informal word hits
func FormalityCounts(text string) (formal, informal int) {
	for _, token := range tokens(text) {
		if _, ok := formalWords[token]; ok {
			formal++
		}
		if _, ok := informalWords[token]; ok {
			informal++
		}
	}
	return formal, informal
}

// tokens lower-cases whitespace-split words and strips surrounding punctuation
func tokens(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
