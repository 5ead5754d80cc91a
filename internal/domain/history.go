package domain

import "time"

// HistoryEntry is one block in the append-only history log.
type HistoryEntry struct {
	Timestamp     time.Time
	Command       string
	Target        string
	Summary       string
	Normalization *NormalizationMeta
}

// NormalizationMeta records what the text normalizer did with an instruction.
type NormalizationMeta struct {
	Used           bool
	OriginalInput  string
	NormalizedText string
	Intent         string
	Target         string
	Confidence     float64
	FallbackReason string
}
