package store

import (
	"time"

	"ai-research-assistant-be/pkg/rag/state"
)

// CachedRun holds the served outcome of one pipeline run so identical
// questions within the cache window skip the whole pipeline.
type CachedRun struct {
	Key            string               `json:"key"` // userID|question
	Answer         string               `json:"answer"`
	Confidence     float64              `json:"confidence"`
	Sources        []state.RankedResult `json:"sources"`
	IterationsUsed int                  `json:"iterations_used"`
	CachedAt       time.Time            `json:"cached_at"`
}
