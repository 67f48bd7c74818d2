package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskRequest struct {
	Question      string `json:"question" validate:"required,min=3,max=2000"`
	MaxIterations int    `json:"max_iterations,omitempty" validate:"omitempty,min=1,max=5"`
	Verbose       bool   `json:"verbose,omitempty"`
}

type SourceDTO struct {
	Kind           string  `json:"kind"`
	Title          string  `json:"title"`
	Snippet        string  `json:"snippet"`
	Locator        string  `json:"locator"`
	RelevanceScore float64 `json:"relevance_score"`
}

type TraceStepDTO struct {
	Stage     string    `json:"stage"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

type AskResponse struct {
	Answer         string         `json:"answer"`
	Confidence     float64        `json:"confidence"`
	Sources        []SourceDTO    `json:"sources"`
	ReasoningSteps []TraceStepDTO `json:"reasoning_steps,omitempty"`
	IterationsUsed int            `json:"iterations_used"`
	Cached         bool           `json:"cached,omitempty"`
}

type QueryHistoryResponse struct {
	Id             uuid.UUID `json:"id"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	Confidence     float64   `json:"confidence"`
	IterationsUsed int       `json:"iterations_used"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecordQueryMessage is the payload published after a run completes; the
// consumer persists it off the request path.
type RecordQueryMessage struct {
	UserId         uuid.UUID      `json:"user_id"`
	Question       string         `json:"question"`
	Answer         string         `json:"answer"`
	Confidence     float64        `json:"confidence"`
	IterationsUsed int            `json:"iterations_used"`
	Sources        []SourceDTO    `json:"sources"`
	ReasoningSteps []TraceStepDTO `json:"reasoning_steps"`
}
