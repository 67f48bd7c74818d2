package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QueryRecord is the persisted outcome of one pipeline run, written
// asynchronously after the response has been served.
type QueryRecord struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Question       string
	Answer         string
	Confidence     float64
	IterationsUsed int
	Sources        datatypes.JSON
	ReasoningTrace datatypes.JSON
	CreatedAt      time.Time
}
