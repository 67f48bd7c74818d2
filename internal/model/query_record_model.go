package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QueryRecord struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	Question       string         `gorm:"type:text;not null"`
	Answer         string         `gorm:"type:text"`
	Confidence     float64        `gorm:"type:double precision"`
	IterationsUsed int            `gorm:"default:0"`
	Sources        datatypes.JSON `gorm:"type:jsonb"`
	ReasoningTrace datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

func (QueryRecord) TableName() string {
	return "query_records"
}
