package mapper

import (
	"ai-research-assistant-be/internal/entity"
	"ai-research-assistant-be/internal/model"
)

type QueryRecordMapper struct{}

func NewQueryRecordMapper() *QueryRecordMapper {
	return &QueryRecordMapper{}
}

func (m *QueryRecordMapper) ToEntity(r *model.QueryRecord) *entity.QueryRecord {
	if r == nil {
		return nil
	}
	return &entity.QueryRecord{
		Id:             r.Id,
		UserId:         r.UserId,
		Question:       r.Question,
		Answer:         r.Answer,
		Confidence:     r.Confidence,
		IterationsUsed: r.IterationsUsed,
		Sources:        r.Sources,
		ReasoningTrace: r.ReasoningTrace,
		CreatedAt:      r.CreatedAt,
	}
}

func (m *QueryRecordMapper) ToModel(r *entity.QueryRecord) *model.QueryRecord {
	if r == nil {
		return nil
	}
	return &model.QueryRecord{
		Id:             r.Id,
		UserId:         r.UserId,
		Question:       r.Question,
		Answer:         r.Answer,
		Confidence:     r.Confidence,
		IterationsUsed: r.IterationsUsed,
		Sources:        r.Sources,
		ReasoningTrace: r.ReasoningTrace,
		CreatedAt:      r.CreatedAt,
	}
}
