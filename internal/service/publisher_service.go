package service

import (
	"encoding/json"
	"fmt"

	"ai-research-assistant-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	PublishIndexDocument(msg dto.IndexDocumentMessage) error
	PublishQueryRecord(msg dto.RecordQueryMessage) error
}

type publisherService struct {
	pubSub           *gochannel.GoChannel
	indexTopic       string
	queryRecordTopic string
}

func NewPublisherService(pubSub *gochannel.GoChannel, indexTopic, queryRecordTopic string) IPublisherService {
	return &publisherService{
		pubSub:           pubSub,
		indexTopic:       indexTopic,
		queryRecordTopic: queryRecordTopic,
	}
}

func (s *publisherService) PublishIndexDocument(msg dto.IndexDocumentMessage) error {
	return s.publish(s.indexTopic, msg)
}

func (s *publisherService) PublishQueryRecord(msg dto.RecordQueryMessage) error {
	return s.publish(s.queryRecordTopic, msg)
}

func (s *publisherService) publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return s.pubSub.Publish(topic, message.NewMessage(watermill.NewUUID(), data))
}
