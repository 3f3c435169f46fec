package job

import (
	"context"
	"encoding/json"

	"github.com/sidkoko/discord-copilot/internal/config"
	"github.com/sidkoko/discord-copilot/internal/worker"
)

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo Repository
	pub  EventPublisher
}

func NewService(repo Repository, pub EventPublisher) *Service {
	return &Service{repo: repo, pub: pub}
}

func (s *Service) List(ctx context.Context) ([]Job, error) {
	return s.repo.List(ctx)
}

// Retry republishes the parked ingest task and removes the failed job once
// the publish succeeds.
func (s *Service) Retry(ctx context.Context, id string) error {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.pub.Publish(config.TopicIngestDocument, job.Payload); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// RecordFailure parks a terminally failed ingest task so operators can
// inspect and retry it. Satisfies worker.FailureRecorder.
func (s *Service) RecordFailure(ctx context.Context, task worker.IngestTask, reason string) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return s.repo.Save(ctx, &Job{
		DocumentID: task.DocumentID,
		Handler:    config.TopicIngestDocument,
		Payload:    payload,
		Error:      reason,
	})
}
