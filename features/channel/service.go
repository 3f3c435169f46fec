package channel

import (
	"context"
	"errors"
	"strings"
)

var ErrMissingChannelID = errors.New("channel_id is required")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Allow(ctx context.Context, channelID, name string) (*Channel, error) {
	if strings.TrimSpace(channelID) == "" {
		return nil, ErrMissingChannelID
	}
	ch := &Channel{ChannelID: channelID, Name: name}
	if err := s.repo.Save(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *Service) List(ctx context.Context) ([]Channel, error) {
	return s.repo.List(ctx)
}

func (s *Service) Remove(ctx context.Context, channelID string) error {
	return s.repo.Delete(ctx, channelID)
}

// IsAllowed reports whether the bot may answer in the channel. An empty
// allow-list means no channel is allowed.
func (s *Service) IsAllowed(ctx context.Context, channelID string) (bool, error) {
	if channelID == "" {
		return false, nil
	}
	return s.repo.IsAllowed(ctx, channelID)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
