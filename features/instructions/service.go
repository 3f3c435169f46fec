package instructions

import (
	"context"
	"errors"
	"strings"
)

var ErrEmptyContent = errors.New("instructions content is empty")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*Instructions, error) {
	return s.repo.Get(ctx)
}

// Content returns just the instruction text for prompt assembly.
func (s *Service) Content(ctx context.Context) (string, error) {
	ins, err := s.repo.Get(ctx)
	if err != nil {
		return "", err
	}
	return ins.Content, nil
}

func (s *Service) Set(ctx context.Context, content string) (*Instructions, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	return s.repo.Set(ctx, content)
}
