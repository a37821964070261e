package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

var _ domain.RequestManager = (*RequestService)(nil)

type RequestService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	pageSize int
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewRequestService(repo domain.Repository, eventBus domain.EventPublisher, pageSize int, logger *zerolog.Logger) *RequestService {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &RequestService{
		repo:     repo,
		eventBus: eventBus,
		pageSize: pageSize,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *RequestService) WithClock(now func() time.Time) *RequestService {
	s.now = now
	return s
}

func (s *RequestService) CreateRequest(ctx context.Context, requestorID int64, description string) (*models.ItemRequest, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}

	req := &models.ItemRequest{
		Description: description,
		RequestorID: requestorID,
		Created:     s.now().Truncate(time.Second),
		Items:       []models.RequestItem{},
	}
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUserByID(ctx, requestorID); err != nil {
			return err
		}
		return repo.CreateRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.RequestEventPayload{RequestID: req.ID, RequestorID: requestorID}
		if err := s.eventBus.PublishJSON(events.EventRequestCreated, payload); err != nil {
			s.logger.Error().Err(err).Int64("request_id", req.ID).Msg("publish event error")
		}
	}
	return req, nil
}

// ListOwnRequests returns the requestor's requests, newest first.
func (s *RequestService) ListOwnRequests(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, requestorID); err != nil {
		return nil, err
	}
	reqs, err := s.repo.ListRequestsByRequestor(ctx, requestorID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, reqs)
}

// ListOtherRequests pages through everyone else's requests, newest first.
func (s *RequestService) ListOtherRequests(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error) {
	page, err := normalizePage(page, s.pageSize)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	reqs, err := s.repo.ListRequestsExcept(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, reqs)
}

func (s *RequestService) GetRequest(ctx context.Context, userID, requestID int64) (*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Items, err = s.repo.ListItemsByRequest(ctx, req.ID); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *RequestService) withItems(ctx context.Context, reqs []*models.ItemRequest) ([]*models.ItemRequest, error) {
	for _, req := range reqs {
		items, err := s.repo.ListItemsByRequest(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		req.Items = items
	}
	return reqs, nil
}
