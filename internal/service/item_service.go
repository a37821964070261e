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

// BookingChecker answers whether a user has finished an approved booking.
type BookingChecker interface {
	ExistsCompletedApprovedBooking(ctx context.Context, itemID, userID int64, asOf time.Time) (bool, error)
}

var _ domain.ItemManager = (*ItemService)(nil)

type ItemService struct {
	repo     domain.Repository
	bookings BookingChecker
	eventBus domain.EventPublisher
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewItemService(repo domain.Repository, bookings BookingChecker, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:     repo,
		bookings: bookings,
		eventBus: eventBus,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *ItemService) WithClock(now func() time.Time) *ItemService {
	s.now = now
	return s
}

func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.Description = strings.TrimSpace(item.Description)
	if item.Name == "" || item.Description == "" {
		return nil, fmt.Errorf("%w: name and description are required", domain.ErrValidation)
	}

	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUserByID(ctx, ownerID); err != nil {
			return err
		}
		if item.RequestID != nil {
			if _, err := repo.GetRequest(ctx, *item.RequestID); err != nil {
				return err
			}
		}
		item.OwnerID = ownerID
		return repo.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("Item created")
	return item, nil
}

// UpdateItem reports a foreign item as missing.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	var item *models.Item
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		it, err := s.ownedItem(ctx, repo, ownerID, itemID)
		if err != nil {
			return err
		}
		if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
			it.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil && strings.TrimSpace(*patch.Description) != "" {
			it.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Available != nil {
			it.Available = *patch.Available
		}
		if err := repo.UpdateItem(ctx, it); err != nil {
			return err
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, ownerID, itemID int64) error {
	return s.repo.InTx(ctx, func(repo domain.Repository) error {
		if _, err := s.ownedItem(ctx, repo, ownerID, itemID); err != nil {
			return err
		}
		return repo.DeleteItem(ctx, itemID)
	})
}

func (s *ItemService) ownedItem(ctx context.Context, repo domain.Repository, ownerID, itemID int64) (*models.Item, error) {
	item, err := repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: item %d of user %d", domain.ErrNotFound, itemID, ownerID)
	}
	return item, nil
}

// GetItem attaches last and next bookings only when the requester owns the item.
func (s *ItemService) GetItem(ctx context.Context, requesterID, itemID int64) (*models.ItemDetails, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, item, item.OwnerID == requesterID, s.now())
}

func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID int64) ([]*models.ItemDetails, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]*models.ItemDetails, 0, len(items))
	for _, item := range items {
		d, err := s.details(ctx, item, true, now)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *ItemService) details(ctx context.Context, item *models.Item, withBookings bool, now time.Time) (*models.ItemDetails, error) {
	d := &models.ItemDetails{Item: *item}

	comments, err := s.repo.ListCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	d.Comments = comments

	if !withBookings {
		return d, nil
	}
	if d.LastBooking, err = s.repo.LastApprovedBooking(ctx, item.ID, now); err != nil {
		return nil, err
	}
	if d.NextBooking, err = s.repo.NextApprovedBooking(ctx, item.ID, now); err != nil {
		return nil, err
	}
	return d, nil
}

// SearchItems returns nothing for blank text.
func (s *ItemService) SearchItems(ctx context.Context, text string) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.repo.SearchAvailableItems(ctx, text)
}

// AddComment requires the author to have finished an approved booking of the item.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", domain.ErrValidation)
	}

	author, err := s.repo.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetItemByID(ctx, itemID); err != nil {
		return nil, err
	}

	now := s.now().Truncate(time.Second)
	ok, err := s.bookings.ExistsCompletedApprovedBooking(ctx, itemID, authorID, now.Add(time.Second))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: user %d has no completed booking of item %d", domain.ErrValidation, authorID, itemID)
	}

	comment := &models.Comment{
		Text:       text,
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Created:    now,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.CommentEventPayload{CommentID: comment.ID, ItemID: itemID, AuthorID: authorID}
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, payload); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}
	return comment, nil
}
