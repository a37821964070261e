package service

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

var _ domain.BookingManager = (*BookingService)(nil)

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	pageSize int
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, pageSize int, logger *zerolog.Logger) *BookingService {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		pageSize: pageSize,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

func (s *BookingService) CreateBooking(ctx context.Context, requesterID int64, req models.NewBooking) (*models.Booking, error) {
	now := s.now().Truncate(time.Second)
	start, end, err := validateRange(req, now)
	if err != nil {
		return nil, err
	}

	var booking *models.Booking
	err = s.repo.InTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUserByID(ctx, requesterID); err != nil {
			return err
		}

		item, err := repo.GetItemByID(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if !item.Available {
			return fmt.Errorf("%w: item %d is not available for booking", domain.ErrValidation, item.ID)
		}
		if item.OwnerID == requesterID {
			return fmt.Errorf("%w: owner cannot book own item %d", domain.ErrConflict, item.ID)
		}

		booking = &models.Booking{
			ItemID:   item.ID,
			ItemName: item.Name,
			OwnerID:  item.OwnerID,
			BookerID: requesterID,
			Start:    start,
			End:      end,
			Status:   models.StatusWaiting,
		}
		return repo.CreateBooking(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", booking.ItemID).
		Int64("booker_id", requesterID).
		Msg("Booking created")
	s.publishEvent(events.EventBookingCreated, booking, requesterID)
	return booking, nil
}

func validateRange(req models.NewBooking, now time.Time) (time.Time, time.Time, error) {
	if req.Start == nil || req.End == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start and end are required", domain.ErrValidation)
	}
	start := req.Start.Truncate(time.Second)
	end := req.End.Truncate(time.Second)
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start must be before end", domain.ErrValidation)
	}
	if start.Before(now) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start must not be in the past", domain.ErrValidation)
	}
	return start, end, nil
}

// ApproveBooking records the owner's decision on a WAITING booking.
func (s *BookingService) ApproveBooking(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error) {
	status := models.StatusRejected
	if approved {
		status = models.StatusApproved
	}

	var booking *models.Booking
	err := s.repo.InTx(ctx, func(repo domain.Repository) error {
		b, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.OwnerID != ownerID {
			return fmt.Errorf("%w: only the owner of item %d may decide on booking %d", domain.ErrValidation, b.ItemID, b.ID)
		}
		if b.Status != models.StatusWaiting {
			return fmt.Errorf("%w: booking %d has already been decided", domain.ErrConflict, b.ID)
		}
		if err := repo.DecideBooking(ctx, b.ID, status); err != nil {
			return err
		}
		b.Status = status
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncBookingDecision(string(status))
	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("owner_id", ownerID).
		Str("status", string(status)).
		Msg("Booking decided")

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.publishEvent(eventType, booking, ownerID)
	return booking, nil
}

// GetBooking is visible only to the booker and the item owner.
func (s *BookingService) GetBooking(ctx context.Context, requesterID, bookingID int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookerID != requesterID && booking.OwnerID != requesterID {
		return nil, fmt.Errorf("%w: booking %d is not accessible to user %d", domain.ErrConflict, bookingID, requesterID)
	}
	return booking, nil
}

func (s *BookingService) ListByBooker(ctx context.Context, userID int64, state models.BookingState, page models.Page) ([]*models.Booking, error) {
	return s.list(ctx, userID, models.BookingFilter{BookerID: userID, State: state, Page: page})
}

func (s *BookingService) ListByOwner(ctx context.Context, ownerID int64, state models.BookingState, page models.Page) ([]*models.Booking, error) {
	return s.list(ctx, ownerID, models.BookingFilter{OwnerID: ownerID, State: state, Page: page})
}

func (s *BookingService) list(ctx context.Context, userID int64, filter models.BookingFilter) ([]*models.Booking, error) {
	page, err := normalizePage(filter.Page, s.pageSize)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	filter.Page = page
	filter.Now = s.now()
	return s.repo.ListBookings(ctx, filter)
}

// ExistsCompletedApprovedBooking reports whether userID has an approved
// booking of itemID that ended before asOf.
func (s *BookingService) ExistsCompletedApprovedBooking(ctx context.Context, itemID, userID int64, asOf time.Time) (bool, error) {
	return s.repo.ExistsCompletedApprovedBooking(ctx, itemID, userID, asOf)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actorID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		ItemName:  booking.ItemName,
		OwnerID:   booking.OwnerID,
		BookerID:  booking.BookerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
		ActorID:   actorID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
