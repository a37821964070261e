package models

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	// StatusCanceled is accepted on the wire but no operation produces it yet.
	StatusCanceled BookingStatus = "CANCELED"
)

func ParseBookingStatus(raw string) (BookingStatus, error) {
	switch status := BookingStatus(strings.ToUpper(strings.TrimSpace(raw))); status {
	case StatusWaiting, StatusApproved, StatusRejected, StatusCanceled:
		return status, nil
	default:
		return "", fmt.Errorf("unknown booking status: %s", raw)
	}
}

func (s *BookingStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseBookingStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// BookingState selects a listing window. It is never persisted.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// ParseBookingState is case-insensitive; an empty value means ALL.
func ParseBookingState(raw string) (BookingState, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return StateAll, nil
	}
	switch state := BookingState(strings.ToUpper(trimmed)); state {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return state, nil
	default:
		return "", fmt.Errorf("Unknown state: %s", raw)
	}
}

// Status returns the persisted status a state filters on, if any.
func (s BookingState) Status() (BookingStatus, bool) {
	switch s {
	case StateWaiting:
		return StatusWaiting, true
	case StateRejected:
		return StatusRejected, true
	default:
		return "", false
	}
}

type Booking struct {
	ID       int64         `json:"id"`
	ItemID   int64         `json:"item_id"`
	ItemName string        `json:"item_name"`
	OwnerID  int64         `json:"owner_id"`
	BookerID int64         `json:"booker_id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Status   BookingStatus `json:"status"`
}

// InWindow reports whether the booking matches state at the given instant.
// CURRENT is inclusive on both ends, so PAST, CURRENT and FUTURE partition ALL.
func (b *Booking) InWindow(state BookingState, now time.Time) bool {
	switch state {
	case StateAll:
		return true
	case StateCurrent:
		return !b.Start.After(now) && !b.End.Before(now)
	case StatePast:
		return b.End.Before(now)
	case StateFuture:
		return b.Start.After(now)
	case StateWaiting:
		return b.Status == StatusWaiting
	case StateRejected:
		return b.Status == StatusRejected
	default:
		return false
	}
}

// BookingRef is the short form of a booking attached to an item.
type BookingRef struct {
	ID       int64 `db:"id" json:"id"`
	BookerID int64 `db:"booker_id" json:"bookerId"`
}

type Page struct {
	From int
	Size int
}

// NewBooking is the input of a booking creation. Nil dates are reported as missing.
type NewBooking struct {
	ItemID int64
	Start  *time.Time
	End    *time.Time
}

// BookingFilter narrows a booking listing to one booker or one owner.
type BookingFilter struct {
	BookerID int64
	OwnerID  int64
	State    BookingState
	Now      time.Time
	Page     Page
}
