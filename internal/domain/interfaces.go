package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	ListItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error)
	ListItemsByRequest(ctx context.Context, requestID int64) ([]models.RequestItem, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	// DecideBooking moves a WAITING booking to status and reports ErrConflict
	// when the booking is no longer WAITING.
	DecideBooking(ctx context.Context, id int64, status models.BookingStatus) error
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	ExistsCompletedApprovedBooking(ctx context.Context, itemID, userID int64, asOf time.Time) (bool, error)
	LastApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingRef, error)
	NextApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingRef, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, req *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	ListRequestsByRequestor(ctx context.Context, userID int64) ([]*models.ItemRequest, error)
	ListRequestsExcept(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error)
}

// Repository is the whole relational store. InTx runs fn against a
// transaction-bound Repository and commits when fn returns nil.
type Repository interface {
	UserRepository
	ItemRepository
	BookingRepository
	CommentRepository
	RequestRepository

	InTx(ctx context.Context, fn func(repo Repository) error) error
	Ping(ctx context.Context) error
}

type BookingManager interface {
	CreateBooking(ctx context.Context, requesterID int64, req models.NewBooking) (*models.Booking, error)
	ApproveBooking(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error)
	GetBooking(ctx context.Context, requesterID, bookingID int64) (*models.Booking, error)
	ListByBooker(ctx context.Context, userID int64, state models.BookingState, page models.Page) ([]*models.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, state models.BookingState, page models.Page) ([]*models.Booking, error)
}

type UserManager interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type ItemManager interface {
	CreateItem(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	GetItem(ctx context.Context, requesterID, itemID int64) (*models.ItemDetails, error)
	ListOwnerItems(ctx context.Context, ownerID int64) ([]*models.ItemDetails, error)
	SearchItems(ctx context.Context, text string) ([]*models.Item, error)
	DeleteItem(ctx context.Context, ownerID, itemID int64) error
	AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error)
}

type RequestManager interface {
	CreateRequest(ctx context.Context, requestorID int64, description string) (*models.ItemRequest, error)
	ListOwnRequests(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	ListOtherRequests(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error)
	GetRequest(ctx context.Context, userID, requestID int64) (*models.ItemRequest, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// RateLimiter admits or rejects one request for key within the current window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
