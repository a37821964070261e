package api

import (
	"time"

	"shareit/internal/models"
)

type bookingRequest struct {
	ItemID int64                 `json:"itemId"`
	Start  *models.LocalDateTime `json:"start"`
	End    *models.LocalDateTime `json:"end"`
}

func (b bookingRequest) toModel() models.NewBooking {
	return models.NewBooking{ItemID: b.ItemID, Start: timePtr(b.Start), End: timePtr(b.End)}
}

func timePtr(v *models.LocalDateTime) *time.Time {
	if v == nil {
		return nil
	}
	return v.Ptr()
}

type itemRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type bookerRef struct {
	ID int64 `json:"id"`
}

type bookingResponse struct {
	ID     int64                `json:"id"`
	Item   itemRef              `json:"item"`
	Booker bookerRef            `json:"booker"`
	Start  models.LocalDateTime `json:"start"`
	End    models.LocalDateTime `json:"end"`
	Status models.BookingStatus `json:"status"`
}

func toBookingResponse(b *models.Booking) bookingResponse {
	return bookingResponse{
		ID:     b.ID,
		Item:   itemRef{ID: b.ItemID, Name: b.ItemName},
		Booker: bookerRef{ID: b.BookerID},
		Start:  models.NewLocalDateTime(b.Start),
		End:    models.NewLocalDateTime(b.End),
		Status: b.Status,
	}
}

func toBookingResponses(bookings []*models.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}

type userRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (u userRequest) toModel() *models.User {
	user := &models.User{}
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	return user
}

type itemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
	RequestID   *int64  `json:"requestId"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type commentResponse struct {
	ID         int64                `json:"id"`
	Text       string               `json:"text"`
	AuthorName string               `json:"authorName"`
	Created    models.LocalDateTime `json:"created"`
}

func toCommentResponses(comments []models.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i]))
	}
	return out
}

func toCommentResponse(c *models.Comment) commentResponse {
	return commentResponse{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    models.NewLocalDateTime(c.Created),
	}
}

type itemDetailsResponse struct {
	models.Item
	LastBooking *models.BookingRef `json:"lastBooking"`
	NextBooking *models.BookingRef `json:"nextBooking"`
	Comments    []commentResponse  `json:"comments"`
}

func toItemDetailsResponse(d *models.ItemDetails) itemDetailsResponse {
	return itemDetailsResponse{
		Item:        d.Item,
		LastBooking: d.LastBooking,
		NextBooking: d.NextBooking,
		Comments:    toCommentResponses(d.Comments),
	}
}

type requestRequest struct {
	Description string `json:"description"`
}

type requestResponse struct {
	ID          int64                `json:"id"`
	Description string               `json:"description"`
	Created     models.LocalDateTime `json:"created"`
	Items       []models.RequestItem `json:"items"`
}

func toRequestResponse(r *models.ItemRequest) requestResponse {
	items := r.Items
	if items == nil {
		items = []models.RequestItem{}
	}
	return requestResponse{
		ID:          r.ID,
		Description: r.Description,
		Created:     models.NewLocalDateTime(r.Created),
		Items:       items,
	}
}

func toRequestResponses(reqs []*models.ItemRequest) []requestResponse {
	out := make([]requestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, toRequestResponse(r))
	}
	return out
}
