package api

import (
	"context"
	"net/http"
	"strconv"

	"shareit/internal/models"
)

func (h *handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	var req bookingRequest
	if !h.decode(w, r, &req) {
		return
	}

	booking, err := h.Bookings.CreateBooking(r.Context(), userID, req.toModel())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *handlers) decideBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	bookingID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}

	booking, err := h.Bookings.ApproveBooking(r.Context(), userID, bookingID, approved)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	bookingID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	booking, err := h.Bookings.GetBooking(r.Context(), userID, bookingID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *handlers) listBookerBookings(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, h.Bookings.ListByBooker)
}

func (h *handlers) listOwnerBookings(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, h.Bookings.ListByOwner)
}

type bookingLister func(ctx context.Context, userID int64, state models.BookingState, page models.Page) ([]*models.Booking, error)

func (h *handlers) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) {
	userID, ok := h.requester(w, r)
	if !ok {
		return
	}
	state, err := models.ParseBookingState(r.URL.Query().Get("state"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := pageParams(r, h.PageSize)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := list(r.Context(), userID, state, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toBookingResponses(bookings))
}
