package api

import (
	"context"
	"net/http"

	"shareit/internal/domain"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services behind the server routes.
type Dependencies struct {
	Bookings domain.BookingManager
	Users    domain.UserManager
	Items    domain.ItemManager
	Requests domain.RequestManager
	Store    Pinger
	PageSize int
}

type handlers struct {
	Dependencies
	logger *zerolog.Logger
}

// NewRouter builds the server tier routes.
func NewRouter(deps Dependencies, logger *zerolog.Logger) http.Handler {
	h := &handlers{Dependencies: deps, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestID)
	r.Use(AccessLog("server", logger))

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", h.createBooking)
		r.Get("/", h.listBookerBookings)
		r.Get("/owner", h.listOwnerBookings)
		r.Get("/{id}", h.getBooking)
		r.Patch("/{id}", h.decideBooking)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.createUser)
		r.Get("/", h.listUsers)
		r.Get("/{id}", h.getUser)
		r.Patch("/{id}", h.updateUser)
		r.Delete("/{id}", h.deleteUser)
	})

	r.Route("/items", func(r chi.Router) {
		r.Post("/", h.createItem)
		r.Get("/", h.listOwnerItems)
		r.Get("/search", h.searchItems)
		r.Get("/{id}", h.getItem)
		r.Patch("/{id}", h.updateItem)
		r.Delete("/{id}", h.deleteItem)
		r.Post("/{id}/comment", h.addComment)
	})

	r.Route("/requests", func(r chi.Router) {
		r.Post("/", h.createRequest)
		r.Get("/", h.listOwnRequests)
		r.Get("/all", h.listOtherRequests)
		r.Get("/{id}", h.getRequest)
	})

	return r
}

// requester writes a 400 and returns false when the identity header is unusable.
func (h *handlers) requester(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := RequesterID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

func (h *handlers) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

func (h *handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeDomainError(w, r, h.logger, err)
}

func (h *handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if h.Store != nil {
		if err := h.Store.Ping(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("readiness check failed")
			WriteError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
