package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"shareit/internal/api"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// Forwarder sends a request on to the server tier.
type Forwarder interface {
	Forward(w http.ResponseWriter, r *http.Request, body []byte)
}

type Gateway struct {
	upstream  Forwarder
	validator *Validator
	limiter   domain.RateLimiter
	pageSize  int
	logger    *zerolog.Logger
}

func New(upstream Forwarder, validator *Validator, limiter domain.RateLimiter, logger *zerolog.Logger) *Gateway {
	return &Gateway{
		upstream:  upstream,
		validator: validator,
		limiter:   limiter,
		pageSize:  models.DefaultPageSize,
		logger:    logger,
	}
}

// Router exposes the same routes as the server. A nil limiter disables
// rate limiting.
func (g *Gateway) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(api.RequestID)
	r.Use(api.AccessLog("gateway", g.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if g.limiter != nil {
			r.Use(RateLimit(g.limiter, g.logger))
		}

		r.Route("/bookings", func(r chi.Router) {
			r.Use(g.requireUser)
			r.Post("/", g.createBooking)
			r.Get("/", g.list)
			r.Get("/owner", g.list)
			r.With(g.requireID).Get("/{id}", g.forward)
			r.With(g.requireID).Patch("/{id}", g.decideBooking)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", withBody[userCreateRequest](g))
			r.Get("/", g.forward)
			r.With(g.requireID).Get("/{id}", g.forward)
			r.With(g.requireID).Patch("/{id}", withBody[userUpdateRequest](g))
			r.With(g.requireID).Delete("/{id}", g.forward)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/search", g.forward)
			r.Group(func(r chi.Router) {
				r.Use(g.requireUser)
				r.Post("/", withBody[itemCreateRequest](g))
				r.Get("/", g.forward)
				r.With(g.requireID).Get("/{id}", g.forward)
				r.With(g.requireID).Patch("/{id}", withBody[itemUpdateRequest](g))
				r.With(g.requireID).Delete("/{id}", g.forward)
				r.With(g.requireID).Post("/{id}/comment", withBody[commentRequest](g))
			})
		})

		r.Route("/requests", func(r chi.Router) {
			r.Use(g.requireUser)
			r.Post("/", withBody[itemRequestRequest](g))
			r.Get("/", g.forward)
			r.Get("/all", g.list)
			r.With(g.requireID).Get("/{id}", g.forward)
		})
	})

	return r
}

func (g *Gateway) forward(w http.ResponseWriter, r *http.Request) {
	g.upstream.Forward(w, r, nil)
}

func (g *Gateway) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := api.RequesterID(r); err != nil {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) requireID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "id")
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			api.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid id: %q", raw))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// readBody decodes the request body into dst, validates it and returns the
// raw bytes for forwarding.
func (g *Gateway) readBody(w http.ResponseWriter, r *http.Request, dst any) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}
	if err := g.validator.Struct(dst); err != nil {
		g.writeValidation(w, err)
		return nil, false
	}
	return body, true
}

func (g *Gateway) writeValidation(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrValidation) {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	g.logger.Error().Err(err).Msg("validation failed unexpectedly")
	api.WriteError(w, http.StatusInternalServerError, "internal server error")
}

func withBody[T any](g *Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var dst T
		body, ok := g.readBody(w, r, &dst)
		if !ok {
			return
		}
		g.upstream.Forward(w, r, body)
	}
}

func (g *Gateway) createBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	body, ok := g.readBody(w, r, &req)
	if !ok {
		return
	}
	g.logger.Debug().Int64("item_id", req.ItemID).Msg("forwarding booking creation")
	g.upstream.Forward(w, r, body)
}

func (g *Gateway) decideBooking(w http.ResponseWriter, r *http.Request) {
	if _, err := strconv.ParseBool(r.URL.Query().Get("approved")); err != nil {
		api.WriteError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}
	g.forward(w, r)
}

// list checks the state token and paging parameters of listing routes.
func (g *Gateway) list(w http.ResponseWriter, r *http.Request) {
	q, ok := g.listQuery(w, r)
	if !ok {
		return
	}
	if err := g.validator.Struct(&q); err != nil {
		g.writeValidation(w, err)
		return
	}
	g.forward(w, r)
}

func (g *Gateway) listQuery(w http.ResponseWriter, r *http.Request) (listQuery, bool) {
	values := r.URL.Query()
	q := listQuery{State: values.Get("state"), From: 0, Size: g.pageSize}

	for name, dst := range map[string]*int{"from": &q.From, "size": &q.Size} {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", name, raw))
			return q, false
		}
		*dst = v
	}
	return q, true
}
