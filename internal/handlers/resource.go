package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/frontline-fury-backend/internal/models"
	"github.com/AnshRaj112/frontline-fury-backend/internal/repository"
	"github.com/AnshRaj112/frontline-fury-backend/internal/services"
)

// MaxBodyBytes caps request bodies of create and update.
const MaxBodyBytes = 100 << 10

// Store is the persistence a Controller needs. repository.Collection
// implements it for MongoDB.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, fields models.Fields) (T, error)
	Update(ctx context.Context, id string, fields models.Fields) (T, error)
	Delete(ctx context.Context, id string) error
}

// Resource names one collection and the messages its routes answer with.
type Resource struct {
	Collection string
	Schema     models.Schema

	NotFound string
	Created  string
	Updated  string
	Deleted  string
}

// Controller serves the five CRUD routes of one collection.
type Controller[T any] struct {
	store      Store[T]
	resource   Resource
	cache      *services.ListCache
	log        zerolog.Logger
	production bool
}

func NewController[T any](store Store[T], resource Resource, cache *services.ListCache, log zerolog.Logger, production bool) *Controller[T] {
	return &Controller[T]{
		store:      store,
		resource:   resource,
		cache:      cache,
		log:        log.With().Str("collection", resource.Collection).Logger(),
		production: production,
	}
}

// Routes mounts the controller under its own sub-router.
func (c *Controller[T]) Routes(r chi.Router) {
	r.Get("/", c.List)
	r.Post("/", c.Create)
	r.Get("/{id}", c.Get)
	r.Put("/{id}", c.Update)
	r.Delete("/{id}", c.Delete)
}

// List returns every record, newest first.
func (c *Controller[T]) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, gen, ok := c.cache.Get(ctx, c.resource.Collection)
	if ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}

	records, err := c.store.List(ctx)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	body, err = json.Marshal(records)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.cache.Set(ctx, c.resource.Collection, gen, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (c *Controller[T]) Get(w http.ResponseWriter, r *http.Request) {
	record, err := c.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (c *Controller[T]) Create(w http.ResponseWriter, r *http.Request) {
	fields, ok := c.decode(w, r)
	if !ok {
		return
	}

	record, err := c.store.Create(r.Context(), fields)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.cache.Invalidate(r.Context(), c.resource.Collection)

	writeJSON(w, http.StatusCreated, MessageResponse{
		Message: c.resource.Created,
		Data:    record,
	})
}

// Update merges the supplied fields into the record and returns its new state.
func (c *Controller[T]) Update(w http.ResponseWriter, r *http.Request) {
	fields, ok := c.decode(w, r)
	if !ok {
		return
	}

	record, err := c.store.Update(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.cache.Invalidate(r.Context(), c.resource.Collection)

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: c.resource.Updated,
		Data:    record,
	})
}

func (c *Controller[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		c.fail(w, r, err)
		return
	}
	c.cache.Invalidate(r.Context(), c.resource.Collection)

	writeJSON(w, http.StatusOK, MessageResponse{Message: c.resource.Deleted})
}

func (c *Controller[T]) decode(w http.ResponseWriter, r *http.Request) (models.Fields, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request entity too large")
			return nil, false
		}
		c.fail(w, r, err)
		return nil, false
	}

	fields, err := c.resource.Schema.Decode(body)
	if err != nil {
		c.fail(w, r, err)
		return nil, false
	}
	return fields, true
}

// fail maps an operation error onto the response.
func (c *Controller[T]) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError

	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, c.resource.NotFound)
	case errors.Is(err, repository.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Service unavailable")
	case errors.As(err, &verr):
		c.log.Debug().Err(err).Str("path", r.URL.Path).Msg("payload rejected")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:  verr.Error(),
			Fields: verr.Fields,
		})
	case errors.Is(err, repository.ErrInvalidID):
		c.log.Debug().Err(err).Str("path", r.URL.Path).Msg("malformed id")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:  err.Error(),
			Fields: map[string]string{"_id": "cast to ObjectId failed"},
		})
	default:
		c.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		message := err.Error()
		if c.production {
			message = "Internal server error"
		}
		writeError(w, http.StatusInternalServerError, message)
	}
}
