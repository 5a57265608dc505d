package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"itinera/database"
	"itinera/itinerary"
	"itinera/services"
)

const userIDHeader = "X-User-ID"

// Handler serves the itinerary API. Store may be nil, in which case
// generated itineraries are returned without being saved and the stored
// itinerary routes are not usable.
type Handler struct {
	Store      database.Store
	Planner    *services.Planner
	Links      *services.MapLinks
	Normalizer itinerary.Normalizer
}

func New(store database.Store, planner *services.Planner, links *services.MapLinks) *Handler {
	if planner == nil {
		planner = &services.Planner{}
	}
	return &Handler{Store: store, Planner: planner, Links: links}
}

func userID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(userIDHeader))
}

// requireUser writes 401 and returns "" when the caller did not identify itself.
func requireUser(c *gin.Context) string {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing " + userIDHeader + " header"})
	}
	return uid
}

// present turns a stored or candidate document into the record clients see:
// store timestamps converted, every field normalized, map links derived.
func (h *Handler) present(c *gin.Context, raw any) (*itinerary.Itinerary, error) {
	n := h.Normalizer
	if n.Observer == nil {
		reqID := c.GetString(requestIDKey)
		n.Observer = func(e itinerary.DefaultingEvent) {
			log.Debug().
				Str(requestIDKey, reqID).
				Str("field", e.Path).
				Str("reason", e.Reason).
				Msg("itinerary field defaulted")
		}
	}

	it, err := n.Normalize(itinerary.ConvertTimestamps(raw))
	if err != nil {
		return nil, err
	}
	if h.Links != nil {
		itinerary.Enrich(it, h.Links.ForContext(c.Request.Context()))
	}
	return it, nil
}

func unavailable(c *gin.Context, err error) {
	log.Warn().Err(err).Str(requestIDKey, c.GetString(requestIDKey)).Msg("⚠️  Itinerary data unavailable")
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Itinerary data unavailable"})
}

// storeError maps store failures onto HTTP responses.
func storeError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, database.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid itinerary ID"})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary not found"})
	default:
		log.Error().Stack().Err(err).Str(requestIDKey, c.GetString(requestIDKey)).Msgf("❌ Failed to %s", action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

func (h *Handler) storeReady(c *gin.Context) bool {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage is not configured"})
		return false
	}
	return true
}

// owned loads id and checks it belongs to uid. It writes the error response
// itself and returns nil on any failure.
func (h *Handler) owned(c *gin.Context, id, uid string) database.Document {
	doc, err := h.Store.Get(c.Request.Context(), id)
	if err != nil {
		storeError(c, err, "get itinerary")
		return nil
	}
	if owner, _ := doc["userId"].(string); owner != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this itinerary"})
		return nil
	}
	return doc
}
