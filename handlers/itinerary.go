package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"itinera/itinerary"
	"itinera/services"
)

type GenerateResponse struct {
	Itinerary *itinerary.Itinerary `json:"itinerary"`
	Source    string               `json:"source"` // "ai" or "fallback"
}

type ListResponse struct {
	Itineraries []*itinerary.Itinerary `json:"itineraries"`
}

// Generate plans a trip and, when the caller identifies itself, saves it.
func (h *Handler) Generate(c *gin.Context) {
	var req services.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := req.CheckDates(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	it, fallback, err := h.Planner.Plan(ctx, req)
	if err != nil {
		if itinerary.IsStructuralInputError(err) {
			unavailable(c, err)
			return
		}
		log.Error().Stack().Err(err).Str(requestIDKey, c.GetString(requestIDKey)).Msg("❌ Itinerary generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate itinerary"})
		return
	}

	source := "ai"
	if fallback {
		source = "fallback"
	}

	if uid := userID(c); uid != "" && h.Store != nil {
		saved, ok := h.save(c, uid, it)
		if !ok {
			return
		}
		it = saved
	}

	c.JSON(http.StatusOK, GenerateResponse{Itinerary: it, Source: source})
}

// Save stores a client-supplied itinerary for the caller.
func (h *Handler) Save(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}
	uid := requireUser(c)
	if uid == "" {
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	it, err := h.present(c, raw)
	if err != nil {
		unavailable(c, err)
		return
	}

	saved, ok := h.save(c, uid, it)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// save persists it and returns the stored copy so clients see the id and
// audit timestamps.
func (h *Handler) save(c *gin.Context, uid string, it *itinerary.Itinerary) (*itinerary.Itinerary, bool) {
	ctx := c.Request.Context()
	body, err := it.Document()
	if err != nil {
		log.Error().Stack().Err(err).Str(requestIDKey, c.GetString(requestIDKey)).Msg("❌ Failed to encode itinerary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save itinerary"})
		return nil, false
	}
	id, err := h.Store.Create(ctx, uid, body)
	if err != nil {
		storeError(c, err, "save itinerary")
		return nil, false
	}
	doc, err := h.Store.Get(ctx, id)
	if err != nil {
		storeError(c, err, "load saved itinerary")
		return nil, false
	}
	saved, err := h.present(c, doc)
	if err != nil {
		unavailable(c, err)
		return nil, false
	}

	log.Info().Str("id", id).Str("user_id", uid).Msg("✅ Itinerary saved")
	return saved, true
}

// List is the dashboard view, newest first. Records that cannot be shown
// are skipped rather than failing the page.
func (h *Handler) List(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}
	uid := requireUser(c)
	if uid == "" {
		return
	}

	docs, err := h.Store.ListByUser(c.Request.Context(), uid)
	if err != nil {
		storeError(c, err, "list itineraries")
		return
	}

	out := make([]*itinerary.Itinerary, 0, len(docs))
	for _, doc := range docs {
		it, err := h.present(c, doc)
		if err != nil {
			log.Warn().Err(err).Interface("id", doc["id"]).Msg("⚠️  Skipping unreadable itinerary")
			continue
		}
		out = append(out, it)
	}
	c.JSON(http.StatusOK, ListResponse{Itineraries: out})
}

// Get returns one itinerary to anyone holding its id, so shared links work
// without the owner's header. Only Update and Delete check ownership.
func (h *Handler) Get(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}
	doc, err := h.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "get itinerary")
		return
	}
	it, err := h.present(c, doc)
	if err != nil {
		unavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// Update merges the body into the owner's stored itinerary. Identity and
// audit keys in the body are ignored by the store.
func (h *Handler) Update(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}
	uid := requireUser(c)
	if uid == "" {
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&fields); err != nil || fields == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON object"})
		return
	}

	id := c.Param("id")
	if h.owned(c, id, uid) == nil {
		return
	}
	doc, err := h.Store.Update(c.Request.Context(), id, fields)
	if err != nil {
		storeError(c, err, "update itinerary")
		return
	}
	it, err := h.present(c, doc)
	if err != nil {
		unavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *Handler) Delete(c *gin.Context) {
	if !h.storeReady(c) {
		return
	}
	uid := requireUser(c)
	if uid == "" {
		return
	}

	id := c.Param("id")
	if h.owned(c, id, uid) == nil {
		return
	}
	if err := h.Store.Delete(c.Request.Context(), id); err != nil {
		storeError(c, err, "delete itinerary")
		return
	}
	c.Status(http.StatusNoContent)
}
