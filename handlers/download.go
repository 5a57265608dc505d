package handlers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"itinera/services"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Download renders the stored itinerary as a PDF attachment. Like Get it
// needs only the id.
func (h *Handler) Download(c *gin.Context) {
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

	pdfBytes, err := services.RenderItineraryPDF(it)
	if err != nil {
		log.Error().Stack().Err(err).Str("id", it.ID).Msg("❌ PDF generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", pdfFilename(it.Destination)))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func pdfFilename(destination string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(destination), "-"), "-")
	if slug == "" {
		return "itinera-itinerary.pdf"
	}
	return "itinera-" + slug + ".pdf"
}

func (h *Handler) Health(c *gin.Context) {
	dbStatus := "ok"
	if h.Store == nil {
		dbStatus = "not initialized"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			dbStatus = "error: " + err.Error()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "Itinera API",
		"database": dbStatus,
	})
}
