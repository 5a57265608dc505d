package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"itinera/services"
)

type SearchRequest struct {
	Origin        string `json:"origin" binding:"required,len=3,alpha"`
	Destination   string `json:"destination" binding:"required,len=3,alpha"`
	DepartureDate string `json:"departureDate" binding:"required,isodate"`
	ReturnDate    string `json:"returnDate" binding:"required,isodate"`
	Passengers    int    `json:"passengers" binding:"omitempty,min=1,max=9"`
}

type SearchResponse struct {
	Flights        []services.Flight `json:"flights"`
	Hotels         []services.Hotel  `json:"hotels"`
	Accommodations []any             `json:"accommodations"`
}

// Search returns live flight and hotel options for a route. Either half may
// come back empty when the provider fails; there are no estimated prices.
func (h *Handler) Search(c *gin.Context) {
	amadeus := h.Planner.Amadeus
	if !amadeus.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live travel search is not configured"})
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	req.Origin = strings.ToUpper(req.Origin)
	req.Destination = strings.ToUpper(req.Destination)
	if req.Passengers <= 0 {
		req.Passengers = 1
	}

	trip := services.TripRequest{StartDate: req.DepartureDate, EndDate: req.ReturnDate}
	if err := trip.CheckDates(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Return date must not be before departure date"})
		return
	}
	dep, _ := services.ParseRequestDate(req.DepartureDate)
	ret, _ := services.ParseRequestDate(req.ReturnDate)
	depDate, retDate := dep.Format("2006-01-02"), ret.Format("2006-01-02")

	ctx := c.Request.Context()
	resp := SearchResponse{Flights: []services.Flight{}, Hotels: []services.Hotel{}}

	flights, err := amadeus.SearchFlights(ctx, req.Origin, req.Destination, depDate, retDate, req.Passengers)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  Amadeus flight search failed")
	} else {
		resp.Flights = flights
		log.Info().Int("count", len(flights)).Msg("✅ Amadeus: live flights found")
	}

	hotels, err := amadeus.SearchHotels(ctx, req.Destination, depDate, retDate, req.Passengers)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  Amadeus hotel search failed")
	} else {
		resp.Hotels = hotels
		log.Info().Int("count", len(hotels)).Msg("✅ Amadeus: live hotels found")
	}
	resp.Accommodations = services.AccommodationsFromHotels(resp.Hotels, 5)

	c.JSON(http.StatusOK, resp)
}
