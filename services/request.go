package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TripRequest is what a traveller submits to get an itinerary generated.
type TripRequest struct {
	Destination        string   `json:"destination" binding:"required"`
	StartingPoint      string   `json:"startingPoint"`
	StartDate          string   `json:"startDate" binding:"required,isodate"`
	EndDate            string   `json:"endDate" binding:"required,isodate"`
	TravelersCount     int      `json:"travelersCount" binding:"omitempty,min=1,max=50"`
	TravelGroupType    string   `json:"travelGroupType"`
	BudgetType         string   `json:"budgetType"`
	TripStyles         []string `json:"tripStyles"`
	Pace               string   `json:"pace"`
	WakeUpTime         string   `json:"wakeUpTime"`
	CuisinePreferences []string `json:"cuisinePreferences"`
	SpecialRequests    string   `json:"specialRequests"`
	OriginCode         string   `json:"originCode" binding:"omitempty,len=3,alpha"`
	DestinationCode    string   `json:"destinationCode" binding:"omitempty,len=3,alpha"`
}

var ErrDateOrder = errors.New("endDate must not be before startDate")

var requestDateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseRequestDate accepts a plain calendar date or a full RFC 3339 time.
func ParseRequestDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range requestDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := ParseRequestDate(fl.Field().String())
	return err == nil
}

// RegisterValidators adds the "isodate" tag used by TripRequest.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("isodate", validateISODate)
}

// CheckDates enforces the rules tags cannot express.
func (r TripRequest) CheckDates() error {
	start, err := ParseRequestDate(r.StartDate)
	if err != nil {
		return err
	}
	end, err := ParseRequestDate(r.EndDate)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return ErrDateOrder
	}
	return nil
}

// Nights is the number of nights between the request dates, at least 1.
func (r TripRequest) Nights() int {
	start, err1 := ParseRequestDate(r.StartDate)
	end, err2 := ParseRequestDate(r.EndDate)
	if err1 != nil || err2 != nil {
		return 1
	}
	n := int(end.Sub(start).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

// ApplyRequest copies the traveller's own answers over whatever the model
// produced. The model may rename or embellish the destination, so that one
// is only filled when missing.
func ApplyRequest(raw map[string]any, req TripRequest) map[string]any {
	if raw == nil {
		raw = map[string]any{}
	}

	if s, _ := raw["destination"].(string); strings.TrimSpace(s) == "" && req.Destination != "" {
		raw["destination"] = req.Destination
	}
	if req.StartingPoint != "" {
		raw["startingPoint"] = req.StartingPoint
	}
	if req.StartDate != "" {
		raw["startDate"] = req.StartDate
	}
	if req.EndDate != "" {
		raw["endDate"] = req.EndDate
	}
	if req.TravelersCount > 0 {
		raw["travelersCount"] = req.TravelersCount
	}
	if req.TravelGroupType != "" {
		raw["travelGroupType"] = req.TravelGroupType
	}
	return raw
}

// BuildPrompt asks for a single JSON object in the itinerary record shape.
func BuildPrompt(req TripRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a detailed travel itinerary for a trip to %s", req.Destination)
	if req.StartingPoint != "" {
		fmt.Fprintf(&b, " starting from %s", req.StartingPoint)
	}
	fmt.Fprintf(&b, ", from %s to %s.\n\nTrip details:\n", readableDate(req.StartDate), readableDate(req.EndDate))

	travelers := req.TravelersCount
	if travelers < 1 {
		travelers = 1
	}
	fmt.Fprintf(&b, "- Number of travelers: %d\n", travelers)
	writeDetail(&b, "Group type", req.TravelGroupType)
	writeDetail(&b, "Budget", req.BudgetType)
	writeDetail(&b, "Trip styles", strings.Join(req.TripStyles, ", "))
	writeDetail(&b, "Pace", req.Pace)
	writeDetail(&b, "Wake-up time", req.WakeUpTime)
	writeDetail(&b, "Cuisine preferences", strings.Join(req.CuisinePreferences, ", "))
	writeDetail(&b, "Special requests", req.SpecialRequests)

	b.WriteString(`
Please include:
1. A day-by-day plan with morning, afternoon, and evening activities
2. Recommended accommodations with price ranges
3. Travel tips specific to the destination
4. Suggested restaurants based on cuisine preferences
5. Arrival and departure travel details

Respond with ONLY a JSON object with the following structure:
{
  "destination": string,
  "description": string,
  "days": [
    {
      "dayNumber": number,
      "title": string,
      "date": string (ISO date),
      "activities": [
        {
          "type": string (Morning/Lunch/Afternoon/Evening),
          "title": string,
          "time": string,
          "location": string,
          "description": string
        }
      ],
      "accommodation": { "name": string, "location": string }
    }
  ],
  "accommodations": [
    { "name": string, "type": string, "address": string, "priceRange": string }
  ],
  "tips": [
    { "category": string, "title": string, "content": [string] }
  ],
  "travelDetails": {
    "arrival":   { "mode": string, "airline": string, "departureTime": string, "arrivalTime": string, "price": string, "airport": string, "from": string, "to": string },
    "departure": { "mode": string, "airline": string, "departureTime": string, "arrivalTime": string, "price": string, "airport": string, "from": string, "to": string }
  }
}
`)
	return b.String()
}

func writeDetail(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}

func readableDate(s string) string {
	t, err := ParseRequestDate(s)
	if err != nil {
		return s
	}
	return t.Format("January 2, 2006")
}
