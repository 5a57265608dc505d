package itinerary

import (
	"encoding/json"
	"fmt"
	"time"
)

// ─── Models ──────────────────────────────────────────────────────────────────

// Itinerary is the normalized record every consumer (HTTP, PDF, dashboard)
// works with. Scalars are never empty of meaning: missing input is replaced
// by the sentinels in defaults.go.
type Itinerary struct {
	ID              string          `json:"id,omitempty"`
	UserID          string          `json:"userId"`
	Destination     string          `json:"destination"`
	StartingPoint   string          `json:"startingPoint"`
	Description     string          `json:"description"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	TravelersCount  int             `json:"travelersCount"`
	TravelGroupType string          `json:"travelGroupType"`
	Image           string          `json:"image"`
	Days            []Day           `json:"days"`
	Accommodations  []Accommodation `json:"accommodations"`
	Tips            []Tip           `json:"tips"`
	TravelDetails   TravelDetails   `json:"travelDetails"`
	CreatedAt       *time.Time      `json:"createdAt"`
	UpdatedAt       *time.Time      `json:"updatedAt"`
}

type Day struct {
	DayNumber     int               `json:"dayNumber"`
	Title         string            `json:"title"`
	Date          time.Time         `json:"date"`
	Activities    []Activity        `json:"activities"`
	Accommodation *DayAccommodation `json:"accommodation"`
}

type Activity struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Time        string  `json:"time"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	MapLink     *string `json:"mapLink"`
}

// Accommodation is one lodging option at itinerary level. It is not tied to
// a particular night; see DayAccommodation for that.
type Accommodation struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Address    string  `json:"address"`
	PriceRange string  `json:"priceRange"`
	MapLink    *string `json:"mapLink"`
}

// DayAccommodation is the lodging picked for a single night.
type DayAccommodation struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	MapLink  *string `json:"mapLink"`
}

type Tip struct {
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Content  []string `json:"content"`
}

type TravelDetails struct {
	Arrival   TravelLeg `json:"arrival"`
	Departure TravelLeg `json:"departure"`
}

type TravelLeg struct {
	Mode          string  `json:"mode"`
	Airline       string  `json:"airline"`
	DepartureTime string  `json:"departureTime"`
	ArrivalTime   string  `json:"arrivalTime"`
	Price         string  `json:"price"`
	Airport       string  `json:"airport"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	MapLink       *string `json:"mapLink"`
}

// persistence-managed keys, never part of the stored body
var managedKeys = []string{"id", "userId", "createdAt", "updatedAt"}

// Document returns the body to persist: the record as a plain map without
// the identity and audit fields the store manages itself.
func (it *Itinerary) Document() (map[string]any, error) {
	doc, err := toMap(it)
	if err != nil {
		return nil, err
	}
	for _, k := range managedKeys {
		delete(doc, k)
	}
	return doc, nil
}

// toMap round-trips a value through JSON.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode %T: %w", v, err)
	}
	return m, nil
}
