package itinerary

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Normalizer turns a loosely shaped candidate into an Itinerary. The zero
// value is ready to use.
type Normalizer struct {
	// Clock supplies "today" for a missing startDate. Defaults to time.Now.
	Clock func() time.Time
	// Observer, when set, is told about every field that was defaulted.
	Observer func(DefaultingEvent)
}

var defaultNormalizer Normalizer

// Normalize uses the zero Normalizer. See Normalizer.Normalize.
func Normalize(raw any) (*Itinerary, error) {
	return defaultNormalizer.Normalize(raw)
}

// Normalize returns a record satisfying every structural guarantee of
// Itinerary, or a StructuralInputError when raw is not object-like.
// Normalizing its own output again yields an equal record.
func (n Normalizer) Normalize(raw any) (*Itinerary, error) {
	m, err := candidate(raw)
	if err != nil {
		return nil, err
	}

	s := &state{observe: n.Observer}
	it := &Itinerary{
		ID:              optional(m, "id"),
		UserID:          optional(m, "userId"),
		Destination:     s.str(m, "destination", DefaultDestination, ""),
		StartingPoint:   s.str(m, "startingPoint", DefaultStartingPoint, ""),
		Description:     s.str(m, "description", DefaultDescription, ""),
		TravelersCount:  s.count(m, "travelersCount", DefaultTravelersCount, ""),
		TravelGroupType: s.str(m, "travelGroupType", DefaultTravelGroupType, ""),
		Image:           s.str(m, "image", PlaceholderImage, ""),
		CreatedAt:       auditTime(m["createdAt"]),
		UpdatedAt:       auditTime(m["updatedAt"]),
	}
	it.StartDate = s.date(m, "startDate", n.today(), "")
	it.EndDate = s.date(m, "endDate", it.StartDate, "")

	it.Days = s.days(m["days"], it.StartDate, "days")
	it.Accommodations = s.accommodations(m["accommodations"], "accommodations")
	it.Tips = s.tips(m["tips"], "tips")
	it.TravelDetails = s.travelDetails(m["travelDetails"], it.StartingPoint, it.Destination, "travelDetails")

	return it, nil
}

func (n Normalizer) today() time.Time {
	now := time.Now
	if n.Clock != nil {
		now = n.Clock
	}
	t := now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// candidate resolves raw to a plain map with timestamps already converted.
func candidate(raw any) (map[string]any, error) {
	switch t := raw.(type) {
	case nil:
		return nil, StructuralInputError{Kind: "null"}
	case Itinerary:
		return toMap(t)
	case *Itinerary:
		if t == nil {
			return nil, StructuralInputError{Kind: "null"}
		}
		return toMap(t)
	case json.RawMessage:
		return decodeObject(t)
	case []byte:
		return decodeObject(t)
	case string:
		return decodeObject([]byte(t))
	}

	if m, ok := ConvertTimestamps(raw).(map[string]any); ok {
		return m, nil
	}
	if m, ok := stringKeyed(reflect.ValueOf(raw)); ok {
		return ConvertTimestamps(m).(map[string]any), nil
	}
	return nil, StructuralInputError{Kind: kindOf(raw)}
}

func decodeObject(b []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, StructuralInputError{Kind: "unparseable JSON"}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, StructuralInputError{Kind: kindOf(v)}
	}
	return m, nil
}

func kindOf(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%s (%T)", reflect.TypeOf(v).Kind(), v)
}

// auditTime keeps createdAt/updatedAt only when they carry a real time;
// there is no default.
func auditTime(v any) *time.Time {
	if v == nil {
		return nil
	}
	t, ok := parseTime(v)
	if !ok {
		return nil
	}
	return &t
}
