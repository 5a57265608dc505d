package itinerary

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The exported sanitizers are total: they accept anything, including nil,
// and return a fully populated value. They never compute mapLink; a
// supplied link is kept as-is and missing ones are left to Enrich.

func SanitizeActivity(raw any) Activity {
	return (&state{}).activity(raw, "activity")
}

func SanitizeAccommodation(raw any) Accommodation {
	return (&state{}).accommodation(raw, "accommodation")
}

// SanitizeDayAccommodation returns nil when raw is not an object: a night
// without lodging info is valid and has no placeholder.
func SanitizeDayAccommodation(raw any) *DayAccommodation {
	return (&state{}).dayAccommodation(raw, "accommodation")
}

func SanitizeTip(raw any) Tip {
	return (&state{}).tip(raw, "tip")
}

// SanitizeTravelLeg fills from/to with the given fallbacks and every other
// string with NotSpecified.
func SanitizeTravelLeg(raw any, from, to string) TravelLeg {
	return (&state{}).travelLeg(raw, from, to, "leg")
}

func SanitizeTravelDetails(raw any, startingPoint, destination string) TravelDetails {
	return (&state{}).travelDetails(raw, startingPoint, destination, "travelDetails")
}

// SanitizeDays returns an empty slice when raw is not an array. Days
// without a usable dayNumber get their 1-based position; days without a
// date get start shifted by dayNumber-1.
func SanitizeDays(raw any, start time.Time) []Day {
	return (&state{}).days(raw, utc(start), "days")
}

func SanitizeAccommodations(raw any) []Accommodation {
	return (&state{}).accommodations(raw, "accommodations")
}

func SanitizeTips(raw any) []Tip {
	return (&state{}).tips(raw, "tips")
}

// ─── state ───────────────────────────────────────────────────────────────────

type state struct {
	observe func(DefaultingEvent)
}

func (s *state) note(path, reason string) {
	if s.observe != nil {
		s.observe(DefaultingEvent{Path: path, Reason: reason})
	}
}

func field(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

// str returns the trimmed string at key, or def when it is absent, blank or
// not a string.
func (s *state) str(m map[string]any, key, def, path string) string {
	v, ok := m[key]
	if !ok || v == nil {
		s.note(field(path, key), reasonMissing)
		return def
	}
	str, ok := v.(string)
	if !ok {
		s.note(field(path, key), reasonWrongType)
		return def
	}
	if str = strings.TrimSpace(str); str == "" {
		s.note(field(path, key), reasonMissing)
		return def
	}
	return str
}

// optional is str without a default or an event; used for identity fields
// whose absence is meaningful.
func optional(m map[string]any, key string) string {
	if str, ok := m[key].(string); ok {
		return strings.TrimSpace(str)
	}
	return ""
}

func link(m map[string]any, key string) *string {
	str, ok := m[key].(string)
	if !ok {
		return nil
	}
	if str = strings.TrimSpace(str); str == "" {
		return nil
	}
	return &str
}

func (s *state) count(m map[string]any, key string, def int, path string) int {
	v, ok := m[key]
	if !ok || v == nil {
		s.note(field(path, key), reasonMissing)
		return def
	}
	n, ok := positiveInt(v)
	if !ok {
		s.note(field(path, key), reasonInvalid)
		return def
	}
	return n
}

func (s *state) date(m map[string]any, key string, def time.Time, path string) time.Time {
	v, ok := m[key]
	if !ok || v == nil {
		s.note(field(path, key), reasonMissing)
		return def
	}
	t, ok := parseTime(v)
	if !ok {
		s.note(field(path, key), reasonInvalid)
		return def
	}
	return t
}

// ─── entities ────────────────────────────────────────────────────────────────

func (s *state) activity(raw any, path string) Activity {
	m, ok := asMap(raw)
	if !ok {
		s.note(path, reasonWrongType)
	}
	return Activity{
		Type:        s.str(m, "type", DefaultActivityType, path),
		Title:       s.str(m, "title", DefaultActivityTitle, path),
		Time:        s.str(m, "time", DefaultActivityTime, path),
		Location:    s.str(m, "location", DefaultActivityLocation, path),
		Description: s.str(m, "description", DefaultActivityDescription, path),
		Image:       s.str(m, "image", PlaceholderActivityImage, path),
		MapLink:     link(m, "mapLink"),
	}
}

func (s *state) accommodation(raw any, path string) Accommodation {
	m, ok := asMap(raw)
	if !ok {
		s.note(path, reasonWrongType)
	}
	return Accommodation{
		Name:       s.str(m, "name", DefaultAccommodationName, path),
		Type:       s.str(m, "type", DefaultAccommodationType, path),
		Address:    s.str(m, "address", DefaultAccommodationAddress, path),
		PriceRange: s.str(m, "priceRange", DefaultPriceRange, path),
		MapLink:    link(m, "mapLink"),
	}
}

func (s *state) dayAccommodation(raw any, path string) *DayAccommodation {
	m, ok := asMap(raw)
	if !ok {
		return nil
	}
	return &DayAccommodation{
		Name:     s.str(m, "name", DefaultAccommodationName, path),
		Location: s.str(m, "location", DefaultDayLodgingLocation, path),
		MapLink:  link(m, "mapLink"),
	}
}

func (s *state) tip(raw any, path string) Tip {
	m, ok := asMap(raw)
	if !ok {
		s.note(path, reasonWrongType)
	}
	return Tip{
		Category: s.str(m, "category", DefaultTipCategory, path),
		Title:    s.str(m, "title", DefaultTipTitle, path),
		Content:  s.tipContent(m["content"], field(path, "content")),
	}
}

func (s *state) tipContent(raw any, path string) []string {
	var items []any
	switch t := raw.(type) {
	case []any:
		items = t
	case primitive.A:
		items = t
	case []string:
		items = make([]any, len(t))
		for i, v := range t {
			items[i] = v
		}
	default:
		s.note(path, reasonWrongType)
		return []string{DefaultTipContent}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			continue
		}
		if str = strings.TrimSpace(str); str != "" {
			out = append(out, str)
		}
	}
	return out
}

func (s *state) travelLeg(raw any, from, to, path string) TravelLeg {
	m, ok := asMap(raw)
	if !ok {
		s.note(path, reasonMissing)
	}
	return TravelLeg{
		Mode:          s.str(m, "mode", NotSpecified, path),
		Airline:       s.str(m, "airline", NotSpecified, path),
		DepartureTime: s.str(m, "departureTime", NotSpecified, path),
		ArrivalTime:   s.str(m, "arrivalTime", NotSpecified, path),
		Price:         s.str(m, "price", NotSpecified, path),
		Airport:       s.str(m, "airport", NotSpecified, path),
		From:          s.str(m, "from", from, path),
		To:            s.str(m, "to", to, path),
		MapLink:       link(m, "mapLink"),
	}
}

// travelDetails is the one place with cross-field defaults: legs fall back
// to the itinerary's own startingPoint and destination.
func (s *state) travelDetails(raw any, startingPoint, destination, path string) TravelDetails {
	m, _ := asMap(raw)
	return TravelDetails{
		Arrival:   s.travelLeg(m["arrival"], startingPoint, destination, field(path, "arrival")),
		Departure: s.travelLeg(m["departure"], destination, startingPoint, field(path, "departure")),
	}
}

func (s *state) day(raw any, position int, start time.Time, path string) Day {
	m, ok := asMap(raw)
	if !ok {
		s.note(path, reasonWrongType)
	}

	number := s.count(m, "dayNumber", position+1, path)
	date := start.AddDate(0, 0, number-1)
	if !encodable(date) {
		date = start
	}
	return Day{
		DayNumber:     number,
		Title:         s.str(m, "title", fmt.Sprintf(DefaultDayTitleFormat, number), path),
		Date:          s.date(m, "date", date, path),
		Activities:    s.activities(m["activities"], field(path, "activities")),
		Accommodation: s.dayAccommodation(m["accommodation"], field(path, "accommodation")),
	}
}

// ─── collections ─────────────────────────────────────────────────────────────

func (s *state) days(raw any, start time.Time, path string) []Day {
	items, ok := asSlice(raw)
	if !ok {
		s.note(path, reasonWrongType)
		return []Day{}
	}
	out := make([]Day, len(items))
	for i, item := range items {
		out[i] = s.day(item, i, start, index(path, i))
	}
	return out
}

func (s *state) activities(raw any, path string) []Activity {
	items, ok := asSlice(raw)
	if !ok {
		s.note(path, reasonWrongType)
		return []Activity{}
	}
	out := make([]Activity, len(items))
	for i, item := range items {
		out[i] = s.activity(item, index(path, i))
	}
	return out
}

func (s *state) accommodations(raw any, path string) []Accommodation {
	items, ok := asSlice(raw)
	if !ok {
		s.note(path, reasonWrongType)
		return []Accommodation{}
	}
	out := make([]Accommodation, len(items))
	for i, item := range items {
		out[i] = s.accommodation(item, index(path, i))
	}
	return out
}

func (s *state) tips(raw any, path string) []Tip {
	items, ok := asSlice(raw)
	if !ok {
		s.note(path, reasonWrongType)
		return []Tip{}
	}
	out := make([]Tip, len(items))
	for i, item := range items {
		out[i] = s.tip(item, index(path, i))
	}
	return out
}

// ─── coercion helpers ────────────────────────────────────────────────────────

// asMap accepts plain and BSON maps, and this package's own structs so that
// already-normalized values can be sanitized again.
func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case nil, time.Time, *time.Time:
		return nil, false
	case map[string]any:
		return t, true
	case primitive.M:
		return t, true
	case primitive.D:
		return t.Map(), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		m, err := toMap(v)
		return m, err == nil
	case reflect.Map:
		return stringKeyed(rv)
	}
	return nil, false
}

// stringKeyed copies any map with string keys, e.g. map[string]string.
func stringKeyed(rv reflect.Value) (map[string]any, bool) {
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case primitive.A:
		return t, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func positiveInt(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case float32:
		f = float64(t)
	case float64:
		f = t
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		f = float64(n)
	default:
		return 0, false
	}
	if f < 1 || f > math.MaxInt32 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

func parseTime(v any) (time.Time, bool) {
	switch t := ConvertTimestamps(v).(type) {
	case time.Time:
		return t, encodable(t)
	case string:
		str := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, str); err == nil {
				parsed = utc(parsed)
				return parsed, encodable(parsed)
			}
		}
	}
	return time.Time{}, false
}

// encodable reports whether t fits the four-digit years JSON and RFC 3339
// can represent.
func encodable(t time.Time) bool {
	return t.Year() >= 0 && t.Year() <= 9999
}
