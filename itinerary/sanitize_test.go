package itinerary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSanitizeActivity(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, Activity{
			Type:        DefaultActivityType,
			Title:       DefaultActivityTitle,
			Time:        DefaultActivityTime,
			Location:    DefaultActivityLocation,
			Description: DefaultActivityDescription,
			Image:       PlaceholderActivityImage,
		}, SanitizeActivity(nil))
	})

	t.Run("keeps values and link", func(t *testing.T) {
		a := SanitizeActivity(map[string]any{
			"type":     "Evening",
			"title":    "  Night market ",
			"time":     "19:00",
			"location": "Shilin",
			"mapLink":  "https://maps.example/shilin",
			"rating":   5,
		})
		assert.Equal(t, "Evening", a.Type)
		assert.Equal(t, "Night market", a.Title)
		assert.Equal(t, "19:00", a.Time)
		assert.Equal(t, "Shilin", a.Location)
		assert.Equal(t, DefaultActivityDescription, a.Description)
		require.NotNil(t, a.MapLink)
		assert.Equal(t, "https://maps.example/shilin", *a.MapLink)
	})

	t.Run("blank and wrong types", func(t *testing.T) {
		a := SanitizeActivity(bson.M{"title": "   ", "time": 9, "mapLink": ""})
		assert.Equal(t, DefaultActivityTitle, a.Title)
		assert.Equal(t, DefaultActivityTime, a.Time)
		assert.Nil(t, a.MapLink)
	})
}

func TestSanitizeAccommodation(t *testing.T) {
	assert.Equal(t, Accommodation{
		Name:       DefaultAccommodationName,
		Type:       DefaultAccommodationType,
		Address:    DefaultAccommodationAddress,
		PriceRange: DefaultPriceRange,
	}, SanitizeAccommodation("hotel"))

	a := SanitizeAccommodation(bson.D{{Key: "name", Value: "Ryokan"}, {Key: "type", Value: "Inn"}})
	assert.Equal(t, "Ryokan", a.Name)
	assert.Equal(t, "Inn", a.Type)
	assert.Equal(t, DefaultAccommodationAddress, a.Address)
}

func TestSanitizeDayAccommodation(t *testing.T) {
	assert.Nil(t, SanitizeDayAccommodation(nil))
	assert.Nil(t, SanitizeDayAccommodation("Hilton"))
	assert.Nil(t, SanitizeDayAccommodation([]any{"Hilton"}))
	assert.Nil(t, SanitizeDayAccommodation(time.Now()))

	got := SanitizeDayAccommodation(map[string]any{})
	require.NotNil(t, got)
	assert.Equal(t, DayAccommodation{Name: DefaultAccommodationName, Location: DefaultDayLodgingLocation}, *got)
}

func TestSanitizeTip(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Tip
	}{
		{
			name: "nil",
			raw:  nil,
			want: Tip{Category: DefaultTipCategory, Title: DefaultTipTitle, Content: []string{DefaultTipContent}},
		},
		{
			name: "content filtered",
			raw:  map[string]any{"category": "Food", "content": []any{"Try ramen", 3, " ", nil, "Tip in cash"}},
			want: Tip{Category: "Food", Title: DefaultTipTitle, Content: []string{"Try ramen", "Tip in cash"}},
		},
		{
			name: "empty content array stays empty",
			raw:  map[string]any{"content": []any{}},
			want: Tip{Category: DefaultTipCategory, Title: DefaultTipTitle, Content: []string{}},
		},
		{
			name: "typed string slice",
			raw:  map[string]any{"content": []string{"a", "b"}},
			want: Tip{Category: DefaultTipCategory, Title: DefaultTipTitle, Content: []string{"a", "b"}},
		},
		{
			name: "content as object",
			raw:  map[string]any{"content": map[string]any{"a": "b"}},
			want: Tip{Category: DefaultTipCategory, Title: DefaultTipTitle, Content: []string{DefaultTipContent}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTip(tt.raw))
		})
	}
}

func TestSanitizeTravelLeg(t *testing.T) {
	leg := SanitizeTravelLeg(map[string]any{"mode": "Train", "to": "Kyoto"}, "Tokyo", "Osaka")
	assert.Equal(t, "Train", leg.Mode)
	assert.Equal(t, "Tokyo", leg.From)
	assert.Equal(t, "Kyoto", leg.To)
	assert.Equal(t, NotSpecified, leg.Price)
	assert.Nil(t, leg.MapLink)
}

func TestSanitizeTravelDetails(t *testing.T) {
	td := SanitizeTravelDetails(nil, "Lima", "Cusco")
	assert.Equal(t, "Lima", td.Arrival.From)
	assert.Equal(t, "Cusco", td.Arrival.To)
	assert.Equal(t, "Cusco", td.Departure.From)
	assert.Equal(t, "Lima", td.Departure.To)
}

func TestSanitizeDays(t *testing.T) {
	start := time.Date(2025, 12, 30, 9, 0, 0, 0, time.FixedZone("JST", 9*3600))

	days := SanitizeDays([]any{
		map[string]any{"date": "2026-01-10"},
		map[string]any{"dayNumber": 3},
	}, start)
	require.Len(t, days, 2)

	assert.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), days[0].Date)
	assert.Equal(t, "Day 1", days[0].Title)
	assert.Equal(t, []Activity{}, days[0].Activities)

	assert.Equal(t, 3, days[1].DayNumber)
	assert.Equal(t, "Day 3", days[1].Title)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), days[1].Date)

	assert.Equal(t, []Day{}, SanitizeDays(nil, start))
	assert.Equal(t, []Day{}, SanitizeDays("three days", start))
}

func TestSanitizeCollections(t *testing.T) {
	assert.Equal(t, []Accommodation{}, SanitizeAccommodations(map[string]any{}))
	assert.Len(t, SanitizeAccommodations(bson.A{bson.M{"name": "A"}, nil}), 2)
	assert.Equal(t, []Tip{}, SanitizeTips(nil))

	typed := SanitizeTips([]map[string]any{{"title": "Carry cash"}})
	require.Len(t, typed, 1)
	assert.Equal(t, "Carry cash", typed[0].Title)
}

func TestPositiveInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{in: 3, want: 3, ok: true},
		{in: int64(7), want: 7, ok: true},
		{in: float64(2), want: 2, ok: true},
		{in: " 4 ", want: 4, ok: true},
		{in: 0},
		{in: -2},
		{in: 1.5},
		{in: "two"},
		{in: true},
		{in: nil},
	}

	for _, tt := range tests {
		got, ok := positiveInt(tt.in)
		assert.Equal(t, tt.ok, ok, "%#v", tt.in)
		assert.Equal(t, tt.want, got, "%#v", tt.in)
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []any{
		"2025-03-01",
		"2025-03-01T00:00:00Z",
		"2025-03-01T09:00:00+09:00",
		"2025-03-01 00:00:00",
		"March 1, 2025",
		"Mar 1, 2025",
		want,
	} {
		got, ok := parseTime(in)
		require.True(t, ok, "%v", in)
		assert.True(t, want.Equal(got), "%v", in)
		assert.Equal(t, time.UTC, got.Location())
	}

	for _, in := range []any{
		"soon", 12, nil, map[string]any{},
		time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(-1, 12, 31, 0, 0, 0, 0, time.UTC),
	} {
		_, ok := parseTime(in)
		assert.False(t, ok, "%v", in)
	}
}
