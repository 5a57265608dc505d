package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLinks struct {
	asked []string
}

func (r *recordingLinks) MapLink(location string) string {
	r.asked = append(r.asked, location)
	return "https://maps.example/?q=" + location
}

func enrichFixture(t *testing.T) *Itinerary {
	t.Helper()
	it, err := Normalize(map[string]any{
		"days": []any{
			map[string]any{
				"activities": []any{
					map[string]any{"location": "Louvre"},
					map[string]any{"title": "Free time"},
					map[string]any{"location": "Orsay", "mapLink": "https://existing.example/orsay"},
				},
				"accommodation": map[string]any{"name": "Hotel Lutetia"},
			},
		},
		"accommodations": []any{
			map[string]any{"name": "Le Meurice", "address": "228 Rue de Rivoli"},
			map[string]any{"name": "Ritz"},
			map[string]any{},
		},
		"travelDetails": map[string]any{
			"arrival": map[string]any{"airport": "CDG"},
		},
	})
	require.NoError(t, err)
	return it
}

func TestEnrich(t *testing.T) {
	it := enrichFixture(t)
	links := &recordingLinks{}
	Enrich(it, links)

	acts := it.Days[0].Activities
	require.NotNil(t, acts[0].MapLink)
	assert.Equal(t, "https://maps.example/?q=Louvre", *acts[0].MapLink)
	assert.Nil(t, acts[1].MapLink, "sentinel location gets no link")
	assert.Equal(t, "https://existing.example/orsay", *acts[2].MapLink)

	lodging := it.Days[0].Accommodation
	require.NotNil(t, lodging)
	require.NotNil(t, lodging.MapLink)
	assert.Equal(t, "https://maps.example/?q=Hotel Lutetia", *lodging.MapLink)

	opts := it.Accommodations
	assert.Equal(t, "https://maps.example/?q=228 Rue de Rivoli", *opts[0].MapLink)
	assert.Equal(t, "https://maps.example/?q=Ritz", *opts[1].MapLink)
	assert.Nil(t, opts[2].MapLink)

	require.NotNil(t, it.TravelDetails.Arrival.MapLink)
	assert.Equal(t, "https://maps.example/?q=CDG", *it.TravelDetails.Arrival.MapLink)
	assert.Nil(t, it.TravelDetails.Departure.MapLink)

	assert.NotContains(t, links.asked, "Orsay")
	assert.NotContains(t, links.asked, DefaultActivityLocation)
	assert.NotContains(t, links.asked, NotSpecified)
}

func TestEnrich_Idempotent(t *testing.T) {
	it := enrichFixture(t)
	Enrich(it, &recordingLinks{})

	again := &recordingLinks{}
	before, err := Normalize(it)
	require.NoError(t, err)
	Enrich(it, again)

	after, err := Normalize(it)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, again.asked)
}

func TestEnrich_EmptyBuilderResult(t *testing.T) {
	it := enrichFixture(t)
	Enrich(it, LinkBuilderFunc(func(string) string { return "" }))

	assert.Nil(t, it.Days[0].Activities[0].MapLink)
	assert.Nil(t, it.Accommodations[1].MapLink)
}

func TestEnrich_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		Enrich(nil, &recordingLinks{})
		Enrich(&Itinerary{}, nil)
	})
}

func TestIsLocation_Sentinels(t *testing.T) {
	for _, s := range []string{
		DefaultActivityLocation,
		DefaultDayLodgingLocation,
		DefaultAccommodationAddress,
		DefaultAccommodationName,
		NotSpecified,
		DefaultDestination,
		DefaultStartingPoint,
		"   ",
	} {
		assert.False(t, isLocation(s), s)
	}
	assert.True(t, isLocation(" Louvre "))
}
