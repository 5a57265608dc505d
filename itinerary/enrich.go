package itinerary

import "strings"

// LinkBuilder turns a location string into a map URL. An empty result means
// no link could be built.
type LinkBuilder interface {
	MapLink(location string) string
}

// LinkBuilderFunc adapts a plain function to LinkBuilder.
type LinkBuilderFunc func(location string) string

func (f LinkBuilderFunc) MapLink(location string) string {
	return f(location)
}

// Enrich derives mapLink for every activity, accommodation option, nightly
// accommodation and travel leg that has a usable location and no link yet.
// Existing links are never replaced, so running it twice changes nothing.
func Enrich(it *Itinerary, links LinkBuilder) {
	if it == nil || links == nil {
		return
	}

	for i := range it.Days {
		day := &it.Days[i]
		for j := range day.Activities {
			a := &day.Activities[j]
			a.MapLink = derive(a.MapLink, links, a.Location)
		}
		if acc := day.Accommodation; acc != nil {
			acc.MapLink = derive(acc.MapLink, links, acc.Location, acc.Name)
		}
	}

	for i := range it.Accommodations {
		a := &it.Accommodations[i]
		a.MapLink = derive(a.MapLink, links, a.Address, a.Name)
	}

	arrival := &it.TravelDetails.Arrival
	arrival.MapLink = derive(arrival.MapLink, links, arrival.Airport)
	departure := &it.TravelDetails.Departure
	departure.MapLink = derive(departure.MapLink, links, departure.Airport)
}

// derive asks links about the first usable candidate only.
func derive(existing *string, links LinkBuilder, candidates ...string) *string {
	if existing != nil && *existing != "" {
		return existing
	}
	for _, c := range candidates {
		if !isLocation(c) {
			continue
		}
		if url := links.MapLink(c); url != "" {
			return &url
		}
		break
	}
	return existing
}

func isLocation(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, sentinel := locationSentinels[s]
	return !sentinel
}
