package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"itinera/itinerary"
)

// Planner produces a normalized, link-enriched itinerary for a trip request.
// Every collaborator is optional; a zero Planner returns the fallback plan.
type Planner struct {
	Generator  Generator
	Amadeus    *AmadeusClient
	Images     *ImageService
	Links      *MapLinks
	Normalizer itinerary.Normalizer
}

// Plan reports fallback=true when the model could not be used.
func (p *Planner) Plan(ctx context.Context, req TripRequest) (it *itinerary.Itinerary, fallback bool, err error) {
	if err := req.CheckDates(); err != nil {
		return nil, false, err
	}

	raw, fallback := Draft(ctx, p.Generator, req)
	raw = ApplyRequest(raw, req)
	p.Amadeus.Supplement(ctx, raw, req)

	if img, _ := raw["image"].(string); strings.TrimSpace(img) == "" {
		raw["image"] = p.Images.DestinationImage(ctx, req.Destination)
	}

	it, err = p.Normalizer.Normalize(raw)
	if err != nil {
		return nil, fallback, err
	}
	if p.Links != nil {
		itinerary.Enrich(it, p.Links.ForContext(ctx))
	}

	log.Info().
		Str("destination", it.Destination).
		Int("days", len(it.Days)).
		Bool("fallback", fallback).
		Msg("✅ Itinerary planned")
	return it, fallback, nil
}
