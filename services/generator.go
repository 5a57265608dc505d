package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"
)

// Generator turns a prompt into free text that should contain one JSON
// object. Implementations talk to a hosted model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

var ErrNoJSON = errors.New("no valid JSON found in response")

// first "{" to last "}"; models like to wrap the object in prose or fences
var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

// ExtractJSON pulls the outermost JSON object out of model output.
func ExtractJSON(text string) (map[string]any, error) {
	match := jsonObject.FindString(text)
	if match == "" {
		return nil, ErrNoJSON
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(match), &out); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return out, nil
}

// Draft asks gen for an itinerary and falls back to FallbackItinerary on
// any failure. The second result reports whether the fallback was used.
func Draft(ctx context.Context, gen Generator, req TripRequest) (map[string]any, bool) {
	if gen == nil {
		log.Warn().Msg("⚠️  No AI provider configured — using fallback itinerary")
		return FallbackItinerary(req), true
	}

	text, err := gen.Generate(ctx, BuildPrompt(req))
	if err != nil {
		log.Warn().Err(err).Str("provider", gen.Name()).Msg("⚠️  AI generation failed — using fallback itinerary")
		return FallbackItinerary(req), true
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		log.Warn().Err(err).Str("provider", gen.Name()).Int("response_len", len(text)).
			Msg("⚠️  AI response unusable — using fallback itinerary")
		return FallbackItinerary(req), true
	}
	return raw, false
}

const maxFallbackDays = 30

// FallbackItinerary is a plain day-per-date skeleton built only from the
// request. It is deterministic for a given request.
func FallbackItinerary(req TripRequest) map[string]any {
	start, err := ParseRequestDate(req.StartDate)
	if err != nil {
		return map[string]any{"destination": req.Destination}
	}
	end, err := ParseRequestDate(req.EndDate)
	if err != nil || end.Before(start) {
		end = start
	}

	count := int(end.Sub(start).Hours()/24) + 1
	if count > maxFallbackDays {
		count = maxFallbackDays
	}

	days := make([]any, 0, count)
	for i := 0; i < count; i++ {
		days = append(days, map[string]any{
			"dayNumber": i + 1,
			"title":     fmt.Sprintf("Day %d: Explore %s", i+1, req.Destination),
			"date":      start.AddDate(0, 0, i).Format("2006-01-02"),
			"activities": []any{
				fallbackActivity("Morning", "09:00", "Explore the city centre", req.Destination),
				fallbackActivity("Afternoon", "14:00", "Visit a local landmark", req.Destination),
				fallbackActivity("Evening", "19:00", "Dinner at a local restaurant", req.Destination),
			},
		})
	}

	return map[string]any{
		"destination": req.Destination,
		"description": fmt.Sprintf("A flexible plan for your trip to %s. Adjust each day to suit your interests.", req.Destination),
		"days":        days,
		"tips": []any{
			map[string]any{
				"category": "General",
				"title":    "Plan ahead",
				"content": []any{
					"Check opening hours before visiting attractions.",
					"Keep digital and printed copies of your travel documents.",
				},
			},
		},
	}
}

func fallbackActivity(kind, at, title, destination string) map[string]any {
	return map[string]any{
		"type":        kind,
		"title":       title,
		"time":        at,
		"location":    destination,
		"description": fmt.Sprintf("%s in %s.", title, destination),
	}
}
