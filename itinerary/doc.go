// Package itinerary normalizes loosely shaped itinerary candidates into a
// fixed record that display, PDF and dashboard code can use without nil or
// type checks.
//
// Candidates come from two places: JSON extracted from a generative model's
// reply, and documents read back from the store. Either may miss any field,
// carry wrong types or extra keys, and hold store-native timestamps at any
// depth. The package guarantees:
//   - days, accommodations and tips are always non-nil slices
//   - every day has a positive dayNumber; unnumbered days are numbered by position
//   - every string leaf holds either input text or a named default from defaults.go
//   - travelDetails always has both legs; missing from/to come from startingPoint and destination
//   - Normalize(Normalize(x)) equals Normalize(x)
//
// The only error is StructuralInputError, for a candidate that is not an
// object at all. Map links are derived separately by Enrich.
package itinerary
