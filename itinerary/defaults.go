package itinerary

// Every sentinel the normalizer substitutes lives here. Presentation code
// must not carry its own fallbacks.
const (
	DefaultDestination     = "Unknown Destination"
	DefaultStartingPoint   = "Unknown Starting Point"
	DefaultDescription     = "Your personalized travel itinerary"
	DefaultTravelGroupType = "Solo Traveler"
	DefaultTravelersCount  = 1

	PlaceholderImage         = "/placeholder.svg?height=400&width=800"
	PlaceholderActivityImage = "/placeholder.svg?height=200&width=300"

	DefaultDayTitleFormat = "Day %d"

	DefaultActivityType        = "Activity"
	DefaultActivityTitle       = "Activity details"
	DefaultActivityTime        = "Time not specified"
	DefaultActivityLocation    = "Location not specified"
	DefaultActivityDescription = "No description available"

	DefaultAccommodationName    = "Accommodation"
	DefaultAccommodationType    = "Hotel"
	DefaultAccommodationAddress = "Address not available"
	DefaultPriceRange           = "Price not available"
	DefaultDayLodgingLocation   = "Location not specified"

	DefaultTipCategory = "General"
	DefaultTipTitle    = "Travel Tip"
	DefaultTipContent  = "No details available"

	NotSpecified = "Not specified"
)

// sentinels that stand for "no location"; enrichment never links them.
// Several defaults share a value, so the set is built from a list.
var locationSentinels = func() map[string]struct{} {
	set := map[string]struct{}{}
	for _, s := range []string{
		DefaultActivityLocation,
		DefaultAccommodationAddress,
		DefaultAccommodationName,
		DefaultDayLodgingLocation,
		NotSpecified,
		DefaultDestination,
		DefaultStartingPoint,
	} {
		set[s] = struct{}{}
	}
	return set
}()
