package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// ─── Types ────────────────────────────────────────────────────────────────────

type Flight struct {
	Price               float64 `json:"price"`
	Airline             string  `json:"airline"`
	AirlineCode         string  `json:"airline_code,omitempty"`
	FlightNumber        string  `json:"flight_number,omitempty"`
	DepartureTime       string  `json:"departure_time"`
	ArrivalTime         string  `json:"arrival_time"`
	Duration            string  `json:"duration"`
	Stops               int     `json:"stops"`
	ReturnDepartureTime string  `json:"return_departure_time,omitempty"`
	ReturnArrivalTime   string  `json:"return_arrival_time,omitempty"`
	ReturnDuration      string  `json:"return_duration,omitempty"`
	ReturnStops         int     `json:"return_stops,omitempty"`
	Currency            string  `json:"currency,omitempty"`
}

type Hotel struct {
	Name     string  `json:"name"`
	HotelID  string  `json:"hotel_id,omitempty"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating"`
	Location string  `json:"location"`
	Currency string  `json:"currency,omitempty"`
}

// ─── Amadeus Client ───────────────────────────────────────────────────────────

type AmadeusClient struct {
	clientID     string
	clientSecret string
	client       *resty.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// AmadeusBaseURL picks the free test environment unless env is "production".
func AmadeusBaseURL(env string) string {
	if env == "production" {
		return "https://api.amadeus.com"
	}
	return "https://test.api.amadeus.com"
}

func NewAmadeusClient(baseURL, clientID, clientSecret string, timeout time.Duration) *AmadeusClient {
	return &AmadeusClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
	}
}

func (c *AmadeusClient) Configured() bool {
	return c != nil && c.clientID != "" && c.clientSecret != ""
}

// ─── OAuth2 Token ─────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken(ctx context.Context) (string, error) {
	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
		}).
		SetResult(&result).
		Post("/v1/security/oauth2/token")
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("token request failed (%d): %s", resp.StatusCode(), resp.String())
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()
	return result.AccessToken, nil
}

func (c *AmadeusClient) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		return c.refreshToken(ctx)
	}
	return token, nil
}

func (c *AmadeusClient) get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("amadeus error (%d): %s", resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}

// ─── Flight Search ────────────────────────────────────────────────────────────

// SearchFlights searches round trips via the Flight Offers Search API.
func (c *AmadeusClient) SearchFlights(ctx context.Context, origin, destination, departureDate, returnDate string, adults int) ([]Flight, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("amadeus not configured")
	}

	body, err := c.get(ctx, "/v2/shopping/flight-offers", map[string]string{
		"originLocationCode":      origin,
		"destinationLocationCode": destination,
		"departureDate":           departureDate,
		"returnDate":              returnDate,
		"adults":                  fmt.Sprint(adults),
		"max":                     "6",
		"currencyCode":            "USD",
	})
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}
	return parseFlightOffers(body)
}

type amadeusSegment struct {
	Departure struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"departure"`
	Arrival struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
	Number      string `json:"number"`
}

type amadeusJourney struct {
	Duration string           `json:"duration"`
	Segments []amadeusSegment `json:"segments"`
}

type amadeusFlightOffersResponse struct {
	Data []struct {
		Price struct {
			GrandTotal string `json:"grandTotal"`
			Currency   string `json:"currency"`
		} `json:"price"`
		Itineraries            []amadeusJourney `json:"itineraries"`
		ValidatingAirlineCodes []string         `json:"validatingAirlineCodes"`
	} `json:"data"`
}

func parseFlightOffers(data []byte) ([]Flight, error) {
	var resp amadeusFlightOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}

	flights := make([]Flight, 0, len(resp.Data))
	for _, offer := range resp.Data {
		if len(offer.Itineraries) < 1 {
			continue
		}
		price := parsePrice(offer.Price.GrandTotal)
		if price <= 0 {
			continue
		}

		outbound := offer.Itineraries[0]
		airlineCode := ""
		if len(outbound.Segments) > 0 {
			airlineCode = outbound.Segments[0].CarrierCode
		} else if len(offer.ValidatingAirlineCodes) > 0 {
			airlineCode = offer.ValidatingAirlineCodes[0]
		}

		f := Flight{
			Price:       price,
			Airline:     airlineName(airlineCode),
			AirlineCode: airlineCode,
			Currency:    offer.Price.Currency,
			Stops:       max(0, len(outbound.Segments)-1),
			Duration:    parseDuration(outbound.Duration),
		}
		if n := len(outbound.Segments); n > 0 {
			f.DepartureTime = outbound.Segments[0].Departure.At
			f.ArrivalTime = outbound.Segments[n-1].Arrival.At
			f.FlightNumber = airlineCode + outbound.Segments[0].Number
		}

		if len(offer.Itineraries) >= 2 {
			back := offer.Itineraries[1]
			f.ReturnStops = max(0, len(back.Segments)-1)
			f.ReturnDuration = parseDuration(back.Duration)
			if n := len(back.Segments); n > 0 {
				f.ReturnDepartureTime = back.Segments[0].Departure.At
				f.ReturnArrivalTime = back.Segments[n-1].Arrival.At
			}
		}

		flights = append(flights, f)
	}
	return flights, nil
}

// ─── Hotel Search ─────────────────────────────────────────────────────────────

// SearchHotels lists hotels for a city and prices them via Hotel Offers.
func (c *AmadeusClient) SearchHotels(ctx context.Context, cityCode, checkIn, checkOut string, adults int) ([]Hotel, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("amadeus not configured")
	}

	hotelIDs, err := c.hotelIDsByCity(ctx, cityCode)
	if err != nil {
		return nil, fmt.Errorf("hotel list failed: %w", err)
	}
	if len(hotelIDs) == 0 {
		return nil, fmt.Errorf("no hotels found for city %s", cityCode)
	}

	// rate limits
	if len(hotelIDs) > 20 {
		hotelIDs = hotelIDs[:20]
	}
	return c.hotelOffers(ctx, hotelIDs, checkIn, checkOut, adults)
}

type amadeusHotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
	} `json:"data"`
}

func (c *AmadeusClient) hotelIDsByCity(ctx context.Context, cityCode string) ([]string, error) {
	body, err := c.get(ctx, "/v1/reference-data/locations/hotels/by-city", map[string]string{
		"cityCode":    airportToCity(cityCode),
		"radius":      "5",
		"radiusUnit":  "KM",
		"hotelSource": "ALL",
	})
	if err != nil {
		return nil, err
	}

	var resp amadeusHotelListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel list: %w", err)
	}
	ids := make([]string, 0, len(resp.Data))
	for _, h := range resp.Data {
		ids = append(ids, h.HotelID)
	}
	return ids, nil
}

type amadeusHotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID  string `json:"hotelId"`
			Name     string `json:"name"`
			CityCode string `json:"cityCode"`
			Address  struct {
				Lines    []string `json:"lines"`
				CityName string   `json:"cityName"`
			} `json:"address"`
			Rating string `json:"rating"`
		} `json:"hotel"`
		Available bool `json:"available"`
		Offers    []struct {
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

func (c *AmadeusClient) hotelOffers(ctx context.Context, hotelIDs []string, checkIn, checkOut string, adults int) ([]Hotel, error) {
	body, err := c.get(ctx, "/v3/shopping/hotel-offers", map[string]string{
		"hotelIds":     strings.Join(hotelIDs, ","),
		"checkInDate":  checkIn,
		"checkOutDate": checkOut,
		"adults":       fmt.Sprint(adults),
		"roomQuantity": "1",
		"currency":     "USD",
		"bestRateOnly": "true",
	})
	if err != nil {
		return nil, fmt.Errorf("hotel offers failed: %w", err)
	}

	var resp amadeusHotelOffersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel offers: %w", err)
	}

	hotels := make([]Hotel, 0, len(resp.Data))
	for _, item := range resp.Data {
		if !item.Available || len(item.Offers) == 0 {
			continue
		}
		price := parsePrice(item.Offers[0].Price.Total)
		if price <= 0 {
			continue
		}

		location := strings.Join(append(append([]string{}, item.Hotel.Address.Lines...), item.Hotel.Address.CityName), ", ")
		location = strings.Trim(location, ", ")
		if location == "" {
			location = item.Hotel.CityCode
		}

		hotels = append(hotels, Hotel{
			Name:     item.Hotel.Name,
			HotelID:  item.Hotel.HotelID,
			Price:    price,
			Rating:   parseRating(item.Hotel.Rating),
			Location: location,
			Currency: item.Offers[0].Price.Currency,
		})
	}
	return hotels, nil
}

// ─── Itinerary supplement ─────────────────────────────────────────────────────

// Supplement fills travelDetails and accommodations from live Amadeus data
// when the model left them empty and the request carries IATA codes. Any
// failure leaves raw as it was.
func (c *AmadeusClient) Supplement(ctx context.Context, raw map[string]any, req TripRequest) {
	if !c.Configured() || req.DestinationCode == "" {
		return
	}
	start, err1 := ParseRequestDate(req.StartDate)
	end, err2 := ParseRequestDate(req.EndDate)
	if err1 != nil || err2 != nil {
		return
	}
	checkIn, checkOut := start.Format("2006-01-02"), end.Format("2006-01-02")
	adults := max(1, req.TravelersCount)

	if req.OriginCode != "" && !hasLegs(raw["travelDetails"]) {
		flights, err := c.SearchFlights(ctx, req.OriginCode, req.DestinationCode, checkIn, checkOut, adults)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("⚠️  Amadeus flight search failed — keeping AI travel details")
		case len(flights) > 0:
			sort.SliceStable(flights, func(i, j int) bool { return flights[i].Price < flights[j].Price })
			raw["travelDetails"] = TravelDetailsFromFlight(flights[0], req.OriginCode, req.DestinationCode)
		}
	}

	if isEmptyList(raw["accommodations"]) {
		hotels, err := c.SearchHotels(ctx, req.DestinationCode, checkIn, checkOut, adults)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("⚠️  Amadeus hotel search failed — keeping AI accommodations")
		case len(hotels) > 0:
			raw["accommodations"] = AccommodationsFromHotels(hotels, 5)
		}
	}
}

// TravelDetailsFromFlight maps a round-trip offer onto the two legs. Both
// legs use the destination airport: one lands there, the other leaves it.
func TravelDetailsFromFlight(f Flight, originCode, destinationCode string) map[string]any {
	airline := f.Airline
	if f.FlightNumber != "" {
		airline += " " + f.FlightNumber
	}
	currency := f.Currency
	if currency == "" {
		currency = "USD"
	}

	return map[string]any{
		"arrival": map[string]any{
			"mode":          "Flight",
			"airline":       airline,
			"departureTime": f.DepartureTime,
			"arrivalTime":   f.ArrivalTime,
			"price":         fmt.Sprintf("%s %.0f (round-trip)", currency, f.Price),
			"airport":       destinationCode,
			"from":          originCode,
			"to":            destinationCode,
		},
		"departure": map[string]any{
			"mode":          "Flight",
			"airline":       airline,
			"departureTime": f.ReturnDepartureTime,
			"arrivalTime":   f.ReturnArrivalTime,
			"price":         "Included in round-trip fare",
			"airport":       destinationCode,
			"from":          destinationCode,
			"to":            originCode,
		},
	}
}

// AccommodationsFromHotels keeps the cheapest limit hotels.
func AccommodationsFromHotels(hotels []Hotel, limit int) []any {
	sorted := append([]Hotel{}, hotels...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]any, 0, len(sorted))
	for _, h := range sorted {
		currency := h.Currency
		if currency == "" {
			currency = "USD"
		}
		out = append(out, map[string]any{
			"name":       h.Name,
			"type":       fmt.Sprintf("Hotel (%.1f/5)", h.Rating),
			"address":    h.Location,
			"priceRange": fmt.Sprintf("%s %.0f/night", currency, h.Price),
		})
	}
	return out
}

func hasLegs(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, arrival := m["arrival"].(map[string]any)
	_, departure := m["departure"].(map[string]any)
	return arrival || departure
}

func isEmptyList(v any) bool {
	list, ok := v.([]any)
	return !ok || len(list) == 0
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// parseDuration converts ISO 8601 duration (PT5H30M) to human readable (5h 30m)
func parseDuration(iso string) string {
	if iso == "" {
		return ""
	}
	iso = strings.TrimPrefix(iso, "PT")
	result := ""
	hIdx := strings.Index(iso, "H")
	mIdx := strings.Index(iso, "M")
	if hIdx >= 0 {
		result += iso[:hIdx] + "h"
		iso = iso[hIdx+1:]
		mIdx = strings.Index(iso, "M")
	}
	if mIdx >= 0 && mIdx < len(iso) {
		if result != "" {
			result += " "
		}
		result += iso[:mIdx] + "m"
	}
	return result
}

func parsePrice(s string) float64 {
	var price float64
	fmt.Sscanf(s, "%f", &price)
	return price
}

func parseRating(s string) float64 {
	if s == "" {
		return 4.0
	}
	var r float64
	fmt.Sscanf(s, "%f", &r)
	if r <= 0 {
		return 4.0
	}
	if r > 5 {
		r = 5
	}
	return r
}

// airportToCity maps airport IATA codes to the city codes hotel search wants.
func airportToCity(airport string) string {
	mapping := map[string]string{
		"LHR": "LON", "LGW": "LON", "STN": "LON", "LTN": "LON",
		"CDG": "PAR", "ORY": "PAR",
		"JFK": "NYC", "LGA": "NYC", "EWR": "NYC",
		"SXF": "BER",
		"FCO": "ROM", "CIA": "ROM",
		"NRT": "TYO", "HND": "TYO",
		"KIX": "OSA", "ITM": "OSA",
		"MXP": "MIL", "LIN": "MIL",
	}
	if city, ok := mapping[strings.ToUpper(airport)]; ok {
		return city
	}
	return strings.ToUpper(airport)
}

func airlineName(code string) string {
	names := map[string]string{
		"TK": "Turkish Airlines",
		"LH": "Lufthansa",
		"AF": "Air France",
		"BA": "British Airways",
		"EK": "Emirates",
		"QR": "Qatar Airways",
		"PC": "Pegasus Airlines",
		"FR": "Ryanair",
		"U2": "EasyJet",
		"W6": "Wizz Air",
		"FZ": "FlyDubai",
		"HY": "Uzbekistan Airways",
		"UA": "United Airlines",
		"AA": "American Airlines",
		"DL": "Delta Air Lines",
		"KL": "KLM",
		"IB": "Iberia",
		"AZ": "ITA Airways",
		"LX": "Swiss International Air Lines",
		"SQ": "Singapore Airlines",
		"CX": "Cathay Pacific",
		"NH": "ANA",
		"JL": "Japan Airlines",
		"EY": "Etihad Airways",
	}
	if name, ok := names[code]; ok {
		return name
	}
	if code != "" {
		return code + " Airlines"
	}
	return "Unknown Airline"
}
