package travel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/wayfarer/internal/amadeus"
	"github.com/soyeahso/wayfarer/internal/domain"
)

const (
	offersPath   = "/v2/shopping/flight-offers"
	airportsPath = "/v1/reference-data/locations/airports"
	locsPath     = "/v1/reference-data/locations"
	statusPath   = "/v2/schedule/flights"
	checkinPath  = "/v2/reference-data/urls/checkin-links"
)

func segment(carrier, number, from, dep, to, arr string) map[string]any {
	return map[string]any{
		"carrierCode": carrier,
		"number":      number,
		"departure":   map[string]any{"iataCode": from, "at": dep},
		"arrival":     map[string]any{"iataCode": to, "at": arr},
	}
}

func flightOffer(total string, duration string, segs ...map[string]any) map[string]any {
	return map[string]any{
		"id":          total,
		"itineraries": []any{map[string]any{"duration": duration, "segments": segs}},
		"price":       map[string]any{"currency": "EUR", "total": total},
	}
}

func TestSearchFlight(t *testing.T) {
	f := newFixture(t)
	f.amadeus.Data(offersPath, []any{
		flightOffer("210.50", "PT5H10M",
			segment("TK", "652", "ALG", "2026-11-02T08:00:00", "IST", "2026-11-02T13:10:00")),
		flightOffer("180.00", "PT9H",
			segment("AH", "3010", "ALG", "2026-11-02T06:00:00", "CDG", "2026-11-02T08:30:00"),
			segment("AF", "1390", "CDG", "2026-11-02T11:00:00", "IST", "2026-11-02T15:00:00")),
		flightOffer("300.00", "PT4H", segment("PC", "1", "ALG", "x", "SAW", "y")),
		flightOffer("999.00", "PT4H", segment("XX", "9", "ALG", "x", "IST", "y")),
	})

	out, err := f.call(t, domain.LabelFlight, "search_flight",
		`{"originLocationCode":"alg","destinationLocationCode":"IST","departureDate":"2026-11-02"}`)
	require.NoError(t, err)

	assert.Contains(t, out, "Flight 1:\n"+
		"• Flight Number(s): TK652\n"+
		"• From ALG at 2026-11-02T08:00:00\n"+
		"• To IST at 2026-11-02T13:10:00\n"+
		"• Airline: TK\n"+
		"• Duration: PT5H10M\n"+
		"• Stops: 0\n"+
		"• Price: 210.50 EUR\n")
	assert.Contains(t, out, "• Flight Number(s): AH3010, AF1390\n")
	assert.Contains(t, out, "• Stops: 1\n")
	assert.Contains(t, out, "Flight 3:")
	assert.NotContains(t, out, "Flight 4:")
	assert.NotContains(t, out, "999.00")

	calls := f.amadeus.Calls(offersPath)
	require.Len(t, calls, 1)
	assert.Equal(t, "ALG", calls[0].Get("originLocationCode"))
	assert.Equal(t, "1", calls[0].Get("adults"))
	assert.Empty(t, calls[0].Get("returnDate"))
}

func TestSearchFlightNoResults(t *testing.T) {
	f := newFixture(t)
	f.amadeus.Data(offersPath, []any{})

	out, err := f.call(t, domain.LabelFlight, "search_flight",
		`{"originLocationCode":"ALG","destinationLocationCode":"IST","departureDate":"2026-11-02","travelClass":"BUSINESS","adults":2}`)
	require.NoError(t, err)
	assert.Equal(t, "No flights found for the given criteria.", out)

	q := f.amadeus.Calls(offersPath)[0]
	assert.Equal(t, "BUSINESS", q.Get("travelClass"))
	assert.Equal(t, "2", q.Get("adults"))
}

func TestSearchFlightRejectsUnknownClass(t *testing.T) {
	f := newFixture(t)

	_, err := f.call(t, domain.LabelFlight, "search_flight",
		`{"originLocationCode":"ALG","destinationLocationCode":"IST","departureDate":"2026-11-02","travelClass":"LUXURY"}`)
	require.Error(t, err)
	assert.Empty(t, f.amadeus.Calls(offersPath))
}

func TestNearbyAirports(t *testing.T) {
	f := newFixture(t)
	f.amadeus.Data(airportsPath, []any{
		map[string]any{"iataCode": "BCN", "name": "EL PRAT", "distance": map[string]any{"value": 12, "unit": "KM"}},
		map[string]any{"name": "GIRONA"},
	})

	out, err := f.call(t, domain.LabelFlight, "get_nearby_airports", `{"latitude":41.39,"longitude":2.16}`)
	require.NoError(t, err)
	assert.Equal(t, "• BCN - EL PRAT (12 KM)\n• N/A - GIRONA (N/A KM)", out)
	assert.Equal(t, "100", f.amadeus.Calls(airportsPath)[0].Get("radius"))
}

func TestNearbyAirportsEmpty(t *testing.T) {
	f := newFixture(t)
	f.amadeus.Data(airportsPath, []any{})

	out, err := f.call(t, domain.LabelFlight, "get_nearby_airports", `{"latitude":0,"longitude":0,"radius":5}`)
	require.NoError(t, err)
	assert.Equal(t, "No airports found near the provided coordinates.", out)
	assert.Equal(t, "5", f.amadeus.Calls(airportsPath)[0].Get("radius"))
}

func TestAirportNameIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.amadeus.Data(locsPath, []any{map[string]any{
		"name":    "CHARLES DE GAULLE",
		"address": map[string]any{"cityName": "PARIS", "countryName": "FRANCE"},
	}})

	first, err := f.call(t, domain.LabelFlight, "get_airport_name_from_iata", `{"iata_code":"cdg"}`)
	require.NoError(t, err)
	second, err := f.call(t, domain.LabelFlight, "get_airport_name_from_iata", `{"iata_code":"cdg"}`)
	require.NoError(t, err)

	assert.Equal(t, "CDG - CHARLES DE GAULLE, PARIS, FRANCE", first)
	assert.Equal(t, first, second)
	assert.Equal(t, "AIRPORT", f.amadeus.Calls(locsPath)[0].Get("subType"))
}

func TestAirportNameUnknown(t *testing.T) {
	f := newFixture(t)
	f.amadeus.Data(locsPath, []any{})

	out, err := f.call(t, domain.LabelFlight, "get_airport_name_from_iata", `{"iata_code":"ZZZ"}`)
	require.NoError(t, err)
	assert.Equal(t, "No information found for IATA code: ZZZ", out)
}

func TestCheckFlightStatus(t *testing.T) {
	f := newFixture(t)
	f.amadeus.Data(statusPath, []any{map[string]any{
		"scheduledDepartureDate": "2026-11-02",
		"flightPoints": []any{
			map[string]any{"iataCode": "IST", "departure": map[string]any{"timings": []any{map[string]any{"qualifier": "STD", "value": "2026-11-02T08:00+03:00"}}}},
			map[string]any{"iataCode": "ALG", "arrival": map[string]any{"timings": []any{map[string]any{"qualifier": "STA", "value": "2026-11-02T10:10+01:00"}}}},
		},
	}})

	out, err := f.call(t, domain.LabelFlight, "check_flight_status", `{"flight_number":"TK652","scheduled_date":"2026-11-02"}`)
	require.NoError(t, err)
	assert.Equal(t, "Flight TK652 on 2026-11-02:\n"+
		"• Departure: IST at 2026-11-02T08:00+03:00\n"+
		"• Arrival: ALG at 2026-11-02T10:10+01:00", out)

	q := f.amadeus.Calls(statusPath)[0]
	assert.Equal(t, "TK", q.Get("carrierCode"))
	assert.Equal(t, "652", q.Get("flightNumber"))
}

func TestFormatFlightStatus(t *testing.T) {
	assert.Equal(t, "No status found for flight TK1 on 2026-01-01.", formatFlightStatus("TK1", "2026-01-01", nil))

	partial := []amadeus.DatedFlight{{FlightPoints: []amadeus.FlightPoint{{IATACode: "IST"}}}}
	assert.Equal(t, "Incomplete data for TK1.", formatFlightStatus("TK1", "2026-01-01", partial))

	noTimings := []amadeus.DatedFlight{{FlightPoints: []amadeus.FlightPoint{{IATACode: "IST"}, {}}}}
	assert.Equal(t, "Flight TK1 on 2026-01-01:\n• Departure: IST at Unknown\n• Arrival: Unknown at Unknown",
		formatFlightStatus("TK1", "2026-01-01", noTimings))
}

func TestCheckFlightStatusBadNumber(t *testing.T) {
	f := newFixture(t)

	_, err := f.call(t, domain.LabelFlight, "check_flight_status", `{"flight_number":"T","scheduled_date":"2026-11-02"}`)
	require.Error(t, err)
	assert.Empty(t, f.amadeus.Calls(statusPath))
}

func TestCheckinLinks(t *testing.T) {
	f := newFixture(t)
	f.amadeus.Data(checkinPath, []any{
		map[string]any{"channel": "Website", "href": "https://ba.example/checkin"},
		map[string]any{"channel": "Mobile", "href": "https://m.ba.example/checkin"},
	})

	out, err := f.call(t, domain.LabelFlight, "get_checkin_links", `{"airlineCode":"ba"}`)
	require.NoError(t, err)
	assert.Equal(t, "✈️ Online Check-in Links for BA:\n"+
		"• Website Check-in: https://ba.example/checkin\n"+
		"• Mobile Check-in: https://m.ba.example/checkin", out)
	assert.Equal(t, "en-GB", f.amadeus.Calls(checkinPath)[0].Get("language"))
}

func TestCheckinLinksEmpty(t *testing.T) {
	f := newFixture(t)
	f.amadeus.Data(checkinPath, []any{})

	out, err := f.call(t, domain.LabelFlight, "get_checkin_links", `{"airlineCode":"zz","language":"FR"}`)
	require.NoError(t, err)
	assert.Equal(t, "No check-in links found for airline: ZZ", out)
	assert.Equal(t, "FR", f.amadeus.Calls(checkinPath)[0].Get("language"))
}

func TestBookFlightManually(t *testing.T) {
	f := newFixture(t)
	f.amadeus.Data(offersPath, []any{
		flightOffer("180.00", "PT9H",
			segment("AH", "3010", "ALG", "06:00", "CDG", "08:30"),
			segment("AF", "1390", "CDG", "11:00", "IST", "15:00")),
	})

	out, err := f.call(t, domain.LabelFlight, "book_flight_manually",
		`{"originLocationCode":"ALG","destinationLocationCode":"IST","departureDate":"2026-11-02"}`)
	require.NoError(t, err)
	assert.Equal(t, "⚠️ This tool does not support live booking.\n"+
		"Here is the flight info for manual booking:\n\n"+
		"• From: ALG at 06:00\n"+
		"• To: IST at 15:00\n"+
		"• Airline: AH\n"+
		"• Flight Number: AH3010\n"+
		"• Duration: PT9H\n"+
		"• Stops: 1\n"+
		"• Price: 180.00 EUR", out)
}

func TestFlightToolSurfacesAPIError(t *testing.T) {
	f := newFixture(t)
	f.amadeus.JSON(offersPath, 400, `{"errors":[{"status":400,"code":477,"title":"INVALID FORMAT","detail":"departureDate"}]}`)

	_, err := f.call(t, domain.LabelFlight, "search_flight",
		`{"originLocationCode":"ALG","destinationLocationCode":"IST","departureDate":"tomorrow"}`)
	var apiErr *amadeus.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "INVALID FORMAT", apiErr.Title)
}
