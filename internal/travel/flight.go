package travel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/soyeahso/wayfarer/internal/agent"
	"github.com/soyeahso/wayfarer/internal/amadeus"
)

const noFlights = "No flights found for the given criteria."

type flightSearchArgs struct {
	Origin        string `json:"originLocationCode"`
	Destination   string `json:"destinationLocationCode"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate,omitempty"`
	Adults        int    `json:"adults,omitempty"`
	TravelClass   string `json:"travelClass,omitempty"`
}

func (a flightSearchArgs) query() amadeus.FlightSearch {
	return amadeus.FlightSearch{
		Origin:        strings.ToUpper(a.Origin),
		Destination:   strings.ToUpper(a.Destination),
		DepartureDate: a.DepartureDate,
		ReturnDate:    a.ReturnDate,
		Adults:        a.Adults,
		TravelClass:   a.TravelClass,
	}
}

func flightSearchSchema() *jsonschema.Schema {
	return object(map[string]*jsonschema.Schema{
		"originLocationCode":      str("IATA code of the departure airport or city, e.g. ALG."),
		"destinationLocationCode": str("IATA code of the arrival airport or city, e.g. IST."),
		"departureDate":           str("Departure date, YYYY-MM-DD."),
		"returnDate":              str("Return date for a round trip, YYYY-MM-DD."),
		"adults":                  integer("Number of adult passengers.", 1),
		"travelClass":             enum("Cabin class.", "ECONOMY", "PREMIUM_ECONOMY", "BUSINESS", "FIRST"),
	}, "originLocationCode", "destinationLocationCode", "departureDate")
}

// FlightTools returns the flight specialist's Amadeus tools.
func FlightTools(c *amadeus.Client) []agent.Tool {
	return []agent.Tool{
		newTool("search_flight",
			"Search for available flights between two airports. Returns the top 3 offers with price, times, stops and airline.",
			flightSearchSchema(),
			func(ctx context.Context, a flightSearchArgs) (string, error) {
				offers, err := c.SearchFlightOffers(ctx, a.query())
				if err != nil {
					return "", err
				}
				return formatOffers(offers), nil
			}),

		newTool("get_nearby_airports",
			"Find airports near a latitude/longitude. Returns IATA codes, names and distances.",
			object(map[string]*jsonschema.Schema{
				"latitude":  number("Latitude in decimal degrees."),
				"longitude": number("Longitude in decimal degrees."),
				"radius":    integer("Search radius in kilometres.", 100),
			}, "latitude", "longitude"),
			func(ctx context.Context, a struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
				Radius    int     `json:"radius"`
			}) (string, error) {
				locs, err := c.NearbyAirports(ctx, a.Latitude, a.Longitude, a.Radius)
				if err != nil {
					return "", err
				}
				return formatAirports(locs), nil
			}),

		newTool("get_airport_name_from_iata",
			"Look up an airport's name, city and country from its 3-letter IATA code.",
			object(map[string]*jsonschema.Schema{
				"iata_code": str("3-letter IATA airport code, e.g. CDG."),
			}, "iata_code"),
			func(ctx context.Context, a struct {
				Code string `json:"iata_code"`
			}) (string, error) {
				locs, err := c.AirportByIATA(ctx, a.Code)
				if err != nil {
					return "", err
				}
				return formatAirportName(a.Code, locs), nil
			}),

		newTool("check_flight_status",
			"Check the scheduled departure and arrival of a flight on a given date.",
			object(map[string]*jsonschema.Schema{
				"flight_number":  str("Airline code plus flight number, e.g. TK652."),
				"scheduled_date": str("Scheduled departure date, YYYY-MM-DD."),
			}, "flight_number", "scheduled_date"),
			func(ctx context.Context, a struct {
				FlightNumber string `json:"flight_number"`
				Date         string `json:"scheduled_date"`
			}) (string, error) {
				carrier, number, err := splitFlightNumber(a.FlightNumber)
				if err != nil {
					return "", err
				}
				flights, err := c.FlightStatus(ctx, carrier, number, a.Date)
				if err != nil {
					return "", err
				}
				return formatFlightStatus(a.FlightNumber, a.Date, flights), nil
			}),

		newTool("get_checkin_links",
			"Get the online check-in links (web and mobile) for an airline.",
			object(map[string]*jsonschema.Schema{
				"airlineCode": str("2- or 3-letter airline code, e.g. BA."),
				"language":    strDefault("Language of the check-in page, e.g. en-GB.", "en-GB"),
			}, "airlineCode"),
			func(ctx context.Context, a struct {
				Airline  string `json:"airlineCode"`
				Language string `json:"language"`
			}) (string, error) {
				links, err := c.CheckinLinks(ctx, a.Airline, a.Language)
				if err != nil {
					return "", err
				}
				return formatCheckinLinks(a.Airline, links), nil
			}),

		newTool("book_flight_manually",
			"Give the details of the best flight offer for manual booking. Live booking is not supported.",
			flightSearchSchema(),
			func(ctx context.Context, a flightSearchArgs) (string, error) {
				offers, err := c.SearchFlightOffers(ctx, a.query())
				if err != nil {
					return "", err
				}
				return formatManualBooking(offers), nil
			}),
	}
}

func splitFlightNumber(fn string) (carrier, number string, err error) {
	fn = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(fn), " ", ""))
	if len(fn) < 3 {
		return "", "", errors.New("flight_number must be an airline code followed by a number, e.g. TK652")
	}
	return fn[:2], fn[2:], nil
}

func formatOffers(offers []amadeus.FlightOffer) string {
	var out []string
	for _, o := range offers {
		if len(out) == 3 {
			break
		}
		if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
			continue
		}
		it := o.Itineraries[0]
		segs := it.Segments
		dep, arr := segs[0].Departure, segs[len(segs)-1].Arrival

		numbers := make([]string, len(segs))
		for i, s := range segs {
			numbers[i] = s.CarrierCode + s.Number
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Flight %d:\n", len(out)+1)
		fmt.Fprintf(&b, "• Flight Number(s): %s\n", strings.Join(numbers, ", "))
		fmt.Fprintf(&b, "• From %s at %s\n", dep.IATACode, dep.At)
		fmt.Fprintf(&b, "• To %s at %s\n", arr.IATACode, arr.At)
		fmt.Fprintf(&b, "• Airline: %s\n", segs[0].CarrierCode)
		fmt.Fprintf(&b, "• Duration: %s\n", it.Duration)
		fmt.Fprintf(&b, "• Stops: %d\n", len(segs)-1)
		fmt.Fprintf(&b, "• Price: %s %s\n", o.Price.Total, o.Price.Currency)
		out = append(out, b.String())
	}
	if len(out) == 0 {
		return noFlights
	}
	return strings.Join(out, "\n")
}

func formatManualBooking(offers []amadeus.FlightOffer) string {
	if len(offers) == 0 || len(offers[0].Itineraries) == 0 || len(offers[0].Itineraries[0].Segments) == 0 {
		return noFlights
	}
	o := offers[0]
	it := o.Itineraries[0]
	segs := it.Segments
	first := segs[0]
	dep, arr := first.Departure, segs[len(segs)-1].Arrival

	var b strings.Builder
	b.WriteString("⚠️ This tool does not support live booking.\n")
	b.WriteString("Here is the flight info for manual booking:\n\n")
	fmt.Fprintf(&b, "• From: %s at %s\n", dep.IATACode, dep.At)
	fmt.Fprintf(&b, "• To: %s at %s\n", arr.IATACode, arr.At)
	fmt.Fprintf(&b, "• Airline: %s\n", first.CarrierCode)
	fmt.Fprintf(&b, "• Flight Number: %s%s\n", first.CarrierCode, first.Number)
	fmt.Fprintf(&b, "• Duration: %s\n", it.Duration)
	fmt.Fprintf(&b, "• Stops: %d\n", len(segs)-1)
	fmt.Fprintf(&b, "• Price: %s %s", o.Price.Total, o.Price.Currency)
	return b.String()
}

func formatAirports(locs []amadeus.Location) string {
	if len(locs) == 0 {
		return "No airports found near the provided coordinates."
	}
	lines := make([]string, len(locs))
	for i, l := range locs {
		dist, unit := "N/A", "KM"
		if l.Distance != nil {
			dist = ftoa(l.Distance.Value)
			unit = orDefault(l.Distance.Unit, unit)
		}
		lines[i] = fmt.Sprintf("• %s - %s (%s %s)", orDefault(l.IATACode, "N/A"), orDefault(l.Name, "Unknown"), dist, unit)
	}
	return strings.Join(lines, "\n")
}

func formatAirportName(code string, locs []amadeus.Location) string {
	if len(locs) == 0 {
		return "No information found for IATA code: " + code
	}
	l := locs[0]
	return fmt.Sprintf("%s - %s, %s, %s",
		strings.ToUpper(code),
		orDefault(l.Name, "Unknown"),
		orDefault(l.Address.CityName, "Unknown"),
		orDefault(l.Address.CountryName, "Unknown"))
}

func formatFlightStatus(flight, date string, flights []amadeus.DatedFlight) string {
	if len(flights) == 0 {
		return fmt.Sprintf("No status found for flight %s on %s.", flight, date)
	}
	points := flights[0].FlightPoints
	if len(points) < 2 {
		return fmt.Sprintf("Incomplete data for %s.", flight)
	}
	dep, arr := points[0], points[1]
	return fmt.Sprintf("Flight %s on %s:\n• Departure: %s at %s\n• Arrival: %s at %s",
		flight, date,
		orDefault(dep.IATACode, "Unknown"), firstTiming(dep.Departure),
		orDefault(arr.IATACode, "Unknown"), firstTiming(arr.Arrival))
}

func firstTiming(pt *amadeus.PointTimings) string {
	if pt == nil || len(pt.Timings) == 0 {
		return "Unknown"
	}
	return orDefault(pt.Timings[0].Value, "Unknown")
}

func formatCheckinLinks(airline string, links []amadeus.CheckinLink) string {
	code := strings.ToUpper(airline)
	if len(links) == 0 {
		return "No check-in links found for airline: " + code
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✈️ Online Check-in Links for %s:", code)
	for _, l := range links {
		fmt.Fprintf(&b, "\n• %s Check-in: %s", orDefault(l.Channel, "Unknown"), orDefault(l.Href, "No URL"))
	}
	return b.String()
}
