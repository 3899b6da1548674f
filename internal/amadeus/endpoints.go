package amadeus

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// SearchFlightOffers queries v2/shopping/flight-offers.
func (c *Client) SearchFlightOffers(ctx context.Context, q FlightSearch) ([]FlightOffer, error) {
	adults := q.Adults
	if adults <= 0 {
		adults = 1
	}
	p := url.Values{}
	p.Set("originLocationCode", q.Origin)
	p.Set("destinationLocationCode", q.Destination)
	p.Set("departureDate", q.DepartureDate)
	p.Set("adults", strconv.Itoa(adults))
	if q.ReturnDate != "" {
		p.Set("returnDate", q.ReturnDate)
	}
	if q.TravelClass != "" {
		p.Set("travelClass", strings.ToUpper(q.TravelClass))
	}
	return get[[]FlightOffer](ctx, c, "/v2/shopping/flight-offers", p)
}

// NearbyAirports lists airports within radius km of a point.
func (c *Client) NearbyAirports(ctx context.Context, lat, lon float64, radius int) ([]Location, error) {
	if radius <= 0 {
		radius = 100
	}
	p := url.Values{}
	p.Set("latitude", ftoa(lat))
	p.Set("longitude", ftoa(lon))
	p.Set("radius", strconv.Itoa(radius))
	return get[[]Location](ctx, c, "/v1/reference-data/locations/airports", p)
}

// AirportByIATA looks up airports matching an IATA code.
func (c *Client) AirportByIATA(ctx context.Context, code string) ([]Location, error) {
	p := url.Values{}
	p.Set("keyword", strings.ToUpper(code))
	p.Set("subType", "AIRPORT")
	return get[[]Location](ctx, c, "/v1/reference-data/locations", p)
}

// FlightStatus returns the schedule of a dated flight.
func (c *Client) FlightStatus(ctx context.Context, carrierCode, flightNumber, date string) ([]DatedFlight, error) {
	p := url.Values{}
	p.Set("carrierCode", carrierCode)
	p.Set("flightNumber", flightNumber)
	p.Set("scheduledDepartureDate", date)
	return get[[]DatedFlight](ctx, c, "/v2/schedule/flights", p)
}

// CheckinLinks returns an airline's online check-in URLs.
func (c *Client) CheckinLinks(ctx context.Context, airlineCode, language string) ([]CheckinLink, error) {
	if language == "" {
		language = "en-GB"
	}
	p := url.Values{}
	p.Set("airlineCode", strings.ToUpper(airlineCode))
	p.Set("language", language)
	return get[[]CheckinLink](ctx, c, "/v2/reference-data/urls/checkin-links", p)
}

// HotelsByCity lists hotels in a city within radius (kilometres).
func (c *Client) HotelsByCity(ctx context.Context, cityCode, radius string) ([]Hotel, error) {
	if radius == "" {
		radius = "5"
	}
	p := url.Values{}
	p.Set("cityCode", strings.ToUpper(cityCode))
	p.Set("radius", radius)
	return get[[]Hotel](ctx, c, "/v1/reference-data/locations/hotels/by-city", p)
}

// HotelOffers fetches room offers for one or more hotel ids.
func (c *Client) HotelOffers(ctx context.Context, q HotelOfferQuery) ([]HotelOffers, error) {
	p := url.Values{}
	p.Set("hotelIds", q.HotelIDs)
	p.Set("adults", strconv.Itoa(max(q.Adults, 1)))
	p.Set("checkInDate", q.CheckInDate)
	p.Set("checkOutDate", q.CheckOutDate)
	p.Set("roomQuantity", strconv.Itoa(max(q.RoomQuantity, 1)))
	if q.PriceRange != "" {
		p.Set("priceRange", q.PriceRange)
	}
	if q.Currency != "" {
		p.Set("currency", q.Currency)
	}
	if q.CountryOfResidence != "" {
		p.Set("countryOfResidence", q.CountryOfResidence)
	}
	return get[[]HotelOffers](ctx, c, "/v3/shopping/hotel-offers", p)
}

// SearchCities finds cities whose name starts with the keyword.
func (c *Client) SearchCities(ctx context.Context, q CityQuery) ([]City, error) {
	p := url.Values{}
	p.Set("keyword", q.Keyword)
	p.Set("max", strconv.Itoa(max(q.Max, 1)))
	if q.CountryCode != "" {
		p.Set("countryCode", q.CountryCode)
	}
	if len(q.Include) > 0 {
		p.Set("include", strings.Join(q.Include, ","))
	}
	return get[[]City](ctx, c, "/v1/reference-data/locations/cities", p)
}

// Activities lists tours and activities within radius km of a point.
func (c *Client) Activities(ctx context.Context, lat, lon float64, radius int) ([]Activity, error) {
	if radius <= 0 {
		radius = 1
	}
	p := url.Values{}
	p.Set("latitude", ftoa(lat))
	p.Set("longitude", ftoa(lon))
	p.Set("radius", strconv.Itoa(radius))
	return get[[]Activity](ctx, c, "/v1/shopping/activities", p)
}
