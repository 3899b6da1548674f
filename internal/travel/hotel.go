package travel

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/soyeahso/wayfarer/internal/agent"
	"github.com/soyeahso/wayfarer/internal/amadeus"
)

// maxHotels caps the search_hotels listing.
const maxHotels = 10

// hotelSummary is one search_hotels entry.
type hotelSummary struct {
	Name     string         `json:"name"`
	GeoCode  any            `json:"geo_code"`
	HotelID  string         `json:"hotelId"`
	Address  map[string]any `json:"address"`
	Distance string         `json:"distance"`
}

// hotelOffer is one flattened get_hotel_offers entry.
type hotelOffer struct {
	HotelName          string  `json:"hotel_name"`
	HotelID            string  `json:"hotel_id"`
	CityCode           string  `json:"city_code"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	RoomType           string  `json:"room_type,omitempty"`
	BedType            string  `json:"bed_type,omitempty"`
	Description        string  `json:"description,omitempty"`
	PriceTotal         string  `json:"price_total"`
	Currency           string  `json:"currency"`
	CancellationPolicy string  `json:"cancellation_policy,omitempty"`
	CheckIn            string  `json:"check_in"`
	CheckOut           string  `json:"check_out"`
	BookingLink        string  `json:"booking_link,omitempty"`
}

type hotelOfferArgs struct {
	HotelIDs           string `json:"hotelids"`
	Adults             int    `json:"adults"`
	CheckInDate        string `json:"checkInDate"`
	CheckOutDate       string `json:"checkOutDate"`
	CountryOfResidence string `json:"countryOfResidence,omitempty"`
	RoomQuantity       int    `json:"roomQuantity"`
	PriceRange         string `json:"priceRange"`
	Currency           string `json:"currency"`
}

// HotelTools returns the hotel specialist's Amadeus tools.
func HotelTools(c *amadeus.Client) []agent.Tool {
	radius := &jsonschema.Schema{
		Types:       []string{"string", "integer"},
		Description: "Maximum distance from the city centre, in kilometres.",
		Default:     mustJSON("5"),
	}

	return []agent.Tool{
		newTool("search_hotels",
			"Search for hotels in a city by its IATA city code. Returns at most 10 hotels as JSON.",
			object(map[string]*jsonschema.Schema{
				"city_code": str("City IATA code, e.g. PAR for Paris."),
				"radius":    radius,
			}, "city_code"),
			func(ctx context.Context, a struct {
				CityCode string          `json:"city_code"`
				Radius   json.RawMessage `json:"radius"`
			}) (string, error) {
				hotels, err := c.HotelsByCity(ctx, a.CityCode, looseString(a.Radius))
				if err != nil {
					return "", err
				}
				return toJSON(summarizeHotels(hotels))
			}),

		newTool("get_hotel_offers",
			"Fetch room offers for one or more hotel ids between two dates. Returns flattened offers as JSON.",
			object(map[string]*jsonschema.Schema{
				"hotelids":           str("Comma-separated 8-character Amadeus hotel ids."),
				"adults":             integer("Adult guests per room (1-9).", 2),
				"checkInDate":        str("Check-in date, YYYY-MM-DD. Must not be in the past."),
				"checkOutDate":       str("Check-out date, YYYY-MM-DD. Must be after checkInDate."),
				"countryOfResidence": str("ISO 3166-1 code of the traveller's country of residence."),
				"roomQuantity":       integer("Number of rooms (1-9).", 1),
				"priceRange":         strDefault("Price per night interval, e.g. 200-300, -300 or 100.", "200-300"),
				"currency":           strDefault("ISO 4217 currency code.", "USD"),
			}, "hotelids", "checkInDate", "checkOutDate"),
			func(ctx context.Context, a hotelOfferArgs) (string, error) {
				res, err := c.HotelOffers(ctx, amadeus.HotelOfferQuery{
					HotelIDs:           a.HotelIDs,
					Adults:             a.Adults,
					CheckInDate:        a.CheckInDate,
					CheckOutDate:       a.CheckOutDate,
					CountryOfResidence: a.CountryOfResidence,
					RoomQuantity:       a.RoomQuantity,
					PriceRange:         a.PriceRange,
					Currency:           a.Currency,
				})
				if err != nil {
					return "", err
				}
				return toJSON(flattenOffers(res))
			}),
	}
}

func summarizeHotels(hotels []amadeus.Hotel) []hotelSummary {
	if len(hotels) > maxHotels {
		hotels = hotels[:maxHotels]
	}
	out := make([]hotelSummary, 0, len(hotels))
	for _, h := range hotels {
		s := hotelSummary{
			Name:     orDefault(h.Name, "without name"),
			GeoCode:  "no geocode",
			HotelID:  orDefault(h.HotelID, "no id"),
			Address:  h.Address,
			Distance: "unknown",
		}
		if h.GeoCode != nil {
			s.GeoCode = h.GeoCode
		}
		if h.Distance != nil {
			s.Distance = ftoa(h.Distance.Value) + " " + h.Distance.Unit
		}
		out = append(out, s)
	}
	return out
}

func flattenOffers(res []amadeus.HotelOffers) []hotelOffer {
	out := []hotelOffer{}
	for _, ho := range res {
		for _, o := range ho.Offers {
			f := hotelOffer{
				HotelName:          ho.Hotel.Name,
				HotelID:            ho.Hotel.HotelID,
				CityCode:           ho.Hotel.CityCode,
				Latitude:           ho.Hotel.Latitude,
				Longitude:          ho.Hotel.Longitude,
				PriceTotal:         o.Price.Total,
				Currency:           o.Price.Currency,
				CancellationPolicy: o.Policies.CancellationText(),
				CheckIn:            o.CheckInDate,
				CheckOut:           o.CheckOutDate,
				BookingLink:        o.Self,
			}
			if est := o.Room.TypeEstimated; est != nil {
				f.RoomType = est.Category
				f.BedType = est.BedType
			}
			if o.Room.Description != nil {
				f.Description = o.Room.Description.Text
			}
			out = append(out, f)
		}
	}
	return out
}
