package amadeus

// GeoCode is a latitude/longitude pair.
type GeoCode struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance from a search point.
type Distance struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Address of a location.
type Address struct {
	CityName    string `json:"cityName,omitempty"`
	CityCode    string `json:"cityCode,omitempty"`
	CountryName string `json:"countryName,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	StateCode   string `json:"stateCode,omitempty"`
}

// Location is an airport or city from the reference-data endpoints.
type Location struct {
	Type     string    `json:"type,omitempty"`
	SubType  string    `json:"subType,omitempty"`
	Name     string    `json:"name,omitempty"`
	IATACode string    `json:"iataCode,omitempty"`
	Address  Address   `json:"address"`
	GeoCode  *GeoCode  `json:"geoCode,omitempty"`
	Distance *Distance `json:"distance,omitempty"`
}

// FlightEndpoint is one end of a flight segment.
type FlightEndpoint struct {
	IATACode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

// Segment is a single flight leg.
type Segment struct {
	Departure   FlightEndpoint `json:"departure"`
	Arrival     FlightEndpoint `json:"arrival"`
	CarrierCode string         `json:"carrierCode"`
	Number      string         `json:"number"`
	Duration    string         `json:"duration,omitempty"`
}

// Itinerary is an ordered list of segments.
type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

// Price of an offer.
type Price struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
}

// FlightOffer is one priced flight option.
type FlightOffer struct {
	ID          string      `json:"id"`
	Itineraries []Itinerary `json:"itineraries"`
	Price       Price       `json:"price"`
}

// FlightSearch are the flight-offers query parameters.
type FlightSearch struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
	TravelClass   string
}

// Timing is a qualified timestamp on a flight point.
type Timing struct {
	Qualifier string `json:"qualifier"`
	Value     string `json:"value"`
}

// PointTimings groups the timings of a departure or arrival.
type PointTimings struct {
	Timings []Timing `json:"timings"`
}

// FlightPoint is a scheduled stop of a dated flight.
type FlightPoint struct {
	IATACode  string        `json:"iataCode"`
	Departure *PointTimings `json:"departure,omitempty"`
	Arrival   *PointTimings `json:"arrival,omitempty"`
}

// DatedFlight is a schedule entry returned by the flight-status endpoint.
type DatedFlight struct {
	ScheduledDepartureDate string        `json:"scheduledDepartureDate"`
	FlightPoints           []FlightPoint `json:"flightPoints"`
}

// CheckinLink is an airline's online check-in URL for one channel.
type CheckinLink struct {
	ID      string `json:"id,omitempty"`
	Href    string `json:"href"`
	Channel string `json:"channel"`
}

// Hotel is a property from the hotel-list endpoint.
type Hotel struct {
	ChainCode string         `json:"chainCode,omitempty"`
	IATACode  string         `json:"iataCode,omitempty"`
	Name      string         `json:"name"`
	HotelID   string         `json:"hotelId"`
	GeoCode   *GeoCode       `json:"geoCode,omitempty"`
	Address   map[string]any `json:"address,omitempty"`
	Distance  *Distance      `json:"distance,omitempty"`
}

// HotelOfferQuery are the hotel-offers query parameters.
type HotelOfferQuery struct {
	HotelIDs           string
	Adults             int
	CheckInDate        string
	CheckOutDate       string
	CountryOfResidence string
	RoomQuantity       int
	PriceRange         string
	Currency           string
}

// Text is a localized text block.
type Text struct {
	Text string `json:"text"`
}

// RoomEstimate is the inferred room category.
type RoomEstimate struct {
	Category string `json:"category,omitempty"`
	Beds     int    `json:"beds,omitempty"`
	BedType  string `json:"bedType,omitempty"`
}

// Room of an offer.
type Room struct {
	Type          string        `json:"type,omitempty"`
	TypeEstimated *RoomEstimate `json:"typeEstimated,omitempty"`
	Description   *Text         `json:"description,omitempty"`
}

// Cancellation policy entry.
type Cancellation struct {
	Deadline    string `json:"deadline,omitempty"`
	Description *Text  `json:"description,omitempty"`
}

// Policies attached to an offer. Older payloads carry a single
// cancellation, newer ones a list.
type Policies struct {
	Cancellation  *Cancellation  `json:"cancellation,omitempty"`
	Cancellations []Cancellation `json:"cancellations,omitempty"`
}

// CancellationText returns the first cancellation description, if any.
func (p Policies) CancellationText() string {
	if p.Cancellation != nil && p.Cancellation.Description != nil {
		return p.Cancellation.Description.Text
	}
	for _, c := range p.Cancellations {
		if c.Description != nil && c.Description.Text != "" {
			return c.Description.Text
		}
	}
	return ""
}

// Offer is one bookable room rate.
type Offer struct {
	ID           string   `json:"id"`
	CheckInDate  string   `json:"checkInDate"`
	CheckOutDate string   `json:"checkOutDate"`
	Room         Room     `json:"room"`
	Price        Price    `json:"price"`
	Policies     Policies `json:"policies"`
	Self         string   `json:"self,omitempty"`
}

// OfferHotel is the hotel block of a hotel-offers entry.
type OfferHotel struct {
	HotelID   string  `json:"hotelId"`
	Name      string  `json:"name"`
	CityCode  string  `json:"cityCode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HotelOffers groups the offers of one hotel.
type HotelOffers struct {
	Available bool       `json:"available"`
	Hotel     OfferHotel `json:"hotel"`
	Offers    []Offer    `json:"offers"`
}

// CityQuery are the city-search query parameters.
type CityQuery struct {
	Keyword     string
	CountryCode string
	Max         int
	Include     []string
}

// City is a city-search result.
type City struct {
	Type          string         `json:"type,omitempty"`
	SubType       string         `json:"subType,omitempty"`
	Name          string         `json:"name"`
	IATACode      string         `json:"iataCode,omitempty"`
	Address       Address        `json:"address"`
	GeoCode       *GeoCode       `json:"geoCode,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

// Relationship links a city to an included resource such as an airport.
type Relationship struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Href string `json:"href,omitempty"`
}

// ActivityPrice is the price of an activity.
type ActivityPrice struct {
	Amount       string `json:"amount,omitempty"`
	CurrencyCode string `json:"currencyCode,omitempty"`
}

// Activity is a tour or activity near a point.
type Activity struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	ShortDescription string         `json:"shortDescription,omitempty"`
	GeoCode          *GeoCode       `json:"geoCode,omitempty"`
	Price            *ActivityPrice `json:"price,omitempty"`
	Pictures         []string       `json:"pictures,omitempty"`
	BookingLink      string         `json:"bookingLink,omitempty"`
	MinimumDuration  string         `json:"minimumDuration,omitempty"`
}
