package travel

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/soyeahso/wayfarer/internal/agent"
	"github.com/soyeahso/wayfarer/internal/amadeus"
	"github.com/soyeahso/wayfarer/internal/geoip"
)

// maxActivities caps the get_tours_and_activities listing.
const maxActivities = 3

type cityArgs struct {
	Keyword     string   `json:"keyword"`
	CountryCode string   `json:"countryCode,omitempty"`
	Max         int      `json:"max"`
	Include     []string `json:"include"`
}

func (a cityArgs) query() amadeus.CityQuery {
	return amadeus.CityQuery{Keyword: a.Keyword, CountryCode: a.CountryCode, Max: a.Max, Include: a.Include}
}

func citySchema() *jsonschema.Schema {
	return object(map[string]*jsonschema.Schema{
		"keyword":     str("Start of the city's name, e.g. PARIS."),
		"countryCode": str("ISO 3166 alpha-2 country code, e.g. FR."),
		"max":         integer("Number of results to return.", 3),
		"include": {
			Type:        "array",
			Items:       str("Related resource, e.g. AIRPORTS."),
			Description: "Related resources to include.",
			Default:     mustJSON([]string{"AIRPORTS"}),
		},
	}, "keyword")
}

// DestinationTools returns the destination specialist's tools. geo may be
// nil, in which case get_user_location is omitted.
func DestinationTools(c *amadeus.Client, geo *geoip.Client) []agent.Tool {
	tools := []agent.Tool{
		newTool("city_search_amadeus",
			"Search for cities by the start of their name and an optional country code.",
			citySchema(),
			func(ctx context.Context, a cityArgs) (string, error) {
				cities, err := c.SearchCities(ctx, a.query())
				if err != nil {
					return "", err
				}
				return toJSON(cities)
			}),

		newTool("get_city_coordinates",
			"Get the latitude and longitude of the best city match for a keyword.",
			citySchema(),
			func(ctx context.Context, a cityArgs) (string, error) {
				cities, err := c.SearchCities(ctx, a.query())
				if err != nil {
					return "", err
				}
				if len(cities) == 0 || cities[0].GeoCode == nil {
					return fmt.Sprintf("No coordinates found for city: %s", a.Keyword), nil
				}
				return toJSON(cities[0].GeoCode)
			}),

		newTool("get_tours_and_activities",
			"List tours and activities around a location. Returns at most 3 as JSON.",
			object(map[string]*jsonschema.Schema{
				"latitude":  number("Latitude in decimal degrees, e.g. 41.397158."),
				"longitude": number("Longitude in decimal degrees, e.g. 2.160873."),
				"radius":    integer("Search radius in km (0-20).", 1),
			}, "latitude", "longitude"),
			func(ctx context.Context, a struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
				Radius    int     `json:"radius"`
			}) (string, error) {
				acts, err := c.Activities(ctx, a.Latitude, a.Longitude, a.Radius)
				if err != nil {
					return "", err
				}
				if len(acts) > maxActivities {
					acts = acts[:maxActivities]
				}
				return toJSON(acts)
			}),
	}

	if geo != nil {
		tools = append(tools, newTool("get_user_location",
			"Get the user's current city and country code from their IP address. Use it when the user gives no location.",
			object(map[string]*jsonschema.Schema{}),
			func(ctx context.Context, _ struct{}) (string, error) {
				loc, err := geo.Locate(ctx)
				if err != nil {
					return "", err
				}
				return toJSON(map[string]string{"city": loc.City, "country": loc.Country})
			}))
	}
	return tools
}
