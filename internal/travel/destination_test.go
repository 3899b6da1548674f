package travel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/wayfarer/internal/domain"
)

const (
	citiesPath     = "/v1/reference-data/locations/cities"
	activitiesPath = "/v1/shopping/activities"
)

func TestCitySearch(t *testing.T) {
	f := newFixture(t)
	f.amadeus.Data(citiesPath, []any{map[string]any{
		"type": "location", "subType": "city", "name": "Paris", "iataCode": "PAR",
		"address": map[string]any{"countryCode": "FR"},
		"geoCode": map[string]any{"latitude": 48.85341, "longitude": 2.3488},
	}})

	out, err := f.call(t, domain.LabelDestination, "city_search_amadeus", `{"keyword":"PARIS"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"Paris"`)
	assert.Contains(t, out, `"iataCode":"PAR"`)

	q := f.amadeus.Calls(citiesPath)[0]
	assert.Equal(t, "PARIS", q.Get("keyword"))
	assert.Equal(t, "3", q.Get("max"))
	assert.Equal(t, "AIRPORTS", q.Get("include"))
	assert.False(t, q.Has("countryCode"))
}

func TestCityCoordinates(t *testing.T) {
	f := newFixture(t)
	f.amadeus.Data(citiesPath, []any{
		map[string]any{"name": "Barcelona", "geoCode": map[string]any{"latitude": 41.38879, "longitude": 2.15899}},
		map[string]any{"name": "Barcelona (VE)", "geoCode": map[string]any{"latitude": 10.13, "longitude": -64.7}},
	})

	out, err := f.call(t, domain.LabelDestination, "get_city_coordinates", `{"keyword":"BARCELONA","countryCode":"ES","max":1}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"latitude":41.38879,"longitude":2.15899}`, out)

	q := f.amadeus.Calls(citiesPath)[0]
	assert.Equal(t, "ES", q.Get("countryCode"))
	assert.Equal(t, "1", q.Get("max"))
}

func TestCityCoordinatesNoMatch(t *testing.T) {
	f := newFixture(t)
	f.amadeus.Data(citiesPath, []any{})

	out, err := f.call(t, domain.LabelDestination, "get_city_coordinates", `{"keyword":"ATLANTIS"}`)
	require.NoError(t, err)
	assert.Equal(t, "No coordinates found for city: ATLANTIS", out)
}

func TestToursAndActivities(t *testing.T) {
	f := newFixture(t)
	var acts []any
	for _, name := range []string{"Sagrada Familia tour", "Tapas walk", "Park Guell", "Montjuic cable car"} {
		acts = append(acts, map[string]any{"id": name, "name": name, "price": map[string]any{"amount": "25.00", "currencyCode": "EUR"}})
	}
	f.amadeus.Data(activitiesPath, acts)

	out, err := f.call(t, domain.LabelDestination, "get_tours_and_activities", `{"latitude":41.397158,"longitude":2.160873}`)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "Sagrada Familia tour", got[0]["name"])

	q := f.amadeus.Calls(activitiesPath)[0]
	assert.Equal(t, "1", q.Get("radius"))
	assert.Equal(t, "41.397158", q.Get("latitude"))
}

func TestToursRequireCoordinates(t *testing.T) {
	f := newFixture(t)

	_, err := f.call(t, domain.LabelDestination, "get_tours_and_activities", `{"latitude":"north"}`)
	require.Error(t, err)
	assert.Empty(t, f.amadeus.Calls(activitiesPath))
}

func TestUserLocation(t *testing.T) {
	f := newFixture(t)

	out, err := f.call(t, domain.LabelDestination, "get_user_location", `{}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"city":"MONTREAL","country":"CA"}`, out)
}
