package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternlabs/tern/internal/tool"
)

type weatherArgs struct {
	City string `json:"city" jsonschema:"description=City to look up"`
}

var weatherDescriptor = tool.Descriptor{
	Name:        "get_weather",
	Description: "Get the current weather for a city",
	Parameters:  tool.ParametersFor(&weatherArgs{}),
}

type weatherReading struct {
	Temperature float64
	Conditions  string
}

// Canned data. Readings are deterministic so that tests and demos are
// reproducible; unknown cities get a synthesized reading instead of an error.
var weatherTable = map[string]weatherReading{
	"paris":     {Temperature: 20, Conditions: "Partly cloudy"},
	"london":    {Temperature: 14, Conditions: "Light rain"},
	"tokyo":     {Temperature: 24, Conditions: "Clear"},
	"new york":  {Temperature: 18, Conditions: "Overcast"},
	"sydney":    {Temperature: 22, Conditions: "Sunny"},
	"reykjavik": {Temperature: 4, Conditions: "Snow showers"},
}

func getWeather(ctx context.Context, args map[string]any) (any, error) {
	city, ok := args["city"].(string)
	if !ok || strings.TrimSpace(city) == "" {
		return nil, fmt.Errorf("parameter city must be a non-empty string")
	}

	reading, found := weatherTable[strings.ToLower(strings.TrimSpace(city))]
	if !found {
		reading = synthesizeReading(city)
	}
	return map[string]any{
		"city":        city,
		"temperature": reading.Temperature,
		"conditions":  reading.Conditions,
	}, nil
}

func synthesizeReading(city string) weatherReading {
	var sum int
	for _, r := range strings.ToLower(city) {
		sum += int(r)
	}
	return weatherReading{
		Temperature: float64(sum%30) + 1,
		Conditions:  "Clear",
	}
}
