package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	CurrentWeatherName  = "get_current_weather"
	WeatherForecastName = "get_weather_forecast"

	DefaultWeatherBaseURL = "https://api.weatherapi.com/v1"

	defaultForecastDays = 3
	maxForecastDays     = 10
)

type CurrentWeatherInput struct {
	Location string `json:"location" jsonschema_description:"The city and state (e.g., San Francisco, CA) or country (e.g., France)"`
}

type WeatherForecastInput struct {
	Location string `json:"location" jsonschema_description:"The city and state (e.g., San Francisco, CA) or country (e.g., France)"`
	Days     int    `json:"days" jsonschema:"minimum=1,maximum=10" jsonschema_description:"The number of days to forecast (1-10)"`
}

var (
	CurrentWeatherInputSchema  = GenerateSchema[CurrentWeatherInput]()
	WeatherForecastInputSchema = GenerateSchema[WeatherForecastInput]()
)

// WeatherClient talks to the weatherapi.com JSON API.
type WeatherClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewWeatherClient(baseURL, apiKey string) *WeatherClient {
	if baseURL == "" {
		baseURL = DefaultWeatherBaseURL
	}
	return &WeatherClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (w *WeatherClient) CurrentDefinition() ToolDefinition {
	return ToolDefinition{
		Name:        CurrentWeatherName,
		Description: "Get the current weather in a given location",
		InputSchema: CurrentWeatherInputSchema,
		Function:    w.Current,
	}
}

func (w *WeatherClient) ForecastDefinition() ToolDefinition {
	return ToolDefinition{
		Name:        WeatherForecastName,
		Description: "Get the weather forecast for a location for a specific number of days",
		InputSchema: WeatherForecastInputSchema,
		Function:    w.Forecast,
	}
}

// Current returns the current conditions for a location as JSON text.
func (w *WeatherClient) Current(ctx context.Context, args map[string]any) string {
	var in CurrentWeatherInput
	if err := decodeArgs(args, &in); err != nil {
		return errorResult("invalid arguments: %v", err)
	}
	if strings.TrimSpace(in.Location) == "" {
		return errorResult("location is required")
	}

	data, err := w.get(ctx, "current.json", url.Values{"q": {in.Location}, "aqi": {"no"}})
	if err != nil {
		return errorResult("%v", err)
	}
	if msg := data.Get("error.message"); msg.Exists() {
		return errorResult("%s", msg.String())
	}

	out := "{}"
	out, _ = sjson.Set(out, "location", data.Get("location.name").String())
	out, _ = sjson.Set(out, "temperature_c", data.Get("current.temp_c").Float())
	out, _ = sjson.Set(out, "temperature_f", data.Get("current.temp_f").Float())
	out, _ = sjson.Set(out, "condition", data.Get("current.condition.text").String())
	out, _ = sjson.Set(out, "humidity", data.Get("current.humidity").Int())
	out, _ = sjson.Set(out, "wind_kph", data.Get("current.wind_kph").Float())
	return out
}

// Forecast returns a day-by-day forecast for a location as JSON text.
func (w *WeatherClient) Forecast(ctx context.Context, args map[string]any) string {
	var in WeatherForecastInput
	if err := decodeArgs(args, &in); err != nil {
		return errorResult("invalid arguments: %v", err)
	}
	if strings.TrimSpace(in.Location) == "" {
		return errorResult("location is required")
	}
	days := in.Days
	if days <= 0 {
		days = defaultForecastDays
	}
	if days > maxForecastDays {
		days = maxForecastDays
	}

	data, err := w.get(ctx, "forecast.json", url.Values{
		"q":    {in.Location},
		"days": {strconv.Itoa(days)},
		"aqi":  {"no"},
	})
	if err != nil {
		return errorResult("%v", err)
	}
	if msg := data.Get("error.message"); msg.Exists() {
		return errorResult("%s", msg.String())
	}

	out := "{}"
	out, _ = sjson.Set(out, "location", data.Get("location.name").String())
	out, _ = sjson.SetRaw(out, "forecast", "[]")
	data.Get("forecast.forecastday").ForEach(func(_, day gjson.Result) bool {
		d := "{}"
		d, _ = sjson.Set(d, "date", day.Get("date").String())
		d, _ = sjson.Set(d, "max_temp_c", day.Get("day.maxtemp_c").Float())
		d, _ = sjson.Set(d, "min_temp_c", day.Get("day.mintemp_c").Float())
		d, _ = sjson.Set(d, "condition", day.Get("day.condition.text").String())
		d, _ = sjson.Set(d, "chance_of_rain", day.Get("day.daily_chance_of_rain").Int())
		out, _ = sjson.SetRaw(out, "forecast.-1", d)
		return true
	})
	return out
}

// get fetches one endpoint. The body is returned whatever the status code,
// since the API reports lookup failures as a JSON error object.
func (w *WeatherClient) get(ctx context.Context, endpoint string, q url.Values) (gjson.Result, error) {
	q.Set("key", w.APIKey)
	u := w.BaseURL + "/" + endpoint + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	client := w.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		// url.Error carries the full URL, API key included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return gjson.Result{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read weather response: %w", err)
	}
	if !gjson.ValidBytes(b) {
		return gjson.Result{}, fmt.Errorf("unexpected weather response (status %d)", resp.StatusCode)
	}
	return gjson.ParseBytes(b), nil
}
