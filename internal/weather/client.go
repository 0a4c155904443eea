package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"

	defaultTimeout = 10 * time.Second

	currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,surface_pressure,wind_speed_10m"
	dailyFields   = "weather_code,temperature_2m_max,temperature_2m_min,relative_humidity_2m_mean,wind_speed_10m_max"

	// The API is asked for a week; today is skipped and the next five days kept.
	forecastDays  = 7
	forecastFirst = 1
	ForecastLen   = 5

	currentTimeLayout = "2006-01-02T15:04"
	dailyDateLayout   = "2006-01-02"
)

var (
	// ErrNotFound is returned when geocoding yields no match.
	ErrNotFound = errors.New("city not found")
	// ErrNetwork covers transport failures and non-2xx responses.
	ErrNetwork = errors.New("weather service request failed")
	// ErrDataIntegrity is returned for undecodable or short responses.
	ErrDataIntegrity = errors.New("malformed weather service response")
)

// Options configures a Client. Zero values fall back to the public
// Open-Meteo endpoints, a 10-second timeout and no outbound throttling.
type Options struct {
	GeocodingURL      string
	ForecastURL       string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client talks to the Open-Meteo geocoding and forecast APIs.
type Client struct {
	geocodingURL string
	forecastURL  string
	client       *http.Client
	limiter      *rate.Limiter
	log          *zap.Logger
}

// NewClient constructs a Client from opts.
func NewClient(opts Options, log *zap.Logger) *Client {
	if opts.GeocodingURL == "" {
		opts.GeocodingURL = DefaultGeocodingURL
	}
	if opts.ForecastURL == "" {
		opts.ForecastURL = DefaultForecastURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		geocodingURL: opts.GeocodingURL,
		forecastURL:  opts.ForecastURL,
		client:       &http.Client{Timeout: opts.Timeout},
		limiter:      limiter,
		log:          log,
	}
}

// NewClientWithURLs constructs an unthrottled Client pointing at custom URLs (for tests).
func NewClientWithURLs(geocodingURL, forecastURL string) *Client {
	return NewClient(Options{GeocodingURL: geocodingURL, ForecastURL: forecastURL}, nil)
}

// doGet performs a throttled GET and decodes the JSON response into dst.
func (c *Client) doGet(ctx context.Context, rawURL string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for request slot: %w: %w", ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w: %w", rawURL, ErrNetwork, err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w: %w", rawURL, ErrNetwork, err)
	}
	defer resp.Body.Close()

	c.log.Debug("upstream request",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GET %s returned status %d: %w", rawURL, resp.StatusCode, ErrNetwork)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w: %w", rawURL, ErrDataIntegrity, err)
	}

	return nil
}

// ---- Geocoding ----

type geocodingResponse struct {
	Results []struct {
		Name        string  `json:"name"`
		CountryCode string  `json:"country_code"`
		Country     string  `json:"country"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
	} `json:"results"`
}

// ResolveCity geocodes a free-text query and returns the best match.
func (c *Client) ResolveCity(ctx context.Context, query string) (Location, error) {
	params := url.Values{}
	params.Set("name", query)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	var raw geocodingResponse
	if err := c.doGet(ctx, c.geocodingURL+"?"+params.Encode(), &raw); err != nil {
		return Location{}, fmt.Errorf("geocoding %q: %w", query, err)
	}

	if len(raw.Results) == 0 {
		return Location{}, fmt.Errorf("geocoding %q: %w", query, ErrNotFound)
	}

	best := raw.Results[0]
	country := best.CountryCode
	if country == "" {
		country = best.Country
	}

	return Location{
		Name:        best.Name,
		CountryCode: country,
		Latitude:    best.Latitude,
		Longitude:   best.Longitude,
	}, nil
}

// ---- Forecast API ----

func (c *Client) forecastQuery(loc Location, units Units) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	params.Set("temperature_unit", units.TemperatureUnit())
	params.Set("wind_speed_unit", units.WindSpeedUnit())
	params.Set("timezone", "auto")
	return params
}

type currentResponse struct {
	UTCOffsetSeconds int64 `json:"utc_offset_seconds"`
	Current          *struct {
		Time                string   `json:"time"`
		Temperature         *float64 `json:"temperature_2m"`
		Humidity            *float64 `json:"relative_humidity_2m"`
		ApparentTemperature *float64 `json:"apparent_temperature"`
		WeatherCode         *int     `json:"weather_code"`
		SurfacePressure     *float64 `json:"surface_pressure"`
		WindSpeed           *float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

// FetchCurrent retrieves current conditions at loc in the given units.
func (c *Client) FetchCurrent(ctx context.Context, loc Location, units Units) (CurrentWeather, error) {
	params := c.forecastQuery(loc, units)
	params.Set("current", currentFields)

	var raw currentResponse
	if err := c.doGet(ctx, c.forecastURL+"?"+params.Encode(), &raw); err != nil {
		return CurrentWeather{}, fmt.Errorf("current weather for %s: %w", loc.Name, err)
	}

	if raw.Current == nil {
		return CurrentWeather{}, fmt.Errorf("current weather for %s: missing current block: %w", loc.Name, ErrDataIntegrity)
	}
	cur := raw.Current
	if cur.Temperature == nil || cur.Humidity == nil || cur.ApparentTemperature == nil ||
		cur.WeatherCode == nil || cur.SurfacePressure == nil || cur.WindSpeed == nil {
		return CurrentWeather{}, fmt.Errorf("current weather for %s: null field in current block: %w", loc.Name, ErrDataIntegrity)
	}

	// The API reports local wall-clock time when timezone=auto.
	local, err := time.Parse(currentTimeLayout, cur.Time)
	if err != nil {
		return CurrentWeather{}, fmt.Errorf("current weather for %s: parsing time %q: %w", loc.Name, cur.Time, ErrDataIntegrity)
	}

	cond := DescribeCode(*cur.WeatherCode)

	return CurrentWeather{
		City:        loc.Name,
		Country:     loc.CountryCode,
		Temperature: roundHalfUp(*cur.Temperature),
		FeelsLike:   roundHalfUp(*cur.ApparentTemperature),
		Description: cond.Description,
		Icon:        cond.Icon,
		Humidity:    roundHalfUp(*cur.Humidity),
		WindSpeed:   roundTenth(*cur.WindSpeed),
		Pressure:    roundHalfUp(*cur.SurfacePressure),
		Timestamp:   local.Unix() - raw.UTCOffsetSeconds,
	}, nil
}

type dailyResponse struct {
	Daily *struct {
		Time        []string   `json:"time"`
		WeatherCode []*int     `json:"weather_code"`
		TempMax     []*float64 `json:"temperature_2m_max"`
		TempMin     []*float64 `json:"temperature_2m_min"`
		Humidity    []*float64 `json:"relative_humidity_2m_mean"`
		WindMax     []*float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

// FetchForecast retrieves the next five days (tomorrow onwards) at loc.
func (c *Client) FetchForecast(ctx context.Context, loc Location, units Units) ([]ForecastDay, error) {
	params := c.forecastQuery(loc, units)
	params.Set("daily", dailyFields)
	params.Set("forecast_days", strconv.Itoa(forecastDays))

	var raw dailyResponse
	if err := c.doGet(ctx, c.forecastURL+"?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("forecast for %s: %w", loc.Name, err)
	}

	if raw.Daily == nil {
		return nil, fmt.Errorf("forecast for %s: missing daily block: %w", loc.Name, ErrDataIntegrity)
	}
	d := raw.Daily

	need := forecastFirst + ForecastLen
	for name, n := range map[string]int{
		"time":                      len(d.Time),
		"weather_code":              len(d.WeatherCode),
		"temperature_2m_max":        len(d.TempMax),
		"temperature_2m_min":        len(d.TempMin),
		"relative_humidity_2m_mean": len(d.Humidity),
		"wind_speed_10m_max":        len(d.WindMax),
	} {
		if n < need {
			return nil, fmt.Errorf("forecast for %s: %s has %d entries, want %d: %w", loc.Name, name, n, need, ErrDataIntegrity)
		}
	}

	days := make([]ForecastDay, 0, ForecastLen)
	for i := forecastFirst; i < need; i++ {
		date, err := time.Parse(dailyDateLayout, d.Time[i])
		if err != nil {
			return nil, fmt.Errorf("forecast for %s: parsing date %q: %w", loc.Name, d.Time[i], ErrDataIntegrity)
		}

		code, tMax, tMin, hum, wind := d.WeatherCode[i], d.TempMax[i], d.TempMin[i], d.Humidity[i], d.WindMax[i]
		if code == nil || tMax == nil || tMin == nil || hum == nil || wind == nil {
			return nil, fmt.Errorf("forecast for %s: null value for %s: %w", loc.Name, d.Time[i], ErrDataIntegrity)
		}

		cond := DescribeCode(*code)
		days = append(days, ForecastDay{
			Date:        date.Unix(),
			Temperature: roundHalfUp((*tMax + *tMin) / 2),
			TempMin:     roundHalfUp(*tMin),
			TempMax:     roundHalfUp(*tMax),
			Description: cond.Description,
			Icon:        cond.Icon,
			Humidity:    roundHalfUp(*hum),
			WindSpeed:   roundTenth(*wind),
		})
	}

	return days, nil
}

// roundHalfUp rounds to the nearest integer with halves going up (-2.5 → -2).
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func roundTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
