// Package app sequences a weather search: resolve the city, fetch current
// conditions and the forecast together, record the search, and hand the
// results to a Renderer.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/weather-widget/internal/prefs"
	"github.com/neexbeast/weather-widget/internal/weather"
)

var (
	// ErrValidation is returned for an empty search query.
	ErrValidation = errors.New("empty city query")
	// ErrSuperseded is returned by a search that finished after a newer one started.
	ErrSuperseded = errors.New("search superseded by a newer one")
)

// User-facing messages passed to Renderer.ShowError.
const (
	MsgEmptyQuery     = "Please enter a city name"
	MsgNotFound       = "City not found. Please check the spelling and try again."
	MsgGeocodeFailed  = "Failed to find city location."
	MsgFetchFailed    = "Failed to fetch weather data. Please try again later."
	MsgIncompleteData = "Received incomplete weather data. Please try again later."
	MsgUnexpected     = "Something went wrong. Please try again later."
)

// MsgFavoritesFull is shown when the favorites list is at capacity.
var MsgFavoritesFull = fmt.Sprintf("Maximum %d favorite cities allowed", prefs.MaxFavorites)

// Controller owns the displayed city and drives the Renderer. It is safe for
// concurrent use; overlapping searches resolve to the most recently started.
type Controller struct {
	weather  WeatherService
	prefs    PreferenceStore
	renderer Renderer
	log      *zap.Logger

	mu          sync.Mutex
	currentCity string
	seq         uint64
}

// NewController constructs a Controller with all required dependencies.
func NewController(ws WeatherService, ps PreferenceStore, r Renderer, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{weather: ws, prefs: ps, renderer: r, log: log}
}

// CurrentCity returns the display name of the last successful search, or "".
func (c *Controller) CurrentCity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentCity
}

// Init pushes saved preferences to the renderer and, if there is a previous
// search, loads it again.
func (c *Controller) Init(ctx context.Context) error {
	history := c.prefs.History(ctx)
	c.renderer.UpdateHistory(history)
	c.renderer.UpdateFavorites(c.prefs.Favorites(ctx))
	c.renderer.UpdateUnitsIndicator(c.prefs.Units(ctx))

	if len(history) == 0 {
		return nil
	}
	return c.Search(ctx, history[0])
}

// Search looks up query and displays its weather. On any failure the renderer
// gets one message and the previously displayed city stays current.
func (c *Controller) Search(ctx context.Context, query string) error {
	city := strings.TrimSpace(query)
	if city == "" {
		c.renderer.ShowError(MsgEmptyQuery)
		return ErrValidation
	}

	// The loading indicator is set under the lock so it can never land after
	// a newer search has rendered.
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.renderer.ShowLoading()
	c.mu.Unlock()

	loc, err := c.weather.ResolveCity(ctx, city)
	if err != nil {
		return c.fail(seq, city, fmt.Errorf("resolving %q: %w", city, err), MsgGeocodeFailed)
	}

	units := c.prefs.Units(ctx)

	var (
		current  weather.CurrentWeather
		forecast []weather.ForecastDay
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				c.log.Error("current weather fetch panicked", zap.Any("recover", r))
				err = fmt.Errorf("current weather fetch panicked: %v", r)
			}
		}()
		current, err = c.weather.FetchCurrent(gCtx, loc, units)
		return err
	})
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				c.log.Error("forecast fetch panicked", zap.Any("recover", r))
				err = fmt.Errorf("forecast fetch panicked: %v", r)
			}
		}()
		forecast, err = c.weather.FetchForecast(gCtx, loc, units)
		return err
	})

	if err := g.Wait(); err != nil {
		return c.fail(seq, city, fmt.Errorf("fetching weather for %s: %w", loc.Name, err), MsgFetchFailed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.log.Info("dropping stale search result", zap.String("city", loc.Name))
		return ErrSuperseded
	}

	c.currentCity = loc.Name
	c.display(current, forecast)

	c.prefs.AddToHistory(ctx, loc.Name)
	c.renderer.UpdateHistory(c.prefs.History(ctx))

	c.log.Info("search completed",
		zap.String("query", city),
		zap.String("city", loc.Name),
		zap.String("units", string(units)),
	)
	return nil
}

func (c *Controller) display(current weather.CurrentWeather, forecast []weather.ForecastDay) {
	if d, ok := c.renderer.(WeatherDisplayer); ok {
		d.DisplayWeather(current, forecast)
		return
	}
	c.renderer.DisplayCurrent(current)
	c.renderer.DisplayForecast(forecast)
}

// fail shows the message for err unless a newer search has started.
// networkMsg is the wording used for ErrNetwork at the failing stage.
func (c *Controller) fail(seq uint64, query string, err error, networkMsg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.log.Info("dropping stale search error", zap.String("query", query), zap.Error(err))
		return ErrSuperseded
	}

	c.log.Warn("search failed", zap.String("query", query), zap.Error(err))
	c.renderer.ShowError(messageFor(err, networkMsg))
	return err
}

func messageFor(err error, networkMsg string) string {
	switch {
	case errors.Is(err, weather.ErrNotFound):
		return MsgNotFound
	case errors.Is(err, weather.ErrDataIntegrity):
		return MsgIncompleteData
	case errors.Is(err, weather.ErrNetwork):
		return networkMsg
	case errors.Is(err, prefs.ErrLimitExceeded):
		return MsgFavoritesFull
	default:
		return MsgUnexpected
	}
}

// ToggleUnits flips metric/imperial and, when a city is shown, fetches it
// again in the new units.
func (c *Controller) ToggleUnits(ctx context.Context) error {
	next := c.prefs.Units(ctx).Toggle()
	c.prefs.SetUnits(ctx, next)
	c.renderer.UpdateUnitsIndicator(next)

	if city := c.CurrentCity(); city != "" {
		return c.Search(ctx, city)
	}
	return nil
}

// ToggleFavorite adds or removes the current city. It does nothing when no
// city is shown. A full favorites list is reported to the renderer and
// returned as prefs.ErrLimitExceeded.
func (c *Controller) ToggleFavorite(ctx context.Context) error {
	city := c.CurrentCity()
	if city == "" {
		return nil
	}

	if c.prefs.IsFavorite(ctx, city) {
		c.prefs.RemoveFromFavorites(ctx, city)
	} else if _, err := c.prefs.AddToFavorites(ctx, city); err != nil {
		c.renderer.ShowError(messageFor(err, MsgUnexpected))
		return err
	}

	c.renderer.UpdateFavorites(c.prefs.Favorites(ctx))
	return nil
}

// RemoveFavorite removes city from favorites.
func (c *Controller) RemoveFavorite(ctx context.Context, city string) {
	c.prefs.RemoveFromFavorites(ctx, city)
	c.renderer.UpdateFavorites(c.prefs.Favorites(ctx))
}

// ClearHistory empties the search history.
func (c *Controller) ClearHistory(ctx context.Context) {
	c.prefs.ClearHistory(ctx)
	c.renderer.UpdateHistory(c.prefs.History(ctx))
}
