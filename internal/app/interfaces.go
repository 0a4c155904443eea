package app

import (
	"context"

	"github.com/neexbeast/weather-widget/internal/weather"
)

// WeatherService defines the lookups needed for a search. *weather.Client satisfies it.
type WeatherService interface {
	ResolveCity(ctx context.Context, query string) (weather.Location, error)
	FetchCurrent(ctx context.Context, loc weather.Location, units weather.Units) (weather.CurrentWeather, error)
	FetchForecast(ctx context.Context, loc weather.Location, units weather.Units) ([]weather.ForecastDay, error)
}

// PreferenceStore defines the persisted preferences used by the controller.
// *prefs.Store satisfies it.
type PreferenceStore interface {
	History(ctx context.Context) []string
	AddToHistory(ctx context.Context, city string)
	ClearHistory(ctx context.Context)
	Favorites(ctx context.Context) []string
	AddToFavorites(ctx context.Context, city string) (bool, error)
	RemoveFromFavorites(ctx context.Context, city string)
	IsFavorite(ctx context.Context, city string) bool
	Units(ctx context.Context) weather.Units
	SetUnits(ctx context.Context, u weather.Units)
}

// Renderer displays controller output. Calls are fire-and-forget.
type Renderer interface {
	ShowLoading()
	ShowError(message string)
	DisplayCurrent(current weather.CurrentWeather)
	DisplayForecast(days []weather.ForecastDay)
	UpdateHistory(history []string)
	UpdateFavorites(favorites []string)
	UpdateUnitsIndicator(units weather.Units)
}

// WeatherDisplayer is implemented by renderers that can replace current
// conditions and the forecast in one update. The controller prefers it over
// separate DisplayCurrent and DisplayForecast calls.
type WeatherDisplayer interface {
	DisplayWeather(current weather.CurrentWeather, days []weather.ForecastDay)
}
