package api

import (
	"strings"
	"sync"

	"github.com/neexbeast/weather-widget/internal/app"
	"github.com/neexbeast/weather-widget/internal/weather"
)

var (
	_ app.Renderer         = (*View)(nil)
	_ app.WeatherDisplayer = (*View)(nil)
)

// CurrentView is current weather plus its resolved icon URL.
type CurrentView struct {
	weather.CurrentWeather
	IconURL string `json:"icon_url"`
}

// ForecastView is one forecast day plus its resolved icon URL.
type ForecastView struct {
	weather.ForecastDay
	IconURL string `json:"icon_url"`
}

// ViewState is what the front-end draws.
type ViewState struct {
	Loading    bool           `json:"loading"`
	Error      string         `json:"error,omitempty"`
	Current    *CurrentView   `json:"current,omitempty"`
	Forecast   []ForecastView `json:"forecast,omitempty"`
	History    []string       `json:"history"`
	Favorites  []string       `json:"favorites"`
	Units      weather.Units  `json:"units"`
	IsFavorite bool           `json:"is_favorite"`
}

// View implements app.Renderer by keeping the latest display state in memory.
type View struct {
	mu    sync.RWMutex
	state ViewState
}

// NewView returns an empty view in metric units.
func NewView() *View {
	return &View{state: ViewState{
		History:   []string{},
		Favorites: []string{},
		Units:     weather.Metric,
	}}
}

// ShowLoading marks a search as in flight and clears any error.
func (v *View) ShowLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Loading = true
	v.state.Error = ""
}

// ShowError ends loading with message. Whatever weather was already on
// display is kept.
func (v *View) ShowError(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Loading = false
	v.state.Error = message
}

// DisplayCurrent replaces the current conditions and ends loading.
func (v *View) DisplayCurrent(current weather.CurrentWeather) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.setCurrent(current)
}

// DisplayForecast replaces the forecast days.
func (v *View) DisplayForecast(days []weather.ForecastDay) {
	out := forecastViews(days)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Forecast = out
}

// DisplayWeather replaces current conditions and forecast together, so a
// Snapshot never mixes two searches.
func (v *View) DisplayWeather(current weather.CurrentWeather, days []weather.ForecastDay) {
	out := forecastViews(days)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.setCurrent(current)
	v.state.Forecast = out
}

// setCurrent requires v.mu to be held.
func (v *View) setCurrent(current weather.CurrentWeather) {
	v.state.Loading = false
	v.state.Error = ""
	v.state.Current = &CurrentView{CurrentWeather: current, IconURL: weather.IconURL(current.Icon)}
}

func forecastViews(days []weather.ForecastDay) []ForecastView {
	out := make([]ForecastView, 0, len(days))
	for _, d := range days {
		out = append(out, ForecastView{ForecastDay: d, IconURL: weather.IconURL(d.Icon)})
	}
	return out
}

// UpdateHistory replaces the recent-searches list.
func (v *View) UpdateHistory(history []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.History = append([]string{}, history...)
}

// UpdateFavorites replaces the favorites list.
func (v *View) UpdateFavorites(favorites []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Favorites = append([]string{}, favorites...)
}

// UpdateUnitsIndicator sets the unit system shown to the user.
func (v *View) UpdateUnitsIndicator(units weather.Units) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Units = units
}

// Snapshot returns a copy of the current state.
func (v *View) Snapshot() ViewState {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := v.state
	s.History = append([]string{}, v.state.History...)
	s.Favorites = append([]string{}, v.state.Favorites...)
	if v.state.Forecast != nil {
		s.Forecast = append([]ForecastView(nil), v.state.Forecast...)
	}
	if v.state.Current != nil {
		cur := *v.state.Current
		s.Current = &cur
		for _, f := range s.Favorites {
			if strings.EqualFold(f, cur.City) {
				s.IsFavorite = true
				break
			}
		}
	}
	return s
}
