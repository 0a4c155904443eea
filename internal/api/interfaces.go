package api

import (
	"context"
)

// WidgetController defines the user actions exposed over HTTP.
// *app.Controller satisfies it.
type WidgetController interface {
	Search(ctx context.Context, query string) error
	ToggleUnits(ctx context.Context) error
	ToggleFavorite(ctx context.Context) error
	RemoveFavorite(ctx context.Context, city string)
	ClearHistory(ctx context.Context)
}

// ViewSource provides the state returned to the front-end.
type ViewSource interface {
	Snapshot() ViewState
}

type storePinger interface {
	Ping(ctx context.Context) error
}
