// Package prefs keeps the widget's user preferences: search history,
// favorite cities and the units flag.
//
// Reads never fail: an unreachable backend or malformed value reads as the
// empty list or the metric default. Writes are best-effort and only logged.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/neexbeast/weather-widget/internal/weather"
)

const (
	KeyHistory   = "weatherSearchHistory"
	KeyFavorites = "weatherFavorites"
	KeyUnits     = "weatherUnits"

	MaxHistory   = 5
	MaxFavorites = 5
)

// ErrLimitExceeded is returned when adding a new city to a full favorites list.
var ErrLimitExceeded = fmt.Errorf("maximum %d favorite cities allowed", MaxFavorites)

// KV is the persistent key-value backend. Implementations report every
// failure; the Store decides what to do with it.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store applies the bounded-list policies on top of a KV backend.
type Store struct {
	kv  KV
	log *zap.Logger
}

// NewStore constructs a Store. A nil logger discards write failures.
func NewStore(kv KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log}
}

var errMalformed = errors.New("malformed stored value")

// loadList reads a JSON string array. A missing key is an empty list.
func (s *Store) loadList(ctx context.Context, key string) ([]string, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", key, errMalformed, err)
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func (s *Store) saveList(ctx context.Context, key string, list []string) error {
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, string(b))
}

func (s *Store) loadUnits(ctx context.Context) (weather.Units, error) {
	raw, ok, err := s.kv.Get(ctx, KeyUnits)
	if err != nil {
		return "", err
	}
	if !ok {
		return weather.Metric, nil
	}
	u := weather.Units(raw)
	if !u.Valid() {
		return "", fmt.Errorf("%s=%q: %w", KeyUnits, raw, errMalformed)
	}
	return u, nil
}

// readList is the single read boundary: failures become the empty list.
func (s *Store) readList(ctx context.Context, key string) []string {
	list, err := s.loadList(ctx, key)
	if err != nil {
		s.log.Warn("reading preference failed, using empty list", zap.String("key", key), zap.Error(err))
		return []string{}
	}
	return list
}

// write is the single write boundary: failures are logged and dropped.
func (s *Store) write(key string, err error) {
	if err != nil {
		s.log.Error("saving preference failed", zap.String("key", key), zap.Error(err))
	}
}

func indexFold(list []string, city string) int {
	for i, item := range list {
		if strings.EqualFold(item, city) {
			return i
		}
	}
	return -1
}

func withoutFold(list []string, city string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if !strings.EqualFold(item, city) {
			out = append(out, item)
		}
	}
	return out
}

// ---- Search history ----

// History returns recent searches, most recent first.
func (s *Store) History(ctx context.Context) []string {
	return s.readList(ctx, KeyHistory)
}

// AddToHistory moves city to the front, dropping any case-insensitive
// duplicate and anything past MaxHistory.
func (s *Store) AddToHistory(ctx context.Context, city string) {
	history := withoutFold(s.History(ctx), city)
	history = append([]string{city}, history...)
	if len(history) > MaxHistory {
		history = history[:MaxHistory]
	}
	s.write(KeyHistory, s.saveList(ctx, KeyHistory, history))
}

// ClearHistory removes all recent searches.
func (s *Store) ClearHistory(ctx context.Context) {
	s.write(KeyHistory, s.kv.Delete(ctx, KeyHistory))
}

// ---- Favorites ----

// Favorites returns favorite cities in insertion order.
func (s *Store) Favorites(ctx context.Context) []string {
	return s.readList(ctx, KeyFavorites)
}

// AddToFavorites appends city. It reports false without error when the city
// is already a favorite, and ErrLimitExceeded when the list is full.
func (s *Store) AddToFavorites(ctx context.Context, city string) (bool, error) {
	favorites := s.Favorites(ctx)
	if indexFold(favorites, city) >= 0 {
		return false, nil
	}
	if len(favorites) >= MaxFavorites {
		return false, ErrLimitExceeded
	}

	favorites = append(favorites, city)
	s.write(KeyFavorites, s.saveList(ctx, KeyFavorites, favorites))
	return true, nil
}

// RemoveFromFavorites drops city, ignoring case. Absent cities are a no-op.
func (s *Store) RemoveFromFavorites(ctx context.Context, city string) {
	favorites := s.Favorites(ctx)
	if indexFold(favorites, city) < 0 {
		return
	}
	s.write(KeyFavorites, s.saveList(ctx, KeyFavorites, withoutFold(favorites, city)))
}

// IsFavorite reports whether city is a favorite, ignoring case.
func (s *Store) IsFavorite(ctx context.Context, city string) bool {
	return indexFold(s.Favorites(ctx), city) >= 0
}

// ---- Units ----

// Units returns the saved unit system, metric when unset or unreadable.
func (s *Store) Units(ctx context.Context) weather.Units {
	u, err := s.loadUnits(ctx)
	if err != nil {
		s.log.Warn("reading units failed, using metric", zap.Error(err))
		return weather.Metric
	}
	return u
}

// SetUnits saves the unit system.
func (s *Store) SetUnits(ctx context.Context, u weather.Units) {
	s.write(KeyUnits, s.kv.Set(ctx, KeyUnits, string(u)))
}
