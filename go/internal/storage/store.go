package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("key not found")

// Store is a durable string key/value store.
type Store interface {
	// Get returns ErrNotFound when key has never been set.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Keys used by the application.
const (
	KeySettings       = "courtclock_settings"
	KeyHomeTeam       = "courtclock_home_team"
	KeyGuestTeam      = "courtclock_guest_team"
	KeyProfiles       = "courtclock_profiles"
	KeyGameHistory    = "courtclock_game_history"
	KeyFirstLaunch    = "courtclock_install_date"
	KeyActivated      = "courtclock_is_activated"
	KeyActivationDate = "courtclock_activation_date"
	KeyDeviceID       = "courtclock_device_id"
)

// Save serializes value as JSON under key.
func Save(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Load reads key and merges it onto def (see Decode). Missing keys, storage
// errors and malformed data all yield def.
func Load[T any](ctx context.Context, s Store, key string, def T) T {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("storage read failed, using default")
		}
		return def
	}
	v, ok := Decode(raw, def)
	if !ok {
		log.Warn().Str("key", key).Msg("stored value rejected, using default")
	}
	return v
}

// Decode applies the schema-tolerant merge policy to a stored JSON document:
//   - sequence defaults accept only stored sequences, taken verbatim;
//   - record defaults (structs, maps) take each of their own keys from storage
//     when present and non-null, keeping the default for the rest;
//   - primitive defaults accept a stored value of the same JSON type.
//
// ok is false when def was returned because raw could not be used.
func Decode[T any](raw string, def T) (T, bool) {
	if raw == "" {
		return def, false
	}
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return def, false
	}

	kind := reflect.ValueOf(&def).Elem().Kind()
	if kind == reflect.Pointer {
		kind = reflect.TypeOf(def).Elem().Kind()
	}

	switch kind {
	case reflect.Slice, reflect.Array:
		if _, ok := parsed.([]any); !ok {
			return def, false
		}
		var out T
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return def, false
		}
		return out, true

	case reflect.Struct, reflect.Map:
		stored, ok := parsed.(map[string]any)
		if !ok {
			return def, false
		}
		return mergeRecord(stored, def)

	case reflect.Interface:
		if parsed == nil {
			return def, false
		}
		var out T
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return def, false
		}
		return out, true

	default:
		if !sameJSONType(parsed, kind) {
			return def, false
		}
		var out T
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return def, false
		}
		return out, true
	}
}

func mergeRecord[T any](stored map[string]any, def T) (T, bool) {
	base, err := json.Marshal(def)
	if err != nil {
		return def, false
	}
	merged := map[string]any{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return def, false
	}
	for k := range merged {
		if v, ok := stored[k]; ok && v != nil {
			merged[k] = v
		}
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return def, false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return def, false
	}
	return out, true
}

func sameJSONType(v any, kind reflect.Kind) bool {
	switch v.(type) {
	case bool:
		return kind == reflect.Bool
	case string:
		return kind == reflect.String
	case float64:
		switch kind {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return true
		}
	}
	return false
}
