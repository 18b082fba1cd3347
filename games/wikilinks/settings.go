/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package wikilinks

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// Settings are the per-room tunables. Fields the server does not know about
// are kept in Extra and sent back to clients untouched.
type Settings struct {
	MaxPlayers       int `mapstructure:"maxPlayers" yaml:"maxPlayers"`
	RoundTimeLimit   int `mapstructure:"roundTimeLimit" yaml:"roundTimeLimit"` // seconds, stored only
	PointsForCorrect int `mapstructure:"pointsForCorrect" yaml:"pointsForCorrect"`
	PointsForFooling int `mapstructure:"pointsForFooling" yaml:"pointsForFooling"`

	Extra map[string]any `mapstructure:",remain" yaml:",inline"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:       8,
		RoundTimeLimit:   300,
		PointsForCorrect: 1,
		PointsForFooling: 2,
	}
}

// Merge returns s with the fields present in partial overwritten. s is not
// modified, including when an error is returned.
func (s Settings) Merge(partial map[string]any) (Settings, error) {
	merged := s
	merged.Extra = nil

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(rejectFractions),
		WeaklyTypedInput: true,
		MatchName:        func(mapKey, fieldName string) bool { return mapKey == fieldName },
		Result:           &merged,
	})
	if err != nil {
		return s, err
	}

	if err := dec.Decode(partial); err != nil {
		return s, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	extra := maps.Clone(s.Extra)
	if len(merged.Extra) > 0 && extra == nil {
		extra = make(map[string]any, len(merged.Extra))
	}
	maps.Copy(extra, merged.Extra)
	merged.Extra = extra

	return merged, nil
}

// rejectFractions stops 1.7 from quietly becoming 1 in an int field.
func rejectFractions(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int {
		return data, nil
	}

	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return data, nil
	}

	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not a whole number", f)
	}

	return data, nil
}

func (s Settings) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+4)
	maps.Copy(out, s.Extra)

	out["maxPlayers"] = s.MaxPlayers
	out["roundTimeLimit"] = s.RoundTimeLimit
	out["pointsForCorrect"] = s.PointsForCorrect
	out["pointsForFooling"] = s.PointsForFooling

	return json.Marshal(out)
}
