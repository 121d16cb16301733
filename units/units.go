// Package units converts scalar quantities between compatible physical units.
// It is the conversion service behind functional-unit normalization and
// canonical life-time storage in the LCA engine.
package units

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownUnit reports a unit symbol missing from the conversion table.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrIncompatibleUnits reports two units of different physical dimensions.
	ErrIncompatibleUnits = errors.New("incompatible units")
)

// ConversionError wraps a failed unit conversion with both unit symbols.
type ConversionError struct {
	From string
	To   string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %q: %s", e.From, e.To, e.Err.Error())
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

type dimension string

const (
	timeDim     dimension = "time"
	massDim     dimension = "mass"
	energyDim   dimension = "energy"
	volumeDim   dimension = "volume"
	distanceDim dimension = "distance"
)

type measure struct {
	dim dimension
	// factor converts one of this unit into the dimension's base unit
	// (hr, kg, kWh, m3, km).
	factor float64
}

var measures = map[string]measure{
	"s":   {timeDim, 1.0 / 3600},
	"min": {timeDim, 1.0 / 60},
	"hr":  {timeDim, 1},
	"h":   {timeDim, 1},
	"d":   {timeDim, 24},
	"day": {timeDim, 24},
	"wk":  {timeDim, 24 * 7},
	"yr":  {timeDim, 24 * 365},

	"mg":    {massDim, 1e-6},
	"g":     {massDim, 1e-3},
	"kg":    {massDim, 1},
	"tonne": {massDim, 1e3},
	"lb":    {massDim, 0.45359237},

	"J":   {energyDim, 1.0 / 3.6e6},
	"kJ":  {energyDim, 1.0 / 3600},
	"MJ":  {energyDim, 1.0 / 3.6},
	"GJ":  {energyDim, 1000.0 / 3.6},
	"Wh":  {energyDim, 1e-3},
	"kWh": {energyDim, 1},
	"MWh": {energyDim, 1e3},

	"L":   {volumeDim, 1e-3},
	"m3":  {volumeDim, 1},
	"gal": {volumeDim, 3.785411784e-3},

	"m":  {distanceDim, 1e-3},
	"km": {distanceDim, 1},
	"mi": {distanceDim, 1.609344},
}

// Convert expresses value, given in the from unit, in the to unit. Converting
// a unit to itself is an exact no-op. Unknown symbols and mismatched
// dimensions fail with a *ConversionError.
func Convert(value float64, from, to string) (float64, error) {
	if from == to {
		return value, nil
	}

	f, ok := measures[from]
	if !ok {
		return 0, &ConversionError{From: from, To: to, Err: fmt.Errorf("%w: %q", ErrUnknownUnit, from)}
	}

	t, ok := measures[to]
	if !ok {
		return 0, &ConversionError{From: from, To: to, Err: fmt.Errorf("%w: %q", ErrUnknownUnit, to)}
	}

	if f.dim != t.dim {
		return 0, &ConversionError{From: from, To: to, Err: fmt.Errorf("%w: %s vs %s", ErrIncompatibleUnits, f.dim, t.dim)}
	}

	return value * f.factor / t.factor, nil
}

// Hours expresses a duration given in unit as hours. An empty unit means the
// value is already in hours.
func Hours(value float64, unit string) (float64, error) {
	if unit == "" {
		unit = "hr"
	}
	return Convert(value, unit, "hr")
}

// FromHours expresses a duration given in hours in the requested unit.
func FromHours(hours float64, unit string) (float64, error) {
	return Convert(hours, "hr", unit)
}
