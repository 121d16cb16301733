package qsdsan

import (
	"maps"
	"slices"
	"time"
)

// ImpactIndicator identifies a category of environmental impact, e.g. GWP100
// reported in kg CO2-eq. Indicators are owned by a Registry and referenced by
// ID everywhere else.
type ImpactIndicator struct {
	ID          string
	Unit        string
	Description string
}

// CharacterizationFactors maps an indicator ID to the impact caused by one
// functional unit of the associated item.
type CharacterizationFactors map[string]float64

// Indicators returns the sorted set of indicator IDs the factors cover.
func (cfs CharacterizationFactors) Indicators() []string {
	return slices.Sorted(maps.Keys(cfs))
}

// ImpactItem is a reusable characterization record: a quantity expressed in
// FunctionalUnit multiplied by CFs yields per-indicator impacts. Items are
// immutable once registered and shared by reference across all consumers.
type ImpactItem struct {
	ID             string
	FunctionalUnit string
	CFs            CharacterizationFactors
}

// Indicators returns the sorted indicator IDs this item participates in.
func (item *ImpactItem) Indicators() []string {
	return item.CFs.Indicators()
}

// Impacts maps an indicator ID to an impact value in the indicator's
// reporting unit.
type Impacts map[string]float64

// NewImpacts returns a zero-initialized mapping covering the given indicators.
func NewImpacts(indicators []string) Impacts {
	impacts := make(Impacts, len(indicators))
	for _, id := range indicators {
		impacts[id] = 0
	}
	return impacts
}

// Add accumulates other into im, indicator-wise.
func (im Impacts) Add(other Impacts) {
	for id, v := range other {
		im[id] += v
	}
}

// Scale multiplies every value in place and returns im.
func (im Impacts) Scale(factor float64) Impacts {
	for id := range im {
		im[id] *= factor
	}
	return im
}

// Clone returns a copy of the mapping.
func (im Impacts) Clone() Impacts {
	return maps.Clone(im)
}

// Construction is a one-time embodied activity attached to a unit, e.g. the
// concrete and steel of a reactor. Impacts holds already-computed values and
// is summed without time scaling.
type Construction struct {
	Name    string
	Impacts Impacts
}

// Indicators returns the sorted indicator IDs the activity touches.
func (c *Construction) Indicators() []string {
	return slices.Sorted(maps.Keys(c.Impacts))
}

// Transportation is a recurring hauling activity attached to a unit. Impacts
// holds the burden of one Interval worth of activity and scales linearly with
// the assessed life time.
type Transportation struct {
	Name     string
	Impacts  Impacts
	Interval time.Duration
}

// Indicators returns the sorted indicator IDs the activity touches.
func (t *Transportation) Indicators() []string {
	return slices.Sorted(maps.Keys(t.Impacts))
}

// StreamImpactItem links a process stream to an ImpactItem whose factors apply
// per kg of stream mass. The stream's cumulative impact over a life time is
// factor * lifeTime * massFlowRate, assuming the flow rate stays constant over
// the whole period.
type StreamImpactItem struct {
	Item *ImpactItem
}

// CFs returns the linked item's characterization factors, nil when no item is
// linked.
func (sii *StreamImpactItem) CFs() CharacterizationFactors {
	if sii == nil || sii.Item == nil {
		return nil
	}
	return sii.Item.CFs
}

// Indicators returns the sorted indicator IDs of the linked item.
func (sii *StreamImpactItem) Indicators() []string {
	return sii.CFs().Indicators()
}
