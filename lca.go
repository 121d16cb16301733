package qsdsan

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/philthestone/QSDsan/units"
)

// ErrStreamNotInSystem reports a normalization request against a stream that
// does not belong to the linked system.
var ErrStreamNotInSystem = errors.New("stream does not belong to the linked system")

// LCA aggregates life cycle impacts of a System over an operating life time.
//
// The engine keeps three derived sets cached: units with construction
// activities, units with transportation activities, and impact-bearing
// streams. SetSystem re-derives all three in full; everything else is
// recomputed on read. The life time is stored canonically in hours so every
// scaling rule works on a single time unit.
//
// An LCA instance is not safe for concurrent use; callers sharing one across
// goroutines must serialize SetSystem, SetLifeTime and AddOtherItem against
// in-flight impact computations.
type LCA struct {
	system   System
	lifeTime time.Duration
	registry *Registry

	constructionUnits   []Unit
	transportationUnits []Unit
	wasteStreams        []Stream

	otherItems map[string]*otherItem
}

type otherItem struct {
	item *ImpactItem
	// quantity over the whole life time, in the item's functional unit
	quantity float64
}

type config struct {
	lifeTimeUnit string
	registry     *Registry
	otherItems   []pendingOtherItem
}

type pendingOtherItem struct {
	id       string
	quantity float64
	unit     string
}

// Option configures an LCA under construction.
type Option func(*config)

// WithLifeTimeUnit sets the unit the life-time value passed to New is
// expressed in. Defaults to hours.
func WithLifeTimeUnit(unit string) Option {
	return func(c *config) {
		c.lifeTimeUnit = unit
	}
}

// WithRegistry sets the impact registry other-item identifiers are resolved
// against.
func WithRegistry(registry *Registry) Option {
	return func(c *config) {
		c.registry = registry
	}
}

// WithOtherItem adds an initial other-item quantity already expressed in the
// item's functional unit.
func WithOtherItem(id string, quantity float64) Option {
	return WithOtherItemIn(id, quantity, "")
}

// WithOtherItemIn adds an initial other-item quantity expressed in the given
// unit, converted to the item's functional unit during New.
func WithOtherItemIn(id string, quantity float64, unit string) Option {
	return func(c *config) {
		c.otherItems = append(c.otherItems, pendingOtherItem{id: id, quantity: quantity, unit: unit})
	}
}

// New builds an LCA for system over a life time expressed in the unit set by
// WithLifeTimeUnit (hours by default). Initial other items are resolved
// against the registry and converted to their functional units; any failed
// lookup or conversion aborts construction.
func New(system System, lifeTime float64, opts ...Option) (*LCA, error) {
	if system == nil {
		return nil, errors.New("lca: system is required")
	}

	cfg := &config{
		lifeTimeUnit: "hr",
		registry:     NewRegistry(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	lca := &LCA{
		registry:   cfg.registry,
		otherItems: make(map[string]*otherItem),
	}
	lca.SetSystem(system)

	if err := lca.SetLifeTime(lifeTime, cfg.lifeTimeUnit); err != nil {
		return nil, err
	}

	for _, pending := range cfg.otherItems {
		if err := lca.AddOtherItemID(pending.id, pending.quantity, pending.unit); err != nil {
			return nil, err
		}
	}

	return lca, nil
}

// SetSystem replaces the linked system and re-derives the cached unit and
// stream sets from scratch.
func (lca *LCA) SetSystem(system System) {
	var construction, transportation []Unit
	for _, unit := range system.Units() {
		if len(unit.Construction()) > 0 {
			construction = append(construction, unit)
		}
		if len(unit.Transportation()) > 0 {
			transportation = append(transportation, unit)
		}
	}

	var wasteStreams []Stream
	for _, stream := range system.Streams() {
		if stream.ImpactItem() != nil {
			wasteStreams = append(wasteStreams, stream)
		}
	}

	lca.system = system
	lca.constructionUnits = construction
	lca.transportationUnits = transportation
	lca.wasteStreams = wasteStreams
}

// System returns the linked system.
func (lca *LCA) System() System {
	return lca.system
}

// SetLifeTime converts value from the given unit ("hr" when empty) and stores
// it as the canonical hour-based life time.
func (lca *LCA) SetLifeTime(value float64, unit string) error {
	hours, err := units.Hours(value, unit)
	if err != nil {
		return err
	}
	lca.lifeTime = time.Duration(hours * float64(time.Hour))
	return nil
}

// LifeTime returns the operating life time.
func (lca *LCA) LifeTime() time.Duration {
	return lca.lifeTime
}

// LifeTimeIn expresses the life time in the requested unit.
func (lca *LCA) LifeTimeIn(unit string) (float64, error) {
	return units.FromHours(lca.lifeTime.Hours(), unit)
}

// AddOtherItem stores or overwrites the life-time quantity of an impact item
// outside the process graph, e.g. purchased electricity. A non-empty unit
// differing from the item's functional unit is converted; incompatible units
// fail with a *units.ConversionError.
func (lca *LCA) AddOtherItem(item *ImpactItem, quantity float64, unit string) error {
	if item == nil {
		return errors.New("lca: impact item is required")
	}
	if unit != "" && unit != item.FunctionalUnit {
		converted, err := units.Convert(quantity, unit, item.FunctionalUnit)
		if err != nil {
			return err
		}
		quantity = converted
	}
	lca.otherItems[item.ID] = &otherItem{item: item, quantity: quantity}
	return nil
}

// AddOtherItemID resolves id against the registry and stores the quantity
// like AddOtherItem.
func (lca *LCA) AddOtherItemID(id string, quantity float64, unit string) error {
	item, err := lca.registry.Item(id)
	if err != nil {
		return err
	}
	return lca.AddOtherItem(item, quantity, unit)
}

// OtherItems returns the stored other-item quantities keyed by item ID, each
// in the item's functional unit.
func (lca *LCA) OtherItems() map[string]float64 {
	quantities := make(map[string]float64, len(lca.otherItems))
	for id, other := range lca.otherItems {
		quantities[id] = other.quantity
	}
	return quantities
}

// Indicators returns the sorted union of indicator IDs touched by the
// construction, transportation and waste-stream inventories and the other
// items. It is recomputed on every call since inventories change with the
// system and quantity table. The union fixes the key set of every impact
// mapping: an indicator with no contributing source never appears.
func (lca *LCA) Indicators() []string {
	set := make(map[string]struct{})
	for _, activity := range lca.ConstructionInventory() {
		for id := range activity.Impacts {
			set[id] = struct{}{}
		}
	}
	for _, activity := range lca.TransportationInventory() {
		for id := range activity.Impacts {
			set[id] = struct{}{}
		}
	}
	for _, item := range lca.WasteStreamInventory() {
		for id := range item.CFs() {
			set[id] = struct{}{}
		}
	}
	for _, other := range lca.otherItems {
		for id := range other.item.CFs {
			set[id] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// ConstructionUnits returns the cached units carrying construction
// activities.
func (lca *LCA) ConstructionUnits() []Unit {
	return slices.Clone(lca.constructionUnits)
}

// ConstructionInventory returns every construction activity in the system.
func (lca *LCA) ConstructionInventory() []*Construction {
	var inventory []*Construction
	for _, unit := range lca.constructionUnits {
		inventory = append(inventory, unit.Construction()...)
	}
	return inventory
}

// ConstructionImpacts sums the one-time embodied impacts of all construction
// activities. No time scaling applies.
func (lca *LCA) ConstructionImpacts() Impacts {
	impacts := NewImpacts(lca.Indicators())
	for _, activity := range lca.ConstructionInventory() {
		impacts.Add(activity.Impacts)
	}
	return impacts
}

// TransportationUnits returns the cached units carrying transportation
// activities.
func (lca *LCA) TransportationUnits() []Unit {
	return slices.Clone(lca.transportationUnits)
}

// TransportationInventory returns every transportation activity in the
// system.
func (lca *LCA) TransportationInventory() []*Transportation {
	var inventory []*Transportation
	for _, unit := range lca.transportationUnits {
		inventory = append(inventory, unit.Transportation()...)
	}
	return inventory
}

// TransportationImpacts scales each activity's per-interval impacts by
// lifeTime/interval and sums them. Activities without an interval cannot be
// scaled and are skipped.
func (lca *LCA) TransportationImpacts() Impacts {
	impacts := NewImpacts(lca.Indicators())
	hours := lca.lifeTime.Hours()
	for _, activity := range lca.TransportationInventory() {
		if activity.Interval <= 0 {
			slog.Warn("transportation activity interval is not set, skipping", "activity", activity.Name)
			continue
		}
		factor := hours / activity.Interval.Hours()
		for id, v := range activity.Impacts {
			impacts[id] += v * factor
		}
	}
	return impacts
}

// WasteStreams returns the cached impact-bearing streams.
func (lca *LCA) WasteStreams() []Stream {
	return slices.Clone(lca.wasteStreams)
}

// WasteStreamInventory returns the stream impact items of all impact-bearing
// streams: chemical inputs, fugitive gases, waste emissions and products.
func (lca *LCA) WasteStreamInventory() []*StreamImpactItem {
	inventory := make([]*StreamImpactItem, 0, len(lca.wasteStreams))
	for _, stream := range lca.wasteStreams {
		inventory = append(inventory, stream.ImpactItem())
	}
	return inventory
}

// WasteStreamImpacts multiplies each stream's characterization factors by the
// life time and its mass flow rate, assuming the flow rate stays constant
// over the whole period.
func (lca *LCA) WasteStreamImpacts() Impacts {
	return lca.wasteStreamImpacts(nil)
}

func (lca *LCA) wasteStreamImpacts(exclude Stream) Impacts {
	impacts := NewImpacts(lca.Indicators())
	hours := lca.lifeTime.Hours()
	for _, stream := range lca.wasteStreams {
		if stream == exclude {
			continue
		}
		mass := hours * stream.MassFlowRate()
		for id, factor := range stream.ImpactItem().CFs() {
			impacts[id] += factor * mass
		}
	}
	return impacts
}

// OtherImpacts multiplies each stored other-item quantity by the item's
// characterization factors. Quantities already cover the full life time, so
// no time scaling applies.
func (lca *LCA) OtherImpacts() Impacts {
	impacts := NewImpacts(lca.Indicators())
	for _, other := range lca.otherItems {
		for id, factor := range other.item.CFs {
			impacts[id] += factor * other.quantity
		}
	}
	return impacts
}

// TotalImpacts sums the construction, transportation, waste-stream and other
// impacts indicator-wise.
func (lca *LCA) TotalImpacts() Impacts {
	return lca.totalImpacts(nil)
}

func (lca *LCA) totalImpacts(exclude Stream) Impacts {
	total := lca.ConstructionImpacts()
	total.Add(lca.TransportationImpacts())
	total.Add(lca.wasteStreamImpacts(exclude))
	total.Add(lca.OtherImpacts())
	return total
}

// NormalizedImpacts divides the system totals by stream's mass flow rate,
// expressing impact per unit functional output. The stream's own waste-stream
// contribution is excluded from the totals first so that an impact-bearing
// output does not count against itself. A zero flow rate yields infinities
// per IEEE float semantics; callers must check for that when it matters.
//
// The stream must belong to the linked system, otherwise the call fails with
// an error wrapping ErrStreamNotInSystem.
func (lca *LCA) NormalizedImpacts(stream Stream) (Impacts, error) {
	if !lca.ownsStream(stream) {
		return nil, fmt.Errorf("lca: stream %q: %w", stream.ID(), ErrStreamNotInSystem)
	}
	return lca.totalImpacts(stream).Scale(1 / stream.MassFlowRate()), nil
}

func (lca *LCA) ownsStream(stream Stream) bool {
	return slices.Contains(lca.system.Streams(), stream)
}
