package qsdsan

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mitchellh/mapstructure"
)

// Registry is the process-wide mapping from impact-item and indicator IDs to
// their records. The LCA engine resolves other-item identifiers against it;
// report rendering uses it for indicator reporting units.
type Registry struct {
	indicators map[string]*ImpactIndicator
	items      map[string]*ImpactItem
}

// ItemNotFoundError reports a lookup for an unregistered impact item,
// carrying the closest registered ID when one resembles the query.
type ItemNotFoundError struct {
	ID         string
	Suggestion string
}

func (e *ItemNotFoundError) Error() string {
	if e.Suggestion == "" {
		return fmt.Sprintf("impact item %q is not registered", e.ID)
	}
	return fmt.Sprintf("impact item %q is not registered, closest match is %q", e.ID, e.Suggestion)
}

func NewRegistry() *Registry {
	return &Registry{
		indicators: make(map[string]*ImpactIndicator),
		items:      make(map[string]*ImpactItem),
	}
}

// RegisterIndicator adds an indicator, overwriting a previous record with the
// same ID.
func (r *Registry) RegisterIndicator(indicator *ImpactIndicator) {
	r.indicators[indicator.ID] = indicator
}

// RegisterItem adds an impact item, overwriting a previous record with the
// same ID.
func (r *Registry) RegisterItem(item *ImpactItem) {
	r.items[item.ID] = item
}

// Indicator returns the indicator registered under id, nil when absent.
func (r *Registry) Indicator(id string) *ImpactIndicator {
	return r.indicators[id]
}

// Item returns the impact item registered under id. Unknown IDs fail with an
// *ItemNotFoundError suggesting the closest registered ID.
func (r *Registry) Item(id string) (*ImpactItem, error) {
	item, found := r.items[id]
	if !found {
		return nil, &ItemNotFoundError{ID: id, Suggestion: r.closestItemID(id)}
	}
	return item, nil
}

// Items returns all registered items sorted by ID.
func (r *Registry) Items() []*ImpactItem {
	items := slices.Collect(maps.Values(r.items))
	slices.SortFunc(items, func(a, b *ImpactItem) int {
		return strings.Compare(a.ID, b.ID)
	})
	return items
}

// Indicators returns all registered indicators sorted by ID.
func (r *Registry) Indicators() []*ImpactIndicator {
	indicators := slices.Collect(maps.Values(r.indicators))
	slices.SortFunc(indicators, func(a, b *ImpactIndicator) int {
		return strings.Compare(a.ID, b.ID)
	})
	return indicators
}

func (r *Registry) closestItemID(id string) string {
	ids := slices.Sorted(maps.Keys(r.items))
	ranks := fuzzy.RankFindNormalizedFold(id, ids)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// IndicatorConfig is the decoded shape of one indicator definition.
type IndicatorConfig struct {
	ID          string `mapstructure:"id"`
	Unit        string `mapstructure:"unit"`
	Description string `mapstructure:"description"`
}

// ItemConfig is the decoded shape of one impact-item definition.
type ItemConfig struct {
	ID             string             `mapstructure:"id"`
	FunctionalUnit string             `mapstructure:"functional_unit"`
	CFs            map[string]float64 `mapstructure:"characterization_factors"`
}

// LoadIndicators decodes and registers indicator definitions, typically
// unmarshalled from a scenario config file.
func (r *Registry) LoadIndicators(defs []map[string]any) error {
	for _, def := range defs {
		cfg := new(IndicatorConfig)
		if err := mapstructure.Decode(def, cfg); err != nil {
			return fmt.Errorf("decode impact indicator: %w", err)
		}
		if cfg.ID == "" {
			return errors.New("impact indicator id is required")
		}
		r.RegisterIndicator(&ImpactIndicator{ID: cfg.ID, Unit: cfg.Unit, Description: cfg.Description})
	}
	return nil
}

// LoadItems decodes and registers impact-item definitions. Every referenced
// indicator must already be registered.
func (r *Registry) LoadItems(defs []map[string]any) error {
	for _, def := range defs {
		cfg := new(ItemConfig)
		if err := mapstructure.Decode(def, cfg); err != nil {
			return fmt.Errorf("decode impact item: %w", err)
		}
		if cfg.ID == "" {
			return errors.New("impact item id is required")
		}
		for indicator := range cfg.CFs {
			if r.Indicator(indicator) == nil {
				return fmt.Errorf("impact item %q references unregistered indicator %q", cfg.ID, indicator)
			}
		}
		r.RegisterItem(&ImpactItem{
			ID:             cfg.ID,
			FunctionalUnit: cfg.FunctionalUnit,
			CFs:            cfg.CFs,
		})
	}
	return nil
}
