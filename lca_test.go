package qsdsan_test

import (
	"math"
	"strings"
	"testing"
	"time"

	qsdsan "github.com/philthestone/QSDsan"
	"github.com/philthestone/QSDsan/process"
	"github.com/philthestone/QSDsan/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

// fixture: one construction-flagged unit ({GWP: 100} one time), one
// transportation-flagged unit ({GWP: 10} per 24 hr), one impact-bearing
// effluent at 2 kg/hr with a {GWP: 5}/kg stream item, and one inert influent.
type fixture struct {
	registry *qsdsan.Registry
	system   *process.System
	effluent *process.Stream
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	registry := qsdsan.NewRegistry()
	registry.RegisterIndicator(&qsdsan.ImpactIndicator{ID: "GWP", Unit: "kg CO2-eq"})
	registry.RegisterItem(&qsdsan.ImpactItem{
		ID:             "Electricity",
		FunctionalUnit: "kWh",
		CFs:            qsdsan.CharacterizationFactors{"GWP": 0.5},
	})

	streamItem := &qsdsan.ImpactItem{
		ID:             "Effluent",
		FunctionalUnit: "kg",
		CFs:            qsdsan.CharacterizationFactors{"GWP": 5},
	}
	registry.RegisterItem(streamItem)

	effluent := process.NewStream("effluent", 2).LinkItem(streamItem)

	system := process.NewSystem("sys").
		AddUnit(process.NewUnit("digester").AddConstruction(&qsdsan.Construction{
			Name:    "concrete",
			Impacts: qsdsan.Impacts{"GWP": 100},
		})).
		AddUnit(process.NewUnit("hauler").AddTransportation(&qsdsan.Transportation{
			Name:     "truck",
			Impacts:  qsdsan.Impacts{"GWP": 10},
			Interval: 24 * time.Hour,
		})).
		AddStream(process.NewStream("influent", 3)).
		AddStream(effluent)

	return &fixture{registry: registry, system: system, effluent: effluent}
}

func (f *fixture) newLCA(t *testing.T, lifeTime float64, opts ...qsdsan.Option) *qsdsan.LCA {
	t.Helper()
	opts = append([]qsdsan.Option{qsdsan.WithRegistry(f.registry)}, opts...)
	lca, err := qsdsan.New(f.system, lifeTime, opts...)
	require.NoError(t, err)
	return lca
}

func TestCategoryImpacts(t *testing.T) {
	f := newFixture(t)
	lca := f.newLCA(t, 48)

	assert.Equal(t, qsdsan.Impacts{"GWP": 100}, lca.ConstructionImpacts())
	assert.Equal(t, qsdsan.Impacts{"GWP": 20}, lca.TransportationImpacts())
	assert.Equal(t, qsdsan.Impacts{"GWP": 480}, lca.WasteStreamImpacts())
	assert.Equal(t, qsdsan.Impacts{"GWP": 0}, lca.OtherImpacts())
	assert.Equal(t, qsdsan.Impacts{"GWP": 600}, lca.TotalImpacts())
}

func TestTotalIsSumOfParts(t *testing.T) {
	f := newFixture(t)
	lca := f.newLCA(t, 48, qsdsan.WithOtherItem("Electricity", 1000))

	total := lca.TotalImpacts()
	construction := lca.ConstructionImpacts()
	transportation := lca.TransportationImpacts()
	wasteStream := lca.WasteStreamImpacts()
	others := lca.OtherImpacts()

	for _, id := range lca.Indicators() {
		sum := construction[id] + transportation[id] + wasteStream[id] + others[id]
		assert.True(t, scalar.EqualWithinAbs(total[id], sum, 1e-9), "indicator %s: total %v != sum %v", id, total[id], sum)
	}
}

func TestLifeTimeScalingLinearity(t *testing.T) {
	f := newFixture(t)
	lca := f.newLCA(t, 48)

	require.NoError(t, lca.SetLifeTime(96, "hr"))

	// transportation and waste-stream impacts double, construction does not
	assert.Equal(t, qsdsan.Impacts{"GWP": 40}, lca.TransportationImpacts())
	assert.Equal(t, qsdsan.Impacts{"GWP": 960}, lca.WasteStreamImpacts())
	assert.Equal(t, qsdsan.Impacts{"GWP": 100}, lca.ConstructionImpacts())
}

func TestNormalizedImpacts(t *testing.T) {
	f := newFixture(t)
	lca := f.newLCA(t, 48)

	normalized, err := lca.NormalizedImpacts(f.effluent)
	require.NoError(t, err)

	// (600 - 480) / 2
	assert.Equal(t, qsdsan.Impacts{"GWP": 60}, normalized)
}

func TestNormalizedImpactsExcludesOnlySelf(t *testing.T) {
	f := newFixture(t)

	secondItem := &qsdsan.ImpactItem{
		ID:             "Sludge",
		FunctionalUnit: "kg",
		CFs:            qsdsan.CharacterizationFactors{"GWP": 1},
	}
	sludge := process.NewStream("sludge", 4).LinkItem(secondItem)
	f.system.AddStream(sludge)

	lca := f.newLCA(t, 48)

	// sludge contributes 1*48*4=192 on top of the base 600
	assert.Equal(t, qsdsan.Impacts{"GWP": 792}, lca.TotalImpacts())

	normalized, err := lca.NormalizedImpacts(f.effluent)
	require.NoError(t, err)
	assert.Equal(t, qsdsan.Impacts{"GWP": (792 - 480) / 2.0}, normalized)
}

func TestNormalizedImpactsRejectsForeignStream(t *testing.T) {
	f := newFixture(t)
	lca := f.newLCA(t, 48)

	foreign := process.NewStream("foreign", 1)
	_, err := lca.NormalizedImpacts(foreign)
	require.Error(t, err)
	assert.ErrorIs(t, err, qsdsan.ErrStreamNotInSystem)
}

func TestNormalizedImpactsZeroFlowYieldsInf(t *testing.T) {
	f := newFixture(t)
	lca := f.newLCA(t, 48)

	f.effluent.SetMassFlowRate(0)
	normalized, err := lca.NormalizedImpacts(f.effluent)
	require.NoError(t, err)
	assert.True(t, math.IsInf(normalized["GWP"], 1))
}

func TestIndicatorSetClosure(t *testing.T) {
	f := newFixture(t)
	lca := f.newLCA(t, 48)

	assert.Equal(t, []string{"GWP"}, lca.Indicators())

	// a registered indicator with no contributing source never appears
	f.registry.RegisterIndicator(&qsdsan.ImpactIndicator{ID: "EP", Unit: "kg PO4-eq"})
	assert.Equal(t, []string{"GWP"}, lca.Indicators())
	_, found := lca.TotalImpacts()["EP"]
	assert.False(t, found)

	// it appears once an other item contributes to it
	f.registry.RegisterItem(&qsdsan.ImpactItem{
		ID:             "Ammonia",
		FunctionalUnit: "kg",
		CFs:            qsdsan.CharacterizationFactors{"EP": 0.1},
	})
	require.NoError(t, lca.AddOtherItemID("Ammonia", 10, ""))
	assert.Equal(t, []string{"EP", "GWP"}, lca.Indicators())
	assert.Equal(t, 1.0, lca.OtherImpacts()["EP"])
	assert.Equal(t, 0.0, lca.ConstructionImpacts()["EP"])
}

func TestAddOtherItem(t *testing.T) {
	f := newFixture(t)
	lca := f.newLCA(t, 48)

	// quantity already in the functional unit: stored bit-identical
	require.NoError(t, lca.AddOtherItemID("Electricity", 1234.5678, "kWh"))
	assert.Equal(t, 1234.5678, lca.OtherItems()["Electricity"])

	// converted quantity: 2 MWh = 2000 kWh
	require.NoError(t, lca.AddOtherItemID("Electricity", 2, "MWh"))
	assert.Equal(t, 2000.0, lca.OtherItems()["Electricity"])
	assert.Equal(t, 1000.0, lca.OtherImpacts()["GWP"])
}

func TestAddOtherItemErrors(t *testing.T) {
	f := newFixture(t)
	lca := f.newLCA(t, 48)

	// unknown item id
	err := lca.AddOtherItemID("Electricty", 10, "")
	require.Error(t, err)
	notFound := new(qsdsan.ItemNotFoundError)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Electricity", notFound.Suggestion)

	// unit not convertible to the functional unit
	err = lca.AddOtherItemID("Electricity", 10, "kg")
	require.Error(t, err)
	convErr := new(units.ConversionError)
	assert.ErrorAs(t, err, &convErr)

	assert.Error(t, lca.AddOtherItem(nil, 10, ""))
}

func TestNewAppliesOptions(t *testing.T) {
	f := newFixture(t)

	lca, err := qsdsan.New(f.system, 2,
		qsdsan.WithRegistry(f.registry),
		qsdsan.WithLifeTimeUnit("d"),
		qsdsan.WithOtherItemIn("Electricity", 1, "MWh"),
	)
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, lca.LifeTime())
	assert.Equal(t, 1000.0, lca.OtherItems()["Electricity"])
}

func TestNewErrors(t *testing.T) {
	f := newFixture(t)

	_, err := qsdsan.New(nil, 48)
	assert.Error(t, err)

	_, err = qsdsan.New(f.system, 48, qsdsan.WithLifeTimeUnit("parsec"))
	assert.ErrorIs(t, err, units.ErrUnknownUnit)

	_, err = qsdsan.New(f.system, 48,
		qsdsan.WithRegistry(f.registry),
		qsdsan.WithOtherItem("NotRegistered", 1),
	)
	notFound := new(qsdsan.ItemNotFoundError)
	assert.ErrorAs(t, err, &notFound)
}

func TestLifeTimeRoundTrip(t *testing.T) {
	f := newFixture(t)
	lca := f.newLCA(t, 48)

	require.NoError(t, lca.SetLifeTime(2.5, "yr"))
	assert.Equal(t, 2.5*8760*float64(time.Hour), float64(lca.LifeTime()))

	back, err := lca.LifeTimeIn("yr")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, back, 1e-9)
}

func TestSetSystemReDerivesCachedSets(t *testing.T) {
	f := newFixture(t)
	lca := f.newLCA(t, 48)

	require.Len(t, lca.ConstructionUnits(), 1)
	require.Len(t, lca.TransportationUnits(), 1)
	require.Len(t, lca.WasteStreams(), 1)

	empty := process.NewSystem("empty").AddStream(process.NewStream("water", 1))
	lca.SetSystem(empty)

	assert.Empty(t, lca.ConstructionUnits())
	assert.Empty(t, lca.TransportationUnits())
	assert.Empty(t, lca.WasteStreams())
	assert.Empty(t, lca.Indicators())
	assert.Empty(t, lca.TotalImpacts())

	// switching back restores the full derivation
	lca.SetSystem(f.system)
	assert.Equal(t, qsdsan.Impacts{"GWP": 600}, lca.TotalImpacts())
}

func TestTransportationWithoutIntervalIsSkipped(t *testing.T) {
	f := newFixture(t)

	f.system.AddUnit(process.NewUnit("broken-hauler").AddTransportation(&qsdsan.Transportation{
		Name:    "no-interval",
		Impacts: qsdsan.Impacts{"GWP": 1e9},
	}))

	lca := f.newLCA(t, 48)
	assert.Equal(t, qsdsan.Impacts{"GWP": 20}, lca.TransportationImpacts())
}

func TestInventories(t *testing.T) {
	f := newFixture(t)
	lca := f.newLCA(t, 48)

	construction := lca.ConstructionInventory()
	require.Len(t, construction, 1)
	assert.Equal(t, "concrete", construction[0].Name)

	transportation := lca.TransportationInventory()
	require.Len(t, transportation, 1)
	assert.Equal(t, "truck", transportation[0].Name)

	wasteStream := lca.WasteStreamInventory()
	require.Len(t, wasteStream, 1)
	assert.Equal(t, "Effluent", wasteStream[0].Item.ID)
}

func TestShow(t *testing.T) {
	f := newFixture(t)
	lca := f.newLCA(t, 48)

	var sb strings.Builder
	require.NoError(t, lca.Show(&sb, "d"))
	report := sb.String()

	assert.Contains(t, report, "LCA: sys (life time 2 d)")
	assert.Contains(t, report, "GWP (kg CO2-eq)")
	for _, column := range []string{"Construction", "Transportation", "WasteStream", "Others", "Total"} {
		assert.Contains(t, report, column)
	}
	for _, value := range []string{"100", "20", "480", "600"} {
		assert.Contains(t, report, value)
	}

	assert.Equal(t, "LCA: sys", lca.String())
}

func TestShowWithoutIndicators(t *testing.T) {
	lca, err := qsdsan.New(process.NewSystem("bare"), 48)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, lca.Show(&sb, ""))
	assert.Contains(t, sb.String(), "Impacts:\n None\n")
}
