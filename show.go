package qsdsan

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"
)

// Show renders the life time in the requested display unit ("yr" when empty)
// followed by a per-indicator table of the four impact categories and their
// total, each in the indicator's reporting unit.
func (lca *LCA) Show(w io.Writer, lifeTimeUnit string) error {
	if lifeTimeUnit == "" {
		lifeTimeUnit = "yr"
	}
	lifeTime, err := lca.LifeTimeIn(lifeTimeUnit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "LCA: %s (life time %s %s)\n", lca.system.ID(), formatNumber(lifeTime), lifeTimeUnit)
	fmt.Fprintln(w, "Impacts:")

	indicators := lca.Indicators()
	if len(indicators) == 0 {
		fmt.Fprintln(w, " None")
		return nil
	}

	construction := lca.ConstructionImpacts()
	transportation := lca.TransportationImpacts()
	wasteStream := lca.WasteStreamImpacts()
	others := lca.OtherImpacts()
	total := lca.TotalImpacts()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tConstruction\tTransportation\tWasteStream\tOthers\tTotal")
	for _, id := range indicators {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			lca.indicatorLabel(id),
			formatNumber(construction[id]),
			formatNumber(transportation[id]),
			formatNumber(wasteStream[id]),
			formatNumber(others[id]),
			formatNumber(total[id]),
		)
	}
	return tw.Flush()
}

func (lca *LCA) indicatorLabel(id string) string {
	if indicator := lca.registry.Indicator(id); indicator != nil && indicator.Unit != "" {
		return id + " (" + indicator.Unit + ")"
	}
	return id
}

func (lca *LCA) String() string {
	return fmt.Sprintf("LCA: %s", lca.system.ID())
}

// formatNumber keeps report cells compact: plain notation with a few
// significant digits for ordinary magnitudes, scientific notation otherwise.
func formatNumber(v float64) string {
	abs := math.Abs(v)
	if v != 0 && (abs < 1e-2 || abs >= 1e6) {
		return strconv.FormatFloat(v, 'e', 2, 64)
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
