// Package qsdsan computes life cycle assessment (LCA) impact totals for an
// engineered process system made of unit operations and material streams.
//
// The process graph itself (unit connectivity, stream simulation) lives
// outside this module. The engine consumes it through the read-only System,
// Unit and Stream contracts below and aggregates impacts from four sources:
// unit construction, transportation activities, impact-bearing streams and
// ad-hoc "other" items such as purchased electricity.
package qsdsan

// System is the process graph an LCA is conducted for.
type System interface {
	ID() string
	Units() []Unit
	Streams() []Stream
}

// Unit is a single unit operation. A unit with no construction or
// transportation activities contributes nothing to the assessment.
type Unit interface {
	ID() string
	Construction() []*Construction
	Transportation() []*Transportation
}

// Stream is a material stream between unit operations. ImpactItem returns nil
// when the stream carries no environmental burden. MassFlowRate is expressed
// in kg/hr.
type Stream interface {
	ID() string
	ImpactItem() *StreamImpactItem
	MassFlowRate() float64
}
