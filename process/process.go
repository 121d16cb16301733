// Package process provides an in-memory implementation of the qsdsan process
// graph contracts. It exists so that systems can be assembled by hand for
// assessments, demos and tests without an external simulator.
package process

import (
	"fmt"

	qsdsan "github.com/philthestone/QSDsan"
	"github.com/philthestone/QSDsan/internal/must"
)

// System is a static collection of unit operations and streams.
type System struct {
	id      string
	units   []*Unit
	streams []*Stream
}

func NewSystem(id string) *System {
	return &System{id: id}
}

// AddUnit appends a unit operation and returns the system for chaining.
func (s *System) AddUnit(unit *Unit) *System {
	s.units = append(s.units, unit)
	return s
}

// AddStream appends a stream and returns the system for chaining.
func (s *System) AddStream(stream *Stream) *System {
	s.streams = append(s.streams, stream)
	return s
}

func (s *System) ID() string {
	return s.id
}

func (s *System) Units() []qsdsan.Unit {
	units := make([]qsdsan.Unit, 0, len(s.units))
	for _, unit := range s.units {
		units = append(units, unit)
	}
	return units
}

func (s *System) Streams() []qsdsan.Stream {
	streams := make([]qsdsan.Stream, 0, len(s.streams))
	for _, stream := range s.streams {
		streams = append(streams, stream)
	}
	return streams
}

func (s *System) String() string {
	return fmt.Sprintf("System(%s: %d units, %d streams)", s.id, len(s.units), len(s.streams))
}

// Unit is a unit operation optionally carrying construction and
// transportation activities.
type Unit struct {
	id             string
	construction   []*qsdsan.Construction
	transportation []*qsdsan.Transportation
}

func NewUnit(id string) *Unit {
	return &Unit{id: id}
}

// AddConstruction attaches a one-time construction activity.
func (u *Unit) AddConstruction(activity *qsdsan.Construction) *Unit {
	u.construction = append(u.construction, activity)
	return u
}

// AddTransportation attaches a recurring transportation activity.
func (u *Unit) AddTransportation(activity *qsdsan.Transportation) *Unit {
	u.transportation = append(u.transportation, activity)
	return u
}

func (u *Unit) ID() string {
	return u.id
}

func (u *Unit) Construction() []*qsdsan.Construction {
	return u.construction
}

func (u *Unit) Transportation() []*qsdsan.Transportation {
	return u.transportation
}

// Stream is a material stream with a constant mass flow rate in kg/hr.
type Stream struct {
	id           string
	massFlowRate float64
	impactItem   *qsdsan.StreamImpactItem
}

func NewStream(id string, massFlowRate float64) *Stream {
	must.Assert(massFlowRate >= 0, "stream mass flow rate must not be negative")
	return &Stream{id: id, massFlowRate: massFlowRate}
}

// LinkItem marks the stream impact-bearing by linking an impact item whose
// characterization factors apply per kg of stream mass.
func (s *Stream) LinkItem(item *qsdsan.ImpactItem) *Stream {
	s.impactItem = &qsdsan.StreamImpactItem{Item: item}
	return s
}

func (s *Stream) ID() string {
	return s.id
}

func (s *Stream) ImpactItem() *qsdsan.StreamImpactItem {
	return s.impactItem
}

func (s *Stream) MassFlowRate() float64 {
	return s.massFlowRate
}

// SetMassFlowRate updates the flow rate, e.g. after re-balancing a scenario.
func (s *Stream) SetMassFlowRate(massFlowRate float64) {
	must.Assert(massFlowRate >= 0, "stream mass flow rate must not be negative")
	s.massFlowRate = massFlowRate
}
