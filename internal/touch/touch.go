// Package touch reduces a set of concurrent contact points to a single
// edge-triggered presence signal over one or more detection regions.
package touch

import (
	"math"
)

// Point is a contact position on the touch surface.
type Point struct {
	X float64
	Y float64
}

// Region is an area of the surface that counts toward presence.
type Region interface {
	Contains(p Point) bool
}

// Circle is a circular detection region.
type Circle struct {
	Center Point
	Radius float64
}

func (c Circle) Contains(p Point) bool {
	return math.Hypot(p.X-c.Center.X, p.Y-c.Center.Y) <= c.Radius
}

// FullSurface treats the entire surface as the detection region.
type FullSurface struct{}

func (FullSurface) Contains(Point) bool {
	return true
}

// Detector tracks active contacts and computes whether any of them falls
// inside any active region. All methods report a change only when the
// presence boolean differs from the previously computed value, so rapid
// add/remove of contacts never produces duplicate start/stop signals
// downstream.
type Detector struct {
	contacts map[int]Point
	regions  []Region
	present  bool
}

// NewDetector returns a detector over the given regions. With no regions,
// presence is always false.
func NewDetector(regions ...Region) *Detector {
	return &Detector{
		contacts: make(map[int]Point),
		regions:  regions,
	}
}

// SetRegions replaces the active regions, e.g. after a surface resize, and
// recomputes presence against the current contacts.
func (d *Detector) SetRegions(regions ...Region) (changed, present bool) {
	d.regions = regions

	return d.recompute()
}

// Present reports the last computed presence value.
func (d *Detector) Present() bool {
	return d.present
}

// Press registers a new contact or updates an existing one.
func (d *Detector) Press(id int, p Point) (changed, present bool) {
	d.contacts[id] = p

	return d.recompute()
}

// Move updates a contact's position. A move for an untracked contact starts
// tracking it, since the initial press can be lost while the surface is
// unfocused.
func (d *Detector) Move(id int, p Point) (changed, present bool) {
	d.contacts[id] = p

	return d.recompute()
}

// Release removes a contact. Unknown IDs are ignored.
func (d *Detector) Release(id int) (changed, present bool) {
	delete(d.contacts, id)

	return d.recompute()
}

// Cancel removes a contact. A cancelled contact is treated exactly like a
// released one.
func (d *Detector) Cancel(id int) (changed, present bool) {
	return d.Release(id)
}

// Update replaces the entire contact set and recomputes presence.
func (d *Detector) Update(contacts map[int]Point) (changed, present bool) {
	d.contacts = make(map[int]Point, len(contacts))
	for id, p := range contacts {
		d.contacts[id] = p
	}

	return d.recompute()
}

// ForceClear drops all tracked contacts and forces presence to false. It is
// the backgrounding hook: the surface may never deliver a release for a
// contact that was held when the process was suspended.
func (d *Detector) ForceClear() (changed bool) {
	d.contacts = make(map[int]Point)

	changed = d.present
	d.present = false

	return changed
}

func (d *Detector) recompute() (changed, present bool) {
	present = false

	for _, p := range d.contacts {
		for _, r := range d.regions {
			if r.Contains(p) {
				present = true
				break
			}
		}

		if present {
			break
		}
	}

	changed = present != d.present
	d.present = present

	return changed, present
}
