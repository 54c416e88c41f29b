package calendar

import (
	"sync/atomic"

	"clinic-console/internal/domain/entity"
)

// Scope supplies the caller's visibility. It is consulted every time criteria
// are recomputed, never cached.
type Scope interface {
	CanViewAll() bool
}

// Visibility is a Scope whose value the hosting page can flip at any time.
type Visibility struct {
	canViewAll atomic.Bool
}

// NewVisibility creates a Visibility with the given initial value
func NewVisibility(canViewAll bool) *Visibility {
	v := &Visibility{}
	v.canViewAll.Store(canViewAll)
	return v
}

// CanViewAll reports whether the caller may query every record
func (v *Visibility) CanViewAll() bool {
	return v.canViewAll.Load()
}

// Set stores a new value and reports whether it changed
func (v *Visibility) Set(canViewAll bool) bool {
	return v.canViewAll.Swap(canViewAll) != canViewAll
}

// StripEntityFields is the RBAC gate. Callers limited to their own records
// never get entity-targeting fields past this point, whatever was set before.
// The returned criteria never share memory with c.
func StripEntityFields(c entity.FilterCriteria, canViewAll bool) entity.FilterCriteria {
	out := c.Clone()
	if !canViewAll {
		out.EntityFields = nil
		return out
	}
	if out.EntityFields != nil && out.EntityFields.IsEmpty() {
		out.EntityFields = nil
	}
	return out
}
