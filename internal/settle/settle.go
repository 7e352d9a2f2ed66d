// Package settle keeps a value just written to a controller from being
// undone by a report that left the controller before the write arrived.
//
// Values are compared in their wire form, so a back-end whose wire is
// narrower than int compares the narrowed values.
package settle

import "time"

// Window bounds how long after a write a report of an earlier value is
// treated as stale. After that the controller is believed.
const Window = 2 * time.Second

// Field tracks one cached field. The zero value has nothing pending.
type Field struct {
	stale []int64
	since time.Time
}

// Written records that the cache moved away from old at now.
func (f *Field) Written(old int64, now time.Time) {
	f.stale = append(f.stale, old)
	f.since = now
}

func (f *Field) Pending() bool {
	return len(f.stale) > 0
}

// Accept reports whether a report of v, arriving at now, should replace a
// cached value whose wire form is cur. A report equal to cur confirms the
// write and returns false, since there is nothing to replace.
func (f *Field) Accept(v, cur int64, now time.Time) bool {
	if v == cur {
		f.stale = nil
		return false
	}
	if len(f.stale) > 0 && now.Sub(f.since) < Window {
		for _, s := range f.stale {
			if s == v {
				return false
			}
		}
	}
	f.stale = nil
	return true
}
