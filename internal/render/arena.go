package render

// Releasable is any GPU object with deferred destruction.
type Releasable interface {
	Release()
}

// ReleaseArena collects transient GPU objects created while encoding a
// frame and releases them together once the frame is submitted.
// Geometry providers allocate through it so per-frame buffers never
// outlive the frame by accident.
type ReleaseArena struct {
	items []Releasable
}

// Track registers an object for release and returns it.
func (a *ReleaseArena) Track(r Releasable) Releasable {
	a.items = append(a.items, r)
	return r
}

// Release frees every tracked object in reverse creation order.
func (a *ReleaseArena) Release() {
	for i := len(a.items) - 1; i >= 0; i-- {
		a.items[i].Release()
	}
	a.items = a.items[:0]
}
