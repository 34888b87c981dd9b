package model

// TypeRegistry owns the statistic types declared in a file header together
// with the sequence metadata from the seq-specs directive. It is populated
// once at file-open time and cleared on reload.
type TypeRegistry struct {
	types map[int]*TypeDescriptor
	order []int

	// Declared frame geometry from seq-specs. Zero means undeclared.
	FrameWidth  int
	FrameHeight int

	// FrameRate from seq-specs, zero if undeclared or non-positive.
	FrameRate float64

	SequenceName string
	LayerID      string
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types: make(map[int]*TypeDescriptor),
	}
}

// ClearTypes removes all declared types and sequence metadata.
func (r *TypeRegistry) ClearTypes() {
	r.types = make(map[int]*TypeDescriptor)
	r.order = r.order[:0]
	r.FrameWidth = 0
	r.FrameHeight = 0
	r.FrameRate = 0
	r.SequenceName = ""
	r.LayerID = ""
}

// AddType registers a descriptor. If the ID was already declared the new
// descriptor wins and keeps the original declaration position.
func (r *TypeRegistry) AddType(t *TypeDescriptor) {
	if _, exists := r.types[t.TypeID]; !exists {
		r.order = append(r.order, t.TypeID)
	}
	r.types[t.TypeID] = t
}

// GetType returns the descriptor for the given ID, or nil if undeclared.
func (r *TypeRegistry) GetType(id int) *TypeDescriptor {
	return r.types[id]
}

// Types returns all descriptors in declaration order.
func (r *TypeRegistry) Types() []*TypeDescriptor {
	out := make([]*TypeDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.types[id])
	}
	return out
}

// Len returns the number of declared types.
func (r *TypeRegistry) Len() int {
	return len(r.types)
}

// DeclaredFrameSize returns the frame dimensions from seq-specs. Both are
// zero when the header did not declare a frame size.
func (r *TypeRegistry) DeclaredFrameSize() (w, h int) {
	return r.FrameWidth, r.FrameHeight
}
