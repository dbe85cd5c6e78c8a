package testutil

// FixedTraceID generates the same trace id every time, so command output
// can be compared byte for byte.
//
// FixedTraceID is stateless and safe for concurrent use.
type FixedTraceID struct {
	id string
}

// NewFixedTraceID creates a generator returning id, or "test-trace" when id
// is empty.
func NewFixedTraceID(id string) *FixedTraceID {
	if id == "" {
		id = "test-trace"
	}
	return &FixedTraceID{id: id}
}

// Generate returns the fixed id.
func (g *FixedTraceID) Generate() string {
	return g.id
}
