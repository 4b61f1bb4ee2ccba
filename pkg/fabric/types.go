package fabric

// VNodeId identifies a virtual node: the unit of replication and addressing
// in the fabric. Carried unchanged end-to-end.
type VNodeId uint16

// NodeId identifies a physical cluster member. Carried unchanged end-to-end.
type NodeId uint64

// Cookie correlates a request with its response(s) at the receiver. It is
// opaque to the protocol and must be echoed verbatim on replies and
// continuations.
type Cookie uint64

// VersionVector is the causal-context type owned by the synchronization
// collaborator; version vectors are out of this core's scope. This package
// only needs to merge, compare, and carry one across the wire, so it stays
// opaque beyond that.
type VersionVector interface {
	// Merge returns the vector that dominates both v and other.
	Merge(other VersionVector) VersionVector
	// Descends reports whether v already reflects everything other does.
	Descends(other VersionVector) bool
	// MarshalBinary serializes v for the wire; the format is owned by the
	// collaborator, not by this package.
	MarshalBinary() ([]byte, error)
}

// Cube is the opaque, mergeable, per-key conflict container owned by the
// conflict-resolution collaborator. This package treats it as an opaque
// serializable value and never inspects its contents.
type Cube interface {
	MarshalBinary() ([]byte, error)
}

// RawCube is a minimal Cube that carries its encoded bytes verbatim. It
// exists so this package's own tests can exercise the wire codec without
// depending on the real conflict-container implementation; real
// deployments supply their own Cube type and a Codec that knows how to
// decode it (see DefaultCodec).
type RawCube []byte

func (c RawCube) MarshalBinary() ([]byte, error) { return []byte(c), nil }

// RawVersionVector is the VersionVector analogue of RawCube: a test/default
// placeholder, not a real causal-context implementation. Its Merge keeps
// whichever payload is longer, which is not a meaningful merge policy —
// only a stand-in good enough to exercise message plumbing.
type RawVersionVector []byte

func (v RawVersionVector) MarshalBinary() ([]byte, error) { return []byte(v), nil }

func (v RawVersionVector) Merge(other VersionVector) VersionVector {
	if o, ok := other.(RawVersionVector); ok && len(o) > len(v) {
		return o
	}
	return v
}

func (v RawVersionVector) Descends(other VersionVector) bool {
	o, ok := other.(RawVersionVector)
	return ok && len(v) >= len(o)
}
