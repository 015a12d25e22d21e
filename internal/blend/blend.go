// Package blend resolves the two blend states the quad pipeline can carry
// into per-texel operators for the software device.
//
// Texels are premultiplied RGBA bytes. Source replaces the destination;
// SourceOver is the Porter-Duff "over" operator, S + D*(1-Sa).
package blend

// BlendMode selects a blend operator.
type BlendMode uint8

const (
	// BlendSource writes the source texel as is.
	BlendSource BlendMode = iota
	// BlendSourceOver composites the source over the destination.
	BlendSourceOver
)

// String returns the mode name.
func (m BlendMode) String() string {
	switch m {
	case BlendSource:
		return "source"
	case BlendSourceOver:
		return "source-over"
	default:
		return "unknown"
	}
}

// BlendFunc combines a premultiplied source texel with a premultiplied
// destination texel.
type BlendFunc func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

// GetBlendFunc returns the operator for mode. Unknown modes composite
// over, the pipeline default.
func GetBlendFunc(mode BlendMode) BlendFunc {
	if mode == BlendSource {
		return replace
	}
	return over
}

func replace(sr, sg, sb, sa, _, _, _, _ byte) (r, g, b, a byte) {
	return sr, sg, sb, sa
}

func over(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte) {
	switch sa {
	case 255:
		return sr, sg, sb, sa
	case 0:
		// Premultiplied: zero alpha carries no color either.
		return dr, dg, db, da
	}
	k := inv255(sa)
	return addDiv255(sr, mulDiv255(dr, k)),
		addDiv255(sg, mulDiv255(dg, k)),
		addDiv255(sb, mulDiv255(db, k)),
		addDiv255(sa, mulDiv255(da, k))
}
