package blend

// mulDiv255 multiplies two byte values and divides by 255 with rounding.
//
// Formula: (a * b + 127) / 255
//
// Rounding keeps source-over results exact at the alpha extremes: any
// source over an opaque destination stays at 255.
func mulDiv255(a, b byte) byte {
	return byte((uint16(a)*uint16(b) + 127) / 255)
}

// addDiv255 adds two byte values with clamping to 255.
func addDiv255(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

// inv255 computes 255 - x (inverse alpha).
func inv255(x byte) byte {
	return 255 - x
}
