package layer

// StartSentinel is the line type assumed before the first line of a layer so
// the shader treats that line as the start of an extrusion.
const StartSentinel = MoveCombingType

// DerivePrevLineTypes fills dst with lineTypes shifted right by one, with
// StartSentinel in front and the last entry dropped. dst is reallocated when
// its capacity is too small; the result always has len(lineTypes).
func DerivePrevLineTypes(dst, lineTypes []float32) []float32 {
	n := len(lineTypes)
	if dst == nil || cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	if n == 0 {
		return dst
	}
	copy(dst[1:], lineTypes[:n-1])
	dst[0] = float32(StartSentinel)
	return dst
}
