package flames

// Vector3 is a position or direction in flame space.
type Vector3 struct {
	X, Y, Z Real
}
