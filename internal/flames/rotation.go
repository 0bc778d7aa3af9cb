package flames

import "math"

const degToRad = math.Pi / 180

// rotation about the X axis (camera pitch)
func rotX(a Real) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	M := I3()
	M.M[1][1], M.M[1][2] = c, -s
	M.M[2][1], M.M[2][2] = s, c
	return M
}

// rotation about the Z axis (camera yaw and roll)
func rotZ(a Real) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	M := I3()
	M.M[0][0], M.M[0][1] = c, -s
	M.M[1][0], M.M[1][1] = s, c
	return M
}

// cameraRotation composes yaw (applied first, negated so positive yaw turns
// the view to the right) and pitch, both in degrees.
func cameraRotation(pitchDeg, yawDeg Real) Mat3 {
	return rotX(pitchDeg * degToRad).Mul(rotZ(-yawDeg * degToRad))
}
