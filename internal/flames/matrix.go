package flames

// 3×3 matrix (row-major)
type Mat3 struct {
	M [3][3]Real
}

func I3() Mat3 {
	return Mat3{M: [3][3]Real{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}}
}

func (A Mat3) Mul(B Mat3) Mat3 {
	var R Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += A.M[r][k] * B.M[k][c]
			}
			R.M[r][c] = sum
		}
	}
	return R
}

func (A Mat3) MulVec(v Vector3) Vector3 {
	return Vector3{
		A.M[0][0]*v.X + A.M[0][1]*v.Y + A.M[0][2]*v.Z,
		A.M[1][0]*v.X + A.M[1][1]*v.Y + A.M[1][2]*v.Z,
		A.M[2][0]*v.X + A.M[2][1]*v.Y + A.M[2][2]*v.Z,
	}
}
