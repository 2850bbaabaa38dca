package pointoverlay

// Matrix4 is a 4x4 transform stored in column-major order, the layout
// GPU APIs expect for a mat4 uniform. Element m[c*4+r] is row r of
// column c.
//
// Matrix4 is a value type: assignment copies, so a per-frame transform
// derived from a cached base never mutates the base.
type Matrix4 [16]float32

// Identity returns the identity transform.
func Identity() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// BaseMatrix returns the device-pixel to clip-space transform for a
// canvas of the given size in physical pixels. Pixel (0,0) maps to
// clip (-1,1) and (width,height) to (1,-1), flipping Y so that the
// world plane's south-growing Y renders top-down. The Z column is
// zeroed: point sprites carry no depth.
func BaseMatrix(widthPx, heightPx int) Matrix4 {
	return Matrix4{
		2 / float32(widthPx), 0, 0, 0,
		0, -2 / float32(heightPx), 0, 0,
		0, 0, 0, 0,
		-1, 1, 0, 1,
	}
}

// Scale scales the X and Y basis columns in place. Equivalent to
// post-multiplying by a scale matrix: a subsequent Translate operates
// in the scaled basis.
func (m *Matrix4) Scale(sx, sy float32) {
	m[0] *= sx
	m[1] *= sx
	m[2] *= sx
	m[3] *= sx
	m[4] *= sy
	m[5] *= sy
	m[6] *= sy
	m[7] *= sy
}

// Translate adds a translation expressed in the matrix's current
// (possibly scaled) basis, post-multiplying by a translation matrix.
// After Scale(s, s), Translate(tx, ty) therefore shifts by s*tx and
// s*ty device pixels.
func (m *Matrix4) Translate(tx, ty float32) {
	m[12] += m[0]*tx + m[4]*ty
	m[13] += m[1]*tx + m[5]*ty
	m[14] += m[2]*tx + m[6]*ty
	m[15] += m[3]*tx + m[7]*ty
}

// TransformPoint applies the transform to a world-plane point and
// returns the resulting clip-space X and Y.
func (m *Matrix4) TransformPoint(p WorldCoord) (x, y float32) {
	x = m[0]*p.X + m[4]*p.Y + m[12]
	y = m[1]*p.X + m[5]*p.Y + m[13]
	return x, y
}

// ViewMatrix builds the complete per-frame transform: the base
// device-pixel matrix scaled by 2^zoom and translated so that topLeft
// lands on pixel (0,0).
func ViewMatrix(base Matrix4, zoomFactor float64, topLeft WorldCoord) Matrix4 {
	m := base
	m.Scale(float32(zoomFactor), float32(zoomFactor))
	m.Translate(-topLeft.X, -topLeft.Y)
	return m
}
