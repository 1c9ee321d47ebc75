// Package rotation rotates points and moment tensors on a sphere.
//
// Coordinates are right-handed with the origin at the centre of the body. The
// z-axis points to the North Pole and the x-axis to latitude 0, longitude 0.
// Rotation axes are given as [x, y, z] in that system and angles in degrees.
// A positive angle rotates clockwise when looking along the axis.
package rotation

import "math"

// Vector is a Cartesian three-vector.
type Vector [3]float64

func (v Vector) Dot(w Vector) float64 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }

func (v Vector) Norm() float64 { return math.Sqrt(v.Dot(v)) }

type matrix [3][3]float64

func (m matrix) apply(v Vector) Vector {
	var out Vector
	for i := range 3 {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}

func (m matrix) mul(n matrix) matrix {
	var out matrix
	for i := range 3 {
		for j := range 3 {
			for k := range 3 {
				out[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return out
}

func (m matrix) transpose() matrix {
	var out matrix
	for i := range 3 {
		for j := range 3 {
			out[i][j] = m[j][i]
		}
	}
	return out
}

func LatToColat(lat float64) float64 { return 90 - lat }

func ColatToLat(colat float64) float64 { return 90 - colat }

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func rad2deg(r float64) float64 { return r * 180 / math.Pi }

// RotateVector rotates v around axis by angle degrees. The axis need not be
// normalized but must not be zero.
func RotateVector(v, axis Vector, angle float64) Vector {
	return rotationMatrix(axis, angle).apply(v)
}

// rotationMatrix follows the Rodrigues formula.
func rotationMatrix(axis Vector, angle float64) matrix {
	rad := deg2rad(angle)
	n := axis.Norm()
	c1, c2, c3 := axis[0]/n, axis[1]/n, axis[2]/n
	c := [3]float64{c1, c2, c3}
	cross := matrix{{0, -c3, c2}, {c3, 0, -c1}, {-c2, c1, 0}}

	cos, sin := math.Cos(rad), math.Sin(rad)
	var m matrix
	for i := range 3 {
		for j := range 3 {
			m[i][j] = (1-cos)*c[i]*c[j] + sin*cross[i][j]
			if i == j {
				m[i][j] += cos
			}
		}
	}
	return m
}

// LatLonRadiusToXYZ converts geographic coordinates to Cartesian ones.
func LatLonRadiusToXYZ(lat, lon, r float64) Vector {
	colat := deg2rad(LatToColat(lat))
	phi := deg2rad(lon)
	return Vector{
		r * math.Sin(colat) * math.Cos(phi),
		r * math.Sin(colat) * math.Sin(phi),
		r * math.Cos(colat),
	}
}

// XYZToLatLonRadius converts Cartesian coordinates to geographic ones.
func XYZToLatLonRadius(v Vector) (lat, lon, r float64) {
	r = v.Norm()
	colat := rad2deg(math.Acos(v[2] / r))
	lon = rad2deg(math.Atan2(v[1], v[0]))
	return ColatToLat(colat), lon, r
}

// RotateLatLon returns the position of (lat, lon) after rotating the sphere
// around axis by angle degrees.
func RotateLatLon(lat, lon float64, axis Vector, angle float64) (float64, float64) {
	rotated := RotateVector(LatLonRadiusToXYZ(lat, lon, 1), axis, angle)
	newLat, newLon, _ := XYZToLatLonRadius(rotated)
	return newLat, newLon
}

// SphericalUnitVectors returns e_theta, e_phi and e_r at (lat, lon).
func SphericalUnitVectors(lat, lon float64) (eTheta, ePhi, eR Vector) {
	colat := deg2rad(LatToColat(lat))
	phi := deg2rad(lon)
	eTheta = Vector{math.Cos(phi) * math.Cos(colat), math.Sin(phi) * math.Cos(colat), -math.Sin(colat)}
	ePhi = Vector{-math.Sin(phi), math.Cos(phi), 0}
	eR = Vector{math.Cos(phi) * math.Sin(colat), math.Sin(phi) * math.Sin(colat), math.Cos(colat)}
	return eTheta, ePhi, eR
}

// transferMatrix rotates a vector located at (lat, lon) and changes its basis
// from the spherical unit vectors there to those at the rotated position.
// The radial component is preserved.
func transferMatrix(lat, lon float64, axis Vector, angle float64) matrix {
	newLat, newLon := RotateLatLon(lat, lon, axis, angle)

	t, p, r := SphericalUnitVectors(lat, lon)
	nt, np, nr := SphericalUnitVectors(newLat, newLon)

	back := rotationMatrix(axis, -angle)
	nt, np, nr = back.apply(nt), back.apply(np), back.apply(nr)

	return matrix{
		{nt.Dot(t), nt.Dot(p), nt.Dot(r)},
		{np.Dot(t), np.Dot(p), np.Dot(r)},
		{nr.Dot(t), nr.Dot(p), nr.Dot(r)},
	}
}

// MomentTensor holds the six independent components in spherical coordinates.
type MomentTensor struct {
	Mrr, Mtt, Mpp, Mrt, Mrp, Mtp float64
}

// RotateMomentTensor rotates a tensor located at (lat, lon) around axis by
// angle degrees and expresses it in the unit vectors of the rotated position.
func RotateMomentTensor(mt MomentTensor, lat, lon float64, axis Vector, angle float64) MomentTensor {
	tm := transferMatrix(lat, lon, axis, angle)
	m := matrix{
		{mt.Mtt, mt.Mtp, mt.Mrt},
		{mt.Mtp, mt.Mpp, mt.Mrp},
		{mt.Mrt, mt.Mrp, mt.Mrr},
	}
	rot := tm.mul(m).mul(tm.transpose())
	return MomentTensor{
		Mrr: rot[2][2],
		Mtt: rot[0][0],
		Mpp: rot[1][1],
		Mrt: rot[0][2],
		Mrp: rot[1][2],
		Mtp: rot[0][1],
	}
}
