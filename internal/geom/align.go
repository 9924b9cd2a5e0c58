package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultFloorZMax is the |Z| band (metres) used to select floor candidate
// points for plane fitting.
const DefaultFloorZMax = 0.1

// minFloorCandidates is the smallest candidate set that defines a plane.
const minFloorCandidates = 3

// axisEpsilon is the rotation-axis magnitude below which the cloud is
// treated as already aligned.
const axisEpsilon = 1e-6

// AlignFloor rotates the point cloud so the dominant floor plane becomes
// horizontal. Floor candidates are points with |Z| < floorZMax; the plane
// normal is the smallest-singular-value direction of the centred candidate
// set, oriented to have non-negative Z. The rotation (Rodrigues' formula
// about the candidate centroid) maps that normal onto the +Z axis.
//
// Degenerate inputs are no-ops, not errors: fewer than three candidates, or
// a cloud that is already aligned, returns the input slice unchanged.
func AlignFloor(cloud []Point, floorZMax float64) []Point {
	var floor []Point
	for _, p := range cloud {
		if math.Abs(p.Z) < floorZMax {
			floor = append(floor, p)
		}
	}
	if len(floor) < minFloorCandidates {
		return cloud
	}

	var cx, cy, cz float64
	for _, p := range floor {
		cx += p.X
		cy += p.Y
		cz += p.Z
	}
	n := float64(len(floor))
	cx, cy, cz = cx/n, cy/n, cz/n

	// Plane fit: SVD of the centred candidate matrix. Singular values come
	// back in decreasing order, so the normal is the last right-singular
	// vector.
	data := make([]float64, 0, len(floor)*3)
	for _, p := range floor {
		data = append(data, p.X-cx, p.Y-cy, p.Z-cz)
	}
	centred := mat.NewDense(len(floor), 3, data)

	var svd mat.SVD
	if !svd.Factorize(centred, mat.SVDThinV) {
		return cloud
	}
	var v mat.Dense
	svd.VTo(&v)
	nx, ny, nz := v.At(0, 2), v.At(1, 2), v.At(2, 2)

	// Orient the normal upward.
	if nz < 0 {
		nx, ny, nz = -nx, -ny, -nz
	}

	// Rotation axis = normal × (0,0,1) = (ny, -nx, 0).
	ax, ay := ny, -nx
	axisNorm := math.Hypot(ax, ay)
	if axisNorm < axisEpsilon {
		return cloud
	}
	ax /= axisNorm
	ay /= axisNorm

	dot := nz
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	angle := math.Acos(dot)

	r := rodrigues(ax, ay, 0, angle)

	out := make([]Point, len(cloud))
	for i, p := range cloud {
		x, y, z := p.X-cx, p.Y-cy, p.Z-cz
		out[i] = Point{
			X: r[0][0]*x + r[0][1]*y + r[0][2]*z + cx,
			Y: r[1][0]*x + r[1][1]*y + r[1][2]*z + cy,
			Z: r[2][0]*x + r[2][1]*y + r[2][2]*z + cz,
		}
	}
	return out
}

// rodrigues builds the rotation matrix R = I + sin(θ)K + (1-cos θ)K² for a
// unit axis (ax, ay, az), with K the skew-symmetric cross-product matrix.
func rodrigues(ax, ay, az, angle float64) [3][3]float64 {
	s := math.Sin(angle)
	c := 1 - math.Cos(angle)

	k := [3][3]float64{
		{0, -az, ay},
		{az, 0, -ax},
		{-ay, ax, 0},
	}

	// K²
	var k2 [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for m := 0; m < 3; m++ {
				k2[i][j] += k[i][m] * k[m][j]
			}
		}
	}

	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = s*k[i][j] + c*k2[i][j]
			if i == j {
				r[i][j]++
			}
		}
	}
	return r
}
