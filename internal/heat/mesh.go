package heat

// MinMeshPoints is the smallest grid that leaves two interior unknowns,
// which the fixed-flux stencil needs.
const MinMeshPoints = 4

// Mesh is the uniform grid on [0, 1], boundary nodes included.
type Mesh struct {
	points int
	dx     float64
	dxInv2 float64
}

func NewMesh(points int) (Mesh, error) {
	if points < MinMeshPoints {
		return Mesh{}, &ParameterError{Name: "mesh_points", Value: points, Reason: "must be at least 4"}
	}
	dx := 1.0 / float64(points-1)
	return Mesh{points: points, dx: dx, dxInv2: 1 / (dx * dx)}, nil
}

// Points is the number of nodes J including both boundaries.
func (m Mesh) Points() int { return m.points }

// Interior is the number of integrated unknowns J-2.
func (m Mesh) Interior() int { return m.points - 2 }

func (m Mesh) DeltaX() float64     { return m.dx }
func (m Mesh) DeltaXInv2() float64 { return m.dxInv2 }

// X returns the position of node i, 0 <= i < Points.
func (m Mesh) X(i int) float64 {
	if i == m.points-1 {
		return 1
	}
	return float64(i) * m.dx
}

// InteriorX returns the position of interior unknown i.
func (m Mesh) InteriorX(i int) float64 { return m.X(i + 1) }
