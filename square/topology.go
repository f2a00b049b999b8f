package square

// Direction is one of the four diagonal directions, named from White's point of view.
type Direction uint8

const (
	NorthEast Direction = iota
	NorthWest
	SouthEast
	SouthWest
)

// Directions lists all diagonal directions in a fixed order.
var Directions = [4]Direction{NorthEast, NorthWest, SouthEast, SouthWest}

var (
	neighbors [Count + 1][4]Square
	rays      [Count + 1][4][]Square

	dRow = [4]int{NorthEast: 1, NorthWest: 1, SouthEast: -1, SouthWest: -1}
	dCol = [4]int{NorthEast: 1, NorthWest: -1, SouthEast: 1, SouthWest: -1}
)

func init() {
	for s := Min; s <= Max; s++ {
		for _, d := range Directions {
			var ray []Square
			r, c := s.Row()+dRow[d], s.Col()+dCol[d]
			for next := FromCoord(r, c); next != None; next = FromCoord(r, c) {
				ray = append(ray, next)
				r, c = r+dRow[d], c+dCol[d]
			}
			rays[s][d] = ray
			if len(ray) > 0 {
				neighbors[s][d] = ray[0]
			}
		}
	}
}

func (d Direction) String() string {
	switch d {
	case NorthEast:
		return "NE"
	case NorthWest:
		return "NW"
	case SouthEast:
		return "SE"
	case SouthWest:
		return "SW"
	default:
		return ""
	}
}

func (d Direction) Opposite() Direction {
	switch d {
	case NorthEast:
		return SouthWest
	case NorthWest:
		return SouthEast
	case SouthEast:
		return NorthWest
	default:
		return NorthEast
	}
}

// IsNorth reports whether the direction moves towards row 9 (Black's edge).
func (d Direction) IsNorth() bool {
	return d == NorthEast || d == NorthWest
}

// Neighbor returns the adjacent square in direction d, or None at the edge.
func (s Square) Neighbor(d Direction) Square {
	if !s.IsValid() {
		return None
	}
	return neighbors[s][d]
}

// Ray returns the ordered squares along direction d, nearest first.
// The returned slice is shared and must not be modified.
func (s Square) Ray(d Direction) []Square {
	if !s.IsValid() {
		return nil
	}
	return rays[s][d]
}

// DirectionTo returns the direction and distance from s to t when both share a
// diagonal.
func (s Square) DirectionTo(t Square) (Direction, int, bool) {
	if !s.IsValid() || !t.IsValid() || s == t {
		return 0, 0, false
	}
	for _, d := range Directions {
		for i, sq := range rays[s][d] {
			if sq == t {
				return d, i + 1, true
			}
		}
	}
	return 0, 0, false
}

// CentreDistance returns the ring index of s counted from the centre: 0 on the
// central squares, 4 on the board edge.
func (s Square) CentreDistance() int {
	r, c := s.Row(), s.Col()
	dr, dc := abs(2*r-(BoardSize-1)), abs(2*c-(BoardSize-1))
	return (max(dr, dc) - 1) / 2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
