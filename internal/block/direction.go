package block

// Direction identifies one of the six cube faces.
type Direction uint8

const (
	North Direction = iota // -Z
	South                  // +Z
	East                   // +X
	West                   // -X
	Up                     // +Y
	Down                   // -Y

	DirectionCount = 6
)

var directionNames = [DirectionCount]string{"north", "south", "east", "west", "up", "down"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "unknown"
}

func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Up:
		return Down
	default:
		return Up
	}
}

// Normal returns the outward unit normal of the face.
func (d Direction) Normal() [3]float32 {
	switch d {
	case North:
		return [3]float32{0, 0, -1}
	case South:
		return [3]float32{0, 0, 1}
	case East:
		return [3]float32{1, 0, 0}
	case West:
		return [3]float32{-1, 0, 0}
	case Up:
		return [3]float32{0, 1, 0}
	default:
		return [3]float32{0, -1, 0}
	}
}

// Offset returns the integer block offset toward the neighbor in this
// direction.
func (d Direction) Offset() (int32, int32, int32) {
	switch d {
	case North:
		return 0, 0, -1
	case South:
		return 0, 0, 1
	case East:
		return 1, 0, 0
	case West:
		return -1, 0, 0
	case Up:
		return 0, 1, 0
	default:
		return 0, -1, 0
	}
}

func ParseDirection(s string) (Direction, bool) {
	for i, name := range directionNames {
		if s == name {
			return Direction(i), true
		}
	}
	return 0, false
}
