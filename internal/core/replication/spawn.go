package replication

import "math/rand"

// SpawnPoint creates a point entity on a random 16-unit grid cell.
// Color cycles by the current user count so consecutive joins get
// distinct colors.
func SpawnPoint(rng *rand.Rand, userCount int) *PointEntity {
	x := uint16(rng.Intn(WorldWidth/EntitySize)) * EntitySize
	y := uint16(rng.Intn(WorldHeight/EntitySize)) * EntitySize

	var color Color
	switch userCount % 3 {
	case 0:
		color = ColorYellow
	case 1:
		color = ColorRed
	default:
		color = ColorBlue
	}

	return &PointEntity{X: x, Y: y, Color: color}
}
