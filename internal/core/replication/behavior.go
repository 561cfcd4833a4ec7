package replication

// World geometry. Entities are 16-unit squares placed on a 1280x720
// plane, so positions are clamped to the top-left corner range.
const (
	WorldWidth  = 1280
	WorldHeight = 720
	EntitySize  = 16

	MaxX = WorldWidth - EntitySize
	MaxY = WorldHeight - EntitySize
)

// Movement is the deterministic rule applied to a point entity for each
// routed key command. Positions are clamped to the world bounds rather
// than wrapped.
type Movement struct {
	Step uint16
}

// DefaultMovement moves 8 units per pressed direction per command.
func DefaultMovement() Movement {
	return Movement{Step: 8}
}

// Apply adjusts the entity position by one step per pressed direction,
// clamped to [0, MaxX] x [0, MaxY].
func (m Movement) Apply(cmd *KeyCommand, p *PointEntity) {
	if cmd.Up && p.Y >= m.Step {
		p.Y -= m.Step
	} else if cmd.Up {
		p.Y = 0
	}
	if cmd.Down {
		if y := p.Y + m.Step; y <= MaxY {
			p.Y = y
		} else {
			p.Y = MaxY
		}
	}
	if cmd.Left && p.X >= m.Step {
		p.X -= m.Step
	} else if cmd.Left {
		p.X = 0
	}
	if cmd.Right {
		if x := p.X + m.Step; x <= MaxX {
			p.X = x
		} else {
			p.X = MaxX
		}
	}
}
