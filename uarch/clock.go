package uarch

// ClkLevel is one of the two alternating clock phases driving the pair of
// overlapped data paths.
type ClkLevel uint8

const (
	ClkFalling ClkLevel = iota
	ClkRising
)

// Inv returns the opposite level.
func (l ClkLevel) Inv() ClkLevel {
	if l == ClkFalling {
		return ClkRising
	}
	return ClkFalling
}

// Clock tracks the current level and a tick count, flipping level on every
// Alt call.
type Clock struct {
	level ClkLevel
	count uint64
}

// NewClock returns a clock starting at ClkFalling.
func NewClock() *Clock {
	return &Clock{level: ClkFalling}
}

// Level returns the current level.
func (c *Clock) Level() ClkLevel { return c.level }

// Count returns the number of Alt calls so far.
func (c *Clock) Count() uint64 { return c.count }

// Alt flips the level and increments the tick count.
func (c *Clock) Alt() {
	c.count++
	c.level = c.level.Inv()
}
