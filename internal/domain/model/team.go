package model

// Team is one of the two caps colors in the pool.
type Team string

// Teams.
const (
	White Team = "white"
	Blue  Team = "blue"
)

// Teams lists both sides in scoreboard order.
var Teams = []Team{White, Blue}

// Valid reports whether t is white or blue.
func (t Team) Valid() bool {
	return t == White || t == Blue
}
