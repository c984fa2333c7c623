package model

// GridSize is the board dimension
const GridSize = 3

// Grid is the 3x3 board. Each cell holds the identity of the participant who
// occupies it; the empty string is the unoccupied sentinel.
type Grid [GridSize][GridSize]ParticipantID

// InBounds reports whether the coordinates address a cell on the grid
func (g Grid) InBounds(row, col int) bool {
	return row >= 0 && row < GridSize && col >= 0 && col < GridSize
}

// IsFull returns true if every cell is occupied
func (g Grid) IsFull() bool {
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			if g[row][col] == "" {
				return false
			}
		}
	}
	return true
}

// OutcomeKind classifies a board evaluation result
type OutcomeKind string

const (
	// OutcomeLive means the game can continue
	OutcomeLive OutcomeKind = "live"
	// OutcomeWon means a participant completed a line
	OutcomeWon OutcomeKind = "won"
	// OutcomeStalemate means the board is full with no winning line
	OutcomeStalemate OutcomeKind = "stalemate"
)

// Outcome is the verdict of a board evaluation. Winner is set only when
// Kind is OutcomeWon and holds the identity that owns the winning line.
type Outcome struct {
	Kind   OutcomeKind
	Winner ParticipantID
}

// IsTerminal reports whether the outcome ends the game
func (o Outcome) IsTerminal() bool {
	return o.Kind != OutcomeLive
}
