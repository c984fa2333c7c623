package board

import (
	"github.com/mcoot/tictacgame-go/internal/model"
)

// lines enumerates every potential winning line in evaluation order:
// rows top to bottom, columns left to right, then the two diagonals.
var lines = [][model.GridSize][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Service evaluates grids for terminal conditions. It is stateless and
// side-effect free; Evaluate may be called repeatedly on the same grid.
type Service struct{}

// New creates a new board evaluation service
func New() *Service {
	return &Service{}
}

// Evaluate checks the grid for a winner or stalemate. The first completed
// line found in scan order decides the winner; a full grid with no line is
// a stalemate; anything else is live.
func (s *Service) Evaluate(grid model.Grid) model.Outcome {
	for _, line := range lines {
		a := grid[line[0][0]][line[0][1]]
		b := grid[line[1][0]][line[1][1]]
		c := grid[line[2][0]][line[2][1]]
		if a != "" && a == b && b == c {
			return model.Outcome{Kind: model.OutcomeWon, Winner: a}
		}
	}

	if grid.IsFull() {
		return model.Outcome{Kind: model.OutcomeStalemate}
	}

	return model.Outcome{Kind: model.OutcomeLive}
}
