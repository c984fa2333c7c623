package board

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tictacgame-go/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
}

func (s *ServiceSuite) TestEmptyGridIsLive() {
	outcome := s.service.Evaluate(model.Grid{})
	s.Equal(model.OutcomeLive, outcome.Kind)
	s.False(outcome.IsTerminal())
}

func (s *ServiceSuite) TestPartialGridIsLive() {
	grid := model.Grid{}
	grid[0][0] = "alice"
	grid[1][1] = "bob"

	outcome := s.service.Evaluate(grid)
	s.Equal(model.OutcomeLive, outcome.Kind)
}

func (s *ServiceSuite) TestRowWin() {
	for row := 0; row < model.GridSize; row++ {
		grid := model.Grid{}
		for col := 0; col < model.GridSize; col++ {
			grid[row][col] = "alice"
		}

		outcome := s.service.Evaluate(grid)
		s.Equal(model.OutcomeWon, outcome.Kind)
		s.Equal(model.ParticipantID("alice"), outcome.Winner)
	}
}

func (s *ServiceSuite) TestColumnWin() {
	for col := 0; col < model.GridSize; col++ {
		grid := model.Grid{}
		for row := 0; row < model.GridSize; row++ {
			grid[row][col] = "bob"
		}

		outcome := s.service.Evaluate(grid)
		s.Equal(model.OutcomeWon, outcome.Kind)
		s.Equal(model.ParticipantID("bob"), outcome.Winner)
	}
}

func (s *ServiceSuite) TestDiagonalWin() {
	grid := model.Grid{}
	grid[0][0] = "alice"
	grid[1][1] = "alice"
	grid[2][2] = "alice"

	outcome := s.service.Evaluate(grid)
	s.Equal(model.OutcomeWon, outcome.Kind)
	s.Equal(model.ParticipantID("alice"), outcome.Winner)
}

func (s *ServiceSuite) TestAntiDiagonalWin() {
	grid := model.Grid{}
	grid[0][2] = "bob"
	grid[1][1] = "bob"
	grid[2][0] = "bob"

	outcome := s.service.Evaluate(grid)
	s.Equal(model.OutcomeWon, outcome.Kind)
	s.Equal(model.ParticipantID("bob"), outcome.Winner)
}

func (s *ServiceSuite) TestMixedLineIsNotAWin() {
	grid := model.Grid{}
	grid[0][0] = "alice"
	grid[0][1] = "bob"
	grid[0][2] = "alice"

	outcome := s.service.Evaluate(grid)
	s.Equal(model.OutcomeLive, outcome.Kind)
}

func (s *ServiceSuite) TestStalemate() {
	// a b a
	// a b b
	// b a a
	grid := model.Grid{
		{"alice", "bob", "alice"},
		{"alice", "bob", "bob"},
		{"bob", "alice", "alice"},
	}

	outcome := s.service.Evaluate(grid)
	s.Equal(model.OutcomeStalemate, outcome.Kind)
	s.Equal(model.ParticipantID(""), outcome.Winner)
}

func (s *ServiceSuite) TestFullGridWithLineIsAWin() {
	// A full grid that still contains a completed line counts as a win,
	// not a stalemate
	grid := model.Grid{
		{"alice", "alice", "alice"},
		{"bob", "bob", "alice"},
		{"bob", "alice", "bob"},
	}

	outcome := s.service.Evaluate(grid)
	s.Equal(model.OutcomeWon, outcome.Kind)
	s.Equal(model.ParticipantID("alice"), outcome.Winner)
}

func (s *ServiceSuite) TestEvaluateIsRepeatable() {
	grid := model.Grid{}
	grid[0][0] = "alice"
	grid[0][1] = "alice"
	grid[0][2] = "alice"

	first := s.service.Evaluate(grid)
	second := s.service.Evaluate(grid)
	s.Equal(first, second)
}
