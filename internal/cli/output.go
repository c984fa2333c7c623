package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case PlayerList:
		o.printPlayerList(v)
	case Session:
		o.printSession(v)
	case SessionList:
		o.printSessionList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	State       string    `json:"state"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Stalemates  int       `json:"stalemates"`
	ConnectedAt time.Time `json:"connected_at"`
}

// PlayerList response type
type PlayerList struct {
	Participants []Player `json:"participants"`
}

// Tally response type
type Tally struct {
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Stalemates int `json:"stalemates"`
}

// Session response type
type Session struct {
	ID          string           `json:"id"`
	PlayerX     Player           `json:"player_x"`
	PlayerO     Player           `json:"player_o"`
	Board       [3][3]string     `json:"board"`
	CurrentTurn string           `json:"current_turn"`
	Tally       map[string]Tally `json:"tally"`
	Live        bool             `json:"live"`
	State       string           `json:"state"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// SessionList response type
type SessionList struct {
	Sessions []Session `json:"sessions"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Printf("State: %s\n", p.State)
	fmt.Printf("Record: %dW / %dL / %dS\n", p.Wins, p.Losses, p.Stalemates)
	fmt.Printf("Connected: %s\n", p.ConnectedAt.Format(time.RFC3339))
}

func (o *Output) printPlayerList(l PlayerList) {
	fmt.Printf("Players (%d):\n", len(l.Participants))
	for _, p := range l.Participants {
		fmt.Printf("  - %s (%s) [%s] %dW/%dL/%dS\n",
			p.DisplayName, p.ID, p.State, p.Wins, p.Losses, p.Stalemates)
	}
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Session: %s\n", s.ID)
	fmt.Printf("State: %s\n", s.State)
	fmt.Printf("X: %s (%s)\n", s.PlayerX.DisplayName, s.PlayerX.ID)
	fmt.Printf("O: %s (%s)\n", s.PlayerO.DisplayName, s.PlayerO.ID)
	fmt.Printf("Turn: %s\n", s.CurrentTurn)

	fmt.Println("\nBoard:")
	o.printBoard(s)

	if tally, ok := s.Tally["X"]; ok {
		fmt.Printf("\nX tally: %dW/%dL/%dS\n", tally.Wins, tally.Losses, tally.Stalemates)
	}
	if tally, ok := s.Tally["O"]; ok {
		fmt.Printf("O tally: %dW/%dL/%dS\n", tally.Wins, tally.Losses, tally.Stalemates)
	}
}

func (o *Output) printBoard(s Session) {
	mark := func(cell string) string {
		switch cell {
		case "":
			return "."
		case s.PlayerX.ID:
			return "X"
		case s.PlayerO.ID:
			return "O"
		}
		return "?"
	}

	for _, row := range s.Board {
		fmt.Printf("  %s %s %s\n", mark(row[0]), mark(row[1]), mark(row[2]))
	}
}

func (o *Output) printSessionList(l SessionList) {
	fmt.Printf("Sessions (%d):\n", len(l.Sessions))
	for _, s := range l.Sessions {
		fmt.Printf("  - %s [%s] turn: %s\n", s.ID, s.State, s.CurrentTurn)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
