package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool
	var name string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream realtime events from the server",
		Long: `Connect to the server's websocket endpoint and stream events in real-time.

Events include:
  - available_games: Current roster sent on connect
  - player_update: A player's record changed
  - request_to_join: A game invitation was issued
  - begin_game: A session started
  - turn_played: A move was applied
  - game_won / stale_mate: A session finished
  - opponent_left: The other party disconnected
  - chat_message: Chat traffic

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchEvents(name, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().StringVar(&name, "name", "", "Display name to announce after connecting")

	return cmd
}

// watchEvent is one received wire event
type watchEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// wireEnvelope mirrors the server's websocket frame format
type wireEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func watchEvents(name string, jsonOutput bool) error {
	wsURL, err := client.WebsocketURL()
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if !jsonOutput {
		fmt.Printf("Connected to %s\n", wsURL)
	}

	// Announce a display name so the watcher shows up usefully in rosters
	if name != "" {
		payload, _ := json.Marshal(map[string]string{"name": name})
		if err := conn.WriteJSON(wireEnvelope{Event: "updatePlayerName", Data: payload}); err != nil {
			return fmt.Errorf("failed to set name: %w", err)
		}
	}

	// Close the socket on interrupt; the read loop then unblocks
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	for {
		var env wireEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}

		ev := watchEvent{Time: time.Now(), Event: env.Event, Data: env.Data}
		if jsonOutput {
			line, _ := json.Marshal(ev)
			fmt.Println(string(line))
		} else {
			fmt.Printf("[%s] %s %s\n", ev.Time.Format("15:04:05"), ev.Event, string(ev.Data))
		}
	}
}
