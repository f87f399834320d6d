package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/fairwave/backend/internal/game"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Golf-specific message data types
type ShotData struct {
	PressX   float64 `json:"press_x"`
	PressY   float64 `json:"press_y"`
	ReleaseX float64 `json:"release_x"`
	ReleaseY float64 `json:"release_y"`
	Instant  bool    `json:"instant,omitempty"`
}

func (d ShotData) gesture() game.ShotGesture {
	return game.ShotGesture{PressX: d.PressX, PressY: d.PressY, ReleaseX: d.ReleaseX, ReleaseY: d.ReleaseY}
}

// GameHub is the single hub for all rounds.
var GameHub *Hub

func init() {
	GameHub = NewHub()
	go runGameHub(GameHub)
}

// HandleWebSocket handles WebSocket connections for golf rounds.
func HandleWebSocket(c *gin.Context) {
	roundToken := c.Query("token")
	playerToken := c.Query("pt")

	if roundToken == "" || playerToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and pt required"})
		return
	}

	r, err := game.Manager.GetRoundByToken(roundToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "round not found"})
		return
	}

	if r.Player.PlayerToken != playerToken {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid player token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:       conn,
		playerID:   r.Player.ID,
		roundID:    r.ID,
		roundToken: roundToken,
		send:       make(chan []byte, 256),
	}

	GameHub.register <- client

	go client.writePump()
	go client.readPump()
}

// runGameHub runs the hub with golf round logic.
func runGameHub(h *Hub) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()

			if oldClient, exists := h.clients[client.playerID]; exists {
				log.Printf("[WS] Player %s reconnecting - closing old connection", client.playerID)
				if err := oldClient.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"), time.Now().Add(5*time.Second)); err != nil {
					log.Printf("Error writing close control to old client %s: %v", oldClient.playerID, err)
				}
				oldClient.conn.Close()
				select {
				case <-oldClient.send:
				default:
					close(oldClient.send)
				}
				delete(h.clients, client.playerID)
				if room, exists := h.roundRooms[oldClient.roundID]; exists {
					delete(room, client.playerID)
				}
			}

			h.clients[client.playerID] = client
			if _, exists := h.roundRooms[client.roundID]; !exists {
				h.roundRooms[client.roundID] = make(map[string]*Client)
			}
			h.roundRooms[client.roundID][client.playerID] = client
			h.mu.Unlock()

			log.Printf("[WS] Player %s connected to round %s", client.playerID, client.roundID)

			r, err := game.Manager.GetRoundByToken(client.roundToken)
			if err != nil {
				log.Printf("[WS] Round not found for token %s: %v", client.roundToken, err)
				continue
			}

			r.SetPlayerConnected(client.playerID, true)
			r.MarkPlayerShowedUp(client.playerID)
			game.Manager.TouchActivity(client.roundToken, client.playerID)

			if r.Status == game.StatusWaiting {
				if err := r.Initialize(); err != nil {
					log.Printf("[WS] Init failed for round %s: %v", r.ID, err)
					client.sendError("Failed to start round")
					continue
				}
				r.SaveToRedis()
				h.BroadcastToRound(client.roundID, map[string]interface{}{
					"type":    "round_starting",
					"message": "Tee up!",
				})
			}

			state := r.StateForPlayer(client.playerID)
			state["type"] = "round_state"
			h.SendToPlayer(client.playerID, state)

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.playerID]; ok && cur == client {
				delete(h.clients, client.playerID)
				if room, exists := h.roundRooms[client.roundID]; exists {
					delete(room, client.playerID)
					if len(room) == 0 {
						delete(h.roundRooms, client.roundID)
					}
				}

				log.Printf("[WS] Player %s disconnected from round %s", client.playerID, client.roundID)

				if r, err := game.Manager.GetRoundByToken(client.roundToken); err == nil {
					r.SetPlayerDisconnected(client.playerID)
					r.SaveToRedis()
					game.Manager.StartDisconnectWatch(r)
				}

				select {
				case <-client.send:
				default:
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// readPump reads messages for golf rounds.
func (c *Client) readPump() {
	defer func() {
		GameHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error (unexpected) for player %s: %v", c.playerID, err)
			} else {
				log.Printf("WebSocket read error for player %s: %v", c.playerID, err)
			}
			break
		}

		game.Manager.TouchActivity(c.roundToken, c.playerID)

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes incoming golf round messages.
func (c *Client) handleMessage(msg WSMessage) {
	r, err := game.Manager.GetRoundByToken(c.roundToken)
	if err != nil {
		c.sendError("Round not found")
		return
	}

	switch msg.Type {
	case "take_shot":
		var data ShotData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid shot data")
			return
		}
		if data.Instant {
			c.handleResolveShot(r, data)
		} else {
			c.handleTakeShot(r, data)
		}

	case "preview_shot":
		var data ShotData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid shot data")
			return
		}
		c.handlePreviewShot(r, data)

	case "reset_ball":
		c.handleResetBall(r)

	case "get_state":
		state := r.StateForPlayer(c.playerID)
		state["type"] = "round_state"
		d, _ := json.Marshal(state)
		c.send <- d

	case "abandon":
		c.handleAbandon(r)

	default:
		c.sendError("Unknown message type")
	}
}

// handleTakeShot launches the ball and streams its flight frame by frame.
func (c *Client) handleTakeShot(r *game.GolfRound, data ShotData) {
	strokes, err := r.BeginShot(c.playerID, data.gesture())
	if err != nil {
		c.sendError(err.Error())
		return
	}

	GameHub.BroadcastToRound(c.roundID, map[string]interface{}{
		"type":    "shot_taken",
		"player":  c.playerID,
		"strokes": strokes,
	})

	go c.runShotTicker(r)
}

// runShotTicker advances a live shot in real time and broadcasts each frame.
// The simulation step matches the tick interval, so wall-clock playback and
// simulated time stay in lockstep.
func (c *Client) runShotTicker(r *game.GolfRound) {
	hz := 60
	if cfg := game.Manager; cfg != nil && cfg.GetConfig() != nil && cfg.GetConfig().TickRateHz > 0 {
		hz = cfg.GetConfig().TickRateHz
	}
	dt := 1.0 / float64(hz)

	ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
	defer ticker.Stop()

	deadline := time.Now().Add(45 * time.Second)
	for range ticker.C {
		fr := r.AdvanceShot(dt)

		frame := map[string]interface{}{
			"type":    "ball_frame",
			"ball":    fr.Ball,
			"clock":   fr.Clock,
			"outcome": fr.Outcome,
		}
		GameHub.BroadcastToRound(c.roundID, frame)

		if fr.Done {
			if fr.Resolved != nil {
				c.broadcastShotResult(r, fr.Resolved)
			} else {
				GameHub.BroadcastToRound(c.roundID, map[string]interface{}{
					"type":    "ball_rested",
					"ball":    fr.Ball,
					"outcome": fr.Outcome,
				})
				c.broadcastRoundState(r)
			}
			r.SaveToRedis()
			return
		}
		if time.Now().After(deadline) {
			log.Printf("[WS] Shot ticker for round %s ran past its deadline; stopping", c.roundID)
			return
		}
	}
}

// handleResolveShot resolves a shot instantly and replays it from the trail.
func (c *Client) handleResolveShot(r *game.GolfRound, data ShotData) {
	result, err := r.ResolveShot(c.playerID, data.gesture())
	if err != nil {
		c.sendError(err.Error())
		return
	}

	c.broadcastShotResult(r, result)
	r.SaveToRedis()
}

// handlePreviewShot runs the oracle without committing a stroke.
func (c *Client) handlePreviewShot(r *game.GolfRound, data ShotData) {
	res, err := r.PreviewShot(c.playerID, data.gesture())
	if err != nil {
		c.sendError(err.Error())
		return
	}

	preview := map[string]interface{}{
		"type":     "shot_preview",
		"outcome":  res.Outcome.String(),
		"captured": res.Captured,
		"ball":     res.Ball,
		"trail":    res.Trail,
		"elapsed":  res.Elapsed,
		"capped":   res.Capped,
	}
	d, _ := json.Marshal(preview)
	c.send <- d
}

// handleResetBall re-tees the ball for a penalty stroke.
func (c *Client) handleResetBall(r *game.GolfRound) {
	if err := r.ResetBall(c.playerID); err != nil {
		c.sendError(err.Error())
		return
	}

	GameHub.BroadcastToRound(c.roundID, map[string]interface{}{
		"type":   "ball_reset",
		"player": c.playerID,
	})
	c.broadcastRoundState(r)
	r.SaveToRedis()
}

// handleAbandon cancels the round at the player's request.
func (c *Client) handleAbandon(r *game.GolfRound) {
	if r.Status != game.StatusInProgress && r.Status != game.StatusWaiting {
		c.sendError("Round is not active")
		return
	}

	r.Abandon("abandoned by player")
	game.Manager.EndRound(r.ID)

	GameHub.BroadcastToRound(c.roundID, map[string]interface{}{
		"type":    "round_over",
		"message": "Round abandoned",
		"status":  r.Status,
	})
	c.broadcastRoundState(r)
}

// broadcastShotResult sends the committed outcome of a shot plus fresh state.
func (c *Client) broadcastShotResult(r *game.GolfRound, result *game.ShotResult) {
	GameHub.BroadcastToRound(c.roundID, map[string]interface{}{
		"type":           "shot_result",
		"player":         c.playerID,
		"outcome":        result.Outcome,
		"captured":       result.Captured,
		"penalty":        result.Penalty,
		"hole_index":     result.HoleIndex,
		"hole_strokes":   result.HoleStrokes,
		"total_strokes":  result.TotalStrokes,
		"hole_complete":  result.HoleComplete,
		"round_complete": result.RoundComplete,
		"ball":           result.Ball,
		"trail":          result.Trail,
		"elapsed":        result.Elapsed,
	})

	if result.RoundComplete {
		GameHub.BroadcastToRound(c.roundID, map[string]interface{}{
			"type":          "round_over",
			"message":       "Course complete!",
			"total_strokes": result.TotalStrokes,
		})
	}

	c.broadcastRoundState(r)
}

// broadcastRoundState sends the authoritative state snapshot.
func (c *Client) broadcastRoundState(r *game.GolfRound) {
	state := r.StateForPlayer(c.playerID)
	state["type"] = "round_update"
	GameHub.SendToPlayer(c.playerID, state)
}
