package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/fairwave/backend/internal/config"
	"github.com/fairwave/backend/internal/game"
	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client
var wsConfig *config.Config

func SetRedisClient(r *redis.Client, cfg *config.Config) {
	rdbClient = r
	wsConfig = cfg
}

// StartRoundEventSubscriber subscribes to the idle_events and round_events
// channels and relays incoming events to the connected clients. This is how
// a sweeper decision made on one server instance reaches a player whose
// socket lives on another.
func StartRoundEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; round event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, "idle_events", "round_events")
	ch := pubsub.Channel()
	go func() {
		log.Println("[WS] idle_events/round_events subscriber started")
		for msg := range ch {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}

			typeStr, _ := payload["type"].(string)
			if typeStr == "" {
				typeStr, _ = payload["event"].(string)
			}
			roundToken, _ := payload["round_token"].(string)
			roundID, _ := payload["round_id"].(string)
			if roundID == "" && roundToken != "" {
				if r, err := game.Manager.GetRoundByToken(roundToken); err == nil {
					roundID = r.ID
				} else {
					roundID = roundToken
				}
			}

			log.Printf("[WS] event received: type=%s round=%s", typeStr, roundID)

			switch typeStr {
			case "player_idle_warning":
				GameHub.BroadcastToRound(roundID, map[string]interface{}{
					"type":              "idle_warning",
					"message":           payload["message"],
					"abandon_at":        payload["abandon_at"],
					"remaining_seconds": payload["remaining_seconds"],
				})

			case "round_abandoned", "round_expired":
				GameHub.BroadcastToRound(roundID, map[string]interface{}{
					"type":    "round_over",
					"message": payload["message"],
					"status":  string(game.StatusCancelled),
				})

			case "round_finalized":
				GameHub.BroadcastToRound(roundID, map[string]interface{}{
					"type":          "round_finalized",
					"status":        payload["status"],
					"total_strokes": payload["total_strokes"],
				})

			default:
				log.Printf("[WS] unknown event type: %s", typeStr)
			}
		}
	}()
}
