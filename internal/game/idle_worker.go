package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// StartIdleSweeper runs a background worker that warns and then abandons
// idle rounds using Redis sorted sets. Deadlines are scheduled with
// TouchActivity whenever the player does anything.
func (gm *GameManager) StartIdleSweeper() {
	if gm.rdb == nil || gm.config == nil {
		log.Println("[IDLE] Redis or config missing; idle sweeper not started")
		return
	}

	log.Println("[IDLE] Idle sweeper started")
	ctx := context.Background()
	ticker := time.NewTicker(time.Duration(gm.config.IdleWorkerPollInterval) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now().Unix()
		gm.sweepIdleWarnings(ctx, now)
		gm.sweepIdleAbandons(ctx, now)
	}
}

// TouchActivity records player activity and reschedules both idle deadlines.
func (gm *GameManager) TouchActivity(roundToken, playerID string) {
	if gm.rdb == nil || gm.config == nil {
		return
	}
	ctx := context.Background()
	m := idleMember(roundToken, playerID)
	now := time.Now().Unix()

	gm.rdb.Set(ctx, "last_active:"+m, strconv.FormatInt(now, 10), 24*time.Hour)
	gm.rdb.ZAdd(ctx, "idle_warning", redis.Z{Score: float64(now + int64(gm.config.IdleWarningSeconds)), Member: m})
	gm.rdb.ZAdd(ctx, "idle_abandon", redis.Z{Score: float64(now + int64(gm.config.IdleAbandonSeconds)), Member: m})
}

func (gm *GameManager) sweepIdleWarnings(ctx context.Context, now int64) {
	members, err := gm.rdb.ZRangeByScore(ctx, "idle_warning", &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now)}).Result()
	if err != nil {
		log.Printf("[IDLE] Failed to fetch idle warnings: %v", err)
		return
	}
	for _, m := range members {
		// Attempt to remove (race-safe)
		removed, _ := gm.rdb.ZRem(ctx, "idle_warning", m).Result()
		if removed == 0 {
			continue
		}
		last, _ := gm.rdb.Get(ctx, "last_active:"+m).Result()
		lastTs, _ := strconv.ParseInt(last, 10, 64)
		if time.Now().Unix()-lastTs < int64(gm.config.IdleWarningSeconds) {
			continue
		}

		roundToken, playerID := parseIdleMember(m)
		if roundToken == "" || playerID == "" {
			continue
		}
		r, err := gm.GetRoundByToken(roundToken)
		if err != nil || r.Status != StatusInProgress {
			continue
		}

		abandonAt := time.Unix(lastTs, 0).Add(time.Duration(gm.config.IdleAbandonSeconds) * time.Second)
		remaining := int(time.Until(abandonAt).Seconds())
		payload := map[string]interface{}{
			"type":              "player_idle_warning",
			"round_token":       roundToken,
			"round_id":          r.ID,
			"player":            playerID,
			"abandon_at":        abandonAt.Format(time.RFC3339),
			"remaining_seconds": remaining,
			"message":           "Round idle; it will be abandoned soon.",
		}
		b, _ := json.Marshal(payload)
		if n, err := gm.rdb.Publish(ctx, "idle_events", b).Result(); err != nil {
			log.Printf("[IDLE] publish warning failed: round=%s player=%s err=%v", roundToken, playerID, err)
		} else {
			log.Printf("[IDLE] published warning: round=%s player=%s subscribers=%d remaining=%d", roundToken, playerID, n, remaining)
		}
	}
}

func (gm *GameManager) sweepIdleAbandons(ctx context.Context, now int64) {
	members, err := gm.rdb.ZRangeByScore(ctx, "idle_abandon", &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now)}).Result()
	if err != nil {
		log.Printf("[IDLE] Failed to fetch idle abandons: %v", err)
		return
	}
	for _, m := range members {
		removed, _ := gm.rdb.ZRem(ctx, "idle_abandon", m).Result()
		if removed == 0 {
			continue
		}
		last, _ := gm.rdb.Get(ctx, "last_active:"+m).Result()
		lastTs, _ := strconv.ParseInt(last, 10, 64)
		if time.Now().Unix()-lastTs < int64(gm.config.IdleAbandonSeconds) {
			continue
		}

		roundToken, playerID := parseIdleMember(m)
		if roundToken == "" || playerID == "" {
			continue
		}
		r, err := gm.GetRoundByToken(roundToken)
		if err != nil || r.Status != StatusInProgress {
			continue
		}

		log.Printf("[IDLE] Abandoning round %s due to inactivity", roundToken)
		r.Abandon("idle timeout")
		gm.EndRound(r.ID)

		payload := map[string]interface{}{
			"type":        "round_abandoned",
			"round_token": roundToken,
			"round_id":    r.ID,
			"player":      playerID,
			"message":     "Round abandoned due to inactivity",
		}
		b, _ := json.Marshal(payload)
		if n, err := gm.rdb.Publish(ctx, "idle_events", b).Result(); err != nil {
			log.Printf("[IDLE] publish abandon failed: round=%s err=%v", roundToken, err)
		} else {
			log.Printf("[IDLE] published abandon: round=%s subscribers=%d", roundToken, n)
		}
	}
}

func idleMember(roundToken, playerID string) string {
	return "r:" + roundToken + ":p:" + playerID
}

// parseIdleMember expects member format r:<roundToken>:p:<playerID>
func parseIdleMember(m string) (string, string) {
	parts := strings.Split(m, ":")
	if len(parts) >= 4 && parts[0] == "r" && parts[2] == "p" {
		return parts[1], parts[3]
	}
	return "", ""
}
