package redis

import (
	"fmt"

	"github.com/mcoot/lanova-arcade/internal/model"
)

// Key prefix for all arcade data
const keyPrefix = "arcade"

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// playerSessionsIndexKey returns the Redis key for the SET of session keys owned by a player
func playerSessionsIndexKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_sessions:%s", keyPrefix, playerID)
}
