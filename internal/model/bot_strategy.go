package model

// Autoplay strategy names
const (
	BotStrategyFirst  = "first"
	BotStrategyRandom = "random"
)

// BotStrategyDisplayName returns a human-readable label for a strategy
func BotStrategyDisplayName(strategy string) string {
	switch strategy {
	case BotStrategyFirst:
		return "First legal move"
	case BotStrategyRandom:
		return "Random legal move"
	default:
		return strategy
	}
}

// ValidBotStrategies returns all valid autoplay strategy names
func ValidBotStrategies() []string {
	return []string{BotStrategyFirst, BotStrategyRandom}
}
