package sqlite

// Config holds SQLite settlement store settings
type Config struct {
	// Path is the database file; parent directories are created on open
	Path string
}

// DefaultConfig returns sensible defaults for the settlement database
func DefaultConfig() Config {
	return Config{Path: "./data/arcade.db"}
}
