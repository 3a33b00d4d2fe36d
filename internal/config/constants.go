package config

const (
	// DefaultDatabasePath is where the SQLite database lives unless overridden.
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultMaxParsedItems caps how many items a single text import may produce.
	DefaultMaxParsedItems = 50
)
