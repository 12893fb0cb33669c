package config

// Default paths for databases and storage
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./storyhub.db"

	// DefaultTasksDatabasePath is the default path for the task queue database
	DefaultTasksDatabasePath = "./storyhub_tasks.db"

	// DefaultBooksDir is where imported e-book files are copied
	DefaultBooksDir = "./books"
)
