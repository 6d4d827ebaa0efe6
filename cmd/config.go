package cmd

import (
	"fmt"
	"time"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	AmqpURL         string
	OrchestratorURL string

	// WaitStaleAfter is how long a stage may sit on a wait token before
	// the waiting orders view flags it as stale.
	WaitStaleAfter time.Duration

	// AssignmentMaxRetries bounds redelivery rounds for one assignment
	// message; AssignmentRetryDelay is the pause between rounds.
	AssignmentMaxRetries int64
	AssignmentRetryDelay time.Duration

	// ConnectionTTL is how long a push connection stays subscribable
	// without reconnecting.
	ConnectionTTL time.Duration
}

// DatabaseDSN builds the postgres connection string.
func (c Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
