package dbclient

import (
	"fmt"

	"noteboard/internal/domain"

	_ "github.com/lib/pq"
)

// postgresDSN renders a lib/pq keyword/value connection string. An unset
// SSLMode becomes "disable", which matches local development setups.
func postgresDSN(conn *domain.SourceConnection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 5432
	}
	ssl := conn.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		conn.Host, port, conn.Username, password, conn.Database, ssl)
}
