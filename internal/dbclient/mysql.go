package dbclient

import (
	"fmt"

	"noteboard/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

// mysqlDSN renders a go-sql-driver DSN. parseTime makes DATETIME columns
// scan as time.Time instead of []byte.
func mysqlDSN(conn *domain.SourceConnection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		conn.Username, password, conn.Host, port, conn.Database)
	if conn.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}
