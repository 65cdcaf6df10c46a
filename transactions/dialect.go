package transactions

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"

	_ "github.com/lib/pq"
	go_ora "github.com/sijms/go-ora/v2"
)

// Supported external store drivers.
const (
	DriverOracle   = "oracle"
	DriverPostgres = "postgres"
)

// Dialect covers the SQL differences between the supported drivers.
type Dialect interface {
	// Bind returns the placeholder for the n-th (1-based) argument.
	Bind(n int) string
	// Now returns the expression for the current database time.
	Now() string
}

type oracleDialect struct{}

func (oracleDialect) Bind(n int) string { return ":" + strconv.Itoa(n) }
func (oracleDialect) Now() string       { return "SYSDATE" }

type postgresDialect struct{}

func (postgresDialect) Bind(n int) string { return "$" + strconv.Itoa(n) }
func (postgresDialect) Now() string       { return "CURRENT_TIMESTAMP" }

// DialectFor returns the dialect of driver.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverOracle:
		return oracleDialect{}, nil
	case DriverPostgres:
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported transaction store driver %q", driver)
	}
}

// ConnConfig holds the connection parameters of the external store.
type ConnConfig struct {
	Driver      string
	Host        string
	Port        int
	ServiceName string
	Username    string
	Password    string
}

// DSN returns the driver-specific data source name.
func (c ConnConfig) DSN() (string, error) {
	switch c.Driver {
	case DriverOracle:
		return go_ora.BuildUrl(c.Host, c.Port, c.ServiceName, c.Username, c.Password, nil), nil
	case DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.Username, c.Password),
			Host:     c.Host + ":" + strconv.Itoa(c.Port),
			Path:     "/" + c.ServiceName,
			RawQuery: "sslmode=disable",
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported transaction store driver %q", c.Driver)
	}
}

// Open opens a handle on the external store. The handle keeps no idle
// connections, so nothing stays open between requests.
func Open(c ConnConfig) (*Repository, *sql.DB, error) {
	dialect, err := DialectFor(c.Driver)
	if err != nil {
		return nil, nil, err
	}
	dsn, err := c.DSN()
	if err != nil {
		return nil, nil, err
	}
	db, err := sql.Open(c.Driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", c.Driver, err)
	}
	db.SetMaxIdleConns(0)
	return NewRepository(db, dialect), db, nil
}
