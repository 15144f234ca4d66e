package sqlstore

import (
	"strings"

	"github.com/dmitrijs2005/musclemap/internal/dbx"
)

// Dialect ties a database/sql driver to its goose dialect, its migration
// directory and its placeholder style.
type Dialect struct {
	Name        string
	Driver      string
	Goose       string
	Dir         string
	Placeholder dbx.Placeholder
}

var (
	SQLite = Dialect{
		Name:        "sqlite",
		Driver:      "sqlite",
		Goose:       "sqlite3",
		Dir:         "sqlite",
		Placeholder: dbx.Question,
	}
	Postgres = Dialect{
		Name:        "postgres",
		Driver:      "pgx",
		Goose:       "postgres",
		Dir:         "postgres",
		Placeholder: dbx.Dollar,
	}
)

// DialectFor picks the dialect from a DSN: PostgreSQL URLs and keyword DSNs
// select Postgres, anything else is a SQLite path.
func DialectFor(dsn string) Dialect {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return Postgres
	case strings.Contains(lower, "host=") && strings.Contains(lower, "dbname="):
		return Postgres
	}
	return SQLite
}

// sqliteDSN strips a sqlite:// scheme and, for plain file paths, adds the
// busy timeout and WAL pragmas.
func sqliteDSN(dsn string) string {
	dsn = strings.TrimPrefix(strings.TrimSpace(dsn), "sqlite://")
	if dsn == ":memory:" || strings.Contains(dsn, "?") || strings.HasPrefix(dsn, "file:") {
		return dsn
	}
	return dsn + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
