package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config selects where the session database lives. A remote libsql database is
// used when Url is set, otherwise a local sqlite file (":memory:" is allowed).
type Config struct {
	File      string `json:"file" yaml:"file"`
	Url       string `json:"url" yaml:"url"`
	AuthToken string `json:"auth_token" yaml:"auth_token"`
}

// OpenDB opens the database described by config and applies schema.
func (config Config) OpenDB(schema string) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch {
	case config.Url != "":
		db, err = openLibsql(config.Url, config.AuthToken)
	case config.File != "":
		db, err = openSqlite(config.File)
	default:
		return nil, fmt.Errorf("a database file or url was not specified")
	}
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

func openLibsql(url, authToken string) (*sql.DB, error) {
	dsn := url
	if authToken != "" {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		dsn = fmt.Sprintf("%s%sauthToken=%s", url, sep, authToken)
	}
	return sql.Open("libsql", dsn)
}

func openSqlite(file string) (*sql.DB, error) {
	if file != ":memory:" {
		err := os.MkdirAll(filepath.Dir(file), 0700)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	if file != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
