package salesdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/domain/entity"
)

// Connector opens a connection to the sales database. The SQL tool opens a
// fresh connection per invocation and closes it unconditionally; connections
// are never pooled or shared across calls.
type Connector interface {
	Connect(ctx context.Context) (Conn, error)
}

type Conn interface {
	Query(ctx context.Context, query string) (*ResultSet, error)
	Close() error
}

// ResultSet is a fully materialized query result. Row values are plain Go
// types ([]byte columns decoded to string) so they serialize cleanly.
type ResultSet struct {
	Fields []entity.SQLField
	Rows   []map[string]interface{}
}

var _ Connector = (*MySQLConnector)(nil)

type MySQLConnector struct {
	dsn     string
	secrets []string
	logger  output.LoggerPort
}

// NewMySQLConnector validates the DSN up front so a malformed configuration
// fails at startup, and records the credential substrings that must never
// appear in error text returned to the model.
func NewMySQLConnector(dsn string, logger output.LoggerPort) (*MySQLConnector, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid sales database DSN: %w", err)
	}

	var secrets []string
	for _, s := range []string{cfg.Passwd, cfg.User, cfg.Addr} {
		if s != "" {
			secrets = append(secrets, s)
		}
	}

	return &MySQLConnector{dsn: dsn, secrets: secrets, logger: logger}, nil
}

func (c *MySQLConnector) Connect(ctx context.Context) (Conn, error) {
	db, err := sql.Open("mysql", c.dsn)
	if err != nil {
		return nil, c.scrub(err)
	}
	// One invocation, one connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if c.logger != nil {
			c.logger.Error("sales database unreachable", "error", err.Error())
		}
		return nil, c.scrub(err)
	}

	return &mysqlConn{db: db, scrub: c.scrub}, nil
}

// scrub removes connection credentials from driver error text before it can
// reach the model or the chat UI.
func (c *MySQLConnector) scrub(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, s := range c.secrets {
		msg = strings.ReplaceAll(msg, s, "***")
	}
	return errors.New(msg)
}

type mysqlConn struct {
	db    *sql.DB
	scrub func(error) error
}

func (c *mysqlConn) Query(ctx context.Context, query string) (*ResultSet, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, c.scrub(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, c.scrub(err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, c.scrub(err)
	}

	fields := make([]entity.SQLField, 0, len(columns))
	for i, name := range columns {
		fields = append(fields, entity.SQLField{
			Name: name,
			Type: columnTypes[i].DatabaseTypeName(),
		})
	}

	result := &ResultSet{Fields: fields, Rows: []map[string]interface{}{}}

	values := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, c.scrub(err)
		}
		row := make(map[string]interface{}, len(columns))
		for i, name := range columns {
			switch v := values[i].(type) {
			case []byte:
				row[name] = string(v)
			default:
				row[name] = v
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, c.scrub(err)
	}

	return result, nil
}

func (c *mysqlConn) Close() error {
	return c.db.Close()
}
