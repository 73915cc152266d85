package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Client owns the connection pool used for the decision audit log. It
// connects to the default database and creates its own on start, so
// statements should use qualified table names.
type Client struct {
	db       *sql.DB
	database string
}

// NewClient opens the pool, pings the server and ensures the database exists.
func NewClient(opts ...ClientOption) (*Client, error) {
	s := settings{
		port:     9000,
		database: "default",
		user:     "default",
		maxOpen:  10,
		maxIdle:  5,
		lifetime: 5 * time.Minute,
		dial:     5 * time.Second,
		read:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.host == "" {
		return nil, errors.New("clickhouse: host is required")
	}
	if !identifier.MatchString(s.database) {
		return nil, fmt.Errorf("clickhouse: invalid database name %q", s.database)
	}

	db := clickhouse.OpenDB(options(s))

	ctx, cancel := context.WithTimeout(context.Background(), s.dial)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+s.database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse create database %s: %w", s.database, err)
	}
	return &Client{db: db, database: s.database}, nil
}

func options(s settings) *clickhouse.Options {
	opts := &clickhouse.Options{
		Addr: []string{net.JoinHostPort(s.host, strconv.Itoa(s.port))},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: s.user,
			Password: s.password,
		},
		Protocol:        clickhouse.Native,
		DialTimeout:     s.dial,
		ReadTimeout:     s.read,
		MaxOpenConns:    s.maxOpen,
		MaxIdleConns:    s.maxIdle,
		ConnMaxLifetime: s.lifetime,
		Compression:     &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		Settings:        clickhouse.Settings{},
	}
	if s.http {
		opts.Protocol = clickhouse.HTTP
		opts.Compression = &clickhouse.Compression{Method: clickhouse.CompressionGZIP}
	}
	if s.maxExec > 0 {
		opts.Settings["max_execution_time"] = int(s.maxExec.Seconds())
	}
	if s.asyncInsert {
		opts.Settings["async_insert"] = 1
		if s.waitAsync {
			opts.Settings["wait_for_async_insert"] = 1
		}
	}
	return opts
}

// DB returns the pool for repositories.
func (c *Client) DB() *sql.DB { return c.db }

// Database is the database created on connect.
func (c *Client) Database() string { return c.database }

func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// InitSchema runs idempotent DDL statements in order.
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for i, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema statement %d: %w", i, err)
		}
	}
	return nil
}
