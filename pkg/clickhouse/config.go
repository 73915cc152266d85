package clickhouse

import "time"

type settings struct {
	host        string
	port        int
	database    string
	user        string
	password    string
	http        bool
	asyncInsert bool
	waitAsync   bool
	maxOpen     int
	maxIdle     int
	lifetime    time.Duration
	dial        time.Duration
	read        time.Duration
	maxExec     time.Duration
}

// ClientOption configures NewClient.
type ClientOption func(*settings)

func WithAddr(host string, port int) ClientOption {
	return func(s *settings) {
		s.host = host
		s.port = port
	}
}

// WithDatabase names the database the client creates on connect.
func WithDatabase(database string) ClientOption {
	return func(s *settings) { s.database = database }
}

func WithCredentials(user, password string) ClientOption {
	return func(s *settings) {
		s.user = user
		s.password = password
	}
}

func WithMaxConnections(maxOpen, maxIdle int) ClientOption {
	return func(s *settings) {
		s.maxOpen = maxOpen
		s.maxIdle = maxIdle
	}
}

func WithTimeouts(dial, read time.Duration) ClientOption {
	return func(s *settings) {
		s.dial = dial
		s.read = read
	}
}

// WithHTTP selects the HTTP interface instead of the native protocol.
func WithHTTP(useHTTP bool) ClientOption {
	return func(s *settings) { s.http = useHTTP }
}

// WithAsyncInsert lets the server buffer small decision batches.
func WithAsyncInsert(enabled, wait bool) ClientOption {
	return func(s *settings) {
		s.asyncInsert = enabled
		s.waitAsync = wait
	}
}

// WithMaxExecutionTime is applied per query; the server has second granularity.
func WithMaxExecutionTime(d time.Duration) ClientOption {
	return func(s *settings) { s.maxExec = d }
}
