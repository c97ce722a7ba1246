package logsource

import "github.com/okian/busyspot/pkg/logger"

// Default column names of the desk-usage log.
const (
	DefaultDeskColumn      = "desk"
	DefaultTimestampColumn = "date_time"
	DefaultTable           = "desk_logs"
)

type settings struct {
	deskColumn      string
	timestampColumn string
	table           string
	logger          logger.Logger
}

func defaults() settings {
	return settings{
		deskColumn:      DefaultDeskColumn,
		timestampColumn: DefaultTimestampColumn,
		table:           DefaultTable,
		logger:          logger.Nop(),
	}
}

// Option configures a log source.
type Option func(*settings)

// WithColumns overrides the desk and timestamp column names.
func WithColumns(desk, timestamp string) Option {
	return func(s *settings) {
		if desk != "" {
			s.deskColumn = desk
		}
		if timestamp != "" {
			s.timestampColumn = timestamp
		}
	}
}

// WithTable sets the SQLite table holding the log.
func WithTable(table string) Option {
	return func(s *settings) {
		if table != "" {
			s.table = table
		}
	}
}

// WithLogger sets the source's logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
