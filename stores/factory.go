package stores

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultSQLitePath is used when a sqlite store is requested without a DSN.
const DefaultSQLitePath = "voicechat_traces.sqlite"

// OptionLogSQL set to "true" logs every statement at info level.
const OptionLogSQL = "log_sql"

// StoreConfig holds configuration for database stores
type StoreConfig struct {
	Type       string            `json:"type"`       // "sqlite" or "postgres"
	Connection string            `json:"connection"` // file path or DSN
	Options    map[string]string `json:"options"`    // additional options
}

// NewStoreConfig creates a new store configuration
func NewStoreConfig(storeType, connection string) *StoreConfig {
	return &StoreConfig{
		Type:       storeType,
		Connection: connection,
		Options:    make(map[string]string),
	}
}

// WithOption adds an option to the store configuration
func (c *StoreConfig) WithOption(key, value string) *StoreConfig {
	c.Options[key] = value
	return c
}

// NewTraceStore opens the database named by config and migrates the trace table.
func NewTraceStore(config *StoreConfig) (*GORMTraceStore, error) {
	var dialector gorm.Dialector
	switch config.Type {
	case "sqlite":
		path := config.Connection
		if path == "" {
			path = DefaultSQLitePath
		}
		dialector = sqlite.Open(path)
	case "postgres":
		if config.Connection == "" {
			return nil, fmt.Errorf("postgres trace store requires a DSN")
		}
		dialector = postgres.Open(config.Connection)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}

	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if config.Options[OptionLogSQL] == "true" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", config.Type, err)
	}
	return NewGORMTraceStore(db)
}
