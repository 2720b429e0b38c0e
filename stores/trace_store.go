package stores

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Trace statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// StageTrace records the outcome of one pipeline stage for one request.
// Transcripts and reply text are never stored.
type StageTrace struct {
	ID         uint      `gorm:"primarykey" json:"-"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	RequestID  string    `gorm:"index:idx_trace_request;not null" json:"request_id"`
	Stage      string    `gorm:"not null" json:"stage"`  // stt, chat, tts
	Status     string    `gorm:"not null" json:"status"` // ok, error
	HTTPStatus int       `json:"http_status,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	Language   string    `json:"language,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `gorm:"type:text" json:"error,omitempty"`
}

// TraceStore persists stage traces.
type TraceStore interface {
	// SaveTrace saves a single trace
	SaveTrace(ctx context.Context, trace *StageTrace) error

	// SaveTraces saves multiple traces in a batch
	SaveTraces(ctx context.Context, traces []*StageTrace) error

	// TracesByRequest returns all traces of a request in creation order
	TracesByRequest(ctx context.Context, requestID string) ([]*StageTrace, error)

	// PruneOlderThan deletes traces created before cutoff and reports how many went
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	Ping() error
	Close() error
}

// GORMTraceStore implements TraceStore for SQLite/PostgreSQL via GORM
type GORMTraceStore struct {
	db *gorm.DB
}

// NewGORMTraceStore creates a trace store from an existing GORM database connection
func NewGORMTraceStore(db *gorm.DB) (*GORMTraceStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	if err := db.AutoMigrate(&StageTrace{}); err != nil {
		return nil, fmt.Errorf("failed to migrate stage_traces table: %w", err)
	}

	return &GORMTraceStore{db: db}, nil
}

// SaveTrace saves a single trace
func (s *GORMTraceStore) SaveTrace(ctx context.Context, trace *StageTrace) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.WithContext(ctx).Create(trace).Error
}

// SaveTraces saves multiple traces in a batch
func (s *GORMTraceStore) SaveTraces(ctx context.Context, traces []*StageTrace) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if len(traces) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(traces, 100).Error
}

// TracesByRequest retrieves all traces for a request, oldest first
func (s *GORMTraceStore) TracesByRequest(ctx context.Context, requestID string) ([]*StageTrace, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var traces []*StageTrace
	err := s.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC, id ASC").
		Find(&traces).Error

	return traces, err
}

// PruneOlderThan removes traces created before cutoff
func (s *GORMTraceStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&StageTrace{})
	return res.RowsAffected, res.Error
}

// Ping checks if the database connection is alive
func (s *GORMTraceStore) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close closes the database connection
func (s *GORMTraceStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
