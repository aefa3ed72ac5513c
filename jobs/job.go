// Package jobs keeps export job records and runs exports to completion.
package jobs

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nbreport/common"
	"nbreport/config"
)

// ErrNotFound is returned by stores for unknown job ids.
var ErrNotFound = errors.New("job not found")

// Job is export record. Status moves forward only, DownloadURL is set only
// when job is completed.
type Job struct {
	ID          string
	Status      common.JobStatus
	Format      common.Format
	Title       string
	Error       string
	DownloadURL string
	// Artifact is published file path
	Artifact string
	Created  time.Time
	Updated  time.Time
}

// NewID returns random job id as 32 hex digits.
func NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Store is job registry keyed by job id. Implementations return copies, so
// callers may modify returned records freely.
type Store interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, job *Job) error
	// List returns jobs in creation order.
	List(ctx context.Context) ([]*Job, error)
	Close() error
}

// Open creates store selected by configuration.
func Open(cfg *config.JobsConfig) (Store, error) {
	switch cfg.Store {
	case common.StoreKindMemory:
		return NewMemoryStore(), nil
	case common.StoreKindSqlite:
		return OpenSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown job store %q", cfg.Store.String())
	}
}
