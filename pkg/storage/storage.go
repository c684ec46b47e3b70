package storage

import (
	"context"

	"github.com/upm-go/upm/pkg/model"
)

// Storage is the persistence sink for balance readings. Storage failures
// are logged by callers and never abort the poll loop.
type Storage interface {
	// SaveReading persists one reading.
	SaveReading(ctx context.Context, reading *model.Reading) error

	// LatestReading returns the most recently captured reading, or nil
	// when the store is empty.
	LatestReading(ctx context.Context) (*model.Reading, error)

	// Close releases resources.
	Close() error
}
