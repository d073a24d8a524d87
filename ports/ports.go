// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/artpar/usagelens/domain/event"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher hashes and verifies secrets (dashboard access tokens).
type Hasher interface {
	Hash(plaintext string) ([]byte, error)
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// DatasetMeta describes a stored dataset without its event payload.
type DatasetMeta struct {
	ID           string
	Name         string
	RowCount     int
	RejectedRows int
	UploadedAt   time.Time
}

// Dataset is a normalized event collection plus its provenance.
// Events is the single source of truth; everything else is derived from it.
type Dataset struct {
	Meta   DatasetMeta
	Events []event.Event
}

// DatasetStore holds the currently active dataset.
// There is exactly one writer (the ingest pipeline); readers get snapshots.
type DatasetStore interface {
	// Replace swaps in a newly ingested dataset, discarding the previous one.
	Replace(ctx context.Context, ds Dataset) error

	// Current returns the active dataset. ok is false when nothing has been
	// ingested yet.
	Current(ctx context.Context) (Dataset, bool, error)
}

// DatasetArchive persists raw CSV text so a dataset survives restarts.
// Events are always re-derived from the stored text on load; the archive is
// a cache, never the source of truth.
type DatasetArchive interface {
	// Save stores the raw CSV text under the dataset's metadata.
	Save(ctx context.Context, meta DatasetMeta, rawCSV string) error

	// Latest returns the most recently saved dataset's metadata and raw text.
	Latest(ctx context.Context) (DatasetMeta, string, bool, error)

	// List returns metadata for all saved datasets, newest first.
	List(ctx context.Context) ([]DatasetMeta, error)
}
