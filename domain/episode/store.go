package episode

import (
	"context"
	"time"
)

// Store defines the interface for episode persistence.
// Implementations may be in-memory, SQLite, or any other backend.
type Store interface {
	// Save persists a new episode.
	Save(ctx context.Context, ep *Episode) error

	// Get retrieves an episode by ID.
	Get(ctx context.Context, id string) (*Episode, error)

	// Update updates an existing episode.
	Update(ctx context.Context, ep *Episode) error

	// Delete removes an episode by ID.
	Delete(ctx context.Context, id string) error

	// List returns episodes matching the filter.
	List(ctx context.Context, filter ListFilter) ([]*Episode, error)

	// Count returns the number of episodes matching the filter.
	Count(ctx context.Context, filter ListFilter) (int64, error)
}

// ListFilter specifies criteria for listing episodes.
type ListFilter struct {
	// Status filters by episode status (empty means all).
	Status []Status

	// World filters by world name (empty means all).
	World string

	// FromTime filters episodes started after this time.
	FromTime time.Time

	// ToTime filters episodes started before this time.
	ToTime time.Time

	// Limit is the maximum number of episodes to return (0 = no limit).
	Limit int

	// Offset is the number of episodes to skip for pagination.
	Offset int

	// OrderBy specifies the sort order.
	OrderBy OrderBy

	// Descending reverses the sort order.
	Descending bool
}

// OrderBy specifies how to sort episode results.
type OrderBy string

const (
	// OrderByStartTime sorts by episode start time.
	OrderByStartTime OrderBy = "start_time"

	// OrderByEndTime sorts by episode end time.
	OrderByEndTime OrderBy = "end_time"

	// OrderByID sorts by episode ID.
	OrderByID OrderBy = "id"

	// OrderByStatus sorts by episode status.
	OrderByStatus OrderBy = "status"
)
