package storage

import (
	"errors"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

// ErrNotFound is returned when no record exists for the requested id.
var ErrNotFound = errors.New("application record not found")

// Store is the durable record keeper for job applications. The core depends
// only on this interface so batch and stats logic stay testable without a
// filesystem or database.
type Store interface {
	SaveApplication(app *jobs.Application) error
	LoadApplication(id string) (*jobs.Application, error)
	// ListApplications returns every persisted record. Records whose payload
	// cannot be parsed are returned with an empty status rather than failing
	// the listing.
	ListApplications() ([]*jobs.Application, error)
}
