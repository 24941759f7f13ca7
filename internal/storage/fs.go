package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jobpilot/jobpilot/internal/jobs"

	"go.uber.org/zap"
)

const recordFileName = "job_application.json"

// FSStore keeps one directory per application under a root directory, with
// the record serialized as job_application.json inside it.
type FSStore struct {
	root   string
	logger *zap.Logger
}

// NewFSStore creates the root directory if needed.
func NewFSStore(root string, logger *zap.Logger) (*FSStore, error) {
	if root == "" {
		return nil, errors.New("storage root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FSStore{root: root, logger: logger}, nil
}

// Root returns the directory records are kept in.
func (s *FSStore) Root() string {
	return s.root
}

// SaveApplication writes the record atomically: serialize to a temp file in
// the record directory, then rename over the final name.
func (s *FSStore) SaveApplication(app *jobs.Application) error {
	if app == nil || app.ID == "" {
		return errors.New("application record needs an id")
	}

	dir := filepath.Join(s.root, app.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create record directory: %w", err)
	}

	raw, err := json.MarshalIndent(app, "", "  ")
	if err != nil {
		return fmt.Errorf("encode application %s: %w", app.ID, err)
	}

	tmp, err := os.CreateTemp(dir, recordFileName+".*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write record %s: %w", app.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close record %s: %w", app.ID, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, recordFileName)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("finalize record %s: %w", app.ID, err)
	}

	s.logger.Debug("saved application record",
		zap.String("job_id", app.ID),
		zap.String("status", app.Status),
	)
	return nil
}

// LoadApplication reads one record by id.
func (s *FSStore) LoadApplication(id string) (*jobs.Application, error) {
	raw, err := os.ReadFile(filepath.Join(s.root, id, recordFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read record %s: %w", id, err)
	}

	var app jobs.Application
	if err := json.Unmarshal(raw, &app); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	return &app, nil
}

// ListApplications walks every record directory. Directories with a missing
// or malformed record still yield an entry, with an empty status, so one bad
// file never hides the rest of the history.
func (s *FSStore) ListApplications() ([]*jobs.Application, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read storage root: %w", err)
	}

	apps := make([]*jobs.Application, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		app, err := s.LoadApplication(entry.Name())
		if err != nil {
			s.logger.Warn("unreadable application record",
				zap.String("job_id", entry.Name()),
				zap.Error(err),
			)
			apps = append(apps, &jobs.Application{ID: entry.Name()})
			continue
		}
		apps = append(apps, app)
	}

	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps, nil
}
