package tailoring

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"go.uber.org/zap"
)

const (
	tailoredYAMLName = "resume_tailored.yaml"
	highlightsName   = "resume_highlights.txt"
	pdfName          = "resume_tailored.pdf"
	metadataName     = "metadata.yaml"
)

// ErrNotFound is returned when no tailored resume exists for the job id.
var ErrNotFound = errors.New("tailored resume not found")

// Store keeps tailored resume artifacts under one directory per job id:
// resume_tailored.yaml, resume_highlights.txt, resume_tailored.pdf when
// rendering succeeded, and metadata.yaml describing the record.
type Store struct {
	root   string
	logger *zap.Logger
}

// NewStore creates the artifact root if needed.
func NewStore(root string, logger *zap.Logger) (*Store, error) {
	if root == "" {
		return nil, errors.New("tailored resume root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create tailored resume root: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{root: root, logger: logger}, nil
}

// Dir returns the artifact directory for a job id.
func (s *Store) Dir(jobID string) string {
	return filepath.Join(s.root, jobID)
}

// Save writes all artifacts for a fresh record and its metadata.
func (s *Store) Save(record *TailoredResume, baseData map[string]any, tailoredText, highlights string, pdf []byte) error {
	dir := s.Dir(record.JobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create tailored resume dir: %w", err)
	}

	if baseData == nil {
		baseData = map[string]any{}
	}
	baseData["_tailored_text"] = tailoredText
	baseData["_tailored"] = true

	yamlPath := filepath.Join(dir, tailoredYAMLName)
	raw, err := yaml.Marshal(baseData)
	if err != nil {
		return fmt.Errorf("encode tailored yaml: %w", err)
	}
	if err := os.WriteFile(yamlPath, raw, 0o644); err != nil {
		return fmt.Errorf("write tailored yaml: %w", err)
	}
	record.TailoredYAML = yamlPath

	highlightsPath := filepath.Join(dir, highlightsName)
	if err := os.WriteFile(highlightsPath, []byte(highlights), 0o644); err != nil {
		return fmt.Errorf("write highlights: %w", err)
	}
	record.Highlights = highlightsPath

	if len(pdf) > 0 {
		pdfPath := filepath.Join(dir, pdfName)
		if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		record.PDF = pdfPath
	}

	return s.saveMetadata(record)
}

// Load reconstructs a record from its metadata file.
func (s *Store) Load(jobID string) (*TailoredResume, error) {
	raw, err := os.ReadFile(filepath.Join(s.Dir(jobID), metadataName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, jobID)
		}
		return nil, fmt.Errorf("read tailored resume metadata %s: %w", jobID, err)
	}

	var record TailoredResume
	if err := yaml.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode tailored resume metadata %s: %w", jobID, err)
	}
	if record.Status == "" {
		record.Status = StatusPending
	}
	return &record, nil
}

// List returns every record on disk sorted by job id. Unreadable metadata
// files are skipped.
func (s *Store) List() ([]*TailoredResume, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read tailored resume root: %w", err)
	}

	records := make([]*TailoredResume, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		record, err := s.Load(entry.Name())
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				s.logger.Warn("unreadable tailored resume metadata",
					zap.String("job_id", entry.Name()),
					zap.Error(err),
				)
			}
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].JobID < records[j].JobID })
	return records, nil
}

// Discard moves a pending record to discarded and deletes its PDF to save
// space. The YAML and highlights stay for the record. Calling it on a record
// already in a terminal state changes nothing.
func (s *Store) Discard(jobID string) (*TailoredResume, error) {
	record, err := s.Load(jobID)
	if err != nil {
		return nil, err
	}
	if record.Terminal() {
		return record, nil
	}

	record.Status = StatusDiscarded
	if record.PDF != "" {
		if err := os.Remove(record.PDF); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("unable to delete discarded pdf",
				zap.String("job_id", jobID),
				zap.Error(err),
			)
		}
		record.PDF = ""
	}

	if err := s.saveMetadata(record); err != nil {
		return nil, err
	}

	s.logger.Info("tailored resume discarded", zap.String("job_id", jobID))
	return record, nil
}

// Confirm moves a pending record to confirmed, keeping the PDF for delivery.
// Calling it on a record already in a terminal state changes nothing.
func (s *Store) Confirm(jobID string) (*TailoredResume, error) {
	record, err := s.Load(jobID)
	if err != nil {
		return nil, err
	}
	if record.Terminal() {
		return record, nil
	}

	record.Status = StatusConfirmed
	if err := s.saveMetadata(record); err != nil {
		return nil, err
	}

	s.logger.Info("tailored resume confirmed", zap.String("job_id", jobID))
	return record, nil
}

func (s *Store) saveMetadata(record *TailoredResume) error {
	raw, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode tailored resume metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(record.JobID), metadataName), raw, 0o644); err != nil {
		return fmt.Errorf("write tailored resume metadata: %w", err)
	}
	return nil
}
