package proposal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ChangesDir is the subdirectory under the workspace root where
	// pending proposals live.
	ChangesDir = "changes"
	// HistoryDir is the subdirectory where archived proposals live.
	HistoryDir = "history"
	// RecordFile is the filename for proposal records.
	RecordFile = "proposal.json"
	// DeltasDir is the subdirectory within a proposal for delta documents.
	DeltasDir = "deltas"
)

// Store defines the persistence interface for proposal records.
// Abstracted so tools can be tested against fakes.
type Store interface {
	Create(root string, rec *Record) error
	Load(root, id string) (*Record, error)
	LoadActive(root string) (*Record, error)
	Save(root string, rec *Record) error
	Archive(root, id string) error
	List(root string) ([]Record, error)
}

// FileStore implements Store on the local filesystem.
type FileStore struct{}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a filesystem-backed proposal store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// ChangesPath returns the path to the changes/ directory.
func ChangesPath(root string) string {
	return filepath.Join(root, ChangesDir)
}

// HistoryPath returns the path to the history/ directory.
func HistoryPath(root string) string {
	return filepath.Join(root, HistoryDir)
}

// ProposalPath returns the path to a specific proposal's directory.
func ProposalPath(root, id string) string {
	return filepath.Join(ChangesPath(root), id)
}

// RecordPath returns the path to a proposal's proposal.json.
func RecordPath(root, id string) string {
	return filepath.Join(ProposalPath(root, id), RecordFile)
}

// DeltaPath returns the path to a proposal's delta document for a domain.
func DeltaPath(root, id, domain string) string {
	return filepath.Join(ProposalPath(root, id), DeltasDir, domain+".md")
}

// Create persists a new proposal, creating its directory structure.
// If the id already exists, a numeric suffix is appended (-2, -3, ...).
func (fs *FileStore) Create(root string, rec *Record) error {
	if err := os.MkdirAll(ChangesPath(root), 0o755); err != nil {
		return fmt.Errorf("creating changes directory: %w", err)
	}

	originalID := rec.ID
	dir := ProposalPath(root, rec.ID)
	suffix := 2
	for {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			break
		}
		rec.ID = fmt.Sprintf("%s-%d", originalID, suffix)
		dir = ProposalPath(root, rec.ID)
		suffix++
	}

	if err := os.MkdirAll(filepath.Join(dir, DeltasDir), 0o755); err != nil {
		return fmt.Errorf("creating proposal directory: %w", err)
	}

	return fs.writeRecord(root, rec)
}

// Load reads a proposal record by id.
func (fs *FileStore) Load(root, id string) (*Record, error) {
	data, err := os.ReadFile(RecordPath(root, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("proposal %q not found", id)
		}
		return nil, fmt.Errorf("reading proposal record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing proposal.json for %q: %w", id, err)
	}
	return &rec, nil
}

// LoadActive scans all proposals and returns the one with status active.
// Returns nil (not an error) when none is active.
func (fs *FileStore) LoadActive(root string) (*Record, error) {
	entries, err := os.ReadDir(ChangesPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading changes directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, err := fs.Load(root, entry.Name())
		if err != nil {
			continue // skip unreadable proposals
		}
		if rec.Status == StatusActive {
			return rec, nil
		}
	}
	return nil, nil
}

// Save updates an existing proposal record.
func (fs *FileStore) Save(root string, rec *Record) error {
	rec.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return fs.writeRecord(root, rec)
}

// Archive moves a non-active proposal from changes/ to history/.
func (fs *FileStore) Archive(root, id string) error {
	rec, err := fs.Load(root, id)
	if err != nil {
		return err
	}

	if rec.Status == StatusActive {
		return fmt.Errorf("cannot archive active proposal %q: merge or abandon it first", id)
	}

	if err := os.MkdirAll(HistoryPath(root), 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	dst := filepath.Join(HistoryPath(root), id)
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("proposal %q already exists in history", id)
	}

	rec.Status = StatusArchived
	rec.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := fs.writeRecord(root, rec); err != nil {
		return fmt.Errorf("updating proposal status: %w", err)
	}

	if err := os.Rename(ProposalPath(root, id), dst); err != nil {
		return fmt.Errorf("moving proposal to history: %w", err)
	}
	return nil
}

// List returns all proposals from both changes/ and history/.
func (fs *FileStore) List(root string) ([]Record, error) {
	var result []Record

	if entries, err := os.ReadDir(ChangesPath(root)); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			rec, err := fs.Load(root, entry.Name())
			if err != nil {
				continue
			}
			result = append(result, *rec)
		}
	}

	if entries, err := os.ReadDir(HistoryPath(root)); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(HistoryPath(root), entry.Name(), RecordFile))
			if err != nil {
				continue
			}
			var rec Record
			if err := json.Unmarshal(data, &rec); err != nil {
				continue
			}
			result = append(result, rec)
		}
	}

	return result, nil
}

// writeRecord marshals and writes a proposal record to its proposal.json.
func (fs *FileStore) writeRecord(root string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling proposal record: %w", err)
	}

	path := RecordPath(root, rec.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating proposal directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
