package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SchemaVersion is the current history schema version.
const SchemaVersion = 1

// ErrPersistenceClosed is returned when operations are attempted on a closed persistence.
var ErrPersistenceClosed = errors.New("persistence is closed")

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	SchemaVersion int   `json:"toastbox_schema_version"`
	CreatedAt     int64 `json:"created_at"`
}

// JSONLPersistence stores history records as JSON lines.
type JSONLPersistence struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// NewJSONLPersistence opens or creates the file at path.
func NewJSONLPersistence(path string) (*JSONLPersistence, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	p := &JSONLPersistence{path: path, file: file}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := p.writeHeader(); err != nil {
			_ = file.Close()
			return nil, err
		}
	}
	return p, nil
}

// Path returns the file path.
func (p *JSONLPersistence) Path() string {
	return p.path
}

func (p *JSONLPersistence) writeHeader() error {
	data, err := json.Marshal(schemaHeader{
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	_, err = p.file.Write(append(data, '\n'))
	return err
}

// Load reads every line of the file. Malformed lines are skipped.
func (p *JSONLPersistence) Load() ([]Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return nil, ErrPersistenceClosed
	}
	if _, err := p.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", p.path, err)
	}

	var records []Record
	scanner := bufio.NewScanner(p.file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.SchemaVersion > 0 {
				if header.SchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.SchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var r Record
		if err := json.Unmarshal(line, &r); err != nil || r.ID == "" {
			continue
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("error reading file: %w", err)
	}
	if _, err := p.file.Seek(0, io.SeekEnd); err != nil {
		return records, err
	}
	return records, nil
}

// Append writes one record.
func (p *JSONLPersistence) Append(r Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return ErrPersistenceClosed
	}
	if err := p.writeRecord(r); err != nil {
		return err
	}
	return p.file.Sync()
}

// Rewrite replaces the file contents with records.
func (p *JSONLPersistence) Rewrite(records []Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}
	if p.file != nil {
		if err := p.file.Close(); err != nil {
			return err
		}
		p.file = nil
	}

	backupPath := p.path + ".bak"
	if err := os.Rename(p.path, backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	file, err := os.OpenFile(p.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND, 0600)
	if err != nil {
		_ = os.Rename(backupPath, p.path)
		return fmt.Errorf("failed to create new file: %w", err)
	}
	p.file = file

	if err := p.writeHeader(); err != nil {
		return err
	}
	for _, r := range records {
		if err := p.writeRecord(r); err != nil {
			return err
		}
	}
	if err := p.file.Sync(); err != nil {
		return err
	}

	_ = os.Remove(backupPath)
	return nil
}

// Clear removes all records.
func (p *JSONLPersistence) Clear() error {
	return p.Rewrite(nil)
}

// Close releases the file handle.
func (p *JSONLPersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		return err
	}
	return nil
}

func (p *JSONLPersistence) writeRecord(r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = p.file.Write(append(data, '\n'))
	return err
}
