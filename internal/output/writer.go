// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Typed is implemented by every record the NDJSON writer accepts. The type
// is also the record's "type" field, so consumers can dispatch on each line.
type Typed interface {
	RecordType() string
}

// Writer streams NDJSON records to a file or io.Writer. It counts records
// per type and refuses any record after a page_info, which closes a page.
type Writer struct {
	mu      sync.Mutex
	encoder *json.Encoder
	counts  map[string]int
	total   int
	closed  bool // a page_info was written

	file *os.File
	path string // final name of file; written to a temp name until Close
}

// NewWriter creates a new NDJSON writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		encoder: json.NewEncoder(w),
		counts:  make(map[string]int),
	}
}

// NewFileWriter creates an NDJSON writer for filename. Records go to a
// temporary file in the same directory that is renamed into place by Close,
// so filename never holds a partial page.
func NewFileWriter(filename string) (*Writer, error) {
	file, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := NewWriter(file)
	w.file = file
	w.path = filename
	return w, nil
}

// Write writes a single record as one line of JSON.
func (w *Writer) Write(record any) error {
	typed, ok := record.(Typed)
	if !ok {
		return fmt.Errorf("failed to write record: %T has no record type", record)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("failed to write %s record: page already closed by %s", typed.RecordType(), TypePageInfo)
	}
	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	w.counts[typed.RecordType()]++
	w.total++
	if typed.RecordType() == TypePageInfo {
		w.closed = true
	}
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}

// CountOf returns the number of records of recordType written.
func (w *Writer) CountOf(recordType string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.counts[recordType]
}

// Close moves a file writer's output into place. It is a no-op for writers
// created with NewWriter.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	file := w.file
	w.file = nil

	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Chmod(file.Name(), 0o644); err != nil {
		os.Remove(file.Name())
		return fmt.Errorf("failed to finish output file: %w", err)
	}
	if err := os.Rename(file.Name(), w.path); err != nil {
		os.Remove(file.Name())
		return fmt.Errorf("failed to finish output file: %w", err)
	}
	return nil
}
