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
	"fmt"
	"io"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Tabular is implemented by records that can be rendered as a table row.
type Tabular interface {
	Headers() []string
	Cells() []string
}

// TableWriter buffers Tabular records and renders them as one table on Close.
type TableWriter struct {
	mu      sync.Mutex
	output  io.Writer
	headers []string
	rows    [][]string
	closed  bool
}

// NewTableWriter creates a table writer on w.
func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{output: w}
}

// Write buffers one row. The first record fixes the headers; every later
// record must have the same number of cells.
func (t *TableWriter) Write(record any) error {
	row, ok := record.(Tabular)
	if !ok {
		return fmt.Errorf("record of type %T cannot be shown as a table row", record)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("table writer is closed")
	}
	cells := row.Cells()
	if t.headers == nil {
		t.headers = row.Headers()
	} else if len(cells) != len(t.headers) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.headers))
	}
	t.rows = append(t.rows, cells)
	return nil
}

// Count returns the number of buffered rows.
func (t *TableWriter) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Close renders the table. Nothing is written when no rows were buffered.
func (t *TableWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	if len(t.rows) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(t.output)
	table.Header(t.headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(t.rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
