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
)

// Supported output formats.
const (
	FormatNDJSON = "ndjson"
	FormatTable  = "table"
)

// RecordWriter writes records in one output format.
type RecordWriter interface {
	// Write writes a single record. NDJSON records are flushed immediately;
	// table rows are buffered until Close.
	Write(record any) error

	// Close finishes the output and releases any resources.
	Close() error
}

// New returns a RecordWriter for format writing to w.
func New(format string, w io.Writer) (RecordWriter, error) {
	switch format {
	case FormatNDJSON, "":
		return NewWriter(w), nil
	case FormatTable:
		return NewTableWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (use %s or %s)", format, FormatTable, FormatNDJSON)
	}
}
