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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirseerhq/sirseer-profile/internal/output"
)

// fileRecordWriter closes the file a RecordWriter renders into.
type fileRecordWriter struct {
	output.RecordWriter
	file *os.File
}

func (w fileRecordWriter) Close() error {
	err := w.RecordWriter.Close()
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// openOutput returns a RecordWriter for format on path, or on stdout when
// path is empty.
func openOutput(format, path string, stdout io.Writer) (output.RecordWriter, error) {
	if path == "" {
		return output.New(format, stdout)
	}
	if format == output.FormatNDJSON {
		w, err := output.NewFileWriter(path)
		if err != nil {
			return nil, err
		}
		return w, nil
	}

	// Reject unknown formats before creating the file.
	if _, err := output.New(format, io.Discard); err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	w, err := output.New(format, file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return fileRecordWriter{RecordWriter: w, file: file}, nil
}
