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

// Package output writes repository and contribution records for the command
// line, either as NDJSON (one JSON object per line) for tooling or as an
// aligned table for people.
//
// Every NDJSON line carries a "type" field (repository, page_info or week).
// A page_info record ends a page of repositories; nothing follows it.
//
// Example usage:
//
//	w, err := output.New(output.FormatTable, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	for _, repo := range result.Repositories {
//	    if err := w.Write(output.NewRepositoryRecord(login, repo)); err != nil {
//	        return err
//	    }
//	}
//	return w.Close()
package output
