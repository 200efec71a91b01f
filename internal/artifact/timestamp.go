// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"os"
	"time"
)

// NoInput is the Timestamp reported when there are no input files.
var NoInput Timestamp

// Timestamp is a file modification time used only for ordering.
// The zero value is NoInput.
type Timestamp struct {
	t time.Time
}

// TimestampOf wraps a modification time.
func TimestampOf(t time.Time) Timestamp { return Timestamp{t: t} }

// IsNoInput reports whether ts is the NoInput sentinel.
func (ts Timestamp) IsNoInput() bool { return ts.t.IsZero() }

// Time returns the underlying time.
func (ts Timestamp) Time() time.Time { return ts.t }

// IsNewerThan reports whether ts is strictly after other. Equal times are
// not newer.
func (ts Timestamp) IsNewerThan(other Timestamp) bool { return ts.t.After(other.t) }

func (ts Timestamp) String() string {
	if ts.IsNoInput() {
		return "<none>"
	}
	return ts.t.Format(time.RFC3339Nano)
}

// newest returns the latest modification time among paths. Paths that
// cannot be stat'ed are ignored.
func newest(paths []string) Timestamp {
	var latest Timestamp
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if ts := TimestampOf(info.ModTime()); ts.IsNewerThan(latest) {
			latest = ts
		}
	}
	return latest
}
