// Package recorder exports simulation results to files for offline
// analysis. A Writer accepts any number of results (one per topology and
// trial) and appends their customer records and monitor samples, keyed by
// run ID.
package recorder

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/xid"

	"github.com/inference-sim/queue-sim/sim"
)

// Supported export formats.
const (
	FormatCSV     = "csv"
	FormatSQLite  = "sqlite"
	FormatParquet = "parquet"
)

// Formats lists the accepted format names.
var Formats = []string{FormatCSV, FormatSQLite, FormatParquet}

// Writer persists results. Close must be called to flush buffered rows.
type Writer interface {
	Write(res *sim.Result) error
	Close() error
}

// New creates a writer for format. path is a file name prefix; the writer
// appends its own suffixes. An empty path becomes queue_sim_<xid>.
func New(format, path string) (Writer, error) {
	if path == "" {
		path = DefaultPath()
	}
	switch format {
	case FormatCSV:
		return NewCSVWriter(path)
	case FormatSQLite:
		return NewSQLiteWriter(path)
	case FormatParquet:
		return NewParquetWriter(path)
	default:
		return nil, fmt.Errorf("unknown output format %q; valid: %s", format, strings.Join(Formats, ", "))
	}
}

// DefaultPath returns a fresh, unique file name prefix.
func DefaultPath() string {
	return "queue_sim_" + xid.New().String()
}

func mustNotExist(filename string) error {
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}
	return nil
}
