package recorder

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/stats"
)

var (
	customerHeader = []string{"run_id", "topology", "id", "server", "arrival_time", "service_start",
		"departure_time", "service_time", "wait_time", "sojourn_time", "cumulative_mean_sojourn"}
	sampleHeader = []string{"run_id", "topology", "server", "time", "queue_length"}
)

// CSVWriter writes <path>_customers.csv and <path>_samples.csv.
type CSVWriter struct {
	path      string
	files     []*os.File
	customers *csv.Writer
	samples   *csv.Writer
}

// NewCSVWriter creates both files and writes their headers. Existing files
// are never overwritten.
func NewCSVWriter(path string) (*CSVWriter, error) {
	w := &CSVWriter{path: path}
	var err error
	if w.customers, err = w.create(path+"_customers.csv", customerHeader); err != nil {
		w.Close()
		return nil, err
	}
	if w.samples, err = w.create(path+"_samples.csv", sampleHeader); err != nil {
		w.Close()
		return nil, err
	}
	logrus.Infof("writing CSV results to %s_{customers,samples}.csv", path)
	return w, nil
}

func (w *CSVWriter) create(filename string, header []string) (*csv.Writer, error) {
	if err := mustNotExist(filename); err != nil {
		return nil, err
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", filename, err)
	}
	w.files = append(w.files, f)
	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("writing header to %s: %w", filename, err)
	}
	return cw, nil
}

// Write appends the records and samples of res.
func (w *CSVWriter) Write(res *sim.Result) error {
	topo := string(res.Topology)
	cumMean := stats.CumulativeMeanSojourn(res.Records)
	for i, r := range res.Records {
		err := w.customers.Write([]string{
			res.RunID,
			topo,
			strconv.FormatInt(r.ID, 10),
			strconv.Itoa(r.Server),
			formatFloat(r.ArrivalTime),
			formatFloat(r.ServiceStart),
			formatFloat(r.DepartureTime),
			formatFloat(r.ServiceTime),
			formatFloat(r.WaitTime),
			formatFloat(r.SojournTime),
			formatFloat(cumMean[i]),
		})
		if err != nil {
			return fmt.Errorf("writing customer %d: %w", r.ID, err)
		}
	}
	for srv, series := range res.Samples {
		for _, s := range series {
			err := w.samples.Write([]string{
				res.RunID,
				topo,
				strconv.Itoa(srv),
				formatFloat(s.Time),
				strconv.Itoa(s.QueueLength),
			})
			if err != nil {
				return fmt.Errorf("writing sample: %w", err)
			}
		}
	}
	return nil
}

// Close flushes and closes both files.
func (w *CSVWriter) Close() error {
	var firstErr error
	for _, cw := range []*csv.Writer{w.customers, w.samples} {
		if cw == nil {
			continue
		}
		cw.Flush()
		if err := cw.Error(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, f := range w.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	w.files = nil
	w.customers, w.samples = nil, nil
	return firstErr
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
