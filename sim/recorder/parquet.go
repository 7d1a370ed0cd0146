package recorder

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/stats"
)

// CustomerParquetRow is the Parquet schema of one customer record.
type CustomerParquetRow struct {
	RunID         string  `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Topology      string  `parquet:"name=topology, type=BYTE_ARRAY, convertedtype=UTF8"`
	ID            int64   `parquet:"name=id, type=INT64"`
	Server        int32   `parquet:"name=server, type=INT32"`
	ArrivalTime   float64 `parquet:"name=arrival_time, type=DOUBLE"`
	ServiceStart  float64 `parquet:"name=service_start, type=DOUBLE"`
	DepartureTime float64 `parquet:"name=departure_time, type=DOUBLE"`
	ServiceTime   float64 `parquet:"name=service_time, type=DOUBLE"`
	WaitTime      float64 `parquet:"name=wait_time, type=DOUBLE"`
	SojournTime   float64 `parquet:"name=sojourn_time, type=DOUBLE"`

	// CumulativeMeanSojourn is the mean sojourn of this and all earlier departures of the run.
	CumulativeMeanSojourn float64 `parquet:"name=cumulative_mean_sojourn, type=DOUBLE"`
}

// SampleParquetRow is the Parquet schema of one monitor sample.
type SampleParquetRow struct {
	RunID       string  `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Topology    string  `parquet:"name=topology, type=BYTE_ARRAY, convertedtype=UTF8"`
	Server      int32   `parquet:"name=server, type=INT32"`
	Time        float64 `parquet:"name=time, type=DOUBLE"`
	QueueLength int32   `parquet:"name=queue_length, type=INT32"`
}

// ParquetWriter writes <path>_customers.parquet and <path>_samples.parquet.
type ParquetWriter struct {
	files     []source.ParquetFile
	customers *writer.ParquetWriter
	samples   *writer.ParquetWriter
}

// NewParquetWriter creates both files.
func NewParquetWriter(path string) (*ParquetWriter, error) {
	w := &ParquetWriter{}
	var err error
	if w.customers, err = w.create(path+"_customers.parquet", new(CustomerParquetRow)); err != nil {
		w.Close()
		return nil, err
	}
	if w.samples, err = w.create(path+"_samples.parquet", new(SampleParquetRow)); err != nil {
		w.Close()
		return nil, err
	}
	logrus.Infof("writing Parquet results to %s_{customers,samples}.parquet", path)
	return w, nil
}

func (w *ParquetWriter) create(filename string, schema interface{}) (*writer.ParquetWriter, error) {
	if err := mustNotExist(filename); err != nil {
		return nil, err
	}
	fw, err := local.NewLocalFileWriter(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create local file writer: %w", err)
	}
	w.files = append(w.files, fw)
	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	return pw, nil
}

// Write appends the records and samples of res.
func (w *ParquetWriter) Write(res *sim.Result) error {
	topo := string(res.Topology)
	cumMean := stats.CumulativeMeanSojourn(res.Records)
	for i, r := range res.Records {
		row := CustomerParquetRow{
			RunID:         res.RunID,
			Topology:      topo,
			ID:            r.ID,
			Server:        int32(r.Server),
			ArrivalTime:   r.ArrivalTime,
			ServiceStart:  r.ServiceStart,
			DepartureTime: r.DepartureTime,
			ServiceTime:   r.ServiceTime,
			WaitTime:      r.WaitTime,
			SojournTime:   r.SojournTime,

			CumulativeMeanSojourn: cumMean[i],
		}
		if err := w.customers.Write(row); err != nil {
			return fmt.Errorf("writing customer %d: %w", r.ID, err)
		}
	}
	for srv, series := range res.Samples {
		for _, s := range series {
			row := SampleParquetRow{
				RunID:       res.RunID,
				Topology:    topo,
				Server:      int32(srv),
				Time:        s.Time,
				QueueLength: int32(s.QueueLength),
			}
			if err := w.samples.Write(row); err != nil {
				return fmt.Errorf("writing sample: %w", err)
			}
		}
	}
	return nil
}

// Close writes the Parquet footers and closes the files.
func (w *ParquetWriter) Close() error {
	var lastErr error
	for _, pw := range []*writer.ParquetWriter{w.customers, w.samples} {
		if pw == nil {
			continue
		}
		if err := pw.WriteStop(); err != nil {
			lastErr = err
			logrus.Errorf("error closing parquet writer: %v", err)
		}
	}
	for _, f := range w.files {
		if err := f.Close(); err != nil {
			lastErr = err
			logrus.Errorf("error closing parquet file: %v", err)
		}
	}
	w.customers, w.samples, w.files = nil, nil, nil
	return lastErr
}
