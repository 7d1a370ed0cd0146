package recorder

import (
	"database/sql"
	"fmt"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/queue-sim/sim"
	"github.com/inference-sim/queue-sim/sim/stats"
)

// SQLiteWriter writes results to <path>.sqlite3 with one table each for
// runs, customers and monitor samples. Rows are buffered and inserted in
// batched transactions.
type SQLiteWriter struct {
	*sql.DB
	dbName string

	runStmt      *sql.Stmt
	customerStmt *sql.Stmt
	sampleStmt   *sql.Stmt

	pendingCustomers []customerRow
	pendingSamples   []sampleRow
	batchSize        int
}

type customerRow struct {
	runID   string
	rec     sim.CustomerRecord
	cumMean float64
}

type sampleRow struct {
	runID  string
	server int
	sample sim.MonitorSample
}

// NewSQLiteWriter creates the database file and its schema.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	w := &SQLiteWriter{
		dbName:    path + ".sqlite3",
		batchSize: 100000,
	}
	if err := mustNotExist(w.dbName); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", w.dbName)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", w.dbName, err)
	}
	w.DB = db

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	logrus.Infof("writing SQLite results to %s", w.dbName)
	return w, nil
}

func (w *SQLiteWriter) createTables() error {
	stmts := []string{
		`CREATE TABLE runs
		(
			run_id          VARCHAR(40) PRIMARY KEY,
			topology        VARCHAR(20) NOT NULL,
			seed            INTEGER     NOT NULL,
			arrival_rate    FLOAT       NOT NULL,
			service_rate    FLOAT       NOT NULL,
			num_servers     INTEGER     NOT NULL,
			horizon         FLOAT       NOT NULL,
			sample_interval FLOAT       NOT NULL,
			arrivals        INTEGER     NOT NULL,
			in_system       INTEGER     NOT NULL,
			events          INTEGER     NOT NULL
		);`,
		`CREATE TABLE customers
		(
			run_id                  VARCHAR(40) NOT NULL,
			id                      INTEGER     NOT NULL,
			server                  INTEGER     NOT NULL,
			arrival_time            FLOAT       NOT NULL,
			service_start           FLOAT       NOT NULL,
			departure_time          FLOAT       NOT NULL,
			service_time            FLOAT       NOT NULL,
			wait_time               FLOAT       NOT NULL,
			sojourn_time            FLOAT       NOT NULL,
			cumulative_mean_sojourn FLOAT       NOT NULL
		);`,
		`CREATE INDEX customers_run_id_index ON customers (run_id);`,
		`CREATE TABLE samples
		(
			run_id       VARCHAR(40) NOT NULL,
			server       INTEGER     NOT NULL,
			time         FLOAT       NOT NULL,
			queue_length INTEGER     NOT NULL
		);`,
		`CREATE INDEX samples_run_id_index ON samples (run_id);`,
	}
	for _, s := range stmts {
		if _, err := w.Exec(s); err != nil {
			return fmt.Errorf("creating schema in %s: %w", w.dbName, err)
		}
	}
	return nil
}

func (w *SQLiteWriter) prepareStatements() error {
	var err error
	if w.runStmt, err = w.Prepare(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`); err != nil {
		return fmt.Errorf("preparing runs insert: %w", err)
	}
	if w.customerStmt, err = w.Prepare(`INSERT INTO customers VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`); err != nil {
		return fmt.Errorf("preparing customers insert: %w", err)
	}
	if w.sampleStmt, err = w.Prepare(`INSERT INTO samples VALUES (?, ?, ?, ?)`); err != nil {
		return fmt.Errorf("preparing samples insert: %w", err)
	}
	return nil
}

// Write inserts the run row immediately and buffers its records and samples.
func (w *SQLiteWriter) Write(res *sim.Result) error {
	cfg := res.Config
	_, err := w.runStmt.Exec(res.RunID, string(res.Topology), res.Seed,
		cfg.ArrivalRate, cfg.ServiceRate, cfg.NumServers, cfg.Horizon, cfg.SampleInterval,
		res.Arrivals, res.InSystem, res.Events)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", res.RunID, err)
	}

	cumMean := stats.CumulativeMeanSojourn(res.Records)
	for i, r := range res.Records {
		w.pendingCustomers = append(w.pendingCustomers, customerRow{runID: res.RunID, rec: r, cumMean: cumMean[i]})
		if len(w.pendingCustomers) >= w.batchSize {
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
	for srv, series := range res.Samples {
		for _, s := range series {
			w.pendingSamples = append(w.pendingSamples, sampleRow{runID: res.RunID, server: srv, sample: s})
			if len(w.pendingSamples) >= w.batchSize {
				if err := w.Flush(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Flush writes all buffered rows in one transaction.
func (w *SQLiteWriter) Flush() error {
	if len(w.pendingCustomers) == 0 && len(w.pendingSamples) == 0 {
		return nil
	}
	tx, err := w.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	customers := tx.Stmt(w.customerStmt)
	for _, row := range w.pendingCustomers {
		r := row.rec
		_, err := customers.Exec(row.runID, r.ID, r.Server, r.ArrivalTime, r.ServiceStart,
			r.DepartureTime, r.ServiceTime, r.WaitTime, r.SojournTime, row.cumMean)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting customer %d of run %s: %w", r.ID, row.runID, err)
		}
	}
	samples := tx.Stmt(w.sampleStmt)
	for _, row := range w.pendingSamples {
		if _, err := samples.Exec(row.runID, row.server, row.sample.Time, row.sample.QueueLength); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting sample of run %s: %w", row.runID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	logrus.Debugf("flushed %d customers and %d samples to %s",
		len(w.pendingCustomers), len(w.pendingSamples), w.dbName)

	w.pendingCustomers = nil
	w.pendingSamples = nil
	return nil
}

// Close flushes pending rows and closes the database.
func (w *SQLiteWriter) Close() error {
	if w.DB == nil {
		return nil
	}
	flushErr := w.Flush()
	for _, stmt := range []*sql.Stmt{w.runStmt, w.customerStmt, w.sampleStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	err := w.DB.Close()
	w.DB = nil
	if flushErr != nil {
		return flushErr
	}
	return err
}

// DBName returns the database file name.
func (w *SQLiteWriter) DBName() string {
	return w.dbName
}
