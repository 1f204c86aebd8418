package writer

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/lib/pq"
	"github.com/paulmach/orb/encoding/ewkb"
	"github.com/pkg/errors"
	"github.com/treepedia/streetpoints/element"
	"github.com/treepedia/streetpoints/log"
)

const srid = 4326

type SQLError struct {
	query         string
	originalError error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s", e.originalError.Error(), e.query)
}

func (e *SQLError) Cause() error { return e.originalError }

type tableSpec struct {
	Schema string
	Table  string
}

func (spec tableSpec) fullName() string {
	return pq.QuoteIdentifier(spec.Schema) + "." + pq.QuoteIdentifier(spec.Table)
}

func (spec tableSpec) CreateSchemaSQL() string {
	return fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, pq.QuoteIdentifier(spec.Schema))
}

func (spec tableSpec) CreateTableSQL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            id integer,
            geometry geometry(Point, %d)
        )`, spec.fullName(), srid)
}

func (spec tableSpec) TruncateSQL() string {
	return fmt.Sprintf(`TRUNCATE TABLE %s`, spec.fullName())
}

func (spec tableSpec) HasRowsSQL() string {
	return fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s)`, spec.fullName())
}

func (spec tableSpec) CopySQL() string {
	return pq.CopyInSchema(spec.Schema, spec.Table, "id", "geometry")
}

// connectionParams converts postgis:// URLs and disables SSL for local
// connections without explicit sslmode.
func connectionParams(conn string) (string, error) {
	if strings.HasPrefix(conn, "postgis://") {
		conn = strings.Replace(conn, "postgis", "postgres", 1)
	}
	params, err := pq.ParseURL(conn)
	if err != nil {
		return "", err
	}
	return disableDefaultSslOnLocalhost(params), nil
}

func disableDefaultSslOnLocalhost(params string) string {
	parts := strings.Fields(params)
	isLocalHost := false
	for _, p := range parts {
		if strings.HasPrefix(p, "sslmode=") {
			return params
		}
		if p == "host=localhost" || p == "host=127.0.0.1" {
			isLocalHost = true
		}
	}

	if !isLocalHost {
		return params
	}

	if os.Getenv("PGSSLMODE") != "" {
		return params
	}
	return params + " sslmode=disable"
}

// postgisSink loads all points with a single COPY inside one transaction.
// Nothing is visible in the table before Close.
type postgisSink struct {
	db   *sql.DB
	tx   *sql.Tx
	stmt *sql.Stmt
	spec tableSpec
}

func newPostGIS(conn string, opts Options) (*postgisSink, error) {
	params, err := connectionParams(conn)
	if err != nil {
		return nil, err
	}
	spec := tableSpec{Schema: opts.Schema, Table: opts.Table}
	if spec.Schema == "" {
		spec.Schema = DefaultSchema
	}
	if spec.Table == "" {
		spec.Table = DefaultTable
	}

	db, err := sql.Open("postgres", params)
	if err != nil {
		return nil, err
	}
	s := &postgisSink{db: db, spec: spec}
	if err := s.begin(opts.Overwrite); err != nil {
		s.abort()
		return nil, err
	}
	return s, nil
}

func (s *postgisSink) exec(sql string) error {
	if _, err := s.tx.Exec(sql); err != nil {
		return &SQLError{sql, err}
	}
	return nil
}

func (s *postgisSink) begin(overwrite bool) error {
	var err error
	s.tx, err = s.db.Begin()
	if err != nil {
		return err
	}
	if s.spec.Schema != DefaultSchema {
		if err := s.exec(s.spec.CreateSchemaSQL()); err != nil {
			return err
		}
	}
	if err := s.exec(s.spec.CreateTableSQL()); err != nil {
		return err
	}

	if overwrite {
		if err := s.exec(s.spec.TruncateSQL()); err != nil {
			return err
		}
	} else {
		var hasRows bool
		sql := s.spec.HasRowsSQL()
		if err := s.tx.QueryRow(sql).Scan(&hasRows); err != nil {
			return &SQLError{sql, err}
		}
		if hasRows {
			return errors.Errorf("table %s already contains rows", s.spec.fullName())
		}
	}

	sql := s.spec.CopySQL()
	s.stmt, err = s.tx.Prepare(sql)
	if err != nil {
		return &SQLError{sql, err}
	}
	log.Printf("[info] writing points into %s", s.spec.fullName())
	return nil
}

func (s *postgisSink) Write(p element.SampledPoint) error {
	geom, err := ewkb.MarshalToHex(p.Point, srid)
	if err != nil {
		return err
	}
	if _, err := s.stmt.Exec(p.ID, geom); err != nil {
		return &SQLError{s.spec.CopySQL(), err}
	}
	return nil
}

func (s *postgisSink) Close() error {
	if _, err := s.stmt.Exec(); err != nil {
		s.abort()
		return &SQLError{s.spec.CopySQL(), err}
	}
	if err := s.stmt.Close(); err != nil {
		s.abort()
		return err
	}
	s.stmt = nil
	if err := s.tx.Commit(); err != nil {
		s.tx = nil
		s.abort()
		return err
	}
	s.tx = nil
	return s.db.Close()
}

// Abort rolls back the transaction. The table is left as it was before
// the run.
func (s *postgisSink) Abort() {
	s.abort()
}

func (s *postgisSink) abort() {
	if s.stmt != nil {
		s.stmt.Close()
		s.stmt = nil
	}
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil {
			log.Println("[warn] rollback failed:", err)
		}
		s.tx = nil
	}
	s.db.Close()
}
