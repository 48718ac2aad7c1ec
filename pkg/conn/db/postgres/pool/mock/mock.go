// Package mock provides in-memory stands-in for the pool interfaces.
//
// Methods panic when no Impl is given, except bookkeeping ones
// (Rollback, Release) which tests rarely care to script.
package mock

import (
	"errors"
	"fmt"
	"reflect"

	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgproto3/v2"
	"github.com/jackc/pgx/v4"

	kpool "github.com/hubcluster/hubcluster/pkg/conn/db/postgres/pool"
)

// QueryLog is a record of a single Exec/Query/QueryRow call.
type QueryLog struct {
	SQL  string
	Args []interface{}
}

type Pool struct {
	Impl struct {
		Begin   func(context.Context) (kpool.Tx, error)
		BeginTx func(context.Context, pgx.TxOptions) (kpool.Tx, error)
		Acquire func(context.Context) (kpool.Conn, error)
	}
	Calls struct {
		Begin   int
		BeginTx []pgx.TxOptions
		Acquire int
	}
}

func NewPool() *Pool {
	return &Pool{}
}

var _ kpool.Pool = &Pool{}

func (p *Pool) Begin(ctx context.Context) (kpool.Tx, error) {
	p.Calls.Begin += 1
	if p.Impl.Begin != nil {
		return p.Impl.Begin(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (p *Pool) BeginTx(ctx context.Context, opts pgx.TxOptions) (kpool.Tx, error) {
	p.Calls.BeginTx = append(p.Calls.BeginTx, opts)
	if p.Impl.BeginTx != nil {
		return p.Impl.BeginTx(ctx, opts)
	}
	panic(errors.New("it should not be called"))
}

func (p *Pool) Acquire(ctx context.Context) (kpool.Conn, error) {
	p.Calls.Acquire += 1
	if p.Impl.Acquire != nil {
		return p.Impl.Acquire(ctx)
	}
	panic(errors.New("it should not be called"))
}

type Tx struct {
	Impl struct {
		Commit   func(context.Context) error
		Rollback func(context.Context) error
		Exec     func(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
		Query    func(context.Context, string, ...interface{}) (pgx.Rows, error)
		QueryRow func(context.Context, string, ...interface{}) pgx.Row
	}
	Calls struct {
		Commit   int
		Rollback int
		Exec     []QueryLog
		Query    []QueryLog
		QueryRow []QueryLog
	}
}

func NewTx() *Tx {
	return &Tx{}
}

var _ kpool.Tx = &Tx{}

func (tx *Tx) Commit(ctx context.Context) error {
	tx.Calls.Commit += 1
	if tx.Impl.Commit != nil {
		return tx.Impl.Commit(ctx)
	}
	return nil
}

func (tx *Tx) Rollback(ctx context.Context) error {
	tx.Calls.Rollback += 1
	if tx.Impl.Rollback != nil {
		return tx.Impl.Rollback(ctx)
	}
	return nil
}

func (tx *Tx) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	tx.Calls.Exec = append(tx.Calls.Exec, QueryLog{SQL: sql, Args: args})
	if tx.Impl.Exec != nil {
		return tx.Impl.Exec(ctx, sql, args...)
	}
	panic(errors.New("it should not be called"))
}

func (tx *Tx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	tx.Calls.Query = append(tx.Calls.Query, QueryLog{SQL: sql, Args: args})
	if tx.Impl.Query != nil {
		return tx.Impl.Query(ctx, sql, args...)
	}
	panic(errors.New("it should not be called"))
}

func (tx *Tx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	tx.Calls.QueryRow = append(tx.Calls.QueryRow, QueryLog{SQL: sql, Args: args})
	if tx.Impl.QueryRow != nil {
		return tx.Impl.QueryRow(ctx, sql, args...)
	}
	panic(errors.New("it should not be called"))
}

type Conn struct {
	Impl struct {
		Begin    func(context.Context) (kpool.Tx, error)
		BeginTx  func(context.Context, pgx.TxOptions) (kpool.Tx, error)
		Exec     func(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
		Query    func(context.Context, string, ...interface{}) (pgx.Rows, error)
		QueryRow func(context.Context, string, ...interface{}) pgx.Row
	}
	Calls struct {
		Release  int
		Exec     []QueryLog
		Query    []QueryLog
		QueryRow []QueryLog
	}
}

func NewConn() *Conn {
	return &Conn{}
}

var _ kpool.Conn = &Conn{}

func (c *Conn) Begin(ctx context.Context) (kpool.Tx, error) {
	if c.Impl.Begin != nil {
		return c.Impl.Begin(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (c *Conn) BeginTx(ctx context.Context, opts pgx.TxOptions) (kpool.Tx, error) {
	if c.Impl.BeginTx != nil {
		return c.Impl.BeginTx(ctx, opts)
	}
	panic(errors.New("it should not be called"))
}

func (c *Conn) Release() {
	c.Calls.Release += 1
}

func (c *Conn) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	c.Calls.Exec = append(c.Calls.Exec, QueryLog{SQL: sql, Args: args})
	if c.Impl.Exec != nil {
		return c.Impl.Exec(ctx, sql, args...)
	}
	panic(errors.New("it should not be called"))
}

func (c *Conn) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	c.Calls.Query = append(c.Calls.Query, QueryLog{SQL: sql, Args: args})
	if c.Impl.Query != nil {
		return c.Impl.Query(ctx, sql, args...)
	}
	panic(errors.New("it should not be called"))
}

func (c *Conn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	c.Calls.QueryRow = append(c.Calls.QueryRow, QueryLog{SQL: sql, Args: args})
	if c.Impl.QueryRow != nil {
		return c.Impl.QueryRow(ctx, sql, args...)
	}
	panic(errors.New("it should not be called"))
}

// Column builds a pgproto3.FieldDescription as found in query results.
func Column(name string, oid uint32) pgproto3.FieldDescription {
	return pgproto3.FieldDescription{Name: []byte(name), DataTypeOID: oid}
}

// Rows implements pgx.Rows over canned records.
type Rows struct {
	Columns []pgproto3.FieldDescription
	Records [][]interface{}
	Tag     pgconn.CommandTag
	ErrVal  error

	cursor int
	Closed bool
}

var _ pgx.Rows = &Rows{}

func (r *Rows) Close() {
	r.Closed = true
}

func (r *Rows) Err() error {
	return r.ErrVal
}

func (r *Rows) CommandTag() pgconn.CommandTag {
	return r.Tag
}

func (r *Rows) FieldDescriptions() []pgproto3.FieldDescription {
	return r.Columns
}

func (r *Rows) Next() bool {
	if r.cursor < len(r.Records) {
		r.cursor += 1
		return true
	}
	return false
}

func (r *Rows) Scan(dest ...interface{}) error {
	if r.cursor == 0 || len(r.Records) < r.cursor {
		return errors.New("Scan called without Next")
	}
	return scanInto(dest, r.Records[r.cursor-1])
}

func (r *Rows) Values() ([]interface{}, error) {
	if r.cursor == 0 || len(r.Records) < r.cursor {
		return nil, errors.New("Values called without Next")
	}
	return r.Records[r.cursor-1], nil
}

func (r *Rows) RawValues() [][]byte {
	return nil
}

// Row implements pgx.Row with a single canned record.
//
// When Values is empty and Err is not set, Scan returns pgx.ErrNoRows.
type Row struct {
	Values []interface{}
	Err    error
}

var _ pgx.Row = &Row{}

func (r *Row) Scan(dest ...interface{}) error {
	if r.Err != nil {
		return r.Err
	}
	if len(r.Values) == 0 {
		return pgx.ErrNoRows
	}
	return scanInto(dest, r.Values)
}

func scanInto(dest []interface{}, record []interface{}) error {
	if len(dest) != len(record) {
		return fmt.Errorf("scan: %d targets for %d values", len(dest), len(record))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Ptr || dv.IsNil() {
			return fmt.Errorf("scan: target #%d is not a pointer", i)
		}
		target := dv.Elem()

		if record[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}

		sv := reflect.ValueOf(record[i])
		if target.Kind() == reflect.Ptr && sv.Type() != target.Type() {
			// nullable column scanned into *T, fed with a bare T
			p := reflect.New(target.Type().Elem())
			if !sv.Type().ConvertibleTo(target.Type().Elem()) {
				return fmt.Errorf("scan: cannot put %T into %s", record[i], target.Type())
			}
			p.Elem().Set(sv.Convert(target.Type().Elem()))
			target.Set(p)
			continue
		}

		if !sv.Type().ConvertibleTo(target.Type()) {
			return fmt.Errorf("scan: cannot put %T into %s", record[i], target.Type())
		}
		target.Set(sv.Convert(target.Type()))
	}
	return nil
}
