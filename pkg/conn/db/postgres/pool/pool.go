// Package pool narrows pgx's pool types to the query surface the
// stores need, so tests can stand in fakes for them.
package pool

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// something which begins a SQL transaction.
type Begin interface {
	Begin(ctx context.Context) (Tx, error)
}

// something which begins a SQL transaction with options.
type BeginTx interface {
	Begin
	BeginTx(ctx context.Context, opts pgx.TxOptions) (Tx, error)
}

// something which sends SQL commands.
//
// Extracted from "pgxpool.Conn" and "pgx.Tx". It is a subset;
// when more methods of pgx are needed, declare them here.
type Queryer interface {
	// send a SQL command without result rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)

	// send a SQL command with result rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)

	// send a SQL command with a single result row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Tx is a subset of `pgx.Tx`, without savepoints.
// Obtain a Tx from Pool or Conn in this package.
type Tx interface {
	Queryer

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is a subset of `*pgxpool.Conn`. Obtain one from Pool.Acquire.
type Conn interface {
	BeginTx
	Queryer

	Release()
}

// Pool is a subset of `*pgxpool.Pool`. Wrap one to get a Pool.
type Pool interface {
	BeginTx

	Acquire(ctx context.Context) (Conn, error)
}

// Wrap adapts a pgx pool to Pool.
func Wrap(p *pgxpool.Pool) Pool {
	return &wrappedPool{body: p}
}

type wrappedPool struct {
	body *pgxpool.Pool
}

var _ Pool = &wrappedPool{}

func (p *wrappedPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.body.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &wrappedConn{body: conn}, nil
}

func (p *wrappedPool) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.body.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &wrappedTx{body: tx}, nil
}

func (p *wrappedPool) BeginTx(ctx context.Context, opts pgx.TxOptions) (Tx, error) {
	tx, err := p.body.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &wrappedTx{body: tx}, nil
}

type wrappedConn struct {
	body *pgxpool.Conn
}

var _ Conn = &wrappedConn{}

func (c *wrappedConn) Release() {
	c.body.Release()
}

func (c *wrappedConn) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.body.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &wrappedTx{body: tx}, nil
}

func (c *wrappedConn) BeginTx(ctx context.Context, opts pgx.TxOptions) (Tx, error) {
	tx, err := c.body.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &wrappedTx{body: tx}, nil
}

func (c *wrappedConn) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return c.body.Exec(ctx, sql, args...)
}

func (c *wrappedConn) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return c.body.Query(ctx, sql, args...)
}

func (c *wrappedConn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return c.body.QueryRow(ctx, sql, args...)
}

type wrappedTx struct {
	body pgx.Tx
}

var _ Tx = &wrappedTx{}

func (tx *wrappedTx) Commit(ctx context.Context) error {
	return tx.body.Commit(ctx)
}

func (tx *wrappedTx) Rollback(ctx context.Context) error {
	return tx.body.Rollback(ctx)
}

func (tx *wrappedTx) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return tx.body.Exec(ctx, sql, args...)
}

func (tx *wrappedTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return tx.body.Query(ctx, sql, args...)
}

func (tx *wrappedTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return tx.body.QueryRow(ctx, sql, args...)
}
