package scanner

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

type Queryer interface {
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
}

// Scanner reads pgx.Rows into values of T.
//
// # example
//
//	type hubRow struct {
//		Name   string
//		Status string
//	}
//
//	func GetAllHubs(ctx context.Context, conn pgx.Conn) ([]hubRow, error) {
//		return scanner.New[hubRow]().QueryAll(
//			ctx, conn, `select "name", "status" from "hub"`,
//		)
//	}
//
// # mapping rule
//
//	for struct T, each column is mapped into
//
//		1. the field with tag `sql:"column_name"`
//		2. or, the field named as same as the column name
//		3. or, the field named as the CamelCase version of the column name
//
//	For example, column "release_name" is mapped into the field
//	tagged `sql:"release_name"`, or named "release_name" or "ReleaseName".
//
//	for string, bool, numeric, time.Time and []byte T,
//	the query result should have exactly one column.
type Scanner[T any] interface {
	// ScanAll drains rows into a slice of T.
	ScanAll(pgx.Rows) ([]T, error)

	// QueryAll runs the query on q and drains its result.
	QueryAll(ctx context.Context, q Queryer, query string, args ...interface{}) ([]T, error)
}

func New[T any]() Scanner[T] {
	t := reflect.TypeOf(*new(T))

	// time.Time is a struct, but scans as a single value.
	if t.Kind() != reflect.Struct ||
		t.AssignableTo(reflect.TypeOf(time.Time{})) ||
		t.AssignableTo(reflect.TypeOf([]byte{})) {
		return &columnScanner[T]{}
	}

	byTag := map[string]string{}
	byName := map[string]string{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		byName[f.Name] = f.Name
		if tag, ok := f.Tag.Lookup("sql"); ok {
			byTag[tag] = f.Name
		}
	}

	return &structScanner[T]{byTag: byTag, byName: byName}
}

// structScanner maps columns to fields of T by name, once per result set.
type structScanner[T any] struct {
	byTag  map[string]string
	byName map[string]string
}

func (s *structScanner[T]) fieldFor(column string) (string, bool) {
	if f, ok := s.byTag[column]; ok {
		return f, true
	}
	if f, ok := s.byName[column]; ok {
		return f, true
	}
	if f, ok := s.byName[camel(column)]; ok {
		return f, true
	}
	return "", false
}

func (s *structScanner[T]) ScanAll(rows pgx.Rows) ([]T, error) {
	fields := make([]string, 0, len(rows.FieldDescriptions()))
	for _, fd := range rows.FieldDescriptions() {
		col := string(fd.Name)
		f, ok := s.fieldFor(col)
		if !ok {
			return nil, fmt.Errorf(
				`field for column "%s" is not found in type "%T"`, col, *new(T),
			)
		}
		fields = append(fields, f)
	}

	ret := make([]T, 0, rows.CommandTag().RowsAffected())
	for rows.Next() {
		elem := new(T)
		ev := reflect.ValueOf(elem).Elem()

		dest := make([]interface{}, len(fields))
		for nth, f := range fields {
			dest[nth] = ev.FieldByName(f).Addr().Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		ret = append(ret, *elem)
	}
	return ret, rows.Err()
}

func (s *structScanner[T]) QueryAll(ctx context.Context, conn Queryer, sql string, args ...interface{}) ([]T, error) {
	return queryAll[T](ctx, s, conn, sql, args)
}

// columnScanner converts single-column results via reflection,
// since pgx renders values of unqualified queries as their go defaults.
type columnScanner[T any] struct{}

func (s *columnScanner[T]) ScanAll(rows pgx.Rows) ([]T, error) {
	columns := rows.FieldDescriptions()
	if len(columns) != 1 {
		return nil, fmt.Errorf(
			"%d columns in result for single-value type %T", len(columns), *new(T),
		)
	}

	ttype := reflect.TypeOf(*new(T))
	ret := make([]T, 0, rows.CommandTag().RowsAffected())
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		if values[0] == nil {
			ret = append(ret, *new(T))
			continue
		}

		v := reflect.ValueOf(values[0])
		if !v.CanConvert(ttype) {
			return nil, fmt.Errorf(
				`column "%s" (type: %s in sql, %T in golang) can not be converted to "%T"`,
				columns[0].Name, pgTypeName(columns[0].DataTypeOID), values[0], *new(T),
			)
		}
		ret = append(ret, v.Convert(ttype).Interface().(T))
	}
	return ret, rows.Err()
}

func (s *columnScanner[T]) QueryAll(ctx context.Context, conn Queryer, sql string, args ...interface{}) ([]T, error) {
	return queryAll[T](ctx, s, conn, sql, args)
}

func queryAll[T any](ctx context.Context, s Scanner[T], conn Queryer, sql string, args []interface{}) ([]T, error) {
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.ScanAll(rows)
}

// camel converts snake_case to CamelCase. "release_name" becomes "ReleaseName".
func camel(s string) string {
	b := &strings.Builder{}
	for _, ss := range strings.Split(s, "_") {
		if len(ss) == 0 {
			continue
		}
		b.WriteString(strings.ToUpper(ss[0:1]))
		b.WriteString(ss[1:])
	}
	return b.String()
}

var pgTypeNames = map[uint32]string{
	pgtype.BoolOID:         "bool",
	pgtype.ByteaOID:        "bytea",
	pgtype.Int2OID:         "int2",
	pgtype.Int4OID:         "int4",
	pgtype.Int8OID:         "int8",
	pgtype.Float4OID:       "float4",
	pgtype.Float8OID:       "float8",
	pgtype.TextOID:         "text",
	pgtype.VarcharOID:      "varchar",
	pgtype.BPCharOID:       "bpchar",
	pgtype.JSONOID:         "json",
	pgtype.JSONBOID:        "jsonb",
	pgtype.DateOID:         "date",
	pgtype.TimeOID:         "time",
	pgtype.TimestampOID:    "timestamp",
	pgtype.TimestamptzOID:  "timestamptz",
	pgtype.IntervalOID:     "interval",
	pgtype.NumericOID:      "numeric",
	pgtype.UUIDOID:         "uuid",
	pgtype.TextArrayOID:    "text[]",
	pgtype.VarcharArrayOID: "varchar[]",
	pgtype.Int4ArrayOID:    "int4[]",
	pgtype.Int8ArrayOID:    "int8[]",
	pgtype.UnknownOID:      "unknown",
}

func pgTypeName(oid uint32) string {
	if name, ok := pgTypeNames[oid]; ok {
		return name
	}
	return fmt.Sprintf("undefined oid(%d)", oid)
}
