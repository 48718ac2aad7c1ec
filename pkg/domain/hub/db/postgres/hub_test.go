package postgres_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgproto3/v2"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	kpool "github.com/hubcluster/hubcluster/pkg/conn/db/postgres/pool"
	kpgmock "github.com/hubcluster/hubcluster/pkg/conn/db/postgres/pool/mock"
	"github.com/hubcluster/hubcluster/pkg/domain"
	domerr "github.com/hubcluster/hubcluster/pkg/domain/errors"
	hubdb "github.com/hubcluster/hubcluster/pkg/domain/hub/db"
	kpghub "github.com/hubcluster/hubcluster/pkg/domain/hub/db/postgres"
	"github.com/hubcluster/hubcluster/pkg/utils/pointer"
	"github.com/hubcluster/hubcluster/pkg/utils/try"
)

func hubColumns() []pgproto3.FieldDescription {
	return []pgproto3.FieldDescription{
		kpgmock.Column("name", pgtype.VarcharOID),
		kpgmock.Column("namespace", pgtype.VarcharOID),
		kpgmock.Column("owner", pgtype.VarcharOID),
		kpgmock.Column("release_name", pgtype.VarcharOID),
		kpgmock.Column("chart", pgtype.VarcharOID),
		kpgmock.Column("chart_version", pgtype.VarcharOID),
		kpgmock.Column("values", pgtype.JSONBOID),
		kpgmock.Column("status", pgtype.VarcharOID),
		kpgmock.Column("url", pgtype.VarcharOID),
		kpgmock.Column("description", pgtype.VarcharOID),
		kpgmock.Column("error_message", pgtype.VarcharOID),
		kpgmock.Column("created", pgtype.TimestamptzOID),
		kpgmock.Column("last_activity", pgtype.TimestamptzOID),
	}
}

func txPool(tx *kpgmock.Tx) *kpgmock.Pool {
	pool := kpgmock.NewPool()
	pool.Impl.BeginTx = func(context.Context, pgx.TxOptions) (kpool.Tx, error) {
		return tx, nil
	}
	return pool
}

func connPool(conn *kpgmock.Conn) *kpgmock.Pool {
	pool := kpgmock.NewPool()
	pool.Impl.Acquire = func(context.Context) (kpool.Conn, error) {
		return conn, nil
	}
	return pool
}

// createTxRows scripts the queries New issues, keyed by a recognizable
// fragment of each statement.
type createTxRows struct {
	nameCount      *kpgmock.Row
	namespaceCount *kpgmock.Row
	user           *kpgmock.Row
	ownedCount     *kpgmock.Row
	insert         *kpgmock.Row
}

func scriptCreate(t *testing.T, rows createTxRows) *kpgmock.Tx {
	t.Helper()

	tx := kpgmock.NewTx()
	tx.Impl.QueryRow = func(_ context.Context, sql string, _ ...interface{}) pgx.Row {
		switch {
		case strings.Contains(sql, `where "name" = $1`) && strings.Contains(sql, `count(*)`):
			return rows.nameCount
		case strings.Contains(sql, `where "namespace" = $1`):
			return rows.namespaceCount
		case strings.Contains(sql, `from "user"`):
			return rows.user
		case strings.Contains(sql, `where "owner" = $1`):
			return rows.ownedCount
		case strings.Contains(sql, `insert into "hub"`):
			return rows.insert
		default:
			t.Fatalf("unexpected query: %s", sql)
			return nil
		}
	}
	return tx
}

func TestHubPG_New(t *testing.T) {
	ctx := context.Background()

	spec := hubdb.HubSpec{
		Name:         "team-a",
		Namespace:    "jupyterhub-team-a",
		Owner:        "alice",
		ReleaseName:  "jupyterhub-team-a",
		Chart:        "jupyterhub/jupyterhub",
		ChartVersion: "3.2.1",
		Values:       map[string]any{"hub": map[string]any{}},
		Description:  "team a's hub",
	}

	t.Run("it creates a hub in status pending", func(t *testing.T) {
		created := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

		tx := scriptCreate(t, createTxRows{
			nameCount:      &kpgmock.Row{Values: []interface{}{0}},
			namespaceCount: &kpgmock.Row{Values: []interface{}{0}},
			user:           &kpgmock.Row{Values: []interface{}{3, []string{"jupyterhub-"}}},
			ownedCount:     &kpgmock.Row{Values: []interface{}{1}},
			insert:         &kpgmock.Row{Values: []interface{}{created, created}},
		})
		pool := txPool(tx)

		testee := kpghub.New(pool)
		actual := try.To(testee.New(ctx, spec)).OrFatal(t)

		expected := domain.Hub{
			HubBody: domain.HubBody{
				Name:        "team-a",
				Owner:       "alice",
				Values:      map[string]any{"hub": map[string]any{}},
				Description: "team a's hub",
			},
			Namespace:    "jupyterhub-team-a",
			ReleaseName:  "jupyterhub-team-a",
			Chart:        "jupyterhub/jupyterhub",
			ChartVersion: "3.2.1",
			Status:       domain.Pending,
			Created:      created,
			LastActivity: created,
		}
		if !actual.Equal(expected) {
			t.Errorf("created hub:\n%+v\nexpected:\n%+v", actual, expected)
		}

		if len(pool.Calls.BeginTx) != 1 || pool.Calls.BeginTx[0].IsoLevel != pgx.Serializable {
			t.Errorf("transaction options: %+v", pool.Calls.BeginTx)
		}
		if tx.Calls.Commit != 1 {
			t.Errorf("commit is called %d times", tx.Calls.Commit)
		}

		var insert *kpgmock.QueryLog
		for i, q := range tx.Calls.QueryRow {
			if strings.Contains(q.SQL, `insert into "hub"`) {
				insert = &tx.Calls.QueryRow[i]
			}
		}
		if insert == nil {
			t.Fatal("no insert is issued")
		}
		wantArgs := []interface{}{
			"team-a", "jupyterhub-team-a", "alice", "jupyterhub-team-a",
			"jupyterhub/jupyterhub", "3.2.1",
			[]byte(`{"hub":{}}`), "team a's hub",
		}
		if !reflect.DeepEqual(insert.Args, wantArgs) {
			t.Errorf("insert args:\n%+v\nexpected:\n%+v", insert.Args, wantArgs)
		}
	})

	t.Run("it creates a hub for an owner without a user record", func(t *testing.T) {
		created := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

		tx := scriptCreate(t, createTxRows{
			nameCount:      &kpgmock.Row{Values: []interface{}{0}},
			namespaceCount: &kpgmock.Row{Values: []interface{}{0}},
			user:           &kpgmock.Row{}, // pgx.ErrNoRows
			insert:         &kpgmock.Row{Values: []interface{}{created, created}},
		})
		pool := txPool(tx)

		testee := kpghub.New(pool)
		hub := try.To(testee.New(ctx, spec)).OrFatal(t)

		if hub.Status != domain.Pending {
			t.Errorf("status: %s", hub.Status)
		}
		for _, q := range tx.Calls.QueryRow {
			if strings.Contains(q.SQL, `where "owner" = $1`) {
				t.Error("hub cap is checked without a cap to enforce")
			}
		}
	})

	t.Run("it stores empty values when nil is given", func(t *testing.T) {
		created := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

		tx := scriptCreate(t, createTxRows{
			nameCount:      &kpgmock.Row{Values: []interface{}{0}},
			namespaceCount: &kpgmock.Row{Values: []interface{}{0}},
			user:           &kpgmock.Row{},
			insert:         &kpgmock.Row{Values: []interface{}{created, created}},
		})
		pool := txPool(tx)

		nilValues := spec
		nilValues.Values = nil

		testee := kpghub.New(pool)
		hub := try.To(testee.New(ctx, nilValues)).OrFatal(t)

		if hub.Values == nil || len(hub.Values) != 0 {
			t.Errorf("values: %+v (expected: empty map)", hub.Values)
		}
		for _, q := range tx.Calls.QueryRow {
			if strings.Contains(q.SQL, `insert into "hub"`) {
				if !reflect.DeepEqual(q.Args[6], []byte(`{}`)) {
					t.Errorf("stored values: %s", q.Args[6])
				}
			}
		}
	})

	t.Run("it rejects a duplicated hub name", func(t *testing.T) {
		tx := scriptCreate(t, createTxRows{
			nameCount: &kpgmock.Row{Values: []interface{}{1}},
		})
		pool := txPool(tx)

		testee := kpghub.New(pool)
		_, err := testee.New(ctx, spec)

		if !domerr.AsConflict(err) {
			t.Errorf("unexpected error: %+v", err)
		}
		if tx.Calls.Commit != 0 {
			t.Error("a rejected create is committed")
		}
		if len(tx.Calls.QueryRow) != 1 {
			t.Errorf("queries after rejection: %d", len(tx.Calls.QueryRow))
		}
	})

	t.Run("it rejects an invalid namespace name", func(t *testing.T) {
		tx := scriptCreate(t, createTxRows{
			nameCount: &kpgmock.Row{Values: []interface{}{0}},
		})
		pool := txPool(tx)

		invalid := spec
		invalid.Namespace = "jupyterhub--team-a-"

		testee := kpghub.New(pool)
		_, err := testee.New(ctx, invalid)

		if !domerr.AsValidation(err) {
			t.Errorf("unexpected error: %+v", err)
		}
		if !strings.Contains(err.Error(), "invalid namespace name") {
			t.Errorf("error message: %s", err.Error())
		}
	})

	t.Run("it rejects a namespace bound to another hub", func(t *testing.T) {
		tx := scriptCreate(t, createTxRows{
			nameCount:      &kpgmock.Row{Values: []interface{}{0}},
			namespaceCount: &kpgmock.Row{Values: []interface{}{1}},
		})
		pool := txPool(tx)

		testee := kpghub.New(pool)
		_, err := testee.New(ctx, spec)

		if !domerr.AsValidation(err) {
			t.Errorf("unexpected error: %+v", err)
		}
		if !strings.Contains(err.Error(), "already in use") {
			t.Errorf("error message: %s", err.Error())
		}
	})

	t.Run("it rejects an owner at their hub cap", func(t *testing.T) {
		tx := scriptCreate(t, createTxRows{
			nameCount:      &kpgmock.Row{Values: []interface{}{0}},
			namespaceCount: &kpgmock.Row{Values: []interface{}{0}},
			user:           &kpgmock.Row{Values: []interface{}{2, []string{}}},
			ownedCount:     &kpgmock.Row{Values: []interface{}{2}},
		})
		pool := txPool(tx)

		testee := kpghub.New(pool)
		_, err := testee.New(ctx, spec)

		if !domerr.AsValidation(err) {
			t.Errorf("unexpected error: %+v", err)
		}
		if !strings.Contains(err.Error(), "maximum hub limit of 2") {
			t.Errorf("error message: %s", err.Error())
		}
	})

	t.Run("it rejects a namespace outside the owner's allowed prefixes", func(t *testing.T) {
		tx := scriptCreate(t, createTxRows{
			nameCount:      &kpgmock.Row{Values: []interface{}{0}},
			namespaceCount: &kpgmock.Row{Values: []interface{}{0}},
			user:           &kpgmock.Row{Values: []interface{}{nil, []string{"team-b-"}}},
		})
		pool := txPool(tx)

		testee := kpghub.New(pool)
		_, err := testee.New(ctx, spec)

		if !domerr.AsValidation(err) {
			t.Errorf("unexpected error: %+v", err)
		}
		if !strings.Contains(err.Error(), "not allowed to deploy") {
			t.Errorf("error message: %s", err.Error())
		}
	})

	t.Run("it maps unique violations raced past the checks", func(t *testing.T) {
		for name, testcase := range map[string]struct {
			constraint string
			isConflict bool
		}{
			"on the hub name, to conflict": {
				constraint: "hub_pkey", isConflict: true,
			},
			"on the namespace, to validation": {
				constraint: "hub_namespace_key", isConflict: false,
			},
		} {
			t.Run(name, func(t *testing.T) {
				tx := scriptCreate(t, createTxRows{
					nameCount:      &kpgmock.Row{Values: []interface{}{0}},
					namespaceCount: &kpgmock.Row{Values: []interface{}{0}},
					user:           &kpgmock.Row{},
					insert: &kpgmock.Row{Err: &pgconn.PgError{
						Code:           pgerrcode.UniqueViolation,
						ConstraintName: testcase.constraint,
					}},
				})
				pool := txPool(tx)

				testee := kpghub.New(pool)
				_, err := testee.New(ctx, spec)

				if domerr.AsConflict(err) != testcase.isConflict {
					t.Errorf("conflict != %v for constraint %s: %+v", testcase.isConflict, testcase.constraint, err)
				}
				if domerr.AsValidation(err) == testcase.isConflict {
					t.Errorf("validation = %v for constraint %s: %+v", testcase.isConflict, testcase.constraint, err)
				}
			})
		}
	})
}

func TestHubPG_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("it retrieves hubs by name", func(t *testing.T) {
		created := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
		lastActivity := time.Date(2025, 4, 2, 10, 30, 0, 0, time.UTC)

		conn := kpgmock.NewConn()
		conn.Impl.Query = func(context.Context, string, ...interface{}) (pgx.Rows, error) {
			return &kpgmock.Rows{
				Columns: hubColumns(),
				Records: [][]interface{}{
					{
						"team-a", "jupyterhub-team-a", "alice", "jupyterhub-team-a",
						"jupyterhub/jupyterhub", "", []byte(`{"hub":{"cookieSecret":"x"}}`),
						"running", "https://hub-a.example.com", "", "",
						created, lastActivity,
					},
					{
						"team-b", "jupyterhub-team-b", "bob", "jupyterhub-team-b",
						"jupyterhub/jupyterhub", "3.2.1", []byte(`{}`),
						"error", "", "team b's hub", "deploy of release jupyterhub-team-b failed",
						created, created,
					},
				},
			}, nil
		}
		pool := connPool(conn)

		testee := kpghub.New(pool)
		actual := try.To(testee.Get(ctx, []string{"team-a", "team-b", "ghost"})).OrFatal(t)

		if !reflect.DeepEqual(
			conn.Calls.Query[0].Args,
			[]interface{}{[]string{"team-a", "team-b", "ghost"}},
		) {
			t.Errorf("query args: %+v", conn.Calls.Query[0].Args)
		}

		expected := map[string]domain.Hub{
			"team-a": {
				HubBody: domain.HubBody{
					Name:   "team-a",
					Owner:  "alice",
					Values: map[string]any{"hub": map[string]any{"cookieSecret": "x"}},
				},
				Namespace:   "jupyterhub-team-a",
				ReleaseName: "jupyterhub-team-a",
				Chart:       "jupyterhub/jupyterhub",
				Status:      domain.Running,
				URL:         "https://hub-a.example.com",
				Created:     created, LastActivity: lastActivity,
			},
			"team-b": {
				HubBody: domain.HubBody{
					Name: "team-b", Owner: "bob",
					Values:      map[string]any{},
					Description: "team b's hub",
				},
				Namespace:    "jupyterhub-team-b",
				ReleaseName:  "jupyterhub-team-b",
				Chart:        "jupyterhub/jupyterhub",
				ChartVersion: "3.2.1",
				Status:       domain.Error,
				ErrorMessage: "deploy of release jupyterhub-team-b failed",
				Created:      created, LastActivity: created,
			},
		}
		if len(actual) != len(expected) {
			t.Fatalf("hubs: %+v (expected: %+v)", actual, expected)
		}
		for name, want := range expected {
			got, ok := actual[name]
			if !ok || !got.Equal(want) {
				t.Errorf("hub %s:\n%+v\nexpected:\n%+v", name, got, want)
			}
		}
	})

	t.Run("it queries nothing for no names", func(t *testing.T) {
		conn := kpgmock.NewConn()
		pool := connPool(conn)

		testee := kpghub.New(pool)
		actual := try.To(testee.Get(ctx, []string{})).OrFatal(t)

		if len(actual) != 0 {
			t.Errorf("hubs: %+v", actual)
		}
		if len(conn.Calls.Query) != 0 {
			t.Errorf("queries: %+v", conn.Calls.Query)
		}
	})
}

func TestHubPG_Find(t *testing.T) {
	ctx := context.Background()

	t.Run("it lists all hub names", func(t *testing.T) {
		conn := kpgmock.NewConn()
		conn.Impl.Query = func(context.Context, string, ...interface{}) (pgx.Rows, error) {
			return &kpgmock.Rows{
				Columns: []pgproto3.FieldDescription{kpgmock.Column("name", pgtype.VarcharOID)},
				Records: [][]interface{}{{"team-a"}, {"team-b"}},
			}, nil
		}
		pool := connPool(conn)

		testee := kpghub.New(pool)
		names := try.To(testee.Find(ctx, domain.HubFindQuery{})).OrFatal(t)

		if !reflect.DeepEqual(names, []string{"team-a", "team-b"}) {
			t.Errorf("names: %+v", names)
		}
		if strings.Contains(conn.Calls.Query[0].SQL, "where") {
			t.Errorf("unfiltered query has a where clause: %s", conn.Calls.Query[0].SQL)
		}
	})

	t.Run("it narrows by owner", func(t *testing.T) {
		conn := kpgmock.NewConn()
		conn.Impl.Query = func(context.Context, string, ...interface{}) (pgx.Rows, error) {
			return &kpgmock.Rows{
				Columns: []pgproto3.FieldDescription{kpgmock.Column("name", pgtype.VarcharOID)},
				Records: [][]interface{}{{"team-a"}},
			}, nil
		}
		pool := connPool(conn)

		testee := kpghub.New(pool)
		names := try.To(testee.Find(
			ctx, domain.HubFindQuery{Owner: pointer.Ref("alice")},
		)).OrFatal(t)

		if !reflect.DeepEqual(names, []string{"team-a"}) {
			t.Errorf("names: %+v", names)
		}
		q := conn.Calls.Query[0]
		if !strings.Contains(q.SQL, `where "owner" = $1`) ||
			!reflect.DeepEqual(q.Args, []interface{}{"alice"}) {
			t.Errorf("query: %s %+v", q.SQL, q.Args)
		}
	})
}

func TestHubPG_Updates(t *testing.T) {
	ctx := context.Background()

	for name, testcase := range map[string]struct {
		update   func(hubdb.HubInterface) error
		sqlHas   []string
		wantArgs []interface{}
	}{
		"SetStatus": {
			update: func(testee hubdb.HubInterface) error {
				return testee.SetStatus(ctx, "team-a", domain.Stopped)
			},
			sqlHas:   []string{`update "hub"`, `"status" = $2`, `"error_message" = ''`},
			wantArgs: []interface{}{"team-a", "stopped"},
		},
		"SetRunning": {
			update: func(testee hubdb.HubInterface) error {
				return testee.SetRunning(ctx, "team-a", "https://hub.example.com")
			},
			sqlHas: []string{
				`'running'`, `"url" = $2`, `"error_message" = ''`, `"last_activity" = now()`,
			},
			wantArgs: []interface{}{"team-a", "https://hub.example.com"},
		},
		"SetError": {
			update: func(testee hubdb.HubInterface) error {
				return testee.SetError(ctx, "team-a", "helm failed")
			},
			sqlHas:   []string{`'error'`, `"error_message" = $2`},
			wantArgs: []interface{}{"team-a", "helm failed"},
		},
		"Delete": {
			update: func(testee hubdb.HubInterface) error {
				return testee.Delete(ctx, "team-a")
			},
			sqlHas:   []string{`delete from "hub"`},
			wantArgs: []interface{}{"team-a"},
		},
	} {
		t.Run(name+" updates the hub row", func(t *testing.T) {
			conn := kpgmock.NewConn()
			conn.Impl.Exec = func(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
				return pgconn.CommandTag("UPDATE 1"), nil
			}
			pool := connPool(conn)

			testee := kpghub.New(pool)
			if err := testcase.update(testee); err != nil {
				t.Fatal(err)
			}

			q := conn.Calls.Exec[0]
			for _, fragment := range testcase.sqlHas {
				if !strings.Contains(q.SQL, fragment) {
					t.Errorf("statement misses %q: %s", fragment, q.SQL)
				}
			}
			if !reflect.DeepEqual(q.Args, testcase.wantArgs) {
				t.Errorf("args: %+v (expected: %+v)", q.Args, testcase.wantArgs)
			}
		})

		t.Run(name+" reports a missing hub", func(t *testing.T) {
			conn := kpgmock.NewConn()
			conn.Impl.Exec = func(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
				return pgconn.CommandTag("UPDATE 0"), nil
			}
			pool := connPool(conn)

			testee := kpghub.New(pool)
			if err := testcase.update(testee); !errors.Is(err, domerr.ErrMissing) {
				t.Errorf("unexpected error: %+v", err)
			}
		})
	}
}

func TestHubPG_NewEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("it appends an event", func(t *testing.T) {
		conn := kpgmock.NewConn()
		conn.Impl.Exec = func(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
			return pgconn.CommandTag("INSERT 0 1"), nil
		}
		pool := connPool(conn)

		testee := kpghub.New(pool)
		if err := testee.NewEvent(ctx, "team-a", domain.EventError, "helm failed"); err != nil {
			t.Fatal(err)
		}

		q := conn.Calls.Exec[0]
		if !strings.Contains(q.SQL, `insert into "hub_event"`) {
			t.Errorf("statement: %s", q.SQL)
		}
		if !reflect.DeepEqual(q.Args, []interface{}{"team-a", "error", "helm failed"}) {
			t.Errorf("args: %+v", q.Args)
		}
	})

	t.Run("it reports a missing hub on foreign key violation", func(t *testing.T) {
		conn := kpgmock.NewConn()
		conn.Impl.Exec = func(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
		}
		pool := connPool(conn)

		testee := kpghub.New(pool)
		err := testee.NewEvent(ctx, "ghost", domain.EventError, "helm failed")
		if !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("unexpected error: %+v", err)
		}
	})
}
