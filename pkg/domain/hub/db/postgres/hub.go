package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"

	kpool "github.com/hubcluster/hubcluster/pkg/conn/db/postgres/pool"
	"github.com/hubcluster/hubcluster/pkg/conn/db/postgres/scanner"
	"github.com/hubcluster/hubcluster/pkg/domain"
	domerr "github.com/hubcluster/hubcluster/pkg/domain/errors"
	kpgerr "github.com/hubcluster/hubcluster/pkg/domain/errors/dberrors/postgres"
	hubdb "github.com/hubcluster/hubcluster/pkg/domain/hub/db"
	xe "github.com/hubcluster/hubcluster/pkg/errors"
)

type hubPG struct { // implements hubdb.HubInterface

	// connection pool for PostgreSQL
	pool kpool.Pool
}

func New(pool kpool.Pool) *hubPG {
	return &hubPG{pool: pool}
}

func (m *hubPG) New(ctx context.Context, spec hubdb.HubSpec) (domain.Hub, error) {
	tx, err := m.pool.BeginTx(
		ctx, pgx.TxOptions{IsoLevel: pgx.Serializable},
		// Create policy reads other rows (namespace uniqueness, the owner's
		// hub count) before inserting. Serializable keeps concurrent creates
		// from both passing those reads.
	)
	if err != nil {
		return domain.Hub{}, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	hub, err := m.create(ctx, tx, spec)
	if err != nil {
		return domain.Hub{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Hub{}, xe.Wrap(err)
	}
	return hub, nil
}

func (m *hubPG) create(ctx context.Context, tx kpool.Tx, spec hubdb.HubSpec) (domain.Hub, error) {
	var nameTaken int
	if err := tx.QueryRow(
		ctx, `select count(*) from "hub" where "name" = $1`, spec.Name,
	).Scan(&nameTaken); err != nil {
		return domain.Hub{}, xe.Wrap(err)
	}
	if 0 < nameTaken {
		return domain.Hub{}, domerr.NewConflict(fmt.Sprintf(
			"hub %s already exists", spec.Name,
		))
	}

	if !domain.ValidNamespace(spec.Namespace) {
		return domain.Hub{}, domerr.NewValidation(fmt.Sprintf(
			"invalid namespace name: %s", spec.Namespace,
		))
	}

	var namespaceTaken int
	if err := tx.QueryRow(
		ctx, `select count(*) from "hub" where "namespace" = $1`, spec.Namespace,
	).Scan(&namespaceTaken); err != nil {
		return domain.Hub{}, xe.Wrap(err)
	}
	if 0 < namespaceTaken {
		return domain.Hub{}, domerr.NewValidation(fmt.Sprintf(
			"namespace %s already in use", spec.Namespace,
		))
	}

	if err := m.checkOwnerPolicy(ctx, tx, spec); err != nil {
		return domain.Hub{}, err
	}

	values := spec.Values
	if values == nil {
		values = map[string]any{}
	}
	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return domain.Hub{}, xe.Wrap(err)
	}

	hub := domain.Hub{
		HubBody: domain.HubBody{
			Name:        spec.Name,
			Owner:       spec.Owner,
			Values:      values,
			Description: spec.Description,
		},
		Namespace:    spec.Namespace,
		ReleaseName:  spec.ReleaseName,
		Chart:        spec.Chart,
		ChartVersion: spec.ChartVersion,
		Status:       domain.Pending,
	}
	if err := tx.QueryRow(
		ctx,
		`
		insert into "hub" (
			"name", "namespace", "owner", "release_name",
			"chart", "chart_version", "values", "description", "status"
		) values ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')
		returning "created", "last_activity"
		`,
		spec.Name, spec.Namespace, spec.Owner, spec.ReleaseName,
		spec.Chart, spec.ChartVersion, valuesJSON, spec.Description,
	).Scan(
		&hub.Created, &hub.LastActivity,
	); err != nil {
		// Policy reads above normally catch duplicates first. Unique
		// violations slipping through to here map to the same errors.
		pgErr := new(pgconn.PgError)
		if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
			return domain.Hub{}, xe.Wrap(err)
		}
		if strings.Contains(pgErr.ConstraintName, "pkey") {
			return domain.Hub{}, domerr.NewConflictCausedBy(
				fmt.Sprintf("hub %s already exists", spec.Name), err,
			)
		}
		return domain.Hub{}, domerr.NewValidationCausedBy(
			fmt.Sprintf("namespace %s already in use", spec.Namespace), err,
		)
	}

	return hub, nil
}

// checkOwnerPolicy enforces the owner's hub cap and namespace prefix
// restrictions. Owners without a user record are not restricted.
func (m *hubPG) checkOwnerPolicy(ctx context.Context, tx kpool.Tx, spec hubdb.HubSpec) error {
	var maxHubs *int
	prefixes := []string{}
	if err := tx.QueryRow(
		ctx,
		`select "max_hubs", "allowed_namespace_prefixes" from "user" where "name" = $1`,
		spec.Owner,
	).Scan(&maxHubs, &prefixes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return xe.Wrap(err)
	}

	if maxHubs != nil {
		var owned int
		if err := tx.QueryRow(
			ctx, `select count(*) from "hub" where "owner" = $1`, spec.Owner,
		).Scan(&owned); err != nil {
			return xe.Wrap(err)
		}
		if *maxHubs <= owned {
			return domerr.NewValidation(fmt.Sprintf(
				"user %s has reached maximum hub limit of %d", spec.Owner, *maxHubs,
			))
		}
	}

	if 0 < len(prefixes) {
		allowed := false
		for _, prefix := range prefixes {
			if strings.HasPrefix(spec.Namespace, prefix) {
				allowed = true
				break
			}
		}
		if !allowed {
			return domerr.NewValidation(fmt.Sprintf(
				"user %s is not allowed to deploy to namespace %s",
				spec.Owner, spec.Namespace,
			))
		}
	}

	return nil
}

func (m *hubPG) Get(ctx context.Context, names []string) (map[string]domain.Hub, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer conn.Release()

	return m.get(ctx, conn, names)
}

// hubRow is the "hub" table record. domain.Hub does not scan directly
// since its status and values columns need parsing.
type hubRow struct {
	Name         string
	Namespace    string
	Owner        string
	ReleaseName  string
	Chart        string
	ChartVersion string
	Values       []byte
	Status       string
	URL          string `sql:"url"`
	Description  string
	ErrorMessage string
	Created      time.Time
	LastActivity time.Time
}

func (r hubRow) asHub() (domain.Hub, error) {
	hub := domain.Hub{
		HubBody: domain.HubBody{
			Name:        r.Name,
			Owner:       r.Owner,
			Description: r.Description,
		},
		Namespace:    r.Namespace,
		ReleaseName:  r.ReleaseName,
		Chart:        r.Chart,
		ChartVersion: r.ChartVersion,
		URL:          r.URL,
		ErrorMessage: r.ErrorMessage,
		Created:      r.Created,
		LastActivity: r.LastActivity,
	}

	var err error
	if hub.Status, err = domain.AsHubStatus(r.Status); err != nil {
		return domain.Hub{}, err
	}
	if err := json.Unmarshal(r.Values, &hub.Values); err != nil {
		return domain.Hub{}, err
	}
	return hub, nil
}

func (m *hubPG) get(ctx context.Context, conn kpool.Queryer, names []string) (map[string]domain.Hub, error) {
	result := map[string]domain.Hub{}
	if len(names) == 0 {
		return result, nil
	}

	records, err := scanner.New[hubRow]().QueryAll(
		ctx, conn,
		`
		select
			"name", "namespace", "owner", "release_name",
			"chart", "chart_version", "values",
			"status", "url", "description", "error_message",
			"created", "last_activity"
		from "hub"
		where "name" = any($1::varchar[])
		`,
		names,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	for _, r := range records {
		hub, err := r.asHub()
		if err != nil {
			return nil, xe.Wrap(err)
		}
		result[hub.Name] = hub
	}

	return result, nil
}

func (m *hubPG) Find(ctx context.Context, query domain.HubFindQuery) ([]string, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer conn.Release()

	sql := `select "name" from "hub"`
	args := []any{}
	if query.Owner != nil {
		sql += ` where "owner" = $1`
		args = append(args, *query.Owner)
	}
	sql += ` order by "name"`

	names, err := scanner.New[string]().QueryAll(ctx, conn, sql, args...)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return names, nil
}

func (m *hubPG) SetStatus(ctx context.Context, name string, status domain.HubStatus) error {
	return m.update(
		ctx, name,
		`update "hub" set "status" = $2, "error_message" = '' where "name" = $1`,
		name, status.String(),
	)
}

func (m *hubPG) SetRunning(ctx context.Context, name string, url string) error {
	return m.update(
		ctx, name,
		`
		update "hub"
		set "status" = 'running', "url" = $2,
			"error_message" = '', "last_activity" = now()
		where "name" = $1
		`,
		name, url,
	)
}

func (m *hubPG) SetError(ctx context.Context, name string, message string) error {
	return m.update(
		ctx, name,
		`update "hub" set "status" = 'error', "error_message" = $2 where "name" = $1`,
		name, message,
	)
}

func (m *hubPG) Delete(ctx context.Context, name string) error {
	return m.update(
		ctx, name,
		`delete from "hub" where "name" = $1`,
		name,
	)
}

func (m *hubPG) update(ctx context.Context, name string, sql string, args ...any) error {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, sql, args...)
	if err != nil {
		return xe.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return kpgerr.Missing{Table: "hub", Identity: fmt.Sprintf("name='%s'", name)}
	}
	return nil
}

func (m *hubPG) NewEvent(ctx context.Context, hubName string, eventType domain.HubEventType, message string) error {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer conn.Release()

	if _, err := conn.Exec(
		ctx,
		`insert into "hub_event" ("hub_name", "event_type", "message") values ($1, $2, $3)`,
		hubName, string(eventType), message,
	); err != nil {
		pgErr := new(pgconn.PgError)
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return kpgerr.Missing{
				Table:    "hub",
				Identity: fmt.Sprintf("name='%s'", hubName),
			}
		}
		return xe.Wrap(err)
	}
	return nil
}
