package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"

	kpool "github.com/hubcluster/hubcluster/pkg/conn/db/postgres/pool"
	"github.com/hubcluster/hubcluster/pkg/conn/db/postgres/scanner"
	"github.com/hubcluster/hubcluster/pkg/domain"
	domerr "github.com/hubcluster/hubcluster/pkg/domain/errors"
	kpgerr "github.com/hubcluster/hubcluster/pkg/domain/errors/dberrors/postgres"
	userdb "github.com/hubcluster/hubcluster/pkg/domain/user/db"
	xe "github.com/hubcluster/hubcluster/pkg/errors"
)

type userPG struct { // implements userdb.UserInterface

	// connection pool for PostgreSQL
	pool kpool.Pool
}

func New(pool kpool.Pool) *userPG {
	return &userPG{pool: pool}
}

func (m *userPG) New(ctx context.Context, spec userdb.UserSpec) (domain.User, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return domain.User{}, xe.Wrap(err)
	}
	defer conn.Release()

	prefixes := spec.AllowedNamespacePrefixes
	if prefixes == nil {
		prefixes = []string{}
	}

	user := domain.User{
		Name:                     spec.Name,
		Admin:                    spec.Admin,
		MaxHubs:                  spec.MaxHubs,
		AllowedNamespacePrefixes: prefixes,
	}
	if err := conn.QueryRow(
		ctx,
		`
		insert into "user" ("name", "admin", "max_hubs", "allowed_namespace_prefixes")
		values ($1, $2, $3, $4)
		returning "created", "last_activity"
		`,
		spec.Name, spec.Admin, spec.MaxHubs, prefixes,
	).Scan(&user.Created, &user.LastActivity); err != nil {
		pgErr := new(pgconn.PgError)
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.User{}, domerr.NewConflictCausedBy(
				fmt.Sprintf("user %s already exists", spec.Name), err,
			)
		}
		return domain.User{}, xe.Wrap(err)
	}

	return user, nil
}

func (m *userPG) Get(ctx context.Context, names []string) (map[string]domain.User, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer conn.Release()

	result := map[string]domain.User{}
	if len(names) == 0 {
		return result, nil
	}

	// each column name camel-cases to a domain.User field.
	users, err := scanner.New[domain.User]().QueryAll(
		ctx, conn,
		`
		select
			"name", "admin", "max_hubs", "allowed_namespace_prefixes",
			"created", "last_activity"
		from "user"
		where "name" = any($1::varchar[])
		`,
		names,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	for _, user := range users {
		result[user.Name] = user
	}
	return result, nil
}

func (m *userPG) Find(ctx context.Context) ([]string, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer conn.Release()

	names, err := scanner.New[string]().QueryAll(
		ctx, conn, `select "name" from "user" order by "name"`,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return names, nil
}

func (m *userPG) Update(ctx context.Context, spec userdb.UserSpec) (domain.User, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return domain.User{}, xe.Wrap(err)
	}
	defer conn.Release()

	prefixes := spec.AllowedNamespacePrefixes
	if prefixes == nil {
		prefixes = []string{}
	}

	user := domain.User{
		Name:                     spec.Name,
		Admin:                    spec.Admin,
		MaxHubs:                  spec.MaxHubs,
		AllowedNamespacePrefixes: prefixes,
	}
	if err := conn.QueryRow(
		ctx,
		`
		update "user"
		set "admin" = $2, "max_hubs" = $3,
			"allowed_namespace_prefixes" = $4, "last_activity" = now()
		where "name" = $1
		returning "created", "last_activity"
		`,
		spec.Name, spec.Admin, spec.MaxHubs, prefixes,
	).Scan(&user.Created, &user.LastActivity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, kpgerr.Missing{
				Table:    "user",
				Identity: fmt.Sprintf("name='%s'", spec.Name),
			}
		}
		return domain.User{}, xe.Wrap(err)
	}

	return user, nil
}

func (m *userPG) Delete(ctx context.Context, name string) error {
	// The owned-hub count must still hold when the row goes away.
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	var owned int
	if err := tx.QueryRow(
		ctx, `select count(*) from "hub" where "owner" = $1`, name,
	).Scan(&owned); err != nil {
		return xe.Wrap(err)
	}
	if 0 < owned {
		return domerr.NewValidation(fmt.Sprintf(
			"cannot delete user %s: user owns %d hub(s)", name, owned,
		))
	}

	tag, err := tx.Exec(ctx, `delete from "user" where "name" = $1`, name)
	if err != nil {
		return xe.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return kpgerr.Missing{
			Table:    "user",
			Identity: fmt.Sprintf("name='%s'", name),
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return xe.Wrap(err)
	}
	return nil
}
