package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	kpool "github.com/hubcluster/hubcluster/pkg/conn/db/postgres/pool"
	hubdb "github.com/hubcluster/hubcluster/pkg/domain/hub/db"
	kpghub "github.com/hubcluster/hubcluster/pkg/domain/hub/db/postgres"
	dbInterface "github.com/hubcluster/hubcluster/pkg/domain/hubcluster/db"
	schemadb "github.com/hubcluster/hubcluster/pkg/domain/schema/db"
	kpgschema "github.com/hubcluster/hubcluster/pkg/domain/schema/db/postgres"
	userdb "github.com/hubcluster/hubcluster/pkg/domain/user/db"
	kpguser "github.com/hubcluster/hubcluster/pkg/domain/user/db/postgres"
	xe "github.com/hubcluster/hubcluster/pkg/errors"
)

type database struct {
	pool   *pgxpool.Pool
	hub    hubdb.HubInterface
	user   userdb.UserInterface
	schema schemadb.SchemaInterface
}

type Config struct {
	SchemaRepository string
}

type Option func(*Config)

// WithSchemaRepository points at the directory holding schema versions.
// Without it, Schema() refuses to upgrade and never reports outdated.
func WithSchemaRepository(repository string) Option {
	return func(c *Config) {
		c.SchemaRepository = repository
	}
}

// New connects to postgres at url and builds the database layer over it.
func New(
	ctx context.Context,
	url string,
	options ...Option,
) (dbInterface.HubClusterDatabase, error) {
	var c Config
	for _, option := range options {
		option(&c)
	}

	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	p := kpool.Wrap(pool)

	var schema schemadb.SchemaInterface = kpgschema.Null()
	if c.SchemaRepository != "" {
		schema = kpgschema.New(p, c.SchemaRepository)
	}

	return &database{
		pool:   pool,
		hub:    kpghub.New(p),
		user:   kpguser.New(p),
		schema: schema,
	}, nil
}

func (d *database) Hub() hubdb.HubInterface {
	return d.hub
}

func (d *database) User() userdb.UserInterface {
	return d.user
}

func (d *database) Schema() schemadb.SchemaInterface {
	return d.schema
}

func (d *database) Close() error {
	d.pool.Close()
	return nil
}
