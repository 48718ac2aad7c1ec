package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"

	"github.com/hubcluster/hubcluster/pkg/domain/hubcluster/db/postgres"
	kio "github.com/hubcluster/hubcluster/pkg/io"
	"github.com/hubcluster/hubcluster/pkg/utils/try"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Host     string `flag:"host" help:"hostname of the database to be upgraded."`
	Port     int    `flag:"port" help:"port of the database."`
	User     string `flag:"user" help:"username to connect the database with."`
	Password string `flag:"pass" help:"password of the user."`
	Database string `flag:"database" help:"database name."`

	Schema string `flag:"schema" help:"directory holding the schema version definitions."`
}

const ARG_SCHEMA_DEST = "ARG_SCHEMA_DEST"

func envPort() int {
	if sp := os.Getenv("DB_PORT"); sp != "" {
		if p, err := strconv.Atoi(sp); err == nil {
			return p
		}
	}
	return 5432
}

func main() {
	logger := log.Default()
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt, os.Kill,
	)
	defer cancel()

	cmd := try.To(flarc.NewCommand(
		"upgrade hubcluster's database schema to the latest version",
		Flag{
			Host:     os.Getenv("DB_HOST"),
			Port:     envPort(),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Database: os.Getenv("DB_NAME"),

			Schema: os.Getenv("HUBCLUSTER_SCHEMA"),
		},
		flarc.Args{
			{
				Name: ARG_SCHEMA_DEST, Help: "directory to copy the schema definitions into, before upgrading.",
				Required: false, Repeatable: false,
			},
		},
		func(ctx context.Context, c flarc.Commandline[Flag], a []any) error {
			flags := c.Flags()

			dest := c.Args()[ARG_SCHEMA_DEST]
			if len(dest) != 0 {
				logger.Println("copying schema definitions to", dest[0])
				if err := kio.DirCopy(flags.Schema, dest[0]); err != nil {
					return err
				}
			}

			dsn := url.URL{
				Scheme: "postgres",
				User:   url.UserPassword(flags.User, flags.Password),
				Host:   fmt.Sprintf("%s:%d", flags.Host, flags.Port),
				Path:   "/" + flags.Database,
			}
			db, err := postgres.New(
				ctx, dsn.String(),
				postgres.WithSchemaRepository(flags.Schema),
			)
			if err != nil {
				return err
			}
			defer db.Close()

			return db.Schema().Upgrade(ctx)
		},
	)).OrFatal(logger)

	os.Exit(flarc.Run(ctx, cmd))
}
