package db

import (
	hubdb "github.com/hubcluster/hubcluster/pkg/domain/hub/db"
	schemadb "github.com/hubcluster/hubcluster/pkg/domain/schema/db"
	userdb "github.com/hubcluster/hubcluster/pkg/domain/user/db"
)

type HubClusterDatabase interface {
	Hub() hubdb.HubInterface
	User() userdb.UserInterface
	Schema() schemadb.SchemaInterface
	Close() error
}
