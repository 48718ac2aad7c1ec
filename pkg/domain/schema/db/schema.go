package db

import "context"

// SchemaInterface versions the tables this module stores its state in.
type SchemaInterface interface {
	// Upgrade applies schema versions not applied yet, oldest first.
	Upgrade(ctx context.Context) error

	// Version reports the schema version the database is at now.
	Version(ctx context.Context) (int, error)

	// Context derives a context which is canceled once the database
	// schema falls behind what this build requires.
	Context(ctx context.Context) (context.Context, context.CancelFunc)
}
