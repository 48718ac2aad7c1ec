package schema

import "github.com/hubcluster/hubcluster/pkg/domain/schema/db"

type Interface interface {
	Database() db.SchemaInterface
}

type impl struct {
	database db.SchemaInterface
}

func New(database db.SchemaInterface) Interface {
	return &impl{database: database}
}

func (i *impl) Database() db.SchemaInterface {
	return i.database
}
