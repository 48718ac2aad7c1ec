package user

import (
	"github.com/hubcluster/hubcluster/pkg/domain/user/db"
)

type Interface interface {
	Database() db.UserInterface
}

type impl struct {
	database db.UserInterface
}

func New(database db.UserInterface) Interface {
	return &impl{database: database}
}

func (i *impl) Database() db.UserInterface {
	return i.database
}
