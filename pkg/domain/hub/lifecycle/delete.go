package lifecycle

import (
	"context"

	"github.com/hubcluster/hubcluster/pkg/domain"
)

func (i *impl) Delete(ctx context.Context, name string) error {
	hub, err := i.get(ctx, name)
	if err != nil {
		return err
	}

	if hub.Status == domain.Running {
		if _, err := i.Stop(ctx, name); err != nil {
			return err
		}
	}

	if err := i.db.Delete(ctx, name); err != nil {
		return err
	}
	i.logger.Printf("hub %s deleted", name)
	return nil
}
