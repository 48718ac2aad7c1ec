package lifecycle

import (
	"context"

	"github.com/hubcluster/hubcluster/pkg/domain"
)

func (i *impl) Stop(ctx context.Context, name string) (domain.Hub, error) {
	hub, err := i.get(ctx, name)
	if err != nil {
		return domain.Hub{}, err
	}

	i.logger.Printf("hub %s: tearing down release %s in namespace %s", name, hub.ReleaseName, hub.Namespace)
	if err := i.helm.Teardown(ctx, hub.Namespace, hub.ReleaseName); err != nil {
		i.recordFailure(ctx, name, err)
		return domain.Hub{}, err
	}

	if err := i.db.SetStatus(ctx, name, domain.Stopped); err != nil {
		return domain.Hub{}, err
	}
	i.logger.Printf("hub %s stopped", name)

	return i.get(ctx, name)
}
