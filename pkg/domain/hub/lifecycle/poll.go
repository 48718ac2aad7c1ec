package lifecycle

import (
	"context"

	hubk8s "github.com/hubcluster/hubcluster/pkg/domain/hub/k8s"
)

func (i *impl) Poll(ctx context.Context, name string) (hubk8s.Liveness, error) {
	hub, err := i.get(ctx, name)
	if err != nil {
		return hubk8s.LivenessStopped, err
	}
	return i.cluster.Poll(ctx, hub.Namespace), nil
}
