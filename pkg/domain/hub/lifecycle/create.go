package lifecycle

import (
	"context"

	"github.com/hubcluster/hubcluster/pkg/domain"
	hubdb "github.com/hubcluster/hubcluster/pkg/domain/hub/db"
)

func (i *impl) Create(
	ctx context.Context,
	name string, owner string,
	values map[string]any, description string,
) (domain.Hub, error) {
	chart := i.conf.Chart()
	hub, err := i.db.New(ctx, hubdb.HubSpec{
		Name:         name,
		Namespace:    i.conf.NamespacePrefix() + name,
		Owner:        owner,
		ReleaseName:  releasePrefix + name,
		Chart:        chart.Ref(),
		ChartVersion: chart.Version(),
		Values:       i.sanitizer.Sanitize(values, i.cluster.GatherFacts(ctx)),
		Description:  description,
	})
	if err != nil {
		return domain.Hub{}, err
	}

	i.logger.Printf("hub %s created for %s (namespace %s)", hub.Name, hub.Owner, hub.Namespace)
	return hub, nil
}
