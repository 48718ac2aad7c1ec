package k8s

import (
	"context"

	"github.com/hubcluster/hubcluster/pkg/domain/hub/sanitize"
)

const gatewayAPIGroup = "gateway.networking.k8s.io"

func (i *impl) GatherFacts(ctx context.Context) sanitize.Facts {
	facts := sanitize.Facts{}
	client := i.cluster.Client()

	if scs, err := client.ListStorageClasses(ctx); err != nil {
		i.logger.Printf("cannot list storage classes. values referring them pass unverified: %s", err)
	} else {
		names := make([]string, 0, len(scs))
		for _, sc := range scs {
			names = append(names, sc.Name)
		}
		facts.StorageClasses = names
	}

	if nodes, err := client.ListNodes(ctx); err != nil {
		i.logger.Printf("cannot list nodes. node affinities pass unverified: %s", err)
	} else {
		labels := make([]map[string]string, 0, len(nodes))
		for _, node := range nodes {
			labels = append(labels, node.Labels)
		}
		facts.NodeLabels = labels
	}

	if groups, err := client.ServerGroups(); err != nil {
		i.logger.Printf("cannot read served API groups. treating the Gateway API as absent: %s", err)
	} else {
		for _, group := range groups {
			if group.Name == gatewayAPIGroup {
				facts.GatewayAPIPresent = true
				break
			}
		}
	}
	return facts
}
