package k8s

import (
	"context"
	"fmt"

	"github.com/hubcluster/hubcluster/pkg/domain/hubcluster/k8s/cluster"
	"github.com/hubcluster/hubcluster/pkg/loop"
)

// the chart's public entrypoint service.
const proxyService = "proxy-public"

func (i *impl) AwaitReady(ctx context.Context, namespace string, releaseName string) string {
	ready := i.conf.Hubs().Ready()
	ctx, cancel := context.WithTimeout(ctx, ready.Timeout())
	defer cancel()

	url, err := loop.Start(ctx, "", func(ctx context.Context, _ string) (string, loop.Next) {
		if _, err := i.cluster.Client().GetService(ctx, namespace, proxyService); err != nil {
			// not exposed yet. keep asking.
			return "", loop.Continue(ready.Interval())
		}

		ingresses, err := i.cluster.Client().FindIngresses(ctx, namespace, cluster.LabelSelector{})
		if err == nil {
			for _, ingress := range ingresses {
				for _, rule := range ingress.Spec.Rules {
					if rule.Host != "" {
						return "https://" + rule.Host, loop.Break(nil)
					}
				}
			}
		}
		return fmt.Sprintf(
			"http://%s.%s.svc.%s", proxyService, namespace, i.cluster.Domain(),
		), loop.Break(nil)
	})

	if err != nil || url == "" {
		placeholder := fmt.Sprintf(
			"http://%s.%s.svc.%s", releaseName, namespace, i.cluster.Domain(),
		)
		i.logger.Printf(
			"the entrypoint of the hub in %s is not resolvable yet. recording %s for now",
			namespace, placeholder,
		)
		return placeholder
	}
	return url
}
