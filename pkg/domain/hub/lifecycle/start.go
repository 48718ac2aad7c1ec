package lifecycle

import (
	"context"

	"github.com/hubcluster/hubcluster/pkg/domain"
	hubhelm "github.com/hubcluster/hubcluster/pkg/domain/hub/helm"
)

func (i *impl) Start(ctx context.Context, name string, overrides map[string]any) (domain.Hub, error) {
	hub, err := i.get(ctx, name)
	if err != nil {
		return domain.Hub{}, err
	}

	merged := map[string]any{}
	for key, value := range hub.Values {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}
	sanitized := i.sanitizer.Sanitize(merged, i.cluster.GatherFacts(ctx))

	if err := i.db.SetStatus(ctx, name, domain.Pending); err != nil {
		return domain.Hub{}, err
	}

	i.logger.Printf("hub %s: deploying release %s to namespace %s", name, hub.ReleaseName, hub.Namespace)
	url, err := i.deploy(ctx, hub, sanitized)
	if err != nil {
		i.recordFailure(ctx, name, err)
		return domain.Hub{}, err
	}

	if err := i.db.SetRunning(ctx, name, url); err != nil {
		return domain.Hub{}, err
	}
	i.logger.Printf("hub %s started at %s", name, url)

	return i.get(ctx, name)
}

func (i *impl) deploy(ctx context.Context, hub domain.Hub, values map[string]any) (string, error) {
	if err := i.cluster.EnsureNamespace(ctx, hub.Namespace, hub.Name, hub.Owner); err != nil {
		return "", err
	}

	chart := hubhelm.Chart{
		Ref:     hub.Chart,
		Version: hub.ChartVersion,
		RepoURL: i.conf.Chart().RepoURL(),
	}
	if err := i.helm.Deploy(ctx, hub.Namespace, hub.ReleaseName, chart, i.deployValues(values)); err != nil {
		return "", err
	}

	return i.cluster.AwaitReady(ctx, hub.Namespace, hub.ReleaseName), nil
}

// deployValues layers the sanitized tree over the configured default
// preset, per top-level key.
func (i *impl) deployValues(sanitized map[string]any) map[string]any {
	values := map[string]any{}
	if preset := i.conf.DefaultPreset(); preset != nil {
		values = preset.Values()
	}
	for key, value := range sanitized {
		values[key] = value
	}

	// the chart schema wants these sections present as mappings.
	for _, section := range []string{"hub", "proxy", "singleuser", "ingress"} {
		if _, ok := values[section].(map[string]any); !ok {
			values[section] = map[string]any{}
		}
	}

	// the namespace is fixed by the helm invocation, never by values.
	delete(values, "namespace")

	return values
}
