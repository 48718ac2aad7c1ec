package k8s

import (
	"context"
	"fmt"
	"time"

	kubecore "k8s.io/api/core/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	applyconfcore "k8s.io/client-go/applyconfigurations/core/v1"

	domerr "github.com/hubcluster/hubcluster/pkg/domain/errors"
	xe "github.com/hubcluster/hubcluster/pkg/errors"
	"github.com/hubcluster/hubcluster/pkg/utils/retry"
)

func (i *impl) EnsureNamespace(ctx context.Context, namespace string, hubName string, owner string) error {
	labels := ManagedLabels(hubName, owner)

	if !i.conf.Hubs().AllowNamespaceCreation() {
		if _, err := i.cluster.Client().GetNamespace(ctx, namespace); err != nil {
			if kubeerr.IsNotFound(err) {
				return domerr.NewPreconditionFailed(fmt.Sprintf(
					"namespace %s does not exist, and creating namespaces is disabled. create the namespace out-of-band, then start the hub again",
					namespace,
				))
			}
			return xe.Wrap(err)
		}
		return nil
	}

	if _, err := i.cluster.Client().GetNamespace(ctx, namespace); err == nil {
		// exists. merge the managed labels, leaving labels of other
		// managers untouched.
		spec := applyconfcore.Namespace(namespace).WithLabels(labels)
		if _, err := i.cluster.Client().UpsertNamespace(ctx, spec); err != nil {
			return xe.Wrap(err)
		}
		return nil
	} else if !kubeerr.IsNotFound(err) {
		return xe.Wrap(err)
	}

	i.logger.Printf("creating namespace %s for hub %s", namespace, hubName)
	prom := <-i.cluster.EnsureNamespace(
		ctx, retry.StaticBackoff(200*time.Millisecond),
		&kubecore.Namespace{
			ObjectMeta: kubeapimeta.ObjectMeta{Name: namespace, Labels: labels},
		},
	)
	return prom.Err
}
