package k8s

import (
	"context"

	kubecore "k8s.io/api/core/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"

	"github.com/hubcluster/hubcluster/pkg/domain/hubcluster/k8s/cluster"
)

// Liveness is what the cluster reports about a hub workload.
type Liveness string

const (
	LivenessRunning Liveness = "running"
	LivenessStopped Liveness = "stopped"
)

func (l Liveness) String() string {
	return string(l)
}

// labels the chart stamps on hub pods.
var hubPodLabels = map[string]string{"app": "jupyterhub", "component": "hub"}

func (i *impl) Poll(ctx context.Context, namespace string) Liveness {
	if _, err := i.cluster.Client().GetNamespace(ctx, namespace); err != nil {
		if !kubeerr.IsNotFound(err) {
			i.logger.Printf("cannot read namespace %s. reporting the hub stopped: %s", namespace, err)
		}
		return LivenessStopped
	}

	pods, err := i.cluster.Client().FindPods(
		ctx, namespace, cluster.LabelsToSelector(hubPodLabels),
	)
	if err != nil {
		i.logger.Printf("cannot list hub pods in %s. reporting the hub stopped: %s", namespace, err)
		return LivenessStopped
	}
	for _, pod := range pods {
		if pod.Status.Phase == kubecore.PodRunning {
			return LivenessRunning
		}
	}
	return LivenessStopped
}
