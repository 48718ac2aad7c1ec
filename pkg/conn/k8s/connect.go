// Package k8s dials the cluster this daemon manages hubs in.
package k8s

import (
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Connect builds a clientset from the first kubeconfig found, falling
// back to the in-cluster service account when there is none.
//
// Search order: the explicit candidates, then $KUBECONFIG, then
// ~/.kube/config.
func Connect(candidates ...string) (*kubernetes.Clientset, error) {
	config, err := restConfig(candidates)
	if err != nil {
		return nil, err
	}
	return kubernetes.NewForConfig(config)
}

func restConfig(candidates []string) (*rest.Config, error) {
	if path := firstKubeconfig(candidates); path != "" {
		return clientcmd.BuildConfigFromFlags("", path)
	}
	return rest.InClusterConfig()
}

func firstKubeconfig(candidates []string) string {
	paths := append([]string{}, candidates...)
	if k := os.Getenv("KUBECONFIG"); k != "" {
		paths = append(paths, k)
	}
	if home := homedir.HomeDir(); home != "" {
		paths = append(paths, filepath.Join(home, ".kube", "config"))
	}

	for _, p := range paths {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}
