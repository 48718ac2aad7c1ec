package cluster

import (
	"context"
	"errors"

	kubecore "k8s.io/api/core/v1"
	kubenet "k8s.io/api/networking/v1"
	kubestorage "k8s.io/api/storage/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	applyconfcore "k8s.io/client-go/applyconfigurations/core/v1"
	k8s "k8s.io/client-go/kubernetes"

	k8serrors "github.com/hubcluster/hubcluster/pkg/domain/errors/k8serrors"
	"github.com/hubcluster/hubcluster/pkg/utils/retry"
)

// subset of k8s.Clientset
type K8sClient interface {
	GetNamespace(ctx context.Context, name string) (*kubecore.Namespace, error)
	CreateNamespace(ctx context.Context, ns *kubecore.Namespace) (*kubecore.Namespace, error)
	DeleteNamespace(ctx context.Context, name string) error

	// UpsertNamespace applies spec with this client's field manager.
	// Labels applied here merge with labels other managers own.
	UpsertNamespace(ctx context.Context, spec *applyconfcore.NamespaceApplyConfiguration) (*kubecore.Namespace, error)

	FindPods(ctx context.Context, namespace string, labelSelector LabelSelector) ([]kubecore.Pod, error)

	GetService(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error)

	FindIngresses(ctx context.Context, namespace string, labelSelector LabelSelector) ([]kubenet.Ingress, error)

	ListStorageClasses(ctx context.Context) ([]kubestorage.StorageClass, error)
	ListNodes(ctx context.Context) ([]kubecore.Node, error)

	// ServerGroups lists API groups the cluster serves,
	// Gateway API detection among others.
	ServerGroups() ([]kubeapimeta.APIGroup, error)
}

// A wrapper for the type k8s.Clientset; because it does not prefer method chain-style invocations of that type.
type k8sClient struct {
	client *k8s.Clientset
}

// type check: k8sClient implements K8sClient
var _ K8sClient = &k8sClient{}

func (k *k8sClient) GetNamespace(ctx context.Context, name string) (*kubecore.Namespace, error) {
	return k.client.CoreV1().Namespaces().Get(ctx, name, kubeapimeta.GetOptions{})
}

func (k *k8sClient) CreateNamespace(ctx context.Context, ns *kubecore.Namespace) (*kubecore.Namespace, error) {
	return k.client.CoreV1().Namespaces().Create(ctx, ns, kubeapimeta.CreateOptions{})
}

func (k *k8sClient) DeleteNamespace(ctx context.Context, name string) error {
	return k.client.CoreV1().Namespaces().Delete(ctx, name, kubeapimeta.DeleteOptions{})
}

func (k *k8sClient) UpsertNamespace(ctx context.Context, spec *applyconfcore.NamespaceApplyConfiguration) (*kubecore.Namespace, error) {
	return k.client.CoreV1().Namespaces().Apply(ctx, spec, kubeapimeta.ApplyOptions{
		FieldManager: "hubclusterd", Force: true,
	})
}

func (k *k8sClient) FindPods(ctx context.Context, namespace string, labels LabelSelector) ([]kubecore.Pod, error) {
	resp, err := k.client.CoreV1().Pods(namespace).List(ctx, kubeapimeta.ListOptions{
		LabelSelector: labels.QueryString(),
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (k *k8sClient) GetService(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
	return k.client.CoreV1().Services(namespace).Get(ctx, svcname, kubeapimeta.GetOptions{})
}

func (k *k8sClient) FindIngresses(ctx context.Context, namespace string, labels LabelSelector) ([]kubenet.Ingress, error) {
	resp, err := k.client.NetworkingV1().Ingresses(namespace).List(ctx, kubeapimeta.ListOptions{
		LabelSelector: labels.QueryString(),
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (k *k8sClient) ListStorageClasses(ctx context.Context) ([]kubestorage.StorageClass, error) {
	resp, err := k.client.StorageV1().StorageClasses().List(ctx, kubeapimeta.ListOptions{})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (k *k8sClient) ListNodes(ctx context.Context) ([]kubecore.Node, error) {
	resp, err := k.client.CoreV1().Nodes().List(ctx, kubeapimeta.ListOptions{})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (k *k8sClient) ServerGroups() ([]kubeapimeta.APIGroup, error) {
	resp, err := k.client.Discovery().ServerGroups()
	if err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

func WrapK8sClient(c *k8s.Clientset) K8sClient {
	return &k8sClient{client: c}
}

// Abstraction of k8s Namespace
type Namespace interface {
	Name() string
	Labels() map[string]string

	// release resources.
	//
	// Delete the namespace, cascading to everything in it.
	Close() error
}

type namespace struct {
	resource *kubecore.Namespace
	onClose  func() error
}

func (n *namespace) Name() string {
	return n.resource.GetName()
}

func (n *namespace) Labels() map[string]string {
	return n.resource.GetLabels()
}

func (n *namespace) Close() error {
	if n.onClose == nil {
		return nil
	}
	return n.onClose()
}

// Requirement is a function that checks if a k8s resource satisfies the requirement.
//
// # Return
//
// - error: When the value satisfies the requirement, return nil.
// If it is waiting to satisfy the requirement, return `retry.ErrRetry`.
// Otherwise, return error.
type Requirement[T any] func(value T) error

func satisfyAll[T any](value T, req []Requirement[T]) error {
	for _, r := range req {
		if err := r(value); err != nil {
			return err
		}
	}
	return nil
}

type Cluster interface {
	// cluster-internal domain name. "cluster.local" unless configured otherwise.
	Domain() string

	// raw client, for reads which need no waiting.
	Client() K8sClient

	// Create the Namespace if it does not exist, and wait for it to satisfy
	// all requirements. If not given, NamespaceIsActive is used as default.
	//
	// Return
	//
	// - retry.Promise[Namespace]: resolved when the Namespace exists &
	// satisfies requirements.
	//
	// An already existing namespace is not an error. Whether or not
	// the Promise has Error, the namespace can exist, so you may need
	// to Close() it on teardown.
	EnsureNamespace(context.Context, retry.Backoff, *kubecore.Namespace, ...Requirement[*kubecore.Namespace]) retry.Promise[Namespace]

	// Get an existing Namespace and wait for it to satisfy all requirements.
	// If not given, NamespaceIsActive is used as default.
	//
	// Return
	//
	// - retry.Promise[Namespace]: resolved when the Namespace is found &
	// satisfies requirements.
	//
	// The Promise may have Error below:
	//
	// - k8serrors.ErrMissing: Namespace is not found.
	//
	// - other errors come from Requirements and context.Context
	GetNamespace(context.Context, retry.Backoff, string, ...Requirement[*kubecore.Namespace]) retry.Promise[Namespace]
}

type k8sCluster struct {
	client K8sClient
	domain string
}

// type check: k8sCluster implements Cluster
var _ Cluster = &k8sCluster{}

// Attach kubernetes cluster.
//
// args:
//   - client: k8s client
//   - domain: k8s-internal domain name. If empty string is passed, it uses "cluster.local" as default.
func AttachCluster(client K8sClient, domain string) Cluster {
	if domain == "" {
		domain = "cluster.local"
	}
	return &k8sCluster{client: client, domain: domain}
}

func (c *k8sCluster) Domain() string {
	return c.domain
}

func (c *k8sCluster) Client() K8sClient {
	return c.client
}

var NamespaceIsActive Requirement[*kubecore.Namespace] = func(value *kubecore.Namespace) error {
	if value.Status.Phase == kubecore.NamespaceActive {
		return nil
	}
	return retry.ErrRetry
}

func (c *k8sCluster) EnsureNamespace(
	ctx context.Context, backoff retry.Backoff, nsconf *kubecore.Namespace,
	requirements ...Requirement[*kubecore.Namespace],
) retry.Promise[Namespace] {
	if len(requirements) == 0 {
		requirements = []Requirement[*kubecore.Namespace]{NamespaceIsActive}
	}

	select {
	case <-ctx.Done():
		return retry.Failed[Namespace](ctx.Err())
	default:
	}

	ns, err := c.client.CreateNamespace(ctx, nsconf)
	if err != nil {
		if !kubeerr.IsAlreadyExists(err) {
			return retry.Failed[Namespace](err)
		}
		ns, err = c.client.GetNamespace(ctx, nsconf.ObjectMeta.Name)
		if err != nil {
			return retry.Failed[Namespace](err)
		}
	}
	_close := func() error {
		return c.client.DeleteNamespace(
			context.Background(), // close should run if given has closed.
			nsconf.ObjectMeta.Name,
		)
	}

	if err := satisfyAll(ns, requirements); err == nil {
		return retry.Ok[Namespace](&namespace{resource: ns, onClose: _close})
	} else if !errors.Is(err, retry.ErrRetry) {
		return retry.Failed[Namespace](err)
	}

	return c.GetNamespace(ctx, backoff, nsconf.ObjectMeta.Name, requirements...)
}

func (c *k8sCluster) GetNamespace(
	ctx context.Context, backoff retry.Backoff, name string,
	requirements ...Requirement[*kubecore.Namespace],
) retry.Promise[Namespace] {
	if len(requirements) == 0 {
		requirements = []Requirement[*kubecore.Namespace]{NamespaceIsActive}
	}
	_close := func() error {
		return c.client.DeleteNamespace(context.Background(), name)
	}

	return retry.Go(ctx, backoff, func() (Namespace, error) {
		ns, err := c.client.GetNamespace(ctx, name)
		ret := &namespace{resource: ns, onClose: _close}
		if err != nil {
			if kubeerr.IsNotFound(err) {
				return ret, k8serrors.NewMissingCausedBy("", err)
			}
			return ret, err
		}
		return ret, satisfyAll(ns, requirements)
	})
}
