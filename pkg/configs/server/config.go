package server

import (
	"time"
)

type ServerConfig struct {
	port    int32
	auth    *AuthConfig
	cluster *HubClusterConfig
}

func (c *ServerConfig) Port() int32 {
	return c.port
}

func (c *ServerConfig) Auth() *AuthConfig {
	return c.auth
}

func (c *ServerConfig) Cluster() *HubClusterConfig {
	return c.cluster
}

// Configuration selecting the authenticator.
//
// Exactly one of Static() and JWT() is non-nil.
type AuthConfig struct {
	static *StaticAuthConfig
	jwt    *JWTAuthConfig
}

func (a *AuthConfig) Static() *StaticAuthConfig {
	return a.static
}

func (a *AuthConfig) JWT() *JWTAuthConfig {
	return a.jwt
}

// Fixed bearer-token credential store.
type StaticAuthConfig struct {
	tokens map[string]string
}

// Resolve maps a bearer token to the user name it belongs to.
func (s *StaticAuthConfig) Resolve(token string) (string, bool) {
	user, ok := s.tokens[token]
	return user, ok
}

type JWTAuthConfig struct {
	secret string
	issuer string
}

// HS256 signing secret.
func (j *JWTAuthConfig) Secret() string {
	return j.secret
}

func (j *JWTAuthConfig) Issuer() string {
	return j.issuer
}

// Configuration for the cluster hubs are deployed into.
//
// to get `HubClusterConfig` instance, use `HubClusterConfigMarshall.TrySeal()` .
type HubClusterConfig struct {
	domain   string
	database string
	hubs     *HubsConfig
}

// k8s cluster domain. default = "cluster.local"
func (k *HubClusterConfig) Domain() string {
	return k.domain
}

// Connection string for database.
func (k *HubClusterConfig) Database() string {
	return k.database
}

func (k *HubClusterConfig) Hubs() *HubsConfig {
	return k.hubs
}

// Configuration for hub deployments.
type HubsConfig struct {
	namespacePrefix        string
	allowNamespaceCreation bool
	defaultStorageClass    string
	defaultPreset          string
	chart                  *ChartConfig
	helm                   *HelmConfig
	ready                  *ReadyConfig
	presets                map[string]*Preset
}

// prefix of per-hub namespaces. default = "jupyterhub-"
func (h *HubsConfig) NamespacePrefix() string {
	return h.namespacePrefix
}

// when false, hub namespaces must be provisioned out-of-band.
func (h *HubsConfig) AllowNamespaceCreation() bool {
	return h.allowNamespaceCreation
}

// storage class substituted when tenant values name one the cluster
// does not have. default = "standard"
func (h *HubsConfig) DefaultStorageClass() string {
	return h.defaultStorageClass
}

func (h *HubsConfig) Chart() *ChartConfig {
	return h.chart
}

func (h *HubsConfig) Helm() *HelmConfig {
	return h.helm
}

func (h *HubsConfig) Ready() *ReadyConfig {
	return h.ready
}

// Preset finds a named default-values preset.
func (h *HubsConfig) Preset(name string) (*Preset, bool) {
	p, ok := h.presets[name]
	return p, ok
}

// DefaultPreset is the preset layered under every hub's values at
// deploy time, or nil when none is configured.
func (h *HubsConfig) DefaultPreset() *Preset {
	if h.defaultPreset == "" {
		return nil
	}
	return h.presets[h.defaultPreset]
}

type ChartConfig struct {
	ref     string
	version string
	repoURL string
}

// chart reference. default = "jupyterhub/jupyterhub"
func (c *ChartConfig) Ref() string {
	return c.ref
}

// pinned chart version. empty = latest.
func (c *ChartConfig) Version() string {
	return c.version
}

// chart repository. default = "https://hub.jupyter.org/helm-chart/"
func (c *ChartConfig) RepoURL() string {
	return c.repoURL
}

type HelmConfig struct {
	bin             string
	deployTimeout   time.Duration
	teardownTimeout time.Duration
}

// helm executable. default = "helm"
func (h *HelmConfig) Bin() string {
	return h.bin
}

func (h *HelmConfig) DeployTimeout() time.Duration {
	return h.deployTimeout
}

func (h *HelmConfig) TeardownTimeout() time.Duration {
	return h.teardownTimeout
}

type ReadyConfig struct {
	interval time.Duration
	timeout  time.Duration
}

// how often the readiness poll asks the cluster. default = 5s
func (r *ReadyConfig) Interval() time.Duration {
	return r.interval
}

// how long the readiness poll keeps trying. default = 2m
func (r *ReadyConfig) Timeout() time.Duration {
	return r.timeout
}

// Preset is a named, validated default-values layer.
type Preset struct {
	name             string
	imageName        string
	imageTag         string
	storageCapacity  string
	storageClass     string
	memoryLimit      string
	memoryGuarantee  string
	cpuLimit         float64
	cpuGuarantee     float64
	region           string
	ingressClassName string
}

func (p *Preset) Name() string {
	return p.name
}

// Values renders the preset as a chart values tree. The tree is built
// afresh on each call, callers may mutate it.
func (p *Preset) Values() map[string]any {
	singleuser := map[string]any{
		"image": map[string]any{"name": p.imageName, "tag": p.imageTag},
	}

	storage := map[string]any{}
	if p.storageCapacity != "" {
		storage["capacity"] = p.storageCapacity
	}
	if p.storageClass != "" {
		storage["dynamic"] = map[string]any{"storageClass": p.storageClass}
	}
	if 0 < len(storage) {
		singleuser["storage"] = storage
	}

	memory := map[string]any{}
	if p.memoryLimit != "" {
		memory["limit"] = p.memoryLimit
	}
	if p.memoryGuarantee != "" {
		memory["guarantee"] = p.memoryGuarantee
	}
	if 0 < len(memory) {
		singleuser["memory"] = memory
	}

	cpu := map[string]any{}
	if 0 < p.cpuLimit {
		cpu["limit"] = p.cpuLimit
	}
	if 0 < p.cpuGuarantee {
		cpu["guarantee"] = p.cpuGuarantee
	}
	if 0 < len(cpu) {
		singleuser["cpu"] = cpu
	}

	if p.region != "" {
		singleuser["extraNodeAffinity"] = map[string]any{
			"required": []any{
				map[string]any{
					"matchExpressions": []any{
						map[string]any{
							"key":      "topology.kubernetes.io/region",
							"operator": "In",
							"values":   []any{p.region},
						},
					},
				},
			},
		}
	}

	values := map[string]any{"singleuser": singleuser}
	if p.ingressClassName != "" {
		values["ingress"] = map[string]any{
			"enabled":          true,
			"ingressClassName": p.ingressClassName,
		}
	}
	return values
}
