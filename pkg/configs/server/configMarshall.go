package server

import (
	"fmt"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
	"k8s.io/apimachinery/pkg/api/resource"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/server.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

type ServerConfigMarshall struct {
	Port    int32                     `yaml:"port"`
	Auth    *AuthConfigMarshall       `yaml:"auth"`
	Cluster *HubClusterConfigMarshall `yaml:"cluster"`
}

var _ Marshalled[*ServerConfig] = &ServerConfigMarshall{}

func (s *ServerConfigMarshall) trySeal(path string) *ServerConfig {
	return &ServerConfig{
		port:    required(s.Port, path+".port"),
		auth:    nonnil(s.Auth, path+".auth").trySeal(path + ".auth"),
		cluster: nonnil(s.Cluster, path+".cluster").trySeal(path + ".cluster"),
	}
}

type AuthConfigMarshall struct {
	Static *StaticAuthMarshall `yaml:"static,omitempty"`
	JWT    *JWTAuthMarshall    `yaml:"jwt,omitempty"`
}

func (a *AuthConfigMarshall) trySeal(path string) *AuthConfig {
	if (a.Static == nil) == (a.JWT == nil) {
		panic(path + " requires exactly one of static, jwt")
	}
	sealed := &AuthConfig{}
	if a.Static != nil {
		sealed.static = a.Static.trySeal(path + ".static")
	}
	if a.JWT != nil {
		sealed.jwt = a.JWT.trySeal(path + ".jwt")
	}
	return sealed
}

type StaticAuthMarshall struct {
	Tokens []TokenMarshall `yaml:"tokens"`
}

type TokenMarshall struct {
	Token string `yaml:"token"`
	User  string `yaml:"user"`
}

func (s *StaticAuthMarshall) trySeal(path string) *StaticAuthConfig {
	if len(s.Tokens) == 0 {
		panic(path + ".tokens is required")
	}
	tokens := map[string]string{}
	for i, t := range s.Tokens {
		entry := fmt.Sprintf("%s.tokens[%d]", path, i)
		token := required(t.Token, entry+".token")
		if _, ok := tokens[token]; ok {
			panic(entry + ".token is given to another user already")
		}
		tokens[token] = required(t.User, entry+".user")
	}
	return &StaticAuthConfig{tokens: tokens}
}

type JWTAuthMarshall struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer,omitempty"`
}

func (j *JWTAuthMarshall) trySeal(path string) *JWTAuthConfig {
	issuer := j.Issuer
	if issuer == "" {
		issuer = "hubcluster"
	}
	return &JWTAuthConfig{
		secret: required(j.Secret, path+".secret"),
		issuer: issuer,
	}
}

// Configuration of the hub cluster.
//
// This type is marshalling value and mutable.
// Consider to use immutable version, `HubClusterConfig`.
// You can get `HubClusterConfig` instance with `HubClusterConfigMarshall.TrySeal()`
type HubClusterConfigMarshall struct {
	Domain   string              `yaml:"domain,omitempty"`
	Database string              `yaml:"database"`
	Hubs     *HubsConfigMarshall `yaml:"hubs"`
}

// verify configuration value and create "readonly" version of this.
//
// IT WILL PANIC if any misconfiguration is found.
func (km *HubClusterConfigMarshall) TrySeal() *HubClusterConfig {
	return km.trySeal("(root)")
}

func (km *HubClusterConfigMarshall) trySeal(path string) *HubClusterConfig {
	domain := km.Domain
	if domain == "" {
		domain = "cluster.local"
	}
	return &HubClusterConfig{
		domain:   domain,
		database: required(km.Database, path+".database"),
		hubs:     nonnil(km.Hubs, path+".hubs").trySeal(path + ".hubs"),
	}
}

type HubsConfigMarshall struct {
	NamespacePrefix        *string                    `yaml:"namespacePrefix,omitempty"`
	AllowNamespaceCreation *bool                      `yaml:"allowNamespaceCreation,omitempty"`
	DefaultStorageClass    string                     `yaml:"defaultStorageClass,omitempty"`
	DefaultPreset          string                     `yaml:"defaultPreset,omitempty"`
	Chart                  *ChartConfigMarshall       `yaml:"chart,omitempty"`
	Helm                   *HelmConfigMarshall        `yaml:"helm,omitempty"`
	Ready                  *ReadyConfigMarshall       `yaml:"ready,omitempty"`
	Presets                map[string]*PresetMarshall `yaml:"presets,omitempty"`
}

func (hm *HubsConfigMarshall) trySeal(path string) *HubsConfig {
	prefix := "jupyterhub-"
	if hm.NamespacePrefix != nil {
		prefix = *hm.NamespacePrefix
	}
	if !validNamespacePrefix(prefix) {
		panic(path + ".namespacePrefix should be empty or alphanumeric-and-hyphens starting alphanumeric")
	}

	allowCreation := true
	if hm.AllowNamespaceCreation != nil {
		allowCreation = *hm.AllowNamespaceCreation
	}

	storageClass := hm.DefaultStorageClass
	if storageClass == "" {
		storageClass = "standard"
	}

	chart := hm.Chart
	if chart == nil {
		chart = &ChartConfigMarshall{}
	}
	helm := hm.Helm
	if helm == nil {
		helm = &HelmConfigMarshall{}
	}
	ready := hm.Ready
	if ready == nil {
		ready = &ReadyConfigMarshall{}
	}

	presets := map[string]*Preset{}
	for presetName, pm := range hm.Presets {
		presets[presetName] = nonnil(pm, fmt.Sprintf("%s.presets[%s]", path, presetName)).
			trySeal(fmt.Sprintf("%s.presets[%s]", path, presetName), presetName)
	}
	if hm.DefaultPreset != "" {
		if _, ok := presets[hm.DefaultPreset]; !ok {
			panic(path + ".defaultPreset names an unknown preset: " + hm.DefaultPreset)
		}
	}

	return &HubsConfig{
		namespacePrefix:        prefix,
		allowNamespaceCreation: allowCreation,
		defaultStorageClass:    storageClass,
		defaultPreset:          hm.DefaultPreset,
		chart:                  chart.trySeal(path + ".chart"),
		helm:                   helm.trySeal(path + ".helm"),
		ready:                  ready.trySeal(path + ".ready"),
		presets:                presets,
	}
}

func validNamespacePrefix(prefix string) bool {
	for i, c := range prefix {
		alnum := ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
		if i == 0 && !alnum {
			return false
		}
		if !alnum && c != '-' {
			return false
		}
	}
	return true
}

type ChartConfigMarshall struct {
	Ref     string `yaml:"ref,omitempty"`
	Version string `yaml:"version,omitempty"`
	RepoURL string `yaml:"repoURL,omitempty"`
}

func (cm *ChartConfigMarshall) trySeal(path string) *ChartConfig {
	ref := cm.Ref
	repoURL := cm.RepoURL
	if ref == "" {
		ref = "jupyterhub/jupyterhub"
		if repoURL == "" {
			repoURL = "https://hub.jupyter.org/helm-chart/"
		}
	}
	return &ChartConfig{
		ref:     ref,
		version: cm.Version,
		repoURL: repoURL,
	}
}

type HelmConfigMarshall struct {
	Bin             string `yaml:"bin,omitempty"`
	DeployTimeout   string `yaml:"deployTimeout,omitempty"`
	TeardownTimeout string `yaml:"teardownTimeout,omitempty"`
}

func (hm *HelmConfigMarshall) trySeal(path string) *HelmConfig {
	bin := hm.Bin
	if bin == "" {
		bin = "helm"
	}
	return &HelmConfig{
		bin:             bin,
		deployTimeout:   duration(hm.DeployTimeout, 5*time.Minute, path+".deployTimeout"),
		teardownTimeout: duration(hm.TeardownTimeout, time.Minute, path+".teardownTimeout"),
	}
}

type ReadyConfigMarshall struct {
	Interval string `yaml:"interval,omitempty"`
	Timeout  string `yaml:"timeout,omitempty"`
}

func (rm *ReadyConfigMarshall) trySeal(path string) *ReadyConfig {
	return &ReadyConfig{
		interval: duration(rm.Interval, 5*time.Second, path+".interval"),
		timeout:  duration(rm.Timeout, 2*time.Minute, path+".timeout"),
	}
}

type PresetMarshall struct {
	Singleuser *PresetSingleuserMarshall `yaml:"singleuser"`
	Ingress    *PresetIngressMarshall    `yaml:"ingress,omitempty"`
}

func (pm *PresetMarshall) trySeal(path string, presetName string) *Preset {
	singleuser := nonnil(pm.Singleuser, path+".singleuser")
	image := nonnil(singleuser.Image, path+".singleuser.image")

	imageName := required(image.Name, path+".singleuser.image.name")
	imageTag := required(image.Tag, path+".singleuser.image.tag")
	if _, err := name.NewTag(imageName+":"+imageTag, name.WithDefaultRegistry("")); err != nil {
		panic(fmt.Errorf("%s.singleuser.image is not a valid image reference: %w", path, err))
	}

	sealed := &Preset{
		name:         presetName,
		imageName:    imageName,
		imageTag:     imageTag,
		region:       singleuser.Region,
		cpuLimit:     nonnegative(singleuser.CPU.limit(), path+".singleuser.cpu.limit"),
		cpuGuarantee: nonnegative(singleuser.CPU.guarantee(), path+".singleuser.cpu.guarantee"),
	}

	if st := singleuser.Storage; st != nil {
		sealed.storageCapacity = quantity(
			required(st.Capacity, path+".singleuser.storage.capacity"),
			path+".singleuser.storage.capacity",
		)
		sealed.storageClass = st.StorageClass
	}
	if mem := singleuser.Memory; mem != nil {
		if mem.Limit != "" {
			sealed.memoryLimit = quantity(mem.Limit, path+".singleuser.memory.limit")
		}
		if mem.Guarantee != "" {
			sealed.memoryGuarantee = quantity(mem.Guarantee, path+".singleuser.memory.guarantee")
		}
	}
	if ing := pm.Ingress; ing != nil {
		sealed.ingressClassName = required(ing.ClassName, path+".ingress.className")
	}
	return sealed
}

type PresetSingleuserMarshall struct {
	Image   *PresetImageMarshall    `yaml:"image"`
	Storage *PresetStorageMarshall  `yaml:"storage,omitempty"`
	Memory  *PresetResourceMarshall `yaml:"memory,omitempty"`
	CPU     *PresetCPUMarshall      `yaml:"cpu,omitempty"`
	Region  string                  `yaml:"region,omitempty"`
}

type PresetImageMarshall struct {
	Name string `yaml:"name"`
	Tag  string `yaml:"tag"`
}

type PresetStorageMarshall struct {
	Capacity     string `yaml:"capacity"`
	StorageClass string `yaml:"storageClass,omitempty"`
}

type PresetResourceMarshall struct {
	Limit     string `yaml:"limit,omitempty"`
	Guarantee string `yaml:"guarantee,omitempty"`
}

type PresetCPUMarshall struct {
	Limit     float64 `yaml:"limit,omitempty"`
	Guarantee float64 `yaml:"guarantee,omitempty"`
}

func (pc *PresetCPUMarshall) limit() float64 {
	if pc == nil {
		return 0
	}
	return pc.Limit
}

func (pc *PresetCPUMarshall) guarantee() float64 {
	if pc == nil {
		return 0
	}
	return pc.Guarantee
}

type PresetIngressMarshall struct {
	ClassName string `yaml:"className"`
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}

func duration(v string, fallback time.Duration, path string) time.Duration {
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s can not be parsed as duration: %w", path, err))
	}
	if d <= 0 {
		panic(path + " should be positive")
	}
	return d
}

func quantity(v string, path string) string {
	if _, err := resource.ParseQuantity(v); err != nil {
		panic(fmt.Errorf("%s can not be parsed as quantity: %w", path, err))
	}
	return v
}

func nonnegative(v float64, path string) float64 {
	if v < 0 {
		panic(path + " should not be negative")
	}
	return v
}
