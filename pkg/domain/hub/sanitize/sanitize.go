// Package sanitize turns tenant-supplied deployment values into
// policy-compliant values.
//
// Values are the only place where open-ended tenant input reaches
// cluster-mutating operations, so everything passes through here before
// it is persisted and again just before it is deployed (merging stored
// defaults can reintroduce stripped fields).
//
// The policy is fail-open: offending fields are dropped or rewritten
// with a log line, the operation is never rejected.
package sanitize

import (
	"fmt"
	"log"
)

// top-level sections a tenant may configure. Anything else is dropped.
var allowedKeys = map[string]bool{
	"hub":        true,
	"proxy":      true,
	"singleuser": true,
	"auth":       true,
	"rbac":       true,
	"ingress":    true,
	"httpRoute":  true,
	"scheduling": true,
	"prePuller":  true,
	"cull":       true,
}

type Config struct {
	// StorageClass to substitute when values name one the cluster does not have.
	DefaultStorageClass string

	Logger *log.Logger
}

func DefaultConfig() Config {
	return Config{
		DefaultStorageClass: "standard",
		Logger:              log.Default(),
	}
}

type Option func(*Config) *Config

func WithDefaultStorageClass(name string) Option {
	return func(c *Config) *Config {
		c.DefaultStorageClass = name
		return c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Config) *Config {
		c.Logger = l
		return c
	}
}

type Sanitizer struct {
	defaultStorageClass string
	logger              *log.Logger
}

func New(options ...Option) Sanitizer {
	c := DefaultConfig()
	for _, option := range options {
		c = *option(&c)
	}
	return Sanitizer{
		defaultStorageClass: c.DefaultStorageClass,
		logger:              c.Logger,
	}
}

// Sanitize applies the policy to values and returns a new tree.
// The input tree is never modified.
//
// Rules, in order, each idempotent on its own:
//
//  1. keep only allow-listed top-level sections
//  2. strip namespace keys (the namespace is supplied by the
//     orchestrator, never by values)
//  3. strip cluster-scoped rbac declarations
//  4. strip privilege escalation from single-user security contexts
//  5. empty maps where the chart schema wants lists become empty lists
//  6. rewrite references to storage classes the cluster does not have;
//     drop node affinity no node can satisfy (per facts)
//  7. force httpRoute off unless the Gateway API is installed (per facts)
//
// Well-formed trees never fail: branches with unexpected shapes are
// passed through (or dropped) without error.
func (s Sanitizer) Sanitize(values map[string]any, facts Facts) map[string]any {
	out := map[string]any{}
	if values == nil {
		return out
	}

	// rule 1
	for key, value := range values {
		if !allowedKeys[key] {
			s.logger.Printf("rejected values key %q: not in the allow list", key)
			continue
		}
		out[key] = deepCopy(value)
	}

	// rule 2
	s.stripNamespace(out, "")

	// rule 3
	if rbac, ok := section(out, "rbac"); ok {
		for _, key := range []string{"clusterRoleBindings", "clusterRoles"} {
			if _, has := rbac[key]; has {
				delete(rbac, key)
				s.logger.Printf("removed rbac.%s: cluster-scoped rbac is not allowed", key)
			}
		}
	}

	if singleuser, ok := section(out, "singleuser"); ok {
		// rule 4
		s.stripPrivileges(singleuser)

		// rule 5
		if storage, ok := section(singleuser, "storage"); ok {
			s.normalizeStorageShape(storage)

			// rule 6: storage class reference
			if dynamic, ok := section(storage, "dynamic"); ok {
				s.ensureStorageClass(dynamic, "storageClass", "singleuser.storage.dynamic.storageClass", facts)
			}
		}

		// rule 6: node affinity
		s.ensureNodeAffinity(singleuser, facts)
	}

	// rule 6: hub database volume storage class
	if hub, ok := section(out, "hub"); ok {
		if db, ok := section(hub, "db"); ok {
			if pvc, ok := section(db, "pvc"); ok {
				s.ensureStorageClass(pvc, "storageClassName", "hub.db.pvc.storageClassName", facts)
			}
		}
	}

	// rule 7
	s.gateHTTPRoute(out, facts)

	return out
}

func (s Sanitizer) stripNamespace(tree map[string]any, path string) {
	if _, has := tree["namespace"]; has {
		delete(tree, "namespace")
		s.logger.Printf(
			"removed %s: the namespace is supplied by the orchestrator, not by values",
			joinPath(path, "namespace"),
		)
	}
	for key, value := range tree {
		switch v := value.(type) {
		case map[string]any:
			s.stripNamespace(v, joinPath(path, key))
		case []any:
			for i, item := range v {
				if m, ok := item.(map[string]any); ok {
					s.stripNamespace(m, fmt.Sprintf("%s[%d]", joinPath(path, key), i))
				}
			}
		}
	}
}

func (s Sanitizer) stripPrivileges(singleuser map[string]any) {
	for _, key := range []string{"securityContext", "containerSecurityContext"} {
		if sc, ok := section(singleuser, key); ok {
			s.stripSecurityContext(sc, "singleuser."+key)
		}
	}
	for _, key := range []string{"extraContainers", "initContainers"} {
		list, ok := singleuser[key].([]any)
		if !ok {
			continue
		}
		for i, item := range list {
			container, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if sc, ok := section(container, "securityContext"); ok {
				s.stripSecurityContext(sc, fmt.Sprintf("singleuser.%s[%d].securityContext", key, i))
			}
		}
	}
}

func (s Sanitizer) stripSecurityContext(sc map[string]any, path string) {
	for _, key := range []string{"privileged", "allowPrivilegeEscalation"} {
		if _, has := sc[key]; has {
			delete(sc, key)
			s.logger.Printf("removed %s.%s", path, key)
		}
	}

	caps, has := sc["capabilities"]
	if !has {
		return
	}
	m, ok := caps.(map[string]any)
	if !ok {
		delete(sc, "capabilities")
		s.logger.Printf("removed %s.capabilities", path)
		return
	}
	if _, has := m["add"]; has {
		delete(m, "add")
		s.logger.Printf("removed %s.capabilities.add", path)
		if len(m) == 0 {
			delete(sc, "capabilities")
		}
	}
}

func (s Sanitizer) normalizeStorageShape(storage map[string]any) {
	for _, key := range []string{"extraVolumes", "extraVolumeMounts"} {
		if m, ok := storage[key].(map[string]any); ok && len(m) == 0 {
			storage[key] = []any{}
			s.logger.Printf("converted singleuser.storage.%s from empty map to empty list", key)
		}
	}
}

func (s Sanitizer) ensureStorageClass(parent map[string]any, key string, path string, facts Facts) {
	name, ok := parent[key].(string)
	if !ok || name == "" {
		return
	}
	if facts.HasStorageClass(name) {
		return
	}
	parent[key] = s.defaultStorageClass
	s.logger.Printf(
		"storage class %q is not in the cluster: %s falls back to %q",
		name, path, s.defaultStorageClass,
	)
}

func (s Sanitizer) ensureNodeAffinity(singleuser map[string]any, facts Facts) {
	affinity, ok := section(singleuser, "extraNodeAffinity")
	if !ok {
		return
	}
	required, ok := affinity["required"].([]any)
	if !ok || len(required) == 0 {
		return
	}

	labels := requiredNodeLabels(required)
	if len(labels) == 0 {
		return
	}
	if facts.AnyNodeMatches(labels) {
		return
	}
	singleuser["extraNodeAffinity"] = map[string]any{}
	s.logger.Printf("no node carries labels %v: dropped singleuser.extraNodeAffinity", labels)
}

// requiredNodeLabels flattens nodeSelectorTerms into label key -> allowed
// values, taking only "In" expressions (the only operator the policy can
// check against node labels).
func requiredNodeLabels(required []any) map[string][]string {
	labels := map[string][]string{}
	for _, term := range required {
		t, ok := term.(map[string]any)
		if !ok {
			continue
		}
		exprs, ok := t["matchExpressions"].([]any)
		if !ok {
			continue
		}
		for _, expr := range exprs {
			e, ok := expr.(map[string]any)
			if !ok {
				continue
			}
			if op, _ := e["operator"].(string); op != "In" {
				continue
			}
			key, _ := e["key"].(string)
			values, _ := e["values"].([]any)
			if key == "" || len(values) == 0 {
				continue
			}
			vs := make([]string, 0, len(values))
			for _, v := range values {
				if str, ok := v.(string); ok {
					vs = append(vs, str)
				}
			}
			if len(vs) != 0 {
				labels[key] = vs
			}
		}
	}
	return labels
}

func (s Sanitizer) gateHTTPRoute(values map[string]any, facts Facts) {
	if facts.GatewayAPIPresent {
		return
	}

	disable := func(parent map[string]any, path string) {
		route, ok := section(parent, "httpRoute")
		if !ok {
			return
		}
		if enabled, _ := route["enabled"].(bool); !enabled {
			return
		}
		route["enabled"] = false
		s.logger.Printf("disabled %s.enabled: the Gateway API is not installed", path)
	}

	disable(values, "httpRoute")
	for key := range values {
		if key == "httpRoute" {
			continue
		}
		if sec, ok := section(values, key); ok {
			disable(sec, key+".httpRoute")
		}
	}
}

func section(m map[string]any, key string) (map[string]any, bool) {
	value, ok := m[key]
	if !ok {
		return nil, false
	}
	sec, ok := value.(map[string]any)
	return sec, ok
}

func joinPath(path string, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		copied := make(map[string]any, len(v))
		for key, item := range v {
			copied[key] = deepCopy(item)
		}
		return copied
	case []any:
		copied := make([]any, len(v))
		for i, item := range v {
			copied[i] = deepCopy(item)
		}
		return copied
	default:
		return value
	}
}
