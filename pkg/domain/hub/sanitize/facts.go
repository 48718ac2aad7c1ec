package sanitize

import "slices"

// Facts is a snapshot of cluster state the fact-based rules check
// values against. Gathered by the k8s layer; the sanitizer itself
// performs no I/O.
//
// The zero value means "nothing is known". Rules verifying resources
// (storage classes, node labels) leave the tree unchanged when the
// matching snapshot is nil: they must not rewrite what they cannot
// verify. GatewayAPIPresent defaults to false, so the httpRoute gate
// closes unless the Gateway API is positively known to be installed.
type Facts struct {
	// names of StorageClasses in the cluster. nil = unknown.
	StorageClasses []string

	// labels of each node in the cluster. nil = unknown.
	NodeLabels []map[string]string

	// true when the discovery endpoint lists the Gateway API group.
	GatewayAPIPresent bool
}

// HasStorageClass returns true if the cluster is known to have the named
// StorageClass, or if storage classes are unknown.
func (f Facts) HasStorageClass(name string) bool {
	if f.StorageClasses == nil {
		return true
	}
	return slices.Contains(f.StorageClasses, name)
}

// AnyNodeMatches returns true if at least one node carries every required
// label with a value in the allowed set, or if node labels are unknown.
func (f Facts) AnyNodeMatches(required map[string][]string) bool {
	if f.NodeLabels == nil {
		return true
	}

	for _, labels := range f.NodeLabels {
		satisfied := true
		for key, values := range required {
			actual, ok := labels[key]
			if !ok || !slices.Contains(values, actual) {
				satisfied = false
				break
			}
		}
		if satisfied {
			return true
		}
	}
	return false
}
