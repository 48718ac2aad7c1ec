package cluster

import (
	"slices"
	"strings"
)

// SelectorElement is one term of a label selector, like an equality match.
type SelectorElement interface {
	// QueryString renders this term for the named label, in the form
	// kube-apiserver accepts as a labelSelector query parameter.
	QueryString(label string) string

	// Equal reports whether other selects the same set of objects.
	// Terms of a different kind are never equal.
	Equal(other SelectorElement) bool
}

// LabelSelector maps label names to requirements on their values.
type LabelSelector map[string]SelectorElement

// QueryString renders the whole selector, terms joined with commas.
// Terms come out sorted by label, whatever the map order is.
func (ls LabelSelector) QueryString() string {
	keys := make([]string, 0, len(ls))
	for k := range ls {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	terms := make([]string, 0, len(ls))
	for _, k := range keys {
		terms = append(terms, ls[k].QueryString(k))
	}
	return strings.Join(terms, ",")
}

// EqualityBased is an equality-based requirement on a single label.
//
// The value is the raw expression: "hub", "=hub" and "==hub" all select
// objects labeled hub, "!=hub" selects the others.
//
// https://kubernetes.io/docs/concepts/overview/working-with-objects/labels/#equality-based-requirement
type EqualityBased string

var _ SelectorElement = EqualityBased("")

func (eqb EqualityBased) parts() (operator string, value string) {
	exp := string(eqb)
	switch {
	case strings.HasPrefix(exp, "!="):
		return "!=", exp[2:]
	case strings.HasPrefix(exp, "=="):
		return "=", exp[2:]
	case strings.HasPrefix(exp, "="):
		return "=", exp[1:]
	default:
		return "=", exp
	}
}

func (eqb EqualityBased) QueryString(label string) string {
	op, v := eqb.parts()
	return label + op + v
}

func (eqb EqualityBased) Equal(other SelectorElement) bool {
	o, ok := other.(EqualityBased)
	if !ok {
		return false
	}
	op, v := eqb.parts()
	oop, ov := o.parts()
	return op == oop && v == ov
}

// LabelsToSelector requires equality with each value in labels.
func LabelsToSelector(labels map[string]string) LabelSelector {
	sel := LabelSelector{}
	for k, v := range labels {
		sel[k] = EqualityBased(v)
	}
	return sel
}
