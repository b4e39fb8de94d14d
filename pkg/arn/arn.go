// Package arn parses AWS ARN strings into their positional fields.
//
// ARNs share a common prefix (arn:partition:service:region:account-id:)
// but the resource suffix comes in a handful of delimiter layouts. The
// layout is selected by counting colons and slashes, the same way the
// CLI's file naming and !Ref derivation expect the fields to split.
package arn

import (
	"fmt"
	"strings"
)

// Field keys present in a parsed ARN map.
const (
	KeyPartition    = "partition"
	KeyService      = "service"
	KeyRegion       = "region"
	KeyAccountID    = "account-id"
	KeyResourceType = "resourcetype"
	KeyResource     = "resource"
	KeyQualifier    = "qualifier"
)

const prefix = "arn:partition:service:region:account-id:"

// suffixes are the recognized resource-section layouts, indexed by
// (colons - 5) + 3*slashes relative to the common prefix.
var suffixes = []string{
	"resource",
	"resourcetype:resource",
	"resourcetype:resource:qualifier",
	"resourcetype/resource",
	"resourcetype/resource:qualifier",
	"",
	"resourcetype/resource/qualifier",
}

// UnrecognizedShapeError indicates an ARN whose delimiter pattern matches
// none of the known resource-section layouts.
type UnrecognizedShapeError struct {
	ARN   string
	Shape int
}

func (e *UnrecognizedShapeError) Error() string {
	return fmt.Sprintf("unrecognized arn shape %d for %q", e.Shape, e.ARN)
}

// Map holds the positional fields of a parsed ARN. Optional fields
// (resourcetype, qualifier) are absent from the map rather than empty.
type Map map[string]string

// Parse splits an ARN string into its positional fields.
func Parse(s string) (Map, error) {
	shape := (strings.Count(s, ":") - strings.Count(prefix, ":")) + 3*strings.Count(s, "/")
	if shape < 0 || shape >= len(suffixes) {
		return nil, &UnrecognizedShapeError{ARN: s, Shape: shape}
	}

	keys := strings.Split(strings.ReplaceAll(prefix+suffixes[shape], "/", ":"), ":")
	values := strings.Split(strings.ReplaceAll(s, "/", ":"), ":")
	if len(keys) != len(values) {
		return nil, &UnrecognizedShapeError{ARN: s, Shape: shape}
	}

	m := make(Map, len(keys)-1)
	for i, key := range keys {
		if i == 0 {
			// literal "arn" marker, not a field
			continue
		}
		m[key] = values[i]
	}
	return m, nil
}

func (m Map) Partition() string { return m[KeyPartition] }
func (m Map) Service() string   { return m[KeyService] }
func (m Map) Region() string    { return m[KeyRegion] }
func (m Map) AccountID() string { return m[KeyAccountID] }
func (m Map) Resource() string  { return m[KeyResource] }

// ResourceType returns the resourcetype field if the matched layout had one.
func (m Map) ResourceType() (string, bool) {
	rt, ok := m[KeyResourceType]
	return rt, ok
}

// Qualifier returns the qualifier field if the matched layout had one.
func (m Map) Qualifier() (string, bool) {
	q, ok := m[KeyQualifier]
	return q, ok
}

// DisplayName derives a CloudFormation logical name for the resource:
// the qualifier when present, otherwise the resource field, with hyphens
// stripped so the name stays alphanumeric.
func (m Map) DisplayName() string {
	name := m[KeyResource]
	if q, ok := m.Qualifier(); ok {
		name = q
	}
	return strings.ReplaceAll(name, "-", "")
}
