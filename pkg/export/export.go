// Package export walks a fetched resource against its declared
// CloudFormation property schema and builds template resources,
// recursively expanding nested ARN-valued properties into sibling
// resources referenced by !Ref.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/kiwicloudninja/arnexport/pkg/arn"
	"github.com/kiwicloudninja/arnexport/pkg/cfnspec"
	"github.com/kiwicloudninja/arnexport/pkg/fetch"
	"github.com/kiwicloudninja/arnexport/pkg/templates"
)

// DefaultMaxDepth bounds nested-ARN expansion.
const DefaultMaxDepth = 5

// arnMarker is the substring that makes a string property a candidate
// nested ARN.
const arnMarker = "arn:aws"

// NameCollisionError indicates two distinct ARNs derived the same
// logical resource name.
type NameCollisionError struct {
	Name     string
	ARN      string
	Existing string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("resource name %q derived from both %s and %s", e.Name, e.Existing, e.ARN)
}

// Resolver maps a service/resourcetype pair to its canonical declared
// type. *cfnspec.Spec satisfies it.
type Resolver interface {
	Resolve(service, resourcetype string) (*cfnspec.ResourceType, error)
}

// Fetcher retrieves a resource's live properties. *fetch.Fetcher
// satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, req fetch.Request, canonicalType string) (map[string]any, error)
}

// Result is one completed export: the top-level resource's identity plus
// every resource the expansion produced.
type Result struct {
	// Name is the top-level resource's logical name.
	Name string
	// Service and ResourceType are the ARN's segments, used for the
	// output file name.
	Service      string
	ResourceType string
	// Resources holds the expanded resource and all nested siblings.
	Resources map[string]templates.Resource
	// Raw merges every fetched document of the run, before expansion.
	Raw map[string]any
}

// Exporter owns the expansion state for one run.
type Exporter struct {
	resolver Resolver
	fetcher  Fetcher
	maxDepth int

	resources map[string]templates.Resource
	raw       map[string]any
	visited   map[string]string // ARN -> logical name
	arnByName map[string]string // logical name -> ARN
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithMaxDepth bounds how deep nested ARNs are expanded.
func WithMaxDepth(n int) Option {
	return func(e *Exporter) { e.maxDepth = n }
}

// New returns an Exporter for a single export run.
func New(resolver Resolver, fetcher Fetcher, opts ...Option) *Exporter {
	e := &Exporter{
		resolver:  resolver,
		fetcher:   fetcher,
		maxDepth:  DefaultMaxDepth,
		resources: make(map[string]templates.Resource),
		raw:       make(map[string]any),
		visited:   make(map[string]string),
		arnByName: make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export converts one ARN into template resources. Any failure at this
// top level is fatal: no partial template is returned.
func (e *Exporter) Export(ctx context.Context, arnStr string) (*Result, error) {
	parsed, err := arn.Parse(arnStr)
	if err != nil {
		return nil, err
	}

	rtype, ok := parsed.ResourceType()
	if !ok {
		return nil, &fetch.NoFetchOperationError{ARN: arnStr}
	}

	resolved, err := e.resolver.Resolve(parsed.Service(), rtype)
	if err != nil {
		return nil, err
	}

	slog.Info("Retrieving resource", "arn", arnStr, "type", resolved.Name)
	doc, err := e.fetcher.Fetch(ctx, fetch.NewRequest(arnStr, parsed), resolved.Name)
	if err != nil {
		return nil, err
	}
	maps.Copy(e.raw, doc)

	name, err := e.expand(ctx, arnStr, parsed, resolved, doc, 0)
	if err != nil {
		return nil, err
	}

	return &Result{
		Name:         name,
		Service:      parsed.Service(),
		ResourceType: rtype,
		Resources:    e.resources,
		Raw:          e.raw,
	}, nil
}

// expand turns one fetched document into a template resource, adding it
// (and any nested expansions) to the accumulator, and returns its
// logical name.
func (e *Exporter) expand(ctx context.Context, arnStr string, parsed arn.Map, resolved *cfnspec.ResourceType, doc map[string]any, depth int) (string, error) {
	name := parsed.DisplayName()
	if existing, ok := e.arnByName[name]; ok && existing != arnStr {
		return "", &NameCollisionError{Name: name, ARN: arnStr, Existing: existing}
	}
	e.arnByName[name] = arnStr

	// Register before walking properties so a self-referencing resource
	// resolves to a Ref instead of recursing.
	e.visited[arnStr] = name

	props := make(map[string]any)
	for _, key := range resolved.Properties {
		value, found := search(doc, key)
		if !found {
			continue
		}

		if s, ok := value.(string); ok && strings.Contains(s, arnMarker) {
			expanded, err := e.expandNested(ctx, s, depth+1)
			if err != nil {
				return "", err
			}
			props[key] = expanded
			continue
		}

		props[key] = value
	}

	e.resources[name] = templates.Resource{Type: resolved.Name, Properties: props}
	return name, nil
}

// expandNested expands an ARN found inside another resource's
// properties. Unresolvable nested ARNs degrade to the raw string; fetch
// failures stay fatal so the template is never silently partial.
func (e *Exporter) expandNested(ctx context.Context, arnStr string, depth int) (any, error) {
	if name, ok := e.visited[arnStr]; ok {
		return ref(name), nil
	}

	if depth > e.maxDepth {
		slog.Warn("Max expansion depth reached, keeping raw ARN", "arn", arnStr, "depth", depth)
		return arnStr, nil
	}

	parsed, err := arn.Parse(arnStr)
	if err != nil {
		slog.Warn("Unparseable nested ARN, keeping raw value", "arn", arnStr, "error", err)
		return arnStr, nil
	}

	rtype, ok := parsed.ResourceType()
	if !ok {
		slog.Warn("Nested ARN has no resource type, keeping raw value", "arn", arnStr)
		return arnStr, nil
	}

	resolved, err := e.resolver.Resolve(parsed.Service(), rtype)
	if err != nil {
		slog.Warn("Nested ARN type not in specification, keeping raw value", "arn", arnStr, "error", err)
		return arnStr, nil
	}

	slog.Info("Extracting nested resource", "arn", arnStr, "type", resolved.Name)
	doc, err := e.fetcher.Fetch(ctx, fetch.NewRequest(arnStr, parsed), resolved.Name)
	if err != nil {
		return nil, err
	}
	maps.Copy(e.raw, doc)

	name, err := e.expand(ctx, arnStr, parsed, resolved, doc, depth)
	if err != nil {
		return nil, err
	}
	return ref(name), nil
}

func ref(name string) string {
	return "!Ref " + name
}
