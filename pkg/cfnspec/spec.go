// Package cfnspec reads the AWS CloudFormation resource specification
// document and resolves service/resourcetype pairs from ARNs against it.
//
// ARNs carry lowercased type segments (lambda, function) while the
// specification declares canonical names (AWS::Lambda::Function), so
// resolution is case-insensitive. The document's declared key order is
// preserved so lookups stay deterministic.
package cfnspec

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DefaultPath is where the specification document is looked for when no
// --spec flag is given, matching the published document's file name.
const DefaultPath = "CloudFormationResourceSpecification.json"

// UnknownTypeError indicates a service/resourcetype pair with no entry in
// the specification document.
type UnknownTypeError struct {
	Service      string
	ResourceType string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("no resource type AWS::%s::%s in the CloudFormation specification", e.Service, e.ResourceType)
}

// ResourceType is one declared type: its canonical name and the property
// names it declares, in declaration order.
type ResourceType struct {
	Name       string
	Properties []string
}

// Spec is a loaded resource specification document.
type Spec struct {
	Version string
	types   []ResourceType
}

// Load parses a CloudFormation resource specification JSON document.
// encoding/json maps are unordered, so the ResourceTypes object is walked
// token by token to keep the declared key order.
func Load(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening resource specification: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	spec := &Spec{}

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("parsing resource specification: %w", err)
	}
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return nil, fmt.Errorf("parsing resource specification: %w", err)
		}
		switch key {
		case "ResourceSpecificationVersion":
			if err := dec.Decode(&spec.Version); err != nil {
				return nil, fmt.Errorf("parsing specification version: %w", err)
			}
		case "ResourceTypes":
			if err := spec.parseResourceTypes(dec); err != nil {
				return nil, fmt.Errorf("parsing ResourceTypes: %w", err)
			}
		default:
			if err := skipValue(dec); err != nil {
				return nil, fmt.Errorf("parsing resource specification: %w", err)
			}
		}
	}

	return spec, nil
}

// Resolve maps a service/resourcetype pair from an ARN to its canonical
// declared type, comparing case-insensitively in declared key order.
func (s *Spec) Resolve(service, resourcetype string) (*ResourceType, error) {
	target := fmt.Sprintf("AWS::%s::%s", service, resourcetype)
	for i := range s.types {
		if strings.EqualFold(s.types[i].Name, target) {
			return &s.types[i], nil
		}
	}
	return nil, &UnknownTypeError{Service: service, ResourceType: resourcetype}
}

// Len reports the number of declared resource types.
func (s *Spec) Len() int { return len(s.types) }

func (s *Spec) parseResourceTypes(dec *json.Decoder) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		name, err := stringToken(dec)
		if err != nil {
			return err
		}
		rt := ResourceType{Name: name}
		if err := rt.parseBody(dec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		s.types = append(s.types, rt)
	}
	return expectDelim(dec, '}')
}

func (rt *ResourceType) parseBody(dec *json.Decoder) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return err
		}
		if key != "Properties" {
			if err := skipValue(dec); err != nil {
				return err
			}
			continue
		}
		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		for dec.More() {
			prop, err := stringToken(dec)
			if err != nil {
				return err
			}
			rt.Properties = append(rt.Properties, prop)
			if err := skipValue(dec); err != nil {
				return err
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %v", tok)
	}
	return s, nil
}

// skipValue consumes one JSON value of any kind.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	if d != '{' && d != '[' {
		return fmt.Errorf("unexpected %v", d)
	}
	for dec.More() {
		if err := skipValue(dec); err != nil {
			return err
		}
	}
	_, err = dec.Token() // closing delimiter
	return err
}
