// Package fetch retrieves the live properties of a resource named by an
// ARN. Each supported (service, resourcetype) pair maps to one read call
// on the matching typed SDK client; everything else goes through the
// Cloud Control API with the canonical CloudFormation type name.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go"

	"github.com/kiwicloudninja/arnexport/internal/helpers"
	"github.com/kiwicloudninja/arnexport/pkg/arn"
)

// NoFetchOperationError indicates no read operation exists for the ARN's
// resource type, including ARNs whose shape carries no resourcetype
// segment at all (S3 buckets, SQS queues, SNS topics).
type NoFetchOperationError struct {
	ARN string
}

func (e *NoFetchOperationError) Error() string {
	return fmt.Sprintf("no way of exporting this resource: %s", e.ARN)
}

// InvalidParametersError indicates the provider rejected the constructed
// request arguments. Not retryable.
type InvalidParametersError struct {
	ARN string
	Err error
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("no way of retrieving %s for export: %v", e.ARN, e.Err)
}

func (e *InvalidParametersError) Unwrap() error { return e.Err }

// Request identifies the resource to fetch.
type Request struct {
	ARN    string
	Parsed arn.Map

	// Name is the value passed as the operation's name argument: the
	// qualifier when the ARN has one, otherwise the resource field.
	Name string
}

// NewRequest builds a fetch request from a parsed ARN.
func NewRequest(arnStr string, parsed arn.Map) Request {
	name := parsed.Resource()
	if q, ok := parsed.Qualifier(); ok {
		name = q
	}
	return Request{ARN: arnStr, Parsed: parsed, Name: name}
}

// Fetcher performs one read call per resource against the AWS API.
type Fetcher struct {
	profile string
	region  string
	verbose bool
}

// New returns a Fetcher using the given shared-config profile. region is
// the fallback for ARNs with an empty region field.
func New(profile, region string, verbose bool) *Fetcher {
	if region == "" {
		region = helpers.DefaultRegion
	}
	return &Fetcher{profile: profile, region: region, verbose: verbose}
}

// Fetch retrieves the resource's current properties. canonicalType is the
// resolved CloudFormation type name, used by the Cloud Control fallback
// when no typed strategy matches.
func (f *Fetcher) Fetch(ctx context.Context, req Request, canonicalType string) (map[string]any, error) {
	rtype, ok := req.Parsed.ResourceType()
	if !ok {
		return nil, &NoFetchOperationError{ARN: req.ARN}
	}

	region := req.Parsed.Region()
	if region == "" {
		region = f.region
	}
	cfg, err := helpers.GetAWSCfg(ctx, region, f.profile, f.verbose)
	if err != nil {
		return nil, err
	}

	strat, ok := Lookup(req.Parsed.Service(), rtype)
	if !ok {
		if canonicalType == "" {
			return nil, &NoFetchOperationError{ARN: req.ARN}
		}
		strat = cloudControlStrategy(canonicalType)
	}

	doc, err := strat.Fn(ctx, cfg, req)
	if err != nil {
		return nil, classify(req.ARN, err)
	}

	stripMetadata(doc)
	return doc, nil
}

// classify wraps provider rejections of our constructed arguments in a
// typed, non-retryable error; everything else passes through.
func classify(arnStr string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if strings.Contains(code, "Validation") || strings.Contains(code, "InvalidParameter") {
			return &InvalidParametersError{ARN: arnStr, Err: err}
		}
	}
	return err
}

// toDocument converts an SDK response struct to a plain key/value tree.
func toDocument(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// stripMetadata removes transport metadata from a fetched document.
func stripMetadata(doc map[string]any) {
	delete(doc, "ResultMetadata")
	delete(doc, "ResponseMetadata")
}

func ptr(s string) *string { return aws.String(s) }
