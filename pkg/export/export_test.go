package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiwicloudninja/arnexport/pkg/cfnspec"
	"github.com/kiwicloudninja/arnexport/pkg/fetch"
)

type stubResolver struct {
	types map[string]*cfnspec.ResourceType // keyed lowercase service::resourcetype
}

func (r *stubResolver) Resolve(service, resourcetype string) (*cfnspec.ResourceType, error) {
	key := strings.ToLower(service + "::" + resourcetype)
	if rt, ok := r.types[key]; ok {
		return rt, nil
	}
	return nil, &cfnspec.UnknownTypeError{Service: service, ResourceType: resourcetype}
}

type stubFetcher struct {
	docs  map[string]map[string]any // keyed by ARN
	calls []string
}

func (f *stubFetcher) Fetch(ctx context.Context, req fetch.Request, canonicalType string) (map[string]any, error) {
	f.calls = append(f.calls, req.ARN)
	if doc, ok := f.docs[req.ARN]; ok {
		return doc, nil
	}
	return nil, fmt.Errorf("no stub document for %s", req.ARN)
}

const (
	lambdaArn = "arn:aws:lambda:us-east-1:123456789012:function:myFunction"
	roleArn   = "arn:aws:iam::123456789012:role/myRole"
)

func lambdaScenario() (*stubResolver, *stubFetcher) {
	resolver := &stubResolver{types: map[string]*cfnspec.ResourceType{
		"lambda::function": {Name: "AWS::Lambda::Function", Properties: []string{"FunctionName", "Role", "Handler"}},
		"iam::role":        {Name: "AWS::IAM::Role", Properties: []string{"RoleName", "Path"}},
	}}
	fetcher := &stubFetcher{docs: map[string]map[string]any{
		lambdaArn: {
			"FunctionName": "myFunction",
			"Role":         roleArn,
			"Handler":      "index.handler",
		},
		roleArn: {
			"Role": map[string]any{
				"RoleName": "myRole",
				"Path":     "/",
			},
		},
	}}
	return resolver, fetcher
}

func TestExportRoundTrip(t *testing.T) {
	resolver, fetcher := lambdaScenario()
	e := New(resolver, fetcher)

	res, err := e.Export(context.Background(), lambdaArn)
	require.NoError(t, err)

	assert.Equal(t, "myFunction", res.Name)
	assert.Equal(t, "lambda", res.Service)
	assert.Equal(t, "function", res.ResourceType)
	require.Len(t, res.Resources, 2)

	fn := res.Resources["myFunction"]
	assert.Equal(t, "AWS::Lambda::Function", fn.Type)
	assert.Equal(t, "index.handler", fn.Properties["Handler"])
	assert.Equal(t, "!Ref myRole", fn.Properties["Role"])

	role := res.Resources["myRole"]
	assert.Equal(t, "AWS::IAM::Role", role.Type)
	// found nested one level down in the fetched document
	assert.Equal(t, "myRole", role.Properties["RoleName"])
	assert.Equal(t, "/", role.Properties["Path"])

	assert.Equal(t, []string{lambdaArn, roleArn}, fetcher.calls)

	// raw merges every fetched document; later fetches win on key overlap
	assert.Equal(t, "index.handler", res.Raw["Handler"])
	assert.Equal(t, map[string]any{"RoleName": "myRole", "Path": "/"}, res.Raw["Role"])
}

func TestExportUnknownTopLevelTypeIsFatal(t *testing.T) {
	resolver := &stubResolver{types: map[string]*cfnspec.ResourceType{}}
	fetcher := &stubFetcher{}
	e := New(resolver, fetcher)

	_, err := e.Export(context.Background(), lambdaArn)
	require.Error(t, err)

	var unknown *cfnspec.UnknownTypeError
	assert.True(t, errors.As(err, &unknown))
	assert.Empty(t, fetcher.calls, "no fetch should happen when resolution fails")
}

func TestExportNoResourceType(t *testing.T) {
	resolver, fetcher := lambdaScenario()
	e := New(resolver, fetcher)

	_, err := e.Export(context.Background(), "arn:aws:sns:us-east-1:123456789012:mytopic")
	var nfo *fetch.NoFetchOperationError
	require.True(t, errors.As(err, &nfo))
}

func TestExportUnparseableARN(t *testing.T) {
	resolver, fetcher := lambdaScenario()
	e := New(resolver, fetcher)

	_, err := e.Export(context.Background(), "arn:aws:iam")
	require.Error(t, err)
}

func TestNestedUnknownTypeKeepsRawValue(t *testing.T) {
	resolver, fetcher := lambdaScenario()
	delete(resolver.types, "iam::role")
	e := New(resolver, fetcher)

	res, err := e.Export(context.Background(), lambdaArn)
	require.NoError(t, err)

	fn := res.Resources["myFunction"]
	assert.Equal(t, roleArn, fn.Properties["Role"], "unresolvable nested ARN stays literal")
	require.Len(t, res.Resources, 1)
}

func TestAbsentPropertyIsOmitted(t *testing.T) {
	resolver, fetcher := lambdaScenario()
	delete(fetcher.docs[lambdaArn], "Handler")
	e := New(resolver, fetcher)

	res, err := e.Export(context.Background(), lambdaArn)
	require.NoError(t, err)

	fn := res.Resources["myFunction"]
	_, present := fn.Properties["Handler"]
	assert.False(t, present, "missing property must be omitted, not null")
}

func TestCyclicReferenceExpandsOnce(t *testing.T) {
	resolver := &stubResolver{types: map[string]*cfnspec.ResourceType{
		"lambda::function": {Name: "AWS::Lambda::Function", Properties: []string{"FunctionName", "Role"}},
		"iam::role":        {Name: "AWS::IAM::Role", Properties: []string{"RoleName", "Description"}},
	}}
	fetcher := &stubFetcher{docs: map[string]map[string]any{
		lambdaArn: {"FunctionName": "myFunction", "Role": roleArn},
		// the role points back at the function
		roleArn: {"RoleName": "myRole", "Description": lambdaArn},
	}}
	e := New(resolver, fetcher)

	res, err := e.Export(context.Background(), lambdaArn)
	require.NoError(t, err)

	role := res.Resources["myRole"]
	assert.Equal(t, "!Ref myFunction", role.Properties["Description"])
	assert.Equal(t, []string{lambdaArn, roleArn}, fetcher.calls, "each ARN fetched exactly once")
}

func TestMaxDepthKeepsRawValue(t *testing.T) {
	resolver, fetcher := lambdaScenario()
	e := New(resolver, fetcher, WithMaxDepth(0))

	res, err := e.Export(context.Background(), lambdaArn)
	require.NoError(t, err)

	fn := res.Resources["myFunction"]
	assert.Equal(t, roleArn, fn.Properties["Role"])
	assert.Equal(t, []string{lambdaArn}, fetcher.calls)
}

func TestNameCollision(t *testing.T) {
	otherRoleArn := "arn:aws:iam::999999999999:role/my-Role"

	resolver := &stubResolver{types: map[string]*cfnspec.ResourceType{
		"lambda::function": {Name: "AWS::Lambda::Function", Properties: []string{"Role", "DeadLetterArn"}},
		"iam::role":        {Name: "AWS::IAM::Role", Properties: []string{"RoleName"}},
	}}
	fetcher := &stubFetcher{docs: map[string]map[string]any{
		lambdaArn: {"Role": roleArn, "DeadLetterArn": otherRoleArn},
		roleArn:   {"RoleName": "myRole"},
		// my-Role strips to myRole as well
		otherRoleArn: {"RoleName": "my-Role"},
	}}
	e := New(resolver, fetcher)

	_, err := e.Export(context.Background(), lambdaArn)
	require.Error(t, err)

	var collision *NameCollisionError
	require.True(t, errors.As(err, &collision))
	assert.Equal(t, "myRole", collision.Name)
}

func TestNestedFetchFailureIsFatal(t *testing.T) {
	resolver, fetcher := lambdaScenario()
	delete(fetcher.docs, roleArn)
	e := New(resolver, fetcher)

	_, err := e.Export(context.Background(), lambdaArn)
	require.Error(t, err)
}
