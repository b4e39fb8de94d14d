package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiwicloudninja/arnexport/pkg/arn"
)

func mustParse(t *testing.T, s string) arn.Map {
	t.Helper()
	m, err := arn.Parse(s)
	require.NoError(t, err)
	return m
}

func TestNewRequestNameArgument(t *testing.T) {
	cases := []struct {
		arn  string
		name string
	}{
		// no qualifier: resource field
		{"arn:aws:lambda:us-east-1:123456789012:function:myFunction", "myFunction"},
		// qualifier wins when present
		{"arn:aws:lambda:us-east-1:123456789012:function:myFunction:PROD", "PROD"},
		// hyphens survive; only display names strip them
		{"arn:aws:iam::123456789012:role/my-role", "my-role"},
	}

	for _, tc := range cases {
		req := NewRequest(tc.arn, mustParse(t, tc.arn))
		assert.Equal(t, tc.name, req.Name, tc.arn)
		assert.Equal(t, tc.arn, req.ARN)
	}
}

func TestLookup(t *testing.T) {
	cases := []struct {
		service, rtype string
		kind           Kind
	}{
		{"lambda", "function", KindGet},
		{"iam", "role", KindGet},
		{"dynamodb", "table", KindDescribe},
		{"states", "stateMachine", KindDescribe},
		{"rds", "db", KindDescribePlural},
		{"ec2", "instance", KindDescribePlural},
		{"logs", "log-group", KindDescribePlural},
	}

	for _, tc := range cases {
		s, ok := Lookup(tc.service, tc.rtype)
		require.True(t, ok, "%s:%s", tc.service, tc.rtype)
		assert.Equal(t, tc.kind, s.Kind)
		assert.NotNil(t, s.Fn)
	}

	_, ok := Lookup("glacier", "vault")
	assert.False(t, ok)
}

func TestFetchNoResourceType(t *testing.T) {
	// S3-style ARNs have no resourcetype segment; there is nothing to
	// name a read operation after.
	arnStr := "arn:aws:sns:us-east-1:123456789012:mytopic"
	f := New("default", "", false)

	_, err := f.Fetch(context.Background(), NewRequest(arnStr, mustParse(t, arnStr)), "AWS::SNS::Topic")
	require.Error(t, err)

	var nfo *NoFetchOperationError
	require.True(t, errors.As(err, &nfo))
	assert.Equal(t, arnStr, nfo.ARN)
}

func TestClassify(t *testing.T) {
	validation := &smithy.GenericAPIError{Code: "ValidationException", Message: "bad args"}
	err := classify("arn:aws:rds:us-east-1:123456789012:db:mydb", validation)

	var invalid *InvalidParametersError
	require.True(t, errors.As(err, &invalid))
	assert.True(t, errors.Is(err, validation))

	throttle := &smithy.GenericAPIError{Code: "ThrottlingException"}
	assert.NotErrorAs(t, classify("arn", throttle), &invalid)

	plain := errors.New("dial tcp: timeout")
	assert.Equal(t, plain, classify("arn", plain))
}

func TestToDocumentAndStripMetadata(t *testing.T) {
	type out struct {
		FunctionName   string
		ResultMetadata map[string]any
	}

	doc, err := toDocument(out{FunctionName: "myFunction", ResultMetadata: map[string]any{"RequestId": "x"}})
	require.NoError(t, err)

	stripMetadata(doc)
	assert.Equal(t, map[string]any{"FunctionName": "myFunction"}, doc)
}
