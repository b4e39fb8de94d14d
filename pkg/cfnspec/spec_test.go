package cfnspec

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestSpec(t *testing.T) *Spec {
	t.Helper()
	spec, err := Load(filepath.Join("testdata", "spec.json"))
	require.NoError(t, err)
	return spec
}

func TestLoad(t *testing.T) {
	spec := loadTestSpec(t)

	assert.Equal(t, "181.0.0", spec.Version)
	assert.Equal(t, 3, spec.Len())
}

func TestResolveCaseInsensitive(t *testing.T) {
	spec := loadTestSpec(t)

	lower, err := spec.Resolve("lambda", "function")
	require.NoError(t, err)
	canonical, err := spec.Resolve("Lambda", "Function")
	require.NoError(t, err)

	assert.Equal(t, "AWS::Lambda::Function", lower.Name)
	assert.Equal(t, canonical, lower)
	assert.Equal(t, []string{"FunctionName", "Role", "Handler"}, lower.Properties)
}

func TestResolvePreservesDeclaredPropertyOrder(t *testing.T) {
	spec := loadTestSpec(t)

	role, err := spec.Resolve("iam", "role")
	require.NoError(t, err)
	assert.Equal(t, []string{"RoleName", "AssumeRolePolicyDocument", "Path"}, role.Properties)
}

func TestResolveUnknownType(t *testing.T) {
	spec := loadTestSpec(t)

	_, err := spec.Resolve("timetravel", "portal")
	require.Error(t, err)

	var unknown *UnknownTypeError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "timetravel", unknown.Service)
	assert.Equal(t, "portal", unknown.ResourceType)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.json"))
	assert.Error(t, err)
}
