package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "templates")

	doc := NewDocument("Exported myFunction_lambda_function from arn:aws:lambda:us-east-1:123456789012:function:myFunction", map[string]Resource{
		"myFunction": {
			Type: "AWS::Lambda::Function",
			Properties: map[string]any{
				"Handler": "index.handler",
				"Role":    "!Ref myRole",
			},
		},
	})

	path, err := Write(dir, "myFunction_lambda_function", doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "myFunction_lambda_function.yml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Document
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, FormatVersion, got.AWSTemplateFormatVersion)
	assert.Equal(t, doc.Description, got.Description)
	assert.Equal(t, "!Ref myRole", got.Resources["myFunction"].Properties["Role"])
}

func TestWriteRaw(t *testing.T) {
	dir := t.TempDir()

	raw := map[string]any{
		"Configuration": map[string]any{"FunctionName": "myFunction"},
	}

	path, err := WriteRaw(dir, "myFunction_lambda_function", "descr", raw)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "myFunction_lambda_function_raw.yml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FunctionName: myFunction")
}
