package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidator(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	require.NotNil(t, v)
}

func TestValidateAcceptsConfigShapes(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	valid := map[string]interface{}{
		"Version": "1.0",
		"Watch": map[string]interface{}{
			"StatusDir": "/tmp/status",
		},
	}
	assert.NoError(t, v.Validate(valid))

	// Extension sections are free-form
	withExtensions := map[string]interface{}{
		"Version": "1.0",
		"Extensions": map[string]interface{}{
			"logging": map[string]interface{}{"level": "debug"},
		},
	}
	assert.NoError(t, v.Validate(withExtensions))
}

func TestValidateRejectsWrongTypes(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	invalid := map[string]interface{}{
		"Version": 42,
	}
	err = v.Validate(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}
