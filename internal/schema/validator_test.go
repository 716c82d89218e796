package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUnknownSchema(t *testing.T) {
	_, err := Validate(map[string]interface{}{}, "no-such-schema")
	assert.Error(t, err)
}

func TestValidateConfigSchema(t *testing.T) {
	tests := []struct {
		name  string
		data  map[string]interface{}
		valid bool
	}{
		{
			name: "valid config",
			data: map[string]interface{}{
				"output": map[string]interface{}{"name": "umamusume.apk", "work_dir": "."},
				"patch":  map[string]interface{}{"library": "libmain.so"},
			},
			valid: true,
		},
		{
			name:  "empty config",
			data:  map[string]interface{}{},
			valid: true,
		},
		{
			name: "unknown top-level key",
			data: map[string]interface{}{
				"outputs": map[string]interface{}{},
			},
			valid: false,
		},
		{
			name: "bad output name",
			data: map[string]interface{}{
				"output": map[string]interface{}{"name": "result.tar.gz"},
			},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Validate(tt.data, "apkpatch-config-v1.0.0")
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.NotEmpty(t, result.Errors)
			}
		})
	}
}
