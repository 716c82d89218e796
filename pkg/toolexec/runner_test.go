package toolexec

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	result, err := NewLocalRunner().Run(context.Background(), "", "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "out\n", string(result.Stdout))
	assert.Equal(t, "err\n", string(result.Stderr))
}

func TestRunNonZeroExitIsTypedFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	result, err := NewLocalRunner().Run(context.Background(), "", "sh", "-c", "echo broken >&2; exit 3")

	var failure *ExternalToolFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, 3, failure.ExitCode)
	assert.Contains(t, failure.Stderr, "broken")
	assert.Contains(t, failure.Error(), "exit code 3")

	require.NotNil(t, result)
	assert.Equal(t, 3, result.ExitCode)
}

func TestRunMissingBinary(t *testing.T) {
	_, err := NewLocalRunner().Run(context.Background(), "", "definitely-not-a-real-tool-xyz")

	var failure *ExternalToolFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, -1, failure.ExitCode)
}

func TestIsAvailable(t *testing.T) {
	r := NewLocalRunner()
	assert.False(t, r.IsAvailable("definitely-not-a-real-tool-xyz"))
	if runtime.GOOS != "windows" {
		assert.True(t, r.IsAvailable("sh"))
	}
}
