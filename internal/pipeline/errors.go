package pipeline

import (
	"fmt"
	"strings"
)

// StageError is the single terminal failure of a run: the stage that failed
// plus the underlying cause. The pipeline aborts on the first one.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ExpectedArtifactMissing reports a checkpoint file that a prior stage should
// have produced. It is distinct from a generic not-found because the usual
// cause is the signing tool changing its output naming convention.
type ExpectedArtifactMissing struct {
	Expected   string
	Candidates []string
}

func (e *ExpectedArtifactMissing) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("expected artifact %s is missing; check the signer's output naming convention", e.Expected)
	}
	return fmt.Sprintf("expected artifact %s is missing; similarly named files: %s",
		e.Expected, strings.Join(e.Candidates, ", "))
}

// KeystoreMissing reports an absent signing credential, diagnosed before the
// signer is ever invoked.
type KeystoreMissing struct {
	Path string
}

func (e *KeystoreMissing) Error() string {
	return fmt.Sprintf("keystore not found: %s", e.Path)
}
