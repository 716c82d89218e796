package pipeline

import "time"

// Stage identifies one step of the patch pipeline. Stages run strictly in
// order, each at most once.
type Stage string

const (
	StageFetching         Stage = "fetching"
	StageDecompiling      Stage = "decompiling"
	StageMerging          Stage = "merging"
	StagePatchingManifest Stage = "patching-manifest"
	StageSubstituting     Stage = "substituting"
	StageRecompiling      Stage = "recompiling"
	StageSigning          Stage = "signing"
	StageFinalizing       Stage = "finalizing"
)

// StageResult records the outcome of one completed stage.
type StageResult struct {
	Stage    Stage         `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// RunResult summarizes a successful run.
type RunResult struct {
	Stages     []StageResult `json:"stages"`
	OutputPath string        `json:"output_path"`
	Elapsed    time.Duration `json:"elapsed"`
}
