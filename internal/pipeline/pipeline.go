// Package pipeline sequences the patch transformation: fetch, decompile,
// merge, patch manifest, substitute library, recompile, sign, finalize.
//
// The pipeline is single-threaded and strictly sequential. Each stage runs at
// most once; the first failure aborts the run with a StageError and nothing is
// cleaned up or rolled back, deliberately leaving the half-built tree on disk
// for post-mortem inspection.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/fulmenhq/apkpatch/internal/apktree"
	"github.com/fulmenhq/apkpatch/internal/manifest"
	"github.com/fulmenhq/apkpatch/pkg/fetch"
	"github.com/fulmenhq/apkpatch/pkg/logger"
	"github.com/fulmenhq/apkpatch/pkg/toolexec"
)

// signedSuffix is the decoration uber-apk-signer appends to its output stem.
const signedSuffix = "-aligned-signed"

// Tools names the external executables the pipeline invokes.
type Tools struct {
	Apktool   string
	Java      string
	SignerJar string
}

// Keystore holds the signing credentials handed to the signer.
type Keystore struct {
	Path      string
	Alias     string
	StorePass string
	KeyPass   string
}

// Options configures one pipeline run.
type Options struct {
	BaseAPKURL  string
	SplitAPKURL string
	LibraryURL  string
	KeystoreURL string

	WorkDir    string
	OutputName string

	Tools    Tools
	Keystore Keystore

	ABI          string
	Library      string
	Provider     manifest.Provider
	ResourceName string
}

// Pipeline runs the patch transformation over a working directory it owns
// exclusively for the duration of the run.
type Pipeline struct {
	opts    Options
	runner  toolexec.Runner
	fetcher *fetch.Fetcher

	baseTree  apktree.Tree
	splitTree apktree.Tree
}

// New creates a pipeline with the default runner and fetcher.
func New(opts Options) *Pipeline {
	return NewWith(opts, toolexec.NewLocalRunner(), fetch.New())
}

// NewWith creates a pipeline with injected collaborators.
func NewWith(opts Options, runner toolexec.Runner, fetcher *fetch.Fetcher) *Pipeline {
	return &Pipeline{
		opts:      opts,
		runner:    runner,
		fetcher:   fetcher,
		baseTree:  apktree.NewTree(filepath.Join(opts.WorkDir, "base")),
		splitTree: apktree.NewTree(filepath.Join(opts.WorkDir, "split")),
	}
}

// Run executes all stages in order, stopping at the first failure.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	stages := []struct {
		stage Stage
		fn    func(context.Context) error
	}{
		{StageFetching, p.fetchArtifacts},
		{StageDecompiling, p.decompile},
		{StageMerging, p.mergeSplit},
		{StagePatchingManifest, p.patchManifest},
		{StageSubstituting, p.substituteLibrary},
		{StageRecompiling, p.recompile},
		{StageSigning, p.sign},
		{StageFinalizing, p.finalize},
	}

	result := &RunResult{OutputPath: p.outputPath()}
	start := time.Now()

	for _, s := range stages {
		logger.Info("stage starting", logger.String("stage", string(s.stage)))
		stageStart := time.Now()

		if err := s.fn(ctx); err != nil {
			logger.Error("stage failed",
				logger.String("stage", string(s.stage)),
				logger.Err(err))
			return nil, &StageError{Stage: s.stage, Err: err}
		}

		elapsed := time.Since(stageStart)
		result.Stages = append(result.Stages, StageResult{Stage: s.stage, Duration: elapsed})
		logger.Info("stage completed",
			logger.String("stage", string(s.stage)),
			logger.Duration("elapsed", elapsed))
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

func (p *Pipeline) workPath(name string) string {
	return filepath.Join(p.opts.WorkDir, name)
}

func (p *Pipeline) outputStem() string {
	return strings.TrimSuffix(p.opts.OutputName, ".apk")
}

func (p *Pipeline) outputPath() string {
	return p.workPath(p.opts.OutputName)
}

func (p *Pipeline) unsignedPath() string {
	return p.workPath(p.outputStem() + "_patched.apk")
}

// SignedArtifactPath is where the signer's suffix-decorated output is
// expected. Exposed for the finalize checkpoint and its tests.
func (p *Pipeline) SignedArtifactPath() string {
	return p.workPath(p.outputStem() + "_patched" + signedSuffix + ".apk")
}

func (p *Pipeline) baseAPKPath() string { return p.workPath("base.apk") }

func (p *Pipeline) splitAPKPath() string { return p.workPath("split.apk") }

func (p *Pipeline) libraryPath() string { return p.workPath("replacement-" + p.opts.Library) }

func (p *Pipeline) keystorePath() string {
	if p.opts.Keystore.Path != "" {
		return p.opts.Keystore.Path
	}
	return p.workPath("debug.keystore")
}

func (p *Pipeline) fetchArtifacts(_ context.Context) error {
	downloads := []struct {
		url  string
		dest string
	}{
		{p.opts.BaseAPKURL, p.baseAPKPath()},
		{p.opts.SplitAPKURL, p.splitAPKPath()},
		{p.opts.LibraryURL, p.libraryPath()},
		{p.opts.KeystoreURL, p.keystorePath()},
	}
	for _, d := range downloads {
		if err := p.fetcher.Download(d.url, d.dest); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) decompile(ctx context.Context) error {
	if _, err := p.runner.Run(ctx, p.opts.WorkDir, p.opts.Tools.Apktool,
		"d", p.baseAPKPath(), "-o", p.baseTree.Root, "-f"); err != nil {
		return err
	}
	if _, err := p.runner.Run(ctx, p.opts.WorkDir, p.opts.Tools.Apktool,
		"d", p.splitAPKPath(), "-o", p.splitTree.Root, "-f"); err != nil {
		return err
	}
	return nil
}

func (p *Pipeline) mergeSplit(_ context.Context) error {
	return apktree.Merge(p.splitTree.LibDir(""), p.baseTree.LibDir(""))
}

func (p *Pipeline) patchManifest(_ context.Context) error {
	if err := manifest.WriteProviderPaths(p.baseTree, p.opts.ResourceName); err != nil {
		return err
	}

	doc, err := manifest.Parse(p.baseTree.Manifest())
	if err != nil {
		return err
	}
	doc.EnsureProvider(p.opts.Provider)
	return doc.Write()
}

func (p *Pipeline) substituteLibrary(_ context.Context) error {
	replacement, err := os.ReadFile(p.libraryPath()) // #nosec G304 -- pipeline-owned work path
	if err != nil {
		return &apktree.SubstitutionError{Path: p.libraryPath(), Err: err}
	}
	return apktree.Substitute(p.baseTree, p.opts.ABI, p.opts.Library, replacement)
}

func (p *Pipeline) recompile(ctx context.Context) error {
	_, err := p.runner.Run(ctx, p.opts.WorkDir, p.opts.Tools.Apktool,
		"b", p.baseTree.Root, "-o", p.unsignedPath())
	return err
}

func (p *Pipeline) sign(ctx context.Context) error {
	ks := p.keystorePath()
	if _, err := os.Stat(ks); os.IsNotExist(err) {
		return &KeystoreMissing{Path: ks}
	}

	_, err := p.runner.Run(ctx, p.opts.WorkDir, p.opts.Tools.Java,
		"-jar", p.opts.Tools.SignerJar,
		"--apks", p.unsignedPath(),
		"--ks", ks,
		"--ksAlias", p.opts.Keystore.Alias,
		"--ksPass", p.opts.Keystore.StorePass,
		"--ksKeyPass", p.opts.Keystore.KeyPass)
	return err
}

// finalize renames the signer's output to the canonical output name. The
// signer's naming convention is a checkpoint: when the expected file is
// absent this is diagnosed explicitly, with any near-miss candidates listed,
// rather than surfaced as a generic not-found.
func (p *Pipeline) finalize(_ context.Context) error {
	signed := p.SignedArtifactPath()
	if _, err := os.Stat(signed); os.IsNotExist(err) {
		pattern := p.outputStem() + "_patched*signed*.apk"
		candidates, _ := doublestar.FilepathGlob(filepath.Join(p.opts.WorkDir, pattern))
		for i, c := range candidates {
			candidates[i] = filepath.Base(c)
		}
		return &ExpectedArtifactMissing{Expected: filepath.Base(signed), Candidates: candidates}
	}

	final := p.outputPath()
	if err := os.Rename(signed, final); err != nil {
		return fmt.Errorf("failed to rename signed artifact: %w", err)
	}

	logger.Info("final package ready", logger.String("path", final))
	return nil
}
