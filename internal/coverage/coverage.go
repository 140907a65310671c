// SPDX-License-Identifier: MPL-2.0

package coverage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/classicalliu/cita-common/internal/runner"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	// DefaultArtifactDir is where cargo leaves test binaries.
	DefaultArtifactDir = "target/debug"
	// DefaultOutputDir receives one instrumentation directory per artifact.
	DefaultOutputDir = "target/cov"
	// DefaultInstrument is the instrumentation command line; the output
	// directory and artifact path are appended.
	DefaultInstrument = "kcov --exclude-pattern=/.cargo,/usr/lib --verify"
	// DefaultUpload is the upload command line.
	DefaultUpload = "codecov --dir target/cov"
	// DefaultEnvFile holds upload credentials; it is optional.
	DefaultEnvFile = ".env"
)

// ErrUpload is the sentinel wrapped by UploadError.
var ErrUpload = errors.New("coverage upload failed")

type (
	// Executor runs one external command in dir and waits for it.
	Executor interface {
		Run(ctx context.Context, dir string, argv, env []string) error
	}

	// ProcessExecutor runs commands as child processes.
	ProcessExecutor struct {
		Stdout io.Writer
		Stderr io.Writer
	}

	// Options configures an Uploader. Relative paths are resolved against Root.
	Options struct {
		Root           string
		ArtifactDir    string
		OutputDir      string
		Instrument     string
		Upload         string
		EnvFile        string
		UploadAttempts int
		UploadBackoff  time.Duration
		Executor       Executor
		Logger         *log.Logger
	}

	// Uploader instruments test artifacts and uploads the report.
	Uploader struct {
		opts   Options
		logger *log.Logger
	}

	// ArtifactError records an artifact whose instrumentation failed.
	ArtifactError struct {
		Artifact string
		Err      error
	}

	// UploadError reports that every upload attempt failed.
	UploadError struct {
		Attempts int
		Err      error
	}

	// Report summarizes a coverage pass.
	Report struct {
		Artifacts    []string
		Instrumented int
		Failures     []ArtifactError
		Uploaded     bool
		// Err is the upload or setup error; it never fails the run.
		Err error
	}
)

// Error implements the error interface.
func (e *ArtifactError) Error() string {
	return fmt.Sprintf("instrument %s: %v", e.Artifact, e.Err)
}

// Unwrap returns the instrumentation error.
func (e *ArtifactError) Unwrap() error { return e.Err }

// Error implements the error interface.
func (e *UploadError) Error() string {
	return fmt.Sprintf("coverage upload failed after %d attempt(s): %v", e.Attempts, e.Err)
}

// Unwrap returns ErrUpload and the last attempt's error.
func (e *UploadError) Unwrap() []error { return []error{ErrUpload, e.Err} }

// Run executes argv in dir.
func (p *ProcessExecutor) Run(ctx context.Context, dir string, argv, env []string) error {
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Dir = dir
	c.Env = append(os.Environ(), env...)
	c.Stdout = p.Stdout
	c.Stderr = p.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("%s: %w", runner.RenderCommandLine(argv), err)
	}
	return nil
}

// New creates an Uploader, filling defaults for empty options.
func New(opts Options) *Uploader {
	if opts.ArtifactDir == "" {
		opts.ArtifactDir = DefaultArtifactDir
	}
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if opts.Instrument == "" {
		opts.Instrument = DefaultInstrument
	}
	if opts.Upload == "" {
		opts.Upload = DefaultUpload
	}
	if opts.UploadAttempts < 1 {
		opts.UploadAttempts = 1
	}
	if opts.Executor == nil {
		opts.Executor = &ProcessExecutor{Stdout: os.Stdout, Stderr: os.Stderr}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Uploader{opts: opts, logger: logger.WithPrefix("coverage")}
}

// Run instruments every artifact and uploads the result. It never returns an
// error; failures are logged and reported.
func (u *Uploader) Run(ctx context.Context) Report {
	var report Report

	artifacts, err := FindArtifacts(u.path(u.opts.ArtifactDir))
	if err != nil {
		report.Err = err
		u.logger.Warn("cannot list test artifacts", "err", err)
		return report
	}
	report.Artifacts = artifacts

	instrument, err := runner.SplitCommandLine(u.opts.Instrument)
	if err != nil {
		report.Err = err
		u.logger.Warn("invalid instrumentation command", "err", err)
		return report
	}

	outputDir := u.path(u.opts.OutputDir)
	for _, artifact := range artifacts {
		if err := u.instrument(ctx, instrument, outputDir, artifact); err != nil {
			u.logger.Warn("instrumentation failed", "artifact", filepath.Base(artifact), "err", err)
			report.Failures = append(report.Failures, ArtifactError{Artifact: artifact, Err: err})
			continue
		}
		report.Instrumented++
	}

	if err := u.upload(ctx); err != nil {
		report.Err = err
		u.logger.Warn("upload failed", "err", err)
		return report
	}
	report.Uploaded = true
	u.logger.Info("uploaded", "artifacts", report.Instrumented)
	return report
}

func (u *Uploader) instrument(ctx context.Context, instrument []string, outputDir, artifact string) error {
	dest := filepath.Join(outputDir, filepath.Base(artifact))
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	argv := append(append([]string(nil), instrument...), dest, artifact)
	return u.opts.Executor.Run(ctx, u.opts.Root, argv, nil)
}

func (u *Uploader) upload(ctx context.Context) error {
	argv, err := runner.SplitCommandLine(u.opts.Upload)
	if err != nil {
		return &UploadError{Attempts: 0, Err: err}
	}
	env, err := u.uploadEnv()
	if err != nil {
		return &UploadError{Attempts: 0, Err: err}
	}

	attempts := 0
	err = retryWithBackoff(ctx, u.opts.UploadAttempts, u.opts.UploadBackoff, func(attempt int) error {
		attempts = attempt + 1
		if attempt > 0 {
			u.logger.Debug("retrying upload", "attempt", attempts)
		}
		return u.opts.Executor.Run(ctx, u.opts.Root, argv, env)
	})
	if err != nil {
		return &UploadError{Attempts: attempts, Err: err}
	}
	return nil
}

// uploadEnv reads the optional env file as KEY=VALUE pairs in key order.
func (u *Uploader) uploadEnv() ([]string, error) {
	if u.opts.EnvFile == "" {
		return nil, nil
	}
	values, err := godotenv.Read(u.path(u.opts.EnvFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", u.opts.EnvFile, err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, len(keys))
	for i, k := range keys {
		env[i] = k + "=" + values[k]
	}
	return env, nil
}

func (u *Uploader) path(p string) string {
	if filepath.IsAbs(p) || u.opts.Root == "" {
		return p
	}
	return filepath.Join(u.opts.Root, p)
}

// FindArtifacts lists the test binaries in dir: executable regular files whose
// name contains a dash (cargo appends a hash) and that are not dependency
// files (".d"). The result is sorted.
func FindArtifacts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list artifacts in %s: %w", dir, err)
	}

	var artifacts []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.Contains(name, "-") || strings.HasSuffix(name, ".d") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Mode().Perm()&0o111 == 0 {
			continue
		}
		artifacts = append(artifacts, filepath.Join(dir, name))
	}
	sort.Strings(artifacts)
	return artifacts, nil
}
