// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/classicalliu/cita-common/internal/cueutil"
	"github.com/classicalliu/cita-common/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "citaci"
	// ConfigFileName is the name of the user config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// WorkspaceFileName is the per-workspace config file.
	WorkspaceFileName = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment variable overrides (CITACI_TOOL_COMMAND).
	EnvPrefix = "CITACI"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the user configuration directory for citaci,
// honoring XDG_CONFIG_HOME when set.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// loadWithOptions loads configuration and reports the path it was read from
// ("" when only defaults and environment were used).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	path, err := ResolvePath(opts)
	if err != nil {
		return nil, "", err
	}

	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Use 'citaci config show' to see the effective configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check CITACI_* environment variables for empty or malformed values").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, path, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("workspace.exclude", defaults.Workspace.Exclude)
	v.SetDefault("tool.command", string(defaults.Tool.Command))
	v.SetDefault("tool.subcommands.build", string(defaults.Tool.Subcommands.Build))
	v.SetDefault("tool.subcommands.test", string(defaults.Tool.Subcommands.Test))
	v.SetDefault("tool.subcommands.lint", string(defaults.Tool.Subcommands.Lint))
	v.SetDefault("tool.lint_args", defaults.Tool.LintArgs)
	v.SetDefault("tool.warnings_env", string(defaults.Tool.WarningsEnv))
	v.SetDefault("coverage.artifact_dir", defaults.Coverage.ArtifactDir)
	v.SetDefault("coverage.output_dir", defaults.Coverage.OutputDir)
	v.SetDefault("coverage.instrument", string(defaults.Coverage.Instrument))
	v.SetDefault("coverage.upload", string(defaults.Coverage.Upload))
	v.SetDefault("coverage.env_file", defaults.Coverage.EnvFile)
	v.SetDefault("coverage.upload_attempts", defaults.Coverage.UploadAttempts)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// ResolvePath returns the config file Load would read, or "" when only
// defaults apply. An explicit path must exist; the workspace and user
// locations are optional.
func ResolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	if opts.WorkspaceDir != "" {
		local := filepath.Join(opts.WorkspaceDir, WorkspaceFileName)
		if fileExists(local) {
			return local, nil
		}
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		cfgDir = dir
	}
	user := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(user) {
		return user, nil
	}

	return "", nil
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GenerateCUE renders cfg in the config file format.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// citaci configuration\n\n")

	sb.WriteString("workspace: {\n")
	sb.WriteString("\texclude: " + cueList(cfg.Workspace.Exclude) + "\n")
	sb.WriteString("}\n\n")

	sb.WriteString("tool: {\n")
	fmt.Fprintf(&sb, "\tcommand: %q\n", cfg.Tool.Command)
	sb.WriteString("\tsubcommands: {\n")
	fmt.Fprintf(&sb, "\t\tbuild: %q\n", cfg.Tool.Subcommands.Build)
	fmt.Fprintf(&sb, "\t\ttest:  %q\n", cfg.Tool.Subcommands.Test)
	fmt.Fprintf(&sb, "\t\tlint:  %q\n", cfg.Tool.Subcommands.Lint)
	sb.WriteString("\t}\n")
	sb.WriteString("\tlint_args: " + cueList(cfg.Tool.LintArgs) + "\n")
	if cfg.Tool.WarningsEnv != "" {
		fmt.Fprintf(&sb, "\twarnings_env: %q\n", cfg.Tool.WarningsEnv)
	}
	sb.WriteString("}\n\n")

	sb.WriteString("coverage: {\n")
	fmt.Fprintf(&sb, "\tartifact_dir:    %q\n", cfg.Coverage.ArtifactDir)
	fmt.Fprintf(&sb, "\toutput_dir:      %q\n", cfg.Coverage.OutputDir)
	fmt.Fprintf(&sb, "\tinstrument:      %q\n", cfg.Coverage.Instrument)
	fmt.Fprintf(&sb, "\tupload:          %q\n", cfg.Coverage.Upload)
	fmt.Fprintf(&sb, "\tenv_file:        %q\n", cfg.Coverage.EnvFile)
	fmt.Fprintf(&sb, "\tupload_attempts: %d\n", cfg.Coverage.UploadAttempts)
	sb.WriteString("}\n\n")

	sb.WriteString("ui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %t\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
