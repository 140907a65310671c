// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidCommandLine is the sentinel wrapped by InvalidCommandLineError.
	ErrInvalidCommandLine = errors.New("invalid command line")
	// ErrInvalidEnvAssignment is the sentinel wrapped by InvalidEnvAssignmentError.
	ErrInvalidEnvAssignment = errors.New("invalid environment assignment")
	// ErrInvalidConfig is the sentinel wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// CommandLine is an external command with its leading arguments, split
	// with shell quoting rules when used. It must not be blank.
	CommandLine string

	// InvalidCommandLineError is returned when a CommandLine is blank.
	InvalidCommandLineError struct {
		Field string
		Value CommandLine
	}

	// EnvAssignment is a single KEY=VALUE pair. The zero value means "none".
	EnvAssignment string

	// InvalidEnvAssignmentError is returned when an EnvAssignment has no key.
	InvalidEnvAssignmentError struct {
		Value EnvAssignment
	}

	// InvalidConfigError collects field-level validation errors.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the citaci configuration.
	Config struct {
		Workspace WorkspaceConfig `json:"workspace" mapstructure:"workspace"`
		Tool      ToolConfig      `json:"tool" mapstructure:"tool"`
		Coverage  CoverageConfig  `json:"coverage" mapstructure:"coverage"`
		UI        UIConfig        `json:"ui" mapstructure:"ui"`
	}

	// WorkspaceConfig describes the workspace layout.
	WorkspaceConfig struct {
		// Exclude lists top-level build output directories that are not modules.
		Exclude []string `json:"exclude" mapstructure:"exclude"`
	}

	// ToolConfig configures the external build tool.
	ToolConfig struct {
		Command     CommandLine       `json:"command" mapstructure:"command"`
		Subcommands SubcommandsConfig `json:"subcommands" mapstructure:"subcommands"`
		// LintArgs are appended to every lint invocation.
		LintArgs []string `json:"lint_args" mapstructure:"lint_args"`
		// WarningsEnv promotes compiler warnings to errors for build and test.
		WarningsEnv EnvAssignment `json:"warnings_env" mapstructure:"warnings_env"`
	}

	// SubcommandsConfig maps each action to the tool subcommand it issues.
	SubcommandsConfig struct {
		Build CommandLine `json:"build" mapstructure:"build"`
		Test  CommandLine `json:"test" mapstructure:"test"`
		Lint  CommandLine `json:"lint" mapstructure:"lint"`
	}

	// CoverageConfig configures the optional coverage upload after tests.
	CoverageConfig struct {
		ArtifactDir    string      `json:"artifact_dir" mapstructure:"artifact_dir"`
		OutputDir      string      `json:"output_dir" mapstructure:"output_dir"`
		Instrument     CommandLine `json:"instrument" mapstructure:"instrument"`
		Upload         CommandLine `json:"upload" mapstructure:"upload"`
		EnvFile        string      `json:"env_file" mapstructure:"env_file"`
		UploadAttempts int         `json:"upload_attempts" mapstructure:"upload_attempts"`
	}

	// UIConfig configures output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface for InvalidCommandLineError.
func (e *InvalidCommandLineError) Error() string {
	return fmt.Sprintf("%s: command line %q is blank", e.Field, e.Value)
}

// Unwrap returns ErrInvalidCommandLine for errors.Is() compatibility.
func (e *InvalidCommandLineError) Unwrap() error { return ErrInvalidCommandLine }

func (c CommandLine) validate(field string) []error {
	if strings.TrimSpace(string(c)) == "" {
		return []error{&InvalidCommandLineError{Field: field, Value: c}}
	}
	return nil
}

// String returns the raw command line.
func (c CommandLine) String() string { return string(c) }

// Error implements the error interface for InvalidEnvAssignmentError.
func (e *InvalidEnvAssignmentError) Error() string {
	return fmt.Sprintf("invalid environment assignment %q (want KEY=VALUE)", e.Value)
}

// Unwrap returns ErrInvalidEnvAssignment for errors.Is() compatibility.
func (e *InvalidEnvAssignmentError) Unwrap() error { return ErrInvalidEnvAssignment }

// IsValid returns whether the assignment is empty or has a non-empty key.
func (a EnvAssignment) IsValid() (bool, []error) {
	if a == "" {
		return true, nil
	}
	key, _, ok := strings.Cut(string(a), "=")
	if !ok || strings.TrimSpace(key) == "" || strings.ContainsAny(key, " \t") {
		return false, []error{&InvalidEnvAssignmentError{Value: a}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// IsValid validates every field of the configuration.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	errs = append(errs, c.Tool.Command.validate("tool.command")...)
	errs = append(errs, c.Tool.Subcommands.Build.validate("tool.subcommands.build")...)
	errs = append(errs, c.Tool.Subcommands.Test.validate("tool.subcommands.test")...)
	errs = append(errs, c.Tool.Subcommands.Lint.validate("tool.subcommands.lint")...)
	if valid, fieldErrs := c.Tool.WarningsEnv.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	errs = append(errs, c.Coverage.Instrument.validate("coverage.instrument")...)
	errs = append(errs, c.Coverage.Upload.validate("coverage.upload")...)
	if c.Coverage.UploadAttempts < 1 {
		errs = append(errs, fmt.Errorf("coverage.upload_attempts: must be at least 1, got %d", c.Coverage.UploadAttempts))
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Exclude: []string{"target"},
		},
		Tool: ToolConfig{
			Command: "cargo",
			Subcommands: SubcommandsConfig{
				Build: "build",
				Test:  "test",
				Lint:  "clippy",
			},
			LintArgs:    []string{},
			WarningsEnv: "RUSTFLAGS=-D warnings",
		},
		Coverage: CoverageConfig{
			ArtifactDir:    "target/debug",
			OutputDir:      "target/cov",
			Instrument:     "kcov --exclude-pattern=/.cargo,/usr/lib --verify",
			Upload:         "codecov --dir target/cov",
			EnvFile:        ".env",
			UploadAttempts: 1,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}
