// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"errors"
	"strings"

	"github.com/classicalliu/cita-common/internal/selection"
)

const (
	// ActionBuild compiles every module.
	ActionBuild Action = iota + 1
	// ActionTest runs every module's tests.
	ActionTest
	// ActionLint runs the linter on every module.
	ActionLint
)

// ErrUnknownAction is wrapped by the ConfigError returned for unknown action tokens.
var ErrUnknownAction = errors.New("unknown action")

type (
	// Action is the closed set of things the orchestrator can do to the workspace.
	Action int

	actionInfo struct {
		name  string
		token string
		// subcommand is the build tool subcommand issued for this action.
		subcommand string
		// strict enables warnings-as-errors for the duration of the run.
		strict bool
	}
)

var actions = map[Action]actionInfo{
	ActionBuild: {name: "build", token: "build", subcommand: "build", strict: true},
	ActionTest:  {name: "test", token: "test", subcommand: "test", strict: true},
	ActionLint:  {name: "lint", token: "clippy", subcommand: "clippy"},
}

// Actions returns every action in a stable order.
func Actions() []Action {
	return []Action{ActionBuild, ActionTest, ActionLint}
}

// ParseAction maps a command-line token to an Action. The lint action is
// exposed as "clippy"; "lint" is accepted as an alias.
func ParseAction(token string) (Action, error) {
	token = strings.TrimSpace(token)
	for _, a := range Actions() {
		info := actions[a]
		if token == info.token || token == info.name {
			return a, nil
		}
	}
	return 0, &selection.ConfigError{Option: "action", Value: token, Err: ErrUnknownAction}
}

// IsValid reports whether a is one of the declared actions.
func (a Action) IsValid() bool {
	_, ok := actions[a]
	return ok
}

// String returns the action name ("build", "test", "lint").
func (a Action) String() string {
	if info, ok := actions[a]; ok {
		return info.name
	}
	return "unknown"
}

// Token returns the command-line spelling of the action.
func (a Action) Token() string {
	return actions[a].token
}

// Subcommand returns the default build tool subcommand for the action.
func (a Action) Subcommand() string {
	return actions[a].subcommand
}

// Strict reports whether compiler warnings are promoted to errors for this action.
func (a Action) Strict() bool {
	return actions[a].strict
}
