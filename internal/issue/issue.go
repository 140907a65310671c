// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	InvalidSelectionId Id = iota + 1
	ModuleBuildFailedId
	InventoryMismatchId
	CoverageUploadFailedId
	ConfigLoadFailedId
	CatalogInvalidId
	BuildToolNotFoundId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render returns the issue as terminal-formatted markdown.
// stylePath is a glamour style name ("dark", "light", "notty") or a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- " + string(link) + "\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- " + string(link) + "\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	invalidSelectionIssue = &Issue{
		id: InvalidSelectionId,
		mdMsg: `
# Unknown action or algorithm

The first argument must be an action and the optional second and third
arguments select the hash and crypto algorithms.

## Accepted values
| argument | values |
|----------|--------|
| action   | ` + "`build`, `test`, `clippy`" + ` |
| hash     | ` + "`sha3`, `blake2b`, `sm3` (the `hash` suffix is optional)" + ` |
| crypto   | ` + "`secp256k1`, `ed25519`, `sm2`" + ` |

## Things you can try
~~~
$ citaci test sha3 secp256k1
$ citaci plan clippy
~~~`,
	}

	moduleBuildFailedIssue = &Issue{
		id: ModuleBuildFailedId,
		mdMsg: `
# A module failed to build

The run stopped at the first failing module. Modules later in the plan
were not attempted.

## Things you can try
- Re-run the single module by hand from its directory, e.g.
~~~
$ cd util && cargo test
~~~
- Build and test runs treat compiler warnings as errors
  (` + "`RUSTFLAGS=-D warnings`" + `). Fix the warning or change ` + "`tool.warnings_env`" + `.
- Use ` + "`citaci plan <action>`" + ` to see every invocation in order.`,
		extLinks: []HttpLink{"https://doc.rust-lang.org/cargo/reference/features.html"},
	}

	inventoryMismatchIssue = &Issue{
		id: InventoryMismatchId,
		mdMsg: `
# Workspace and module catalog disagree

A directory in the workspace root is not covered by the module catalog, or a
catalog module has no directory. Every module must be built exactly once per run.

## Things you can try
- Add the new module to the catalog with its dependencies and group.
- If the directory is build output, add it to ` + "`workspace.exclude`" + ` in citaci.cue.
- Run ` + "`citaci verify`" + ` to list the differences.`,
	}

	coverageUploadFailedIssue = &Issue{
		id: CoverageUploadFailedId,
		mdMsg: `
# Coverage upload failed

Tests passed, so the run still succeeds. The coverage report was not published.

## Things you can try
- Check that ` + "`CODECOV_TOKEN`" + ` is set in the environment or the ` + "`.env`" + ` file.
- Check that the instrumentation tool (kcov by default) is installed.
- Raise ` + "`coverage.upload_attempts`" + ` for flaky networks.`,
		extLinks: []HttpLink{"https://github.com/SimonKagstrom/kcov"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

The configuration file could not be parsed or did not match the schema.

## Things you can try
- Check the CUE syntax of citaci.cue.
- Print the effective configuration:
~~~
$ citaci config show
~~~
- Remove the file to fall back to defaults.`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	catalogInvalidIssue = &Issue{
		id: CatalogInvalidId,
		mdMsg: `
# The module catalog is inconsistent

A module is listed before one of its dependencies, a dependency is not in
the catalog, or the dependency graph has a cycle.

## Things you can try
- Move the module after everything it depends on.
- Run ` + "`citaci verify`" + ` after editing the catalog.`,
	}

	buildToolNotFoundIssue = &Issue{
		id: BuildToolNotFoundId,
		mdMsg: `
# Build tool not found

The configured build tool could not be started.

## Things you can try
- Install the Rust toolchain:
~~~
$ curl https://sh.rustup.rs -sSf | sh
~~~
- Point ` + "`tool.command`" + ` at the right binary in citaci.cue.`,
		extLinks: []HttpLink{"https://rustup.rs"},
	}

	issues = map[Id]*Issue{
		invalidSelectionIssue.Id():     invalidSelectionIssue,
		moduleBuildFailedIssue.Id():    moduleBuildFailedIssue,
		inventoryMismatchIssue.Id():    inventoryMismatchIssue,
		coverageUploadFailedIssue.Id(): coverageUploadFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		catalogInvalidIssue.Id():       catalogInvalidIssue,
		buildToolNotFoundIssue.Id():    buildToolNotFoundIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
