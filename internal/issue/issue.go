// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	ConfigLoadFailedId Id = iota + 1
	ProjectNotFoundId
	PackagerMissingId
	DependencyInstallFailedId
	PackagingFailedId
	StagingUnavailableId
	CleanupFailedId
	WatchFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a catalog entry with Markdown help text for one failure class.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The extbuild configuration could not be read or did not match the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ extbuild config show
~~~
- Check the CUE syntax of extbuild.cue
- Write a fresh default file and compare:
~~~
$ extbuild config init
~~~`,
	}

	projectNotFoundIssue = &Issue{
		id: ProjectNotFoundId,
		mdMsg: `
# Project directory not found!

The configured project root does not exist or is not a directory.

## Things you can try:
- Set ` + "`project.root`" + ` in extbuild.cue to an existing directory
- Run extbuild from inside the extension directory`,
	}

	packagerMissingIssue = &Issue{
		id: PackagerMissingId,
		mdMsg: `
# Packaging tool not available!

The packaging executable was not found in the tool directory and could not be installed.

## Things you can try:
- Check that the package manager is on your PATH:
~~~
$ npm --version
~~~
- Install the packaging tool manually into the tool directory:
~~~
$ npm install vsce
~~~`,
	}

	dependencyInstallFailedIssue = &Issue{
		id: DependencyInstallFailedId,
		mdMsg: `
# Dependency installation failed!

The package manager could not install the extension's runtime dependencies.

## Things you can try:
- Run the install manually in the project directory to see the full output:
~~~
$ npm install
~~~
- Check package.json for typos or unavailable versions
- Remove node_modules and retry:
~~~
$ extbuild clean && extbuild build
~~~`,
	}

	packagingFailedIssue = &Issue{
		id: PackagingFailedId,
		mdMsg: `
# Packaging failed!

The packaging executable exited with a non-zero status. Any partial output was left in place.

## Things you can try:
- Run the packaging tool manually to see its diagnostics:
~~~
$ npx vsce package
~~~
- Make sure package.json declares a publisher, name and version`,
	}

	stagingUnavailableIssue = &Issue{
		id: StagingUnavailableId,
		mdMsg: `
# Prebuilt artifact not available

The upstream artifact to be staged was not found. The build continued without it.

## Things you can try:
- Build the upstream artifact first
- Check the glob configured under ` + "`staging.artifacts`",
	}

	cleanupFailedIssue = &Issue{
		id: CleanupFailedId,
		mdMsg: `
# Clean failed!

A generated file or directory could not be removed. Later staleness checks may be wrong until it is gone.

## Things you can try:
- Check the permissions of the path reported above
- Close editors or processes that hold files in node_modules open`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# Watching the project failed!

## Things you can try:
- Raise the inotify watch limit:
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~
- Narrow ` + "`watch.patterns`" + ` or extend ` + "`watch.ignore`",
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		projectNotFoundIssue.Id():         projectNotFoundIssue,
		packagerMissingIssue.Id():         packagerMissingIssue,
		dependencyInstallFailedIssue.Id(): dependencyInstallFailedIssue,
		packagingFailedIssue.Id():         packagingFailedIssue,
		stagingUnavailableIssue.Id():      stagingUnavailableIssue,
		cleanupFailedIssue.Id():           cleanupFailedIssue,
		watchFailedIssue.Id():             watchFailedIssue,
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the Markdown message with the given glamour style.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range i.docLinks {
			md.WriteString("- [" + string(link) + "](" + string(link) + ")\n")
		}
	}
	return render(md.String(), stylePath)
}

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
