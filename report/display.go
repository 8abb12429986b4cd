package report

import (
	"fmt"

	"github.com/pterm/pterm"
)

// displayIssue displays a single analysis issue.
func displayIssue(issue AnalysisIssue) {
	prefix := fmt.Sprintf(
		"%s:%d:%d",
		issue.Loc.File, issue.Loc.Line+1, issue.Loc.Col+1,
	)
	if issue.Loc.File == "" {
		prefix = "<project>"
	}

	switch issue.Severity {
	case SeverityError:
		pterm.Error.Printfln("%s: %s", prefix, issue.Message)
	case SeverityWarning:
		pterm.Warning.Printfln("%s: %s", prefix, issue.Message)
	default:
		pterm.Info.Printfln("%s: %s: %s", prefix, issue.Severity, issue.Message)
	}
}

// displayStdError displays a standard Go error associated with a file.
func displayStdError(path string, err error) {
	pterm.Error.Printfln("%s: %s", path, err)
}

// displayFatal displays a fatal error message.
func displayFatal(msg string) {
	pterm.Error.Prefix = pterm.Prefix{Text: "FATAL", Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack)}
	pterm.Error.Printfln("%s", msg)
}

// displayICE displays an internal front-end error message.
func displayICE(msg string) {
	pterm.Error.Printfln("internal error: %s", msg)
	pterm.Error.Println("this error was not supposed to happen: please open an issue")
}

// -----------------------------------------------------------------------------

// DisplayBuildHeader displays the pre-build header: information about the
// front end's current configuration.  It is only shown at the verbose log
// level.
func DisplayBuildHeader(project string, caching bool) {
	if rep == nil || rep.logLevel < LogLevelVerbose {
		return
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	pterm.DefaultSection.Printfln("fern: analyzing %s (caching: %v)", project, caching)
}

// DisplayProgress displays one build progress observation.  It is only shown
// at the verbose log level.
func DisplayProgress(phase string, percent float64, message string) {
	if rep == nil || rep.logLevel < LogLevelVerbose {
		return
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	pterm.Info.Printfln("[%3.0f%%] %s: %s", percent, phase, message)
}

// DisplayBuildFinished displays the concluding build message: whether the
// project is ready for code generation and how many issues were found.
func DisplayBuildFinished(ready bool, files, issues int) {
	if rep == nil || rep.logLevel < LogLevelVerbose {
		return
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	if ready {
		pterm.Success.Printfln("analyzed %d files, %d issues: ready for code generation", files, issues)
	} else {
		pterm.Error.Printfln("analyzed %d files, %d issues: not ready for code generation", files, issues)
	}
}
