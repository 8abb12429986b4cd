package report

import "fmt"

// Severity classifies how serious an analysis issue is.  Only issues of
// severity error prevent a build from being handed to code generation.
type Severity int

// Enumeration of issue severities in decreasing order of seriousness.
const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "hint"
	}
}

// AnalysisIssue is a diagnostic produced by an analysis pass.  Issues are
// data, not control flow: passes collect them on the file being analyzed and
// never abort because of them.
type AnalysisIssue struct {
	// The severity of the issue.
	Severity Severity

	// The human-readable issue message.
	Message string

	// Where the issue occurs.
	Loc SourceLoc
}

// Errorf creates a new error-severity issue at the given location.
func Errorf(loc SourceLoc, msg string, args ...interface{}) AnalysisIssue {
	return AnalysisIssue{Severity: SeverityError, Message: fmt.Sprintf(msg, args...), Loc: loc}
}

// Warnf creates a new warning-severity issue at the given location.
func Warnf(loc SourceLoc, msg string, args ...interface{}) AnalysisIssue {
	return AnalysisIssue{Severity: SeverityWarning, Message: fmt.Sprintf(msg, args...), Loc: loc}
}

// Infof creates a new info-severity issue at the given location.
func Infof(loc SourceLoc, msg string, args ...interface{}) AnalysisIssue {
	return AnalysisIssue{Severity: SeverityInfo, Message: fmt.Sprintf(msg, args...), Loc: loc}
}

// Hintf creates a new hint-severity issue at the given location.
func Hintf(loc SourceLoc, msg string, args ...interface{}) AnalysisIssue {
	return AnalysisIssue{Severity: SeverityHint, Message: fmt.Sprintf(msg, args...), Loc: loc}
}

// CountErrors returns the number of error-severity issues in the given list.
func CountErrors(issues []AnalysisIssue) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			n++
		}
	}

	return n
}
