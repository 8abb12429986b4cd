package report

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Reporter is responsible for reporting issues, fatal errors, and other kinds
// of messages to the user during a build.  The reporter respects the set log
// level and is synchronized: its methods can be safely called from multiple
// goroutines.
type Reporter struct {
	// The mutex used to synchronize display calls.
	m *sync.Mutex

	// The selected log level of the reporter.  This must be one of the
	// enumerated log levels below.
	logLevel int

	// Indicates whether or not an error has been reported.
	isErr bool

	// The structured logger used for internal build telemetry.
	logger *zap.Logger
}

// Enumeration of the different possible log levels.
const (
	LogLevelSilent  = iota // Displays no output.
	LogLevelError          // Displays only errors to the user.
	LogLevelWarn           // Displays warnings and errors to the user.
	LogLevelVerbose        // Displays all build messages to the user (default).
)

// rep is the global reporter instance.
var rep *Reporter

// InitReporter initializes the global reporter to the given log level.  If the
// reporter has already been initialized, this function does nothing.
func InitReporter(logLevel int) {
	if rep == nil {
		rep = &Reporter{
			m:        &sync.Mutex{},
			logLevel: logLevel,
			logger:   newZapLogger(logLevel),
		}
	}
}

// Logger returns the shared structured logger.  It is safe for concurrent use.
// If the reporter has not been initialized, a no-op logger is returned.
func Logger() *zap.Logger {
	if rep == nil {
		return zap.NewNop()
	}

	return rep.logger
}

// ShouldProceed indicates whether or not any errors have been reported that
// should prevent the build from being handed to code generation.
func ShouldProceed() bool {
	return rep == nil || !rep.isErr
}

// newZapLogger builds the structured logger backing the reporter.  The logger
// writes to standard error so it never interleaves with user-facing display
// output on standard out.
func newZapLogger(logLevel int) *zap.Logger {
	if logLevel == LogLevelSilent {
		return zap.NewNop()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	switch logLevel {
	case LogLevelError:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	case LogLevelWarn:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}

	return logger
}

// -----------------------------------------------------------------------------

// ReportIssue reports a single analysis issue to the user.  Issues below the
// current log level fail silently.
func ReportIssue(issue AnalysisIssue) {
	if rep == nil || rep.logLevel == LogLevelSilent {
		return
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	switch issue.Severity {
	case SeverityError:
		rep.isErr = true
		displayIssue(issue)
	case SeverityWarning:
		if rep.logLevel >= LogLevelWarn {
			displayIssue(issue)
		}
	default:
		if rep.logLevel >= LogLevelVerbose {
			displayIssue(issue)
		}
	}
}

// ReportStdError reports a non-fatal, standard Go error associated with the
// given file path.
func ReportStdError(path string, err error) {
	if rep == nil || rep.logLevel == LogLevelSilent {
		return
	}

	rep.m.Lock()
	defer rep.m.Unlock()

	rep.isErr = true
	displayStdError(path, err)
}

// ReportFatal reports a fatal error and exits the program.  These are expected
// errors that generally result from invalid configuration of some form:
// missing project file, missing front-end parser, unwritable cache, etc.
func ReportFatal(msg string, args ...interface{}) {
	if rep != nil && rep.logLevel > LogLevelSilent {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayFatal(fmt.Sprintf(msg, args...))
	}

	os.Exit(1)
}

// ReportICE reports an internal front-end error: a bug or violated invariant
// that was never supposed to happen.  These are always displayed regardless of
// log level.
func ReportICE(msg string, args ...interface{}) {
	if rep != nil {
		rep.m.Lock()
		defer rep.m.Unlock()
	}

	displayICE(fmt.Sprintf(msg, args...))
	os.Exit(-1)
}
