package remote

import "github.com/johanforsgren/codenvy-remotes/internal/logger"

// Reporter receives the diagnostics of operations that do not return their
// error: registry mutations, login and skipped remotes during aggregation.
type Reporter interface {
	Report(err error)
}

type ReporterFunc func(err error)

func (f ReporterFunc) Report(err error) {
	f(err)
}

type logReporter struct{}

func (logReporter) Report(err error) {
	logger.LogWarn("%v", err)
}
