package errs

import (
	"github.com/pkg/errors"
	logging "github.com/sirupsen/logrus"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Handle logs err together with its stack trace when one is attached.
// With stop set it panics after logging, which is only wanted at the CLI entry.
func Handle(err error, stop bool) {
	if err == nil {
		return
	}

	var tracer stackTracer
	if !errors.As(err, &tracer) {
		if stop {
			logging.Panic(err)
		}
		logging.Error(err)
		return
	}

	st := tracer.StackTrace()
	if stop {
		logging.Panicf("%v\n%+v", err, st)
	}
	logging.Errorf("%v\n%+v", err, st)
}
