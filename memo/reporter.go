package memo

import (
	"errors"

	log "github.com/sirupsen/logrus"
)

// Reporter receives failures that cannot be recovered inside the controller.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(err error)

func (f ReporterFunc) Report(err error) { f(err) }

// LogReporter logs escalated failures.
type LogReporter struct {
	Logger *log.Logger
}

func (r LogReporter) Report(err error) {
	logger := r.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	fields := log.Fields{"kind": "transport"}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		fields["op"] = opErr.Op
		if IsNotFound(err) {
			fields["kind"] = "not_found"
		}
	}
	logger.WithFields(fields).WithError(err).Error("memo operation failed")
}
