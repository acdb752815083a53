package utils

import (
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	. "github.com/studycircle/feedmux/utils/flag"
	Logger "github.com/studycircle/feedmux/utils/log"
)

// StartTracer starts the Datadog tracer for this process.
func StartTracer() {
	env := "development"
	if !IsDevelopment {
		env = "production"
	}

	tracer.Start(
		tracer.WithService(ServiceName),
		tracer.WithEnv(env),
	)

	Logger.Log.Info("tracer initialized")
}

// CloseTracer stops the tracer, OK to be closed multiple times
func CloseTracer() {
	tracer.Stop()
}
