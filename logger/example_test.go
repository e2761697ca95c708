package logger

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

func ExampleLogger() {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	ctx := WithLogger(context.Background(), New(l))

	// Consecutive arguments after the message are treated as key value pairs.
	Info(ctx, "message", "key", "value")

	// Output:
	// level=info msg=message key=value
}
