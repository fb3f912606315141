package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Setup configures the shared logrus logger for JSON output and returns it.
func Setup() *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyLevel: "loglevel",
		},
	})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)
	return logger
}
