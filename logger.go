package main

import (
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var log = logrus.New()

func logInit() {
	log.Formatter = &prefixed.TextFormatter{FullTimestamp: true}
	log.Level = logrus.InfoLevel
}

func setLogLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown log level %q, staying on %s", level, log.Level)
		return
	}
	log.Level = parsed
}
