package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger. It is usable before Init; Init only
// changes its level and outputs.
var Logger = logrus.New()

var once sync.Once

// Init configures Logger. When file is non-empty logs are also written to a
// rotating file.
func Init(level, file string) {
	once.Do(func() {
		Logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})

		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		Logger.SetLevel(lvl)

		var out io.Writer = os.Stdout
		if file != "" {
			out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   file,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			})
		}
		Logger.SetOutput(out)

		Logger.WithFields(logrus.Fields{"level": lvl.String(), "file": file}).Info("[logging] initialized")
	})
}
