// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cihub/seelog"
)

var logger seelog.LoggerInterface = seelog.Disabled

const configTemplate = `
<seelog type="asynctimer" asyncinterval="5000000" minlevel="%s">
	<outputs formatid="all">
		%s
		%s
	</outputs>
	<formats>
		<format id="all" format="%%UTCDate %%UTCTime [%s] [%%LEV] %%Msg%%n" />
	</formats>
</seelog>`

// Init initializes the logging framework with the given level.
// If logDir is not empty a size-rolled logfile named after the running binary
// is written to that directory. If logToConsole is true, messages are also
// written to stdout. cmdPrefix must be exactly 5 characters long, it is used
// to tell apart the log lines of different binaries.
func Init(logLevel, cmdPrefix, logDir string, logToConsole bool) error {
	if _, found := seelog.LogLevelFromString(logLevel); !found {
		return fmt.Errorf("log: level '%s' is invalid", logLevel)
	}
	if len(cmdPrefix) != 5 {
		return fmt.Errorf("log: len(cmdPrefix) must be 5: \"%s\"", cmdPrefix)
	}
	var console, file string
	if logToConsole {
		console = "<console />"
	}
	if logDir != "" {
		name := filepath.Base(os.Args[0]) + ".log"
		file = fmt.Sprintf("<rollingfile type=\"size\" filename=\"%s\" maxsize=\"10485760\" maxrolls=\"3\" />",
			filepath.Join(logDir, name))
	}
	config := fmt.Sprintf(configTemplate, logLevel, console, file, cmdPrefix)
	newLogger, err := seelog.LoggerFromConfigAsString(config)
	if err != nil {
		return err
	}
	newLogger.SetAdditionalStackDepth(1)
	UseLogger(newLogger)
	Infof("%s started (%s %s %s/%s)", filepath.Base(os.Args[0]),
		runtime.Compiler, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}

// Flush flushes all pending messages of the logger.
func Flush() {
	logger.Flush()
}

// Critical logs with level Critical and returns an error.
// If v consists of a single error, that error is logged and returned as-is.
func Critical(v ...interface{}) error {
	if err, ok := singleError(v); ok {
		logger.Critical(err)
		return err
	}
	return logger.Critical(v...)
}

// Criticalf logs a formatted message with level Critical.
func Criticalf(format string, params ...interface{}) error {
	return logger.Criticalf(format, params...)
}

// Error logs with level Error and returns an error.
// If v consists of a single error, that error is logged and returned as-is,
// which keeps sentinel errors comparable with errors.Is.
func Error(v ...interface{}) error {
	if err, ok := singleError(v); ok {
		logger.Error(err)
		return err
	}
	return logger.Error(v...)
}

// Errorf logs a formatted message with level Error and returns it as error.
func Errorf(format string, params ...interface{}) error {
	return logger.Errorf(format, params...)
}

// Warn logs with level Warn and returns an error.
func Warn(v ...interface{}) error {
	if err, ok := singleError(v); ok {
		logger.Warn(err)
		return err
	}
	return logger.Warn(v...)
}

// Warnf logs a formatted message with level Warn and returns it as error.
func Warnf(format string, params ...interface{}) error {
	return logger.Warnf(format, params...)
}

// Info logs with level Info.
func Info(v ...interface{}) {
	logger.Info(v...)
}

// Infof logs a formatted message with level Info.
func Infof(format string, params ...interface{}) {
	logger.Infof(format, params...)
}

// Debug logs with level Debug.
func Debug(v ...interface{}) {
	logger.Debug(v...)
}

// Debugf logs a formatted message with level Debug.
func Debugf(format string, params ...interface{}) {
	logger.Debugf(format, params...)
}

// Trace logs with level Trace.
func Trace(v ...interface{}) {
	logger.Trace(v...)
}

// Tracef logs a formatted message with level Trace.
func Tracef(format string, params ...interface{}) {
	logger.Tracef(format, params...)
}

// UseLogger replaces the package logger.
func UseLogger(newLogger seelog.LoggerInterface) {
	logger = newLogger
}

// SetLogWriter logs everything (level Trace and up) to writer.
func SetLogWriter(writer io.Writer) error {
	if writer == nil {
		return errors.New("log: nil writer")
	}
	newLogger, err := seelog.LoggerFromWriterWithMinLevel(writer, seelog.TraceLvl)
	if err != nil {
		return err
	}
	UseLogger(newLogger)
	return nil
}

func singleError(v []interface{}) (error, bool) {
	if len(v) != 1 {
		return nil, false
	}
	err, ok := v[0].(error)
	return err, ok
}
