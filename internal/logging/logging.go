package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Where terminal messages are written.
var Output io.Writer = color.Output

var (
	lock       sync.Mutex
	level      = zerolog.InfoLevel
	logFile    *os.File
	fileLogger zerolog.Logger
)

// Set the lowest level that gets printed or logged.
func SetLevel(lvl zerolog.Level) {
	lock.Lock()
	defer lock.Unlock()

	level = lvl
}

// Open a new run log file `<dir>/<unix millis>.log`, creating `dir` if needed. Every following message is also appended to it as a JSON line. Returns the file path.
func OpenFile(dir string) (string, error) {
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", eris.Wrapf(err, "failed to create log directory '%s'", dir)
	}

	path := filepath.Join(dir, strconv.FormatInt(time.Now().UnixMilli(), 10)+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return "", eris.Wrapf(err, "failed to open log file '%s'", path)
	}

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
	fileLogger = zerolog.New(file).With().Timestamp().Logger()

	return path, nil
}

// Close the run log file, if one is open.
func Close() error {
	lock.Lock()
	defer lock.Unlock()

	if logFile == nil {
		return nil
	}

	err := logFile.Close()
	logFile = nil
	return err
}

func emit(lvl zerolog.Level, header string, msg string, args []interface{}) {
	lock.Lock()
	defer lock.Unlock()

	if lvl < level {
		return
	}

	errChain := fmt.Errorf(msg, args...)
	fmt.Fprintf(Output, "%s %s\n", header, errChain.Error())

	if logFile != nil {
		fileLogger.WithLevel(lvl).Msg(errChain.Error())
	}
}

// Output a debug message. Hidden unless the level is set to debug.
func Debug(msg string, args ...interface{}) {
	emit(zerolog.DebugLevel, color.BlueString("Debug:"), msg, args)
}

// Output an informational message.
func Info(msg string, args ...interface{}) {
	emit(zerolog.InfoLevel, color.CyanString("Info:"), msg, args)
}

// Output a success message.
func Success(msg string, args ...interface{}) {
	emit(zerolog.InfoLevel, color.GreenString("Done:"), msg, args)
}

// Output a warning message.
func Warn(msg string, args ...interface{}) {
	emit(zerolog.WarnLevel, color.YellowString("Warning:"), msg, args)
}

// Output an error message.
func Err(msg string, args ...interface{}) {
	emit(zerolog.ErrorLevel, color.RedString("Error:"), msg, args)
}
