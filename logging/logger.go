package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logrus instance.
var Logger = logrus.New()
var once sync.Once

// CustomFormatter renders entries as a single comma separated line.
type CustomFormatter struct {
	SystemName string
	Location   *time.Location
}

// Format implements logrus.Formatter.
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	localTime := entry.Time.In(loc)

	b.WriteString(fmt.Sprintf("Date: %s, Time: %s, ", localTime.Format("2006-01-02"), localTime.Format("15:04:05")))
	b.WriteString(fmt.Sprintf("Event Source: %s, ", f.SystemName))
	b.WriteString(fmt.Sprintf("Event Type: %s, ", strings.ToUpper(entry.Level.String())))
	b.WriteString(fmt.Sprintf("Event ID: %s, ", uuid.New().String()))
	b.WriteString(fmt.Sprintf("Message: %s", entry.Message))

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf(", %s=%v", k, entry.Data[k]))
		}
	}

	if entry.HasCaller() {
		b.WriteString(fmt.Sprintf(", Location: %s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Options controls InitLogger.
type Options struct {
	SystemName string
	// File is the rotated log file; empty logs to stderr only.
	File  string
	Level string
}

// InitLogger configures the global logger. Only the first call has any effect.
func InitLogger(opts Options) {
	once.Do(func() {
		configure(Logger, opts)
		Logger.Infof("Event ID: LOGGER_INITIALIZED, Description: Logger initialized for %s", opts.SystemName)
	})
}

func configure(l *logrus.Logger, opts Options) {
	var out io.Writer = os.Stderr
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "" {
			if err := os.MkdirAll(dir, 0700); err != nil {
				logrus.Fatalf("Event ID: LOG_DIR_CREATE_FAILED, Description: Failed to create log directory: %v", err)
			}
		}
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	l.SetOutput(out)

	name := opts.SystemName
	if name == "" {
		name = "taskcanvas"
	}
	l.SetFormatter(&CustomFormatter{SystemName: name})

	level := logrus.InfoLevel
	if opts.Level != "" {
		if parsed, err := logrus.ParseLevel(opts.Level); err == nil {
			level = parsed
		}
	}
	l.SetLevel(level)
	l.SetReportCaller(true)
}
