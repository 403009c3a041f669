package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestCustomFormatterLine(t *testing.T) {
	f := &CustomFormatter{SystemName: "taskcanvas-test"}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "Event ID: TASK_NOT_FOUND, Description: missing",
		Data:    logrus.Fields{"userId": "u1", "method": "GET"},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	line := string(out)
	for _, want := range []string{
		"Date: 2024-05-06, Time: 07:08:09, ",
		"Event Source: taskcanvas-test, ",
		"Event Type: WARNING, ",
		"Message: Event ID: TASK_NOT_FOUND, Description: missing",
		", method=GET, userId=u1",
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("expected trailing newline, got %q", line)
	}
}

func TestConfigureLevel(t *testing.T) {
	l := logrus.New()
	configure(l, Options{SystemName: "x", Level: "debug"})
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", l.GetLevel())
	}

	l = logrus.New()
	configure(l, Options{Level: "nonsense"})
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info fallback, got %s", l.GetLevel())
	}

	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.Info("hello")
	if !strings.Contains(buf.String(), "Event Source: taskcanvas, ") {
		t.Fatalf("expected default system name, got %q", buf.String())
	}
}
