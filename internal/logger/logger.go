package logger

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"regexp"
	"time"
)

type LogLevel string

const (
	InfoLevel  LogLevel = "INFO"
	ErrorLevel LogLevel = "ERROR"
	DebugLevel LogLevel = "DEBUG"
)

// LogEntry describes the structure of a log message
type LogEntry struct {
	Time    string   `json:"time"`
	Level   LogLevel `json:"level"`
	Module  string   `json:"module,omitempty"`
	Message string   `json:"message"`
	Error   string   `json:"error,omitempty"`
}

// Logger writes one JSON object per line.
type Logger struct {
	out *log.Logger
	w   io.Writer
}

// New creates a Logger writing to stdout.
func New() *Logger {
	return NewWithWriter(os.Stdout)
}

func NewWithWriter(w io.Writer) *Logger {
	return &Logger{
		out: log.New(w, "", 0),
		w:   w,
	}
}

// Writer exposes the underlying output so request logs share it.
func (l *Logger) Writer() io.Writer {
	return l.w
}

var (
	emailRegex    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	passwordRegex = regexp.MustCompile(`(?i)\bpassword\s*=\s*\S+`)
	dsnRegex      = regexp.MustCompile(`://[^:/@\s]+:[^@\s]+@`)
)

// Anonymize replaces sensitive information in logs (emails, passwords, DSN credentials)
func Anonymize(s string) string {
	s = emailRegex.ReplaceAllString(s, "[REDACTED_EMAIL]")
	s = passwordRegex.ReplaceAllString(s, "password=[REDACTED]")
	s = dsnRegex.ReplaceAllString(s, "://[REDACTED]@")
	return s
}

// Format renders one redacted JSON log line without the trailing newline.
func Format(module string, level LogLevel, msg string, err error) string {
	entry := LogEntry{
		Time:    time.Now().Format(time.RFC3339),
		Level:   level,
		Module:  module,
		Message: Anonymize(msg),
	}
	if err != nil {
		entry.Error = Anonymize(err.Error())
	}
	data, _ := json.Marshal(entry)
	return string(data)
}

func (l *Logger) log(module string, level LogLevel, msg string, err error) {
	l.out.Println(Format(module, level, msg, err))
}

func (l *Logger) Info(module, msg string) {
	l.log(module, InfoLevel, msg, nil)
}

func (l *Logger) Debug(module, msg string) {
	l.log(module, DebugLevel, msg, nil)
}

func (l *Logger) Error(module, msg string, err error) {
	l.log(module, ErrorLevel, msg, err)
}
