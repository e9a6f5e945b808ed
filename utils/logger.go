/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

type Logger = logrus.Logger

const timestampFormat = "2006-01-02 15:04:05.000"

var (
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
	defaultLevel     = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "info"))
	defaultFormat    = normalizeFormat(EnvDefaultString("LOG_FORMAT", "text"))
	defaultOutput    io.Writer = os.Stdout
)

// ParseLogLevel maps a level name to a logrus level; unknown names are info.
func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

func normalizeFormat(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return "json"
	}
	return "text"
}

// ConfigureLogLevel sets the level of every registered logger and of the
// loggers created afterwards.
func ConfigureLogLevel(levelStr string) {
	lvl := ParseLogLevel(levelStr)
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	defaultLevel = lvl
	for _, lg := range loggerRegistry {
		lg.SetLevel(lvl)
	}
}

// ConfigureLogFormat switches every logger between the console ("text")
// and the JSON formatter.
func ConfigureLogFormat(format string) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	defaultFormat = normalizeFormat(format)
	for name, lg := range loggerRegistry {
		lg.SetFormatter(newFormatter(name, defaultFormat))
	}
}

// ConfigureOutput redirects every logger to w.
func ConfigureOutput(w io.Writer) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	defaultOutput = w
	for _, lg := range loggerRegistry {
		lg.SetOutput(w)
	}
}

// SetLoggerLevel changes the level of the named logger only.
func SetLoggerLevel(name string, lvlStr string) bool {
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	lg.SetLevel(ParseLogLevel(lvlStr))
	return true
}

// NewLogger returns the logger registered under name, creating it with the
// current level, format and output on first use.
func NewLogger(name string) *logrus.Logger {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	if l, ok := loggerRegistry[name]; ok {
		return l
	}

	l := logrus.New()
	l.SetOutput(defaultOutput)
	l.SetLevel(defaultLevel)
	l.SetReportCaller(true)
	l.SetFormatter(newFormatter(name, defaultFormat))
	loggerRegistry[name] = l
	return l
}

func newFormatter(name, format string) logrus.Formatter {
	if format == "json" {
		return &JSONLogFormatter{LoggerName: name}
	}
	return &Log4jColorFormatter{LoggerName: name, NameWidth: 10}
}

// Log4jColorFormatter renders
//
//	2025-01-02 15:04:05.000    INFO 4242   - [main]     DATABASE repository/member.go:42 : message key=value
type Log4jColorFormatter struct {
	LoggerName      string
	TimestampFormat string
	NameWidth       int
}

var (
	faint   = color.New(color.Faint).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
	cyan    = color.New(color.FgCyan).SprintFunc()
)

func (f *Log4jColorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	tsFormat := f.TimestampFormat
	if tsFormat == "" {
		tsFormat = timestampFormat
	}

	var sb strings.Builder
	sb.WriteString(entry.Time.Format(tsFormat))
	sb.WriteString(" ")
	sb.WriteString(levelColor(entry.Level)(fmt.Sprintf("%7s", strings.ToUpper(entry.Level.String()))))
	sb.WriteString(" ")
	sb.WriteString(magenta(fmt.Sprintf("%-6d", os.Getpid())))
	sb.WriteString(" - ")
	sb.WriteString(magenta("[main]"))
	sb.WriteString(" ")
	sb.WriteString(cyan(fmt.Sprintf("%*s", f.NameWidth, limitRunes(f.LoggerName, f.NameWidth))))
	if entry.Caller != nil {
		sb.WriteString(" ")
		sb.WriteString(faint(shortCaller(entry.Caller.File, entry.Caller.Line)))
	}
	sb.WriteString(" ")
	sb.WriteString(faint(":"))
	sb.WriteString(" ")
	sb.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf(" %s=%v", k, entry.Data[k]))
	}
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

func levelColor(level logrus.Level) func(a ...interface{}) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return color.New(color.FgRed).SprintFunc()
	case logrus.WarnLevel:
		return color.New(color.FgYellow).SprintFunc()
	case logrus.InfoLevel:
		return color.New(color.FgGreen).SprintFunc()
	case logrus.DebugLevel:
		return color.New(color.FgBlue).SprintFunc()
	default:
		return magenta
	}
}

// JSONLogFormatter writes one JSON object per entry. The request fields
// set by the HTTP middleware are lifted to top-level keys.
type JSONLogFormatter struct {
	LoggerName      string
	TimestampFormat string
}

type jsonLogRecord struct {
	Time        string                 `json:"time"`
	Level       string                 `json:"level"`
	Model       string                 `json:"model"`
	Caller      string                 `json:"caller,omitempty"`
	Message     string                 `json:"message"`
	ClientIP    string                 `json:"client_ip,omitempty"`
	Method      string                 `json:"method,omitempty"`
	Path        string                 `json:"path,omitempty"`
	StatusCode  int                    `json:"status_code,omitempty"`
	LatencyTime string                 `json:"latency_time,omitempty"`
	Fields      map[string]interface{} `json:"fields,omitempty"`
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	tsFormat := f.TimestampFormat
	if tsFormat == "" {
		tsFormat = timestampFormat
	}

	rec := jsonLogRecord{
		Time:    entry.Time.Format(tsFormat),
		Level:   entry.Level.String(),
		Model:   f.LoggerName,
		Message: entry.Message,
	}
	if entry.Caller != nil {
		rec.Caller = shortCaller(entry.Caller.File, entry.Caller.Line)
	}

	extra := make(map[string]interface{}, len(entry.Data))
	for k, v := range entry.Data {
		s, isString := v.(string)
		switch {
		case k == "req_uri" && isString:
			rec.Path = s
		case k == "req_method" && isString:
			rec.Method = s
		case k == "client_ip" && isString:
			rec.ClientIP = s
		case k == "latency_time" && isString:
			rec.LatencyTime = s
		case k == "status_code":
			if n, ok := v.(int); ok {
				rec.StatusCode = n
			} else {
				extra[k] = v
			}
		case k == logrus.ErrorKey:
			if err, ok := v.(error); ok {
				extra[k] = err.Error()
			} else {
				extra[k] = v
			}
		default:
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		rec.Fields = extra
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func shortCaller(file string, line int) string {
	parts := strings.Split(filepath.ToSlash(file), "/")
	if len(parts) >= 2 {
		return parts[len(parts)-2] + "/" + parts[len(parts)-1] + ":" + strconv.Itoa(line)
	}
	return parts[0] + ":" + strconv.Itoa(line)
}

func limitRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}
