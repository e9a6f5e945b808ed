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
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(msg string, fields logrus.Fields) *logrus.Entry {
	entry := logrus.NewEntry(logrus.New()).WithFields(fields)
	entry.Time = time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	entry.Level = logrus.InfoLevel
	entry.Message = msg
	return entry
}

func TestLog4jColorFormatter(t *testing.T) {
	f := &Log4jColorFormatter{LoggerName: "DATABASE", NameWidth: 10}

	out, err := f.Format(newEntry("connected", logrus.Fields{"type": "sqlite", "attempt": 1}))
	require.NoError(t, err)

	line := string(out)
	assert.Contains(t, line, "2025-01-02 15:04:05.000")
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "DATABASE")
	assert.Contains(t, line, "connected attempt=1 type=sqlite")
	assert.True(t, bytes.HasSuffix(out, []byte("\n")))
}

func TestJSONLogFormatterLiftsRequestFields(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "HTTP"}

	out, err := f.Format(newEntry("request", logrus.Fields{
		"req_method":    "GET",
		"req_uri":       "/v1/members?teamName=teamA",
		"client_ip":     "10.0.0.1",
		"status_code":   200,
		"latency_time":  "1.2ms",
		"request_id":    "abc",
		logrus.ErrorKey: errors.New("boom"),
	}))
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &rec))
	assert.Equal(t, "HTTP", rec["model"])
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "GET", rec["method"])
	assert.Equal(t, "/v1/members?teamName=teamA", rec["path"])
	assert.Equal(t, "10.0.0.1", rec["client_ip"])
	assert.EqualValues(t, 200, rec["status_code"])
	assert.Equal(t, "1.2ms", rec["latency_time"])

	fields, ok := rec["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "abc", fields["request_id"])
	assert.Equal(t, "boom", fields["error"])
	assert.NotContains(t, fields, "req_uri")
}

func TestNewLoggerRegistry(t *testing.T) {
	var buf bytes.Buffer
	ConfigureOutput(&buf)
	t.Cleanup(func() {
		ConfigureOutput(os.Stdout)
		ConfigureLogLevel("info")
	})

	l := NewLogger("REGISTRY_TEST")
	assert.Same(t, l, NewLogger("REGISTRY_TEST"))

	ConfigureLogLevel("warn")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")

	assert.True(t, SetLoggerLevel("REGISTRY_TEST", "debug"))
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.False(t, SetLoggerLevel("NO_SUCH_LOGGER", "debug"))
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		" WARN ":  logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}
