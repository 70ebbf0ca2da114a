// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yashvikram30/staking/log"
)

// mockLogger keeps the context of Info and Warn records.
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) New(_ ...any) log.Logger { return m }

func (m *mockLogger) Trace(_ string, _ ...any) {}

func (m *mockLogger) Debug(_ string, _ ...any) {}

func (m *mockLogger) Error(_ string, _ ...any) {}

func (m *mockLogger) Enabled(_ slog.Level) bool { return true }

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Warn(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func TestRequestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name                 string
		handler              http.HandlerFunc
		enabled              bool
		slowQueriesThreshold time.Duration
		log5xxErrors         bool
		expectedStatusCode   int
		shouldLog            bool
	}{
		{
			name: "enabled fast 2xx",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("OK"))
			},
			enabled:            true,
			expectedStatusCode: http.StatusOK,
			shouldLog:          true,
		},
		{
			name: "disabled fast 2xx",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("OK"))
			},
			expectedStatusCode: http.StatusOK,
			shouldLog:          false,
		},
		{
			name: "slow query over threshold",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(15 * time.Millisecond)
				w.Write([]byte("OK"))
			},
			slowQueriesThreshold: 5 * time.Millisecond,
			expectedStatusCode:   http.StatusOK,
			shouldLog:            true,
		},
		{
			name: "fast query under threshold",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("OK"))
			},
			slowQueriesThreshold: time.Second,
			expectedStatusCode:   http.StatusOK,
			shouldLog:            false,
		},
		{
			name: "5xx logged",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			log5xxErrors:       true,
			expectedStatusCode: http.StatusInternalServerError,
			shouldLog:          true,
		},
		{
			name: "5xx not logged when disabled",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			expectedStatusCode: http.StatusServiceUnavailable,
			shouldLog:          false,
		},
		{
			name: "4xx not logged with 5xx logging",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			log5xxErrors:       true,
			expectedStatusCode: http.StatusBadRequest,
			shouldLog:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			var seen string
			handler := RequestLoggerMiddleware(logger, &enabled, tt.slowQueriesThreshold, tt.log5xxErrors)(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					body, _ := io.ReadAll(r.Body)
					seen = string(body)
					tt.handler(w, r)
				}))

			req := httptest.NewRequest(http.MethodPost, "/staking/lock", strings.NewReader(`{"caller":"x"}`))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatusCode, rec.Code)
			assert.Equal(t, `{"caller":"x"}`, seen, "handler should see the full body")

			if !tt.shouldLog {
				assert.Empty(t, logger.loggedData)
				return
			}
			assert.Contains(t, logger.loggedData, "URI")
			assert.Contains(t, logger.loggedData, "/staking/lock")
			assert.Contains(t, logger.loggedData, `{"caller":"x"}`)
			assert.Contains(t, logger.loggedData, tt.expectedStatusCode)
		})
	}
}
