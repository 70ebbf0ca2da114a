// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/api/utils"
	"github.com/yashvikram30/staking/log"
)

var logger = log.WithContext("pkg", "admin")

type logLevelRequest struct {
	Level string `json:"level"`
}

type logLevelResponse struct {
	CurrentLevel string `json:"currentLevel"`
}

type apiLogsStatus struct {
	Enabled bool `json:"enabled"`
}

// New returns the admin handler, serving the log level and the request logger
// switch under /admin.
func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool) http.HandlerFunc {
	router := mux.NewRouter()

	router.Path("/admin/loglevel").
		Methods(http.MethodGet).
		Name("get-log-level").
		HandlerFunc(utils.WrapHandlerFunc(getLogLevelHandler(logLevel)))
	router.Path("/admin/loglevel").
		Methods(http.MethodPost).
		Name("post-log-level").
		HandlerFunc(utils.WrapHandlerFunc(postLogLevelHandler(logLevel)))

	router.Path("/admin/apilogs").
		Methods(http.MethodGet).
		Name("get-api-logs-enabled").
		HandlerFunc(utils.WrapHandlerFunc(getAPILogsHandler(apiLogs)))
	router.Path("/admin/apilogs").
		Methods(http.MethodPost).
		Name("post-api-logs-enabled").
		HandlerFunc(utils.WrapHandlerFunc(postAPILogsHandler(apiLogs)))

	return handlers.CompressHandler(router).ServeHTTP
}

func getLogLevelHandler(logLevel *slog.LevelVar) utils.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) error {
		return utils.WriteJSON(w, logLevelResponse{CurrentLevel: log.LevelName(logLevel.Level())})
	}
}

func postLogLevelHandler(logLevel *slog.LevelVar) utils.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req logLevelRequest
		if err := utils.ParseJSON(r.Body, &req); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "Invalid request body"))
		}
		level, ok := log.ParseLevel(req.Level)
		if !ok {
			return utils.BadRequest(errors.New("Invalid verbosity level"))
		}
		logLevel.Set(level)
		logger.Warn("admin changed the log level", "level", req.Level)

		return utils.WriteJSON(w, logLevelResponse{CurrentLevel: log.LevelName(logLevel.Level())})
	}
}

func getAPILogsHandler(apiLogs *atomic.Bool) utils.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) error {
		return utils.WriteJSON(w, apiLogsStatus{Enabled: apiLogs.Load()})
	}
}

func postAPILogsHandler(apiLogs *atomic.Bool) utils.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req apiLogsStatus
		if err := utils.ParseJSON(r.Body, &req); err != nil {
			return utils.BadRequest(err)
		}
		apiLogs.Store(req.Enabled)
		logger.Info("api logs updated", "enabled", req.Enabled)

		return utils.WriteJSON(w, apiLogsStatus{Enabled: apiLogs.Load()})
	}
}
