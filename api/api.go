// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/yashvikram30/staking/api/staking"
	"github.com/yashvikram30/staking/api/subscriptions"
	"github.com/yashvikram30/staking/log"
	"github.com/yashvikram30/staking/logdb"
	"github.com/yashvikram30/staking/staker"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	ReplayCacheSize      int
	ActivityLimit        uint64
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
}

// New return api router. feed may be nil, in which case no subscriptions are served.
func New(
	s *staker.Staker,
	balances staking.Balances,
	logDB *logdb.LogDB,
	feed *subscriptions.Feed,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	staking.New(s, balances, logDB, opts.ReplayCacheSize, opts.ActivityLimit).
		Mount(router, "/staking")

	closeSubs := func() {}
	if feed != nil {
		subs := subscriptions.New(feed, origins)
		subs.Mount(router, "/subscriptions")
		closeSubs = subs.Close
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	router.Use(RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold, opts.Log5xxErrors))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	return handler.ServeHTTP, closeSubs // subscriptions handles hijacked conns, which need to be closed
}
