// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/api/utils"
	"github.com/yashvikram30/staking/log"
	"github.com/yashvikram30/staking/logdb"
	"github.com/yashvikram30/staking/metrics"
	"github.com/yashvikram30/staking/stake"
)

var (
	logger = log.WithContext("pkg", "subscriptions")

	metricActiveSubscriptions = metrics.LazyGauge("api_active_websocket_count")
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
)

// ActivityMessage is pushed for every committed transition.
type ActivityMessage struct {
	Seq         uint64         `json:"seq"`
	Kind        logdb.Kind     `json:"kind"`
	Participant stake.Address  `json:"participant"`
	Asset       *stake.Address `json:"asset"`
	Points      uint64         `json:"points"`
	Amount      *hexutil.Big   `json:"amount,omitempty"`
	Time        uint64         `json:"time"`
}

func newActivityMessage(e *logdb.Entry) *ActivityMessage {
	msg := &ActivityMessage{
		Seq:         e.Seq,
		Kind:        e.Kind,
		Participant: e.Participant,
		Asset:       e.Asset,
		Points:      e.Points,
		Time:        e.Time,
	}
	if e.Amount != nil {
		msg.Amount = (*hexutil.Big)(e.Amount.ToBig())
	}
	return msg
}

type Subscriptions struct {
	feed     *Feed
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates the websocket handlers. Connections carrying an Origin header must
// match one of allowedOrigins, "*" matches any.
func New(feed *Feed, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		feed: feed,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || strings.EqualFold(allowed, origin) {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func parseFilter(req *http.Request) (func(*logdb.Entry) bool, error) {
	query := req.URL.Query()

	var participant *stake.Address
	if v := query.Get("participant"); v != "" {
		addr, err := stake.ParseAddress(v)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "participant"))
		}
		participant = &addr
	}
	var kind *logdb.Kind
	if v := query.Get("kind"); v != "" {
		k := logdb.Kind(v)
		if !k.Valid() {
			return nil, utils.BadRequest(errors.Errorf("kind: unknown kind %q", v))
		}
		kind = &k
	}
	if participant == nil && kind == nil {
		return nil, nil
	}
	return func(e *logdb.Entry) bool {
		if participant != nil && e.Participant != *participant {
			return false
		}
		return kind == nil || e.Kind == *kind
	}, nil
}

func (s *Subscriptions) handleActivity(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseFilter(req)
	if err != nil {
		return err
	}

	s.wg.Add(1)
	defer s.wg.Done()

	// subscribe before the handshake completes so nothing committed after it is missed
	sub := s.feed.subscribe(filter)
	defer s.feed.unsubscribe(sub)

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// the connection is hijacked from here on, errors are only logged
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}
	defer conn.Close()

	metricActiveSubscriptions().Add(1)
	defer metricActiveSubscriptions().Add(-1)

	if err := s.pipe(conn, sub); err != nil {
		logger.Debug("activity subscription closed", "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, sub *subscriber) error {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-s.done:
			return closeConn(conn, websocket.CloseGoingAway, "server closed")
		case <-closed:
			return nil
		case e, ok := <-sub.ch:
			if !ok {
				return closeConn(conn, websocket.CloseTryAgainLater, "subscriber too slow")
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(newActivityMessage(e)); err != nil {
				return err
			}
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

func closeConn(conn *websocket.Conn, code int, text string) error {
	msg := websocket.FormatCloseMessage(code, text)
	return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// Close disconnects every subscriber and waits for their handlers to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/activity").
		Methods(http.MethodGet).
		Name("WS /subscriptions/activity").
		HandlerFunc(utils.WrapHandlerFunc(s.handleActivity))
}
