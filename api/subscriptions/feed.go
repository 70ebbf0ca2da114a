// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"sync"

	"github.com/yashvikram30/staking/logdb"
)

const subscriberBuffer = 64

type subscriber struct {
	ch     chan *logdb.Entry
	filter func(*logdb.Entry) bool
}

// Feed fans committed activity out to subscribers. It is an event sink of the staker.
type Feed struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[*subscriber]struct{})}
}

// Append delivers entries to every matching subscriber. A subscriber whose
// buffer is full is dropped and its channel closed.
func (f *Feed) Append(_ context.Context, entries ...*logdb.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.subs {
		for _, e := range entries {
			if sub.filter != nil && !sub.filter(e) {
				continue
			}
			select {
			case sub.ch <- e:
				continue
			default:
			}
			logger.Debug("dropping slow subscriber")
			delete(f.subs, sub)
			close(sub.ch)
			break
		}
	}
	return nil
}

func (f *Feed) subscribe(filter func(*logdb.Entry) bool) *subscriber {
	sub := &subscriber{ch: make(chan *logdb.Entry, subscriberBuffer), filter: filter}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[sub] = struct{}{}
	return sub
}

func (f *Feed) unsubscribe(sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[sub]; ok {
		delete(f.subs, sub)
		close(sub.ch)
	}
}

// Len returns the number of live subscribers.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
