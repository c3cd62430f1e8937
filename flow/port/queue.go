// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package port

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/packetd/flowengine/flow/packet"
)

// queue is the bounded FIFO backing a single connection (spec.md §3
// "Connection"). It is adapted from the channel-backed Queue in
// packetd/internal/pubsub.go, generalized from a fan-out, drop-on-full
// pub/sub primitive to a single-producer/single-consumer queue with
// blocking backpressure: Push blocks (rather than dropping) when the
// queue is at capacity, since a full downstream queue is exactly the
// mechanism spec.md §4.2/§5 calls backpressure.
type queue struct {
	id     string
	ch     chan *packet.Packet
	closed atomic.Bool
}

// unbounded is the capacity used for connections whose input port
// declares no max_queue_size (spec.md §3 "Port": "unbounded if absent").
// A Go channel cannot truly be unbounded; this is a generous practical
// bound matching the teacher's internal/bufbytes style "large enough to
// never matter in practice" sizing, not a claimed hard guarantee.
const unbounded = 1 << 20

func newQueue(capacity int) *queue {
	if capacity <= 0 {
		capacity = unbounded
	}
	return &queue{id: uuid.New().String(), ch: make(chan *packet.Packet, capacity)}
}

func (q *queue) ID() string { return q.id }

func (q *queue) Len() int { return len(q.ch) }

func (q *queue) Cap() int { return cap(q.ch) }

// Push enqueues p, blocking until there is room, ctx is done, or the
// queue is closed. Returns false if ctx expired or the queue is closed
// before p could be enqueued.
func (q *queue) Push(ctx context.Context, p *packet.Packet) bool {
	if q.closed.Load() {
		return false
	}
	select {
	case q.ch <- p:
		return true
	case <-ctx.Done():
		return false
	}
}

// Pop dequeues the next packet, blocking until one is available, ctx is
// done, or the queue is closed and drained. The second return is false
// when ctx expired (caller should treat as a timeout) and true with a
// nil packet when the queue was closed and empty (caller should treat as
// permanently drained).
func (q *queue) Pop(ctx context.Context) (*packet.Packet, bool) {
	select {
	case p, ok := <-q.ch:
		if !ok {
			return nil, true
		}
		return p, true
	case <-ctx.Done():
		return nil, false
	}
}

// PopTimeout is a convenience wrapper matching the teacher idiom's
// PopTimeout(timeout) signature.
func (q *queue) PopTimeout(timeout time.Duration) (*packet.Packet, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return q.Pop(ctx)
}

// Close closes the queue. Any packets still buffered remain poppable
// until drained, after which Pop returns (nil, true).
func (q *queue) Close() {
	if q.closed.CompareAndSwap(false, true) {
		close(q.ch)
	}
}
