// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import "sync"

// outboundQueue buffers encoded request envelopes while the client is
// disconnected. Unbounded and strictly FIFO.
type outboundQueue struct {
	mu      sync.Mutex
	entries [][]byte
}

// enqueue appends one encoded envelope to the tail.
func (q *outboundQueue) enqueue(data []byte) {
	q.mu.Lock()
	q.entries = append(q.entries, data)
	q.mu.Unlock()
}

// clear discards every queued envelope. Used on explicit disconnect:
// the callers of those requests have already been rejected, so
// replaying the envelopes later would execute operations their callers
// were told had failed.
func (q *outboundQueue) clear() {
	q.mu.Lock()
	q.entries = nil
	q.mu.Unlock()
}

// len returns the number of queued envelopes.
func (q *outboundQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// flush drains the queue through send using snapshot-then-drain: the
// current contents are captured and cleared, then sent in order.
// Envelopes enqueued concurrently land in the now-empty queue and go
// out on the next flush cycle, so each generation preserves FIFO.
//
// If send fails partway, the failed envelope and everything after it
// in the snapshot are put back at the head, still in order, ahead of
// any entries that arrived during the flush. Replay on the next
// reconnect means delivery is at least once — an envelope the server
// processed just before the connection dropped can arrive twice.
func (q *outboundQueue) flush(send func([]byte) error) error {
	q.mu.Lock()
	snapshot := q.entries
	q.entries = nil
	q.mu.Unlock()

	for i, data := range snapshot {
		if err := send(data); err != nil {
			q.mu.Lock()
			q.entries = append(snapshot[i:], q.entries...)
			q.mu.Unlock()
			return err
		}
	}
	return nil
}
