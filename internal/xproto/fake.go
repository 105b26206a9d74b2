package xproto

import "sync"

// FakeTransport is an in-memory Transport double for tests, following
// the small-interface/hand-written-fake pattern used elsewhere in this
// codebase rather than a generated mock.
type FakeTransport struct {
	mu       sync.Mutex
	nextSeq  Seq
	replies  map[Seq]Reply
	events   []Event
	fd       int
	flushErr error
	flushes  int
	writeLog []Request
}

// NewFakeTransport creates an empty fake transport.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{replies: make(map[Seq]Reply), fd: -1}
}

// WriteRequest records the request was sent and hands back a fresh
// monotonically increasing sequence number.
func (f *FakeTransport) WriteRequest(req Request) (Seq, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSeq++
	f.writeLog = append(f.writeLog, req)
	return f.nextSeq, nil
}

// WriteLog returns every request handed to WriteRequest so far, in order.
func (f *FakeTransport) WriteLog() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.writeLog))
	copy(out, f.writeLog)
	return out
}

// QueueReply makes ReadReplyBySequence(seq) return reply on its next call.
func (f *FakeTransport) QueueReply(seq Seq, reply Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reply.Seq = seq
	f.replies[seq] = reply
}

// ReadReplyBySequence returns and consumes a previously queued reply.
func (f *FakeTransport) ReadReplyBySequence(seq Seq) (Reply, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.replies[seq]
	if ok {
		delete(f.replies, seq)
	}
	return r, ok
}

// QueueEvent appends ev to the pending event queue.
func (f *FakeTransport) QueueEvent(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

// ReadEventNonblocking dequeues the oldest pending event, if any.
func (f *FakeTransport) ReadEventNonblocking() (Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return Event{}, false
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, true
}

// FileDescriptor returns the configured fake fd (-1 by default).
func (f *FakeTransport) FileDescriptor() int { return f.fd }

// Flush records a flush call and returns the configured error, if any.
func (f *FakeTransport) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return f.flushErr
}

// Flushes reports how many times Flush was called.
func (f *FakeTransport) Flushes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushes
}
