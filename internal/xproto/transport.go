// Package xproto defines the boundary between the tick engine and the
// X11 wire protocol. Per the system's scope, the XCB transport and the
// atom table are external collaborators — only the contract the core
// depends on lives here: a Transport interface exposing
// write-request/read-reply-by-sequence/read-event-nonblocking/fd, plus
// the wire-level event and reply shapes the reply dispatcher and event
// handlers parse.
package xproto

// Seq is a protocol sequence number, the cookie jar's lookup key.
type Seq uint32

// WindowID is a raw X11 resource id.
type WindowID uint32

// Atom is an interned X11 atom.
type Atom uint32

// Request is an outbound protocol request. Kind identifies the request
// shape (e.g. GetProperty, ConfigureWindow); Window and Data carry
// request-specific payload the transport serializes to wire bytes.
type Request struct {
	Kind   RequestKind
	Window WindowID
	Data   []byte
}

// RequestKind enumerates outbound request shapes the core issues.
type RequestKind int

const (
	ReqGetProperty RequestKind = iota
	ReqGetWindowAttributes
	ReqGetGeometry
	ReqConfigureWindow
	ReqMapWindow
	ReqUnmapWindow
	ReqReparentWindow
	ReqSetInputFocus
	ReqSendEvent
	ReqChangeProperty
	ReqDeleteProperty
	ReqGrabButton
	ReqUngrabButton
	ReqChangeWindowAttributes
	ReqQueryTree
	ReqTranslateCoordinates
	ReqGetInputFocus
	ReqChangeSaveSet
	ReqDamageCreate
	ReqGrabPointer
	ReqUngrabPointer
)

// Reply is an inbound response to a previously-issued Request, matched
// to it by Seq. Err is non-nil for a protocol error reply; Data is the
// raw wire payload for a successful reply, parsed by the reply
// dispatcher's per-cookie-kind parsers.
type Reply struct {
	Seq  Seq
	Err  error
	Data []byte
}

// Event is an inbound asynchronous notification, not tied to any
// outstanding cookie.
type Event struct {
	Kind   EventKind
	Window WindowID
	Data   []byte
}

// EventKind enumerates the event kinds the bucketer sorts incoming
// events into.
type EventKind int

const (
	EventMapRequest EventKind = iota
	EventUnmapNotify
	EventDestroyNotify
	EventKeyPress
	EventButtonPress
	EventButtonRelease
	EventClientMessage
	EventExpose
	EventConfigureRequest
	EventConfigureNotify
	EventPropertyNotify
	EventMotionNotify
	EventEnterNotify
	EventLeaveNotify
	EventDamageNotify
	EventRandRScreenChange
)

// Transport is the I/O boundary the tick engine depends on. A real
// implementation wraps an XCB connection; tests use an in-memory fake
// satisfying this interface instead of a generated mock.
type Transport interface {
	// WriteRequest serializes and sends req, returning the sequence
	// number the server will tag its reply/error with.
	WriteRequest(req Request) (Seq, error)

	// ReadReplyBySequence returns the reply for seq if the server has
	// produced one, and ok=false if nothing is available yet. Never blocks.
	ReadReplyBySequence(seq Seq) (reply Reply, ok bool)

	// ReadEventNonblocking drains at most one pending asynchronous
	// event, returning ok=false if the queue is empty. Never blocks.
	ReadEventNonblocking() (ev Event, ok bool)

	// FileDescriptor returns the transport's readable fd for the tick
	// loop's outer multiplexed wait.
	FileDescriptor() int

	// Flush pushes any buffered outbound requests to the wire exactly
	// once; the tick loop calls this precisely once at end-of-tick.
	Flush() error
}
