package primitives

// HandleList is a doubly linked intrusive list over handles. Nodes live
// in caller-owned storage (e.g. a client's hot record); this type only
// holds the head/tail handles and a pair of accessor funcs that read
// and write the prev/next links wherever the caller keeps them. This
// is the handle-list idiom recommended for cyclic/intrusive graphs:
// transient children, focus MRU history, and append-ordered client
// lists all use it.
type HandleList struct {
	head, tail Handle
	length     int
	next       func(Handle) Handle
	setNext    func(Handle, Handle)
	prev       func(Handle) Handle
	setPrev    func(Handle, Handle)
}

// NewHandleList builds a list whose links are stored externally via the
// given accessor/mutator pairs.
func NewHandleList(
	next func(Handle) Handle, setNext func(Handle, Handle),
	prev func(Handle) Handle, setPrev func(Handle, Handle),
) *HandleList {
	return &HandleList{next: next, setNext: setNext, prev: prev, setPrev: setPrev}
}

// Len returns the number of linked nodes.
func (l *HandleList) Len() int { return l.length }

// Head returns the first handle, or NilHandle if empty.
func (l *HandleList) Head() Handle { return l.head }

// Tail returns the last handle, or NilHandle if empty.
func (l *HandleList) Tail() Handle { return l.tail }

// PushFront links h as the new head. Caller guarantees h isn't already linked.
func (l *HandleList) PushFront(h Handle) {
	l.setPrev(h, NilHandle)
	l.setNext(h, l.head)
	if l.head.Valid() {
		l.setPrev(l.head, h)
	} else {
		l.tail = h
	}
	l.head = h
	l.length++
}

// PushBack links h as the new tail.
func (l *HandleList) PushBack(h Handle) {
	l.setNext(h, NilHandle)
	l.setPrev(h, l.tail)
	if l.tail.Valid() {
		l.setNext(l.tail, h)
	} else {
		l.head = h
	}
	l.tail = h
	l.length++
}

// Remove unlinks h. No-op if h isn't linked (prev/next/head/tail all nil for it).
func (l *HandleList) Remove(h Handle) {
	if !l.isLinked(h) {
		return
	}
	p, n := l.prev(h), l.next(h)
	if p.Valid() {
		l.setNext(p, n)
	} else if l.head == h {
		l.head = n
	}
	if n.Valid() {
		l.setPrev(n, p)
	} else if l.tail == h {
		l.tail = p
	}
	l.setPrev(h, NilHandle)
	l.setNext(h, NilHandle)
	l.length--
}

// MoveToFront unlinks h (if linked) and re-links it at the head — the
// primitive the focus MRU history is built from.
func (l *HandleList) MoveToFront(h Handle) {
	if l.head == h {
		return
	}
	if l.isLinked(h) {
		l.Remove(h)
	}
	l.PushFront(h)
}

func (l *HandleList) isLinked(h Handle) bool {
	return l.head == h || l.tail == h || l.prev(h).Valid() || l.next(h).Valid()
}

// Contains reports whether h is currently linked into l.
func (l *HandleList) Contains(h Handle) bool { return l.isLinked(h) }

// Walk invokes fn for each handle head-to-tail; stops early if fn returns false.
func (l *HandleList) Walk(fn func(Handle) bool) {
	for h := l.head; h.Valid(); h = l.next(h) {
		if !fn(h) {
			return
		}
	}
}
