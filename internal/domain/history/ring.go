package history

// ring is a fixed-capacity stack. When full, a push overwrites the bottom
// (oldest) element, so push and pop are both O(1).
type ring struct {
	buf   []Entry
	start int // index of the oldest element
	n     int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]Entry, capacity)}
}

func (r *ring) cap() int { return len(r.buf) }
func (r *ring) len() int { return r.n }

func (r *ring) push(e Entry) {
	if r.n == len(r.buf) {
		r.buf[r.start] = e
		r.start = (r.start + 1) % len(r.buf)
		return
	}
	r.buf[(r.start+r.n)%len(r.buf)] = e
	r.n++
}

func (r *ring) pop() (Entry, bool) {
	if r.n == 0 {
		return Entry{}, false
	}
	i := (r.start + r.n - 1) % len(r.buf)
	e := r.buf[i]
	r.buf[i] = Entry{} // release content for GC
	r.n--
	return e, true
}

func (r *ring) clear() {
	clear(r.buf)
	r.start, r.n = 0, 0
}

func (r *ring) entries() []Entry {
	out := make([]Entry, r.n)
	for i := range out {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}
