package fabric

import "sync/atomic"

// CookieAllocator hands out Cookies unique within a process lifetime so an
// initiator can demultiplex replies to concurrent conversations.
type CookieAllocator struct {
	next atomic.Uint64
}

// Next returns a fresh, never-repeating Cookie. The zero Cookie is never
// returned, so callers may use it as a sentinel for "no conversation".
func (a *CookieAllocator) Next() Cookie {
	return Cookie(a.next.Add(1))
}
