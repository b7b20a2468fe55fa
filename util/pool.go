package util

import "sync"

// DefaultBufSize is the per-read scratch buffer capacity (4 KiB).
const DefaultBufSize = 4 * 1024

// BufPool provides reusable read buffers so that a burst of short-lived
// connections does not allocate a fresh buffer each.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, DefaultBufSize)
		return &buf
	},
}

// GetBuf retrieves a buffer from the pool.  Callers must return it
// with [PutBuf] when finished.
func GetBuf() *[]byte {
	return BufPool.Get().(*[]byte)
}

// PutBuf returns a buffer to the pool for reuse.  Buffers whose
// capacity differs from DefaultBufSize are dropped.
func PutBuf(buf *[]byte) {
	if buf == nil || cap(*buf) != DefaultBufSize {
		return
	}
	*buf = (*buf)[:DefaultBufSize]
	BufPool.Put(buf)
}
