package collection

import (
	"sync"

	"github.com/cespare/xxhash"
)

// lockStripes maps collection names onto a fixed number of read write locks.
// Two names may share a stripe, which only costs some parallelism, but one
// name always maps to the same stripe so read modify write cycles on a
// collection file never interleave.
type lockStripes struct {
	stripes []sync.RWMutex
}

func newLockStripes(count int) *lockStripes {
	return &lockStripes{stripes: make([]sync.RWMutex, count)}
}

func (ls *lockStripes) forName(name string) *sync.RWMutex {
	idx := xxhash.Sum64String(name) % uint64(len(ls.stripes))
	return &ls.stripes[idx]
}
