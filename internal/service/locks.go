package service

import (
	"hash/fnv"
	"sync"
)

const lockShards = 64

// stripedLock serializes like toggles per (entity, user) key so a concurrent
// double-toggle from one user cannot read the same edge state twice. Scope is
// a single process instance.
type stripedLock struct {
	shards [lockShards]sync.Mutex
}

func (s *stripedLock) forKey(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.shards[h.Sum32()%lockShards]
}
