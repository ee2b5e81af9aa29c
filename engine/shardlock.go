package engine

import "sync"

// shardLoadMu is process-wide, not per-Loop: spec §5's
// serialize_shard_loads exists to bound how many large shard files
// are held in memory at once across every shard loop running inside
// one OS process, not to protect a single Loop's own state (a Loop
// never touches its fields from more than one goroutine). It is a
// no-op when only one Loop runs per process, and becomes load-bearing
// only for a host that runs multiple shards' loops concurrently in
// one binary.
var shardLoadMu sync.Mutex

// withShardLoadLock runs fn, holding shardLoadMu first when
// serialize_shard_loads is enabled.
func (l *Loop) withShardLoadLock(fn func()) {
	if l.env.SerializeShardLoads {
		shardLoadMu.Lock()
		defer shardLoadMu.Unlock()
	}
	fn()
}
