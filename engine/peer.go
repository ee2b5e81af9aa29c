package engine

import (
	"time"

	"github.com/cenkalti/backoff"

	"github.com/moeing-labs/centifuzz/shardio"
	"go.uber.org/zap"
)

// absorbPeerShard loads one other shard's corpus/features files and
// admits whatever new coverage it carries, per spec §4.7 step 6. The
// peer index is chosen so it is always different from our own.
//
// A peer shard's files can be mid-append when we read them (the
// writer holds no lock we can wait on). A read that fails outright is
// retried a few times with backoff before being logged and skipped for
// this cycle. A read that comes back short is not retried: its
// complete frames are absorbed and a truncated tail is ignored, and
// the peer's own next write makes the rest available for our next
// absorption pass.
// The read itself runs under withShardLoadLock, per serialize_shard_loads
// (spec §5): this is a peer load, exactly what that option exists to
// bound.
func (l *Loop) absorbPeerShard() {
	peer := peerShardIndex(l.env.MyShardIndex, l.env.TotalShards, l.rng)
	paths := l.env.Paths(l.binaryHash, peer)

	readOnce := func() error {
		var err error
		l.withShardLoadLock(func() {
			err = shardio.ReadShard(l.fb, paths.Corpus, paths.Features, func(input []byte, fv []uint64) {
				if len(fv) == 0 {
					return // a peer's own re-execution responsibility, not ours
				}
				l.absorbKnownInput(input, fv, nil)
			})
		})
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 200 * time.Millisecond

	if err := backoff.Retry(readOnce, backoff.WithMaxRetries(bo, 3)); err != nil {
		l.logger.Warn("peer shard load failed", zap.Int("peer", peer), zap.Error(err))
	}
}
