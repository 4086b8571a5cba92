package replication

import (
	"context"
	"log"
	"sync"
	"time"

	"studyforest/internal/storage"
)

const pushTimeout = 5 * time.Second

// Replicator pushes documents to a Bridge from a background worker. Pending
// pushes of the same key coalesce into the latest value.
type Replicator struct {
	bridge    Bridge
	namespace string

	mu      sync.Mutex
	pending map[string][]byte
	order   []string
	closed  bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// New starts a replicator for namespace.
func New(bridge Bridge, namespace string) *Replicator {
	replicator := &Replicator{
		bridge:    bridge,
		namespace: namespace,
		pending:   make(map[string][]byte),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	replicator.wg.Add(1)
	go replicator.run()
	return replicator
}

// Namespace returns the space id documents are shared under.
func (replicator *Replicator) Namespace() string {
	return replicator.namespace
}

// Push queues value for key and returns immediately.
func (replicator *Replicator) Push(key string, value []byte) {
	replicator.mu.Lock()
	if replicator.closed {
		replicator.mu.Unlock()
		return
	}
	if _, queued := replicator.pending[key]; !queued {
		replicator.order = append(replicator.order, key)
	}
	replicator.pending[key] = append([]byte(nil), value...)
	replicator.mu.Unlock()

	select {
	case replicator.wake <- struct{}{}:
	default:
	}
}

// Seed pulls each key once and writes the remote value into store when the
// key is absent locally. Local data always wins. It returns the seeded keys.
func (replicator *Replicator) Seed(ctx context.Context, store storage.Store, keys ...string) []string {
	var seeded []string
	for _, key := range keys {
		local, ok, err := store.Load(key)
		if err != nil {
			log.Printf("seed %s: %v", key, err)
			continue
		}
		if ok && !storage.IsNull(local) {
			continue
		}
		remote, ok, err := replicator.bridge.PullOnce(ctx, replicator.namespace, key)
		if err != nil {
			log.Printf("seed %s: %v", key, err)
			continue
		}
		if !ok || storage.IsNull(remote) {
			continue
		}
		if err := store.Save(key, remote); err != nil {
			log.Printf("seed %s: %v", key, err)
			continue
		}
		seeded = append(seeded, key)
	}
	return seeded
}

// Close flushes pending pushes and stops the worker.
func (replicator *Replicator) Close() {
	replicator.mu.Lock()
	if replicator.closed {
		replicator.mu.Unlock()
		return
	}
	replicator.closed = true
	replicator.mu.Unlock()

	close(replicator.done)
	replicator.wg.Wait()
}

func (replicator *Replicator) run() {
	defer replicator.wg.Done()
	for {
		select {
		case <-replicator.wake:
			replicator.flush()
		case <-replicator.done:
			replicator.flush()
			return
		}
	}
}

func (replicator *Replicator) flush() {
	for {
		replicator.mu.Lock()
		if len(replicator.order) == 0 {
			replicator.mu.Unlock()
			return
		}
		key := replicator.order[0]
		replicator.order = replicator.order[1:]
		value := replicator.pending[key]
		delete(replicator.pending, key)
		replicator.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		if err := replicator.bridge.Push(ctx, replicator.namespace, key, value); err != nil {
			log.Printf("replicate %s: %v", key, err)
		}
		cancel()
	}
}
