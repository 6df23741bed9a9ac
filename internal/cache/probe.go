// Package cache provides read-only presence checks against the local and
// remote artifact caches. Nothing in this package ever creates, touches, or
// evicts a cache entry; a dry run must leave the caches exactly as found.
package cache

import (
	"context"
	"time"

	"github.com/vk/monoplan/internal/ctxlog"
)

// State is the observed cache presence for one task hash, per storage tier.
type State struct {
	Local  bool
	Remote bool
}

// Backend is a single cache tier's existence check.
type Backend interface {
	// Exists reports whether an artifact for the hash is present. It must
	// not mutate the underlying store.
	Exists(ctx context.Context, hash string) (bool, error)
}

// DefaultProbeTimeout bounds each backend check so a slow remote cache can
// never stall the whole plan.
const DefaultProbeTimeout = 5 * time.Second

// Probe checks both cache tiers for a hash. Either backend may be nil
// (tier not configured) and either check may fail; both degrade to false.
type Probe struct {
	Local   Backend
	Remote  Backend
	Timeout time.Duration
}

// NewProbe creates a Probe with the default per-check timeout.
func NewProbe(local, remote Backend) *Probe {
	return &Probe{Local: local, Remote: remote, Timeout: DefaultProbeTimeout}
}

// Check probes both tiers. A backend error or timeout is logged and
// reported as absent rather than failing the plan; connectivity problems
// must never abort a dry run.
func (p *Probe) Check(ctx context.Context, hash string) State {
	return State{
		Local:  p.check(ctx, p.Local, "local", hash),
		Remote: p.check(ctx, p.Remote, "remote", hash),
	}
}

func (p *Probe) check(ctx context.Context, backend Backend, tier, hash string) bool {
	if backend == nil {
		return false
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	exists, err := backend.Exists(checkCtx, hash)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Cache probe failed, treating as miss.", "tier", tier, "hash", hash, "error", err)
		return false
	}
	return exists
}
