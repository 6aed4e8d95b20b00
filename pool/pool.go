// Package pool implements the connection-pool adapter of §4.6: creating
// connections, validating borrowed ones, and detecting broken ones, with
// a bounded idle-connection cache and a background reaper.
package pool

import (
	"context"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/bolt-go/bolt/client"
	"github.com/bolt-go/bolt/internal/tlsdial"
	"github.com/bolt-go/bolt/metrics"
	ps "github.com/bolt-go/bolt/packstream"
)

// DefaultIdleSize is used when Config.IdleSize is zero.
const DefaultIdleSize = 16

// DefaultReapInterval is used when Config.ReapInterval is zero.
const DefaultReapInterval = 30 * time.Second

// Config carries the pool's connection template and tuning knobs (§6).
type Config struct {
	Address           string
	Domain            string
	PreferredVersions [4]uint32
	Metadata          map[string]ps.Value
	IdleSize          int
	ReapInterval      time.Duration
}

func (c Config) metadataMap() *ps.Map {
	m := ps.NewMap()
	for k, v := range c.Metadata {
		m.Set(k, v)
	}
	return m
}

// Manager is the pool adapter surface of §6: create, validate, and detect
// broken connections.
type Manager interface {
	Connect(ctx context.Context) (*client.Client, error)
	Validate(ctx context.Context, c *client.Client) error
	HasBroken(c *client.Client) bool
	// Checkout hands out a cached idle connection, or a new one from Connect.
	Checkout(ctx context.Context) (*client.Client, error)
	// Checkin returns a checked-out connection to the idle cache.
	Checkin(ctx context.Context, c *client.Client)
	// Close stops the background reaper and closes every idle connection.
	Close() error
	// IdleCount and InUseCount let callers (admin.StatsHandler among them)
	// report pool occupancy without importing pool's internal state.
	IdleCount() int
	InUseCount() int
}

type manager struct {
	cfg      Config
	idle     *lru.Cache
	reapStop chan struct{}
	inUse    int32
}

// New returns a Manager dialing cfg.Address (optionally over TLS when
// cfg.Domain is set) for new connections, keeping up to cfg.IdleSize
// validated connections in an LRU cache the way kryptco-kr caches live
// ssh-agent connections.
func New(cfg Config) (Manager, error) {
	if cfg.Address == "" {
		return nil, errors.New("pool: address is required")
	}
	size := cfg.IdleSize
	if size <= 0 {
		size = DefaultIdleSize
	}
	reapInterval := cfg.ReapInterval
	if reapInterval <= 0 {
		reapInterval = DefaultReapInterval
	}

	idle, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "pool: create idle cache")
	}

	m := &manager{cfg: cfg, idle: idle}
	m.startReaper(reapInterval)
	return m, nil
}

// Connect opens a new stream, performs the handshake and version-
// dispatched init (§4.6), and returns a Ready Client. It does not consult
// the idle cache directly — callers that want reuse should call
// Checkout instead.
func (m *manager) Connect(ctx context.Context) (*client.Client, error) {
	conn, err := tlsdial.Dial(m.cfg.Address, m.cfg.Domain)
	if err != nil {
		metrics.ConnectionsDefunct.WithLabelValues("io").Inc()
		return nil, err
	}

	type result struct {
		c   *client.Client
		err error
	}
	done := make(chan result, 1)
	go func() {
		c, err := client.Dial(conn, client.Config{
			Address:           m.cfg.Address,
			Domain:            m.cfg.Domain,
			PreferredVersions: m.cfg.PreferredVersions,
			Metadata:          m.cfg.metadataMap(),
		})
		done <- result{c, err}
	}()

	select {
	case <-ctx.Done():
		conn.Close()
		return nil, ctx.Err()
	case r := <-done:
		return r.c, r.err
	}
}

// Checkout returns an idle validated connection if one is cached, else
// calls Connect.
func (m *manager) Checkout(ctx context.Context) (*client.Client, error) {
	if keys := m.idle.Keys(); len(keys) > 0 {
		key := keys[0]
		v, ok := m.idle.Get(key)
		m.idle.Remove(key)
		if ok {
			c := v.(*client.Client)
			metrics.PoolSize.WithLabelValues("idle").Dec()
			if !m.HasBroken(c) {
				metrics.PoolSize.WithLabelValues("in_use").Inc()
				atomic.AddInt32(&m.inUse, 1)
				return c, nil
			}
			c.Close()
		}
	}
	c, err := m.Connect(ctx)
	if err == nil {
		metrics.PoolSize.WithLabelValues("in_use").Inc()
		atomic.AddInt32(&m.inUse, 1)
	}
	return c, err
}

// Checkin returns c to the idle cache after validating it, or closes it
// if broken.
func (m *manager) Checkin(ctx context.Context, c *client.Client) {
	metrics.PoolSize.WithLabelValues("in_use").Dec()
	atomic.AddInt32(&m.inUse, -1)
	if m.HasBroken(c) {
		c.Close()
		return
	}
	if err := m.Validate(ctx, c); err != nil {
		c.Close()
		return
	}
	m.idle.Add(c.ID(), c)
	metrics.PoolSize.WithLabelValues("idle").Inc()
}

// IdleCount returns the number of validated connections currently cached.
func (m *manager) IdleCount() int {
	return m.idle.Len()
}

// InUseCount returns the number of connections currently checked out.
func (m *manager) InUseCount() int {
	return int(atomic.LoadInt32(&m.inUse))
}

// Validate sends Reset and expects Success (§4.6).
func (m *manager) Validate(ctx context.Context, c *client.Client) error {
	if c.HasBroken() {
		return errors.New("pool: cannot validate a broken connection")
	}
	_, err := c.Reset()
	return err
}

// HasBroken reports whether c's state is Defunct.
func (m *manager) HasBroken(c *client.Client) bool {
	return c.HasBroken()
}

func (m *manager) Close() error {
	close(m.reapStop)
	for _, key := range m.idle.Keys() {
		if v, ok := m.idle.Get(key); ok {
			v.(*client.Client).Close()
		}
	}
	m.idle.Purge()
	return nil
}

func (m *manager) startReaper(interval time.Duration) {
	m.reapStop = make(chan struct{})
	go reap(m, interval, m.reapStop)
}
