package pool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/averde/docnet/netcomm/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("netcomm/pool")

var (
	metricLeases             = metrics.NewCounter(`docnet_pool_leases_total`)
	metricConnectionsOpened  = metrics.NewCounter(`docnet_pool_connections_opened_total`)
	metricConnectionsExpired = metrics.NewCounter(`docnet_pool_connections_expired_total`)
)

// ErrPoolShutdown is returned by LeaseConnection once the pool has been
// shut down
var ErrPoolShutdown = errors.New("connection pool has been shut down")

// DialError reports a failed dial for a lease. It is a distinct type so
// callers can tell a transient connect failure apart from a pool that is
// no longer usable.
type DialError struct {
	Endpoint common.Endpoint
	Err      error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Endpoint, e.Err)
}

func (e *DialError) Unwrap() error { return e.Err }

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// pooledConn wraps a connection with its pool bookkeeping
type pooledConn struct {
	conn     IConnection
	leased   bool
	created  time.Time
	lastUsed time.Time
}

// bucket holds all pooled connections of one endpoint
type bucket struct {
	mu    sync.Mutex
	conns []*pooledConn
}

// Lease is the pool's ILease implementation
type Lease struct {
	pool     *ConnectionPool
	endpoint common.Endpoint
	pc       *pooledConn
	released atomic.Bool
}

// Connection returns the leased connection
func (l *Lease) Connection() IConnection {
	return l.pc.conn
}

// Release returns the connection to the pool. Broken connections are
// discarded instead of being reused. Releasing twice is a no-op.
func (l *Lease) Release() {
	if !l.released.CompareAndSwap(false, true) {
		return
	}
	l.pool.release(l.endpoint, l.pc)
}

// --------------------------------------------------------------------------
// Connection Pool
// --------------------------------------------------------------------------

// ConnectionPool implements IConnectionPool. It keeps one bucket of
// connections per endpoint, reclaims idle connections once their TTL
// expires and bounds the number of pooled connections.
type ConnectionPool struct {
	config    common.NetworkConfig
	connector IConnector
	buckets   *xsync.MapOf[string, *bucket]
	total     atomic.Int64
	stopping  atomic.Bool
	stopCh    chan struct{}
}

// NewConnectionPool creates a pool that dials through the given connector.
// If a connection TTL is configured, a background goroutine prunes idle
// connections until Shutdown is called.
func NewConnectionPool(config common.NetworkConfig, connector IConnector) *ConnectionPool {
	p := &ConnectionPool{
		config:    config,
		connector: connector,
		buckets:   xsync.NewMapOf[string, *bucket](),
		stopCh:    make(chan struct{}),
	}

	if ttl := config.ConnectionTTL(); ttl > 0 {
		go p.pruneLoop(ttl)
	}

	return p
}

// --------------------------------------------------------------------------
// Interface Methods (docu see pool.IConnectionPool)
// --------------------------------------------------------------------------

func (p *ConnectionPool) LeaseConnection(endpoint common.Endpoint) (ILease, error) {
	if p.stopping.Load() {
		return nil, ErrPoolShutdown
	}

	b, _ := p.buckets.LoadOrCompute(endpoint.String(), func() *bucket {
		return &bucket{}
	})

	metricLeases.Inc()

	// Reuse an idle connection if one is available
	b.mu.Lock()
	for i := 0; i < len(b.conns); i++ {
		pc := b.conns[i]
		if pc.leased {
			continue
		}
		if pc.conn.Broken() {
			// Drop broken connections on the spot
			b.conns = append(b.conns[:i], b.conns[i+1:]...)
			p.total.Add(-1)
			pc.conn.Close()
			i--
			continue
		}
		pc.leased = true
		pc.lastUsed = time.Now()
		b.mu.Unlock()
		return &Lease{pool: p, endpoint: endpoint, pc: pc}, nil
	}
	b.mu.Unlock()

	// No idle connection, dial a new one
	if max := int64(p.config.MaxOpenConnections); max > 0 && p.total.Load() >= max {
		// The bound applies to pooled connections; all of them are in
		// flight right now, so exceed it rather than stall the dispatch
		Logger.Warningf("connection pool exceeds max open connections (%d)", max)
	}

	conn, err := p.connector.Connect(endpoint)
	if err != nil {
		return nil, &DialError{Endpoint: endpoint, Err: err}
	}

	metricConnectionsOpened.Inc()
	Logger.Debugf("opened new connection to %s", endpoint)

	now := time.Now()
	pc := &pooledConn{conn: conn, leased: true, created: now, lastUsed: now}

	b.mu.Lock()
	b.conns = append(b.conns, pc)
	b.mu.Unlock()
	p.total.Add(1)

	return &Lease{pool: p, endpoint: endpoint, pc: pc}, nil
}

func (p *ConnectionPool) Shutdown() {
	if !p.stopping.CompareAndSwap(false, true) {
		return
	}
	close(p.stopCh)

	p.buckets.Range(func(_ string, b *bucket) bool {
		b.mu.Lock()
		for _, pc := range b.conns {
			pc.conn.Close()
		}
		b.conns = nil
		b.mu.Unlock()
		return true
	})

	Logger.Infof("connection pool shut down")
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// NumOpenConnections returns the current number of pooled connections
func (p *ConnectionPool) NumOpenConnections() int {
	return int(p.total.Load())
}

// release returns a connection to its bucket
func (p *ConnectionPool) release(endpoint common.Endpoint, pc *pooledConn) {
	b, ok := p.buckets.Load(endpoint.String())
	if !ok {
		// Bucket vanished during shutdown
		pc.conn.Close()
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if p.stopping.Load() || pc.conn.Broken() {
		for i, c := range b.conns {
			if c == pc {
				b.conns = append(b.conns[:i], b.conns[i+1:]...)
				p.total.Add(-1)
				break
			}
		}
		pc.conn.Close()
		return
	}

	pc.leased = false
	pc.lastUsed = time.Now()
}

// pruneLoop periodically closes idle connections that outlived the TTL
func (p *ConnectionPool) pruneLoop(ttl time.Duration) {
	interval := ttl / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.pruneExpired(ttl)
		}
	}
}

// pruneExpired removes idle connections whose last use is older than the TTL
func (p *ConnectionPool) pruneExpired(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)

	p.buckets.Range(func(endpoint string, b *bucket) bool {
		b.mu.Lock()
		kept := b.conns[:0]
		for _, pc := range b.conns {
			if !pc.leased && pc.lastUsed.Before(cutoff) {
				pc.conn.Close()
				p.total.Add(-1)
				metricConnectionsExpired.Inc()
				Logger.Debugf("closed expired connection to %s", endpoint)
				continue
			}
			kept = append(kept, pc)
		}
		b.conns = kept
		b.mu.Unlock()
		return true
	})
}
