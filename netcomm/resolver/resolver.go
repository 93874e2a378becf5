package resolver

import (
	"fmt"
	"strings"

	"github.com/averde/docnet/netcomm/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("netcomm/resolver")

// destination prefixes understood by the cluster resolver
const (
	prefixServer = "server:"
	prefixShard  = "shard:"
	prefixTCP    = "tcp://"
)

// clusterResolver resolves destinations against an in-memory topology table.
// The table is fed by the cluster-membership machinery: servers register
// with their endpoint, shards point at the server id of their current
// leader. All maps are concurrent, updates and lookups need no external
// locking.
type clusterResolver struct {
	servers      *xsync.MapOf[string, common.Endpoint] // server id -> endpoint
	shardLeaders *xsync.MapOf[string, string]          // shard id -> server id
}

// NewClusterResolver creates an empty cluster resolver
func NewClusterResolver() *clusterResolver {
	return &clusterResolver{
		servers:      xsync.NewMapOf[string, common.Endpoint](),
		shardLeaders: xsync.NewMapOf[string, string](),
	}
}

// --------------------------------------------------------------------------
// Topology updates
// --------------------------------------------------------------------------

// AddServer registers or updates a server's endpoint
func (r *clusterResolver) AddServer(serverID string, endpoint common.Endpoint) {
	r.servers.Store(serverID, endpoint)
	Logger.Infof("registered server %s at %s", serverID, endpoint)
}

// RemoveServer removes a server from the topology table
func (r *clusterResolver) RemoveServer(serverID string) {
	r.servers.Delete(serverID)
	Logger.Infof("removed server %s", serverID)
}

// SetShardLeader points a shard at the server currently leading it
func (r *clusterResolver) SetShardLeader(shardID, serverID string) {
	r.shardLeaders.Store(shardID, serverID)
	Logger.Debugf("shard %s is now led by %s", shardID, serverID)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see resolver.IResolver)
// --------------------------------------------------------------------------

func (r *clusterResolver) Resolve(destination common.Destination) (common.Endpoint, error) {
	d := string(destination)

	switch {
	case strings.HasPrefix(d, prefixServer):
		return r.resolveServer(d[len(prefixServer):])

	case strings.HasPrefix(d, prefixShard):
		shardID := d[len(prefixShard):]
		serverID, ok := r.shardLeaders.Load(shardID)
		if !ok {
			return common.Endpoint{}, fmt.Errorf("no leader known for shard %s", shardID)
		}
		return r.resolveServer(serverID)

	case strings.HasPrefix(d, prefixTCP):
		// Concrete endpoint, no lookup needed
		return common.Endpoint{Scheme: "tcp", Addr: d[len(prefixTCP):]}, nil

	default:
		return common.Endpoint{}, fmt.Errorf("unknown destination format: %s", d)
	}
}

// resolveServer looks up a server id in the topology table
func (r *clusterResolver) resolveServer(serverID string) (common.Endpoint, error) {
	endpoint, ok := r.servers.Load(serverID)
	if !ok {
		return common.Endpoint{}, fmt.Errorf("unknown server id %s", serverID)
	}
	return endpoint, nil
}
