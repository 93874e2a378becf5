package resolver

import (
	"testing"

	"github.com/averde/docnet/netcomm/common"
)

// TestResolveDestinations tests resolution of all supported destination forms
func TestResolveDestinations(t *testing.T) {
	r := NewClusterResolver()
	r.AddServer("PRMR-1", common.Endpoint{Scheme: "tcp", Addr: "10.0.0.1:8529"})
	r.AddServer("CRDN-2", common.Endpoint{Scheme: "tcp", Addr: "10.0.0.2:8529"})
	r.SetShardLeader("s2010021", "PRMR-1")

	tests := []struct {
		name        string
		destination common.Destination
		want        string
		wantErr     bool
	}{
		{"server", "server:PRMR-1", "tcp://10.0.0.1:8529", false},
		{"other server", "server:CRDN-2", "tcp://10.0.0.2:8529", false},
		{"shard leader", "shard:s2010021", "tcp://10.0.0.1:8529", false},
		{"direct endpoint", "tcp://10.0.0.9:8529", "tcp://10.0.0.9:8529", false},
		{"unknown server", "server:PRMR-9", "", true},
		{"leaderless shard", "shard:s999", "", true},
		{"garbage", "not-a-destination", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, err := r.Resolve(tt.destination)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve(%s) error = %v, wantErr %t", tt.destination, err, tt.wantErr)
			}
			if err == nil && endpoint.String() != tt.want {
				t.Errorf("Resolve(%s) = %s, want %s", tt.destination, endpoint, tt.want)
			}
		})
	}
}

// TestResolveObservesLeadershipChange tests that a shard destination follows
// the leader between two resolutions
func TestResolveObservesLeadershipChange(t *testing.T) {
	r := NewClusterResolver()
	r.AddServer("PRMR-1", common.Endpoint{Scheme: "tcp", Addr: "10.0.0.1:8529"})
	r.AddServer("PRMR-2", common.Endpoint{Scheme: "tcp", Addr: "10.0.0.2:8529"})
	r.SetShardLeader("s1", "PRMR-1")

	first, err := r.Resolve("shard:s1")
	if err != nil {
		t.Fatalf("first resolution failed: %v", err)
	}

	// Leadership moves between two attempts of the same dispatch
	r.SetShardLeader("s1", "PRMR-2")

	second, err := r.Resolve("shard:s1")
	if err != nil {
		t.Fatalf("second resolution failed: %v", err)
	}
	if first == second {
		t.Error("resolution did not follow the leadership change")
	}
	if second.Addr != "10.0.0.2:8529" {
		t.Errorf("expected new leader endpoint, got %s", second)
	}
}

// TestResolveRemovedServer tests that a removed server stops resolving
func TestResolveRemovedServer(t *testing.T) {
	r := NewClusterResolver()
	r.AddServer("PRMR-1", common.Endpoint{Scheme: "tcp", Addr: "10.0.0.1:8529"})

	if _, err := r.Resolve("server:PRMR-1"); err != nil {
		t.Fatalf("resolution failed before removal: %v", err)
	}

	r.RemoveServer("PRMR-1")

	if _, err := r.Resolve("server:PRMR-1"); err == nil {
		t.Error("expected resolution of a removed server to fail")
	}
}
