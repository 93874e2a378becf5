package dispatch

import (
	"reflect"
	"testing"
	"time"

	"github.com/averde/docnet/netcomm/common"
)

// TestPrepareRequestDatabaseScope tests stripping of the database scope
// from the request path
func TestPrepareRequestDatabaseScope(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		wantDatabase string
		wantPath     string
	}{
		{"scoped path", "/_db/orders/_api/document/items", "orders", "/_api/document/items"},
		{"unscoped path", "/_api/version", common.SystemDatabase, "/_api/version"},
		{"bare scope", "/_db/orders", "orders", "/"},
		{"scope only with slash", "/_db/orders/", "orders", "/"},
	}

	clock := common.NewLogicalClock()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := prepareRequest(clock, nil, common.VerbGet, tt.path, nil, time.Second, nil)
			if req.Database != tt.wantDatabase {
				t.Errorf("expected database %q, got %q", tt.wantDatabase, req.Database)
			}
			if req.Path != tt.wantPath {
				t.Errorf("expected path %q, got %q", tt.wantPath, req.Path)
			}
		})
	}
}

// TestPrepareRequestHeaders tests the merge of caller headers with the
// derived clock and source headers
func TestPrepareRequestHeaders(t *testing.T) {
	clock := common.NewLogicalClock()
	identity := common.StaticIdentity{ServerRole: common.RoleCoordinator, ID: "CRDN-42"}

	callerHeaders := map[string]string{
		"x-custom":     "kept",
		"content-type": "application/json",
	}

	req := prepareRequest(clock, identity, common.VerbPost, "/_api/document/test", []byte("{}"), time.Second, callerHeaders)

	for k, v := range callerHeaders {
		if req.Headers[k] != v {
			t.Errorf("caller header %q lost or changed: %q", k, req.Headers[k])
		}
	}
	if req.Headers[common.HeaderRequestSource] != "CRDN-42" {
		t.Errorf("expected request source CRDN-42, got %q", req.Headers[common.HeaderRequestSource])
	}
	if _, ok := req.Headers[common.HeaderLogicalClock]; !ok {
		t.Error("logical clock header missing")
	}

	// The caller's map must not be mutated
	if len(callerHeaders) != 2 {
		t.Errorf("caller header map was mutated: %v", callerHeaders)
	}
}

// TestPrepareRequestSourceHeader tests the role-dependent derivation of the
// request source header
func TestPrepareRequestSourceHeader(t *testing.T) {
	tests := []struct {
		name       string
		identity   common.IIdentityProvider
		wantSource string
		wantSet    bool
	}{
		{"coordinator", common.StaticIdentity{ServerRole: common.RoleCoordinator, ID: "CRDN-1"}, "CRDN-1", true},
		{"dataserver", common.StaticIdentity{ServerRole: common.RoleDataServer, ID: "PRMR-1"}, "PRMR-1", true},
		{"agent", common.StaticIdentity{ServerRole: common.RoleAgent, ID: "AGNT-1"}, "AGENT-AGNT-1", true},
		{"no identity", nil, "", false},
		{"empty id", common.StaticIdentity{ServerRole: common.RoleCoordinator}, "", false},
		{"undefined role", common.StaticIdentity{ServerRole: common.RoleUndefined, ID: "X"}, "", false},
	}

	clock := common.NewLogicalClock()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := prepareRequest(clock, tt.identity, common.VerbGet, "/_api/version", nil, time.Second, nil)
			source, set := req.Headers[common.HeaderRequestSource]
			if set != tt.wantSet {
				t.Fatalf("expected header set=%t, got %t", tt.wantSet, set)
			}
			if set && source != tt.wantSource {
				t.Errorf("expected source %q, got %q", tt.wantSource, source)
			}
		})
	}
}

// TestPrepareRequestIdempotent tests that two requests built from the same
// inputs differ only in the clock header
func TestPrepareRequestIdempotent(t *testing.T) {
	clock := common.NewLogicalClock()
	identity := common.StaticIdentity{ServerRole: common.RoleDataServer, ID: "PRMR-7"}
	headers := map[string]string{"x-custom": "value"}
	payload := []byte(`{"doc":1}`)

	a := prepareRequest(clock, identity, common.VerbPost, "/_db/orders/_api/document/items", payload, 3*time.Second, headers)
	b := prepareRequest(clock, identity, common.VerbPost, "/_db/orders/_api/document/items", payload, 3*time.Second, headers)

	if a.Headers[common.HeaderLogicalClock] == b.Headers[common.HeaderLogicalClock] {
		t.Error("logical clock header did not advance between builds")
	}

	// Everything else must be identical
	a.Headers[common.HeaderLogicalClock] = ""
	b.Headers[common.HeaderLogicalClock] = ""
	if !reflect.DeepEqual(a, b) {
		t.Errorf("requests differ beyond the clock header:\nfirst:  %+v\nsecond: %+v", a, b)
	}
}
