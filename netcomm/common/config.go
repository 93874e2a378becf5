package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Connection pool configuration struct
// --------------------------------------------------------------------------

// NetworkConfig holds the configuration of the connection pool
type NetworkConfig struct {
	// MaxOpenConnections bounds the number of pooled physical connections
	MaxOpenConnections int

	// ConnectionTTLSecond is the time in seconds after which an idle pooled
	// connection is closed and removed. 0 disables expiry.
	ConnectionTTLSecond int

	// VerifyHosts controls TLS host verification for encrypted endpoints
	VerifyHosts bool

	// Logging configuration
	LogLevel string
}

// ConnectionTTL returns the TTL as a duration
func (c *NetworkConfig) ConnectionTTL() time.Duration {
	return time.Duration(c.ConnectionTTLSecond) * time.Second
}

// String returns a formatted string representation of the configuration
func (c *NetworkConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Connection Pool")
	addField("Max Open Connections", strconv.Itoa(c.MaxOpenConnections))
	addField("Connection TTL", fmt.Sprintf("%d sec", c.ConnectionTTLSecond))
	addField("Verify Hosts", fmt.Sprintf("%t", c.VerifyHosts))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// Client configuration struct (used by the CLI)
// --------------------------------------------------------------------------

// ClientConfig holds the configuration of a command line client talking to
// the cluster through the dispatch layer
type ClientConfig struct {
	// ClusterMembers maps server ids to their endpoints
	ClusterMembers map[string]string

	// TimeoutSecond is the total budget of one dispatch, including retries
	TimeoutSecond int

	// RetryNotFound opts in to retrying "data source not found" responses
	RetryNotFound bool

	// Network is the configuration of the underlying connection pool
	Network NetworkConfig
}

// Timeout returns the dispatch budget as a duration
func (c *ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecond) * time.Second
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Not Found", fmt.Sprintf("%t", c.RetryNotFound))

	addSection("Cluster Members")
	for id, endpoint := range c.ClusterMembers {
		addField(id, endpoint)
	}

	sb.WriteString(c.Network.String())

	return sb.String()
}
