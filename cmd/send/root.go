package send

import (
	"fmt"
	"time"

	"github.com/averde/docnet/cmd/util"
	"github.com/averde/docnet/netcomm/common"
	"github.com/averde/docnet/netcomm/dispatch"
	"github.com/averde/docnet/netcomm/pool"
	"github.com/averde/docnet/netcomm/resolver"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	dispatcher *dispatch.Dispatcher
	connPool   pool.IConnectionPool
	clientConf *common.ClientConfig

	// SendCmd sends a single operation to a cluster destination
	SendCmd = &cobra.Command{
		Use:   "send [destination] [verb] [path] [payload]",
		Short: "Send an operation to a cluster destination",
		Long: util.WrapString(`Send an operation to a logical destination inside the cluster and print the result. The destination may be a concrete endpoint (tcp://host:port), a server (server:PRMR-1) or a shard leader (shard:s2010021). Transient failures are retried until the timeout is exhausted unless --no-retry is given.`),
		Args:              cobra.RangeArgs(3, 4),
		PersistentPreRunE: setupDispatcher,
		RunE:              run,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add the common cluster connection flags
	util.SetupClientFlags(SendCmd)

	SendCmd.PersistentFlags().Bool("no-retry", false, util.WrapString("Perform exactly one attempt instead of retrying until the timeout"))
	SendCmd.PersistentFlags().String("server-id", "", util.WrapString("Cluster identity to stamp onto the request as its origin"))
	SendCmd.PersistentFlags().String("server-role", "coordinator", util.WrapString("Cluster role of this client (coordinator, dataserver, agent)"))
}

// setupDispatcher wires resolver, pool and dispatcher from the configuration
func setupDispatcher(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	conf, err := util.GetClientConfig()
	if err != nil {
		return err
	}
	clientConf = conf

	common.InitLoggers(conf.Network.LogLevel)

	// Build the topology table
	res := resolver.NewClusterResolver()
	for id, addr := range conf.ClusterMembers {
		res.AddServer(id, common.Endpoint{Scheme: "tcp", Addr: addr})
	}
	leaders, err := util.GetShardLeaders()
	if err != nil {
		return err
	}
	for shardID, serverID := range leaders {
		res.SetShardLeader(shardID, serverID)
	}

	connPool = pool.NewConnectionPool(conf.Network, pool.NewTCPConnector(5*time.Second))

	var identity common.IIdentityProvider
	if id := viper.GetString("server-id"); id != "" {
		identity = common.StaticIdentity{ID: id, ServerRole: parseRole(viper.GetString("server-role"))}
	}

	dispatcher = dispatch.NewDispatcher(connPool, res, common.NewLogicalClock(), identity, dispatch.NewLifecycle())
	return nil
}

// parseRole converts a role flag value to a common.Role
func parseRole(role string) common.Role {
	switch role {
	case "coordinator":
		return common.RoleCoordinator
	case "dataserver":
		return common.RoleDataServer
	case "agent":
		return common.RoleAgent
	default:
		return common.RoleUndefined
	}
}

// run performs the dispatch and prints the outcome
func run(_ *cobra.Command, args []string) error {
	defer connPool.Shutdown()

	destination := common.Destination(args[0])
	verb := common.Verb(args[1])
	path := args[2]
	var payload []byte
	if len(args) == 4 {
		payload = []byte(args[3])
	}

	var future *dispatch.Future
	if viper.GetBool("no-retry") {
		future = dispatcher.SendRequest(destination, verb, path, payload, clientConf.Timeout(), nil)
	} else {
		future = dispatcher.SendRequestRetry(destination, verb, path, payload, clientConf.Timeout(), nil, clientConf.RetryNotFound)
	}

	resp := future.Get()
	if !resp.Ok() {
		return fmt.Errorf("dispatch to %s failed: %s (status %d)", resp.Destination, resp.Error, resp.StatusCode)
	}

	fmt.Printf("status=%d\n", resp.StatusCode)
	if len(resp.Body) > 0 {
		fmt.Println(string(resp.Body))
	}
	return nil
}
