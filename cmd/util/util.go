package util

import (
	"fmt"
	"strings"

	"github.com/averde/docnet/netcomm/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds the common cluster connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The total timeout in seconds of one dispatch, including all retries"))

	key = "cluster-members"
	cmd.PersistentFlags().String(key, "", WrapString("Comma-separated list of cluster members in the format 'PRMR-1=localhost:8529,CRDN-2=localhost:8530,...'"))

	key = "shard-leaders"
	cmd.PersistentFlags().String(key, "", WrapString("Comma-separated list of shard leaders in the format 'shardId=serverId,...'"))

	key = "retry-not-found"
	cmd.PersistentFlags().Bool(key, false, WrapString("Also retry 'data source not found' responses, useful while shards are still materializing"))

	key = "network-max-open-connections"
	cmd.PersistentFlags().Int(key, 128, WrapString("Maximum number of pooled physical connections"))

	key = "network-connection-ttl"
	cmd.PersistentFlags().Int(key, 300, WrapString("Time in seconds after which an idle pooled connection is closed (0 disables expiry)"))

	key = "network-verify-hosts"
	cmd.PersistentFlags().Bool(key, true, WrapString("Verify peer hostnames for encrypted endpoints"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("docnet")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() (*common.ClientConfig, error) {
	conf := &common.ClientConfig{
		TimeoutSecond: viper.GetInt("timeout"),
		RetryNotFound: viper.GetBool("retry-not-found"),
		Network: common.NetworkConfig{
			MaxOpenConnections:  viper.GetInt("network-max-open-connections"),
			ConnectionTTLSecond: viper.GetInt("network-connection-ttl"),
			VerifyHosts:         viper.GetBool("network-verify-hosts"),
			LogLevel:            viper.GetString("log-level"),
		},
	}

	// parse cluster members
	if members := viper.GetString("cluster-members"); members != "" {
		conf.ClusterMembers = make(map[string]string)
		for _, member := range strings.Split(members, ",") {
			parts := strings.Split(member, "=")
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid cluster member format: %s (expected ID=address)", member)
			}
			conf.ClusterMembers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}

	return conf, nil
}

// GetShardLeaders parses the shard leader table from viper
func GetShardLeaders() (map[string]string, error) {
	leaders := make(map[string]string)
	if raw := viper.GetString("shard-leaders"); raw != "" {
		for _, entry := range strings.Split(raw, ",") {
			parts := strings.Split(entry, "=")
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid shard leader format: %s (expected shardId=serverId)", entry)
			}
			leaders[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return leaders, nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
