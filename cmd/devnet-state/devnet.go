package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/NethermindEth/juno-devnet/core/felt"
	"github.com/NethermindEth/juno-devnet/core/state"
	"github.com/NethermindEth/juno-devnet/node"
	"github.com/NethermindEth/juno-devnet/utils"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var Version string

const (
	configF        = "config"
	logLevelF      = "log-level"
	colourF        = "colour"
	forkNetworkF   = "fork-network"
	forkBlockF     = "fork-block"
	forkTimeoutF   = "fork-timeout"
	forkRetriesF   = "fork-retries"
	forkCacheSizeF = "fork-cache-size"
	loadPathF      = "load-path"
	dumpPathF      = "dump-path"
	metricsF       = "metrics"
	metricsHostF   = "metrics-host"
	metricsPortF   = "metrics-port"

	defaultConfig        = ""
	defaultColour        = true
	defaultForkNetwork   = ""
	defaultForkBlock     = "latest"
	defaultForkRetries   = uint64(2)
	defaultForkCacheSize = 1024
	defaultLoadPath      = ""
	defaultDumpPath      = ""
	defaultMetrics       = false
	defaultMetricsHost   = "localhost"
	defaultMetricsPort   = uint16(9090)

	envPrefix = "DEVNET"

	configFlagUsage   = "The YAML configuration file."
	logLevelFlagUsage = "Options: debug, info, warn, error."
	colourUsage       = "Use `--colour=false` command to disable colourized outputs (ANSI Escape Codes)."
	forkNetworkUsage  = "JSON-RPC endpoint of the Starknet network to fork. " +
		"State not written locally is read from it. Leave empty to start from an empty state."
	forkBlockUsage = "Block of the forked network to read from: a number, a 0x-prefixed hash or latest. " +
		"latest is resolved once at startup."
	forkTimeoutUsage   = "Upper bound on a single read from the forked network, retries included."
	forkRetriesUsage   = "Number of times a failed request to the forked network is retried."
	forkCacheSizeUsage = "Number of responses from the forked network kept in memory. 0 disables the cache."
	loadPathUsage      = "State dump applied at startup."
	dumpPathUsage      = "File the state is dumped to when serve shuts down."
	metricsUsage       = "Enables the Prometheus metrics endpoint on the default port."
	metricsHostUsage   = "The interface on which the Prometheus endpoint will listen for requests."
	metricsPortUsage   = "The port on which the Prometheus endpoint will listen for requests."
)

type NewDevnetFn func(ctx context.Context, cfg *node.Config) (*node.Devnet, error)

// NewCmd builds the devnet-state command tree. Every subcommand loads the
// configuration from flags, environment and the optional config file, in that
// order of precedence, and queries a freshly built devnet state.
func NewCmd(newDevnetFn NewDevnetFn) *cobra.Command {
	var cfgFile string
	cfg := new(node.Config)

	cmd := &cobra.Command{
		Use:           "devnet-state [flags] <command>",
		Short:         "Inspect the state of a local Starknet devnet, optionally forked from a live network.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultLogLevel := utils.INFO
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, configF, defaultConfig, configFlagUsage)
	flags.Var(&defaultLogLevel, logLevelF, logLevelFlagUsage)
	flags.Bool(colourF, defaultColour, colourUsage)
	flags.String(forkNetworkF, defaultForkNetwork, forkNetworkUsage)
	flags.String(forkBlockF, defaultForkBlock, forkBlockUsage)
	flags.Duration(forkTimeoutF, state.DefaultOriginTimeout, forkTimeoutUsage)
	flags.Uint64(forkRetriesF, defaultForkRetries, forkRetriesUsage)
	flags.Int(forkCacheSizeF, defaultForkCacheSize, forkCacheSizeUsage)
	flags.String(loadPathF, defaultLoadPath, loadPathUsage)
	flags.String(dumpPathF, defaultDumpPath, dumpPathUsage)
	flags.Bool(metricsF, defaultMetrics, metricsUsage)
	flags.String(metricsHostF, defaultMetricsHost, metricsHostUsage)
	flags.Uint16(metricsPortF, defaultMetricsPort, metricsPortUsage)

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		v := viper.New()
		if cfgFile != "" {
			v.SetConfigType("yaml")
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return err
			}
		}

		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()

		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		return v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		)))
	}

	withDevnet := func(run func(cmd *cobra.Command, devnet *node.Devnet, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			devnet, err := newDevnetFn(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer devnet.Close()
			return run(cmd, devnet, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "storage <address> <key>",
			Short: "Print the value stored under key in the contract at address.",
			Args:  cobra.ExactArgs(2),
			RunE: withDevnet(func(cmd *cobra.Command, devnet *node.Devnet, args []string) error {
				addr, err := parseFelt[felt.Address](args[0])
				if err != nil {
					return err
				}
				key, err := parseFelt[felt.StorageKey](args[1])
				if err != nil {
					return err
				}
				return devnet.View(func(r state.Reader) error {
					value, err := r.ContractStorage(addr, key)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), value.String())
					return err
				})
			}),
		},
		&cobra.Command{
			Use:   "nonce <address>",
			Short: "Print the nonce of the account at address.",
			Args:  cobra.ExactArgs(1),
			RunE: withDevnet(func(cmd *cobra.Command, devnet *node.Devnet, args []string) error {
				addr, err := parseFelt[felt.Address](args[0])
				if err != nil {
					return err
				}
				return devnet.View(func(r state.Reader) error {
					nonce, err := r.ContractNonce(addr)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), nonce.String())
					return err
				})
			}),
		},
		&cobra.Command{
			Use:   "class-hash-at <address>",
			Short: "Print the hash of the class deployed at address.",
			Args:  cobra.ExactArgs(1),
			RunE: withDevnet(func(cmd *cobra.Command, devnet *node.Devnet, args []string) error {
				addr, err := parseFelt[felt.Address](args[0])
				if err != nil {
					return err
				}
				return devnet.View(func(r state.Reader) error {
					classHash, err := r.ContractClassHash(addr)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(cmd.OutOrStdout(), classHash.String())
					return err
				})
			}),
		},
		&cobra.Command{
			Use:   "class <class-hash>",
			Short: "Print the class declared under class-hash as JSON.",
			Args:  cobra.ExactArgs(1),
			RunE: withDevnet(func(cmd *cobra.Command, devnet *node.Devnet, args []string) error {
				classHash, err := parseFelt[felt.ClassHash](args[0])
				if err != nil {
					return err
				}
				return devnet.View(func(r state.Reader) error {
					class, err := r.Class(classHash)
					if err != nil {
						return err
					}
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(class)
				})
			}),
		},
		&cobra.Command{
			Use:   "inspect <dump-file>",
			Short: "Print the changes recorded in a state dump as tables.",
			Args:  cobra.ExactArgs(1),
			PreRun: func(_ *cobra.Command, args []string) {
				cfg.LoadPath = args[0]
			},
			RunE: withDevnet(func(cmd *cobra.Command, devnet *node.Devnet, _ []string) error {
				printStateDiff(cmd.OutOrStdout(), devnet.Snapshot())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "config",
			Short: "Print the effective configuration as YAML.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close()
				return enc.Encode(cfg)
			},
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Keep the devnet state open and serve metrics until interrupted.",
			Args:  cobra.NoArgs,
			RunE: withDevnet(func(cmd *cobra.Command, devnet *node.Devnet, _ []string) error {
				devnet.Run(cmd.Context())
				return nil
			}),
		},
	)
	return cmd
}

func parseFelt[F felt.FeltLike](s string) (*F, error) {
	f, err := felt.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	v := F(*f)
	return &v, nil
}
