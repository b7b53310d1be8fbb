package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/NethermindEth/juno-devnet/clients/origin"
	"github.com/NethermindEth/juno-devnet/core"
	"github.com/NethermindEth/juno-devnet/core/felt"
	"github.com/NethermindEth/juno-devnet/core/state"
	_ "github.com/NethermindEth/juno-devnet/encoder/registry"
	"github.com/NethermindEth/juno-devnet/utils"
	"github.com/NethermindEth/juno-devnet/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc"
)

// ForkConfig points the devnet at a remote network. An empty URL means the
// devnet starts from an empty world.
type ForkConfig struct {
	URL       string        `mapstructure:"fork-network" yaml:"fork-network" validate:"omitempty,rpc_url"`
	Block     string        `mapstructure:"fork-block" yaml:"fork-block" validate:"block_id"`
	Timeout   time.Duration `mapstructure:"fork-timeout" yaml:"fork-timeout" validate:"gt=0"`
	Retries   uint64        `mapstructure:"fork-retries" yaml:"fork-retries" validate:"lte=10"`
	CacheSize int           `mapstructure:"fork-cache-size" yaml:"fork-cache-size" validate:"gte=0"`
}

// Config is the top-level devnet state configuration.
type Config struct {
	LogLevel utils.LogLevel `mapstructure:"log-level" yaml:"log-level"`
	Colour   bool           `mapstructure:"colour" yaml:"colour"`

	Fork ForkConfig `mapstructure:",squash" yaml:",inline"`

	// LoadPath is a dump applied at startup, DumpPath is written on shutdown
	LoadPath string `mapstructure:"load-path" yaml:"load-path,omitempty"`
	DumpPath string `mapstructure:"dump-path" yaml:"dump-path,omitempty"`

	Metrics     bool   `mapstructure:"metrics" yaml:"metrics"`
	MetricsHost string `mapstructure:"metrics-host" yaml:"metrics-host" validate:"required_if=Metrics true"`
	MetricsPort uint16 `mapstructure:"metrics-port" yaml:"metrics-port"`
}

type service interface {
	Run(ctx context.Context) error
}

// Devnet owns the canonical state of a local network. All access to it is
// serialised: one world at a time.
type Devnet struct {
	cfg *Config
	log utils.SimpleLogger

	mu    sync.Mutex
	state *state.State

	origin   *origin.Client
	registry *prometheus.Registry
	services []service
}

// New validates cfg, connects to the fork origin if one is configured and builds
// the devnet state. A latest fork block is resolved to a number here, once.
func New(ctx context.Context, cfg *Config) (*Devnet, error) {
	if err := validator.Validator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := utils.NewZapLogger(cfg.LogLevel, cfg.Colour)
	if err != nil {
		return nil, err
	}
	return newDevnet(ctx, cfg, log)
}

func newDevnet(ctx context.Context, cfg *Config, log utils.SimpleLogger) (*Devnet, error) {
	d := &Devnet{
		cfg:      cfg,
		log:      log,
		registry: prometheus.NewRegistry(),
	}

	opts := []state.Option{
		state.WithLogger(log),
		state.WithOriginTimeout(cfg.Fork.Timeout),
	}
	if cfg.Metrics {
		opts = append(opts, state.WithListener(makeStateMetrics(d.registry)))
	}

	if cfg.Fork.URL != "" {
		blockID, err := origin.ParseBlockID(cfg.Fork.Block)
		if err != nil {
			return nil, fmt.Errorf("parse fork block: %w", err)
		}

		client, err := origin.Dial(ctx, cfg.Fork.URL, blockID)
		if err != nil {
			return nil, err
		}
		client.WithLogger(log).
			WithTimeout(cfg.Fork.Timeout).
			WithMaxRetries(cfg.Fork.Retries).
			WithCacheSize(cfg.Fork.CacheSize)
		if cfg.Metrics {
			client.WithListener(makeOriginMetrics(d.registry))
		}

		if err = client.Pin(ctx); err != nil {
			client.Close()
			return nil, fmt.Errorf("resolve fork block: %w", err)
		}
		log.Infow("Forking", "network", cfg.Fork.URL, "block", client.BlockID())

		d.origin = client
		opts = append(opts, state.WithOrigin(client))
	}
	d.state = state.New(opts...)

	if cfg.LoadPath != "" {
		if err := d.loadFile(cfg.LoadPath); err != nil {
			d.Close()
			return nil, err
		}
		log.Infow("Loaded state", "path", cfg.LoadPath)
	}

	if cfg.Metrics {
		listener, err := net.Listen("tcp", net.JoinHostPort(cfg.MetricsHost, strconv.FormatUint(uint64(cfg.MetricsPort), 10)))
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("listen on metrics port: %w", err)
		}
		d.services = append(d.services, makeMetrics(listener, d.registry))
	}
	return d, nil
}

// Forked reports whether reads fall back to a remote network
func (d *Devnet) Forked() bool {
	return d.origin != nil
}

// Update runs fn against the canonical state. The writes fn makes are committed
// and returned as one diff if it succeeds and dropped if it fails.
func (d *Devnet) Update(fn func(state.Writer) error) (*core.StateDiff, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := fn(d.state); err != nil {
		d.state.Discard()
		return nil, err
	}
	return d.state.Commit(), nil
}

// View runs fn against the canonical state without the ability to write.
func (d *Devnet) View(fn func(state.Reader) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.state)
}

// Simulate runs fn against a copy of the canonical state and returns what fn
// wrote. The canonical state is never changed.
func (d *Devnet) Simulate(fn func(state.Writer) error) (*core.StateDiff, error) {
	d.mu.Lock()
	child := d.state.Copy()
	d.mu.Unlock()

	child.Commit()
	if err := fn(child); err != nil {
		return nil, err
	}
	return child.StateDiff(), nil
}

// VisitedPCs returns the program counters the canonical state has recorded for classHash
func (d *Devnet) VisitedPCs(classHash *felt.ClassHash) []uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.VisitedPCs(classHash)
}

// Reset drops every local change. A forked devnet keeps its origin.
func (d *Devnet) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Reset()
}

// Snapshot lists every local change, committed or not
func (d *Devnet) Snapshot() *core.StateDiff {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Dump()
}

// Dump writes every local change to w
func (d *Devnet) Dump(w io.Writer) error {
	data, err := d.Snapshot().MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Load replaces the local changes with the ones read from r. On error the
// state is left as it was.
func (d *Devnet) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	diff := new(core.StateDiff)
	if err = diff.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	fresh := d.state.Copy()
	fresh.Reset()
	if err = fresh.Apply(diff); err != nil {
		return err
	}
	fresh.Commit()
	d.state = fresh
	return nil
}

func (d *Devnet) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()
	return d.Load(f)
}

func (d *Devnet) dumpFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dump: %w", err)
	}
	if err = d.Dump(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Run serves the optional services until ctx is cancelled. Any errors returned
// by a service are logged and stop the others.
func (d *Devnet) Run(ctx context.Context) {
	defer d.Close()

	ctx, cancel := context.WithCancel(ctx)
	wg := conc.NewWaitGroup()
	for _, s := range d.services {
		wg.Go(func() {
			if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.log.Errorw("Service error", "name", reflect.TypeOf(s), "err", err)
				cancel()
			}
		})
	}
	defer wg.Wait()

	<-ctx.Done()
	cancel()
	d.log.Infow("Shutting down devnet...")

	if d.cfg.DumpPath != "" {
		if err := d.dumpFile(d.cfg.DumpPath); err != nil {
			d.log.Errorw("Error while dumping state", "path", d.cfg.DumpPath, "err", err)
		} else {
			d.log.Infow("Dumped state", "path", d.cfg.DumpPath)
		}
	}
}

func (d *Devnet) Close() {
	if d.origin != nil {
		d.origin.Close()
	}
}

// Registry holds the devnet's metrics
func (d *Devnet) Registry() *prometheus.Registry {
	return d.registry
}
