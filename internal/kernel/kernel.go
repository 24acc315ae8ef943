// Package kernel assembles the subsystem managers into one simulation
// kernel and implements the reconfiguration cascade that a virtual-process
// topology change triggers.
package kernel

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"spikekernel/internal/connections"
	"spikekernel/internal/models"
	"spikekernel/internal/nodes"
	"spikekernel/internal/plasticity"
	"spikekernel/internal/random"
	"spikekernel/internal/sched"
	"spikekernel/internal/simulation"
	"spikekernel/internal/topology"
	"spikekernel/internal/vp"
)

// Kernel owns every subsystem manager. It is the vp.KernelState the
// precondition gate queries and the vp.ReconfigurationSink the gate
// delegates to.
type Kernel struct {
	log  *zap.Logger
	topo topology.Provider

	Pool        *sched.Pool
	VP          *vp.Manager
	Nodes       *nodes.Manager
	Connections *connections.Manager
	Models      *models.Manager
	Plasticity  *plasticity.Manager
	Random      *random.Manager
	Simulation  *simulation.Manager
}

type options struct {
	log              *zap.Logger
	topo             topology.Provider
	override         vp.OverrideSource
	singleThreadOnly bool
	seed             int64
	resolution       float64
}

// Option configures kernel construction.
type Option func(*options)

// WithLogger routes kernel logging through the given logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithTopology sets the process layout. Default is a single process.
func WithTopology(t topology.Provider) Option {
	return func(o *options) { o.topo = t }
}

// WithOverride sets the external thread-count override source. Default
// reads the process environment.
func WithOverride(src vp.OverrideSource) Option {
	return func(o *options) { o.override = src }
}

// WithSingleThreadOnly caps the kernel at one thread per process.
func WithSingleThreadOnly() Option {
	return func(o *options) { o.singleThreadOnly = true }
}

// WithSeed sets the base seed for the per-VP random streams.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithResolution sets the simulation step size in milliseconds.
func WithResolution(ms float64) Option {
	return func(o *options) { o.resolution = ms }
}

// New constructs a kernel with one thread per process.
func New(opts ...Option) *Kernel {
	o := options{
		log:        zap.NewNop(),
		topo:       topology.Single{},
		override:   vp.NewEnvOverride(),
		seed:       143202461,
		resolution: 0.1,
	}
	for _, opt := range opts {
		opt(&o)
	}

	k := &Kernel{log: o.log, topo: o.topo}
	k.Pool = sched.NewPool()
	k.Models = models.NewManager()
	k.Plasticity = plasticity.NewManager()
	k.Random = random.NewManager(o.seed)

	k.VP = vp.NewManager(vp.Deps{
		Topology:         o.topo,
		Lanes:            k.Pool,
		State:            k,
		Sink:             k,
		Override:         o.override,
		Log:              o.log.Named("vp"),
		SingleThreadOnly: o.singleThreadOnly,
	})

	k.Nodes = nodes.NewManager(k.VP)
	k.Connections = connections.NewManager(1)
	k.Simulation = simulation.NewManager(simulation.Deps{
		Pool:        k.Pool,
		Nodes:       k.Nodes,
		Connections: k.Connections,
		Random:      k.Random,
		Layout:      k.VP,
		Log:         o.log.Named("simulation"),
		Resolution:  o.resolution,
	})

	k.VP.Initialize(true)
	k.Random.Reconfigure(1, o.topo.NumProcesses(), o.topo.Rank())
	return k
}

// NodesExist implements vp.KernelState.
func (k *Kernel) NodesExist() bool { return k.Nodes.Exist() }

// DelayExtremaUserSet implements vp.KernelState.
func (k *Kernel) DelayExtremaUserSet() bool { return k.Connections.DelayExtremaUserSet() }

// HasBeenSimulated implements vp.KernelState.
func (k *Kernel) HasBeenSimulated() bool { return k.Simulation.HasBeenSimulated() }

// ModelDefaultsModified implements vp.KernelState.
func (k *Kernel) ModelDefaultsModified() bool { return k.Models.Modified() }

// StructuralPlasticityEnabled implements vp.KernelState.
func (k *Kernel) StructuralPlasticityEnabled() bool { return k.Plasticity.Enabled() }

// ChangeNumberOfThreads implements vp.ReconfigurationSink. It adopts the
// new count in the VP manager and rebuilds every thread-indexed structure.
// The precondition gate has already established that no nodes or
// connections exist, so the resizes below cannot fail; the upfront checks
// keep the all-or-nothing contract honest against misuse.
func (k *Kernel) ChangeNumberOfThreads(n int) error {
	if k.Nodes.Exist() {
		return fmt.Errorf("nodes exist")
	}
	if k.Connections.Count() > 0 {
		return fmt.Errorf("connections exist")
	}

	k.VP.SetNumThreads(n)

	if err := k.Nodes.Resize(n); err != nil {
		return err
	}
	if err := k.Connections.Resize(n); err != nil {
		return err
	}
	k.Random.Reconfigure(n, k.topo.NumProcesses(), k.topo.Rank())
	k.Simulation.Reset()

	k.log.Info("number of threads changed",
		zap.Int("local_num_threads", n),
		zap.Int("total_num_virtual_procs", k.VP.NumVirtualProcesses()))
	return nil
}

// Reset returns the kernel to its post-construction state: no nodes, no
// connections, built-in model defaults, one thread per process.
func (k *Kernel) Reset() {
	k.Nodes.Clear()
	k.Connections.Clear()
	k.Models.Reset()
	k.Plasticity.Reset()
	k.Simulation.Reset()
	k.VP.Initialize(true)
	if err := k.Nodes.Resize(1); err != nil {
		panic(err) // tables are empty after Clear
	}
	if err := k.Connections.Resize(1); err != nil {
		panic(err)
	}
	k.Random.Reconfigure(1, k.topo.NumProcesses(), k.topo.Rank())
	k.log.Debug("kernel reset")
}

// Create adds a population of n nodes of the given model, with the
// kernel's resolution injected unless the overrides carry their own.
func (k *Kernel) Create(model string, n int, overrides models.Params) ([]int, error) {
	p := overrides.Clone()
	if p == nil {
		p = models.Params{}
	}
	if _, ok := p["dt"]; !ok {
		p["dt"] = k.Simulation.Resolution()
	}
	return k.Nodes.Create(model, n, func() (models.Neuron, error) {
		return k.Models.Create(model, p)
	})
}

// Connect stores a synapse between two nodes. Non-local targets are
// ignored; every rank stores only the connections its threads deliver.
func (k *Kernel) Connect(source, target int, weight, delay float64) error {
	node := k.Nodes.Get(target)
	if node == nil {
		return nil
	}
	return k.Connections.Connect(connections.Connection{
		Source: source,
		Target: target,
		Weight: weight,
		Delay:  delay,
	}, k.VP.ThreadOf(node.VP))
}

// Simulate advances the network by ms milliseconds.
func (k *Kernel) Simulate(ctx context.Context, ms float64) error {
	return k.Simulation.Run(ctx, ms)
}
