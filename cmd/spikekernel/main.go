package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"spikekernel/internal/config"
	"spikekernel/internal/kernel"
	"spikekernel/internal/metrics"
	"spikekernel/internal/storage"
	"spikekernel/internal/topology"
	"spikekernel/internal/tui"
	"spikekernel/internal/vp"
)

var (
	dataDir    string
	debug      bool
	configFile string
	preset     string
	threads    int
	totalVPs   int
	procs      int
	rank       int
	duration   float64
	seed       int64

	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "spikekernel",
		Short: "parallel spiking-network simulation kernel",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spikekernel", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "build the configured network and simulate it",
		RunE:  runSimulation,
	}
	addNetworkFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "simulate with a live activity view",
		RunE:  runLive,
	}
	addNetworkFlags(liveCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "show the kernel topology for a configuration",
		RunE:  showStatus,
	}
	addNetworkFlags(statusCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the spike trace of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in network presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, statusCmd, listCmd, plotCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addNetworkFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a built-in network preset")
	cmd.Flags().IntVar(&threads, "threads", 0, "threads per process (overrides config)")
	cmd.Flags().IntVar(&totalVPs, "total-vps", 0, "total virtual processes (overrides config)")
	cmd.Flags().IntVar(&procs, "processes", 0, "emulated process count (overrides config)")
	cmd.Flags().IntVar(&rank, "rank", -1, "this image's rank (overrides config)")
	cmd.Flags().Float64Var(&duration, "time", 0, "simulation time in ms (overrides config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "base random seed (overrides config)")
}

func setupLogger() error {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Encoding = "console"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	var err error
	logger, err = zapCfg.Build()
	return err
}

// loadConfig layers preset, config file, and flags, in that order.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if threads > 0 {
		cfg.Kernel.Threads = threads
		cfg.Kernel.TotalVirtualProcs = 0
	}
	if totalVPs > 0 {
		cfg.Kernel.TotalVirtualProcs = totalVPs
	}
	if procs > 0 {
		cfg.Kernel.Processes = procs
	}
	if rank >= 0 {
		cfg.Kernel.Rank = rank
	}
	if duration > 0 {
		cfg.Kernel.Duration = duration
	}
	if seed != 0 {
		cfg.Kernel.Seed = seed
	}

	// A VP total takes precedence: unless a thread count was given
	// explicitly, drop the layered-in default so the kernel derives the
	// thread count from the VP total.
	if cfg.Kernel.TotalVirtualProcs > 0 && threads == 0 {
		cfg.Kernel.Threads = 0
	}
	return cfg, cfg.Validate()
}

// buildKernel constructs a kernel for the configuration, applies the
// topology request through the validated status path, and wires the
// network.
func buildKernel(cfg *config.Config) (*kernel.Kernel, error) {
	k := kernel.New(
		kernel.WithLogger(logger),
		kernel.WithTopology(topology.NewFixed(cfg.Kernel.Processes, cfg.Kernel.Rank)),
		kernel.WithSeed(cfg.Kernel.Seed),
		kernel.WithResolution(cfg.Kernel.Resolution),
	)

	req := vp.StatusRequest{}
	if cfg.Kernel.Threads > 0 {
		req.LocalNumThreads = &cfg.Kernel.Threads
	}
	if cfg.Kernel.TotalVirtualProcs > 0 {
		req.TotalNumVirtualProcs = &cfg.Kernel.TotalVirtualProcs
	}
	if err := k.SetStatus(req); err != nil {
		return nil, err
	}

	// Population wiring draws from its own stream so network construction
	// does not disturb the per-VP simulation streams.
	wiring := rand.New(rand.NewSource(cfg.Kernel.Seed))
	populations := make(map[string][]int)

	for _, p := range cfg.Network {
		ids, err := k.Create(p.Model, p.Count, p.Params)
		if err != nil {
			return nil, fmt.Errorf("population %q: %w", p.Label, err)
		}
		populations[p.Label] = ids
	}
	for _, c := range cfg.Connect {
		for _, src := range populations[c.From] {
			for _, tgt := range populations[c.To] {
				if src == tgt || wiring.Float64() >= c.Probability {
					continue
				}
				if err := k.Connect(src, tgt, c.Weight, c.Delay); err != nil {
					return nil, fmt.Errorf("connect %s->%s: %w", c.From, c.To, err)
				}
			}
		}
	}
	return k, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	k, err := buildKernel(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := k.Simulate(ctx, cfg.Kernel.Duration); err != nil {
		return err
	}

	st := k.Status()
	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(storage.RunMetadata{
		Seed:                 st.Seed,
		Resolution:           st.Resolution,
		Duration:             cfg.Kernel.Duration,
		LocalNumThreads:      st.LocalNumThreads,
		TotalNumVirtualProcs: st.TotalNumVirtualProcs,
		NetworkSize:          st.NetworkSize,
		NumConnections:       st.NumConnections,
	}, k.Simulation.Trace())
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d nodes, %d connections, %.0f ms on %d threads\n",
		runID, st.NetworkSize, st.NumConnections, cfg.Kernel.Duration, st.LocalNumThreads)
	printMetrics(k.Simulation.Trace(), st)
	printTrace(k.Simulation.Trace(), st.Resolution)
	return nil
}

func printMetrics(trace []int, st kernel.Status) {
	ms := []metrics.Metric{
		metrics.NewFiringRate(st.Resolution, st.NetworkSize),
		metrics.NewBurstiness(),
		metrics.NewSilence(),
	}
	for step, spikes := range trace {
		metrics.Observe(ms, step, spikes)
	}
	for name, value := range metrics.Collect(ms) {
		fmt.Printf("  %s: %.3f\n", name, value)
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	k, err := buildKernel(cfg)
	if err != nil {
		return err
	}
	return tui.Run(k, cfg.Kernel.Duration)
}

func showStatus(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	k, err := buildKernel(cfg)
	if err != nil {
		return err
	}

	st := k.Status()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "local_num_threads\t%d\n", st.LocalNumThreads)
	fmt.Fprintf(w, "total_num_virtual_procs\t%d\n", st.TotalNumVirtualProcs)
	fmt.Fprintf(w, "num_processes\t%d\n", st.NumProcesses)
	fmt.Fprintf(w, "rank\t%d\n", st.Rank)
	fmt.Fprintf(w, "resolution\t%g ms\n", st.Resolution)
	fmt.Fprintf(w, "network_size\t%d\n", st.NetworkSize)
	fmt.Fprintf(w, "num_connections\t%d\n", st.NumConnections)
	fmt.Fprintf(w, "seed\t%d\n", st.Seed)
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nvp -> (rank, thread)")
	for i := 0; i < st.TotalNumVirtualProcs; i++ {
		local := ""
		if k.VP.IsLocalVP(i) {
			local = " *"
		}
		fmt.Printf("  vp %d -> (%d, %d)%s\n", i, k.VP.RankOf(i), k.VP.ThreadOf(i), local)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tNODES\tTHREADS\tVPS\tMS\tSPIKES")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.0f\t%d\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"),
			r.NetworkSize, r.LocalNumThreads, r.TotalNumVirtualProcs,
			r.Duration, r.TotalSpikes)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	_, counts, err := store.LoadTrace(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d spikes over %.0f ms\n\n", meta.ID, meta.TotalSpikes, meta.Duration)
	printTrace(counts, meta.Resolution)
	return nil
}

// printTrace renders the spike trace binned to one-millisecond columns.
func printTrace(trace []int, resolution float64) {
	if len(trace) == 0 {
		return
	}
	perBin := int(1.0 / resolution)
	if perBin < 1 {
		perBin = 1
	}
	binned := make([]float64, 0, len(trace)/perBin+1)
	for i := 0; i < len(trace); i += perBin {
		sum := 0
		for j := i; j < i+perBin && j < len(trace); j++ {
			sum += trace[j]
		}
		binned = append(binned, float64(sum))
	}
	fmt.Println(asciigraph.Plot(binned,
		asciigraph.Height(12),
		asciigraph.Caption("spikes per ms")))
}
