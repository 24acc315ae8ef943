package kernel_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"spikekernel/internal/kernel"
	"spikekernel/internal/models"
	"spikekernel/internal/topology"
	"spikekernel/internal/vp"
)

func intp(n int) *int { return &n }

var _ = Describe("Kernel", func() {
	var k *kernel.Kernel

	BeforeEach(func() {
		k = kernel.New(
			kernel.WithTopology(topology.NewFixed(4, 0)),
			kernel.WithOverride(vp.NoOverride{}),
			kernel.WithSeed(12345),
		)
	})

	Describe("construction", func() {
		It("starts with one thread and one VP per process", func() {
			st := k.Status()
			Expect(st.LocalNumThreads).To(Equal(1))
			Expect(st.TotalNumVirtualProcs).To(Equal(4))
			Expect(st.NetworkSize).To(BeZero())
			Expect(st.Simulated).To(BeFalse())
		})
	})

	Describe("reconfiguration cascade", func() {
		It("derives the thread count from a requested VP total", func() {
			Expect(k.SetStatus(vp.StatusRequest{TotalNumVirtualProcs: intp(8)})).To(Succeed())

			st := k.Status()
			Expect(st.LocalNumThreads).To(Equal(2))
			Expect(st.TotalNumVirtualProcs).To(Equal(8))
		})

		It("resizes every thread-indexed subsystem", func() {
			Expect(k.SetStatus(vp.StatusRequest{LocalNumThreads: intp(3)})).To(Succeed())

			Expect(k.Pool.Lanes()).To(Equal(3))
			Expect(k.Random.Streams()).To(Equal(3))

			// Node tables follow the new layout: 3 local threads.
			_, err := k.Create("lif", 12, nil)
			Expect(err).NotTo(HaveOccurred())
			total := 0
			for t := 0; t < 3; t++ {
				total += len(k.Nodes.Local(t))
			}
			// 12 nodes round-robin over 12 VPs, 3 of them local to rank 0.
			Expect(total).To(Equal(3))
		})

		It("rejects arithmetically inconsistent requests and keeps state", func() {
			err := k.SetStatus(vp.StatusRequest{TotalNumVirtualProcs: intp(10)})
			Expect(err).To(MatchError(vp.ErrBadProperty))
			Expect(k.Status().LocalNumThreads).To(Equal(1))
		})
	})

	Describe("precondition gate", func() {
		It("freezes the topology once nodes exist", func() {
			_, err := k.Create("lif", 5, nil)
			Expect(err).NotTo(HaveOccurred())

			err = k.SetStatus(vp.StatusRequest{LocalNumThreads: intp(2)})
			Expect(err).To(MatchError(vp.ErrPreconditions))
			Expect(err.Error()).To(ContainSubstring("nodes exist"))
		})

		It("freezes the topology once delay extrema are set", func() {
			Expect(k.Connections.SetDelayExtrema(0.5, 5.0)).To(Succeed())

			err := k.SetStatus(vp.StatusRequest{LocalNumThreads: intp(2)})
			Expect(err).To(MatchError(vp.ErrPreconditions))
			Expect(err.Error()).To(ContainSubstring("delay extrema"))
		})

		It("freezes the topology once model defaults are modified", func() {
			Expect(k.Models.SetDefaults("lif", models.Params{"tau_m": 20.0})).To(Succeed())

			err := k.SetStatus(vp.StatusRequest{LocalNumThreads: intp(2)})
			Expect(err).To(MatchError(vp.ErrPreconditions))
			Expect(err.Error()).To(ContainSubstring("model defaults"))
		})

		It("freezes the topology once the network has been simulated", func() {
			Expect(k.Simulate(context.Background(), 1.0)).To(Succeed())

			err := k.SetStatus(vp.StatusRequest{LocalNumThreads: intp(2)})
			Expect(err).To(MatchError(vp.ErrPreconditions))
			Expect(err.Error()).To(ContainSubstring("simulated"))
		})

		It("refuses multithreading while structural plasticity is enabled", func() {
			Expect(k.Plasticity.Enable(k.VP.NumThreads())).To(Succeed())

			err := k.SetStatus(vp.StatusRequest{LocalNumThreads: intp(2)})
			Expect(err).To(MatchError(vp.ErrPreconditions))
			Expect(err.Error()).To(ContainSubstring("structural plasticity"))
		})

		It("lists every violation at once", func() {
			_, err := k.Create("lif", 1, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(k.Connections.SetDelayExtrema(0.5, 5.0)).To(Succeed())
			Expect(k.Simulate(context.Background(), 1.0)).To(Succeed())

			err = k.SetStatus(vp.StatusRequest{LocalNumThreads: intp(2)})
			Expect(err).To(MatchError(vp.ErrPreconditions))
			Expect(err.Error()).To(ContainSubstring("nodes exist"))
			Expect(err.Error()).To(ContainSubstring("delay extrema"))
			Expect(err.Error()).To(ContainSubstring("simulated"))
		})
	})

	Describe("reset", func() {
		It("unfreezes the topology and restores defaults", func() {
			_, err := k.Create("lif", 5, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(k.Models.SetDefaults("lif", models.Params{"tau_m": 20.0})).To(Succeed())
			Expect(k.Simulate(context.Background(), 1.0)).To(Succeed())

			k.Reset()

			st := k.Status()
			Expect(st.NetworkSize).To(BeZero())
			Expect(st.Simulated).To(BeFalse())
			Expect(st.LocalNumThreads).To(Equal(1))
			Expect(k.Models.Modified()).To(BeFalse())

			Expect(k.SetStatus(vp.StatusRequest{LocalNumThreads: intp(2)})).To(Succeed())
		})
	})
})

var _ = Describe("Simulation through the kernel", func() {
	buildDriven := func(threads int) *kernel.Kernel {
		k := kernel.New(
			kernel.WithOverride(vp.NoOverride{}),
			kernel.WithSeed(777),
		)
		Expect(k.SetStatus(vp.StatusRequest{LocalNumThreads: intp(threads)})).To(Succeed())

		src, err := k.Create("poisson", 5, models.Params{"rate": 500.0})
		Expect(err).NotTo(HaveOccurred())
		cells, err := k.Create("lif", 20, nil)
		Expect(err).NotTo(HaveOccurred())

		for _, s := range src {
			for _, c := range cells {
				Expect(k.Connect(s, c, 6.0, 1.0)).To(Succeed())
			}
		}
		return k
	}

	It("produces activity in a driven network", func() {
		k := buildDriven(1)
		Expect(k.Simulate(context.Background(), 100.0)).To(Succeed())

		total := 0
		for _, n := range k.Simulation.Trace() {
			total += n
		}
		Expect(total).To(BeNumerically(">", 0))
		Expect(k.Status().Simulated).To(BeTrue())
	})

	It("is reproducible for a fixed topology", func() {
		a := buildDriven(2)
		b := buildDriven(2)

		Expect(a.Simulate(context.Background(), 50.0)).To(Succeed())
		Expect(b.Simulate(context.Background(), 50.0)).To(Succeed())

		Expect(a.Simulation.Trace()).To(Equal(b.Simulation.Trace()))
	})

	It("honors context cancellation", func() {
		k := buildDriven(1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Expect(k.Simulate(ctx, 100.0)).To(MatchError(context.Canceled))
	})
})
