package kernel

import "spikekernel/internal/vp"

// Status is the aggregated kernel state reported to callers.
type Status struct {
	LocalNumThreads      int     `json:"local_num_threads" yaml:"local_num_threads"`
	TotalNumVirtualProcs int     `json:"total_num_virtual_procs" yaml:"total_num_virtual_procs"`
	NumProcesses         int     `json:"num_processes" yaml:"num_processes"`
	Rank                 int     `json:"rank" yaml:"rank"`
	Resolution           float64 `json:"resolution" yaml:"resolution"`
	NetworkSize          int     `json:"network_size" yaml:"network_size"`
	NumConnections       int     `json:"num_connections" yaml:"num_connections"`
	Time                 float64 `json:"time" yaml:"time"`
	Simulated            bool    `json:"simulated" yaml:"simulated"`
	Seed                 int64   `json:"seed" yaml:"seed"`
	Plasticity           bool    `json:"structural_plasticity" yaml:"structural_plasticity"`
}

// Status reports the current kernel configuration. Pure read.
func (k *Kernel) Status() Status {
	vps := k.VP.Status()
	return Status{
		LocalNumThreads:      vps.LocalNumThreads,
		TotalNumVirtualProcs: vps.TotalNumVirtualProcs,
		NumProcesses:         k.topo.NumProcesses(),
		Rank:                 k.topo.Rank(),
		Resolution:           k.Simulation.Resolution(),
		NetworkSize:          k.Nodes.Size(),
		NumConnections:       k.Connections.Count(),
		Time:                 k.Simulation.Time(),
		Simulated:            k.Simulation.HasBeenSimulated(),
		Seed:                 k.Random.Seed(),
		Plasticity:           k.Plasticity.Enabled(),
	}
}

// SetStatus applies a topology update through the VP manager's validated
// path.
func (k *Kernel) SetStatus(req vp.StatusRequest) error {
	return k.VP.SetStatus(req)
}
