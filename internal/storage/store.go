// Package storage persists simulation runs: one directory per run with a
// metadata document and the spike trace.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata summarizes one simulation run.
type RunMetadata struct {
	ID                   string    `json:"id"`
	Timestamp            time.Time `json:"timestamp"`
	Seed                 int64     `json:"seed"`
	Resolution           float64   `json:"resolution"`
	Duration             float64   `json:"duration"`
	LocalNumThreads      int       `json:"local_num_threads"`
	TotalNumVirtualProcs int       `json:"total_num_virtual_procs"`
	NetworkSize          int       `json:"network_size"`
	NumConnections       int       `json:"num_connections"`
	TotalSpikes          int       `json:"total_spikes"`
}

// Save writes metadata and the per-step spike counts, returning the run ID.
func (s *Store) Save(meta RunMetadata, trace []int) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.TotalSpikes = 0
	for _, n := range trace {
		meta.TotalSpikes += n
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "spikes.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"time", "spikes"}); err != nil {
		return "", err
	}
	for i, n := range trace {
		row := []string{
			strconv.FormatFloat(float64(i)*meta.Resolution, 'f', 6, 64),
			strconv.Itoa(n),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns the metadata of every stored run.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

// Load returns the metadata of one run.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrace returns the spike trace of one run as (times, counts).
func (s *Store) LoadTrace(runID string) ([]float64, []int, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "spikes.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 1 {
		return nil, nil, fmt.Errorf("run %s: empty spike trace", runID)
	}

	times := make([]float64, 0, len(records)-1)
	counts := make([]int, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		n, err := strconv.Atoi(record[1])
		if err != nil {
			continue
		}
		times = append(times, t)
		counts = append(counts, n)
	}
	return times, counts, nil
}
