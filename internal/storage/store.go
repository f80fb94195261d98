package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/presdiff/internal/config"
	"github.com/san-kum/presdiff/internal/diffusion"
	"github.com/san-kum/presdiff/internal/sim"
)

const (
	metadataFile = "metadata.json"
	fieldFile    = "field.csv"
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

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Config    config.Config      `json:"config"`
	Nr        int                `json:"nr"`
	Nz        int                `json:"nz"`
	Steps     int                `json:"steps"`
	Time      float64            `json:"time"`
	Elapsed   time.Duration      `json:"elapsed_ns"`
	Stability float64            `json:"stability_number"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes metadata.json and field.csv under a new run directory and
// returns the run ID.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    name,
		Timestamp: now,
		Config:    *cfg,
		Nr:        result.Grid.Nr,
		Nz:        result.Grid.Nz,
		Steps:     result.Steps,
		Time:      result.Time,
		Elapsed:   result.Elapsed,
		Stability: result.Stability,
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, fieldFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteFieldCSV(csvFile, result.Grid, result.Field); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns stored runs, oldest first. Directories without readable
// metadata are skipped.
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadField reads the final field of a run together with its grid.
func (s *Store) LoadField(runID string) (*diffusion.Field, diffusion.Grid, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, diffusion.Grid{}, err
	}
	g, err := meta.Config.Grid()
	if err != nil {
		return nil, diffusion.Grid{}, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, fieldFile))
	if err != nil {
		return nil, diffusion.Grid{}, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, diffusion.Grid{}, err
	}
	if len(records) < 2 {
		return nil, diffusion.Grid{}, fmt.Errorf("%s: no field data", runID)
	}

	rows := make([][]float64, 0, len(records)-1)
	for n, record := range records[1:] {
		row := make([]float64, 0, len(record)-1)
		for _, cell := range record[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, diffusion.Grid{}, fmt.Errorf("%s: row %d: %w", runID, n, err)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}

	f, err := diffusion.FieldFromRows(rows)
	if err != nil {
		return nil, diffusion.Grid{}, err
	}
	if nr, nz := f.Dims(); nr != g.Nr || nz != g.Nz {
		return nil, diffusion.Grid{}, fmt.Errorf("%s: %w", runID, diffusion.ErrDimensionMismatch)
	}
	return f, g, nil
}
