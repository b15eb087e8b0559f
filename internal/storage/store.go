package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/nav"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var (
	ErrRunNotFound  = errors.New("storage: run not found")
	ErrAmbiguousRun = errors.New("storage: run id prefix is ambiguous")
)

var trajectoryHeader = []string{"time", "x", "y", "heading", "turn_rate", "mode"}

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
	ID         string                 `json:"id"`
	Law        string                 `json:"law"`
	Integrator string                 `json:"integrator"`
	Timestamp  time.Time              `json:"timestamp"`
	Dt         float64                `json:"dt"`
	Speed      float64                `json:"speed"`
	MaxSteps   int                    `json:"max_steps"`
	HeadingDeg float64                `json:"heading_deg"`
	Outcome    string                 `json:"outcome"`
	Steps      int                    `json:"steps"`
	FinalDist  float64                `json:"final_dist"`
	Params     map[string]float64     `json:"params"`
	Metrics    map[string]float64     `json:"metrics"`
	Workspace  config.WorkspaceConfig `json:"workspace"`
}

// Trajectory is the per-sample data stored next to the metadata.
type Trajectory struct {
	Times    []float64
	Poses    []nav.Pose
	TurnRate []float64
	Modes    []string
}

// Save writes the run under a fresh id. params are the law parameters
// actually used, which may differ from cfg.Params after defaults.
func (s *Store) Save(cfg *config.Config, params map[string]float64, result *nav.Result) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Law:        cfg.Law,
		Integrator: cfg.Integrator,
		Timestamp:  time.Now(),
		Dt:         cfg.Dt,
		Speed:      cfg.Speed,
		MaxSteps:   cfg.MaxSteps,
		HeadingDeg: cfg.HeadingDeg,
		Outcome:    result.Outcome.Label(),
		Steps:      result.Steps,
		FinalDist:  result.FinalDist,
		Params:     params,
		Metrics:    result.Metrics,
		Workspace:  cfg.Workspace,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// closeFile closes f and reports its error unless an earlier one is set.
func closeFile(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

func writeTrajectory(path string, result *nav.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	w := csv.NewWriter(f)
	if err := w.Write(trajectoryHeader); err != nil {
		return err
	}

	for i, p := range result.Poses {
		// command i was issued at pose i; the final pose has none
		turn, mode := 0.0, ""
		if i < len(result.Commands) {
			turn = result.Commands[i].TurnRate
			mode = result.Commands[i].Mode.String()
		}
		row := []string{
			formatFloat(result.Times[i]),
			formatFloat(p.X),
			formatFloat(p.Y),
			formatFloat(p.Heading),
			formatFloat(turn),
			mode,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// formatFloat writes the shortest form that parses back to v.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns all stored runs, newest first.
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

		meta, err := s.readMeta(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

// Resolve expands a unique id prefix to a full run id.
func (s *Store) Resolve(prefix string) (string, error) {
	if prefix == "" || prefix == "." || prefix == ".." || strings.ContainsAny(prefix, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrRunNotFound, prefix)
	}
	if _, err := os.Stat(filepath.Join(s.baseDir, prefix, metadataFile)); err == nil {
		return prefix, nil
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
		}
		return "", err
	}

	var match string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("%w: %s", ErrAmbiguousRun, prefix)
		}
		match = entry.Name()
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	}
	return match, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	id, err := s.Resolve(runID)
	if err != nil {
		return nil, err
	}
	return s.readMeta(id)
}

func (s *Store) readMeta(id string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (*Trajectory, error) {
	id, err := s.Resolve(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, id, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	tr := &Trajectory{}
	if len(records) < 2 {
		return tr, nil
	}

	for i, record := range records[1:] {
		if len(record) < 5 {
			return nil, fmt.Errorf("%s line %d: expected at least 5 fields, got %d", trajectoryFile, i+2, len(record))
		}
		vals := make([]float64, 5)
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", trajectoryFile, i+2, err)
			}
			vals[j] = v
		}
		tr.Times = append(tr.Times, vals[0])
		tr.Poses = append(tr.Poses, nav.Pose{X: vals[1], Y: vals[2], Heading: vals[3]})
		tr.TurnRate = append(tr.TurnRate, vals[4])
		mode := ""
		if len(record) > 5 {
			mode = record[5]
		}
		tr.Modes = append(tr.Modes, mode)
	}
	return tr, nil
}
