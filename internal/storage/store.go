// Package storage keeps rendered runs on disk: one directory per run with
// metadata.json, frames.csv and scene.json.
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

	"github.com/san-kum/neurovis/internal/export"
	"github.com/san-kum/neurovis/internal/metrics"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	sceneFile    = "scene.json"
)

var frameHeader = []string{"frame", "step", "edges", "added", "removed", "dropped", "mean_degree", "value_mean"}

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
	Variant   string             `json:"variant"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Positions string             `json:"positions"`
	Steps     []int64            `json:"steps"`
	Neurons   int                `json:"neurons"`
	Areas     int                `json:"areas"`
	Lenient   bool               `json:"lenient"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run and returns its id. meta.ID and meta.Timestamp are
// filled in.
func (s *Store) Save(meta RunMetadata, frames []metrics.FrameStats, scene *export.SceneData) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Variant, now.UnixNano())
	meta.Timestamp = now
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), frames); err != nil {
		return "", err
	}
	if scene != nil {
		if err := export.ExportJSON(filepath.Join(runDir, sceneFile), *scene); err != nil {
			return "", err
		}
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, frames []metrics.FrameStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(frameHeader); err != nil {
		return err
	}
	for _, fs := range frames {
		value := ""
		if fs.HasValue {
			value = strconv.FormatFloat(fs.ValueMean, 'f', 6, 64)
		}
		row := []string{
			strconv.Itoa(fs.Frame),
			strconv.FormatInt(fs.Step, 10),
			strconv.Itoa(fs.Edges),
			strconv.Itoa(fs.Added),
			strconv.Itoa(fs.Removed),
			strconv.Itoa(fs.Dropped),
			strconv.FormatFloat(fs.MeanDegree, 'f', 6, 64),
			value,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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

// LoadFrames reads frames.csv back. Rows that do not parse are skipped.
func (s *Store) LoadFrames(runID string) ([]metrics.FrameStats, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
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
	if len(records) < 2 {
		return []metrics.FrameStats{}, nil
	}

	frames := make([]metrics.FrameStats, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(frameHeader) {
			continue
		}
		var fs metrics.FrameStats
		ints := []*int{&fs.Frame, nil, &fs.Edges, &fs.Added, &fs.Removed, &fs.Dropped}
		ok := true
		for i, dst := range ints {
			if dst == nil {
				continue
			}
			if *dst, err = strconv.Atoi(rec[i]); err != nil {
				ok = false
			}
		}
		if fs.Step, err = strconv.ParseInt(rec[1], 10, 64); err != nil {
			ok = false
		}
		if fs.MeanDegree, err = strconv.ParseFloat(rec[6], 64); err != nil {
			ok = false
		}
		if !ok {
			continue
		}
		if rec[7] != "" {
			if v, err := strconv.ParseFloat(rec[7], 64); err == nil {
				fs.ValueMean, fs.HasValue = v, true
			}
		}
		frames = append(frames, fs)
	}
	return frames, nil
}

// SceneJSON returns the raw scene export of a run.
func (s *Store) SceneJSON(runID string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.baseDir, runID, sceneFile))
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}
