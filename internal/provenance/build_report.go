package provenance

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type BuildSignal struct {
	Code     string `json:"code"`
	Stage    string `json:"stage"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type StageMetric struct {
	Name       string             `json:"name"`
	StartedAt  string             `json:"started_at"`
	FinishedAt string             `json:"finished_at"`
	DurationMS int64              `json:"duration_ms"`
	Counters   map[string]float64 `json:"counters,omitempty"`
}

// BuildReport records how a Context was built: per-stage counters and the
// degradations that were accepted along the way.
type BuildReport struct {
	Version     string         `json:"version"`
	Name        string         `json:"name"`
	GeneratedAt string         `json:"generated_at"`
	DurationMS  int64          `json:"duration_ms"`
	Stages      []StageMetric  `json:"stages"`
	Signals     []BuildSignal  `json:"signals,omitempty"`
	Summary     map[string]int `json:"signals_by_severity"`

	started time.Time
}

type StageHandle struct {
	name    string
	started time.Time
}

func NewBuildReport(name string) *BuildReport {
	return &BuildReport{
		Version: "v1",
		Name:    name,
		Stages:  []StageMetric{},
		Signals: []BuildSignal{},
		started: time.Now().UTC(),
	}
}

func (r *BuildReport) BeginStage(name string) StageHandle {
	return StageHandle{name: strings.TrimSpace(name), started: time.Now().UTC()}
}

func (r *BuildReport) EndStage(h StageHandle, counters map[string]float64) {
	if r == nil || h.name == "" {
		return
	}
	finished := time.Now().UTC()
	r.Stages = append(r.Stages, StageMetric{
		Name:       h.name,
		StartedAt:  h.started.Format(time.RFC3339Nano),
		FinishedAt: finished.Format(time.RFC3339Nano),
		DurationMS: finished.Sub(h.started).Milliseconds(),
		Counters:   cleanCounters(counters),
	})
}

func (r *BuildReport) AddSignal(code, stage, severity, message string) {
	if r == nil {
		return
	}
	s := BuildSignal{
		Code:     strings.TrimSpace(code),
		Stage:    strings.TrimSpace(stage),
		Severity: strings.ToLower(strings.TrimSpace(severity)),
		Message:  strings.TrimSpace(message),
	}
	if s.Code == "" || s.Stage == "" || s.Severity == "" || s.Message == "" {
		return
	}
	r.Signals = append(r.Signals, s)
}

// Counter returns a stage counter, or 0 when it was not recorded.
func (r *BuildReport) Counter(stage, name string) float64 {
	if r == nil {
		return 0
	}
	for _, st := range r.Stages {
		if st.Name == stage {
			return st.Counters[name]
		}
	}
	return 0
}

func (r *BuildReport) HasSignal(code string) bool {
	if r == nil {
		return false
	}
	for _, s := range r.Signals {
		if s.Code == code {
			return true
		}
	}
	return false
}

// Finish orders signals by severity and fills in the summary.
func (r *BuildReport) Finish() {
	if r == nil {
		return
	}
	r.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	if !r.started.IsZero() {
		r.DurationMS = time.Since(r.started).Milliseconds()
	}
	sort.SliceStable(r.Signals, func(i, j int) bool {
		pi := signalPriority(r.Signals[i].Severity)
		pj := signalPriority(r.Signals[j].Severity)
		if pi == pj {
			return r.Signals[i].Code < r.Signals[j].Code
		}
		return pi > pj
	})
	r.Summary = map[string]int{"critical": 0, "warning": 0, "info": 0}
	for _, s := range r.Signals {
		r.Summary[s.Severity]++
	}
}

func (r *BuildReport) Save(path string) error {
	if r == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

func cleanCounters(raw map[string]float64) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		out[key] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func signalPriority(severity string) int {
	switch severity {
	case "critical":
		return 3
	case "warning":
		return 2
	default:
		return 1
	}
}
