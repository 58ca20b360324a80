package main

import (
	"fmt"
	"io"
	"slices"
	"text/template"
	"time"
)

type Report struct {
	// Configuration
	Duration  time.Duration
	MaxPieces int
	Seed      uint64
	TickMs    int

	// Results
	Games         int
	Pieces        int
	Ticks         int64
	Explosions    int
	MaxMultiplier int
	MaxLevel      int
	PeakEffects   int
	Scores        []int
	ScoreStats    ScoreStats
	TotalTime     time.Duration
	TickTime      Stats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = slices.Min(s.Samples)
	s.Max = slices.Max(s.Samples)
	for _, sample := range s.Samples {
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

type ScoreStats struct {
	Min, Max, Avg, Median int
}

func (r *Report) finalizeScores() {
	if len(r.Scores) == 0 {
		return
	}
	sorted := slices.Sorted(slices.Values(r.Scores))
	total := 0
	for _, s := range sorted {
		total += s
	}
	r.ScoreStats = ScoreStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Avg:    total / len(sorted),
		Median: sorted[len(sorted)/2],
	}
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Tilefall Soak Report

## Configuration
- **Seed:** {{.Seed}}
- **Tick:** {{.TickMs}}ms
{{- if .Duration}}
- **Run Duration:** {{.Duration}}
{{- end}}
{{- if .MaxPieces}}
- **Piece Budget:** {{.MaxPieces}}
{{- end}}

## Games
- **Games Played:** {{.Games}}
- **Pieces Dropped:** {{.Pieces}}
- **Explosions:** {{.Explosions}}
- **Highest Multiplier:** x{{.MaxMultiplier}}
- **Highest Level:** {{.MaxLevel}}
{{- if .Scores}}
- **Score:** min {{.ScoreStats.Min}}, median {{.ScoreStats.Median}}, avg {{.ScoreStats.Avg}}, max {{.ScoreStats.Max}}
{{- end}}

## Performance
- **Ticks:** {{.Ticks}} ({{virtual .Ticks .TickMs}} of play)
- **Wall Time:** {{.TotalTime}}
- **Peak Effect Entities:** {{.PeakEffects}}
- **Tick Time:**
  - **Avg:** {{.TickTime.Avg}}
  - **Min:** {{.TickTime.Min}}
  - **Max:** {{.TickTime.Max}}
`

	fm := template.FuncMap{
		"virtual": func(ticks int64, tickMs int) string {
			return (time.Duration(ticks) * time.Duration(tickMs) * time.Millisecond).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	return tmpl.Execute(w, r)
}
