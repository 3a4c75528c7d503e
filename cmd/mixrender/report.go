package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/charmbracelet/lipgloss"
	"github.com/cwbudde/algo-daw/dsp/core"
	"github.com/cwbudde/algo-daw/measure/meter"
	"github.com/cwbudde/algo-daw/session"
)

// trackStats is the whole-render summary of one track.
type trackStats struct {
	Name    string   `json:"name"`
	ID      string   `json:"id"`
	PeakDB  float64  `json:"peakDb"`
	RMSDB   float64  `json:"rmsDb"`
	Plugins []string `json:"plugins,omitempty"`
	Bus     string   `json:"bus,omitempty"`
}

type report struct {
	Scene      string           `json:"scene"`
	SampleRate float64          `json:"sampleRate"`
	Seconds    float64          `json:"seconds"`
	Tracks     []trackStats     `json:"tracks"`
	Left       meter.Reading    `json:"left"`
	Right      meter.Reading    `json:"right"`
	Clipped    bool             `json:"clipped"`
	Loudness   session.Loudness `json:"loudness"`
	Profile    meter.Profile    `json:"profile"`
}

// render runs the session block by block and collects per-track peaks and
// mean-square energy across the whole pass.
func render(s *session.Session, seconds float64, inputs map[string][]float64) (session.Output, []trackStats) {
	cfg := core.ProcessorConfig{SampleRate: s.Config().SampleRate, BlockSize: s.Config().BlockSize}
	total := cfg.Samples(seconds)
	tracks := s.Tracks()

	peaks := make([]float64, len(tracks))
	energy := make([]float64, len(tracks))
	out := session.Output{Left: make([]float64, total), Right: make([]float64, total)}
	block := make(map[string][]float64, len(inputs))

	for off := 0; off < total; off += cfg.BlockSize {
		for id, in := range inputs {
			block[id] = in[min(off, len(in)):min(off+cfg.BlockSize, len(in))]
		}

		o := s.RenderBlock(cfg.Seconds(off), block)
		copy(out.Left[off:], o.Left)
		copy(out.Right[off:], o.Right)

		for i, t := range tracks {
			r, _ := s.TrackMeter(t.ID)
			peaks[i] = math.Max(peaks[i], r.Peak)
			energy[i] += r.RMS * r.RMS * float64(len(o.Left))
		}
	}

	stats := make([]trackStats, len(tracks))

	for i, t := range tracks {
		st := trackStats{Name: t.Name, ID: t.ID, PeakDB: meter.ToDB(peaks[i]), RMSDB: meter.FloorDB}
		if total > 0 {
			st.RMSDB = meter.ToDB(math.Sqrt(energy[i] / float64(total)))
		}

		if c, ok := s.Plugins().ChainForTrack(t.ID); ok {
			for _, id := range c.PluginIDs() {
				if p, ok := s.Plugins().Plugin(id); ok {
					st.Plugins = append(st.Plugins, p.Name)
				}
			}
		}

		if b, ok := s.Buses().BusForTrack(t.ID); ok {
			st.Bus = b.Name
		}

		stats[i] = st
	}

	return out, stats
}

func buildReport(name string, s *session.Session, out session.Output, tracks []trackStats) (report, error) {
	rep := report{
		Scene:      name,
		SampleRate: s.Config().SampleRate,
		Seconds:    float64(len(out.Left)) / s.Config().SampleRate,
		Tracks:     tracks,
		Left:       meter.Measure(out.Left),
		Right:      meter.Measure(out.Right),
		Clipped:    s.MasterClipped(),
		Loudness:   s.MasterLoudness(),
	}

	if len(out.Left) < 2 {
		return rep, nil
	}

	mid := make([]float64, len(out.Left))
	for i := range mid {
		mid[i] = 0.5 * (out.Left[i] + out.Right[i])
	}

	prof, err := meter.Analyze(mid, rep.SampleRate)
	if err != nil {
		return report{}, err
	}

	rep.Profile = prof

	return rep, nil
}

func writeJSON(w io.Writer, rep report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(rep)
}

const defaultTemplate = `{{ .Scene | upper }} {{ printf "%.2fs @ %.0f Hz" .Seconds .SampleRate }}
{{ repeat 40 "-" }}
{{- range .Tracks }}
{{ printf "%-12s" .Name }} peak {{ printf "%7.2f" .PeakDB }} dB  rms {{ printf "%7.2f" .RMSDB }} dB  {{ default "master" .Bus }}{{ if .Plugins }}  [{{ join ", " .Plugins }}]{{ end }}
{{- end }}
{{ repeat 40 "-" }}
master L {{ printf "%.2f" .Left.PeakDB }} dB  R {{ printf "%.2f" .Right.PeakDB }} dB{{ if .Clipped }}  CLIP{{ end }}
loudness {{ printf "%.1f" .Loudness.Integrated }} LUFS integrated, {{ printf "%.1f" .Loudness.ShortTerm }} LUFS short-term
balance low {{ printf "%.2f" .Profile.Low }} mid {{ printf "%.2f" .Profile.Mid }} high {{ printf "%.2f" .Profile.High }}  centroid {{ printf "%.0f" .Profile.Centroid }} Hz
`

// writeTemplate renders rep through a text/template with the sprig
// function map. An empty text selects the built-in layout.
func writeTemplate(w io.Writer, text string, rep report) error {
	if text == "" {
		text = defaultTemplate
	}

	tmpl, err := template.New("report").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	return tmpl.Execute(w, rep)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Width(14)
	numberStyle = lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	clipStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func dbCell(db float64) string {
	return numberStyle.Render(fmt.Sprintf("%.2f", db))
}

// writeTable renders rep as a styled terminal table.
func writeTable(w io.Writer, rep report) error {
	rows := []string{
		titleStyle.Render(fmt.Sprintf("%s  %.2fs @ %.0f Hz", rep.Scene, rep.Seconds, rep.SampleRate)),
		lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render("track"), numberStyle.Render("peak dB"), numberStyle.Render("rms dB"), "  ", mutedStyle.Render("out / inserts")),
	}

	for _, t := range rep.Tracks {
		dest := t.Bus
		if dest == "" {
			dest = "master"
		}

		if len(t.Plugins) > 0 {
			dest += " / " + strings.Join(t.Plugins, " > ")
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(t.Name), dbCell(t.PeakDB), dbCell(t.RMSDB), "  ", mutedStyle.Render(dest)))
	}

	master := lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render("master L/R"), dbCell(rep.Left.PeakDB), dbCell(rep.Right.PeakDB))
	if rep.Clipped {
		master += "  " + clipStyle.Render("CLIP")
	}

	rows = append(rows, master,
		lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render("LUFS I/S"), dbCell(rep.Loudness.Integrated), dbCell(rep.Loudness.ShortTerm)),
		mutedStyle.Render(fmt.Sprintf("low %.2f  mid %.2f  high %.2f  centroid %.0f Hz",
			rep.Profile.Low, rep.Profile.Mid, rep.Profile.High, rep.Profile.Centroid)))

	_, err := fmt.Fprintln(w, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))

	return err
}
