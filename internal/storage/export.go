package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

type ExportData struct {
	RunMetadata
	Times    []float64    `json:"times"`
	Path     [][2]float64 `json:"path"`
	Headings []float64    `json:"headings"`
	TurnRate []float64    `json:"turn_rate"`
}

func NewExportData(meta *RunMetadata, tr *Trajectory) ExportData {
	data := ExportData{
		RunMetadata: *meta,
		Times:       tr.Times,
		Path:        make([][2]float64, len(tr.Poses)),
		Headings:    make([]float64, len(tr.Poses)),
		TurnRate:    tr.TurnRate,
	}
	for i, p := range tr.Poses {
		data.Path[i] = [2]float64{p.X, p.Y}
		data.Headings[i] = p.Heading
	}
	return data
}

func ExportJSON(w io.Writer, meta *RunMetadata, tr *Trajectory) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(meta, tr))
}

// ExportCSV writes the trajectory in the stored column layout.
func ExportCSV(w io.Writer, tr *Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trajectoryHeader); err != nil {
		return err
	}

	for i, p := range tr.Poses {
		mode := ""
		if i < len(tr.Modes) {
			mode = tr.Modes[i]
		}
		row := []string{
			strconv.FormatFloat(tr.Times[i], 'f', 6, 64),
			strconv.FormatFloat(p.X, 'f', 6, 64),
			strconv.FormatFloat(p.Y, 'f', 6, 64),
			strconv.FormatFloat(p.Heading, 'f', 6, 64),
			strconv.FormatFloat(tr.TurnRate[i], 'f', 6, 64),
			mode,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
