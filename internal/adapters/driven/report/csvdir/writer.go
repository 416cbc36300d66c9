// Package csvdir implements the driven.ReportWriter port as a directory
// of CSV files. One file per section mirrors the sheet layout of the
// spreadsheet reports this tool's output feeds into: plants,
// substations, connections and a one-row summary.
package csvdir

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/ports/driven"
)

// Report file names. Fixed per run: a new run overwrites the previous
// output, there are no append semantics.
const (
	PlantsFile      = "plants.csv"
	SubstationsFile = "substations.csv"
	ConnectionsFile = "connections.csv"
	SummaryFile     = "summary.csv"
)

// Ensure Writer implements the interface.
var _ driven.ReportWriter = (*Writer)(nil)

// Writer renders runs into a directory of CSV files.
type Writer struct {
	dir string
}

// NewWriter creates a report writer for the given output directory.
// The directory is created on first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write renders all four report files. Any filesystem failure surfaces
// as domain.ErrWriteFailed.
func (w *Writer) Write(run *domain.Run) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", domain.ErrWriteFailed, w.dir, err)
	}

	if err := w.writeFile(PlantsFile, plantRows(run.Plants)); err != nil {
		return err
	}
	if err := w.writeFile(SubstationsFile, substationRows(run.Substations)); err != nil {
		return err
	}
	if err := w.writeFile(ConnectionsFile, connectionRows(run)); err != nil {
		return err
	}
	return w.writeFile(SummaryFile, summaryRows(run.Summary))
}

// writeFile writes one CSV file, header included in rows.
func (w *Writer) writeFile(name string, rows [][]string) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", domain.ErrWriteFailed, path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("%w: writing %s: %v", domain.ErrWriteFailed, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %v", domain.ErrWriteFailed, path, err)
	}
	return nil
}

func plantRows(plants []domain.InfrastructureRecord) [][]string {
	rows := [][]string{{
		"id", "element", "name", "operator", "source", "output", "voltage", "lat", "lon",
	}}
	for _, p := range plants {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Element,
			p.DisplayName(),
			p.Operator(),
			p.PlantSource(),
			p.PlantOutput(),
			p.Voltage(),
			formatCoord(p.Location.Lat),
			formatCoord(p.Location.Lon),
		})
	}
	return rows
}

func substationRows(subs []domain.InfrastructureRecord) [][]string {
	rows := [][]string{{
		"id", "element", "name", "operator", "voltage", "substation_type", "lat", "lon",
	}}
	for _, s := range subs {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.Element,
			s.DisplayName(),
			s.Operator(),
			s.Voltage(),
			s.SubstationType(),
			formatCoord(s.Location.Lat),
			formatCoord(s.Location.Lon),
		})
	}
	return rows
}

// connectionRows denormalises each connection with the attributes of
// both endpoints, so the connections file is readable on its own.
func connectionRows(run *domain.Run) [][]string {
	byKey := make(map[string]domain.InfrastructureRecord, len(run.Plants)+len(run.Substations))
	for _, r := range run.Plants {
		byKey[r.Key()] = r
	}
	for _, r := range run.Substations {
		byKey[r.Key()] = r
	}

	rows := [][]string{{
		"plant_key", "plant_name", "plant_operator", "plant_source",
		"substation_key", "substation_name", "substation_operator", "substation_voltage",
		"distance_km", "likelihood",
		"plant_lat", "plant_lon", "substation_lat", "substation_lon",
	}}
	for _, c := range run.Connections {
		plant := byKey[c.PlantKey]
		sub := byKey[c.SubstationKey]
		rows = append(rows, []string{
			c.PlantKey,
			plant.DisplayName(),
			plant.Operator(),
			plant.PlantSource(),
			c.SubstationKey,
			sub.DisplayName(),
			sub.Operator(),
			sub.Voltage(),
			strconv.FormatFloat(c.DistanceKM, 'f', 2, 64),
			string(c.Likelihood),
			formatCoord(plant.Location.Lat),
			formatCoord(plant.Location.Lon),
			formatCoord(sub.Location.Lat),
			formatCoord(sub.Location.Lon),
		})
	}
	return rows
}

func summaryRows(s domain.RunSummary) [][]string {
	return [][]string{
		{
			"area", "bbox", "plants", "substations", "power_lines",
			"likely_connections", "possible_connections", "started_at", "runtime_seconds",
		},
		{
			s.Area,
			s.BBox.String(),
			strconv.Itoa(s.Plants),
			strconv.Itoa(s.Substations),
			strconv.Itoa(s.PowerLines),
			strconv.Itoa(s.Likely),
			strconv.Itoa(s.Possible),
			s.StartedAt.UTC().Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(s.Runtime.Seconds(), 'f', 2, 64),
		},
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
