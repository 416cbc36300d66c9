package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
)

var (
	substationRadius float64
	substationOut    string
)

var substationCmd = &cobra.Command{
	Use:   "substation [osm-way-id]",
	Short: "Inspect one substation and list nearby power plants",
	Long: `Fetches a single substation by its OSM way id and lists the power
plants within the search radius, closest first. Useful for checking
what a specific substation is likely fed by.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubstation,
}

func init() {
	substationCmd.Flags().Float64Var(&substationRadius, "radius", 5, "search radius in km")
	substationCmd.Flags().StringVar(&substationOut, "out", "", "also write the result to a CSV file")
	rootCmd.AddCommand(substationCmd)
}

func runSubstation(cmd *cobra.Command, args []string) error {
	if inspectorService == nil {
		return errors.New("inspector service not configured")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid substation id %q", args[0])
	}

	report, err := inspectorService.Inspect(context.Background(), id, substationRadius)
	if err != nil {
		return fmt.Errorf("inspection failed: %w", err)
	}

	sub := report.Substation
	cmd.Printf("Substation: %s (%s)\n", sub.DisplayName(), sub.Key())
	if sub.Operator() != "" {
		cmd.Printf("Operator:   %s\n", sub.Operator())
	}
	if sub.Voltage() != "" {
		cmd.Printf("Voltage:    %s\n", sub.Voltage())
	}
	cmd.Printf("Location:   %.5f, %.5f\n", sub.Location.Lat, sub.Location.Lon)
	cmd.Println()

	if len(report.Plants) == 0 {
		cmd.Printf("No plants found within %g km.\n", substationRadius)
		return nil
	}

	cmd.Printf("Plants within %g km:\n", substationRadius)
	for i, plant := range report.Plants {
		cmd.Printf("  [%d] %s (%s)", i+1, plant.DisplayName(), plant.Key())
		if src := plant.PlantSource(); src != "" {
			cmd.Printf(" - %s", src)
		}
		cmd.Printf(" - %.2f km\n", report.Distances[plant.Key()])
	}

	if substationOut != "" {
		if err := writeSubstationCSV(substationOut, sub, report.Plants, report.Distances); err != nil {
			return err
		}
		cmd.Printf("\nCSV written to %s\n", substationOut)
	}

	return nil
}

// writeSubstationCSV writes one row per nearby plant.
func writeSubstationCSV(path string, sub domain.InfrastructureRecord, plants []domain.InfrastructureRecord, distances map[string]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", domain.ErrWriteFailed, path, err)
	}

	rows := [][]string{{
		"substation_key", "substation_name", "substation_voltage",
		"plant_key", "plant_name", "plant_source", "plant_output", "distance_km",
	}}
	for _, plant := range plants {
		rows = append(rows, []string{
			sub.Key(),
			sub.DisplayName(),
			sub.Voltage(),
			plant.Key(),
			plant.DisplayName(),
			plant.PlantSource(),
			plant.PlantOutput(),
			strconv.FormatFloat(distances[plant.Key()], 'f', 2, 64),
		})
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
