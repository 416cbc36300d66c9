package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/ports/driven"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/ports/driving"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/services"
)

var (
	analyzeArea      string
	analyzeBBox      string
	analyzeMaxDist   float64
	analyzeLikely    float64
	analyzeOut       string
	analyzeNoArchive bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the extract-link-report pipeline for a bounding region",
	Long: `Extracts power plants and substations from OpenStreetMap for the
configured bounding region, infers likely plant-to-substation
connections by proximity, and writes CSV reports to the output
directory. Flags override config values; config overrides the built-in
Madrid defaults.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	addAnalyzeFlags(analyzeCmd)
	addAnalyzeFlags(rootCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// addAnalyzeFlags registers the analysis flags. The root command gets
// the same set so a bare `powergrid --bbox ...` works.
func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&analyzeArea, "area", "", "area name for reports")
	cmd.Flags().StringVar(&analyzeBBox, "bbox", "", "bounding box as south,west,north,east")
	cmd.Flags().Float64Var(&analyzeMaxDist, "max-distance", 0, "proximity threshold in km")
	cmd.Flags().Float64Var(&analyzeLikely, "likely-distance", 0, "inner likelihood tier in km")
	cmd.Flags().StringVar(&analyzeOut, "out", "", "output directory for reports")
	cmd.Flags().BoolVar(&analyzeNoArchive, "no-archive", false, "skip archiving the run")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	req, err := resolveAnalysisRequest()
	if err != nil {
		return err
	}

	cmd.Printf("Analysing %s (%s)...\n", req.Area, req.BBox)

	run, err := analysisService.Run(context.Background(), req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	s := run.Summary
	cmd.Println()
	cmd.Printf("Plants found:        %d\n", s.Plants)
	cmd.Printf("Substations found:   %d\n", s.Substations)
	cmd.Printf("Power lines in area: %d\n", s.PowerLines)
	cmd.Printf("Likely connections:  %d\n", s.Likely)
	cmd.Printf("Possible connections: %d\n", s.Possible)
	cmd.Printf("Runtime:             %.2fs\n", s.Runtime.Seconds())
	cmd.Println()
	cmd.Printf("Reports written to %s\n", req.OutDir)
	return nil
}

// resolveAnalysisRequest merges flags, config and defaults.
func resolveAnalysisRequest() (driving.AnalysisRequest, error) {
	area := analyzeArea
	if area == "" {
		area = configString(driven.KeyAreaName, defaultAreaName)
	}

	bboxStr := analyzeBBox
	if bboxStr == "" {
		bboxStr = configString(driven.KeyAreaBBox, defaultBBox)
	}
	bbox, err := domain.ParseBoundingBox(bboxStr)
	if err != nil {
		return driving.AnalysisRequest{}, err
	}

	maxDist := analyzeMaxDist
	if maxDist == 0 {
		maxDist = configFloat(driven.KeyMaxDistance, services.DefaultMaxDistanceKM)
	}
	likely := analyzeLikely
	if likely == 0 {
		likely = configFloat(driven.KeyLikelyDistance, services.DefaultLikelyDistanceKM)
	}

	archive := !analyzeNoArchive
	if configStore != nil {
		if v, ok := configStore.Get(driven.KeyArchiveEnabled); ok {
			if b, isBool := v.(bool); isBool && !b {
				archive = false
			}
		}
	}

	return driving.AnalysisRequest{
		Area:             area,
		BBox:             bbox,
		MaxDistanceKM:    maxDist,
		LikelyDistanceKM: likely,
		OutDir:           resolveOutDir(),
		Archive:          archive,
	}, nil
}

// resolveOutDir merges the --out flag, config and default output dir.
func resolveOutDir() string {
	if analyzeOut != "" {
		return analyzeOut
	}
	return configString(driven.KeyOutputDir, defaultOutDir)
}
