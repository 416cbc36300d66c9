package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/ports/driven"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/ports/driving"
	"github.com/jcherranz/spain-power-grid-analysis/internal/logger"
)

// Ensure AnalysisOrchestrator implements the interface.
var _ driving.Analyzer = (*AnalysisOrchestrator)(nil)

// AnalysisOrchestrator runs the batch pipeline: extract records from
// the source, link plants to substations, write reports and archive the
// run. One invocation is one pass; no state survives between runs.
type AnalysisOrchestrator struct {
	extractor   driven.Extractor
	newReporter func(dir string) driven.ReportWriter
	archive     driven.RunArchive
}

// NewAnalysisOrchestrator creates the pipeline orchestrator.
// newReporter builds a report writer for the run's output directory.
// The archive is optional; nil disables run archiving entirely.
func NewAnalysisOrchestrator(
	extractor driven.Extractor,
	newReporter func(dir string) driven.ReportWriter,
	archive driven.RunArchive,
) *AnalysisOrchestrator {
	return &AnalysisOrchestrator{
		extractor:   extractor,
		newReporter: newReporter,
		archive:     archive,
	}
}

// Run executes one batch pass and returns the completed run.
func (o *AnalysisOrchestrator) Run(ctx context.Context, req driving.AnalysisRequest) (*domain.Run, error) {
	started := time.Now()

	if err := req.BBox.Validate(); err != nil {
		return nil, err
	}
	if req.OutDir == "" {
		return nil, fmt.Errorf("%w: empty output directory", domain.ErrWriteFailed)
	}

	linker, err := NewLinker(req.MaxDistanceKM, req.LikelyDistanceKM)
	if err != nil {
		return nil, err
	}

	// 1. Extract
	logger.Section("extract")
	extraction, err := o.extractor.Extract(ctx, req.BBox)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	if extraction.Skipped > 0 {
		logger.Warn("%d elements skipped for missing coordinates", extraction.Skipped)
	}

	// 2. Link
	logger.Section("link")
	connections := linker.Link(extraction.Plants, extraction.Substations)
	logger.Info("inferred %d connections (threshold %g km)", len(connections), linker.MaxDistanceKM())

	likely, possible := 0, 0
	for _, conn := range connections {
		if conn.Likelihood == domain.LikelihoodLikely {
			likely++
		} else {
			possible++
		}
	}

	run := &domain.Run{
		ID: uuid.NewString(),
		Summary: domain.RunSummary{
			Area:        req.Area,
			BBox:        req.BBox,
			Plants:      len(extraction.Plants),
			Substations: len(extraction.Substations),
			PowerLines:  extraction.PowerLines,
			Likely:      likely,
			Possible:    possible,
			StartedAt:   started,
		},
		Plants:      extraction.Plants,
		Substations: extraction.Substations,
		Connections: connections,
	}
	run.Summary.Runtime = time.Since(started)

	// 3. Report
	logger.Section("report")
	reporter := o.newReporter(req.OutDir)
	if err := reporter.Write(run); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	logger.Info("reports written to %s", reporter.Dir())

	// 4. Archive (best effort)
	if req.Archive && o.archive != nil {
		if err := o.archive.Save(ctx, run); err != nil {
			logger.Warn("archiving run failed: %v", err)
		} else {
			logger.Info("run archived as %s", run.ID)
		}
	}

	return run, nil
}
