package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcherranz/spain-power-grid-analysis/internal/core/domain"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/ports/driven"
	"github.com/jcherranz/spain-power-grid-analysis/internal/core/ports/driving"
)

// stubAnalyzer returns a canned run and records the request.
type stubAnalyzer struct {
	run     *domain.Run
	err     error
	lastReq driving.AnalysisRequest
}

func (s *stubAnalyzer) Run(_ context.Context, req driving.AnalysisRequest) (*domain.Run, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.run, nil
}

// stubInspector returns a canned substation report.
type stubInspector struct {
	report *driving.SubstationReport
	err    error
	lastID int64
}

func (s *stubInspector) Inspect(_ context.Context, id int64, _ float64) (*driving.SubstationReport, error) {
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

// stubArchive serves runs from a map.
type stubArchive struct {
	runs map[string]*domain.Run
}

func (s *stubArchive) Save(_ context.Context, run *domain.Run) error {
	s.runs[run.ID] = run
	return nil
}

func (s *stubArchive) Get(_ context.Context, id string) (*domain.Run, error) {
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

func (s *stubArchive) List(_ context.Context) ([]domain.Run, error) {
	var runs []domain.Run
	for _, run := range s.runs {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(a, b int) bool {
		return runs[a].Summary.StartedAt.After(runs[b].Summary.StartedAt)
	})
	return runs, nil
}

func (s *stubArchive) Close() error { return nil }

// stubConfig is an in-memory config store.
type stubConfig struct {
	data map[string]any
}

func newStubConfig() *stubConfig {
	return &stubConfig{data: map[string]any{}}
}

func (s *stubConfig) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *stubConfig) GetString(key string) string {
	v, _ := s.data[key].(string)
	return v
}

func (s *stubConfig) GetInt(key string) int {
	v, _ := s.data[key].(int)
	return v
}

func (s *stubConfig) GetFloat(key string) float64 {
	switch v := s.data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (s *stubConfig) GetBool(key string) bool {
	v, _ := s.data[key].(bool)
	return v
}

func (s *stubConfig) Set(key string, value any) error {
	s.data[key] = value
	return nil
}

func (s *stubConfig) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stubReporter records the run and directory it was asked to write.
type stubReporter struct {
	dir     string
	written *domain.Run
}

func (s *stubReporter) Write(run *domain.Run) error {
	s.written = run
	return nil
}

func (s *stubReporter) Dir() string { return s.dir }

func stubRun() *domain.Run {
	return &domain.Run{
		ID: "run-1",
		Summary: domain.RunSummary{
			Area:        "Madrid_Metropolitan_Area",
			BBox:        domain.BoundingBox{South: 40.3, West: -3.8, North: 40.5, East: -3.6},
			Plants:      3,
			Substations: 85,
			PowerLines:  42,
			Likely:      12,
			Possible:    30,
			StartedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Runtime:     3 * time.Second,
		},
	}
}

// resetCLI clears wired services and flag state between tests.
func resetCLI(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		Configure(Deps{})
		analyzeArea = ""
		analyzeBBox = ""
		analyzeMaxDist = 0
		analyzeLikely = 0
		analyzeOut = ""
		analyzeNoArchive = false
		substationRadius = 5
		substationOut = ""
		runsExportOut = ""
		verboseFlag = false
		rootCmd.SetArgs(nil)
	})
}

// execute runs the root command with args and captures output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// TestAnalyzeCommand_Defaults runs with the built-in Madrid defaults.
func TestAnalyzeCommand_Defaults(t *testing.T) {
	resetCLI(t)
	analyzer := &stubAnalyzer{run: stubRun()}
	Configure(Deps{Analyzer: analyzer})

	out, err := execute(t, "analyze")
	require.NoError(t, err)

	req := analyzer.lastReq
	assert.Equal(t, defaultAreaName, req.Area)
	assert.Equal(t, "40.3,-3.8,40.5,-3.6", req.BBox.String())
	assert.Equal(t, 25.0, req.MaxDistanceKM)
	assert.Equal(t, 10.0, req.LikelyDistanceKM)
	assert.Equal(t, defaultOutDir, req.OutDir)
	assert.True(t, req.Archive)

	assert.Contains(t, out, "Plants found:        3")
	assert.Contains(t, out, "Substations found:   85")
	assert.Contains(t, out, "Likely connections:  12")
}

// TestAnalyzeCommand_FlagsOverrideConfig gives flags priority over
// config values, which beat the defaults.
func TestAnalyzeCommand_FlagsOverrideConfig(t *testing.T) {
	resetCLI(t)
	analyzer := &stubAnalyzer{run: stubRun()}
	cfg := newStubConfig()
	cfg.Set(driven.KeyAreaName, "Configured_Area")
	cfg.Set(driven.KeyMaxDistance, 30.0)
	cfg.Set(driven.KeyOutputDir, "config-out")
	Configure(Deps{Analyzer: analyzer, Config: cfg})

	_, err := execute(t, "analyze", "--area", "Flag_Area", "--out", "flag-out", "--no-archive")
	require.NoError(t, err)

	req := analyzer.lastReq
	assert.Equal(t, "Flag_Area", req.Area)
	assert.Equal(t, 30.0, req.MaxDistanceKM)
	assert.Equal(t, "flag-out", req.OutDir)
	assert.False(t, req.Archive)
}

// TestAnalyzeCommand_BadBBox rejects malformed regions before running.
func TestAnalyzeCommand_BadBBox(t *testing.T) {
	resetCLI(t)
	analyzer := &stubAnalyzer{run: stubRun()}
	Configure(Deps{Analyzer: analyzer})

	_, err := execute(t, "analyze", "--bbox", "not-a-bbox")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidBoundingBox)
}

// TestAnalyzeCommand_Unconfigured fails with a clear message when main
// has not wired the services.
func TestAnalyzeCommand_Unconfigured(t *testing.T) {
	resetCLI(t)
	Configure(Deps{})

	_, err := execute(t, "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

// TestRootCommand_RunsAnalysis makes a bare invocation behave like the
// analyze subcommand.
func TestRootCommand_RunsAnalysis(t *testing.T) {
	resetCLI(t)
	analyzer := &stubAnalyzer{run: stubRun()}
	Configure(Deps{Analyzer: analyzer})

	out, err := execute(t)
	require.NoError(t, err)
	assert.Equal(t, defaultAreaName, analyzer.lastReq.Area)
	assert.Contains(t, out, "Reports written to")
}

// TestSubstationCommand prints the report closest first.
func TestSubstationCommand(t *testing.T) {
	resetCLI(t)
	sub := domain.InfrastructureRecord{
		ID:       170140947,
		Element:  domain.ElementWay,
		Kind:     domain.KindSubstation,
		Name:     "SET Villaverde",
		Location: domain.GeoPoint{Lat: 40.41, Lon: -3.69},
		Tags:     map[string]string{"voltage": "220000"},
	}
	plant := domain.InfrastructureRecord{
		ID:       1001,
		Element:  domain.ElementWay,
		Kind:     domain.KindPlant,
		Name:     "Central Solar Sur",
		Location: domain.GeoPoint{Lat: 40.40, Lon: -3.70},
		Tags:     map[string]string{"plant:source": "solar"},
	}
	inspector := &stubInspector{report: &driving.SubstationReport{
		Substation: sub,
		Plants:     []domain.InfrastructureRecord{plant},
		Distances:  map[string]float64{plant.Key(): 1.41},
	}}
	Configure(Deps{Inspector: inspector})

	out, err := execute(t, "substation", "170140947")
	require.NoError(t, err)

	assert.Equal(t, int64(170140947), inspector.lastID)
	assert.Contains(t, out, "SET Villaverde")
	assert.Contains(t, out, "Central Solar Sur")
	assert.Contains(t, out, "solar")
	assert.Contains(t, out, "1.41 km")
}

// TestSubstationCommand_BadID rejects non-numeric ids.
func TestSubstationCommand_BadID(t *testing.T) {
	resetCLI(t)
	Configure(Deps{Inspector: &stubInspector{}})

	_, err := execute(t, "substation", "not-a-number")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid substation id")
}

// TestSubstationCommand_RequiresArg rejects missing ids.
func TestSubstationCommand_RequiresArg(t *testing.T) {
	resetCLI(t)
	Configure(Deps{Inspector: &stubInspector{}})

	_, err := execute(t, "substation")
	require.Error(t, err)
}

// TestSubstationCommand_WritesCSV writes the optional CSV output.
func TestSubstationCommand_WritesCSV(t *testing.T) {
	resetCLI(t)
	sub := domain.InfrastructureRecord{ID: 1, Element: domain.ElementWay, Kind: domain.KindSubstation}
	plant := domain.InfrastructureRecord{ID: 2, Element: domain.ElementWay, Kind: domain.KindPlant}
	inspector := &stubInspector{report: &driving.SubstationReport{
		Substation: sub,
		Plants:     []domain.InfrastructureRecord{plant},
		Distances:  map[string]float64{plant.Key(): 2.5},
	}}
	Configure(Deps{Inspector: inspector})

	path := filepath.Join(t.TempDir(), "substation.csv")
	_, err := execute(t, "substation", "1", "--out", path)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

// TestRunsListCommand prints archived run summaries.
func TestRunsListCommand(t *testing.T) {
	resetCLI(t)
	archive := &stubArchive{runs: map[string]*domain.Run{"run-1": stubRun()}}
	Configure(Deps{Archive: archive})

	out, err := execute(t, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "Madrid_Metropolitan_Area")
	assert.Contains(t, out, "plants=3 substations=85")
}

// TestRunsListCommand_Empty reports the empty archive.
func TestRunsListCommand_Empty(t *testing.T) {
	resetCLI(t)
	Configure(Deps{Archive: &stubArchive{runs: map[string]*domain.Run{}}})

	out, err := execute(t, "runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No archived runs.")
}

// TestRunsExportCommand re-writes reports for an archived run.
func TestRunsExportCommand(t *testing.T) {
	resetCLI(t)
	archive := &stubArchive{runs: map[string]*domain.Run{"run-1": stubRun()}}
	reporter := &stubReporter{}
	Configure(Deps{
		Archive: archive,
		NewReporter: func(dir string) driven.ReportWriter {
			reporter.dir = dir
			return reporter
		},
	})

	out, err := execute(t, "runs", "export", "run-1", "--out", "exported")
	require.NoError(t, err)
	assert.Equal(t, "exported", reporter.dir)
	require.NotNil(t, reporter.written)
	assert.Equal(t, "run-1", reporter.written.ID)
	assert.Contains(t, out, "exported")
}

// TestRunsExportCommand_UnknownRun surfaces the archive error.
func TestRunsExportCommand_UnknownRun(t *testing.T) {
	resetCLI(t)
	Configure(Deps{
		Archive:     &stubArchive{runs: map[string]*domain.Run{}},
		NewReporter: func(string) driven.ReportWriter { return &stubReporter{} },
	})

	_, err := execute(t, "runs", "export", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

// TestConfigCommands covers set, get and list against the store.
func TestConfigCommands(t *testing.T) {
	resetCLI(t)
	cfg := newStubConfig()
	Configure(Deps{Config: cfg})

	_, err := execute(t, "config", "set", driven.KeyMaxDistance, "15.5")
	require.NoError(t, err)
	assert.Equal(t, 15.5, cfg.data[driven.KeyMaxDistance])

	out, err := execute(t, "config", "get", driven.KeyMaxDistance)
	require.NoError(t, err)
	assert.Contains(t, out, "15.5")

	out, err = execute(t, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, driven.KeyMaxDistance+" = 15.5")
}

// TestConfigGet_UnsetKey fails for keys that were never set.
func TestConfigGet_UnsetKey(t *testing.T) {
	resetCLI(t)
	Configure(Deps{Config: newStubConfig()})

	_, err := execute(t, "config", "get", "no.such.key")
	require.Error(t, err)
}

// TestParseConfigValue keeps the natural TOML types.
func TestParseConfigValue(t *testing.T) {
	assert.Equal(t, true, parseConfigValue("true"))
	assert.Equal(t, int64(42), parseConfigValue("42"))
	assert.Equal(t, 2.5, parseConfigValue("2.5"))
	assert.Equal(t, "hello", parseConfigValue("hello"))
}

// TestVersionCommand prints the injected version.
func TestVersionCommand(t *testing.T) {
	resetCLI(t)
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "powergrid version 1.2.3")
}

// TestDoctorCommand passes when the source answers and the output
// directory is writable.
func TestDoctorCommand(t *testing.T) {
	resetCLI(t)
	cfg := newStubConfig()
	cfg.Set(driven.KeyOutputDir, t.TempDir())
	Configure(Deps{Extractor: &pingExtractor{}, Config: cfg})

	out, err := execute(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "All checks passed.")
}

// TestDoctorCommand_SourceDown fails when the source cannot be reached.
func TestDoctorCommand_SourceDown(t *testing.T) {
	resetCLI(t)
	cfg := newStubConfig()
	cfg.Set(driven.KeyOutputDir, t.TempDir())
	Configure(Deps{Extractor: &pingExtractor{err: domain.ErrSourceUnavailable}, Config: cfg})

	out, err := execute(t, "doctor")
	require.Error(t, err)
	assert.Contains(t, out, "FAIL")
}

// pingExtractor only answers Ping; the doctor check needs nothing else.
type pingExtractor struct {
	err error
}

func (p *pingExtractor) Extract(_ context.Context, _ domain.BoundingBox) (*domain.ExtractionResult, error) {
	return nil, p.err
}

func (p *pingExtractor) SubstationByID(_ context.Context, _ int64) (*domain.InfrastructureRecord, error) {
	return nil, p.err
}

func (p *pingExtractor) PlantsAround(_ context.Context, _ domain.GeoPoint, _ int) ([]domain.InfrastructureRecord, error) {
	return nil, p.err
}

func (p *pingExtractor) Ping(_ context.Context) error { return p.err }
