package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suykerbuyk/gng-pvt/internal/archive"
	"github.com/suykerbuyk/gng-pvt/internal/config"
	"github.com/suykerbuyk/gng-pvt/internal/engine"
	"github.com/suykerbuyk/gng-pvt/internal/history"
	"github.com/suykerbuyk/gng-pvt/internal/plot"
	"github.com/suykerbuyk/gng-pvt/internal/report"
	"github.com/suykerbuyk/gng-pvt/internal/sequence"
)

// Result holds the output of a finished session.
type Result struct {
	ID          string
	Summary     engine.Summary
	Report      report.Report
	ReportPath  string
	PlotPath    string
	ArchivePath string
	Simulated   bool
	// Warnings collects export steps that failed. The session itself
	// completed and Summary is valid.
	Warnings []error
}

// NewID returns a fresh session ID.
func NewID() string {
	return uuid.NewString()
}

// NewRand returns the session random source. A zero seed draws one from
// the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Prepare resolves the target digit and builds the stimulus sequence.
// A sequence that cannot be built is a hard failure: no session starts.
func Prepare(ec engine.Config, rng *rand.Rand) (engine.Config, *sequence.Sequence, error) {
	ec = ec.ResolveTarget(rng)
	if err := ec.Validate(); err != nil {
		return ec, nil, err
	}
	seq, err := ec.GenerateSequence(rng)
	if err != nil {
		return ec, nil, fmt.Errorf("prepare session: %w", err)
	}
	return ec, seq, nil
}

// Export writes the report, plot, archive and history row for a finished
// session. Individual failures are logged and returned as warnings; they
// never discard the in-memory summary.
func Export(cfg config.Config, id string, s engine.Summary, simulated bool, log *zap.Logger) *Result {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("session_id", id))

	at := s.EndedAt
	if at.IsZero() {
		at = time.Now()
	}
	base := report.BaseName(at)

	res := &Result{
		ID:        id,
		Summary:   s,
		Report:    report.FromSummary(s, at),
		Simulated: simulated,
	}
	warn := func(step string, err error) {
		log.Error("export failed", zap.String("step", step), zap.Error(err))
		res.Warnings = append(res.Warnings, fmt.Errorf("%s: %w", step, err))
	}

	path, err := report.Write(cfg.DataDir, base, res.Report)
	if err != nil {
		warn("report", err)
	} else {
		res.ReportPath = path
	}

	path, err = plot.Save(cfg.DataDir, base, s.ReactionTimes)
	switch {
	case errors.Is(err, plot.ErrNoReactionTimes):
		log.Info("plot skipped", zap.Error(err))
	case err != nil:
		warn("plot", err)
	default:
		res.PlotPath = path
	}

	if cfg.Archive.Compress && res.ReportPath != "" {
		path, err := archive.Archive(id, res.ReportPath, cfg.ArchiveDir())
		if err != nil {
			warn("archive", err)
		} else {
			res.ArchivePath = path
		}
	}

	if err := record(cfg.HistoryPath(), res); err != nil {
		warn("history", err)
	}

	log.Info("session exported",
		zap.String("report", res.ReportPath),
		zap.String("plot", res.PlotPath),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res
}

func record(dbPath string, res *Result) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	e := history.FromSummary(res.ID, res.Summary)
	e.ReportPath = res.ReportPath
	e.PlotPath = res.PlotPath
	e.ArchivePath = res.ArchivePath
	e.Simulated = res.Simulated
	return store.Add(e)
}
