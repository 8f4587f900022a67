package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/mtags/internal/matlab"
	"github.com/dgallion1/mtags/internal/mtag"
	"github.com/dgallion1/mtags/internal/source"
)

// Worker scans the files of a single batch job.
type Worker struct {
	log   *slog.Logger
	opts  matlab.Options
	stats *ScanStats
}

func NewWorker(log *slog.Logger, opts matlab.Options, stats *ScanStats) *Worker {
	return &Worker{
		log:   log,
		opts:  opts,
		stats: stats,
	}
}

// Process outlines every file in the job. Per-file failures are
// recorded on the job and do not stop the batch; the scanner itself
// never fails, so errors here are extraction-level (unsupported or
// empty files).
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	job.SetStatus(StatusScanning, "scanning")

	failed := 0
	inputs := job.Inputs()
	for _, in := range inputs {
		select {
		case <-ctx.Done():
			job.AddError("cancelled")
			job.SetStatus(StatusFailed, "cancelled")
			return
		default:
		}

		res := w.scanFile(in)
		if res.Error != "" {
			failed++
			log.Warn("file scan failed", "file", in.Name, "error", res.Error)
		}
		job.AddResult(res)
	}

	log.Info("batch scan complete", "files", len(inputs), "failed", failed)

	switch {
	case failed == 0:
		job.SetStatus(StatusCompleted, "done")
	case failed < len(inputs):
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "scanning")
	}
}

func (w *Worker) scanFile(in InputFile) FileOutline {
	res := FileOutline{
		Name:        in.Name,
		ContentHash: ContentHashHex(in.Data),
	}

	units, err := source.UnitsForFile(in.Name, in.Data)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if len(units) == 0 {
		res.Error = "no matlab source found"
		return res
	}

	var tags []*mtag.FunctionTag
	for _, u := range units {
		t0 := time.Now()
		tags = append(tags, matlab.Parse(u.Text, u.Path, w.opts)...)
		if w.stats != nil {
			w.stats.Record(time.Since(t0))
		}
	}
	if tags == nil {
		tags = []*mtag.FunctionTag{}
	}
	res.Tags = tags
	return res
}
