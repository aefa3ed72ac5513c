package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"nbreport/common"
	"nbreport/config"
	"nbreport/render"
	"nbreport/render/deck"
	"nbreport/render/pdf"
	"nbreport/report"
	"nbreport/visual"
	"nbreport/visual/chart"
)

// DownloadPrefix is URL path artifacts are served under.
const DownloadPrefix = "/exports/"

// Renderer produces artifact of a single format.
type Renderer interface {
	Render(ctx context.Context, doc *render.Document, w io.Writer) (*render.Result, error)
}

// Runner is export envelope: it moves job through its states while request
// is rendered and publishes artifact.
type Runner struct {
	cfg    *config.DocumentConfig
	store  Store
	log    *zap.Logger
	now    func() time.Time
	charts visual.ChartRenderer
}

type Option func(*Runner)

// WithCharts replaces configured chart backend.
func WithCharts(c visual.ChartRenderer) Option {
	return func(r *Runner) { r.charts = c }
}

// WithClock replaces time source used for job stamps and title page.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(cfg *config.DocumentConfig, store Store, log *zap.Logger, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, store: store, log: log.Named("jobs"), now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Submit registers queued job for request.
func (r *Runner) Submit(ctx context.Context, req *report.Request) (*Job, error) {
	now := r.now().UTC()
	job := &Job{
		ID:      NewID(),
		Status:  common.JobStatusQueued,
		Format:  req.Format,
		Title:   req.Title,
		Created: now,
		Updated: now,
	}
	if err := r.store.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Export submits request and processes it right away.
func (r *Runner) Export(ctx context.Context, req *report.Request) (*Job, error) {
	job, err := r.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	err = r.Process(ctx, job, req)
	return job, err
}

// Process renders request of queued job. Job always ends in terminal state,
// returned error is the reason of failure.
func (r *Runner) Process(ctx context.Context, job *Job, req *report.Request) (err error) {
	start := time.Now()
	log := r.log.With(zap.String("job", job.ID))
	log.Info("Export starting", zap.Stringer("format", job.Format), zap.Int("blocks", len(req.Content)))

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		if err == nil {
			log.Info("Export completed", zap.Duration("elapsed", time.Since(start)), zap.String("url", job.DownloadURL))
			return
		}
		job.Error = failureMessage(err)
		job.DownloadURL = ""
		job.Artifact = ""
		// record failure even if request context is gone
		if uerr := r.advance(context.WithoutCancel(ctx), job, common.JobStatusFailed); uerr != nil {
			err = multierr.Append(err, uerr)
		}
		log.Error("Export failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
	}()

	if err = r.advance(ctx, job, common.JobStatusProcessing); err != nil {
		return err
	}

	artifact, err := r.produce(ctx, job, req, log)
	if err != nil {
		return err
	}
	job.Artifact = artifact
	job.DownloadURL = DownloadPrefix + filepath.Base(artifact)
	return r.advance(ctx, job, common.JobStatusCompleted)
}

// failureMessage keeps text of expected failures intact and marks
// everything else as internal.
func failureMessage(err error) string {
	if errors.Is(err, visual.ErrChartRender) || errors.Is(err, render.ErrTemplateMissing) {
		return err.Error()
	}
	return "failed: " + err.Error()
}

func (r *Runner) advance(ctx context.Context, job *Job, status common.JobStatus) error {
	job.Status = status
	job.Updated = r.now().UTC()
	if err := r.store.Update(ctx, job); err != nil {
		return fmt.Errorf("unable to update job: %w", err)
	}
	return nil
}

func (r *Runner) renderer(format common.Format) (Renderer, error) {
	switch format {
	case common.FormatPdf:
		return pdf.NewRenderer(r.cfg.PDF, r.log), nil
	case common.FormatPptx:
		return deck.NewRenderer(r.cfg, r.log), nil
	default:
		return nil, fmt.Errorf("%w: %s", report.ErrUnknownFormat, format.String())
	}
}

// chartRenderer returns injected backend or creates configured one, which
// caller must close.
func (r *Runner) chartRenderer() (visual.ChartRenderer, func() error, error) {
	if r.charts != nil {
		return r.charts, func() error { return nil }, nil
	}
	c, err := chart.New(r.cfg.Chart, r.log)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

// produce renders artifact in private work directory and publishes it under
// job id. Work directory is removed in any case.
func (r *Runner) produce(ctx context.Context, job *Job, req *report.Request, log *zap.Logger) (_ string, err error) {
	rnd, err := r.renderer(job.Format)
	if err != nil {
		return "", err
	}

	work, err := os.MkdirTemp(r.cfg.WorkDir, "nbreport-"+job.ID+"-")
	if err != nil {
		return "", fmt.Errorf("unable to create work directory: %w", err)
	}
	defer func() {
		err = multierr.Append(err, os.RemoveAll(work))
	}()

	charts, closeCharts, err := r.chartRenderer()
	if err != nil {
		return "", fmt.Errorf("unable to prepare chart backend: %w", err)
	}
	defer func() {
		err = multierr.Append(err, closeCharts())
	}()

	assets, err := render.Resolve(ctx, req.Content, visual.NewResolver(r.cfg.SVG, charts, log), log)
	if err != nil {
		return "", err
	}
	doc := render.NewDocument(req, assets, r.now())

	staged := filepath.Join(work, job.ID+job.Format.Ext())
	res, err := r.write(ctx, rnd, doc, staged)
	if err != nil {
		return "", err
	}
	if job.Format == common.FormatPdf && r.cfg.PDF.Validate {
		if err := validate(staged, res.Pages); err != nil {
			return "", err
		}
	}
	log.Debug("Artifact rendered", zap.Int("pages", res.Pages), zap.Int("toc", res.TOCPages), zap.Int("references", len(res.References)))

	return publish(staged, filepath.Join(r.cfg.OutDir, job.ID+job.Format.Ext()))
}

func (r *Runner) write(ctx context.Context, rnd Renderer, doc *render.Document, name string) (_ *render.Result, err error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("unable to create artifact: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	res, err := rnd.Render(ctx, doc, f)
	if err != nil {
		return nil, err
	}
	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("unable to flush artifact: %w", err)
	}
	return res, nil
}

func validate(name string, pages int) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := pdf.Validate(f)
	if err != nil {
		return err
	}
	if n != pages {
		return fmt.Errorf("artifact has %d pages, renderer reported %d", n, pages)
	}
	return nil
}

// publish moves fully written artifact to its final name. Work directory may
// be on another file system, then artifact is copied next to destination
// first, so destination never holds partial file.
func publish(src, dst string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}

	tmp := dst + ".part"
	if err := copyFile(src, tmp); err != nil {
		return "", multierr.Append(err, removeIfExists(tmp))
	}
	if err := os.Rename(tmp, dst); err != nil {
		return "", multierr.Append(fmt.Errorf("unable to publish artifact: %w", err), removeIfExists(tmp))
	}
	return dst, nil
}

func removeIfExists(name string) error {
	if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func copyFile(src, dst string) error {

	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destinationFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destinationFile.Close()

	if _, err = io.Copy(destinationFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}
	if err = destinationFile.Sync(); err != nil {
		return fmt.Errorf("failed to flush destination file: %w", err)
	}
	if err = destinationFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}
	return nil
}
