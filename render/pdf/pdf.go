package pdf

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"nbreport/config"
	"nbreport/misc"
	"nbreport/render"
)

// Renderer produces PDF documents.
type Renderer struct {
	cfg config.PDFConfig
	log *zap.Logger
}

func NewRenderer(cfg config.PDFConfig, log *zap.Logger) *Renderer {
	return &Renderer{cfg: cfg, log: log.Named("pdf")}
}

// Render lays document out on a scratch PDF, then draws final document with
// table of contents into w.
func (r *Renderer) Render(ctx context.Context, doc *render.Document, w io.Writer) (*render.Result, error) {
	if err := render.CheckTemplate(doc.Template); err != nil {
		return nil, err
	}

	scratch, err := newSurface(doc.Style, r.cfg.Fonts)
	if err != nil {
		return nil, err
	}
	plan := render.Layout(doc, scratch)
	r.log.Debug("Layout done", zap.Int("pages", plan.Pages), zap.Int("toc", plan.TOCPages), zap.Int("headings", len(plan.Entries)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, err := newSurface(doc.Style, r.cfg.Fonts)
	if err != nil {
		return nil, err
	}
	author := doc.Meta.Author
	if len(author) == 0 {
		author = r.cfg.Author
	}
	s.p.SetTitle(doc.Title, true)
	s.p.SetAuthor(author, true)
	s.p.SetCreator(fmt.Sprintf("%s %s", misc.GetAppName(), misc.GetVersion()), true)
	if len(doc.Meta.ProjectName) > 0 {
		s.p.SetSubject(doc.Meta.ProjectName, true)
	}
	s.p.SetCreationDate(doc.Generated)

	res, err := render.Emit(doc, plan, s, render.Options{NestedOutline: r.cfg.OutlineNested})
	if err != nil {
		return nil, err
	}
	if err := s.p.Output(w); err != nil {
		return nil, fmt.Errorf("unable to write PDF: %w", err)
	}
	return res, nil
}
