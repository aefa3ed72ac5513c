// Package deck writes slide decks as OOXML presentations.
package deck

import (
	"bytes"
	"context"
	"fmt"
	"io"

	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"

	"nbreport/config"
	"nbreport/misc"
	"nbreport/render"
)

// Renderer produces pptx documents.
type Renderer struct {
	cfg *config.DocumentConfig
	log *zap.Logger
}

func NewRenderer(cfg *config.DocumentConfig, log *zap.Logger) *Renderer {
	return &Renderer{cfg: cfg, log: log.Named("deck")}
}

// Render presents document on slides of the request template, configured
// template or built-in one, in that order.
func (r *Renderer) Render(ctx context.Context, doc *render.Document, w io.Writer) (*render.Result, error) {
	file := doc.Template
	if len(file) == 0 {
		file = r.cfg.Deck.Template
	}
	if err := render.CheckTemplate(file); err != nil {
		return nil, err
	}

	var (
		t   *template
		err error
	)
	if len(file) > 0 {
		t, err = loadTemplate(file)
	} else {
		t, err = loadBase()
	}
	if err != nil {
		return nil, err
	}
	if len(t.notesMaster) == 0 {
		r.log.Warn("Template has no notes master, provenance notes will be dropped", zap.String("template", file))
	}

	b := &builder{t: t}
	refs := render.Present(doc, b)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	author := doc.Meta.Author
	if len(author) == 0 {
		author = r.cfg.PDF.Author
	}
	props := properties{
		title:       doc.Title,
		author:      author,
		subject:     doc.Meta.ProjectName,
		application: fmt.Sprintf("%s %s", misc.GetAppName(), misc.GetVersion()),
		created:     doc.Generated,
	}

	if !r.cfg.FixZip {
		if err := t.write(w, b.slides, props); err != nil {
			return nil, fmt.Errorf("unable to write presentation: %w", err)
		}
	} else {
		var buf bytes.Buffer
		if err := t.write(&buf, b.slides, props); err != nil {
			return nil, fmt.Errorf("unable to write presentation: %w", err)
		}
		if err := copyZipWithoutDataDescriptors(buf.Bytes(), w); err != nil {
			return nil, err
		}
	}

	r.log.Debug("Deck written", zap.Int("slides", len(b.slides)), zap.Int("notes", b.notesCount()), zap.String("template", file))
	return &render.Result{Pages: len(b.slides), References: refs}, nil
}

// copyZipWithoutDataDescriptors re-packs archive so local headers carry
// sizes, some readers insist on that.
func copyZipWithoutDataDescriptors(data []byte, to io.Writer) error {

	r, err := fixzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("unable to read presentation archive: %w", err)
	}

	w := fixzip.NewWriter(to)
	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to re-pack presentation: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to re-pack presentation: %w", err)
	}
	return nil
}
