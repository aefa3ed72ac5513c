package jobs

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"nbreport/config"
	"nbreport/report"
)

const (
	maxNameRunes = 60
	defaultName  = "report"
	stampLayout  = "20060102-150405"
)

// NameValues are variables available to download name template.
type NameValues struct {
	JobID       string
	Format      string
	ProjectID   string
	ProjectName string
	ReportID    string
	Author      string
	Title       string
	// Modified is artifact modification time formatted as 20060102-150405
	Modified string
	ModTime  time.Time
}

func nameValues(job *Job, meta *report.Metadata, title string, modTime time.Time) NameValues {
	if meta == nil {
		meta = &report.Metadata{}
	}
	return NameValues{
		JobID:       job.ID,
		Format:      job.Format.String(),
		ProjectID:   meta.ProjectID,
		ProjectName: meta.ProjectName,
		ReportID:    meta.ReportID,
		Author:      meta.Author,
		Title:       title,
		Modified:    modTime.UTC().Format(stampLayout),
		ModTime:     modTime.UTC(),
	}
}

// DownloadName suggests human readable artifact name without extension:
// project, title and modification time, slug sanitized.
func DownloadName(job *Job, meta *report.Metadata, title string, modTime time.Time) string {
	v := nameValues(job, meta, title, modTime)
	project := v.ProjectName
	if len(project) == 0 {
		project = v.ProjectID
	}
	if len(project) == 0 {
		project = "project"
	}
	return cleanName(project + "_" + v.Title + "_" + v.Modified)
}

// cleanName produces slug limited to maxNameRunes.
func cleanName(name string) string {
	s := slug.Make(name)
	if r := []rune(s); len(r) > maxNameRunes {
		s = string(r[:maxNameRunes])
	}
	s = strings.TrimRight(s, "-_")
	if len(s) == 0 {
		return defaultName
	}
	return s
}

// Namer expands optional download name template, falling back to
// DownloadName.
type Namer struct {
	tmpl *template.Template
}

func NewNamer(field string) (*Namer, error) {
	if len(strings.TrimSpace(field)) == 0 {
		return &Namer{}, nil
	}
	tmpl, err := template.New(string(config.DownloadNameTemplateFieldName)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return nil, fmt.Errorf("unable to parse template field %s: %w", config.DownloadNameTemplateFieldName, err)
	}
	return &Namer{tmpl: tmpl}, nil
}

// Name returns download file name including extension.
func (n *Namer) Name(job *Job, meta *report.Metadata, title string, modTime time.Time) (string, error) {
	ext := job.Format.Ext()
	if n.tmpl == nil {
		return DownloadName(job, meta, title, modTime) + ext, nil
	}
	buf := new(bytes.Buffer)
	if err := n.tmpl.Execute(buf, nameValues(job, meta, title, modTime)); err != nil {
		return DownloadName(job, meta, title, modTime) + ext, fmt.Errorf("unable to expand download name: %w", err)
	}
	return cleanName(buf.String()) + ext, nil
}
