package jobs

import (
	"nbreport/utils/debug"
)

// String returns readable multi-line description of the job.
func (j *Job) String() string {
	if j == nil {
		return "<nil Job>"
	}
	tw := debug.NewTreeWriter()
	tw.Line(0, "Job %s", j.ID)
	tw.Field(1, "status", j.Status.String())
	tw.Field(1, "format", j.Format.String())
	tw.TextBlock(1, "title", j.Title)
	tw.Stamp(1, "created", j.Created)
	tw.Stamp(1, "updated", j.Updated)
	tw.Field(1, "url", j.DownloadURL)
	tw.Field(1, "artifact", j.Artifact)
	if len(j.Error) > 0 {
		tw.TextBlock(1, "error", j.Error)
	}
	return tw.String()
}

// Summary is single line description used in listings.
func (j *Job) Summary() string {
	return j.ID + "\t" + j.Status.String() + "\t" + j.Format.String() + "\t" +
		j.Updated.UTC().Format("2006-01-02 15:04:05") + "\t" + j.Title
}
