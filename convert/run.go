// Package convert implements CLI subcommands on top of job runner.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"nbreport/archive"
	"nbreport/common"
	"nbreport/config"
	"nbreport/jobs"
	"nbreport/report"
	"nbreport/state"
)

const stdinSource = "-"

// source is decoded export request together with the name it came under.
type source struct {
	name string
	req  *report.Request
}

// Run handles export subcommand.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("export")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src != stdinSource {
		if src, err = filepath.Abs(src); err != nil {
			return err
		}
	}

	dst := cmd.Args().Get(1)
	if len(dst) > 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Format, env.Template, env.Overwrite = cmd.String("to"), cmd.String("template"), cmd.Bool("overwrite")
	if out := cmd.String("out"); len(out) > 0 {
		env.Cfg.Document.OutDir = out
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, cmd.Root().Reader, env)
}

// process decodes every request found in src first, so input errors are
// reported before any job is created, then exports them one by one. When dst
// is not empty artifacts are copied there under suggested download names.
func process(ctx context.Context, src, dst string, stdin io.Reader, env *state.LocalEnv) (err error) {
	log := env.Log.Named("export")

	sources, err := collect(src, stdin, env)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		log.Warn("No export requests found", zap.String("source", src))
		return nil
	}
	if err := override(sources, env); err != nil {
		return err
	}

	namer, err := jobs.NewNamer(env.Cfg.Document.DownloadNameTemplate)
	if err != nil {
		return err
	}
	store, err := jobs.Open(&env.Cfg.Jobs)
	if err != nil {
		return fmt.Errorf("unable to open job store: %w", err)
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	runner := jobs.NewRunner(&env.Cfg.Document, store, env.Log)
	var failed int
	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := export(ctx, runner, namer, s, dst, env); err != nil {
			log.Error("Unable to export", zap.String("source", s.name), zap.Error(err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d exports failed", failed, len(sources))
	}
	return nil
}

// collect reads stdin, single request file, all json files in directory or
// all json entries of zip archive.
func collect(src string, stdin io.Reader, env *state.LocalEnv) ([]source, error) {
	if src == stdinSource {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("unable to read standard input: %w", err)
		}
		env.Rpt.StoreData("input/stdin.json", data)
		s, err := decode("stdin", data)
		if err != nil {
			return nil, err
		}
		return []source{s}, nil
	}

	fi, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("input source was not found: %w", err)
	}

	var sources []source
	switch {
	case fi.IsDir():
		entries, err := os.ReadDir(src)
		if err != nil {
			return nil, fmt.Errorf("unable to read directory: %w", err)
		}
		var names []string
		for _, e := range entries {
			if e.Type().IsRegular() && isRequest(e.Name()) {
				names = append(names, e.Name())
			}
		}
		slices.SortFunc(names, func(a, b string) int {
			switch {
			case natural.Less(a, b):
				return -1
			case natural.Less(b, a):
				return 1
			}
			return 0
		})
		for _, n := range names {
			s, err := decodeFile(filepath.Join(src, n), env)
			if err != nil {
				return nil, err
			}
			sources = append(sources, s)
		}
	case strings.EqualFold(filepath.Ext(src), ".zip"):
		err := archive.Walk(src,
			func(name string) bool {
				return !isRequest(name)
			},
			func(name string, data []byte) error {
				env.Rpt.StoreData("input/"+filepath.Base(src)+"/"+name, data)
				s, err := decode(filepath.Base(src)+":"+name, data)
				if err != nil {
					return err
				}
				sources = append(sources, s)
				return nil
			})
		if err != nil {
			return nil, err
		}
	default:
		s, err := decodeFile(src, env)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, nil
}

func isRequest(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}

func decodeFile(path string, env *state.LocalEnv) (source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return source{}, err
	}
	if err := env.Rpt.StoreCopy("input/"+filepath.Base(path), path); err != nil {
		env.Log.Warn("Unable to store request copy", zap.String("file", path), zap.Error(err))
	}
	return decode(path, data)
}

func decode(name string, data []byte) (source, error) {
	req, err := report.Decode(bytes.NewReader(data))
	if err != nil {
		return source{}, fmt.Errorf("%s: %w", name, err)
	}
	return source{name: name, req: req}, nil
}

// override applies command line arguments to decoded requests.
func override(sources []source, env *state.LocalEnv) error {
	var format *common.Format
	if len(env.Format) > 0 {
		f, err := common.ParseFormat(strings.ToLower(env.Format))
		if err != nil {
			return fmt.Errorf("%w: %q", report.ErrUnknownFormat, env.Format)
		}
		format = &f
	}
	for _, s := range sources {
		if format != nil {
			s.req.Format = *format
		}
		if len(env.Template) > 0 {
			s.req.TemplatePath = env.Template
		}
	}
	return nil
}

func export(ctx context.Context, runner *jobs.Runner, namer *jobs.Namer, s source, dst string, env *state.LocalEnv) error {
	log := env.Log.Named("export")

	if env.Rpt != nil {
		env.Rpt.StoreData("request/"+entryName(s.name)+".txt", []byte(s.req.String()))
	}

	job, err := runner.Export(ctx, s.req)
	if err != nil {
		if job != nil {
			return fmt.Errorf("job %s: %s", job.ID, job.Error)
		}
		return err
	}

	if err := env.Rpt.StoreCopy("artifact/"+filepath.Base(job.Artifact), job.Artifact); err != nil {
		log.Warn("Unable to store artifact copy", zap.String("file", job.Artifact), zap.Error(err))
	}

	modTime := job.Updated
	if fi, err := os.Stat(job.Artifact); err == nil {
		modTime = fi.ModTime()
	}
	name, err := namer.Name(job, s.req.Meta(), s.req.Title, modTime)
	if err != nil {
		log.Warn("Unable to prepare download name, using default", zap.Error(err))
	}

	fields := []zap.Field{zap.String("job", job.ID), zap.String("url", job.DownloadURL), zap.String("name", name)}
	if len(dst) > 0 {
		saved, err := saveAs(job.Artifact, filepath.Join(dst, config.CleanFileName(name)), env.Overwrite)
		if err != nil {
			return err
		}
		fields = append(fields, zap.String("saved", saved))
	}
	log.Info("Artifact ready", fields...)
	return nil
}

// entryName turns source name into flat report entry name.
func entryName(name string) string {
	return config.CleanFileName(strings.TrimPrefix(filepath.ToSlash(name), "/"))
}

// saveAs copies published artifact. Existing destination is an error unless
// overwrite is requested.
func saveAs(src, dst string, overwrite bool) (_ string, err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("unable to create destination directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}
	out, err := os.OpenFile(dst, flags, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("destination '%s' already exists", dst)
		}
		return "", err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("unable to copy artifact: %w", err)
	}
	return dst, nil
}
