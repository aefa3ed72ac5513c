package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"nbreport/common"
	"nbreport/jobs"
	"nbreport/state"
)

// ListJobs handles "jobs list" subcommand.
func ListJobs(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	return withStore(env, func(store jobs.Store) error {
		return listJobs(ctx, store, writer(cmd))
	})
}

// ShowJob handles "jobs show" subcommand.
func ShowJob(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() == 0 {
		return errors.New("no job id has been specified")
	}
	return withStore(env, func(store jobs.Store) error {
		return showJobs(ctx, store, cmd.Args().Slice(), writer(cmd))
	})
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func withStore(env *state.LocalEnv, fn func(jobs.Store) error) (err error) {
	if env.Cfg.Jobs.Store == common.StoreKindMemory {
		env.Log.Warn("Job store is in memory, no jobs are kept between runs")
	}
	store, err := jobs.Open(&env.Cfg.Jobs)
	if err != nil {
		return fmt.Errorf("unable to open job store: %w", err)
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()
	return fn(store)
}

func listJobs(ctx context.Context, store jobs.Store, w io.Writer) error {
	list, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("unable to list jobs: %w", err)
	}
	for _, j := range list {
		if _, err := fmt.Fprintln(w, j.Summary()); err != nil {
			return err
		}
	}
	return nil
}

// showJobs prints all known jobs and reports unknown ids together.
func showJobs(ctx context.Context, store jobs.Store, ids []string, w io.Writer) (err error) {
	for _, id := range ids {
		j, gerr := store.Get(ctx, id)
		if gerr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", id, gerr))
			continue
		}
		if _, werr := io.WriteString(w, j.String()); werr != nil {
			return multierr.Append(err, werr)
		}
	}
	return err
}
