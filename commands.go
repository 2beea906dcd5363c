package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fslog/internal/analysis"
	"fslog/internal/loader"
	"fslog/internal/model"
	"fslog/internal/report"
	"fslog/internal/store"
	"fslog/internal/ui"
)

// index is one analysis run together with its queryable store.
type index struct {
	ctx *analysis.Context
	st  *store.Store
}

// sessions resolves the rows matching f to their analyzed sessions.
func (ix *index) sessions(f store.Filter) ([]*model.Session, error) {
	rows, err := ix.st.QuerySessions(f)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Session, 0, len(rows))
	for _, r := range rows {
		if s, ok := ix.ctx.Session(r.ID); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// analyze loads the log files named by patterns, runs the analysis and
// indexes the result. Files that could not be loaded are logged and skipped.
func (a *app) analyze(ctx context.Context, patterns []string) (*index, error) {
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}

	files, err := loader.Load(ctx, patterns, loader.Options{
		Dir:      a.cfg.LogDir,
		Workers:  a.cfg.Workers,
		Encoding: a.cfg.Encoding,
		Logger:   a.log,
	})
	if len(files) == 0 {
		if err == nil {
			err = loader.ErrNoMatch
		}
		return nil, err
	}
	for _, e := range multierr.Errors(err) {
		a.log.Warn("skipping log input", zap.Error(e))
	}

	actx := analysis.New(files, analysis.WithLogger(a.log))
	actx.Run()

	st, err := store.Open("")
	if err != nil {
		return nil, err
	}
	if err := st.InitSchema(); err != nil {
		st.Close()
		return nil, err
	}
	if err := st.Index(actx); err != nil {
		st.Close()
		return nil, err
	}
	return &index{ctx: actx, st: st}, nil
}

// withIndex runs fn against a fresh index of the command's arguments.
func (a *app) withIndex(cmd *cobra.Command, args []string, fn func(*index) error) error {
	ix, err := a.analyze(cmd.Context(), args)
	if err != nil {
		return err
	}
	defer ix.st.Close()
	return fn(ix)
}

func (a *app) printer(cmd *cobra.Command, ix *index) *report.Printer {
	return report.New(cmd.OutOrStdout(),
		report.WithColor(a.cfg.Color),
		report.WithFiles(ix.ctx.Files()),
		report.WithGapThreshold(a.cfg.GapThreshold))
}

// --- Filter flags ---

type filterFlags struct {
	uuid       string
	number     string
	conclusion string
	since      string
	until      string
	all        bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.uuid, "uuid", "", "only sessions whose id starts with this prefix")
	flags.StringVar(&f.number, "number", "", "only sessions with this call number")
	flags.StringVar(&f.conclusion, "conclusion", "", "only sessions whose conclusion contains this (ok, warning, error)")
	flags.StringVar(&f.since, "since", "", "only calls at or after this time (e.g. 2h, 2016-03-21 17:41)")
	flags.StringVar(&f.until, "until", "", "only calls at or before this time")
	flags.BoolVar(&f.all, "all", false, "include sessions without signaling events")
}

func (f *filterFlags) filter() (store.Filter, error) {
	tf, err := model.ParseTimeFilter(f.since, f.until)
	if err != nil {
		return store.Filter{}, err
	}
	return store.Filter{
		UUID:         f.uuid,
		CallNumber:   f.number,
		Conclusion:   f.conclusion,
		Time:         tf,
		IncludeEmpty: f.all,
	}, nil
}

// filtered builds a command that renders the sessions matching its filter flags.
func (a *app) filtered(use, short string, render func(*cobra.Command, *index, []*model.Session) error) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   use + " [log files...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ff.filter()
			if err != nil {
				return err
			}
			return a.withIndex(cmd, args, func(ix *index) error {
				sessions, err := ix.sessions(f)
				if err != nil {
					return err
				}
				return render(cmd, ix, sessions)
			})
		},
	}
	ff.register(cmd)
	return cmd
}

// --- Commands ---

func (a *app) resultCmd() *cobra.Command {
	return a.filtered("result", "Print the conclusion of every call",
		func(cmd *cobra.Command, ix *index, sessions []*model.Session) error {
			return a.printer(cmd, ix).Results(sessions)
		})
}

func (a *app) detailsCmd() *cobra.Command {
	return a.filtered("details", "Print the signaling timeline of every call",
		func(cmd *cobra.Command, ix *index, sessions []*model.Session) error {
			return a.printer(cmd, ix).Details(sessions)
		})
}

func (a *app) uuidsCmd() *cobra.Command {
	return a.filtered("uuids", "List session ids",
		func(cmd *cobra.Command, ix *index, sessions []*model.Session) error {
			ids := make([]string, len(sessions))
			for i, s := range sessions {
				ids[i] = s.ID
			}
			return a.printer(cmd, ix).List("UUIDs:", ids, 2)
		})
}

func (a *app) numbersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "numbers [log files...]",
		Short: "List call numbers and the ones used by several calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withIndex(cmd, args, func(ix *index) error {
				numbers, err := ix.st.CallNumbers()
				if err != nil {
					return err
				}
				dups, err := ix.st.DuplicateCallNumbers()
				if err != nil {
					return err
				}
				return a.printer(cmd, ix).Numbers(numbers, dups)
			})
		},
	}
}

func (a *app) filesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files [log files...]",
		Short: "List the loaded log files in chronological order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withIndex(cmd, args, func(ix *index) error {
				return a.printer(cmd, ix).Files(ix.ctx.Files())
			})
		},
	}
}

func (a *app) ignoredCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ignored [log files...]",
		Short: "Print the lines that belong to no session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withIndex(cmd, args, func(ix *index) error {
				return a.printer(cmd, ix).Ignored(ix.ctx.IgnoredLines())
			})
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "stats [log files...]",
		Short: "Count calls per conclusion and events per type",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ff.filter()
			if err != nil {
				return err
			}
			return a.withIndex(cmd, args, func(ix *index) error {
				sum, err := ix.st.Summarize(f)
				if err != nil {
					return err
				}
				tags, err := ix.st.TagCounts()
				if err != nil {
					return err
				}
				return a.printer(cmd, ix).Stats(sum, tags)
			})
		},
	}
	ff.register(cmd)
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var kind, name string
	cmd := a.filtered("export", "Write result, raw log and details files",
		func(cmd *cobra.Command, ix *index, sessions []*model.Session) error {
			k, err := report.ParseKind(kind)
			if err != nil {
				return err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get cwd: %w", err)
			}
			exp := report.Exporter{
				Dir:   a.cfg.ResolveOutput(cwd),
				Files: ix.ctx.Files(),
				Gap:   a.cfg.GapThreshold,
				Log:   a.log,
			}
			written, err := exp.Export(k, name, sessions)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d files to %s\n", len(written), exp.Dir)
			return err
		})
	cmd.Flags().StringVar(&kind, "kind", string(report.KindAll), "what to write: result, log, details or all")
	cmd.Flags().StringVar(&name, "name", "freeswitch", "base name of the result file")
	return cmd
}

func (a *app) pickCmd() *cobra.Command {
	return a.filtered("pick", "Choose a call interactively and print its details",
		func(cmd *cobra.Command, ix *index, sessions []*model.Session) error {
			files := ix.ctx.Files()
			chosen, err := ui.SelectSession(sessions, func(s *model.Session) string {
				return report.DetailsFile(files, a.cfg.GapThreshold, s)
			})
			if err != nil {
				return err
			}
			if chosen == nil {
				return nil
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), a.printer(cmd, ix).DetailsOf(chosen))
			return err
		})
}
