package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-promptkit/pkg/render"
)

func newInspectCmd(a *app) *cobra.Command {
	flags := &sourceFlags{}
	cmd := &cobra.Command{
		Use:   "inspect TEMPLATE",
		Short: "List the placeholders a template references",
		Long: `Inspect prints every distinct placeholder path in TEMPLATE in order of first
appearance. When a context is given with --vars or --set, it also prints the
paths the context cannot resolve and fails if there are any.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd, args[0], flags)
		},
	}
	addSourceFlags(cmd, flags)
	return cmd
}

func (a *app) runInspect(cmd *cobra.Command, ref string, flags *sourceFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := a.openEnv(ctx, *flags)
	if err != nil {
		return err
	}
	defer e.Close()

	src, err := e.source(ref)
	if err != nil {
		return err
	}
	tpl, err := e.loader.Load(ctx, src)
	if err != nil {
		return &render.ResourceError{Source: src, Err: err}
	}

	out := cmd.OutOrStdout()
	for _, p := range render.Paths(tpl.Text()) {
		fmt.Fprintln(out, p)
	}

	if len(flags.varFiles) == 0 && len(flags.sets) == 0 && len(a.cfg.Vars) == 0 && len(a.cfg.Set) == 0 {
		return nil
	}
	data, err := a.renderData(*flags)
	if err != nil {
		return err
	}
	missing := render.Missing(tpl.Text(), data)
	for _, p := range missing {
		fmt.Fprintf(out, "missing: %s\n", p)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%d placeholder(s) cannot be resolved", len(missing))
	}
	return nil
}
