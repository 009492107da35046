package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"punk_dash/internal/chart"
)

func newChartsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Work with the dashboard charts",
	}
	cmd.AddCommand(newExportCommand(opts))
	return cmd
}

func newExportCommand(opts *options) *cobra.Command {
	var (
		dir           string
		live          bool
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every chart as a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			bindings := chart.DefaultBindings()
			if live {
				payload, err := fetchOnce(cmd, cfg)
				if err != nil {
					return err
				}
				if b, ok := chart.SectorsFromPayload(payload); ok {
					bindings = chart.Replace(bindings, b)
				}
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			r := chart.NewPNGRenderer(dir)
			r.Width, r.Height = width, height
			failed := chart.BindAll(r, bindings, logger)
			for _, b := range bindings {
				if _, bad := failed[b.Target]; !bad {
					fmt.Fprintln(cmd.OutOrStdout(), r.Path(b.Target))
				}
			}
			return joinFailures(failed)
		},
	}
	f := cmd.Flags()
	f.StringVar(&dir, "dir", ".", "output directory")
	f.BoolVar(&live, "live", false, "rebuild the sector chart from the endpoint first")
	f.IntVar(&width, "width", 800, "image width in pixels")
	f.IntVar(&height, "height", 400, "image height in pixels")
	return cmd
}

func joinFailures(failed map[string]error) error {
	targets := make([]string, 0, len(failed))
	for t := range failed {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	errs := make([]error, 0, len(targets))
	for _, t := range targets {
		errs = append(errs, fmt.Errorf("%s: %w", t, failed[t]))
	}
	return errors.Join(errs...)
}
