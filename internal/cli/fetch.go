package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"punk_dash/internal/config"
	"punk_dash/internal/dashboard"
	"punk_dash/internal/poller"
)

func newFetchCommand(opts *options) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Poll the endpoint once and print the dashboard values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			payload, err := fetchOnce(cmd, cfg)
			if err != nil {
				return err
			}
			if raw {
				_, err = cmd.OutOrStdout().Write(pretty.Pretty([]byte(payload.Raw())))
				return err
			}
			doc := dashboard.NewDocument(dashboard.Fields, dashboard.NewFormatter(cfg.Language()))
			doc.OnData(payload)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), dashboard.Report(doc, cfg.ColorTheme()))
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "json", false, "print the raw data object")
	return cmd
}

func fetchOnce(cmd *cobra.Command, cfg config.Config) (poller.Payload, error) {
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return poller.Payload{}, err
	}
	defer func() { _ = logger.Sync() }()

	p, err := poller.New(poller.Config{
		URL:      cfg.Endpoint,
		Interval: cfg.PollInterval,
		Timeout:  cfg.RequestTimeout,
	}, nil, logger)
	if err != nil {
		return poller.Payload{}, err
	}
	payload, err := p.Poll(cmd.Context())
	if err != nil {
		return poller.Payload{}, fmt.Errorf("failed to load economic data: %w", err)
	}
	return payload, nil
}
