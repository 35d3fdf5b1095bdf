package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"spendview/internal/amqp"
)

func notifyCmd(root *rootOptions) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Tell running dashboards that expenses changed",
		Long:  `Publish an expenses-changed message on the configured AMQP exchange so every spendview server reloads.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cfg.AMQPURL == "" {
				return errors.New("AMQP_URL is not set")
			}

			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
			if err != nil {
				return err
			}
			defer client.Close()

			msg := amqp.NewExpensesChangedMessage("spendview-report", reason)
			if err := client.PublishExpensesChanged(cmd.Context(), msg); err != nil {
				return fmt.Errorf("publish: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published refresh to %s\n", cfg.AMQPExchange)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "free-form reason attached to the message")
	return cmd
}
