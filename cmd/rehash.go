package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tinbr-service/internal/credential"
	"tinbr-service/internal/model"
)

var rehashOpts struct {
	collection string
	credential.RehashOptions
}

var rehashCmd = &cobra.Command{
	Use:   "rehash-passwords",
	Short: "Replace plaintext passwords with bcrypt hashes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		col, ok := model.Lookup(rehashOpts.collection)
		if !ok {
			return fmt.Errorf("unknown collection %q", rehashOpts.collection)
		}

		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		s, err := openStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer s.Close(context.Background())

		report, err := credential.Rehash(ctx, s, col, rehashOpts.RehashOptions, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d converted=%d failed=%d\n",
			report.Scanned, report.Converted, report.Failed)
		return nil
	},
}

func init() {
	f := rehashCmd.Flags()
	f.StringVar(&rehashOpts.collection, "collection", model.Users, "collection whose passwords are converted")
	f.StringArrayVar(&rehashOpts.Targets, "target", nil, "plaintext password to convert (repeatable)")
	f.BoolVar(&rehashOpts.AllPlaintext, "all-plaintext", false, "convert every password that is not a bcrypt hash")
	f.BoolVar(&rehashOpts.DryRun, "dry-run", false, "report what would change without writing")
}
