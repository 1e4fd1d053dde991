package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examiz/internal/selfupdate"
)

const updateTimeout = 2 * time.Minute

var updateCmd = &cobra.Command{
	Use:   "update [version]",
	Short: "Replace this binary with the latest (or the given) release",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := &selfupdate.UpdateInput{CurrentVersion: version}
		if len(args) == 1 {
			in.TargetVersion = args[0]
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), updateTimeout)
		defer cancel()

		out := cmd.OutOrStdout()
		err := selfupdate.NewChecker(selfupdate.WithTimeout(updateTimeout)).
			Update(ctx, in, func(p selfupdate.UpdateProgress) { fmt.Fprintln(out, p.Message) })
		switch {
		case err == nil:
			return nil
		case errors.Is(err, selfupdate.ErrDevBuild):
			fmt.Fprintln(out, "This is a development build; install a release first.")
			return nil
		case errors.Is(err, selfupdate.ErrAlreadyLatest):
			fmt.Fprintf(out, "examiz %s is the latest release.\n", version)
			return nil
		case errors.Is(err, os.ErrPermission):
			return fmt.Errorf("%w (try: sudo examiz update)", err)
		}
		return err
	},
}
