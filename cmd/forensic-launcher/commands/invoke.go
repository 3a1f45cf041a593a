package commands

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ir-automation/forensic-launcher/pkg/errors"
)

var invokeEvent string

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Process one workflow event locally and print the resulting event",
	Long: `Reads a {"DiskProcess": {...}} event, launches the forensic instance and
prints the augmented DiskProcess object as JSON. Combine with --dry-run to
check permissions and placement without creating an instance.`,
	Args: cobra.NoArgs,
	RunE: runInvoke,
}

func init() {
	rootCmd.AddCommand(invokeCmd)
	invokeCmd.Flags().StringVar(&invokeEvent, "event", "-", `Event JSON file, or "-" for stdin`)
}

func runInvoke(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ev, err := readEvent(invokeEvent, cmd.InOrStdin())
	if err != nil {
		return err
	}

	l, err := newLauncher(ctx, cfg)
	if err != nil {
		return err
	}

	out, err := l.Launch(ctx, ev)
	if err != nil {
		return errors.Wrap(err, "launch failed")
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
