package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ir-automation/forensic-launcher/pkg/selector"
)

var resolveAll bool

var resolveCmd = &cobra.Command{
	Use:   "resolve-image [region]",
	Short: "Show the machine image the catalog maps a region to",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().BoolVar(&resolveAll, "all", false, "List every catalog entry")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if resolveAll {
		fmt.Fprintf(out, "%-20s %-25s\n", "REGION", "IMAGE")
		for _, region := range cfg.Images.Regions() {
			imageID, _ := cfg.Images.Lookup(region)
			fmt.Fprintf(out, "%-20s %-25s\n", region, imageID)
		}
		return nil
	}

	region := cfg.Region
	if len(args) == 1 {
		region = args[0]
	}

	imageID, err := selector.ResolveImageID(cfg.Images, region)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %s\n", region, imageID)
	return nil
}
