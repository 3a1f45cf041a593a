package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ir-automation/forensic-launcher/pkg/compute"
	"github.com/ir-automation/forensic-launcher/pkg/errors"
)

var subnetsAZ string

var subnetsCmd = &cobra.Command{
	Use:   "subnets",
	Short: "List the subnets a forensic instance could be placed in",
	Args:  cobra.NoArgs,
	RunE:  runSubnets,
}

func init() {
	rootCmd.AddCommand(subnetsCmd)
	subnetsCmd.Flags().StringVar(&subnetsAZ, "az", "", "Availability zone of the volume (required)")
	subnetsCmd.MarkFlagRequired("az")
}

func runSubnets(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := compute.NewClient(ctx, cfg.Region)
	if err != nil {
		return errors.Wrap(err, "EC2 client failed")
	}

	subnets, err := client.EligibleSubnets(ctx, cfg.VPCID, subnetsAZ)
	if err != nil {
		return errors.Wrap(err, "subnet discovery failed")
	}

	out := cmd.OutOrStdout()
	if len(subnets) == 0 {
		fmt.Fprintf(out, "No subnets in %s for %s\n", cfg.VPCID, subnetsAZ)
		return nil
	}

	fmt.Fprintf(out, "%-30s %-25s %-15s\n", "SUBNET", "VPC", "AZ")
	fmt.Fprintln(out, "----------------------------------------------------------------------")
	for _, id := range subnets {
		fmt.Fprintf(out, "%-30s %-25s %-15s\n", id, cfg.VPCID, subnetsAZ)
	}

	return nil
}
