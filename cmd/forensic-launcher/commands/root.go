package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "forensic-launcher",
	Short: "Incident response - forensic instance launcher",
	Long: `Launches a forensic analysis EC2 instance for a disk-processing step of an
incident-response workflow. Run "serve" inside AWS Lambda, or "invoke" to
process a single event locally.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("ami-ids", "", "Machine images as region:imageId pairs, comma separated")
	rootCmd.PersistentFlags().String("region", "", "AWS region the launcher runs in")
	rootCmd.PersistentFlags().String("vpc-id", "", "VPC to launch forensic instances in")
	rootCmd.PersistentFlags().String("security-group", "", "Security group id for forensic instances")
	rootCmd.PersistentFlags().String("instance-profile-name", "", "IAM instance profile name for forensic instances")
	rootCmd.PersistentFlags().String("instance-type", "", "EC2 instance type for forensic instances")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Validate the launch with EC2 without creating instances")
	rootCmd.PersistentFlags().Bool("verify-evidence-bucket", false, "Check the evidence bucket exists before launching")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	for _, name := range []string{
		"ami-ids", "region", "vpc-id", "security-group", "instance-profile-name",
		"instance-type", "dry-run", "verify-evidence-bucket", "log-format", "log-level",
	} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}
