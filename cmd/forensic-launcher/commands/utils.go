package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/ir-automation/forensic-launcher/internal/config"
	"github.com/ir-automation/forensic-launcher/pkg/compute"
	"github.com/ir-automation/forensic-launcher/pkg/errors"
	"github.com/ir-automation/forensic-launcher/pkg/incident"
	"github.com/ir-automation/forensic-launcher/pkg/launcher"
	"github.com/ir-automation/forensic-launcher/pkg/storage"
)

// configViper returns the viper instance the root command's flags are bound to.
var configViper = viper.GetViper

// loadConfig loads the process configuration and installs its logger as the
// slog default.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configViper())
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		return nil, errors.Wrap(err, "config load failed")
	}
	slog.SetDefault(cfg.NewLogger())
	return cfg, nil
}

// newLauncher wires the AWS clients into a launcher.
func newLauncher(ctx context.Context, cfg *config.Config) (*launcher.Launcher, error) {
	ec2Client, err := compute.NewClient(ctx, cfg.Region)
	if err != nil {
		return nil, errors.Wrap(err, "EC2 client failed")
	}

	var opts []launcher.Option
	if cfg.VerifyEvidenceBucket {
		s3Client, err := storage.NewClient(ctx, cfg.Region)
		if err != nil {
			return nil, errors.Wrap(err, "S3 client failed")
		}
		opts = append(opts, launcher.WithEvidenceStore(s3Client))
	}

	l, err := launcher.New(cfg, ec2Client, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "launcher init failed")
	}
	return l, nil
}

// readEvent decodes a workflow event from path, or from stdin when path is "-".
func readEvent(path string, stdin io.Reader) (*incident.Event, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open event file")
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read event")
	}
	return incident.Decode(data)
}
