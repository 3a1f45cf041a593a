// Package launcher implements the workflow step that starts a forensic EC2
// instance for a disk-processing event. It validates the event, finds a
// subnet in the volume's availability zone, issues one RunInstances call and
// returns the event augmented with the new instance ids.
//
// Failures are logged and returned as-is; retries and cleanup belong to the
// calling workflow.
package launcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	"github.com/ir-automation/forensic-launcher/internal/config"
	"github.com/ir-automation/forensic-launcher/pkg/errors"
	"github.com/ir-automation/forensic-launcher/pkg/incident"
	"github.com/ir-automation/forensic-launcher/pkg/security"
	"github.com/ir-automation/forensic-launcher/pkg/selector"
)

// Compute is the EC2 side of the launcher. *compute.Client satisfies it.
type Compute interface {
	EligibleSubnets(ctx context.Context, vpcID, az string) ([]string, error)
	RunInstances(ctx context.Context, req selector.ProvisioningRequest) (*selector.ProvisioningResult, error)
}

// EvidenceStore is the optional S3 pre-flight check. *storage.Client
// satisfies it.
type EvidenceStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
}

// Launcher holds the per-process state shared by all invocations. It is
// safe for concurrent use as long as its random source is.
type Launcher struct {
	compute   Compute
	evidence  EvidenceStore
	validator *security.Validator
	rng       selector.Rand
	logger    *slog.Logger

	settings selector.LaunchSettings
	imageID  string
	vpcID    string
	region   string
}

// Option customizes a Launcher.
type Option func(*Launcher)

// WithEvidenceStore enables the evidence bucket pre-flight check.
func WithEvidenceStore(store EvidenceStore) Option {
	return func(l *Launcher) { l.evidence = store }
}

// WithRand replaces the subnet selection random source.
func WithRand(rng selector.Rand) Option {
	return func(l *Launcher) { l.rng = rng }
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) { l.logger = logger }
}

// New resolves the region's image once and returns a ready Launcher. An
// unknown region is a configuration error reported here rather than on the
// first invocation.
func New(cfg *config.Config, compute Compute, opts ...Option) (*Launcher, error) {
	if compute == nil {
		return nil, errors.Configf("launcher requires a compute client")
	}

	l := &Launcher{
		compute:   compute,
		validator: security.NewValidator(security.DefaultMaxLength),
		rng:       selector.DefaultRand,
		logger:    slog.Default(),
		settings:  cfg.Settings(),
		vpcID:     cfg.VPCID,
		region:    cfg.Region,
	}
	for _, opt := range opts {
		opt(l)
	}

	imageID, err := selector.ResolveImageID(cfg.Images, cfg.Region)
	if err != nil {
		l.logger.Error("image_resolution_failed", "region", cfg.Region, "error", err)
		return nil, err
	}
	l.imageID = imageID

	l.logger.Info("launcher_ready",
		"region", l.region,
		"image_id", l.imageID,
		"vpc_id", l.vpcID,
		"instance_type", l.settings.InstanceType,
		"dry_run", l.settings.DryRun,
		"evidence_check", l.evidence != nil,
	)
	return l, nil
}

// ImageID returns the image resolved for the configured region.
func (l *Launcher) ImageID() string {
	return l.imageID
}

// Handle is the Lambda entry point. The payload is decoded here rather than
// by the runtime so malformed events are logged like any other failure.
func (l *Launcher) Handle(ctx context.Context, payload json.RawMessage) (*incident.Incident, error) {
	logger := l.invocationLogger(ctx)

	ev, err := incident.Decode(payload)
	if err != nil {
		return nil, l.fail(logger, err)
	}
	return l.launch(ctx, logger, ev)
}

// Launch runs one invocation outside the Lambda runtime.
func (l *Launcher) Launch(ctx context.Context, ev *incident.Event) (*incident.Incident, error) {
	return l.launch(ctx, l.invocationLogger(ctx), ev)
}

// invocationLogger tags log lines with the Lambda request id, or a fresh id
// when running outside Lambda.
func (l *Launcher) invocationLogger(ctx context.Context) *slog.Logger {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return l.logger.With("request_id", lc.AwsRequestID)
	}
	return l.logger.With("request_id", uuid.NewString())
}

func (l *Launcher) launch(ctx context.Context, logger *slog.Logger, ev *incident.Event) (*incident.Incident, error) {
	out, err := l.run(ctx, logger, ev)
	if err != nil {
		return nil, l.fail(logger, err)
	}
	return out, nil
}

func (l *Launcher) fail(logger *slog.Logger, err error) error {
	logger.Error("run_instances_request_failed", "error", err.Error())
	return err
}

func (l *Launcher) run(ctx context.Context, logger *slog.Logger, ev *incident.Event) (*incident.Incident, error) {
	inc, err := ev.Incident()
	if err != nil {
		return nil, err
	}
	if err := l.validator.ValidateIncident(inc); err != nil {
		return nil, err
	}
	logger = logger.With("incident_id", inc.IncidentID, "source_volume_id", inc.SourceVolumeID)

	if l.evidence != nil {
		if err := l.checkEvidence(ctx, logger, inc); err != nil {
			return nil, err
		}
	}

	subnets, err := l.compute.EligibleSubnets(ctx, l.vpcID, inc.VolumeAZ)
	if err != nil {
		return nil, err
	}
	subnetID, err := selector.SelectSubnet(l.rng, subnets)
	if err != nil {
		return nil, errors.Classify(errors.ErrCollaborator,
			errors.Wrap(err, fmt.Sprintf("vpc %s in %s", l.vpcID, inc.VolumeAZ)))
	}
	logger.Debug("subnet_selected", "subnet_id", subnetID, "candidates", len(subnets))

	logger.Info("creating_forensic_instance",
		"forensic_volume_id", inc.ForensicVolumeID,
		"subnet_id", subnetID,
		"availability_zone", inc.VolumeAZ,
	)

	req := selector.BuildProvisioningRequest(l.settings, l.imageID, subnetID, inc)
	result, err := l.compute.RunInstances(ctx, req)
	if err != nil {
		return nil, err
	}

	out := selector.ApplyResult(inc, result)
	logger.Info("forensic_instance_launched",
		"forensic_instances", out.ForensicInstances,
		"disk_image_location", out.DiskImageLocation,
	)
	return out, nil
}

// checkEvidence fails when the evidence bucket is missing and warns when the
// disk image object already exists.
func (l *Launcher) checkEvidence(ctx context.Context, logger *slog.Logger, inc *incident.Incident) error {
	exists, err := l.evidence.BucketExists(ctx, inc.EvidenceBucket)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Inputf("evidence bucket %q does not exist", inc.EvidenceBucket)
	}

	key := selector.DiskImageKey(inc)
	present, err := l.evidence.ObjectExists(ctx, inc.EvidenceBucket, key)
	if err != nil {
		return err
	}
	if present {
		logger.Warn("disk_image_already_present", "bucket", inc.EvidenceBucket, "s3_key", key)
	}
	return nil
}
