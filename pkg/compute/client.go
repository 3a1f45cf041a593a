package compute

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	"github.com/ir-automation/forensic-launcher/pkg/errors"
	"github.com/ir-automation/forensic-launcher/pkg/selector"
)

// dryRunCode is the error code EC2 returns when a DryRun request would have
// succeeded.
const dryRunCode = "DryRunOperation"

// EC2API is the subset of *ec2.Client used by Client.
type EC2API interface {
	ec2.DescribeSubnetsAPIClient
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
}

// Client provides EC2 subnet discovery and instance provisioning
type Client struct {
	api    EC2API
	region string
}

// NewClient creates an EC2 client using the default credential chain
// (the Lambda execution role when running as a function).
func NewClient(ctx context.Context, region string) (*Client, error) {
	slog.Info("ec2_client_init", "region", region)

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		slog.Error("aws_config_load_failed", "error", err)
		return nil, errors.Classify(errors.ErrCollaborator, errors.Wrap(err, "failed to load AWS config"))
	}

	return NewClientWithAPI(ec2.NewFromConfig(cfg), region), nil
}

// NewClientWithAPI wraps an existing EC2 API implementation.
func NewClientWithAPI(api EC2API, region string) *Client {
	return &Client{api: api, region: region}
}

// EligibleSubnets lists the subnets of vpcID in availability zone az, in the
// order EC2 returns them.
func (c *Client) EligibleSubnets(ctx context.Context, vpcID, az string) ([]string, error) {
	slog.Info("ec2_describe_subnets_start", "vpc_id", vpcID, "availability_zone", az)

	input := &ec2.DescribeSubnetsInput{
		Filters: []types.Filter{
			{Name: aws.String("vpc-id"), Values: []string{vpcID}},
			{Name: aws.String("availability-zone"), Values: []string{az}},
		},
	}

	subnets := []string{}
	paginator := ec2.NewDescribeSubnetsPaginator(c.api, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			slog.Error("ec2_describe_subnets_failed", "vpc_id", vpcID, "availability_zone", az, "error", err)
			return nil, errors.Classify(errors.ErrCollaborator, errors.Wrap(err, "failed to describe subnets"))
		}

		for _, s := range page.Subnets {
			if s.SubnetId != nil {
				subnets = append(subnets, *s.SubnetId)
			}
		}
	}

	slog.Info("ec2_describe_subnets_complete", "vpc_id", vpcID, "availability_zone", az, "subnet_count", len(subnets))

	return subnets, nil
}

// RunInstances issues the launch request. For a DryRun request that EC2
// accepts it returns an empty result and no error.
func (c *Client) RunInstances(ctx context.Context, req selector.ProvisioningRequest) (*selector.ProvisioningResult, error) {
	slog.Info("ec2_run_instances_start",
		"image_id", req.ImageID,
		"instance_type", req.InstanceType,
		"subnet_id", req.SubnetID,
		"dry_run", req.DryRun,
	)

	out, err := c.api.RunInstances(ctx, BuildRunInstancesInput(req))
	if err != nil {
		var apiErr smithy.APIError
		if req.DryRun && errors.As(err, &apiErr) && apiErr.ErrorCode() == dryRunCode {
			slog.Info("ec2_run_instances_dry_run_ok", "subnet_id", req.SubnetID)
			return &selector.ProvisioningResult{InstanceIDs: []string{}}, nil
		}
		slog.Error("ec2_run_instances_failed", "subnet_id", req.SubnetID, "error", err)
		return nil, errors.Classify(errors.ErrCollaborator, errors.Wrap(err, "failed to run instances"))
	}

	result := &selector.ProvisioningResult{InstanceIDs: make([]string, 0, len(out.Instances))}
	for _, inst := range out.Instances {
		if inst.InstanceId == nil {
			continue
		}
		result.InstanceIDs = append(result.InstanceIDs, *inst.InstanceId)
	}

	slog.Info("ec2_run_instances_complete", "instance_ids", result.InstanceIDs)

	return result, nil
}

// BuildRunInstancesInput maps a provisioning request onto the EC2 API shape.
// User data is base64 encoded as the API requires.
func BuildRunInstancesInput(req selector.ProvisioningRequest) *ec2.RunInstancesInput {
	tags := make([]types.Tag, 0, len(req.Tags))
	for _, t := range req.Tags {
		tags = append(tags, types.Tag{Key: aws.String(t.Key), Value: aws.String(t.Value)})
	}

	return &ec2.RunInstancesInput{
		ImageId:                           aws.String(req.ImageID),
		InstanceType:                      types.InstanceType(req.InstanceType),
		MinCount:                          aws.Int32(req.Count),
		MaxCount:                          aws.Int32(req.Count),
		SecurityGroupIds:                  []string{req.SecurityGroupID},
		SubnetId:                          aws.String(req.SubnetID),
		UserData:                          aws.String(base64.StdEncoding.EncodeToString([]byte(req.UserData))),
		EbsOptimized:                      aws.Bool(req.EBSOptimized),
		IamInstanceProfile:                &types.IamInstanceProfileSpecification{Name: aws.String(req.InstanceProfileName)},
		InstanceInitiatedShutdownBehavior: types.ShutdownBehavior(req.ShutdownBehavior),
		TagSpecifications: []types.TagSpecification{
			{ResourceType: types.ResourceTypeInstance, Tags: tags},
		},
		DryRun: aws.Bool(req.DryRun),
	}
}
