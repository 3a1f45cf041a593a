package compute

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ir-automation/forensic-launcher/pkg/errors"
	"github.com/ir-automation/forensic-launcher/pkg/selector"
)

func testRequest() selector.ProvisioningRequest {
	return selector.ProvisioningRequest{
		ImageID:             "ami-111",
		InstanceType:        "m5.large",
		SubnetID:            "subnet-a",
		SecurityGroupID:     "sg-123",
		InstanceProfileName: "forensic-profile",
		UserData:            "#!/bin/bash\necho IMAGE_NAME=vol-abc >> /etc/environment",
		Tags: []selector.Tag{
			{Key: selector.TagInstanceID, Value: "i-src"},
			{Key: selector.TagVolumeID, Value: "vol-abc"},
		},
		Count:            selector.InstanceCount,
		ShutdownBehavior: selector.ShutdownBehavior,
		EBSOptimized:     true,
	}
}

func TestEligibleSubnets_FiltersAndPaginates(t *testing.T) {
	m := &mockEC2{
		describeSubnetsFunc: func(in *ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error) {
			if in.NextToken == nil {
				return &ec2.DescribeSubnetsOutput{
					Subnets:   []types.Subnet{{SubnetId: aws.String("subnet-a")}, {SubnetId: nil}},
					NextToken: aws.String("page-2"),
				}, nil
			}
			return &ec2.DescribeSubnetsOutput{
				Subnets: []types.Subnet{{SubnetId: aws.String("subnet-b")}},
			}, nil
		},
	}
	c := NewClientWithAPI(m, "us-east-1")

	subnets, err := c.EligibleSubnets(context.Background(), "vpc-1", "us-east-1a")
	require.NoError(t, err)
	assert.Equal(t, []string{"subnet-a", "subnet-b"}, subnets)

	require.Len(t, m.describeSubnetsCalls, 2)
	filters := m.describeSubnetsCalls[0].Filters
	require.Len(t, filters, 2)
	assert.Equal(t, "vpc-id", aws.ToString(filters[0].Name))
	assert.Equal(t, []string{"vpc-1"}, filters[0].Values)
	assert.Equal(t, "availability-zone", aws.ToString(filters[1].Name))
	assert.Equal(t, []string{"us-east-1a"}, filters[1].Values)
}

func TestEligibleSubnets_None(t *testing.T) {
	m := &mockEC2{
		describeSubnetsFunc: func(in *ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error) {
			return &ec2.DescribeSubnetsOutput{}, nil
		},
	}

	subnets, err := NewClientWithAPI(m, "us-east-1").EligibleSubnets(context.Background(), "vpc-1", "us-east-1a")
	require.NoError(t, err)
	assert.Empty(t, subnets)
}

func TestEligibleSubnets_Error(t *testing.T) {
	cause := &smithy.GenericAPIError{Code: "UnauthorizedOperation", Message: "denied"}
	m := &mockEC2{
		describeSubnetsFunc: func(in *ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error) {
			return nil, cause
		},
	}

	_, err := NewClientWithAPI(m, "us-east-1").EligibleSubnets(context.Background(), "vpc-1", "us-east-1a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCollaborator))

	var apiErr smithy.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "UnauthorizedOperation", apiErr.ErrorCode())
}

func TestBuildRunInstancesInput(t *testing.T) {
	req := testRequest()
	in := BuildRunInstancesInput(req)

	assert.Equal(t, "ami-111", aws.ToString(in.ImageId))
	assert.Equal(t, types.InstanceType("m5.large"), in.InstanceType)
	assert.Equal(t, int32(1), aws.ToInt32(in.MinCount))
	assert.Equal(t, int32(1), aws.ToInt32(in.MaxCount))
	assert.Equal(t, []string{"sg-123"}, in.SecurityGroupIds)
	assert.Equal(t, "subnet-a", aws.ToString(in.SubnetId))
	assert.Equal(t, "forensic-profile", aws.ToString(in.IamInstanceProfile.Name))
	assert.Equal(t, types.ShutdownBehaviorTerminate, in.InstanceInitiatedShutdownBehavior)
	assert.True(t, aws.ToBool(in.EbsOptimized))
	assert.False(t, aws.ToBool(in.DryRun))
	assert.Nil(t, in.ClientToken)

	decoded, err := base64.StdEncoding.DecodeString(aws.ToString(in.UserData))
	require.NoError(t, err)
	assert.Equal(t, req.UserData, string(decoded))

	require.Len(t, in.TagSpecifications, 1)
	spec := in.TagSpecifications[0]
	assert.Equal(t, types.ResourceTypeInstance, spec.ResourceType)
	require.Len(t, spec.Tags, 2)
	assert.Equal(t, "InstanceID", aws.ToString(spec.Tags[0].Key))
	assert.Equal(t, "i-src", aws.ToString(spec.Tags[0].Value))
}

func TestRunInstances(t *testing.T) {
	m := &mockEC2{
		runInstancesFunc: func(in *ec2.RunInstancesInput) (*ec2.RunInstancesOutput, error) {
			return &ec2.RunInstancesOutput{
				Instances: []types.Instance{{InstanceId: aws.String("i-forensic")}},
			}, nil
		},
	}

	result, err := NewClientWithAPI(m, "us-east-1").RunInstances(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"i-forensic"}, result.InstanceIDs)
	require.Len(t, m.runInstancesCalls, 1)
}

func TestRunInstances_SkipsMissingIDs(t *testing.T) {
	m := &mockEC2{
		runInstancesFunc: func(in *ec2.RunInstancesInput) (*ec2.RunInstancesOutput, error) {
			return &ec2.RunInstancesOutput{
				Instances: []types.Instance{{InstanceId: nil}, {InstanceId: aws.String("i-forensic")}},
			}, nil
		},
	}

	result, err := NewClientWithAPI(m, "us-east-1").RunInstances(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"i-forensic"}, result.InstanceIDs)
}

func TestRunInstances_Error(t *testing.T) {
	m := &mockEC2{
		runInstancesFunc: func(in *ec2.RunInstancesInput) (*ec2.RunInstancesOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "InsufficientInstanceCapacity"}
		},
	}

	result, err := NewClientWithAPI(m, "us-east-1").RunInstances(context.Background(), testRequest())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, errors.ErrCollaborator))
}

func TestRunInstances_DryRun(t *testing.T) {
	dryRunErr := &smithy.GenericAPIError{Code: "DryRunOperation", Message: "Request would have succeeded"}
	m := &mockEC2{
		runInstancesFunc: func(in *ec2.RunInstancesInput) (*ec2.RunInstancesOutput, error) {
			return nil, dryRunErr
		},
	}
	c := NewClientWithAPI(m, "us-east-1")

	req := testRequest()
	req.DryRun = true
	result, err := c.RunInstances(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, result.InstanceIDs)
	assert.True(t, aws.ToBool(m.runInstancesCalls[0].DryRun))

	// The same code on a real request is still a failure.
	_, err = c.RunInstances(context.Background(), testRequest())
	assert.True(t, errors.Is(err, errors.ErrCollaborator))
}
