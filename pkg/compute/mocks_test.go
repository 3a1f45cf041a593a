package compute

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// mockEC2 is a mock implementation of EC2API for testing.
type mockEC2 struct {
	// Configurable behavior
	describeSubnetsFunc func(in *ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error)
	runInstancesFunc    func(in *ec2.RunInstancesInput) (*ec2.RunInstancesOutput, error)

	// Call tracking
	describeSubnetsCalls []*ec2.DescribeSubnetsInput
	runInstancesCalls    []*ec2.RunInstancesInput
}

func (m *mockEC2) DescribeSubnets(ctx context.Context, in *ec2.DescribeSubnetsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	m.describeSubnetsCalls = append(m.describeSubnetsCalls, in)
	if m.describeSubnetsFunc == nil {
		return nil, fmt.Errorf("DescribeSubnets not configured")
	}
	return m.describeSubnetsFunc(in)
}

func (m *mockEC2) RunInstances(ctx context.Context, in *ec2.RunInstancesInput, _ ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	m.runInstancesCalls = append(m.runInstancesCalls, in)
	if m.runInstancesFunc == nil {
		return nil, fmt.Errorf("RunInstances not configured")
	}
	return m.runInstancesFunc(in)
}
