package launcher

import (
	"context"

	"github.com/ir-automation/forensic-launcher/pkg/selector"
)

// mockCompute is a mock implementation of the Compute interface for testing.
type mockCompute struct {
	// Configurable behavior
	subnets         []string
	subnetsErr      error
	instanceIDs     []string
	runInstancesErr error

	// Call tracking
	subnetCalls [][2]string
	runRequests []selector.ProvisioningRequest
}

func (m *mockCompute) EligibleSubnets(ctx context.Context, vpcID, az string) ([]string, error) {
	m.subnetCalls = append(m.subnetCalls, [2]string{vpcID, az})
	if m.subnetsErr != nil {
		return nil, m.subnetsErr
	}
	return m.subnets, nil
}

func (m *mockCompute) RunInstances(ctx context.Context, req selector.ProvisioningRequest) (*selector.ProvisioningResult, error) {
	m.runRequests = append(m.runRequests, req)
	if m.runInstancesErr != nil {
		return nil, m.runInstancesErr
	}
	return &selector.ProvisioningResult{InstanceIDs: append([]string(nil), m.instanceIDs...)}, nil
}

// mockEvidence is a mock implementation of the EvidenceStore interface.
type mockEvidence struct {
	bucketExists bool
	objectExists bool
	err          error

	objectCalls []string
}

func (m *mockEvidence) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.bucketExists, nil
}

func (m *mockEvidence) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	m.objectCalls = append(m.objectCalls, bucket+"/"+key)
	return m.objectExists, nil
}
