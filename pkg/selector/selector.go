// Package selector turns an incident descriptor and the static launch
// configuration into a concrete RunInstances request, and folds the provider
// response back into the outbound event. Nothing here talks to AWS.
package selector

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/ir-automation/forensic-launcher/pkg/catalog"
	"github.com/ir-automation/forensic-launcher/pkg/errors"
	"github.com/ir-automation/forensic-launcher/pkg/incident"
)

// ErrNoEligibleSubnet is returned when the VPC has no subnet in the volume's
// availability zone.
var ErrNoEligibleSubnet = errors.New("no eligible subnet")

// Rand is the random source used by SelectSubnet.
type Rand interface {
	IntN(n int) int
}

// IntNFunc adapts a function to Rand.
type IntNFunc func(n int) int

func (f IntNFunc) IntN(n int) int { return f(n) }

// DefaultRand uses the runtime's concurrency-safe global generator.
var DefaultRand Rand = IntNFunc(rand.IntN)

// ResolveImageID returns the catalog image for region.
func ResolveImageID(images *catalog.ImageCatalog, region string) (string, error) {
	if images == nil {
		return "", errors.Configf("image catalog not loaded")
	}
	return images.Lookup(region)
}

// SelectSubnet picks one candidate uniformly at random.
func SelectSubnet(rng Rand, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoEligibleSubnet
	}
	if rng == nil {
		rng = DefaultRand
	}
	return candidates[rng.IntN(len(candidates))], nil
}

// BuildStartupScript returns the user data that exports the evidence
// destination to the instance's /etc/environment.
func BuildStartupScript(bucket, sourceVolumeID, incidentID string) string {
	lines := []string{
		"#!/bin/bash",
		fmt.Sprintf("echo DESTINATION_BUCKET=%s >> /etc/environment", bucket),
		fmt.Sprintf("echo IMAGE_NAME=%s >> /etc/environment", sourceVolumeID),
		fmt.Sprintf("echo INCIDENT_ID=%s >> /etc/environment", incidentID),
	}
	return strings.Join(lines, "\n")
}

// BuildTags returns the traceability tags for the forensic instance.
func BuildTags(inc *incident.Incident) []Tag {
	return []Tag{
		{Key: TagName, Value: inc.InstanceID + "-" + inc.SourceVolumeID},
		{Key: TagInstanceID, Value: inc.InstanceID},
		{Key: TagVolumeID, Value: inc.SourceVolumeID},
		{Key: TagFindingID, Value: inc.FindingID},
		{Key: TagSourceDeviceName, Value: inc.SourceDeviceName},
	}
}

// BuildProvisioningRequest assembles the single-instance launch request.
func BuildProvisioningRequest(settings LaunchSettings, imageID, subnetID string, inc *incident.Incident) ProvisioningRequest {
	return ProvisioningRequest{
		ImageID:             imageID,
		InstanceType:        settings.InstanceType,
		SubnetID:            subnetID,
		SecurityGroupID:     settings.SecurityGroupID,
		InstanceProfileName: settings.InstanceProfileName,
		UserData:            BuildStartupScript(inc.EvidenceBucket, inc.SourceVolumeID, inc.IncidentID),
		Tags:                BuildTags(inc),
		Count:               InstanceCount,
		ShutdownBehavior:    ShutdownBehavior,
		EBSOptimized:        true,
		DryRun:              settings.DryRun,
	}
}

// DiskImageLocation is where the forensic instance uploads the raw image.
func DiskImageLocation(inc *incident.Incident) string {
	return "s3://" + inc.EvidenceBucket + "/" + DiskImageKey(inc)
}

// DiskImageKey is the object key part of DiskImageLocation.
func DiskImageKey(inc *incident.Incident) string {
	return inc.IncidentID + "/disk_evidence/" + inc.SourceVolumeID + ".image.dd"
}

// ApplyResult returns a copy of inc carrying the launched instances and the
// disk image location.
func ApplyResult(inc *incident.Incident, result *ProvisioningResult) *incident.Incident {
	out := inc.Clone()
	out.ForensicInstances = []string{}
	if result != nil {
		out.ForensicInstances = append(out.ForensicInstances, result.InstanceIDs...)
	}
	out.DiskImageLocation = DiskImageLocation(inc)
	return out
}
