package selector

// Fixed provisioning parameters.
const (
	InstanceCount    = 1
	ShutdownBehavior = "terminate"
)

// Tag keys written on the forensic instance.
const (
	TagName             = "Name"
	TagInstanceID       = "InstanceID"
	TagVolumeID         = "VolumeID"
	TagFindingID        = "FindingID"
	TagSourceDeviceName = "SourceDeviceName"
)

// LaunchSettings are the static, per-process provisioning parameters.
type LaunchSettings struct {
	InstanceType        string
	SecurityGroupID     string
	InstanceProfileName string
	DryRun              bool
}

// Tag is a key/value pair applied to the launched instance.
type Tag struct {
	Key   string
	Value string
}

// ProvisioningRequest is the provider-neutral description of one
// RunInstances call.
type ProvisioningRequest struct {
	ImageID             string
	InstanceType        string
	SubnetID            string
	SecurityGroupID     string
	InstanceProfileName string
	UserData            string
	Tags                []Tag

	// MinCount and MaxCount are both set from Count.
	Count            int32
	ShutdownBehavior string
	EBSOptimized     bool
	DryRun           bool
}

// TagValue returns the value of key, or "" if the tag is not set.
func (r *ProvisioningRequest) TagValue(key string) string {
	for _, t := range r.Tags {
		if t.Key == key {
			return t.Value
		}
	}
	return ""
}

// ProvisioningResult holds the created instance ids in provider order.
type ProvisioningResult struct {
	InstanceIDs []string
}
