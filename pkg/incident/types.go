// Package incident defines the event exchanged with the incident-response
// workflow: the disk-processing descriptor coming in and the same descriptor,
// augmented with the launched forensic instances, going out.
package incident

import (
	"encoding/json"
	"strings"

	"github.com/ir-automation/forensic-launcher/pkg/errors"
)

// EventKey is the top-level key the workflow nests the descriptor under.
const EventKey = "DiskProcess"

// Event is the inbound workflow payload.
type Event struct {
	DiskProcess *Incident `json:"DiskProcess"`
}

// Incident describes the volume under investigation. The first eight fields
// are required on input; ForensicInstances and DiskImageLocation are set on
// output. Fields the workflow sends that are not modelled here are kept in
// Extra and written back out unchanged.
type Incident struct {
	EvidenceBucket   string `json:"EvidenceBucket"`
	SourceVolumeID   string `json:"SourceVolumeID"`
	IncidentID       string `json:"IncidentID"`
	ForensicVolumeID string `json:"ForensicVolumeID"`
	VolumeAZ         string `json:"VolumeAZ"`
	InstanceID       string `json:"InstanceID"`
	FindingID        string `json:"FindingID"`
	SourceDeviceName string `json:"SourceDeviceName"`

	ForensicInstances []string `json:"ForensicInstances"`
	DiskImageLocation string   `json:"DiskImageLocation"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Field is a named required input value.
type Field struct {
	Name  string
	Value string
}

var knownFields = []string{
	"EvidenceBucket", "SourceVolumeID", "IncidentID", "ForensicVolumeID",
	"VolumeAZ", "InstanceID", "FindingID", "SourceDeviceName",
	"ForensicInstances", "DiskImageLocation",
}

// Fields returns the required input fields in declaration order.
func (i *Incident) Fields() []Field {
	return []Field{
		{"EvidenceBucket", i.EvidenceBucket},
		{"SourceVolumeID", i.SourceVolumeID},
		{"IncidentID", i.IncidentID},
		{"ForensicVolumeID", i.ForensicVolumeID},
		{"VolumeAZ", i.VolumeAZ},
		{"InstanceID", i.InstanceID},
		{"FindingID", i.FindingID},
		{"SourceDeviceName", i.SourceDeviceName},
	}
}

// Validate reports every missing required field in a single ErrInput.
func (i *Incident) Validate() error {
	var missing []string
	for _, f := range i.Fields() {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return errors.Inputf("%s is missing required fields: %s", EventKey, strings.Join(missing, ", "))
	}
	return nil
}

// Decode parses a raw workflow payload. Malformed JSON, including a
// wrong-typed field, is an ErrInput.
func Decode(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, errors.Classify(errors.ErrInput, errors.Wrap(err, "failed to decode event"))
	}
	return &ev, nil
}

// Incident returns the validated descriptor carried by the event.
func (e *Event) Incident() (*Incident, error) {
	if e == nil || e.DiskProcess == nil {
		return nil, errors.Inputf("event has no %s object", EventKey)
	}
	if err := e.DiskProcess.Validate(); err != nil {
		return nil, err
	}
	return e.DiskProcess, nil
}

// Clone returns a copy that shares no slices or maps with i.
func (i *Incident) Clone() *Incident {
	out := *i
	if i.ForensicInstances != nil {
		out.ForensicInstances = append([]string(nil), i.ForensicInstances...)
	}
	if i.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(i.Extra))
		for k, v := range i.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}

type plainIncident Incident

// UnmarshalJSON decodes the modelled fields and stashes the rest in Extra.
func (i *Incident) UnmarshalJSON(data []byte) error {
	var p plainIncident
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for key := range all {
		if isKnownField(key) {
			delete(all, key)
		}
	}

	p.Extra = nil
	if len(all) > 0 {
		p.Extra = all
	}
	*i = Incident(p)
	return nil
}

// MarshalJSON writes the modelled fields merged with Extra. Modelled fields
// win on a key collision.
func (i Incident) MarshalJSON() ([]byte, error) {
	p := plainIncident(i)
	if p.ForensicInstances == nil {
		p.ForensicInstances = []string{}
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if len(i.Extra) == 0 {
		return data, nil
	}

	merged := make(map[string]json.RawMessage, len(knownFields)+len(i.Extra))
	for k, v := range i.Extra {
		merged[k] = v
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(data, &known); err != nil {
		return nil, err
	}
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func isKnownField(key string) bool {
	for _, name := range knownFields {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}
