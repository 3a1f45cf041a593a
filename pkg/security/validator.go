package security

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ir-automation/forensic-launcher/pkg/errors"
	"github.com/ir-automation/forensic-launcher/pkg/incident"
)

// DefaultMaxLength matches the EC2 tag value limit.
const DefaultMaxLength = 255

// Validator checks incident identifiers before they are written into the
// instance user data script, EC2 tags and the evidence object key.
//
// Only the values interpolated into the startup script and the object key are
// held to a restricted character set. Tag-only values are copied verbatim.
type Validator struct {
	maxLength int
}

// NewValidator creates a new identifier validator
func NewValidator(maxLength int) *Validator {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Validator{maxLength: maxLength}
}

// ValidateIncident applies the per-field rule to every required field.
func (v *Validator) ValidateIncident(inc *incident.Incident) error {
	checks := []struct {
		field string
		value string
		check func(field, value string) error
	}{
		{"EvidenceBucket", inc.EvidenceBucket, v.ValidateBucketName},
		{"SourceVolumeID", inc.SourceVolumeID, v.ValidateKeySegment},
		{"IncidentID", inc.IncidentID, v.ValidateKeySegment},
		{"ForensicVolumeID", inc.ForensicVolumeID, v.ValidateTagValue},
		{"VolumeAZ", inc.VolumeAZ, v.ValidateTagValue},
		{"InstanceID", inc.InstanceID, v.ValidateTagValue},
		{"FindingID", inc.FindingID, v.ValidateTagValue},
		{"SourceDeviceName", inc.SourceDeviceName, v.ValidateTagValue},
	}

	for _, c := range checks {
		if err := c.check(c.field, c.value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateIdentifier accepts letters, digits and . _ : / - only.
// Anything else could break out of the generated shell script.
func (v *Validator) ValidateIdentifier(field, value string) error {
	if value == "" {
		return reject(field, value, "empty")
	}
	if len(value) > v.maxLength {
		return reject(field, value, fmt.Sprintf("longer than %d bytes", v.maxLength))
	}
	for _, r := range value {
		if !isIdentifierRune(r) {
			return reject(field, value, fmt.Sprintf("character %q not allowed", r))
		}
	}
	return nil
}

// ValidateKeySegment is ValidateIdentifier for values used as a single S3
// key path segment.
func (v *Validator) ValidateKeySegment(field, value string) error {
	if err := v.ValidateIdentifier(field, value); err != nil {
		return err
	}
	if strings.Contains(value, "/") {
		return reject(field, value, "path separator not allowed")
	}
	if value == "." || value == ".." {
		return reject(field, value, "path traversal")
	}
	return nil
}

// ValidateTagValue accepts any printable UTF-8 string up to the maximum
// length. Control characters are rejected so log lines and tags stay single-line.
func (v *Validator) ValidateTagValue(field, value string) error {
	if value == "" {
		return reject(field, value, "empty")
	}
	if len(value) > v.maxLength {
		return reject(field, value, fmt.Sprintf("longer than %d bytes", v.maxLength))
	}
	if !utf8.ValidString(value) {
		return reject(field, value, "invalid UTF-8")
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return reject(field, value, fmt.Sprintf("control character %q not allowed", r))
		}
	}
	return nil
}

// ValidateBucketName applies the S3 general purpose bucket naming rules.
func (v *Validator) ValidateBucketName(field, value string) error {
	if len(value) < 3 || len(value) > 63 {
		return reject(field, value, "bucket name must be 3 to 63 characters")
	}
	for _, r := range value {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '-' && r != '.' {
			return reject(field, value, fmt.Sprintf("character %q not allowed in bucket name", r))
		}
	}
	if !isAlnum(value[0]) || !isAlnum(value[len(value)-1]) {
		return reject(field, value, "bucket name must start and end with a letter or digit")
	}
	if strings.Contains(value, "..") {
		return reject(field, value, "bucket name must not contain adjacent periods")
	}
	return nil
}

func reject(field, value, reason string) error {
	slog.Error("security_identifier_rejected", "field", field, "value", value, "reason", reason)
	return errors.Inputf("security: %s %q rejected: %s", field, value, reason)
}

func isIdentifierRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == ':', r == '/', r == '-':
		return true
	}
	return false
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
