// Package catalog parses the region to machine image table used to pick the
// forensic AMI for the region the launcher runs in.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ir-automation/forensic-launcher/pkg/errors"
)

// ErrImageNotFound is returned by Lookup for a region with no catalog entry.
// It always travels together with errors.ErrConfig.
var ErrImageNotFound = errors.New("no machine image for region")

// ImageCatalog maps a region identifier to a machine image identifier.
// It is immutable once parsed.
type ImageCatalog struct {
	images map[string]string
}

// Parse builds a catalog from comma-separated "region:imageId" pairs.
// Whitespace around keys and values is trimmed and blank segments are skipped.
func Parse(raw string) (*ImageCatalog, error) {
	images := make(map[string]string)

	for i, pair := range strings.Split(raw, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}

		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			return nil, errors.Configf("image catalog entry %d (%q) is not a region:imageId pair", i, pair)
		}

		region := strings.TrimSpace(parts[0])
		imageID := strings.TrimSpace(parts[1])
		if region == "" || imageID == "" {
			return nil, errors.Configf("image catalog entry %d (%q) has an empty region or image id", i, pair)
		}
		if _, dup := images[region]; dup {
			return nil, errors.Configf("image catalog lists region %q more than once", region)
		}

		images[region] = imageID
	}

	if len(images) == 0 {
		return nil, errors.Configf("image catalog is empty")
	}

	return &ImageCatalog{images: images}, nil
}

// Lookup returns the image id for region. An unknown region yields an error
// matching both ErrImageNotFound and errors.ErrConfig.
func (c *ImageCatalog) Lookup(region string) (string, error) {
	imageID, ok := c.images[region]
	if !ok {
		return "", fmt.Errorf("%w: %w: %q", errors.ErrConfig, ErrImageNotFound, region)
	}
	return imageID, nil
}

// Regions returns the catalog's regions in sorted order.
func (c *ImageCatalog) Regions() []string {
	regions := make([]string, 0, len(c.images))
	for region := range c.images {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}

// Len returns the number of entries.
func (c *ImageCatalog) Len() int {
	return len(c.images)
}
