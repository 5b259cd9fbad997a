package cloud

import (
	"context"
	"fmt"
	"strings"

	compute "cloud.google.com/go/compute/apiv1"
	computepb "cloud.google.com/go/compute/apiv1/computepb"
)

const capacityStandard = "STANDARD"

// gceProvider implements Provider for GCE-backed nodes.
type gceProvider struct{}

// NodeMetadata fetches GCE-specific node information and maps it to Metadata.
// The id format is expected to be "project/zone/instance-name".
func (p *gceProvider) NodeMetadata(ctx context.Context, id string) (*Metadata, error) {
	parts := strings.Split(id, "/")
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid GCE provider ID format: %q", id)
	}

	c, err := compute.NewInstancesRESTClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCE client: %w", err)
	}
	defer func() {
		// Best-effort close; ignore error to satisfy staticcheck/errcheck.
		_ = c.Close()
	}()

	instance, err := c.Get(ctx, &computepb.GetInstanceRequest{
		Project:  parts[0],
		Zone:     parts[1],
		Instance: parts[2],
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get GCE instance: %w", err)
	}

	return gceMetadata(instance), nil
}

func gceMetadata(instance *computepb.Instance) *Metadata {
	metadata := &Metadata{
		CapacityType: capacityStandard,
	}

	if mt := instance.GetMachineType(); mt != "" {
		// Extract just the machine type name from the full URL.
		metadata.InstanceType = mt[strings.LastIndex(mt, "/")+1:]
	}

	for _, item := range instance.GetMetadata().GetItems() {
		if item.GetKey() == "gke-nodepool" {
			metadata.NodePool = item.GetValue()
		}
	}

	// Alternative location for node pool.
	if metadata.NodePool == "" {
		metadata.NodePool = instance.GetLabels()["gke-nodepool"]
	}

	switch instance.GetScheduling().GetProvisioningModel() {
	case "SPOT":
		metadata.CapacityType = capacityTypeSpot
	default:
		if instance.GetScheduling().GetPreemptible() {
			metadata.CapacityType = "PREEMPTIBLE"
		}
	}

	return metadata
}

// nolint:gochecknoinits // registration-style init keeps provider wiring local to this file.
func init() {
	RegisterProvider(ProviderGCE, func() Provider { return &gceProvider{} })
}
