package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
)

const (
	capacityOnDemand = "ON_DEMAND"
	capacityTypeSpot = "SPOT"
	capacityFargate  = "FARGATE"
)

// describeInstancesAPI is the subset of the EC2 client used here.
type describeInstancesAPI interface {
	DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// awsProvider implements Provider for AWS EC2-backed nodes.
type awsProvider struct {
	newClient func(ctx context.Context, region string) (describeInstancesAPI, error)
}

func newEC2Client(ctx context.Context, region string) (describeInstancesAPI, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return ec2.NewFromConfig(cfg), nil
}

// NodeMetadata fetches AWS-specific node information and maps it to Metadata.
// The id is the providerID path, "zone/instance-id" or just "instance-id".
func (p *awsProvider) NodeMetadata(ctx context.Context, id string) (*Metadata, error) {
	zone, instanceID := "", id
	if i := strings.LastIndex(id, "/"); i >= 0 {
		zone, instanceID = id[:i], id[i+1:]
	}
	if instanceID == "" {
		return nil, fmt.Errorf("invalid AWS provider ID format: %q", id)
	}

	svc, err := p.newClient(ctx, regionFromZone(zone))
	if err != nil {
		return nil, err
	}

	result, err := svc.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) {
			return nil, fmt.Errorf("describe instance %s: %s", instanceID, ae.ErrorCode())
		}
		return nil, fmt.Errorf("describe instance %s: %w", instanceID, err)
	}

	if len(result.Reservations) == 0 || len(result.Reservations[0].Instances) == 0 {
		return nil, fmt.Errorf("no instance information found for %s", instanceID)
	}

	return awsMetadata(result.Reservations[0].Instances[0]), nil
}

func awsMetadata(instance types.Instance) *Metadata {
	metadata := &Metadata{
		InstanceType: string(instance.InstanceType),
		CapacityType: capacityOnDemand,
	}
	if instance.InstanceLifecycle == types.InstanceLifecycleTypeSpot {
		metadata.CapacityType = capacityTypeSpot
	}

	// Extract node group and potential Fargate profile from tags.
	for _, tag := range instance.Tags {
		if tag.Key == nil || tag.Value == nil {
			continue
		}
		switch *tag.Key {
		case "eks:nodegroup-name":
			metadata.NodeGroup = *tag.Value
		case "eks:compute-type":
			if *tag.Value == "fargate" {
				metadata.CapacityType = capacityFargate
			}
		case "eks:fargate-profile":
			metadata.FargateProfile = *tag.Value
		}
	}

	return metadata
}

// regionFromZone maps an availability zone such as "us-west-2a" to its
// region. Unknown formats yield "" so the SDK default region applies.
func regionFromZone(zone string) string {
	if len(zone) < 2 {
		return ""
	}
	last := zone[len(zone)-1]
	if last < 'a' || last > 'z' {
		return ""
	}
	return zone[:len(zone)-1]
}

// nolint:gochecknoinits // registration-style init keeps provider wiring local to this file.
func init() {
	RegisterProvider(ProviderAWS, func() Provider { return &awsProvider{newClient: newEC2Client} })
}
