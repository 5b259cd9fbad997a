/*
Copyright 2025 David Arnold
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
    http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package provider classifies nodes by the cloud platform hosting them and
// projects them into display rows with provider-specific columns.
package provider

import (
	"gitlab.com/davidxarnold/kubectl-node/pkg/util"
	v1 "k8s.io/api/core/v1"
)

// Name identifies a cloud provider.
type Name string

// Known providers. Generic is the fallback for nodes without a cloud signature.
const (
	AWS     Name = "aws"
	Azure   Name = "azure"
	GCP     Name = "gcp"
	Generic Name = "generic"
)

// Signature labels used for detection.
const (
	LabelAWSCloudProvider = "k8s.io/cloud-provider-aws"
	LabelAzureCluster     = "kubernetes.azure.com/cluster"
	LabelGKENodePool      = "cloud.google.com/gke-nodepool"
)

// Provider-specific column names.
const (
	ColAWSInstanceID      = "AWS-INSTANCE-ID"
	ColAWSZone            = "AWS-ZONE"
	ColAWSASG             = "AWS-ASG"
	ColAzureInstanceType  = "AZURE-INSTANCE-TYPE"
	ColAzureResourceGroup = "AZURE-RESOURCE-GROUP"
	ColAzureZone          = "AZURE-ZONE"
	ColGCPInstanceID      = "GCP-INSTANCE-ID"
	ColGCPZone            = "GCP-ZONE"
	ColGCPNodePool        = "GCP-NODE-POOL"
	ColGCPPreemptible     = "GCP-PREEMPTIBLE"
)

const (
	labelAzureResourceGroup = "kubernetes.azure.com/resource-group"
	labelGKEPreemptible     = "cloud.google.com/gke-preemptible"
	labelZoneBeta           = "failure-domain.beta.kubernetes.io/zone"
	labelZoneTopology       = "topology.kubernetes.io/zone"
	labelInstanceType       = "node.kubernetes.io/instance-type"
	labelNodeRolePrefix     = "node-role.kubernetes.io/"
	taintUnschedulable      = "node.kubernetes.io/unschedulable"
)

// column derives one display value from a node. ok is false when the
// underlying data is absent; the placeholder policy fills the slot.
type column struct {
	header string
	value  func(n *v1.Node) (v string, ok bool)
}

// Provider is one entry of the provider table: a detection rule plus the
// ordered columns it contributes.
type Provider struct {
	name    Name
	detect  func(n *v1.Node) bool
	columns []column
}

// Name returns the provider name.
func (p *Provider) Name() Name {
	return p.name
}

// Detect reports whether the node carries this provider's signature.
func (p *Provider) Detect(n *v1.Node) bool {
	return p.detect(n)
}

// Headers returns the provider-specific columns in their fixed order.
func (p *Provider) Headers() []string {
	h := make([]string, 0, len(p.columns))
	for _, c := range p.columns {
		h = append(h, c.header)
	}
	return h
}

// Fields extracts the provider-specific columns of a node. Every column of
// the provider is present in the result.
func (p *Provider) Fields(n *v1.Node) map[string]string {
	f := make(map[string]string, len(p.columns))
	for _, c := range p.columns {
		f[c.header] = resolve(c, n)
	}
	return f
}

// providers is evaluated in order; the last entry always matches.
var providers = []*Provider{
	{
		name:   AWS,
		detect: hasLabel(LabelAWSCloudProvider),
		columns: []column{
			{ColAWSInstanceID, instanceID},
			{ColAWSZone, zone},
			{ColAWSASG, autoscalingGroup},
		},
	},
	{
		name:   Azure,
		detect: hasLabel(LabelAzureCluster),
		columns: []column{
			{ColAzureInstanceType, label(labelInstanceType)},
			{ColAzureResourceGroup, label(labelAzureResourceGroup)},
			{ColAzureZone, zone},
		},
	},
	{
		name:   GCP,
		detect: hasLabel(LabelGKENodePool),
		columns: []column{
			{ColGCPInstanceID, instanceID},
			{ColGCPZone, zone},
			{ColGCPNodePool, label(LabelGKENodePool)},
			{ColGCPPreemptible, label(labelGKEPreemptible)},
		},
	},
	{
		name:   Generic,
		detect: func(*v1.Node) bool { return true },
	},
}

// Detect returns the first provider whose signature matches the node.
func Detect(n *v1.Node) *Provider {
	for _, p := range providers {
		if p.Detect(n) {
			return p
		}
	}
	// unreachable: Generic always matches
	return providers[len(providers)-1]
}

// Lookup returns the provider registered under name, or nil.
func Lookup(name Name) *Provider {
	for _, p := range providers {
		if p.name == name {
			return p
		}
	}
	return nil
}

func hasLabel(key string) func(n *v1.Node) bool {
	return func(n *v1.Node) bool {
		_, ok := n.Labels[key]
		return ok
	}
}

func label(key string) func(n *v1.Node) (string, bool) {
	return func(n *v1.Node) (string, bool) {
		v, ok := n.Labels[key]
		return v, ok
	}
}

func zone(n *v1.Node) (string, bool) {
	if z, ok := n.Labels[labelZoneBeta]; ok {
		return z, true
	}
	return label(labelZoneTopology)(n)
}

func instanceID(n *v1.Node) (string, bool) {
	return util.InstanceID(n.Spec.ProviderID)
}

// autoscalingGroup takes the first taint that is not the cordon taint. This
// is a heuristic: the taint is not checked to actually name an ASG.
func autoscalingGroup(n *v1.Node) (string, bool) {
	for _, t := range n.Spec.Taints {
		if t.Key != taintUnschedulable {
			return t.Key, true
		}
	}
	return "", false
}
