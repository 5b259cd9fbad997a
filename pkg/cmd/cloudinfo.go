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

package cmd

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	v1 "k8s.io/api/core/v1"

	"gitlab.com/davidxarnold/kubectl-node/pkg/cloud"
	"gitlab.com/davidxarnold/kubectl-node/pkg/provider"
)

// Columns appended by --cloud-info.
const (
	ColCapacityType = "CAPACITY-TYPE"
	ColNodeGroup    = "NODE-GROUP"
)

// addCloudInfo queries the cloud provider of every node, one node at a time,
// and appends the capacity type and node group columns. Nodes that cannot be
// looked up render N/A.
func (o *NodeOptions) addCloudInfo(ctx context.Context, t *provider.Table, nodes []v1.Node) {
	byName := make(map[string]*cloud.Metadata, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if n.Spec.ProviderID == "" {
			log.Debugf("unable to get cloud-info for node %s: providerID not set", n.Name)
			continue
		}
		md, err := o.metadata(ctx, n.Spec.ProviderID)
		if errors.Is(err, cloud.ErrUnsupportedProvider) {
			log.Tracef("skipping cloud-info for node %s: %v", n.Name, err)
			continue
		}
		if err != nil {
			log.Debugf("unable to get cloud-info for node %s: %v", n.Name, err)
			continue
		}
		byName[n.Name] = md
	}

	t.AddColumn(ColCapacityType, func(r *provider.Row) string {
		if md := byName[r.Name]; md != nil {
			return md.CapacityType
		}
		return ""
	})
	t.AddColumn(ColNodeGroup, func(r *provider.Row) string {
		if md := byName[r.Name]; md != nil {
			return md.Group()
		}
		return ""
	})
}
