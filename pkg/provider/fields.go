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

package provider

import (
	"fmt"
	"sort"
	"strings"
	"time"

	v1 "k8s.io/api/core/v1"
)

// Base column names, shown for every node.
const (
	ColName             = "NAME"
	ColStatus           = "STATUS"
	ColRoles            = "ROLES"
	ColAge              = "AGE"
	ColVersion          = "VERSION"
	ColInternalIP       = "INTERNAL-IP"
	ColExternalIP       = "EXTERNAL-IP"
	ColOSImage          = "OS-IMAGE"
	ColKernelVersion    = "KERNEL-VERSION"
	ColContainerRuntime = "CONTAINER-RUNTIME"
	ColInstanceType     = "INSTANCE-TYPE"
)

const (
	statusReady              = "Ready"
	statusNotReady           = "NotReady"
	statusUnknown            = "Unknown"
	statusSchedulingDisabled = "SchedulingDisabled"
	ageUnknown               = "Unknown"
)

// baseColumns is the row skeleton shared by all providers, in display order.
var baseColumns = []column{
	{ColName, func(n *v1.Node) (string, bool) { return n.Name, true }},
	{ColStatus, func(n *v1.Node) (string, bool) { return Status(n), true }},
	{ColRoles, roles},
	{ColAge, nil}, // depends on the clock, filled in by BaseFields
	{ColVersion, nodeInfo(func(i v1.NodeSystemInfo) string { return i.KubeletVersion })},
	{ColInternalIP, address(v1.NodeInternalIP)},
	{ColExternalIP, address(v1.NodeExternalIP)},
	{ColOSImage, nodeInfo(func(i v1.NodeSystemInfo) string { return i.OSImage })},
	{ColKernelVersion, nodeInfo(func(i v1.NodeSystemInfo) string { return i.KernelVersion })},
	{ColContainerRuntime, nodeInfo(func(i v1.NodeSystemInfo) string { return i.ContainerRuntimeVersion })},
	{ColInstanceType, label(labelInstanceType)},
}

// BaseHeaders returns the base columns in display order.
func BaseHeaders() []string {
	h := make([]string, 0, len(baseColumns))
	for _, c := range baseColumns {
		h = append(h, c.header)
	}
	return h
}

// BaseFields extracts the base columns of a node. now is used for AGE.
func BaseFields(n *v1.Node, now time.Time) map[string]string {
	f := make(map[string]string, len(baseColumns))
	for _, c := range baseColumns {
		if c.value == nil {
			continue
		}
		f[c.header] = resolve(c, n)
	}
	f[ColAge] = Age(n, now)
	return f
}

// Status renders the Ready condition, suffixed with SchedulingDisabled for
// cordoned nodes.
func Status(n *v1.Node) string {
	s := statusUnknown
	for _, c := range n.Status.Conditions {
		if c.Type != v1.NodeReady {
			continue
		}
		if c.Status == v1.ConditionTrue {
			s = statusReady
		} else {
			s = statusNotReady
		}
		break
	}
	if n.Spec.Unschedulable {
		s += "," + statusSchedulingDisabled
	}
	return s
}

// Age renders the time elapsed since the node was created.
func Age(n *v1.Node, now time.Time) string {
	if n.CreationTimestamp.IsZero() {
		return ageUnknown
	}
	return FormatAge(now.Sub(n.CreationTimestamp.Time))
}

// FormatAge renders d using only its largest whole unit: days, hours,
// minutes or seconds.
func FormatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd", int64(d/(24*time.Hour)))
	case d >= time.Hour:
		return fmt.Sprintf("%dh", int64(d/time.Hour))
	case d >= time.Minute:
		return fmt.Sprintf("%dm", int64(d/time.Minute))
	default:
		return fmt.Sprintf("%ds", int64(d/time.Second))
	}
}

func roles(n *v1.Node) (string, bool) {
	var r []string
	for k := range n.Labels {
		if role, ok := strings.CutPrefix(k, labelNodeRolePrefix); ok && role != "" {
			r = append(r, role)
		}
	}
	if len(r) == 0 {
		return "", false
	}
	sort.Strings(r)
	return strings.Join(r, ","), true
}

func nodeInfo(get func(v1.NodeSystemInfo) string) func(n *v1.Node) (string, bool) {
	return func(n *v1.Node) (string, bool) {
		v := get(n.Status.NodeInfo)
		return v, v != ""
	}
}

func address(t v1.NodeAddressType) func(n *v1.Node) (string, bool) {
	return func(n *v1.Node) (string, bool) {
		for _, a := range n.Status.Addresses {
			if a.Type == t {
				return a.Address, true
			}
		}
		return "", false
	}
}
