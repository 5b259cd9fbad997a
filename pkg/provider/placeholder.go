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

import v1 "k8s.io/api/core/v1"

// NotAvailable is rendered for absent data and for columns a node's
// provider does not contribute.
const NotAvailable = "N/A"

// placeholders overrides NotAvailable for columns with their own default.
var placeholders = map[string]string{
	ColRoles:          "<none>",
	ColAWSASG:         "",
	ColGCPPreemptible: "false",
}

// Placeholder returns the value rendered when a column's data is absent.
func Placeholder(header string) string {
	if p, ok := placeholders[header]; ok {
		return p
	}
	return NotAvailable
}

func resolve(c column, n *v1.Node) string {
	if v, ok := c.value(n); ok {
		return v
	}
	return Placeholder(c.header)
}
