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
	"time"

	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Row is one projected node. Fields holds a value for every header of the
// table, keyed by header.
type Row struct {
	Name     string            `json:"name" yaml:"name"`
	Provider Name              `json:"provider" yaml:"provider"`
	Fields   map[string]string `json:"fields" yaml:"fields"`
	Values   []string          `json:"-" yaml:"-"`
}

// Table is a batch of nodes projected onto a common header set.
type Table struct {
	Headers []string
	Rows    []Row
}

// PlanHeaders returns the base columns followed by the sorted union of the
// columns contributed by the providers detected in nodes. Providers with no
// node in the batch contribute nothing.
func PlanHeaders(nodes []v1.Node) []string {
	extra := sets.New[string]()
	for i := range nodes {
		extra.Insert(Detect(&nodes[i]).Headers()...)
	}
	return append(BaseHeaders(), sets.List(extra)...)
}

// NodeFields merges the base and provider-specific fields of a node.
func NodeFields(n *v1.Node, now time.Time) (*Provider, map[string]string) {
	p := Detect(n)
	f := BaseFields(n, now)
	for k, v := range p.Fields(n) {
		f[k] = v
	}
	return p, f
}

// ProjectRow renders a node in header order. Columns the node's provider
// does not contribute render NotAvailable.
func ProjectRow(n *v1.Node, headers []string, now time.Time) []string {
	_, f := NodeFields(n, now)
	return values(f, headers)
}

// Project plans the headers for nodes and projects every node onto them.
func Project(nodes []v1.Node, now time.Time) Table {
	t := Table{
		Headers: PlanHeaders(nodes),
		Rows:    make([]Row, 0, len(nodes)),
	}
	for i := range nodes {
		p, f := NodeFields(&nodes[i], now)
		row := Row{
			Name:     nodes[i].Name,
			Provider: p.Name(),
			Fields:   make(map[string]string, len(t.Headers)),
			Values:   values(f, t.Headers),
		}
		for j, h := range t.Headers {
			row.Fields[h] = row.Values[j]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// AddColumn appends a column to the table. value is called once per row;
// an empty result renders NotAvailable.
func (t *Table) AddColumn(header string, value func(r *Row) string) {
	t.Headers = append(t.Headers, header)
	for i := range t.Rows {
		v := value(&t.Rows[i])
		if v == "" {
			v = NotAvailable
		}
		t.Rows[i].Fields[header] = v
		t.Rows[i].Values = append(t.Rows[i].Values, v)
	}
}

func values(f map[string]string, headers []string) []string {
	row := make([]string, len(headers))
	for i, h := range headers {
		v, ok := f[h]
		if !ok {
			v = NotAvailable
		}
		row[i] = v
	}
	return row
}
