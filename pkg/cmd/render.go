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
	"encoding/json"
	"fmt"
	"io"

	pt "github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"gitlab.com/davidxarnold/kubectl-node/pkg/provider"
)

const colProvider = "PROVIDER"

func render(w io.Writer, t *provider.Table, mode OutputMode, noHeaders bool) error {
	switch mode {
	case OutputJSON:
		return renderJSON(w, t)
	case OutputYAML:
		return renderYAML(w, t)
	case OutputPretty:
		renderPretty(w, t, noHeaders)
	case OutputWide:
		table(w, t, noHeaders, true)
	default:
		table(w, t, noHeaders, false)
	}
	return nil
}

func renderJSON(w io.Writer, t *provider.Table) error {
	b, err := json.MarshalIndent(t.Rows, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to encode nodes as json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func renderYAML(w io.Writer, t *provider.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t.Rows); err != nil {
		return fmt.Errorf("failed to encode nodes as yaml: %w", err)
	}
	return enc.Close()
}

func renderPretty(w io.Writer, t *provider.Table, noHeaders bool) {
	tw := pt.NewWriter()
	tw.SetStyle(pt.StyleColoredBright)
	tw.SetOutputMirror(w)
	if !noHeaders {
		tw.AppendHeader(headerRow(t.Headers))
	}
	for i := range t.Rows {
		tw.AppendRow(valueRow(t.Rows[i].Values))
	}
	tw.Render()
}

// table writes the plain layout kubectl users expect: no borders, no
// separators, columns aligned on padding alone.
func table(w io.Writer, t *provider.Table, noHeaders, wide bool) {
	tw := pt.NewWriter()
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateFooter = false
	tw.Style().Options.SeparateHeader = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Box.PaddingLeft = ""
	tw.Style().Box.PaddingRight = "   "
	tw.SetOutputMirror(w)

	if !noHeaders {
		h := headerRow(t.Headers)
		if wide {
			h = append(h, colProvider)
		}
		tw.AppendHeader(h)
	}
	for i := range t.Rows {
		r := valueRow(t.Rows[i].Values)
		if wide {
			r = append(r, string(t.Rows[i].Provider))
		}
		tw.AppendRow(r)
	}
	tw.Render()
}

func headerRow(headers []string) pt.Row {
	r := make(pt.Row, len(headers))
	for i, h := range headers {
		r[i] = h
	}
	return r
}

func valueRow(values []string) pt.Row {
	r := make(pt.Row, len(values))
	for i, v := range values {
		r[i] = v
	}
	return r
}
