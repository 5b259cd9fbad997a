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
	"fmt"
	"strings"
)

// OutputMode selects how the node table is written.
type OutputMode string

const (
	// OutputTxt is a plain, borderless table.
	OutputTxt OutputMode = "txt"
	// OutputWide is OutputTxt with the detected provider of each node.
	OutputWide OutputMode = "wide"
	// OutputPretty is a bordered table.
	OutputPretty OutputMode = "pretty"
	// OutputJSON writes the projected rows as a JSON array.
	OutputJSON OutputMode = "json"
	// OutputYAML writes the projected rows as a YAML sequence.
	OutputYAML OutputMode = "yaml"
)

var outputModes = []OutputMode{OutputTxt, OutputWide, OutputPretty, OutputJSON, OutputYAML}

// ParseOutputMode validates an --output value. An empty value selects txt.
func ParseOutputMode(s string) (OutputMode, error) {
	v := OutputMode(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return OutputTxt, nil
	}
	for _, m := range outputModes {
		if v == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (want one of: %s)", s, outputModeList())
}

// Structured reports whether the mode is machine readable. Structured
// output carries no context banner.
func (m OutputMode) Structured() bool {
	return m == OutputJSON || m == OutputYAML
}

func outputModeList() string {
	names := make([]string, len(outputModes))
	for i, m := range outputModes {
		names[i] = string(m)
	}
	return strings.Join(names, "|")
}
