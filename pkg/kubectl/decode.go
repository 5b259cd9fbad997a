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

package kubectl

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// nodeListJSON is the envelope of "kubectl get nodes -o json". Items are
// decoded one at a time so a bad timestamp only affects its own node.
type nodeListJSON struct {
	Items []json.RawMessage `json:"items"`
}

// decodeNodes parses kubectl output into a node list. A creationTimestamp
// that is not RFC 3339 is dropped so the node renders with an unknown age.
func decodeNodes(out []byte) (*v1.NodeList, error) {
	var list nodeListJSON
	if err := json.Unmarshal(out, &list); err != nil {
		return nil, &ParseError{Raw: out, Err: err}
	}

	nodes := &v1.NodeList{Items: make([]v1.Node, 0, len(list.Items))}
	for _, raw := range list.Items {
		obj := map[string]interface{}{}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, &ParseError{Raw: out, Err: err}
		}
		dropInvalidTimestamp(obj)

		b, err := json.Marshal(obj)
		if err != nil {
			return nil, &ParseError{Raw: out, Err: err}
		}
		var n v1.Node
		if err := json.Unmarshal(b, &n); err != nil {
			return nil, &ParseError{Raw: out, Err: err}
		}
		nodes.Items = append(nodes.Items, n)
	}
	return nodes, nil
}

func dropInvalidTimestamp(obj map[string]interface{}) {
	ts, found, err := unstructured.NestedFieldNoCopy(obj, "metadata", "creationTimestamp")
	if err != nil || !found || ts == nil {
		return
	}
	if s, ok := ts.(string); ok {
		if _, err := time.Parse(time.RFC3339, s); err == nil {
			return
		}
	}
	name, _, _ := unstructured.NestedString(obj, "metadata", "name")
	log.Debugf("ignoring invalid creationTimestamp %v on node %s", ts, name)
	unstructured.RemoveNestedField(obj, "metadata", "creationTimestamp")
}
