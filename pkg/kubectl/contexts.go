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
	"context"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"k8s.io/client-go/tools/clientcmd"
)

// KubeconfigContexts returns the context names of a kubeconfig, sorted, and
// its current context.
func KubeconfigContexts(cc clientcmd.ClientConfig) (names []string, current string, err error) {
	raw, err := cc.RawConfig()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	names = make([]string, 0, len(raw.Contexts))
	for name := range raw.Contexts {
		names = append(names, name)
	}
	// map iteration order is random
	sort.Strings(names)
	return names, raw.CurrentContext, nil
}

// ListContexts reads contexts from the kubeconfig and falls back to asking
// kubectl when the kubeconfig is unavailable or empty.
func (c *Client) ListContexts(ctx context.Context, cc clientcmd.ClientConfig) (names []string, current string) {
	if cc != nil {
		names, current, err := KubeconfigContexts(cc)
		if err == nil && len(names) > 0 {
			return names, current
		}
		if err != nil {
			log.Debugf("falling back to kubectl for contexts: %v", err)
		}
	}
	return c.Contexts(ctx), c.CurrentContext(ctx)
}
