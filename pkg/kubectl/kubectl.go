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

// Package kubectl runs the kubectl binary and decodes its output.
package kubectl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
	v1 "k8s.io/api/core/v1"
)

// DefaultBinary is looked up in PATH when no binary is configured.
const DefaultBinary = "kubectl"

const unknownContext = "unknown"

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// Client invokes kubectl with an optional kubeconfig, context and label
// selector.
type Client struct {
	Binary     string
	Kubeconfig string
	Context    string
	Selector   string
}

// GetNodes runs "kubectl get nodes -o json" and decodes the node list.
func (c *Client) GetNodes(ctx context.Context) (*v1.NodeList, error) {
	args := []string{"get", "nodes", "-o", "json"}
	if c.Selector != "" {
		args = append(args, "-l", c.Selector)
	}

	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	nodes, err := decodeNodes(out)
	if err != nil {
		return nil, err
	}
	log.Debugf("kubectl returned %d node(s)", len(nodes.Items))
	return nodes, nil
}

// CurrentContext returns the current kubectl context, or "unknown" when
// kubectl cannot tell.
func (c *Client) CurrentContext(ctx context.Context) string {
	if c.Context != "" {
		return c.Context
	}
	out, err := c.run(ctx, "config", "current-context")
	if err != nil {
		log.Debugf("unable to get current context: %v", err)
		return unknownContext
	}
	return strings.TrimSpace(string(out))
}

// Contexts lists the context names known to kubectl. Failures yield an
// empty list.
func (c *Client) Contexts(ctx context.Context) []string {
	out, err := c.run(ctx, "config", "get-contexts", "-o", "name")
	if err != nil {
		log.Debugf("unable to list contexts: %v", err)
		return nil
	}
	var names []string
	for _, l := range strings.Split(string(out), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			names = append(names, l)
		}
	}
	return names
}

func (c *Client) binary() string {
	if c.Binary == "" {
		return DefaultBinary
	}
	return c.Binary
}

// globalArgs are prepended to every invocation.
func (c *Client) globalArgs() []string {
	var args []string
	if c.Kubeconfig != "" {
		args = append(args, "--kubeconfig", c.Kubeconfig)
	}
	if c.Context != "" {
		args = append(args, "--context", c.Context)
	}
	return args
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	args = append(c.globalArgs(), args...)
	log.Debugf("running %s %s", c.binary(), strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := execCommandContext(ctx, c.binary(), args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, &CommandError{
			Message:  fmt.Sprintf("unexpected error executing %s: %v", c.binary(), err),
			ExitCode: -1,
			Err:      err,
		}
	}

	msg := fmt.Sprintf("kubectl command failed with return code %d", exitErr.ExitCode())
	if c.Context != "" && strings.Contains(strings.ToLower(stderr.String()), "context") {
		msg = fmt.Sprintf("Context '%s' not found. Use 'kubectl config get-contexts' to list available contexts.", c.Context)
	}
	return nil, &CommandError{
		Message:  msg,
		Stderr:   strings.TrimSpace(stderr.String()),
		ExitCode: exitErr.ExitCode(),
		Err:      err,
	}
}
