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
	"errors"
	"fmt"
	"os"
	"os/exec"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"gitlab.com/davidxarnold/kubectl-node/pkg/provider"
)

const nodeListFixture = `{
  "apiVersion": "v1",
  "kind": "List",
  "items": [
    {
      "metadata": {
        "name": "ip-10-0-1-5.us-west-2.compute.internal",
        "creationTimestamp": "2025-05-30T09:15:00Z",
        "labels": {"k8s.io/cloud-provider-aws": "abc", "node-role.kubernetes.io/worker": ""}
      },
      "spec": {
        "providerID": "aws:///us-west-2a/i-0123",
        "taints": [{"key": "dedicated", "effect": "NoSchedule"}]
      },
      "status": {
        "conditions": [{"type": "Ready", "status": "True"}],
        "addresses": [{"type": "InternalIP", "address": "10.0.1.5"}],
        "nodeInfo": {"kubeletVersion": "v1.31.2"}
      }
    }
  ]
}`

// fakeExec replaces the process launcher with the test binary running
// TestHelperProcess. It returns the argv of the last invocation.
func fakeExec(t *testing.T, stdout, stderr string, code int) *[]string {
	t.Helper()
	var argv []string
	old := execCommandContext
	t.Cleanup(func() { execCommandContext = old })

	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		argv = append([]string{name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess", "--")
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			"HELPER_STDOUT="+stdout,
			"HELPER_STDERR="+stderr,
			"HELPER_EXIT="+strconv.Itoa(code),
		)
		return cmd
	}
	return &argv
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Fprint(os.Stdout, os.Getenv("HELPER_STDOUT"))
	fmt.Fprint(os.Stderr, os.Getenv("HELPER_STDERR"))
	code, _ := strconv.Atoi(os.Getenv("HELPER_EXIT"))
	os.Exit(code)
}

func TestGetNodes(t *testing.T) {
	argv := fakeExec(t, nodeListFixture, "", 0)

	c := &Client{}
	nodes, err := c.GetNodes(context.Background())
	if err != nil {
		t.Fatalf("GetNodes() returned error: %v", err)
	}
	if len(nodes.Items) != 1 {
		t.Fatalf("GetNodes() returned %d nodes, want 1", len(nodes.Items))
	}

	n := nodes.Items[0]
	if n.Name != "ip-10-0-1-5.us-west-2.compute.internal" {
		t.Errorf("Name = %q", n.Name)
	}
	if n.Spec.ProviderID != "aws:///us-west-2a/i-0123" {
		t.Errorf("ProviderID = %q", n.Spec.ProviderID)
	}
	if n.Status.NodeInfo.KubeletVersion != "v1.31.2" {
		t.Errorf("KubeletVersion = %q", n.Status.NodeInfo.KubeletVersion)
	}
	if n.CreationTimestamp.Year() != 2025 {
		t.Errorf("CreationTimestamp = %v", n.CreationTimestamp)
	}
	if want := []string{"kubectl", "get", "nodes", "-o", "json"}; !reflect.DeepEqual(*argv, want) {
		t.Errorf("argv = %v, want %v", *argv, want)
	}
}

func TestGetNodesInvalidTimestamp(t *testing.T) {
	out := `{"items": [
	  {"metadata": {"name": "good", "creationTimestamp": "2025-05-30T09:15:00Z"}},
	  {"metadata": {"name": "bad", "creationTimestamp": "not-a-time"}},
	  {"metadata": {"name": "numeric", "creationTimestamp": 1717243200}}
	]}`
	fakeExec(t, out, "", 0)

	nodes, err := (&Client{}).GetNodes(context.Background())
	if err != nil {
		t.Fatalf("GetNodes() returned error: %v", err)
	}
	if len(nodes.Items) != 3 {
		t.Fatalf("GetNodes() returned %d nodes, want 3", len(nodes.Items))
	}

	now := time.Date(2025, 6, 1, 9, 15, 0, 0, time.UTC)
	wants := map[string]string{"good": "2d", "bad": "Unknown", "numeric": "Unknown"}
	for i := range nodes.Items {
		n := &nodes.Items[i]
		if got := provider.Age(n, now); got != wants[n.Name] {
			t.Errorf("Age(%q) = %q, want %q", n.Name, got, wants[n.Name])
		}
	}
}

func TestGetNodesForwardsFlags(t *testing.T) {
	argv := fakeExec(t, `{"items": []}`, "", 0)

	c := &Client{
		Binary:     "/usr/local/bin/kubectl",
		Kubeconfig: "/tmp/kubeconfig",
		Context:    "prod",
		Selector:   "node-role.kubernetes.io/worker",
	}
	nodes, err := c.GetNodes(context.Background())
	if err != nil {
		t.Fatalf("GetNodes() returned error: %v", err)
	}
	if len(nodes.Items) != 0 {
		t.Errorf("GetNodes() returned %d nodes, want 0", len(nodes.Items))
	}
	want := []string{
		"/usr/local/bin/kubectl",
		"--kubeconfig", "/tmp/kubeconfig",
		"--context", "prod",
		"get", "nodes", "-o", "json",
		"-l", "node-role.kubernetes.io/worker",
	}
	if !reflect.DeepEqual(*argv, want) {
		t.Errorf("argv = %v, want %v", *argv, want)
	}
}

// commandError fails the test unless err is a *CommandError.
func commandError(t *testing.T, err error) *CommandError {
	t.Helper()
	var ce *CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *CommandError", err)
	}
	return ce
}

func TestGetNodesCommandFailure(t *testing.T) {
	fakeExec(t, "", "The connection to the server localhost:8080 was refused", 1)

	_, err := (&Client{}).GetNodes(context.Background())
	ce := commandError(t, err)
	if ce.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", ce.ExitCode)
	}
	if want := "kubectl command failed with return code 1"; ce.Error() != want {
		t.Errorf("Error() = %q, want %q", ce.Error(), want)
	}
	if !strings.Contains(ce.Stderr, "connection to the server") {
		t.Errorf("Stderr = %q", ce.Stderr)
	}
}

func TestGetNodesInvalidContext(t *testing.T) {
	fakeExec(t, "", `error: context "staging" does not exist`, 1)

	_, err := (&Client{Context: "staging"}).GetNodes(context.Background())
	ce := commandError(t, err)
	want := "Context 'staging' not found. Use 'kubectl config get-contexts' to list available contexts."
	if ce.Error() != want {
		t.Errorf("Error() = %q, want %q", ce.Error(), want)
	}
}

func TestGetNodesContextMessageNeedsExplicitContext(t *testing.T) {
	fakeExec(t, "", `error: current-context is not set`, 1)

	_, err := (&Client{}).GetNodes(context.Background())
	ce := commandError(t, err)
	if want := "kubectl command failed with return code 1"; ce.Error() != want {
		t.Errorf("Error() = %q, want %q", ce.Error(), want)
	}
}

func TestGetNodesParseError(t *testing.T) {
	fakeExec(t, "not json at all", "", 0)

	_, err := (&Client{}).GetNodes(context.Background())

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if string(pe.Raw) != "not json at all" {
		t.Errorf("Raw = %q, want %q", pe.Raw, "not json at all")
	}
	if !strings.Contains(pe.Error(), "failed to parse kubectl output as JSON") {
		t.Errorf("Error() = %q", pe.Error())
	}
}

func TestGetNodesMissingBinary(t *testing.T) {
	_, err := (&Client{Binary: "/nonexistent/kubectl"}).GetNodes(context.Background())

	ce := commandError(t, err)
	if ce.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", ce.ExitCode)
	}
	if !strings.Contains(ce.Error(), "unexpected error executing /nonexistent/kubectl") {
		t.Errorf("Error() = %q", ce.Error())
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("CommandError should wrap the exec error")
	}
}

func TestCurrentContext(t *testing.T) {
	argv := fakeExec(t, "kind-kind\n", "", 0)
	if got := (&Client{}).CurrentContext(context.Background()); got != "kind-kind" {
		t.Errorf("CurrentContext() = %q, want %q", got, "kind-kind")
	}
	if want := []string{"kubectl", "config", "current-context"}; !reflect.DeepEqual(*argv, want) {
		t.Errorf("argv = %v, want %v", *argv, want)
	}

	fakeExec(t, "", "error: current-context is not set", 1)
	if got := (&Client{}).CurrentContext(context.Background()); got != unknownContext {
		t.Errorf("CurrentContext() = %q, want %q", got, unknownContext)
	}

	if got := (&Client{Context: "prod"}).CurrentContext(context.Background()); got != "prod" {
		t.Errorf("CurrentContext() = %q, want %q", got, "prod")
	}
}

func TestContexts(t *testing.T) {
	fakeExec(t, "kind-kind\n  prod  \n\nstaging\n", "", 0)
	want := []string{"kind-kind", "prod", "staging"}
	if got := (&Client{}).Contexts(context.Background()); !reflect.DeepEqual(got, want) {
		t.Errorf("Contexts() = %v, want %v", got, want)
	}

	fakeExec(t, "", "boom", 1)
	if got := (&Client{}).Contexts(context.Background()); len(got) != 0 {
		t.Errorf("Contexts() = %v, want empty", got)
	}
}

func testClientConfig(current string, contexts ...string) clientcmd.ClientConfig {
	cfg := clientcmdapi.NewConfig()
	cfg.Clusters["c"] = &clientcmdapi.Cluster{Server: "https://127.0.0.1:6443"}
	cfg.AuthInfos["u"] = &clientcmdapi.AuthInfo{Token: "t"}
	for _, name := range contexts {
		cfg.Contexts[name] = &clientcmdapi.Context{Cluster: "c", AuthInfo: "u"}
	}
	cfg.CurrentContext = current
	return clientcmd.NewDefaultClientConfig(*cfg, &clientcmd.ConfigOverrides{})
}

func TestKubeconfigContexts(t *testing.T) {
	names, current, err := KubeconfigContexts(testClientConfig("beta", "gamma", "alpha", "beta"))
	if err != nil {
		t.Fatalf("KubeconfigContexts() returned error: %v", err)
	}
	if want := []string{"alpha", "beta", "gamma"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
	if current != "beta" {
		t.Errorf("current = %q, want %q", current, "beta")
	}
}

func TestListContextsPrefersKubeconfig(t *testing.T) {
	argv := fakeExec(t, "from-kubectl\n", "", 0)

	names, current := (&Client{}).ListContexts(context.Background(), testClientConfig("a", "a", "b"))
	if want := []string{"a", "b"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
	if current != "a" {
		t.Errorf("current = %q, want %q", current, "a")
	}
	if len(*argv) != 0 {
		t.Errorf("kubectl should not be invoked, got %v", *argv)
	}
}

func TestListContextsFallsBackToKubectl(t *testing.T) {
	fakeExec(t, "from-kubectl\n", "", 0)

	names, current := (&Client{}).ListContexts(context.Background(), testClientConfig(""))
	if want := []string{"from-kubectl"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
	if current != "from-kubectl" {
		t.Errorf("current = %q, want %q", current, "from-kubectl")
	}
}
