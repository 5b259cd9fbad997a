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
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/kubectl/pkg/util/templates"

	"gitlab.com/davidxarnold/kubectl-node/pkg/cloud"
	"gitlab.com/davidxarnold/kubectl-node/pkg/kubectl"
	"gitlab.com/davidxarnold/kubectl-node/pkg/provider"
	"gitlab.com/davidxarnold/kubectl-node/pkg/util"
	v "gitlab.com/davidxarnold/kubectl-node/version"
)

const (
	envPrefix       = "KUBECTL_NODE"
	noNodesMessage  = "No nodes found in the cluster."
	noContextsFound = "No contexts found. Make sure kubectl is configured."
)

var (
	cfgFile string

	nodeLong = templates.LongDesc(`
		Display cluster nodes together with the cloud provider details of
		each node: instance id, zone, autoscaling group, node pool and more.

		The provider of every node is detected from its labels (AWS, Azure,
		GCP, or generic) and the table only carries the provider columns of
		the providers actually present.`)

	nodeExample = templates.Examples(`
		# List the nodes of the current context
		kubectl node

		# Refresh every 5 seconds
		kubectl node --watch --watch-interval 5

		# Use another context and include the provider of each node
		kubectl node --context prod -o wide

		# Query the cloud APIs for capacity type and node group
		kubectl node --cloud-info`)
)

// nodeClient is the subset of kubectl.Client the command needs.
type nodeClient interface {
	GetNodes(ctx context.Context) (*v1.NodeList, error)
	CurrentContext(ctx context.Context) string
	ListContexts(ctx context.Context, cc clientcmd.ClientConfig) ([]string, string)
}

// NodeOptions holds the state of one kubectl-node invocation.
type NodeOptions struct {
	configFlags *genericclioptions.ConfigFlags
	genericclioptions.IOStreams

	watch         bool
	watchInterval int
	listContexts  bool

	output    OutputMode
	cloudInfo bool
	noHeaders bool
	interval  time.Duration

	client   nodeClient
	metadata func(ctx context.Context, providerID string) (*cloud.Metadata, error)
	now      func() time.Time
}

// NewNodeOptions provides an instance of NodeOptions with default values.
func NewNodeOptions(streams genericclioptions.IOStreams) *NodeOptions {
	kubeconfig, kubeContext := "", ""
	return &NodeOptions{
		// only --kubeconfig and --context are forwarded to kubectl
		configFlags: &genericclioptions.ConfigFlags{
			KubeConfig: &kubeconfig,
			Context:    &kubeContext,
		},
		IOStreams: streams,
		metadata:  cloud.NodeMetadata,
		now:       time.Now,
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("unable to find home directory: %w", err)
		}

		// Search config in home directory with name ".kubectl-node" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".kubectl-node")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debugln("Using config file:", viper.ConfigFileUsed())
	}
	return nil
}

// NewNodeCmd provides a cobra command
func NewNodeCmd(streams genericclioptions.IOStreams) *cobra.Command {
	return newNodeCmd(NewNodeOptions(streams))
}

func newNodeCmd(o *NodeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kubectl-node",
		Short:         "Show cluster nodes with cloud provider details.",
		Long:          nodeLong,
		Example:       nodeExample,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			return util.SetupLogger(o.ErrOut)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			return o.Run(cmd.Context())
		},
	}

	cmd.Version = v.Version
	cmd.SetVersionTemplate("kubectl-node-cloud {{.Version}}\n")
	cmd.SetOut(o.Out)
	cmd.SetErr(o.ErrOut)

	cmd.Flags().BoolVarP(&o.watch, "watch", "w", false,
		"Watch nodes and refresh the display periodically")
	cmd.Flags().IntVar(&o.watchInterval, "watch-interval", 2,
		"Refresh interval for watch mode, in seconds")
	cmd.Flags().BoolVar(&o.listContexts, "list-contexts", false,
		"List available kubectl contexts and exit")
	cmd.Flags().StringP("output", "o", string(OutputTxt),
		"Output format. One of: "+outputModeList())
	cmd.Flags().StringP("selector", "l", "",
		"Selector (label query) to filter on, supports '=', '==', and '!='.(e.g. -l key1=value1,key2=value2)")
	cmd.Flags().Bool("cloud-info", false,
		"Query the cloud provider API for capacity type and node group")
	cmd.Flags().String("kubectl", kubectl.DefaultBinary,
		"Path to the kubectl binary")
	cmd.Flags().Bool("no-headers", false,
		"Don't print headers")
	cmd.Flags().BoolP("verbose", "v", false,
		"Enable debug logging")
	cmd.Flags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.kubectl-node.yaml)")

	o.configFlags.AddFlags(cmd.Flags())

	_ = viper.BindPFlags(cmd.Flags())

	return cmd
}

// Complete fills in the options from flags, environment and config file.
func (o *NodeOptions) Complete() (err error) {
	if o.output, err = ParseOutputMode(viper.GetString("output")); err != nil {
		return err
	}
	o.watchInterval = viper.GetInt("watch-interval")
	o.interval = time.Duration(o.watchInterval) * time.Second
	o.cloudInfo = viper.GetBool("cloud-info")
	o.noHeaders = viper.GetBool("no-headers")

	if o.client == nil {
		o.client = &kubectl.Client{
			Binary:     viper.GetString("kubectl"),
			Kubeconfig: *o.configFlags.KubeConfig,
			Context:    *o.configFlags.Context,
			Selector:   viper.GetString("selector"),
		}
	}
	return nil
}

// Validate rejects option combinations that cannot run.
func (o *NodeOptions) Validate() error {
	if o.watchInterval <= 0 {
		return fmt.Errorf("--watch-interval must be greater than 0, got %d", o.watchInterval)
	}
	if sel := viper.GetString("selector"); sel != "" {
		if _, err := labels.Parse(sel); err != nil {
			return fmt.Errorf("invalid selector %q: %w", sel, err)
		}
	}
	return nil
}

// Run lists contexts, watches, or prints the node table once.
func (o *NodeOptions) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch {
	case o.listContexts:
		return o.printContexts(ctx)
	case o.watch:
		return o.runWatch(ctx)
	default:
		return o.runOnce(ctx)
	}
}

func (o *NodeOptions) runOnce(ctx context.Context) error {
	t, err := o.nodeTable(ctx)
	if err != nil {
		return err
	}
	if o.output.Structured() {
		return render(o.Out, t, o.output, o.noHeaders)
	}

	fmt.Fprintf(o.Out, "Context: %s\n\n", o.client.CurrentContext(ctx))
	if len(t.Rows) == 0 {
		fmt.Fprintln(o.Out, noNodesMessage)
		return nil
	}
	return render(o.Out, t, o.output, o.noHeaders)
}

// nodeTable fetches the nodes and projects them, with the cloud-info
// columns appended when requested.
func (o *NodeOptions) nodeTable(ctx context.Context) (*provider.Table, error) {
	nodes, err := o.client.GetNodes(ctx)
	if err != nil {
		return nil, err
	}

	t := provider.Project(nodes.Items, o.now())
	if o.cloudInfo {
		o.addCloudInfo(ctx, &t, nodes.Items)
	}
	return &t, nil
}

func (o *NodeOptions) printContexts(ctx context.Context) error {
	names, current := o.client.ListContexts(ctx, o.configFlags.ToRawKubeConfigLoader())
	if len(names) == 0 {
		fmt.Fprintln(o.Out, noContextsFound)
		return nil
	}

	fmt.Fprintln(o.Out, "Available contexts:")
	for _, name := range names {
		marker := "  "
		if name == current {
			marker = " *"
		}
		fmt.Fprintf(o.Out, "%s %s\n", marker, name)
	}
	return nil
}

// ReportError writes err the way kubectl-node reports failures, including
// the kubectl stderr when the failure came from kubectl.
func ReportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	var ce *kubectl.CommandError
	if errors.As(err, &ce) && ce.Stderr != "" {
		fmt.Fprintf(w, "kubectl stderr: %s\n", ce.Stderr)
	}
}
