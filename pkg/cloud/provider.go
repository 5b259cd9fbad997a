// Package cloud looks up live instance metadata for nodes from their
// cloud provider's API.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gitlab.com/davidxarnold/kubectl-node/pkg/util"
)

// Provider returns metadata for one instance. id is the providerID with its
// scheme stripped, e.g. "us-west-2a/i-0123" for AWS.
type Provider interface {
	NodeMetadata(ctx context.Context, id string) (*Metadata, error)
}

// ProviderFactory creates a Provider per lookup.
type ProviderFactory func() Provider

// providerID schemes with a registered Provider.
const (
	ProviderAWS = "aws"
	ProviderGCE = "gce"
)

// ErrUnsupportedProvider is returned for providerIDs whose scheme has no
// registered Provider.
var ErrUnsupportedProvider = errors.New("unsupported cloud provider")

var schemes = map[string]ProviderFactory{}

// RegisterProvider makes factory serve providerIDs with the given scheme.
// Providers register themselves from init().
func RegisterProvider(scheme string, factory ProviderFactory) {
	schemes[scheme] = factory
}

// LookupProvider returns the Provider serving scheme, or nil.
func LookupProvider(scheme string) Provider {
	factory, ok := schemes[scheme]
	if !ok {
		return nil
	}
	return factory()
}

// NodeMetadata fetches metadata for the instance behind a node's providerID.
// Schemes without a Provider (azure, kind, bare metal) return an error
// wrapping ErrUnsupportedProvider.
func NodeMetadata(ctx context.Context, providerID string) (*Metadata, error) {
	scheme, parts := util.ParseProviderID(providerID)
	p := LookupProvider(scheme)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, scheme)
	}
	return p.NodeMetadata(ctx, strings.Trim(strings.Join(parts, "/"), "/"))
}
