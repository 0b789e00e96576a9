package plansfeatures

import (
	"context"
	"errors"
	"strings"

	"zoo-keeper/internal/ports/capabilities"
)

// Resolver implementa capabilities.CapabilitiesResolver sobre plans-features.
type Resolver struct {
	client   *Client
	allowAll bool
}

// NewResolver crea un resolver. Con allowAll (ALLOW_ALL_CAPABILITIES=true)
// todo devuelve true sin llamar a upstream: solo para dev.
func NewResolver(client *Client, allowAll bool) *Resolver {
	return &Resolver{
		client:   client,
		allowAll: allowAll,
	}
}

// HasFeature responde si el usuario tiene la capability pedida.
func (r *Resolver) HasFeature(ctx context.Context, in capabilities.CapabilityCheck) (bool, error) {
	feature := strings.TrimSpace(in.Feature)
	if feature == "" {
		return false, errors.New("capability required")
	}
	if r == nil {
		return false, ErrPlansNotConfigured
	}
	if r.allowAll {
		return true, nil
	}
	if r.client == nil || !r.client.IsConfigured() {
		// Preferimos fallar explícito en vez de permitir sin control.
		return false, ErrPlansNotConfigured
	}

	resp, err := r.client.GetCapabilities(ctx, in.UserID)
	if err != nil {
		return false, err
	}
	return resp.Capabilities[feature], nil
}
