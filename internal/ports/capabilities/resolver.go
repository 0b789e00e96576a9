package capabilities

import "context"

// FeatureStaff es la capability que convierte a un usuario en staff del zoo.
const FeatureStaff = "zoo:staff"

type CapabilityCheck struct {
	UserID  string
	Feature string
}

type CapabilitiesResolver interface {
	HasFeature(ctx context.Context, in CapabilityCheck) (bool, error)
}
