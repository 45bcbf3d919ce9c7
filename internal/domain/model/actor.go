package model

// Actor identifies who requests an operation.
type Actor struct {
	UserID int64
	Roles  []string
	// System actors act on behalf of the service itself and bypass capability checks.
	System bool
}

// SystemActor returns an actor used for transitions driven by other transitions.
func SystemActor(onBehalfOf int64) Actor {
	return Actor{UserID: onBehalfOf, System: true}
}
