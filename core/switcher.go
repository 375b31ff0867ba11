package core

// Starter is anything that can be brought up.
type Starter interface {
	Start() error
}

// Stopper is anything that can be taken down again.
type Stopper interface {
	Stop() error
}

// Switcher can be switched on and off. The node and the discovery
// sources satisfy it.
type Switcher interface {
	Starter
	Stopper
}
