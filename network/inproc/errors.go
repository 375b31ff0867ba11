package inproc

import "errors"

var (
	ErrNetworkClosed        = errors.New("network closed")
	ErrEmptyListenAddress   = errors.New("empty listen address")
	ErrNoUsableListenAddr   = errors.New("no usable listen address found")
	ErrLocalPIDNotSet       = errors.New("local peer id not set")
	ErrNilHub               = errors.New("nil hub")
	ErrNilRecord            = errors.New("nil peer record")
	ErrAllDialFailed        = errors.New("all dial failed")
	ErrDialToSelf           = errors.New("dial to self is not allowed")
	ErrProtocolNotSupported = errors.New("protocol not supported by remote peer")
	ErrConnClosed           = errors.New("connection closed")
)
