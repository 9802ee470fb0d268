// SPDX-License-Identifier: MIT
/*
Package transport publishes tuning results to optional external consumers.
Implementations must be thread-safe and must never block the analysis
loop: a slow or absent consumer drops payloads instead of back-pressuring
the pipeline.
*/
package transport

// Transport defines a generic interface for sending processed results.
type Transport interface {
	Send(data any) error
	Close() error
}

// Fanout broadcasts every payload to a set of transports. Send errors from
// individual transports are swallowed so one failing consumer cannot starve
// the others; Close returns the first error encountered.
type Fanout []Transport

// Send forwards data to every member transport.
func (f Fanout) Send(data any) error {
	for _, t := range f {
		_ = t.Send(data)
	}
	return nil
}

// Close closes every member transport.
func (f Fanout) Close() error {
	var firstErr error
	for _, t := range f {
		if err := t.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ Transport = (Fanout)(nil)
