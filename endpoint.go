// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import "fmt"

// NewEndpointFunc returns a [Func] that always returns the given "host:port" address.
//
// This is a convenience wrapper around [ConstFunc] for the common case of
// injecting a network endpoint into a pipeline.
func NewEndpointFunc(host string, port int) Func[Unit, string] {
	return ConstFunc(fmt.Sprintf("%s:%d", host, port))
}
