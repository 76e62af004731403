// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import "github.com/bassosimone/errclass"

// ErrClassifier classifies errors into categorical strings for analysis.
//
// Implementations map errors to short, descriptive labels (e.g., "ETIMEDOUT",
// "ECONNRESET") that facilitate systematic analysis of network measurement results.
//
// [classifyConnectErr] further reduces these labels to an [OutcomeKind] (see
// outcome.go), so a faithful classifier is load-bearing for the probe's
// CONNECTION_FAILURE/TIMEOUT distinction, not just logging (certificate
// errors are recognized by their x509 type before the classifier is asked).
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
//
// This allows using simple functions as classifiers:
//
//	op.ErrClassifier = ErrClassifierFunc(errclass.New)
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

// Classify implements [ErrClassifier].
func (f ErrClassifierFunc) Classify(err error) string {
	return f(err)
}

// DefaultErrClassifier classifies errors using [errclass.New], mapping
// common OS and network-stack errors to categorical labels such as
// [errclass.ETIMEDOUT] and [errclass.ECONNREFUSED].
var DefaultErrClassifier = ErrClassifierFunc(errclass.New)
