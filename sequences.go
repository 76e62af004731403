// SPDX-License-Identifier: GPL-3.0-or-later

package prober

// NewEPPSequence assembles the canonical EPP dialogue: HELLO, LOGIN,
// CREATE, CHECK (expecting the domain to now exist), DELETE, CHECK
// (expecting the domain to be free again), LOGOUT. The token is
// persistent: its TLS session survives across these steps and across
// iterations.
func NewEPPSequence(cfg *Config, logger SLogger, name string) *Sequence {
	protocol := NewEPPProtocol(cfg, logger)
	manager := NewConnectionManager(cfg, logger)
	token := NewPersistentToken(cfg.EPPHost, cfg.DomainGenerator)

	step := func(stepName string, message EPPRequestKind) *Step {
		return &Step{
			Name:     stepName,
			Protocol: protocol,
			Message:  message,
			Duration: cfg.StepDuration,
			Manager:  manager,
		}
	}

	return &Sequence{
		Name:     name,
		Interval: cfg.SequenceInterval,
		Token:    token,
		Steps: []*Step{
			step("HELLO", EPPHello),
			step("LOGIN", EPPLogin),
			step("CREATE", EPPCreate),
			step("CHECK_EXISTS", EPPCheckExists),
			step("DELETE", EPPDelete),
			step("CHECK_NOT_EXISTS", EPPCheckNotExists),
			step("LOGOUT", EPPLogout),
		},
	}
}

// NewWebWHOISSequence assembles the single-step WebWHOIS dialogue: one
// GET, following redirects within the step per [Config.RedirectMaxChain].
// The token is transient: a fresh domain label
// and client-id seed are generated every iteration, and the token's
// host/scheme reset to the configured baseline at the start of each
// iteration (redirect hops within one GET step are not reset).
func NewWebWHOISSequence(cfg *Config, logger SLogger, name string) *Sequence {
	protocol := NewWebWHOISProtocol(cfg, logger)
	manager := NewConnectionManager(cfg, logger)
	token := NewTransientToken(cfg.WebWHOISHTTPHost, cfg.DomainGenerator)
	token.SetScheme("http")

	return &Sequence{
		Name:           name,
		Interval:       cfg.SequenceInterval,
		Token:          token,
		BaselineHost:   cfg.WebWHOISHTTPHost,
		BaselineScheme: "http",
		Steps: []*Step{
			{
				Name:     "GET",
				Protocol: protocol,
				Message:  nil,
				Duration: cfg.StepDuration,
				Manager:  manager,
			},
		},
	}
}
