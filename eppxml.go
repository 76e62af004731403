// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import (
	"fmt"
	"strings"
)

// EPPRequestKind identifies which hand-written template [Step.Message]
// selects for an EPP step. Parsing/templating via encoding/xml or
// text/template is deliberately avoided here: the set of commands is
// small and fixed, and hand-written builders keep the exact wire bytes
// visible and auditable.
type EPPRequestKind int

const (
	// EPPHello requests the server's greeting. Does not carry a clTRID and
	// does not transition the session out of awaitingGreeting.
	EPPHello EPPRequestKind = iota

	// EPPLogin authenticates using [Config.EPPUserID]/[Config.EPPPassword].
	EPPLogin

	// EPPLogout ends the session.
	EPPLogout

	// EPPCheckExists queries availability of the token's current domain,
	// expecting the registry to report it as taken (avail="false").
	EPPCheckExists

	// EPPCheckNotExists queries availability of the token's current domain,
	// expecting the registry to report it as free (avail="true").
	EPPCheckNotExists

	// EPPCreate registers the token's current domain.
	EPPCreate

	// EPPDelete removes the token's current domain.
	EPPDelete
)

// domainName returns the fully qualified probe domain for token under cfg.
func domainName(cfg *Config, token *Token) string {
	return token.Domain() + "." + cfg.EPPTLD
}

// nextClTRID derives this command's clTRID from the token's per-attempt
// client-id seed and a command-specific suffix, so each command type within
// one sequence iteration carries a distinct, traceable transaction id (both
// check steps share the "-check" suffix).
func nextClTRID(token *Token, command string) string {
	return token.ClientID() + "-" + command
}

// escapeXMLText escapes &, < and > in s; quotes are left as they are. The builders
// below only ever interpolate EPP identifiers (domain labels, credentials)
// into text nodes, never into attribute values, so this minimal escaper is
// sufficient.
func escapeXMLText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// buildHello returns the EPP <hello/> request. There is no clTRID: a hello
// is answered with a greeting, not a command response.
func buildHello() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<epp xmlns="urn:ietf:params:xml:ns:epp-1.0"><hello/></epp>`)
}

// buildLogin returns the EPP <login/> request authenticating with
// cfg.EPPUserID/cfg.EPPPassword, and the clTRID it expects echoed back.
func buildLogin(cfg *Config, token *Token) ([]byte, string) {
	clTRID := nextClTRID(token, "login")
	payload := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">`+
		`<command>`+
		`<login>`+
		`<clID>%s</clID>`+
		`<pw>%s</pw>`+
		`<options><version>1.0</version><lang>en</lang></options>`+
		`<svcs><objURI>urn:ietf:params:xml:ns:domain-1.0</objURI></svcs>`+
		`</login>`+
		`<clTRID>%s</clTRID>`+
		`</command>`+
		`</epp>`,
		escapeXMLText(cfg.EPPUserID), escapeXMLText(cfg.EPPPassword), clTRID)
	return []byte(payload), clTRID
}

// buildLogout returns the EPP <logout/> request and its expected clTRID.
func buildLogout(token *Token) ([]byte, string) {
	clTRID := nextClTRID(token, "logout")
	payload := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">`+
		`<command><logout/><clTRID>%s</clTRID></command>`+
		`</epp>`,
		clTRID)
	return []byte(payload), clTRID
}

// buildCheck returns the EPP domain <check/> request for the token's
// current domain and its expected clTRID.
func buildCheck(cfg *Config, token *Token) ([]byte, string) {
	clTRID := nextClTRID(token, "check")
	payload := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">`+
		`<command>`+
		`<check>`+
		`<domain:check xmlns:domain="urn:ietf:params:xml:ns:domain-1.0">`+
		`<domain:name>%s</domain:name>`+
		`</domain:check>`+
		`</check>`+
		`<clTRID>%s</clTRID>`+
		`</command>`+
		`</epp>`,
		escapeXMLText(domainName(cfg, token)), clTRID)
	return []byte(payload), clTRID
}

// buildCreate returns the EPP domain <create/> request for the token's
// current domain and its expected clTRID. The request carries the domain
// name and a one-year registration period; nameserver and contact objects
// are not included, as the probe only exercises the create/check/delete
// dialogue.
func buildCreate(cfg *Config, token *Token) ([]byte, string) {
	clTRID := nextClTRID(token, "create")
	payload := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">`+
		`<command>`+
		`<create>`+
		`<domain:create xmlns:domain="urn:ietf:params:xml:ns:domain-1.0">`+
		`<domain:name>%s</domain:name>`+
		`<domain:period unit="y">1</domain:period>`+
		`</domain:create>`+
		`</create>`+
		`<clTRID>%s</clTRID>`+
		`</command>`+
		`</epp>`,
		escapeXMLText(domainName(cfg, token)), clTRID)
	return []byte(payload), clTRID
}

// buildDelete returns the EPP domain <delete/> request for the token's
// current domain and its expected clTRID.
func buildDelete(cfg *Config, token *Token) ([]byte, string) {
	clTRID := nextClTRID(token, "delete")
	payload := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<epp xmlns="urn:ietf:params:xml:ns:epp-1.0">`+
		`<command>`+
		`<delete>`+
		`<domain:delete xmlns:domain="urn:ietf:params:xml:ns:domain-1.0">`+
		`<domain:name>%s</domain:name>`+
		`</domain:delete>`+
		`</delete>`+
		`<clTRID>%s</clTRID>`+
		`</command>`+
		`</epp>`,
		escapeXMLText(domainName(cfg, token)), clTRID)
	return []byte(payload), clTRID
}
