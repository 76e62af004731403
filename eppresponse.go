// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import "encoding/xml"

// eppResponseDoc is the minimal struct model of an EPP document, recognizing
// exactly what this probe needs: greeting presence, the result code, the
// clTRID/svTRID correlation pair, and a domain check's availability flag.
// Everything else in a real EPP response is ignored.
type eppResponseDoc struct {
	XMLName  xml.Name `xml:"epp"`
	Greeting *struct{} `xml:"greeting"`
	Response *struct {
		Result struct {
			Code int `xml:"code,attr"`
		} `xml:"result"`
		TrID struct {
			ClTRID string `xml:"clTRID"`
			SvTRID string `xml:"svTRID"`
		} `xml:"trID"`
		ResData struct {
			ChkData struct {
				Cd []struct {
					Name struct {
						Value string `xml:",chardata"`
						Avail bool   `xml:"avail,attr"`
					} `xml:"name"`
				} `xml:"cd"`
			} `xml:"chkData"`
		} `xml:"resData"`
	} `xml:"response"`
}

// parseEPPResponse decodes a frame's payload into an [eppResponseDoc].
func parseEPPResponse(data []byte) (*eppResponseDoc, error) {
	var doc eppResponseDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// isSuccessCode reports whether code is a 1xxx EPP success result code.
func isSuccessCode(code int) bool {
	return code >= 1000 && code < 2000
}

// ExpectedResponse is the sum type of response shapes an EPP step can
// require. Each variant's Matches predicate is pure: it inspects the
// parsed document and the clTRID the request carried (empty for
// [ExpectGreeting], which has no clTRID) and returns whether the exchange
// succeeded.
type ExpectedResponse int

const (
	// ExpectGreeting matches a <greeting/> document, with no clTRID check.
	ExpectGreeting ExpectedResponse = iota

	// ExpectSimpleSuccess matches any 1xxx result code addressed to the
	// request's clTRID.
	ExpectSimpleSuccess

	// ExpectFailure matches any non-1xxx result code addressed to the
	// request's clTRID. Used nowhere in the canonical sequences today, kept
	// for symmetry and for tests that exercise explicit failure handling.
	ExpectFailure

	// ExpectDomainExists matches a successful domain check response whose
	// first <cd> reports avail="false" (the domain is taken).
	ExpectDomainExists

	// ExpectDomainNotExists matches a successful domain check response
	// whose first <cd> reports avail="true" (the domain is free).
	ExpectDomainNotExists
)

// Matches reports whether doc satisfies r for the given wantClTRID. For
// every variant except ExpectGreeting (a greeting carries no clTRID), a doc
// that fails to correlate (mismatched clTRID) never matches: the caller
// (see eppprotocol.go) treats that as PROTOCOL_FAILURE rather than
// RESPONSE_FAILURE.
func (r ExpectedResponse) Matches(doc *eppResponseDoc, wantClTRID string) bool {
	switch r {
	case ExpectGreeting:
		return doc.Greeting != nil
	case ExpectSimpleSuccess:
		return doc.Response != nil &&
			doc.Response.TrID.ClTRID == wantClTRID &&
			isSuccessCode(doc.Response.Result.Code)
	case ExpectFailure:
		return doc.Response != nil &&
			doc.Response.TrID.ClTRID == wantClTRID &&
			!isSuccessCode(doc.Response.Result.Code)
	case ExpectDomainExists:
		return r.matchesCheck(doc, wantClTRID, false)
	case ExpectDomainNotExists:
		return r.matchesCheck(doc, wantClTRID, true)
	default:
		return false
	}
}

// matchesCheck implements the shared body of ExpectDomainExists/
// ExpectDomainNotExists: a successful, correlated check response whose
// first <cd><name avail="..."> equals wantAvail.
func (r ExpectedResponse) matchesCheck(doc *eppResponseDoc, wantClTRID string, wantAvail bool) bool {
	if doc.Response == nil || doc.Response.TrID.ClTRID != wantClTRID {
		return false
	}
	if !isSuccessCode(doc.Response.Result.Code) {
		return false
	}
	cds := doc.Response.ResData.ChkData.Cd
	if len(cds) == 0 {
		return false
	}
	return cds[0].Name.Avail == wantAvail
}

// correlated reports whether doc carries a response whose clTRID matches
// wantClTRID. Used by eppprotocol.go to distinguish a PROTOCOL_FAILURE
// (mismatched or missing correlation) from a RESPONSE_FAILURE (correlated
// but semantically unexpected).
func correlated(doc *eppResponseDoc, wantClTRID string) bool {
	return doc.Response != nil && doc.Response.TrID.ClTRID == wantClTRID
}
