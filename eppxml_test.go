// SPDX-License-Identifier: GPL-3.0-or-later

package prober

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestToken(t *testing.T) *Token {
	t.Helper()
	token := NewPersistentToken("epp.example.com", DomainGeneratorFunc(func() string { return "probe123" }))
	token.NewAttemptIdentity()
	return token
}

// buildHello produces a well-formed document carrying no clTRID.
func TestBuildHello(t *testing.T) {
	payload := buildHello()

	var doc eppResponseDoc
	require.NoError(t, xml.Unmarshal(payload, &doc))
	assert.Contains(t, string(payload), "<hello/>")
}

// buildLogin embeds the configured credentials and a unique clTRID.
func TestBuildLogin(t *testing.T) {
	cfg := NewConfig()
	cfg.EPPUserID = "user&1"
	cfg.EPPPassword = "p<>ss"
	token := newTestToken(t)

	payload, clTRID := buildLogin(cfg, token)

	require.NotEmpty(t, clTRID)
	assert.Contains(t, string(payload), "<clID>user&amp;1</clID>")
	assert.Contains(t, string(payload), "<pw>p&lt;&gt;ss</pw>")
	assert.Contains(t, string(payload), clTRID)
}

// buildLogout, buildCheck, buildCreate, buildDelete each produce a distinct
// clTRID derived from the same token, and a domain name that combines the
// generated label with the configured TLD.
func TestBuildCommandsDistinctClTRID(t *testing.T) {
	cfg := NewConfig()
	cfg.EPPTLD = "example"
	token := newTestToken(t)

	_, logoutID := buildLogout(token)
	_, checkID := buildCheck(cfg, token)
	createPayload, createID := buildCreate(cfg, token)
	_, deleteID := buildDelete(cfg, token)

	ids := []string{logoutID, checkID, createID, deleteID}
	seen := map[string]bool{}
	for _, id := range ids {
		require.NotEmpty(t, id)
		assert.False(t, seen[id], "clTRID %q must be unique across commands", id)
		seen[id] = true
	}
	assert.Contains(t, string(createPayload), "probe123.example")
}

// Hand-written builders produce parseable XML for every command kind.
func TestBuildersProduceWellFormedXML(t *testing.T) {
	cfg := NewConfig()
	cfg.EPPTLD = "example"
	token := newTestToken(t)

	payloads := [][]byte{
		buildHello(),
	}
	for _, build := range []func() ([]byte, string){
		func() ([]byte, string) { return buildLogin(cfg, token) },
		func() ([]byte, string) { return buildLogout(token) },
		func() ([]byte, string) { return buildCheck(cfg, token) },
		func() ([]byte, string) { return buildCreate(cfg, token) },
		func() ([]byte, string) { return buildDelete(cfg, token) },
	} {
		payload, _ := build()
		payloads = append(payloads, payload)
	}

	for _, payload := range payloads {
		var doc eppResponseDoc
		require.NoError(t, xml.Unmarshal(payload, &doc))
		assert.True(t, strings.HasPrefix(string(payload), "<?xml"))
	}
}
