package netsuite

// Test interno: inyecta reloj y nonce fijos para firmar de forma determinista.

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinoteca-hk/cellar-sync/pkg/config"
)

func fixedSigner() *TBASigner {
	s := NewTBASigner(config.NetSuiteConfig{
		AccountID:      "1234567",
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		TokenKey:       "tk",
		TokenSecret:    "ts",
	})
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	s.nonce = func() string { return "abcdef0123456789" }
	return s
}

func TestSign_HeaderCompletoYDeterminista(t *testing.T) {
	s := fixedSigner()

	h1, err := s.Sign("GET", "https://1234567.suitetalk.api.netsuite.com/services/rest/record/v1/inventoryitem?limit=5")
	require.NoError(t, err)
	h2, err := s.Sign("GET", "https://1234567.suitetalk.api.netsuite.com/services/rest/record/v1/inventoryitem?limit=5")
	require.NoError(t, err)

	// Con reloj y nonce fijos la firma es reproducible.
	assert.Equal(t, h1, h2)
	assert.True(t, strings.HasPrefix(h1, `OAuth realm="1234567"`))
	for _, frag := range []string{
		`oauth_consumer_key="ck"`,
		`oauth_token="tk"`,
		`oauth_signature_method="HMAC-SHA256"`,
		`oauth_timestamp="1700000000"`,
		`oauth_nonce="abcdef0123456789"`,
		`oauth_version="1.0"`,
		`oauth_signature="`,
	} {
		assert.Contains(t, h1, frag)
	}
}

func TestSign_LaFirmaDependeDelMetodoYLaQuery(t *testing.T) {
	s := fixedSigner()

	get, err := s.Sign("GET", "https://erp.example/api?limit=5")
	require.NoError(t, err)
	post, err := s.Sign("POST", "https://erp.example/api?limit=5")
	require.NoError(t, err)
	otherQuery, err := s.Sign("GET", "https://erp.example/api?limit=6")
	require.NoError(t, err)

	assert.NotEqual(t, get, post)
	assert.NotEqual(t, get, otherQuery)
}

func TestSign_CredencialesIncompletasFallan(t *testing.T) {
	s := NewTBASigner(config.NetSuiteConfig{})
	_, err := s.Sign("GET", "https://erp.example/api")
	assert.Error(t, err)
}

func TestPercentEncode_RFC3986(t *testing.T) {
	assert.Equal(t, "a%20b", percentEncode("a b"))
	assert.Equal(t, "~x", percentEncode("~x"))
	assert.Equal(t, "a%2Bb", percentEncode("a+b"))
	assert.Equal(t, "caf%C3%A9", percentEncode("café"))
}
