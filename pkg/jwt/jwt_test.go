package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/vinoteca-hk/cellar-sync/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestGenerateYParse_IdaYVuelta(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "user-1", "admin", "cellar-sync-test", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, role, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "admin", role)
}

func TestParse_FirmaIncorrectaFalla(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "user-1", "viewer", "cellar-sync-test", 60)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro-secreto", tok)
	assert.Error(t, err)
}

func TestParse_TokenExpiradoFalla(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "user-1", "admin", "cellar-sync-test", -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacioFalla(t *testing.T) {
	_, err := pkgjwt.Generate("", "user-1", "admin", "iss", 60)
	assert.Error(t, err)
}
