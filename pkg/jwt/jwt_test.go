package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/pkg/jwt"
)

func TestGenerateParse(t *testing.T) {
	token, err := jwt.Generate("secreto", "pos-ledger", "u1", "tienda-1", jwt.RoleCashier, time.Hour)
	require.NoError(t, err)

	claims, err := jwt.Parse("secreto", "pos-ledger", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "tienda-1", claims.StoreID)
	assert.True(t, claims.CanWrite())
}

func TestParse_Rechazos(t *testing.T) {
	valido, err := jwt.Generate("secreto", "pos-ledger", "u1", "t1", jwt.RoleAdmin, time.Hour)
	require.NoError(t, err)
	expirado, err := jwt.Generate("secreto", "pos-ledger", "u1", "t1", jwt.RoleAdmin, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		issuer string
		token  string
	}{
		{"firma incorrecta", "otro", "pos-ledger", valido},
		{"emisor distinto", "secreto", "otro-emisor", valido},
		{"expirado", "secreto", "pos-ledger", expirado},
		{"basura", "secreto", "", "no-es-un-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jwt.Parse(tt.secret, tt.issuer, tt.token)
			assert.Error(t, err)
		})
	}
}

func TestSecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "", "u1", "", jwt.RoleAdmin, time.Hour)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
	_, err = jwt.Parse("", "", "x")
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}

func TestCanWrite_RolDesconocido(t *testing.T) {
	c := &jwt.Claims{Role: "auditor"}
	assert.False(t, c.CanWrite())
}
