package firebase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatdash/pkg/errors"
)

func TestDevIdentityProvider(t *testing.T) {
	p := NewDevIdentityProvider()
	ctx := context.Background()

	identity, err := p.VerifyToken(ctx, "dev:42:ann@example.com:Ann Lee")
	require.NoError(t, err)
	assert.Equal(t, "42", identity.UID)
	assert.Equal(t, "ann@example.com", identity.Email)
	assert.Equal(t, "Ann Lee", identity.DisplayName)
	assert.Equal(t, "dev", identity.Provider)

	identity, err = p.GetUser(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "7@dev.local", identity.Email)

	for _, token := range []string{"", "dev:", "Bearer xyz"} {
		_, err := p.VerifyToken(ctx, token)
		assert.True(t, errors.Is(err, errors.CodeUnauthorized), token)
	}
}
