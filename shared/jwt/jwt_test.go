package jwt

import (
	"net/http"
	"testing"
	"time"

	"github.com/itchan-dev/forum/shared/domain"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := New("secret", time.Hour)

	token, err := svc.NewToken(domain.User{Id: 42, Admin: true})
	require.NoError(t, err)

	claims, err := svc.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserId(42), claims.UserId)
	assert.True(t, claims.Admin)
}

func TestDecodeToken_Rejects(t *testing.T) {
	svc := New("secret", time.Hour)

	t.Run("wrong key", func(t *testing.T) {
		token, err := New("other", time.Hour).NewToken(domain.User{Id: 1})
		require.NoError(t, err)

		_, err = svc.DecodeToken(token)
		assert.True(t, internal_errors.Is(err, http.StatusUnauthorized))
	})

	t.Run("expired", func(t *testing.T) {
		token, err := New("secret", -time.Minute).NewToken(domain.User{Id: 1})
		require.NoError(t, err)

		_, err = svc.DecodeToken(token)
		assert.True(t, internal_errors.Is(err, http.StatusUnauthorized))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.DecodeToken("not-a-token")
		assert.True(t, internal_errors.Is(err, http.StatusUnauthorized))
	})
}
