package auth

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alyssonw2/BD-AJ/diskstore"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func tempUserStore(t *testing.T, inMemory bool) *UserStore {
	path := ""
	if !inMemory {
		path = filepath.Join(t.TempDir(), "users.db")
	}
	ds, err := diskstore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	us, err := NewUserStore(ds)
	require.NoError(t, err)
	us.bcryptCost = bcrypt.MinCost
	return us
}

func TestRegisterAuthenticate(t *testing.T) {
	for _, inMemory := range []bool{true, false} {
		t.Run(fmt.Sprintf("inMemory=%v", inMemory), func(t *testing.T) {
			us := tempUserStore(t, inMemory)
			require.NoError(t, us.Register("gandalf", "mellon"))
			user, err := us.Authenticate("gandalf", "mellon")
			require.NoError(t, err)
			require.Equal(t, "gandalf", user.Username)
			require.NotEqual(t, []byte("mellon"), user.PasswordHash)
			// ---------------------------
			_, err = us.Authenticate("gandalf", "friend")
			require.ErrorIs(t, err, ErrInvalidCredentials)
			_, err = us.Authenticate("saruman", "mellon")
			require.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	for _, inMemory := range []bool{true, false} {
		t.Run(fmt.Sprintf("inMemory=%v", inMemory), func(t *testing.T) {
			us := tempUserStore(t, inMemory)
			require.NoError(t, us.Register("gandalf", "mellon"))
			err := us.Register("gandalf", "other")
			require.ErrorIs(t, err, ErrUserExists)
			// The original password still works
			_, err = us.Authenticate("gandalf", "mellon")
			require.NoError(t, err)
			count, err := us.Count()
			require.NoError(t, err)
			require.Equal(t, 1, count)
		})
	}
}

func TestRegisterConcurrentSameName(t *testing.T) {
	us := tempUserStore(t, true)
	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- us.Register("frodo", "ring")
		}()
	}
	wg.Wait()
	close(results)
	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrUserExists)
		}
	}
	require.Equal(t, 1, succeeded)
}

func TestUsersPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	ds, err := diskstore.Open(path)
	require.NoError(t, err)
	us, err := NewUserStore(ds)
	require.NoError(t, err)
	us.bcryptCost = bcrypt.MinCost
	require.NoError(t, us.Register("gandalf", "mellon"))
	require.NoError(t, ds.Close())
	// ---------------------------
	ds, err = diskstore.Open(path)
	require.NoError(t, err)
	defer ds.Close()
	us, err = NewUserStore(ds)
	require.NoError(t, err)
	_, err = us.Authenticate("gandalf", "mellon")
	require.NoError(t, err)
}

// ---------------------------

func TestTokenRoundTrip(t *testing.T) {
	ti, err := NewTokenIssuer(AuthConfig{TokenSecret: "secret"})
	require.NoError(t, err)
	require.Equal(t, time.Hour, ti.expiry)
	token, err := ti.Issue("gandalf")
	require.NoError(t, err)
	username, err := ti.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "gandalf", username)
	// Bearer prefix is accepted too
	username, err = ti.Verify("Bearer " + token)
	require.NoError(t, err)
	require.Equal(t, "gandalf", username)
}

func TestTokenExpiry(t *testing.T) {
	ti, err := NewTokenIssuer(AuthConfig{TokenSecret: "secret", TokenExpiry: 60})
	require.NoError(t, err)
	issuedAt := time.Now()
	ti.now = func() time.Time { return issuedAt }
	token, err := ti.Issue("gandalf")
	require.NoError(t, err)
	// ---------------------------
	ti.now = func() time.Time { return issuedAt.Add(30 * time.Second) }
	_, err = ti.Verify(token)
	require.NoError(t, err)
	ti.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = ti.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenInvalid(t *testing.T) {
	ti, err := NewTokenIssuer(AuthConfig{TokenSecret: "secret"})
	require.NoError(t, err)
	other, err := NewTokenIssuer(AuthConfig{TokenSecret: "another"})
	require.NoError(t, err)
	token, err := other.Issue("saruman")
	require.NoError(t, err)
	for _, tok := range []string{"", "Bearer ", "not-a-token", token} {
		_, err := ti.Verify(tok)
		require.ErrorIs(t, err, ErrInvalidToken, tok)
	}
}

func TestEphemeralSecret(t *testing.T) {
	a, err := NewTokenIssuer(AuthConfig{})
	require.NoError(t, err)
	b, err := NewTokenIssuer(AuthConfig{})
	require.NoError(t, err)
	require.Len(t, a.secret, 32)
	token, err := a.Issue("gandalf")
	require.NoError(t, err)
	_, err = b.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
