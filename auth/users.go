package auth

import (
	"fmt"

	"github.com/alyssonw2/BD-AJ/diskstore"
	"github.com/alyssonw2/BD-AJ/models"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/bcrypt"
)

const usersBucket = "users"

// UserStore keeps one msgpack encoded user per username key. Uniqueness of
// usernames relies on the disk store serialising Write calls.
type UserStore struct {
	ds         diskstore.DiskStore
	bcryptCost int
}

func NewUserStore(ds diskstore.DiskStore) (*UserStore, error) {
	if err := ds.CreateBucketsIfNotExists([]string{usersBucket}); err != nil {
		return nil, fmt.Errorf("could not create users bucket: %w", err)
	}
	return &UserStore{ds: ds, bcryptCost: bcrypt.DefaultCost}, nil
}

func (us *UserStore) Register(username, password string) error {
	// Hashing is slow, keep it outside of the write transaction
	hash, err := bcrypt.GenerateFromPassword([]byte(password), us.bcryptCost)
	if err != nil {
		return fmt.Errorf("could not hash password: %w", err)
	}
	userBytes, err := msgpack.Marshal(models.User{Username: username, PasswordHash: hash})
	if err != nil {
		return fmt.Errorf("could not encode user: %w", err)
	}
	// ---------------------------
	err = us.ds.Write(usersBucket, func(b diskstore.Bucket) error {
		if b.Get([]byte(username)) != nil {
			return ErrUserExists
		}
		return b.Put([]byte(username), userBytes)
	})
	if err != nil {
		return fmt.Errorf("could not register %s: %w", username, err)
	}
	log.Debug().Str("username", username).Msg("Register")
	return nil
}

// Authenticate returns the user if the password matches. Unknown users and
// wrong passwords produce the same error.
func (us *UserStore) Authenticate(username, password string) (models.User, error) {
	var user models.User
	var userBytes []byte
	err := us.ds.Read(usersBucket, func(b diskstore.ReadOnlyBucket) error {
		userBytes = b.Get([]byte(username))
		return nil
	})
	if err != nil {
		return user, fmt.Errorf("could not read user %s: %w", username, err)
	}
	if userBytes == nil {
		return user, ErrInvalidCredentials
	}
	if err := msgpack.Unmarshal(userBytes, &user); err != nil {
		return user, fmt.Errorf("could not decode user %s: %w", username, err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (us *UserStore) Count() (int, error) {
	count := 0
	err := us.ds.Read(usersBucket, func(b diskstore.ReadOnlyBucket) error {
		return b.ForEach(func(k, v []byte) error {
			count++
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("could not count users: %w", err)
	}
	return count, nil
}
