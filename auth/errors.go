package auth

import "errors"

var ErrUserExists = errors.New("user exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid token")
