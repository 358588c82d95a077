package models

type User struct {
	Username     string `msgpack:"username"`
	PasswordHash []byte `msgpack:"passwordHash"`
}

type UserCredentials struct {
	Username string `json:"username" binding:"required,min=1,max=64"`
	Password string `json:"password" binding:"required,min=1,max=72"`
}
