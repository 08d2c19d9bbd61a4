package token

import "errors"

var (
	ErrNoCredentials = errors.New("no username/password or refresh token available")
	ErrNoAccessToken = errors.New("no access token held by session")
)
