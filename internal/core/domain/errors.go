package domain

import "errors"

var (
	ErrNoCredential     = errors.New("no access token supplied")
	ErrTokenExpired     = errors.New("access token expired")
	ErrTokenInvalid     = errors.New("invalid access token")
	ErrInvalidUserID    = errors.New("invalid user id")
	ErrUserNotFound     = errors.New("user not found")
	ErrClientClosed     = errors.New("client closed")
	ErrSendBufferFull   = errors.New("client send buffer full")
	ErrInvalidRoomID    = errors.New("invalid room id")
	ErrMalformedMessage = errors.New("malformed message")
)
