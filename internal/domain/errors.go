package domain

import "errors"

var (
	ErrSlotNotFound       = errors.New("slot not found")
	ErrItemNotFound       = errors.New("item not found")
	ErrMissingCredential  = errors.New("missing catalog credential")
	ErrCredentialNotFound = errors.New("credential not found")
)
