package pkg

import "errors"

var (
	// File errors 🖼️
	ErrIncomplete         = errors.New("❌ image data incomplete")
	ErrVerificationFailed = errors.New("❌ verification failed")
)
