package domain

import "errors"

var (
	// ErrBankNotFound indicates no question bank exists for the requested language.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrEmptyBank indicates a bank loaded with zero questions.
	ErrEmptyBank = errors.New("question bank is empty")
	// ErrUnknownLanguage is returned for language codes outside the supported set.
	ErrUnknownLanguage = errors.New("unknown language")
	// ErrNoSession is returned when an operation arrives before a session was initialized.
	ErrNoSession = errors.New("quiz session not initialized")
)
