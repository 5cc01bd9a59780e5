package service

import "errors"

// ErrClientClosed indicates the client has been closed.
var ErrClientClosed = errors.New("localytics: client is closed")

// ErrRetryBudgetExhausted indicates a provider call kept failing after
// every allowed attempt.
var ErrRetryBudgetExhausted = errors.New("retry budget exhausted")
