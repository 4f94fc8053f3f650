// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import "errors"

// Every failure of the gateway state machines is one of these named
// conditions, so calling tooling can branch on failure kind. Replay
// conditions live in the ledger package (ledger.ErrAlreadyDelivered,
// ledger.ErrAlreadyExecuted) and pass through unwrapped.
var (
	// ErrUnsupportedAttribute reports an attribute whose selector the
	// transport does not recognize. Recoverable by omitting it.
	ErrUnsupportedAttribute = errors.New("unsupported attribute")

	// ErrUnregisteredRoute reports a chain with no registered remote
	// gateway. An administrator must register one before retrying.
	ErrUnregisteredRoute = errors.New("no remote gateway registered for chain")

	// ErrInvalidGateway reports delivery or execution attempted by an
	// entity that is not a trusted transport or remote gateway.
	ErrInvalidGateway = errors.New("invalid gateway")

	// ErrInvalidReceiver reports a passive-mode validation call from an
	// account other than the message's intended receiver.
	ErrInvalidReceiver = errors.New("invalid receiver")

	// ErrInvalidMessageKey reports a message key that matches no inbox
	// entry and no recomputable message content.
	ErrInvalidMessageKey = errors.New("invalid message key")

	// ErrReceiverExecution reports a receiver callback that failed or
	// returned the wrong confirmation value. The message stays
	// non-Executed and may be retried by a later delivery.
	ErrReceiverExecution = errors.New("receiver execution failed")

	// ErrCannotFinalize reports a finalize call for a message that is
	// absent, already finalized, or needs no finalize step.
	ErrCannotFinalize = errors.New("cannot finalize message")

	// ErrCannotRetry reports a retry for a message that was never
	// finalized.
	ErrCannotRetry = errors.New("cannot retry message")

	// ErrUnauthorized reports an administrator-gated mutation attempted
	// by a non-administrator account.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValueNotSupported reports a native value transfer on a
	// transport that cannot carry one.
	ErrValueNotSupported = errors.New("native value not supported")
)
