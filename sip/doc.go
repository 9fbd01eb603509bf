// Package sip implements the SIP client transaction layer defined by RFC 3261 Section 17.1.
//
// A [ClientTransaction] drives a single outgoing request through its life cycle:
// it sends the request with a [ClientTransport], retransmits it over unreliable transports,
// times out, acknowledges non-2xx final responses to INVITE and reports every outcome
// to a [TransactionUser] as a [TransactionEvent].
//
// INVITE transactions move through calling, proceeding, completed and terminated states
// (timers A, B and D); non-INVITE transactions move through trying, proceeding,
// completed and terminated states (timers E, F and K).
// The state machines are pure functions; the transaction applies their actions
// under a per-transaction mutex.
//
// Transactions can be used standalone or registered in a [TransactionManager] that routes
// inbound responses, resolves the next hop and reclaims terminated transactions.
package sip

//go:generate go tool errtrace -w .
//go:generate go tool mockgen -typed -destination ../internal/testutil/sipmock/sipmock.go -package sipmock . ClientTransport,TransactionUser,DNSResolver
