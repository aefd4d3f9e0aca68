// Package models defines the core domain types for Gold Day rooms.
//
// A Circle is a rotating savings group ("gold day"): every participant pays
// a fixed contribution each round, and each round one participant (the
// payee) receives the whole pot. Rooms move through three states:
//
//	lobby -> active -> completed
//
// While a room is in the lobby, participants may join and the meeting day
// may change. Activation freezes the rotation order (join order, host
// first) and opens round 1. Each round tracks which non-payee participants
// have paid in; a round can only be settled, and the room advanced, once
// every non-payee contribution is recorded. After the last rotation slot
// the room is completed and becomes read-only.
//
// Amounts are decimal.Decimal throughout: contributions are denominated in
// crypto assets (USD₮, XAU₮) where float accumulation is not acceptable.
//
// All state transitions live on Circle itself so the rules hold no matter
// which caller drives them; the service layer adds persistence and
// concurrency control on top.
package models
