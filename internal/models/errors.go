package models

import "errors"

// Domain errors. Callers classify with errors.Is; the HTTP layer maps them
// to status codes.
var (
	ErrValidation            = errors.New("invalid input")
	ErrNotFound              = errors.New("room not found")
	ErrInvalidState          = errors.New("operation not allowed in current room state")
	ErrAlreadyMember         = errors.New("address is already a participant")
	ErrNotAMember            = errors.New("address is not a participant")
	ErrInsufficientMembers   = errors.New("a room needs at least two participants to start")
	ErrPayeeCannotContribute = errors.New("the round payee does not pay into their own round")
	ErrUnknownRound          = errors.New("unknown round")
	ErrRoundNotSettled       = errors.New("current round is not fully paid")
)
