package game

import "errors"

// Error text doubles as the user-facing ack message, so it reads like a
// sentence fragment rather than a Go-style lowercase error.
var (
	ErrRoomNotFound     = errors.New("Room not found")
	ErrNotInRoom        = errors.New("Join a room first")
	ErrInvalidName      = errors.New("Enter a player name first")
	ErrInvalidSettings  = errors.New("Round time must be between 20 and 180 seconds")
	ErrRoundInProgress  = errors.New("Round already in progress. Wait for the next round.")
	ErrNotHost          = errors.New("Only the host can do that")
	ErrNotEnoughPlayers = errors.New("At least 2 players are required")
	ErrNoActiveRound    = errors.New("No active round")
	ErrAlreadyStopped   = errors.New("STOP already called")
)
