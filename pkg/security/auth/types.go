package auth

import (
	"context"
	"time"
)

// FlagAdmin marks a server administrator in a user's flag bitmask.
const FlagAdmin int64 = 1 << 0

// IsAdmin reports whether flags carry the administrator bit.
func IsAdmin(flags int64) bool {
	return flags&FlagAdmin != 0
}

// Principal is an authenticated caller.
type Principal struct {
	UserID int64

	// SessionID and TokenID are set for human sessions and empty for bots.
	SessionID string
	TokenID   string

	Bot bool
}

// SessionChecker answers whether an access token is still live: not
// revoked, not expired and belonging to an existing session.
type SessionChecker interface {
	IsAccessTokenActive(ctx context.Context, userID int64, sessionID, tokenID string, now time.Time) (bool, error)
}

// BotLookup resolves a bot token hash to the bot's user ID.
type BotLookup interface {
	BotUserIDByTokenHash(ctx context.Context, tokenHash string) (userID int64, found bool, err error)
}

// UserLookup returns a user's flag bitmask.
type UserLookup interface {
	UserFlags(ctx context.Context, userID int64) (flags int64, found bool, err error)
}
