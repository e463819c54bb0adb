package port

import "token_transfer/internal/domain/entity"

// SessionProvider exposes the connected wallet session.
type SessionProvider interface {
	Session() entity.Session
}
