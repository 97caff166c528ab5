package interfaces

import (
	"context"
	"time"

	"github.com/customeros/docingest/dto"
)

type ConnectParams struct {
	Server         string
	Port           int
	TLS            bool
	Username       string
	Password       string
	ConnectTimeout time.Duration
	AuthTimeout    time.Duration
	CommandTimeout time.Duration
}

type MailboxConnector interface {
	Open(ctx context.Context, params ConnectParams) (MailboxSession, error)
}

// MessageHandler receives the raw bytes of each fetched message and reports
// whether the message is settled. Only settled messages are flagged \Seen, so
// anything else is searched again on the next run. Returning an error stops
// the fetch loop.
type MessageHandler func(ctx context.Context, handle dto.MessageHandle, raw []byte) (settled bool, err error)

type MailboxSession interface {
	SelectInbox(ctx context.Context) error
	SearchUnseen(ctx context.Context) ([]dto.MessageHandle, error)
	FetchAndMarkSeen(ctx context.Context, handles []dto.MessageHandle, fn MessageHandler) error
	Close() error
}
