package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/customeros/docingest/interfaces"
)

// imapClient is the subset of the go-imap client used by a session.
type imapClient interface {
	Login(username, password string) error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	UidSearch(criteria *imap.SearchCriteria) ([]uint32, error)
	UidFetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	Logout() error
	Terminate() error
	SetTimeout(timeout time.Duration)
}

type dialFunc func(ctx context.Context, params interfaces.ConnectParams) (imapClient, error)

type goImapClient struct {
	*client.Client
}

func (c *goImapClient) SetTimeout(timeout time.Duration) {
	c.Timeout = timeout
}

func serverAddress(params interfaces.ConnectParams) string {
	return fmt.Sprintf("%s:%d", params.Server, params.Port)
}

func dialServer(ctx context.Context, params interfaces.ConnectParams) (imapClient, error) {
	dialer := &net.Dialer{
		Timeout:   params.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}

	var (
		c   *client.Client
		err error
	)
	if params.TLS {
		c, err = client.DialWithDialerTLS(dialer, serverAddress(params), &tls.Config{
			ServerName: params.Server,
			MinVersion: tls.VersionTLS12,
		})
	} else {
		c, err = client.DialWithDialer(dialer, serverAddress(params))
	}
	if err != nil {
		return nil, err
	}
	return &goImapClient{Client: c}, nil
}
