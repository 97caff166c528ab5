package imap

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"github.com/customeros/docingest/interfaces"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/tracing"
	"github.com/customeros/docingest/internal/utils"
)

const DefaultLogoutTimeout = 5 * time.Second

type Connector struct {
	log           logger.Logger
	dial          dialFunc
	logoutTimeout time.Duration
}

func NewConnector(log logger.Logger) *Connector {
	return &Connector{
		log:           log,
		dial:          dialServer,
		logoutTimeout: DefaultLogoutTimeout,
	}
}

// Open dials and authenticates. The returned session is Ready and is
// terminated as soon as ctx is done.
func (c *Connector) Open(ctx context.Context, params interfaces.ConnectParams) (interfaces.MailboxSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Connector.Open")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("server", params.Server)
	span.SetTag("port", params.Port)
	span.SetTag("tls", params.TLS)

	s := newSession(c.log.With(
		zap.String("mailbox_configuration_id", utils.GetConfigurationFromContext(ctx)),
		zap.String("server", params.Server),
	), c.logoutTimeout)

	if err := s.transition(StateConnecting); err != nil {
		return nil, err
	}

	conn, err := c.dial(ctx, params)
	if err != nil {
		connErr := ingesterrors.Connection(serverAddress(params), err)
		if ctx.Err() != nil {
			connErr = ingesterrors.Timeout(ctx.Err())
		}
		s.fail()
		s.Close()
		tracing.TraceErr(span, connErr)
		return nil, connErr
	}
	s.client = conn

	conn.SetTimeout(params.AuthTimeout)
	if err := conn.Login(params.Username, params.Password); err != nil {
		authErr := ingesterrors.Auth(params.Username, err)
		if ctx.Err() != nil {
			authErr = ingesterrors.Timeout(ctx.Err())
		}
		s.fail()
		s.Close()
		tracing.TraceErr(span, authErr)
		return nil, authErr
	}
	conn.SetTimeout(params.CommandTimeout)

	if err := s.transition(StateReady); err != nil {
		s.Close()
		return nil, err
	}
	s.watch(ctx)

	s.log.Infof("Connected to %s as %s", serverAddress(params), params.Username)
	return s, nil
}
