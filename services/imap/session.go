package imap

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/interfaces"
	ingesterrors "github.com/customeros/docingest/internal/errors"
	"github.com/customeros/docingest/internal/logger"
	"github.com/customeros/docingest/internal/tracing"
)

const InboxName = "INBOX"

var errEmptyBody = errors.New("server returned no message body")

// Session is a single-use IMAP session. It is not safe for concurrent use
// apart from Close, which may race with the context watcher.
type Session struct {
	mu            sync.Mutex
	state         SessionState
	client        imapClient
	uidValidity   uint32
	log           logger.Logger
	logoutTimeout time.Duration
	done          chan struct{}
	closeOnce     sync.Once
}

func newSession(log logger.Logger, logoutTimeout time.Duration) *Session {
	return &Session{
		state:         StateDisconnected,
		log:           log,
		logoutTimeout: logoutTimeout,
		done:          make(chan struct{}),
	}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) UIDValidity() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uidValidity
}

func (s *Session) transition(to SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !canTransition(s.state, to) {
		return errors.Wrapf(ingesterrors.ErrIllegalTransition, "%s -> %s", s.state, to)
	}
	s.state = to
	return nil
}

func (s *Session) fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if canTransition(s.state, StateError) {
		s.state = StateError
	}
}

// commandError marks the session failed and reports a timeout instead of the
// command error when the run context is already done.
func (s *Session) commandError(ctx context.Context, err error) error {
	s.fail()
	if ctx.Err() != nil {
		return ingesterrors.Timeout(ctx.Err())
	}
	return err
}

func (s *Session) watch(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			s.log.Warnf("Run context done, terminating IMAP connection: %v", ctx.Err())
			s.terminate()
		case <-s.done:
		}
	}()
}

func (s *Session) terminate() {
	s.mu.Lock()
	c := s.client
	s.mu.Unlock()
	if c != nil {
		if err := c.Terminate(); err != nil {
			s.log.Debugf("Terminate IMAP connection: %v", err)
		}
	}
}

func (s *Session) SelectInbox(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Session.SelectInbox")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if err := s.transition(StateSelected); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	status, err := s.client.Select(InboxName, false)
	if err != nil {
		err = s.commandError(ctx, ingesterrors.Select(InboxName, err))
		tracing.TraceErr(span, err)
		return err
	}

	s.mu.Lock()
	s.uidValidity = status.UidValidity
	s.mu.Unlock()
	span.SetTag("uidvalidity", status.UidValidity)
	return nil
}

// SearchUnseen returns the handles of all messages without \Seen, in UID order.
func (s *Session) SearchUnseen(ctx context.Context) ([]dto.MessageHandle, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Session.SearchUnseen")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if err := s.transition(StateSearching); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := s.client.UidSearch(criteria)
	if err != nil {
		err = s.commandError(ctx, ingesterrors.Search(err))
		tracing.TraceErr(span, err)
		return nil, err
	}

	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	uidValidity := s.UIDValidity()
	handles := make([]dto.MessageHandle, 0, len(uids))
	for _, uid := range uids {
		handles = append(handles, dto.MessageHandle{UID: uid, UIDValidity: uidValidity})
	}
	span.SetTag("result.count", len(handles))

	return handles, s.transition(StateSelected)
}

// FetchAndMarkSeen retrieves each message with BODY.PEEK[] and hands the bytes
// to fn. The message is flagged \Seen only when fn settled it. A fetch failure
// stops the loop before fn runs and leaves the message unseen.
func (s *Session) FetchAndMarkSeen(ctx context.Context, handles []dto.MessageHandle, fn interfaces.MessageHandler) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Session.FetchAndMarkSeen")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("handles", len(handles))

	if err := s.transition(StateFetching); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	for _, handle := range handles {
		if ctx.Err() != nil {
			err := s.commandError(ctx, ctx.Err())
			tracing.TraceErr(span, err)
			return err
		}

		raw, err := s.fetchOne(handle.UID)
		if err != nil {
			err = s.commandError(ctx, ingesterrors.Fetch(handle.MessageID(), err))
			tracing.TraceErr(span, err)
			return err
		}

		settled, err := fn(ctx, handle, raw)
		if err != nil {
			if transitionErr := s.transition(StateSelected); transitionErr != nil {
				s.log.Warnf("Session state after handler error: %v", transitionErr)
			}
			return err
		}
		if !settled {
			s.log.Debugf("Leaving message %s unseen", handle.MessageID())
			continue
		}

		if err := s.markSeen(handle.UID); err != nil {
			err = s.commandError(ctx, ingesterrors.Fetch(handle.MessageID(), errors.Wrap(err, "store \\Seen")))
			tracing.TraceErr(span, err)
			return err
		}
	}

	return s.transition(StateSelected)
}

func (s *Session) fetchOne(uid uint32) ([]byte, error) {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchUid}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.client.UidFetch(seqSet, items, messages)
	}()

	var raw []byte
	var readErr error
	for msg := range messages {
		if msg == nil || msg.Uid != uid || raw != nil {
			continue
		}
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		raw, readErr = io.ReadAll(body)
	}

	if err := <-done; err != nil {
		return nil, err
	}
	if readErr != nil {
		return nil, readErr
	}
	if raw == nil {
		return nil, errEmptyBody
	}
	return raw, nil
}

func (s *Session) markSeen(uid uint32) error {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)
	return s.client.UidStore(seqSet, imap.FormatFlagsOp(imap.AddFlags, true), []interface{}{imap.SeenFlag}, nil)
}

// Close logs out with a bounded wait and then drops the connection. It is
// safe to call more than once and from any state.
func (s *Session) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		defer close(s.done)

		if s.State() == StateDisconnected {
			return
		}
		if err := s.transition(StateClosing); err != nil {
			closeErr = err
			return
		}

		s.mu.Lock()
		c := s.client
		s.mu.Unlock()

		if c != nil {
			c.SetTimeout(s.logoutTimeout)
			logoutDone := make(chan error, 1)
			go func() {
				logoutDone <- c.Logout()
			}()
			select {
			case err := <-logoutDone:
				if err != nil {
					s.log.Debugf("IMAP logout: %v", err)
				}
			case <-time.After(s.logoutTimeout):
				s.log.Warn("IMAP logout timed out")
			}
			s.terminate()
		}

		if err := s.transition(StateDisconnected); err != nil {
			closeErr = err
		}
	})
	return closeErr
}
