// Package imapbox implements the mailbox session over IMAP.
package imapbox

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/mikey/mail-agent/internal/core"
	"go.uber.org/zap"
)

// Session is one IMAP connection for one account. It is opened per
// account per tick and never shared or reused across ticks.
type Session struct {
	email    string
	password string
	host     string
	port     int
	timeout  time.Duration
	logger   *zap.Logger

	clt      *imapclient.Client
	selected string
}

// Factory creates IMAP sessions
type Factory struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewFactory creates a session factory with the given dial timeout
func NewFactory(timeout time.Duration, logger *zap.Logger) *Factory {
	return &Factory{
		timeout: timeout,
		logger:  logger,
	}
}

// NewSession creates an unconnected session for one account
func (f *Factory) NewSession(email, password, host string, port int) core.MailboxSession {
	return &Session{
		email:    email,
		password: password,
		host:     host,
		port:     port,
		timeout:  f.timeout,
		logger:   f.logger.With(zap.String("account", email)),
	}
}

// Connect dials the server over TLS and logs in. The dial is bounded by
// the configured timeout; an unbounded connect would stall the whole tick.
func (s *Session) Connect(ctx context.Context) error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: s.host})
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	clt := imapclient.New(conn, nil)
	if err := clt.Login(s.email, s.password).Wait(); err != nil {
		clt.Close()
		return fmt.Errorf("login failed for %s: %w", s.email, err)
	}

	s.clt = clt
	s.selected = ""
	s.logger.Info("Connected to mailbox", zap.String("server", addr))
	return nil
}

// Close logs out and drops the connection
func (s *Session) Close() error {
	if s.clt == nil {
		return nil
	}
	err := s.clt.Logout().Wait()
	s.clt.Close()
	s.clt = nil
	s.selected = ""
	if err != nil {
		s.logger.Debug("Logout failed, connection dropped", zap.Error(err))
	}
	return nil
}

func (s *Session) selectFolder(folder string) error {
	if s.selected == folder {
		return nil
	}
	if _, err := s.clt.Select(folder, nil).Wait(); err != nil {
		return fmt.Errorf("failed to select %q: %w", folder, err)
	}
	s.selected = folder
	return nil
}

// FetchRecent returns the newest messages in the folder, read and unread,
// newest first, up to limit.
func (s *Session) FetchRecent(ctx context.Context, folder string, limit int) ([]core.Message, error) {
	data, err := s.clt.Select(folder, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to select %q: %w", folder, err)
	}
	s.selected = folder

	if data.NumMessages == 0 {
		return nil, nil
	}

	from := uint32(1)
	if limit > 0 && data.NumMessages > uint32(limit) {
		from = data.NumMessages - uint32(limit) + 1
	}
	var seq imap.SeqSet
	seq.AddRange(from, data.NumMessages)

	msgs, err := s.fetch(seq)
	if err != nil {
		return nil, err
	}
	reverseMessages(msgs)
	return msgs, nil
}

// FetchUnread returns unread messages in the folder, newest first, up to
// limit.
func (s *Session) FetchUnread(ctx context.Context, folder string, limit int) ([]core.Message, error) {
	if err := s.selectFolder(folder); err != nil {
		return nil, err
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}
	searchData, err := s.clt.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("unread search failed: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	// UIDs come back ascending; keep the newest ones
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	msgs, err := s.fetch(imap.UIDSetNum(uids...))
	if err != nil {
		return nil, err
	}
	reverseMessages(msgs)
	return msgs, nil
}

func (s *Session) fetch(numSet imap.NumSet) ([]core.Message, error) {
	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := s.clt.Fetch(numSet, &imap.FetchOptions{
		Envelope:    true,
		Flags:       true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})

	var msgs []core.Message
	for {
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			s.logger.Warn("Failed to collect message data", zap.Error(err))
			continue
		}
		msgs = append(msgs, messageFromBuffer(buf, bodySection))
	}
	if err := fetchCmd.Close(); err != nil {
		return msgs, fmt.Errorf("fetch failed: %w", err)
	}
	return msgs, nil
}

// MoveToFolder moves a message to the first candidate folder that accepts
// it. When every candidate is rejected the message is flagged deleted
// instead, so a verdict is never silently dropped.
func (s *Session) MoveToFolder(ctx context.Context, uid uint32, candidates []string) error {
	return s.withRetry(ctx, "move", func() error {
		uidSet := imap.UIDSetNum(imap.UID(uid))
		for _, folder := range candidates {
			if _, err := s.clt.Move(uidSet, folder).Wait(); err == nil {
				s.logger.Debug("Moved message",
					zap.Uint32("uid", uid),
					zap.String("folder", folder))
				return nil
			}
		}

		s.logger.Warn("No candidate folder accepted the move, flagging deleted",
			zap.Uint32("uid", uid),
			zap.Strings("candidates", candidates))
		if err := s.addFlags(uid, imap.FlagDeleted); err != nil {
			return fmt.Errorf("%w: fallback delete failed: %v", core.ErrNoFolder, err)
		}
		return nil
	})
}

// MarkRead sets the seen flag on a message
func (s *Session) MarkRead(ctx context.Context, uid uint32) error {
	return s.withRetry(ctx, "mark read", func() error {
		return s.addFlags(uid, imap.FlagSeen)
	})
}

// Delete flags a message as deleted
func (s *Session) Delete(ctx context.Context, uid uint32) error {
	return s.withRetry(ctx, "delete", func() error {
		return s.addFlags(uid, imap.FlagDeleted)
	})
}

func (s *Session) addFlags(uid uint32, flags ...imap.Flag) error {
	storeCmd := s.clt.Store(imap.UIDSetNum(imap.UID(uid)), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  flags,
	}, nil)
	return storeCmd.Close()
}

// withRetry runs a mutation, reconnecting and retrying exactly once when
// the connection was lost mid-call. A second failure is returned to the
// caller, which leaves the message in its prior state.
func (s *Session) withRetry(ctx context.Context, op string, fn func() error) error {
	folder := s.selected
	err := fn()
	if err == nil {
		return nil
	}
	if !isConnError(err) {
		return err
	}

	s.logger.Warn("Connection lost during mutation, reconnecting",
		zap.String("op", op),
		zap.Error(err))

	s.Close()
	if connErr := s.Connect(ctx); connErr != nil {
		return fmt.Errorf("%s failed and reconnect failed: %w", op, connErr)
	}
	if folder != "" {
		if selErr := s.selectFolder(folder); selErr != nil {
			return fmt.Errorf("%s failed and reselect failed: %w", op, selErr)
		}
	}

	if err := fn(); err != nil {
		return fmt.Errorf("%s failed after reconnect: %w", op, err)
	}
	return nil
}

// isConnError reports whether an error indicates a lost connection
// rather than a server rejection. Only lost connections are worth a
// reconnect and retry.
func isConnError(err error) bool {
	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func reverseMessages(msgs []core.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
