package payment

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
)

// Sandbox is an in-process gateway used when no secret key is configured and in tests.
// Sessions start unpaid; MarkPaid simulates the customer completing the hosted page,
// unless AutoPay is set.
type Sandbox struct {
	AutoPay    bool
	FailRefund error

	mu       sync.Mutex
	sessions map[string]*sandboxSession
	refunds  []string
}

type sandboxSession struct {
	Session
	Req     SessionRequest
	Expired bool
}

func NewSandbox() *Sandbox {
	return &Sandbox{sessions: map[string]*sandboxSession{}}
}

func (s *Sandbox) CreateSession(_ context.Context, req SessionRequest) (*Session, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("sandbox: no line items")
	}
	id := "cs_test_" + uuid.NewString()
	sess := &sandboxSession{
		Session: Session{ID: id, URL: "/checkout/success?session_id=" + url.QueryEscape(id)},
		Req:     req,
	}
	if s.AutoPay {
		sess.Paid = true
		sess.PaymentIntentID = "pi_test_" + id
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	cp := sess.Session
	return &cp, nil
}

func (s *Sandbox) RetrieveSession(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := sess.Session
	return &cp, nil
}

func (s *Sandbox) ExpireSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if sess.Paid {
		return fmt.Errorf("sandbox: session %s already paid", id)
	}
	sess.Expired = true
	return nil
}

func (s *Sandbox) Refund(_ context.Context, paymentIntentID string) error {
	if s.FailRefund != nil {
		return s.FailRefund
	}
	s.mu.Lock()
	s.refunds = append(s.refunds, paymentIntentID)
	s.mu.Unlock()
	return nil
}

// MarkPaid completes the session as if the customer paid on the hosted page.
func (s *Sandbox) MarkPaid(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if sess.Expired {
		return fmt.Errorf("sandbox: session %s expired", id)
	}
	sess.Paid = true
	sess.PaymentIntentID = "pi_test_" + id
	return nil
}

// Request returns what the session was created with.
func (s *Sandbox) Request(id string) (SessionRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return SessionRequest{}, false
	}
	return sess.Req, true
}

func (s *Sandbox) Expired(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return ok && sess.Expired
}

func (s *Sandbox) Refunds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.refunds...)
}
