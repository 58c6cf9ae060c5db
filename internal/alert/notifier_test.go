package alert

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"network-ai-monitor/internal/model"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) Notify(ctx context.Context, subject, body string) error {
	s.calls++
	return s.err
}

func TestDispatcher_AnyDeliveryCounts(t *testing.T) {
	t.Parallel()

	failing := &stubNotifier{err: errors.New("smtp down")}
	ok := &stubNotifier{}
	d := NewDispatcher(quietLogger(), NamedNotifier{Name: "email", Notifier: failing})
	d.Register("log", ok)

	if err := d.Notify(context.Background(), "s", "b"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if failing.calls != 1 || ok.calls != 1 {
		t.Fatalf("calls=%d/%d", failing.calls, ok.calls)
	}
}

func TestDispatcher_AllFailed(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(quietLogger(), NamedNotifier{Name: "email", Notifier: &stubNotifier{err: errors.New("boom")}})
	err := d.Notify(context.Background(), "s", "b")
	if !errors.Is(err, model.ErrCollaboratorUnavailable) {
		t.Fatalf("err=%v", err)
	}

	empty := NewDispatcher(quietLogger())
	if err := empty.Notify(context.Background(), "s", "b"); !errors.Is(err, model.ErrCollaboratorUnavailable) {
		t.Fatalf("empty dispatcher err=%v", err)
	}
}

type blockingNotifier struct{}

func (blockingNotifier) Notify(ctx context.Context, subject, body string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestDispatcher_HungChannelDoesNotStarveOthers(t *testing.T) {
	t.Parallel()

	first := &stubNotifier{}
	last := &stubNotifier{}
	d := NewDispatcher(quietLogger())
	d.Register("log", first)
	d.Register("telegram", blockingNotifier{})
	d.Register("email", last)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	started := time.Now()
	if err := d.Notify(ctx, "s", "b"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Fatalf("Notify took %v", elapsed)
	}
	if first.calls != 1 || last.calls != 1 {
		t.Fatalf("calls=%d/%d", first.calls, last.calls)
	}
}

func TestDispatcher_OnlyHungChannelFails(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(quietLogger(), NamedNotifier{Name: "telegram", Notifier: blockingNotifier{}})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := d.Notify(ctx, "s", "b")
	if !errors.Is(err, model.ErrCollaboratorUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v", err)
	}
}

func TestFormatMessage(t *testing.T) {
	t.Parallel()

	cr := model.ClassifiedReading{
		RateReading: model.RateReading{
			InterfaceID:  "eth0",
			InboundMbps:  20,
			OutboundMbps: 0.1234567,
			ObservedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		Class:   "ethernet",
		Verdict: model.Verdict_ANOMALY_INBOUND,
	}
	subject, body := FormatMessage(cr)
	if subject != "Network Alert on eth0" {
		t.Fatalf("subject=%q", subject)
	}
	for _, want := range []string{
		"Time      : 2024-05-01 10:00:00",
		"Interface : eth0 (ethernet)",
		"Inbound   : 20.000000 Mbps",
		"Outbound  : 0.123456 Mbps",
		"Status    : ANOMALY_INBOUND",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestTelegramNotifier_SendsMessage(t *testing.T) {
	t.Parallel()

	var got TelegramMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("path=%s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(TelegramResponse{OK: true})
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "Markdown", true, quietLogger())
	tn.SetAPIBase(srv.URL)

	if err := tn.Notify(context.Background(), "Network Alert on eth0", "Status : ANOMALY_INBOUND"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got.ChatID != "42" || got.ParseMode != "" {
		t.Fatalf("message=%+v", got)
	}
	if !strings.Contains(got.Text, "Network Alert on eth0") || !strings.Contains(got.Text, "ANOMALY_INBOUND") {
		t.Fatalf("text=%q", got.Text)
	}
}

func TestTelegramNotifier_RetriesThenFails(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_ = json.NewEncoder(w).Encode(TelegramResponse{OK: false, Description: "chat not found"})
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "", true, quietLogger())
	tn.SetAPIBase(srv.URL)
	tn.SetRetryPolicy(2, time.Millisecond)

	err := tn.Notify(context.Background(), "s", "b")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("err=%v", err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("hits=%d", hits)
	}
}

func TestTelegramNotifier_Template(t *testing.T) {
	t.Parallel()

	tn := NewTelegramNotifierWithTemplate("T", "1", "", true, "[{{.Subject}}] {{.Body}}", quietLogger())
	if got := tn.formatMessage("subj", "body"); got != "[subj] body" {
		t.Fatalf("got %q", got)
	}
}

type fakeMailer struct {
	sent  []*gomail.Message
	block chan struct{}
}

func (f *fakeMailer) DialAndSend(m ...*gomail.Message) error {
	if f.block != nil {
		<-f.block
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestEmailNotifier(t *testing.T) {
	t.Parallel()

	en := NewEmailNotifier(EmailConfig{Host: "smtp.example.com", Port: 587, From: "netmon@example.com", To: []string{"ops@example.com"}}, quietLogger())
	fm := &fakeMailer{}
	en.dialer = fm

	if err := en.Notify(context.Background(), "Network Alert on eth0", "body"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(fm.sent) != 1 {
		t.Fatalf("sent=%d", len(fm.sent))
	}
	if subj := fm.sent[0].GetHeader("Subject"); len(subj) != 1 || subj[0] != "Network Alert on eth0" {
		t.Fatalf("subject=%v", subj)
	}
}

func TestEmailNotifier_HonoursContext(t *testing.T) {
	t.Parallel()

	en := NewEmailNotifier(EmailConfig{Host: "smtp.example.com", Port: 587, To: []string{"ops@example.com"}}, quietLogger())
	fm := &fakeMailer{block: make(chan struct{})}
	defer close(fm.block)
	en.dialer = fm

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := en.Notify(ctx, "s", "b"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v", err)
	}
}
