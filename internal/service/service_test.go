package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/diagnosis/homepro-bookings/internal/domain"
	"github.com/diagnosis/homepro-bookings/internal/repo/memory"
	"github.com/diagnosis/homepro-bookings/pkg/auth"
	"github.com/diagnosis/homepro-bookings/pkg/events"
)

type recordingBus struct {
	mu       sync.Mutex
	subjects []string
	fail     bool
}

func (b *recordingBus) Publish(_ context.Context, subject string, _ interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subjects = append(b.subjects, subject)
	if b.fail {
		return errors.New("broker down")
	}
	return nil
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) published() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.subjects...)
}

var _ events.Publisher = (*recordingBus)(nil)

func str(s string) *string { return &s }

func TestBookingService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	bus := &recordingBus{}
	svc := NewBookingService(memory.New().Bookings(), bus)

	b, err := svc.Create(ctx, "alice", domain.BookingReq{Service: "Plumbing", City: "Austin"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Update(ctx, b.ID, "alice", domain.BookingPatch{Notes: str("Gate code 1234")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Notes != "Gate code 1234" || got.City != "Austin" || got.Service != "Plumbing" {
		t.Fatalf("partial update wrong: %+v", got)
	}

	for _, st := range []string{"Completed", "Pending", "Cancelled"} {
		got, err = svc.SetStatus(ctx, b.ID, "alice", st)
		if err != nil || string(got.Status) != st {
			t.Fatalf("transition to %s: %v %+v", st, err, got)
		}
	}

	if err := svc.Delete(ctx, b.ID, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, b.ID, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}

	want := []string{
		events.BookingCreated, events.BookingUpdated,
		events.BookingStatusChanged, events.BookingStatusChanged, events.BookingStatusChanged,
		events.BookingDeleted,
	}
	pub := bus.published()
	if len(pub) != len(want) {
		t.Fatalf("published %v, want %v", pub, want)
	}
	for i := range want {
		if pub[i] != want[i] {
			t.Fatalf("published %v, want %v", pub, want)
		}
	}
}

func TestBookingService_InvalidStatusLeavesRecord(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewBookingService(store.Bookings(), events.NoopBus{})
	b, _ := svc.Create(ctx, "alice", domain.BookingReq{Service: "Plumbing"})

	for _, st := range []string{"pending", "Done", ""} {
		if _, err := svc.SetStatus(ctx, b.ID, "alice", st); !errors.Is(err, ErrInvalidStatus) {
			t.Fatalf("%q: want ErrInvalidStatus, got %v", st, err)
		}
	}
	// Invalid status wins over a missing record.
	if _, err := svc.SetStatus(ctx, "missing", "alice", "nope"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("want ErrInvalidStatus, got %v", err)
	}

	got, _ := store.Bookings().GetForUser(ctx, b.ID, "alice")
	if got.Status != domain.BookingPending {
		t.Fatalf("status changed to %q", got.Status)
	}
}

func TestBookingService_ForeignOwnerIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewBookingService(memory.New().Bookings(), events.NoopBus{})
	b, _ := svc.Create(ctx, "alice", domain.BookingReq{Service: "Plumbing"})

	if got, err := svc.Get(ctx, b.ID, "alice"); err != nil || got.ID != b.ID {
		t.Fatalf("owner get: %+v %v", got, err)
	}
	if _, err := svc.Get(ctx, b.ID, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get: want ErrNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, b.ID, "bob", domain.BookingPatch{Notes: str("x")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: want ErrNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, b.ID, "bob", domain.BookingPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty update: want ErrNotFound, got %v", err)
	}
	if _, err := svc.SetStatus(ctx, b.ID, "bob", "Confirmed"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("status: want ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, b.ID, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete: want ErrNotFound, got %v", err)
	}
	list, _ := svc.List(ctx, "bob")
	if len(list) != 0 {
		t.Fatalf("bob sees %d bookings", len(list))
	}
}

func TestBookingService_UpdateRejectsBlankService(t *testing.T) {
	ctx := context.Background()
	svc := NewBookingService(memory.New().Bookings(), events.NoopBus{})
	b, _ := svc.Create(ctx, "alice", domain.BookingReq{Service: "Plumbing"})

	_, err := svc.Update(ctx, b.ID, "alice", domain.BookingPatch{Service: str("  ")})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestPaymentService_PublishFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	svc := NewPaymentService(memory.New().Payments(), &recordingBus{fail: true})

	p, err := svc.Create(ctx, "alice", domain.PaymentReq{BookingID: "b1", Service: "Plumbing", Date: "2024-01-01", Time: "10:00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Amount != domain.DefaultAmount || p.Status != domain.PaymentCompleted {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if _, err := svc.SetStatus(ctx, p.ID, "alice", "refunded"); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := svc.Delete(ctx, p.ID, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestPaymentService_StatusAndOwnership(t *testing.T) {
	ctx := context.Background()
	svc := NewPaymentService(memory.New().Payments(), events.NoopBus{})
	p, _ := svc.Create(ctx, "alice", domain.PaymentReq{BookingID: "b1", Service: "s", Date: "d", Time: "t"})

	if _, err := svc.SetStatus(ctx, p.ID, "alice", "Completed"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("want ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.Get(ctx, p.ID, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	got, err := svc.Get(ctx, p.ID, "alice")
	if err != nil || got.Status != domain.PaymentCompleted {
		t.Fatalf("status changed: %v %+v", err, got)
	}
}

func newTestAuth() *AuthService {
	svc := NewAuthService(memory.New().Users(), auth.NewIssuer("test-secret", "homepro-api", time.Hour))
	svc.params = &argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	return svc
}

func TestAuthService_RegisterLoginMe(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth()

	res, err := svc.Register(ctx, domain.RegisterReq{Name: "Alice", Email: " Alice@Example.com ", Password: "secret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Token == "" || res.User.Email != "alice@example.com" {
		t.Fatalf("unexpected response: %+v", res)
	}

	if _, err := svc.Register(ctx, domain.RegisterReq{Name: "A2", Email: "alice@example.com", Password: "x"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}

	login, err := svc.Login(ctx, domain.LoginReq{Email: "ALICE@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := svc.issuer.Parse(login.Token)
	if err != nil || claims.UserID() != res.User.ID {
		t.Fatalf("token subject mismatch: %v", err)
	}

	if _, err := svc.Login(ctx, domain.LoginReq{Email: "alice@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, domain.LoginReq{Email: "nobody@example.com", Password: "secret"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}

	me, err := svc.Me(ctx, res.User.ID)
	if err != nil || me.ID != res.User.ID {
		t.Fatalf("me: %v", err)
	}
	if _, err := svc.Me(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuth()
	tests := []struct {
		name string
		req  domain.RegisterReq
	}{
		{"no password", domain.RegisterReq{Name: "A", Email: "a@b.co"}},
		{"no name", domain.RegisterReq{Email: "a@b.co", Password: "p"}},
		{"bad email", domain.RegisterReq{Name: "A", Email: "ab.co", Password: "p"}},
		{"admin role", domain.RegisterReq{Name: "A", Email: "a@b.co", Password: "p", Role: "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("want ValidationError, got %v", err)
			}
		})
	}
}
