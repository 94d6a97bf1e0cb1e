package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/biblioteca/library-system/internal/core/domain"
	"github.com/biblioteca/library-system/internal/core/ports"
	"github.com/biblioteca/library-system/internal/infrastructure/db/memory"
)

// ---------------------------------------------------------------------------
// Stub idempotency store
// ---------------------------------------------------------------------------

type stubIdempotency struct {
	mu        sync.Mutex
	keys      map[string]int64
	lookupErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]int64)}
}

func (s *stubIdempotency) Lookup(_ context.Context, actorID int64, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return 0, false, s.lookupErr
	}
	id, ok := s.keys[fmt.Sprintf("%d:%s", actorID, key)]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, actorID int64, key string, loanID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := fmt.Sprintf("%d:%s", actorID, key)
	if _, ok := s.keys[k]; !ok {
		s.keys[k] = loanID
	}
	return nil
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	store   *memory.Store
	idem    *stubIdempotency
	loans   *LoanService
	catalog *CatalogService
	users   *UserService
	audit   *AuditService

	admin   domain.Actor
	student domain.Actor
	other   domain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	idem := newStubIdempotency()
	log := zerolog.Nop()

	f := &fixture{
		store:   store,
		idem:    idem,
		loans:   NewLoanService(store.Loans(), store.Books(), store.Users(), idem, log),
		catalog: NewCatalogService(store.Books(), log),
		users:   NewUserService(store.Users(), log),
		audit:   NewAuditService(store.ActionLogs(), log),
	}
	f.admin = f.addUser(t, "admin", domain.RoleAdmin)
	f.student = f.addUser(t, "estudiante", domain.RoleStudent)
	f.other = f.addUser(t, "maria", domain.RoleStudent)
	return f
}

func (f *fixture) addUser(t *testing.T, username string, role domain.Role) domain.Actor {
	t.Helper()
	u, err := f.store.Users().Create(context.Background(), &domain.User{
		Username:  username,
		Email:     username + "@biblioteca.test",
		FirstName: "Test",
		LastName:  username,
		Role:      role,
		Active:    true,
	}, nil)
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u.Actor()
}

func (f *fixture) addBook(t *testing.T, title string, copies int) *domain.Book {
	t.Helper()
	b, err := f.catalog.AddBook(context.Background(), f.admin, ports.BookInput{Title: title, Author: "Autor", TotalCopies: copies})
	if err != nil {
		t.Fatalf("seed book %s: %v", title, err)
	}
	return b
}

func (f *fixture) book(t *testing.T, id int64) *domain.Book {
	t.Helper()
	b, err := f.store.Books().FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("find book %d: %v", id, err)
	}
	return b
}

func (f *fixture) logs(t *testing.T) []*domain.ActionLog {
	t.Helper()
	logs, err := f.store.ActionLogs().Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("recent logs: %v", err)
	}
	return logs
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
