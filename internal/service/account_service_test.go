package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"medportal/internal/domain"
	"medportal/internal/identity"
	"medportal/internal/repository"
)

// mockAccountRepo emula el store con constraints de unicidad sobre
// username, email y federated_uid, igual que la base real.
type mockAccountRepo struct {
	mu          sync.Mutex
	byID        map[string]domain.Account
	byUsername  map[string]string
	byEmail     map[string]string
	byFederated map[string]string
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{
		byID:        make(map[string]domain.Account),
		byUsername:  make(map[string]string),
		byEmail:     make(map[string]string),
		byFederated: make(map[string]string),
	}
}

func (m *mockAccountRepo) Create(_ context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUsername[account.Username]; ok {
		return repository.ErrDuplicateKey
	}
	if _, ok := m.byEmail[account.Email]; ok {
		return repository.ErrDuplicateKey
	}
	if account.FederatedUID != "" {
		if _, ok := m.byFederated[account.FederatedUID]; ok {
			return repository.ErrDuplicateKey
		}
	}
	m.byID[account.ID] = account
	m.byUsername[account.Username] = account.ID
	m.byEmail[account.Email] = account.ID
	if account.FederatedUID != "" {
		m.byFederated[account.FederatedUID] = account.ID
	}
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return account, nil
}

func (m *mockAccountRepo) getByIndex(index map[string]string, key string) (domain.Account, error) {
	id, ok := index[key]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return m.byID[id], nil
}

func (m *mockAccountRepo) GetByUsername(_ context.Context, username string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getByIndex(m.byUsername, username)
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getByIndex(m.byEmail, email)
}

func (m *mockAccountRepo) GetByFederatedUID(_ context.Context, uid string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getByIndex(m.byFederated, uid)
}

func (m *mockAccountRepo) Update(_ context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.byID[account.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if id, taken := m.byUsername[account.Username]; taken && id != account.ID {
		return repository.ErrDuplicateKey
	}
	if id, taken := m.byEmail[account.Email]; taken && id != account.ID {
		return repository.ErrDuplicateKey
	}
	delete(m.byUsername, current.Username)
	delete(m.byEmail, current.Email)
	account.FederatedUID = current.FederatedUID
	account.LastLoginAt = current.LastLoginAt
	m.byID[account.ID] = account
	m.byUsername[account.Username] = account.ID
	m.byEmail[account.Email] = account.ID
	return nil
}

func (m *mockAccountRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.LastLoginAt = &at
	m.byID[id] = account
	return nil
}

func (m *mockAccountRepo) SetFederatedUID(_ context.Context, id, uid, profilePicture string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if owner, taken := m.byFederated[uid]; taken && owner != id {
		return repository.ErrDuplicateKey
	}
	account.FederatedUID = uid
	if account.ProfilePicture == "" {
		account.ProfilePicture = profilePicture
	}
	m.byID[id] = account
	m.byFederated[uid] = id
	return nil
}

func (m *mockAccountRepo) ClearFederatedUID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.byFederated, account.FederatedUID)
	account.FederatedUID = ""
	account.ProfilePicture = ""
	m.byID[id] = account
	return nil
}

func (m *mockAccountRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.byUsername, account.Username)
	delete(m.byEmail, account.Email)
	delete(m.byFederated, account.FederatedUID)
	delete(m.byID, id)
	return nil
}

func newTestAccountService(repo *mockAccountRepo, verifier identity.Verifier) *AccountService {
	return NewAccountService(zap.NewNop(), repo, verifier)
}

func TestRegisterUniqueness(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	account, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@x.com",
		Password: "Abcdef12",
	})
	if err != nil {
		t.Fatalf("expected registration to succeed, got %v", err)
	}
	if account.AuthProvider != domain.ProviderPassword {
		t.Fatalf("expected provider password, got %s", account.AuthProvider)
	}
	if account.PasswordHash == "Abcdef12" || account.PasswordHash == "" {
		t.Fatalf("expected password to be stored hashed")
	}

	_, err = svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "other@x.com",
		Password: "Abcdef12",
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on duplicate username, got %v", err)
	}

	_, err = svc.Register(ctx, RegisterInput{
		Username: "alice2",
		Email:    "alice@x.com",
		Password: "Abcdef12",
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists on duplicate email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "ab", Email: "a@x.com", Password: "Abcdef12"}); !errors.Is(err, ErrUsernameTooShort) {
		t.Fatalf("expected ErrUsernameTooShort, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "not-an-email", Password: "Abcdef12"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "bob", Email: "b@x.com", Password: "abc12345"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword without uppercase, got %v", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "Abcdef12"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	account, err := svc.VerifyPassword(ctx, "alice@x.com", "Abcdef12")
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if account.ID != registered.ID {
		t.Fatalf("expected same account id")
	}

	if _, err := svc.VerifyPassword(ctx, "alice@x.com", "wrongPass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.VerifyPassword(ctx, "nobody@x.com", "Abcdef12"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestVerifyPasswordInactiveAccount(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "Abcdef12"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	account := repo.byID[registered.ID]
	account.Active = false
	repo.byID[registered.ID] = account

	if _, err := svc.VerifyPassword(ctx, "alice@x.com", "Abcdef12"); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive with correct credentials, got %v", err)
	}
}

func TestVerifyPasswordRejectsFederatedAccounts(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	_, err := svc.ResolveClaim(ctx, domain.IdentityClaim{Subject: "g1", Email: "bob@x.com", DisplayName: "Bob"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if _, err := svc.VerifyPassword(ctx, "bob@x.com", "whatever1A"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for federated account, got %v", err)
	}
}

func TestResolveClaimCreatesAndIsIdempotent(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	claim := domain.IdentityClaim{Subject: "g1", Email: "bob@x.com", DisplayName: "Bob"}

	first, err := svc.ResolveClaim(ctx, claim)
	if err != nil {
		t.Fatalf("expected resolve to create account, got %v", err)
	}
	if first.Username != "bob" {
		t.Fatalf("expected username bob, got %s", first.Username)
	}
	if first.AuthProvider != domain.ProviderFederated {
		t.Fatalf("expected provider federated, got %s", first.AuthProvider)
	}
	if first.PasswordHash != "" {
		t.Fatalf("expected no password credential on federated account")
	}

	second, err := svc.ResolveClaim(ctx, claim)
	if err != nil {
		t.Fatalf("expected second resolve to succeed, got %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same account id on repeated claim, got %s and %s", first.ID, second.ID)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected exactly one account, got %d", len(repo.byID))
	}
}

func TestResolveClaimUsernameDerivation(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	account, err := svc.ResolveClaim(ctx, domain.IdentityClaim{Subject: "g1", Email: "ann@x.com", DisplayName: "Ann Lee"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if account.Username != "ann_lee" {
		t.Fatalf("expected ann_lee, got %s", account.Username)
	}

	// Mismo display name, otro subject: sufijo incremental.
	account2, err := svc.ResolveClaim(ctx, domain.IdentityClaim{Subject: "g2", Email: "ann2@x.com", DisplayName: "Ann Lee"})
	if err != nil {
		t.Fatalf("resolve second: %v", err)
	}
	if account2.Username != "ann_lee_1" {
		t.Fatalf("expected ann_lee_1, got %s", account2.Username)
	}

	// Sin display name: cae a la parte local del email.
	account3, err := svc.ResolveClaim(ctx, domain.IdentityClaim{Subject: "g3", Email: "carol@x.com"})
	if err != nil {
		t.Fatalf("resolve third: %v", err)
	}
	if account3.Username != "carol" {
		t.Fatalf("expected carol, got %s", account3.Username)
	}
}

func TestResolveClaimEmailOwnedByPasswordAccount(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "Abcdef12"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.ResolveClaim(ctx, domain.IdentityClaim{Subject: "g9", Email: "alice@x.com", DisplayName: "Alice"})
	if !errors.Is(err, ErrEmailOwnedByPassword) {
		t.Fatalf("expected ErrEmailOwnedByPassword, got %v", err)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected no new account, got %d", len(repo.byID))
	}
}

func TestLinkUnlinkRoundTrip(t *testing.T) {
	repo := newMockAccountRepo()
	verifier := &identity.MockVerifier{Claims: map[string]domain.IdentityClaim{
		"tok-1": {Subject: "g1", Email: "alice@gmail.com", DisplayName: "Alice", PhotoURL: "http://pic"},
	}}
	svc := newTestAccountService(repo, verifier)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "Abcdef12"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	linked, err := svc.LinkFederated(ctx, registered.ID, "tok-1")
	if err != nil {
		t.Fatalf("expected link to succeed, got %v", err)
	}
	if linked.FederatedUID != "g1" {
		t.Fatalf("expected federated uid g1, got %q", linked.FederatedUID)
	}
	if linked.ProfilePicture != "http://pic" {
		t.Fatalf("expected adopted profile picture, got %q", linked.ProfilePicture)
	}
	if linked.PasswordHash == "" {
		t.Fatalf("expected password credential to survive linking")
	}

	// Vincular dos veces es un error reportado, no un no-op.
	if _, err := svc.LinkFederated(ctx, registered.ID, "tok-1"); !errors.Is(err, ErrAlreadyLinked) {
		t.Fatalf("expected ErrAlreadyLinked, got %v", err)
	}

	unlinked, err := svc.UnlinkFederated(ctx, registered.ID)
	if err != nil {
		t.Fatalf("expected unlink to succeed, got %v", err)
	}
	if unlinked.FederatedUID != "" || unlinked.ProfilePicture != "" {
		t.Fatalf("expected pre-link state restored")
	}

	if _, err := svc.UnlinkFederated(ctx, registered.ID); !errors.Is(err, ErrNotLinked) {
		t.Fatalf("expected ErrNotLinked on second unlink, got %v", err)
	}
}

func TestLinkRejectsPureFederatedAccount(t *testing.T) {
	repo := newMockAccountRepo()
	verifier := &identity.MockVerifier{Claims: map[string]domain.IdentityClaim{
		"tok-2": {Subject: "g2", Email: "x@y.com"},
	}}
	svc := newTestAccountService(repo, verifier)
	ctx := context.Background()

	federated, err := svc.ResolveClaim(ctx, domain.IdentityClaim{Subject: "g1", Email: "bob@x.com", DisplayName: "Bob"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if _, err := svc.LinkFederated(ctx, federated.ID, "tok-2"); !errors.Is(err, ErrAlreadyLinked) {
		t.Fatalf("expected ErrAlreadyLinked for pure federated account, got %v", err)
	}
	if _, err := svc.UnlinkFederated(ctx, federated.ID); !errors.Is(err, ErrNotLinked) {
		t.Fatalf("expected ErrNotLinked for pure federated account, got %v", err)
	}
}

func TestLinkSubjectTakenByOtherAccount(t *testing.T) {
	repo := newMockAccountRepo()
	verifier := &identity.MockVerifier{Claims: map[string]domain.IdentityClaim{
		"tok-1": {Subject: "g1", Email: "bob@gmail.com"},
	}}
	svc := newTestAccountService(repo, verifier)
	ctx := context.Background()

	if _, err := svc.ResolveClaim(ctx, domain.IdentityClaim{Subject: "g1", Email: "bob@x.com", DisplayName: "Bob"}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	registered, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "Abcdef12"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.LinkFederated(ctx, registered.ID, "tok-1"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for taken subject, got %v", err)
	}
}

func TestUpdateProfilePasswordRules(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "Abcdef12"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	weak := "abc12345"
	if _, err := svc.UpdateProfile(ctx, registered.ID, UpdateProfileInput{Password: &weak, ConfirmPassword: weak}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword without uppercase, got %v", err)
	}

	valid := "Abcdefg1"
	if _, err := svc.UpdateProfile(ctx, registered.ID, UpdateProfileInput{Password: &valid, ConfirmPassword: "Different1"}); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, registered.ID, UpdateProfileInput{Password: &valid, ConfirmPassword: valid})
	if err != nil {
		t.Fatalf("expected password change to succeed, got %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(valid)); err != nil {
		t.Fatalf("expected new password hash to verify")
	}
}

func TestUpdateProfilePartialSemantics(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "alice@x.com",
		Password: "Abcdef12",
		FullName: "Alice A",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	phone := "+880123456"
	updated, err := svc.UpdateProfile(ctx, registered.ID, UpdateProfileInput{PhoneNumber: &phone})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PhoneNumber != phone {
		t.Fatalf("expected phone updated")
	}
	if updated.FullName != "Alice A" || updated.Username != "alice" {
		t.Fatalf("expected untouched fields to survive partial update")
	}

	// Vacio explicito limpia el campo anulable.
	empty := ""
	updated, err = svc.UpdateProfile(ctx, registered.ID, UpdateProfileInput{FullName: &empty})
	if err != nil {
		t.Fatalf("update clear: %v", err)
	}
	if updated.FullName != "" {
		t.Fatalf("expected full name cleared")
	}
}

func TestUpdateProfileEmailRules(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	alice, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "Abcdef12"})
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "bobby", Email: "bob@x.com", Password: "Abcdef12"}); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	taken := "bob@x.com"
	if _, err := svc.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Email: &taken}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for taken email, got %v", err)
	}

	bad := "no-at-sign"
	if _, err := svc.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Email: &bad}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	// El cambio de email no aplica a cuentas federadas.
	federated, err := svc.ResolveClaim(ctx, domain.IdentityClaim{Subject: "g1", Email: "fed@x.com", DisplayName: "Fed"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	newEmail := "fed2@x.com"
	if _, err := svc.UpdateProfile(ctx, federated.ID, UpdateProfileInput{Email: &newEmail}); !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestUpdateProfileUsernameRules(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	alice, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "Abcdef12"})
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "bobby", Email: "bob@x.com", Password: "Abcdef12"}); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	short := "ab"
	if _, err := svc.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Username: &short}); !errors.Is(err, ErrUsernameTooShort) {
		t.Fatalf("expected ErrUsernameTooShort, got %v", err)
	}

	taken := "bobby"
	if _, err := svc.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Username: &taken}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for taken username, got %v", err)
	}

	// Re-aplicar el propio username es valido.
	same := "alice"
	if _, err := svc.UpdateProfile(ctx, alice.ID, UpdateProfileInput{Username: &same}); err != nil {
		t.Fatalf("expected own username to be accepted, got %v", err)
	}
}

func TestUpdateProfileFailureLeavesStateUntouched(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	alice, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "Abcdef12", FullName: "Alice"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	name := "Renamed"
	badDate := "31-12-2000"
	_, err = svc.UpdateProfile(ctx, alice.ID, UpdateProfileInput{FullName: &name, DateOfBirth: &badDate})
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	stored, _ := svc.Get(ctx, alice.ID)
	if stored.FullName != "Alice" {
		t.Fatalf("expected no partial application on validation failure, got %q", stored.FullName)
	}
}

func TestDeleteAccount(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	alice, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "Abcdef12"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Delete(ctx, alice.ID); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if err := svc.Delete(ctx, alice.ID); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound on second delete, got %v", err)
	}

	// El email vuelve a estar disponible.
	if _, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@x.com", Password: "Abcdef12"}); err != nil {
		t.Fatalf("expected re-registration after delete, got %v", err)
	}
}

func TestConcurrentRegistrationSameUsername(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newTestAccountService(repo, nil)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, RegisterInput{
				Username: "racer",
				Email:    "racer@x.com",
				Password: "Abcdef12",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrAlreadyExists):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful registration, got %d", successes)
	}
	if conflicts != workers-1 {
		t.Fatalf("expected %d conflicts, got %d", workers-1, conflicts)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected one account row, got %d", len(repo.byID))
	}
}
