package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// MockStore is a simple in-memory implementation of the repositories for testing.
// It stores copies so that callers only change it through explicit writes.
type MockStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*models.User
	borrowers  map[uuid.UUID]*models.Borrower
	properties map[uuid.UUID]*models.Property
	products   map[uuid.UUID]*models.LoanProduct
	loans      map[uuid.UUID]*models.Loan
	schedule   map[uuid.UUID]*models.PaymentScheduleItem
	payments   []*models.Payment
	actions    []*models.CollectionAction
	documents  map[uuid.UUID]*models.Document
}

func NewMockStore() *MockStore {
	return &MockStore{
		users:      make(map[uuid.UUID]*models.User),
		borrowers:  make(map[uuid.UUID]*models.Borrower),
		properties: make(map[uuid.UUID]*models.Property),
		products:   make(map[uuid.UUID]*models.LoanProduct),
		loans:      make(map[uuid.UUID]*models.Loan),
		schedule:   make(map[uuid.UUID]*models.PaymentScheduleItem),
		documents:  make(map[uuid.UUID]*models.Document),
	}
}

// Repository exposes the store through the repository interfaces
func (m *MockStore) Repository() *repository.Repository {
	return &repository.Repository{
		Tx:         mockTx{},
		User:       mockUsers{m},
		Borrower:   mockBorrowers{m},
		Property:   mockProperties{m},
		Product:    mockProducts{m},
		Loan:       mockLoans{m},
		Schedule:   mockSchedule{m},
		Payment:    mockPayments{m},
		Collection: mockCollections{m},
		Document:   mockDocuments{m},
	}
}

func missing(entity string) error {
	return fmt.Errorf("%s %w", entity, models.ErrNotFound)
}

type mockTx struct{}

func (mockTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// users

type mockUsers struct{ m *MockStore }

func (r mockUsers) Create(ctx context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c := *user
	r.m.users[user.ID] = &c
	return nil
}

func (r mockUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, missing("user")
	}
	c := *u
	return &c, nil
}

func (r mockUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, missing("user")
}

// borrowers

type mockBorrowers struct{ m *MockStore }

func (r mockBorrowers) Create(ctx context.Context, b *models.Borrower) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c := *b
	r.m.borrowers[b.ID] = &c
	return nil
}

func (r mockBorrowers) GetByID(ctx context.Context, id uuid.UUID) (*models.Borrower, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.borrowers[id]
	if !ok {
		return nil, missing("borrower")
	}
	c := *b
	return &c, nil
}

func (r mockBorrowers) List(ctx context.Context) ([]*models.Borrower, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*models.Borrower{}
	for _, b := range r.m.borrowers {
		c := *b
		out = append(out, &c)
	}
	return out, nil
}

func (r mockBorrowers) Update(ctx context.Context, b *models.Borrower) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.borrowers[b.ID]; !ok {
		return missing("borrower")
	}
	c := *b
	r.m.borrowers[b.ID] = &c
	return nil
}

// properties

type mockProperties struct{ m *MockStore }

func (r mockProperties) Create(ctx context.Context, p *models.Property) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c := *p
	c.Liens = nil
	r.m.properties[p.ID] = &c
	return nil
}

func (r mockProperties) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.properties[id]
	if !ok {
		return nil, missing("property")
	}
	c := *p
	return &c, nil
}

func (r mockProperties) GetByBorrowerID(ctx context.Context, borrowerID uuid.UUID) ([]*models.Property, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*models.Property{}
	for _, p := range r.m.properties {
		if p.BorrowerID == borrowerID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r mockProperties) GetLiens(ctx context.Context, propertyID uuid.UUID) ([]models.PropertyLien, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var liens []models.PropertyLien
	for _, l := range r.m.loans {
		if l.PropertyID == propertyID {
			liens = append(liens, models.PropertyLien{LoanID: l.ID, LoanNumber: l.LoanNumber, Status: l.Status})
		}
	}
	return liens, nil
}

func (r mockProperties) Update(ctx context.Context, p *models.Property) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.properties[p.ID]; !ok {
		return missing("property")
	}
	c := *p
	c.Liens = nil
	r.m.properties[p.ID] = &c
	return nil
}

// products

type mockProducts struct{ m *MockStore }

func (r mockProducts) Create(ctx context.Context, p *models.LoanProduct) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c := *p
	r.m.products[p.ID] = &c
	return nil
}

func (r mockProducts) GetByID(ctx context.Context, id uuid.UUID) (*models.LoanProduct, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return nil, missing("loan product")
	}
	c := *p
	return &c, nil
}

func (r mockProducts) GetByName(ctx context.Context, name string) (*models.LoanProduct, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.products {
		if p.Name == name {
			c := *p
			return &c, nil
		}
	}
	return nil, missing("loan product")
}

func (r mockProducts) List(ctx context.Context, activeOnly bool) ([]*models.LoanProduct, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*models.LoanProduct{}
	for _, p := range r.m.products {
		if activeOnly && !p.IsActive {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r mockProducts) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return missing("loan product")
	}
	p.IsActive = active
	return nil
}

// loans

type mockLoans struct{ m *MockStore }

func storedLoan(l *models.Loan) *models.Loan {
	c := *l
	c.Product, c.Borrower, c.Collateral = nil, nil, nil
	c.Schedule, c.Payments, c.Documents = nil, nil, nil
	return &c
}

func (r mockLoans) Create(ctx context.Context, l *models.Loan) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.loans[l.ID] = storedLoan(l)
	return nil
}

func (r mockLoans) GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	l, ok := r.m.loans[id]
	if !ok {
		return nil, missing("loan")
	}
	return storedLoan(l), nil
}

func (r mockLoans) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	return r.GetByID(ctx, id)
}

func (r mockLoans) GetByStatuses(ctx context.Context, statuses []models.LoanStatus) ([]*models.Loan, error) {
	return r.List(ctx, models.LoanFilter{Statuses: statuses})
}

func (r mockLoans) List(ctx context.Context, filter models.LoanFilter) ([]*models.Loan, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*models.Loan{}
	for _, l := range r.m.loans {
		if filter.BorrowerID != nil && l.BorrowerID != *filter.BorrowerID {
			continue
		}
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, l.Status) {
			continue
		}
		out = append(out, storedLoan(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoanNumber < out[j].LoanNumber })
	return out, nil
}

func hasStatus(statuses []models.LoanStatus, s models.LoanStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func (r mockLoans) Update(ctx context.Context, l *models.Loan) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.loans[l.ID]; !ok {
		return missing("loan")
	}
	r.m.loans[l.ID] = storedLoan(l)
	return nil
}

func (r mockLoans) NextSequence(ctx context.Context, prefix string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var numbers []string
	for _, loan := range r.m.loans {
		if strings.HasPrefix(loan.LoanNumber, prefix+"-") {
			numbers = append(numbers, loan.LoanNumber)
		}
	}
	return models.NextLoanSequence(numbers)
}

// payment schedule

type mockSchedule struct{ m *MockStore }

func (r mockSchedule) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*models.PaymentScheduleItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.PaymentScheduleItem
	for _, item := range r.m.schedule {
		if item.LoanID == loanID {
			c := *item
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentNumber < out[j].PaymentNumber })
	return out, nil
}

func (r mockSchedule) ReplaceForLoan(ctx context.Context, loanID uuid.UUID, items []*models.PaymentScheduleItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, item := range r.m.schedule {
		if item.LoanID == loanID {
			delete(r.m.schedule, id)
		}
	}
	for _, item := range items {
		c := *item
		r.m.schedule[item.ID] = &c
	}
	return nil
}

func (r mockSchedule) Update(ctx context.Context, item *models.PaymentScheduleItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.schedule[item.ID]; !ok {
		return missing("payment schedule item")
	}
	c := *item
	r.m.schedule[item.ID] = &c
	return nil
}

func (r mockSchedule) GetUnpaidDueBetween(ctx context.Context, from, to time.Time) ([]*models.PaymentScheduleItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.PaymentScheduleItem
	for _, item := range r.m.schedule {
		loan := r.m.loans[item.LoanID]
		if item.IsPaid || loan == nil || loan.Status != models.LoanStatusActive {
			continue
		}
		if item.DueDate.Before(from) || item.DueDate.After(to) {
			continue
		}
		c := *item
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

// payments

type mockPayments struct{ m *MockStore }

func (r mockPayments) Create(ctx context.Context, p *models.Payment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c := *p
	r.m.payments = append(r.m.payments, &c)
	return nil
}

func (r mockPayments) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*models.Payment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*models.Payment{}
	for _, p := range r.m.payments {
		if p.LoanID == loanID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

// collection actions

type mockCollections struct{ m *MockStore }

func (r mockCollections) Create(ctx context.Context, a *models.CollectionAction) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c := *a
	r.m.actions = append(r.m.actions, &c)
	return nil
}

func (r mockCollections) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*models.CollectionAction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*models.CollectionAction{}
	for _, a := range r.m.actions {
		if a.LoanID == loanID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

// documents

type mockDocuments struct{ m *MockStore }

func (r mockDocuments) Create(ctx context.Context, d *models.Document) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c := *d
	r.m.documents[d.ID] = &c
	return nil
}

func (r mockDocuments) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.documents[id]
	if !ok {
		return nil, missing("document")
	}
	c := *d
	return &c, nil
}

func (r mockDocuments) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*models.Document, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*models.Document{}
	for _, d := range r.m.documents {
		if d.LoanID == loanID {
			c := *d
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r mockDocuments) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ExecutionStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.documents[id]
	if !ok {
		return missing("document")
	}
	d.ExecutionStatus = status
	return nil
}

// recordingNotifier counts notifications instead of sending them
type recordingNotifier struct {
	mu        sync.Mutex
	approved  int
	activated int
	reminders int
	overdue   int
	defaulted int
}

func (n *recordingNotifier) LoanApproved(ctx context.Context, loan *models.Loan) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved++
	return nil
}

func (n *recordingNotifier) LoanActivated(ctx context.Context, loan *models.Loan) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.activated++
	return nil
}

func (n *recordingNotifier) PaymentReminder(ctx context.Context, loan *models.Loan, item *models.PaymentScheduleItem) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders++
	return nil
}

func (n *recordingNotifier) OverdueNotice(ctx context.Context, loan *models.Loan, daysPastDue int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.overdue++
	return nil
}

func (n *recordingNotifier) LoanDefaulted(ctx context.Context, loan *models.Loan) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.defaulted++
	return nil
}

func (n *recordingNotifier) count(f func(n *recordingNotifier) int) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return f(n)
}

// testClock is a settable clock
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(y int, m time.Month, d int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

// testEnv wires every service against one MockStore
type testEnv struct {
	store    *MockStore
	clock    *testClock
	notifier *recordingNotifier
	svc      *Service
}

func newTestEnv() *testEnv {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &configs.Config{
		JWT: configs.JWTConfig{Secret: "test-secret", TTL: 1},
		Collections: configs.CollectionsConfig{
			GracePeriodDays:    5,
			DefaultTriggerDays: 15,
			LegalReadyDays:     30,
			ReminderDaysBefore: 3,
		},
	}

	env := &testEnv{
		store:    NewMockStore(),
		clock:    &testClock{},
		notifier: &recordingNotifier{},
	}
	env.clock.Set(2024, time.January, 1)

	env.svc = NewService(Dependencies{
		Repos:    env.store.Repository(),
		Logger:   logger,
		Config:   cfg,
		Notifier: env.notifier,
		Clock:    env.clock.Now,
	})
	return env
}
