package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lending-service/configs"
	"lending-service/internal/models"
	"lending-service/internal/repository"
)

// UserService defines methods for user service
type UserService interface {
	Register(ctx context.Context, user *models.UserRegistration) (uuid.UUID, error)
	Login(ctx context.Context, login *models.UserLogin) (*models.TokenResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ProductService defines methods for loan product service
type ProductService interface {
	Create(ctx context.Context, product *models.LoanProduct) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LoanProduct, error)
	List(ctx context.Context, activeOnly bool) ([]*models.LoanProduct, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Seed(ctx context.Context, products []*models.LoanProduct) (int, error)
}

// BorrowerService defines methods for borrower service
type BorrowerService interface {
	Create(ctx context.Context, borrower *models.BorrowerCreate) (*models.Borrower, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Borrower, error)
	List(ctx context.Context) ([]*models.Borrower, error)
	Verify(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Borrower, error)
	Properties(ctx context.Context, id uuid.UUID) ([]*models.Property, error)
}

// PropertyService defines methods for collateral service
type PropertyService interface {
	Create(ctx context.Context, property *models.PropertyCreate) (*models.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	Verify(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Property, error)
}

// LoanService defines methods for the loan lifecycle
type LoanService interface {
	Create(ctx context.Context, req *models.LoanRequest, userID uuid.UUID) (*models.Loan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	List(ctx context.Context, filter models.LoanFilter) ([]*models.Loan, error)
	Submit(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Loan, error)
	Return(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Loan, error)
	Approve(ctx context.Context, id uuid.UUID, userID uuid.UUID, notes string) (*models.Loan, error)
	Activate(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Loan, error)
	Transition(ctx context.Context, id uuid.UUID, target models.LoanStatus, userID uuid.UUID) (*models.Loan, error)
	GetSchedule(ctx context.Context, id uuid.UUID) ([]*models.PaymentScheduleItem, *models.PaymentScheduleSummary, error)
	RegenerateSchedule(ctx context.Context, id uuid.UUID, userID uuid.UUID) ([]*models.PaymentScheduleItem, error)
	ExportScheduleXML(ctx context.Context, id uuid.UUID) ([]byte, error)
	Summary(ctx context.Context, id uuid.UUID) (*models.LoanSummary, error)
	Checklist(ctx context.Context, id uuid.UUID) ([]models.ChecklistItem, error)
}

// PaymentService defines methods for payment service
type PaymentService interface {
	RecordPayment(ctx context.Context, loanID uuid.UUID, req *models.PaymentRequest, userID uuid.UUID) (*models.PaymentResult, error)
	List(ctx context.Context, loanID uuid.UUID) ([]*models.Payment, *models.PaymentTotals, error)
}

// CollectionService defines methods for the delinquency workflow
type CollectionService interface {
	History(ctx context.Context, loanID uuid.UUID) ([]*models.CollectionAction, error)
	LogAction(ctx context.Context, loanID uuid.UUID, req *models.CollectionActionRequest, userID uuid.UUID) (*models.CollectionAction, error)
	GrantExtension(ctx context.Context, loanID uuid.UUID, req *models.ExtensionRequest, userID uuid.UUID) (*models.CollectionAction, error)
	EscalateToLegal(ctx context.Context, loanID uuid.UUID, req *models.EscalationRequest, userID uuid.UUID) (*models.CollectionAction, error)
	Delinquent(ctx context.Context) ([]*models.DelinquentLoan, error)
	RunDailySweep(ctx context.Context) (*models.SweepReport, error)
}

// DocumentService defines methods for loan document metadata
type DocumentService interface {
	Create(ctx context.Context, loanID uuid.UUID, doc *models.DocumentCreate, userID uuid.UUID) (*models.Document, error)
	List(ctx context.Context, loanID uuid.UUID) ([]*models.Document, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ExecutionStatus) (*models.Document, error)
}

// AnalyticsService defines methods for the portfolio dashboard
type AnalyticsService interface {
	Dashboard(ctx context.Context) (*models.PortfolioMetrics, error)
}

// Notifier delivers borrower notifications. Implementations must be safe for concurrent use.
type Notifier interface {
	LoanApproved(ctx context.Context, loan *models.Loan) error
	LoanActivated(ctx context.Context, loan *models.Loan) error
	PaymentReminder(ctx context.Context, loan *models.Loan, item *models.PaymentScheduleItem) error
	OverdueNotice(ctx context.Context, loan *models.Loan, daysPastDue int) error
	LoanDefaulted(ctx context.Context, loan *models.Loan) error
}

// Dependencies contains dependencies for services
type Dependencies struct {
	Repos    *repository.Repository
	Logger   *logrus.Logger
	Config   *configs.Config
	Notifier Notifier         // defaults to the SMTP notifier
	Clock    func() time.Time // defaults to time.Now
}

// Service is a composition of all services
type Service struct {
	User       UserService
	Product    ProductService
	Borrower   BorrowerService
	Property   PropertyService
	Loan       LoanService
	Payment    PaymentService
	Collection CollectionService
	Document   DocumentService
	Analytics  AnalyticsService
	Email      Notifier
}

// NewService creates a new service with all sub-services
func NewService(deps Dependencies) *Service {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Notifier == nil {
		deps.Notifier = NewEmailService(deps)
	}

	return &Service{
		User:       NewUserService(deps),
		Product:    NewProductService(deps),
		Borrower:   NewBorrowerService(deps),
		Property:   NewPropertyService(deps),
		Loan:       NewLoanService(deps),
		Payment:    NewPaymentService(deps),
		Collection: NewCollectionService(deps),
		Document:   NewDocumentService(deps),
		Analytics:  NewAnalyticsService(deps),
		Email:      deps.Notifier,
	}
}

// today returns the current civil date from the injected clock
func today(clock func() time.Time) time.Time {
	if clock == nil {
		return models.Date(time.Now())
	}
	return models.Date(clock())
}

// notifyAsync sends a notification off the request path; failures are only logged
func notifyAsync(logger *logrus.Logger, what string, send func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := send(ctx); err != nil {
			logger.Warnf("Failed to send %s notification: %v", what, err)
		}
	}()
}
