package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"lending-service/internal/models"
	"lending-service/internal/repository/postgres"
)

// TransactionManager runs a unit of work inside one database transaction.
// Repositories called with the context passed to fn join that transaction.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines methods for user repository
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// BorrowerRepository defines methods for borrower repository
type BorrowerRepository interface {
	Create(ctx context.Context, borrower *models.Borrower) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Borrower, error)
	List(ctx context.Context) ([]*models.Borrower, error)
	Update(ctx context.Context, borrower *models.Borrower) error
}

// PropertyRepository defines methods for collateral repository
type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	GetByBorrowerID(ctx context.Context, borrowerID uuid.UUID) ([]*models.Property, error)
	GetLiens(ctx context.Context, propertyID uuid.UUID) ([]models.PropertyLien, error)
	Update(ctx context.Context, property *models.Property) error
}

// ProductRepository defines methods for loan product repository
type ProductRepository interface {
	Create(ctx context.Context, product *models.LoanProduct) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LoanProduct, error)
	GetByName(ctx context.Context, name string) (*models.LoanProduct, error)
	List(ctx context.Context, activeOnly bool) ([]*models.LoanProduct, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// LoanRepository defines methods for loan repository
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	// GetByIDForUpdate locks the loan row until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	GetByStatuses(ctx context.Context, statuses []models.LoanStatus) ([]*models.Loan, error)
	List(ctx context.Context, filter models.LoanFilter) ([]*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	// NextSequence returns the next monthly sequence for loan numbers with the given prefix
	NextSequence(ctx context.Context, prefix string) (int, error)
}

// ScheduleRepository defines methods for payment schedule repository
type ScheduleRepository interface {
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*models.PaymentScheduleItem, error)
	ReplaceForLoan(ctx context.Context, loanID uuid.UUID, items []*models.PaymentScheduleItem) error
	Update(ctx context.Context, item *models.PaymentScheduleItem) error
	GetUnpaidDueBetween(ctx context.Context, from, to time.Time) ([]*models.PaymentScheduleItem, error)
}

// PaymentRepository defines methods for payment repository
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*models.Payment, error)
}

// CollectionRepository defines methods for collection action repository
type CollectionRepository interface {
	Create(ctx context.Context, action *models.CollectionAction) error
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*models.CollectionAction, error)
}

// DocumentRepository defines methods for document repository
type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*models.Document, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ExecutionStatus) error
}

// Repository is a composition of all repositories
type Repository struct {
	DB         *sql.DB
	Tx         TransactionManager
	User       UserRepository
	Borrower   BorrowerRepository
	Property   PropertyRepository
	Product    ProductRepository
	Loan       LoanRepository
	Schedule   ScheduleRepository
	Payment    PaymentRepository
	Collection CollectionRepository
	Document   DocumentRepository
}

// NewRepository creates a new repository with all sub-repositories
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		DB:         db,
		Tx:         postgres.NewTxManager(db),
		User:       postgres.NewUserRepository(db),
		Borrower:   postgres.NewBorrowerRepository(db),
		Property:   postgres.NewPropertyRepository(db),
		Product:    postgres.NewProductRepository(db),
		Loan:       postgres.NewLoanRepository(db),
		Schedule:   postgres.NewScheduleRepository(db),
		Payment:    postgres.NewPaymentRepository(db),
		Collection: postgres.NewCollectionRepository(db),
		Document:   postgres.NewDocumentRepository(db),
	}
}

// WithinTx runs fn inside a transaction
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.Tx.WithinTx(ctx, fn)
}
