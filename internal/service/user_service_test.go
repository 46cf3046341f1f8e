package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"lending-service/internal/models"
)

func TestUserRegisterAndLogin(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	reg := &models.UserRegistration{Email: "officer@example.com", Password: "Secret123", FullName: "Loan Officer"}
	id, err := env.svc.User.Register(ctx, reg)
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}

	_, err = env.svc.User.Register(ctx, &models.UserRegistration{Email: "officer@example.com", Password: "Secret123", FullName: "Other"})
	if !errors.Is(err, models.ErrAlreadyExists) {
		t.Errorf("Expected duplicate email to be refused, got %v", err)
	}

	_, err = env.svc.User.Register(ctx, &models.UserRegistration{Email: "weak@example.com", Password: "short", FullName: "Weak"})
	if !errors.Is(err, models.ErrValidationFailed) {
		t.Errorf("Expected weak password to be refused, got %v", err)
	}

	if _, err := env.svc.User.Login(ctx, &models.UserLogin{Email: "officer@example.com", Password: "wrong"}); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("Expected invalid credentials, got %v", err)
	}

	token, err := env.svc.User.Login(ctx, &models.UserLogin{Email: "officer@example.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("Failed to login: %v", err)
	}

	parsed, err := jwt.Parse(token.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		t.Fatalf("Failed to parse token: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["user_id"] != id.String() {
		t.Errorf("Expected user_id claim %s, got %v", id, claims["user_id"])
	}

	user, err := env.svc.User.GetByID(ctx, id)
	if err != nil || user.PassHash != "" {
		t.Errorf("Expected user without password hash, got %+v (%v)", user, err)
	}
}

func TestProductSeed(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first := env.seedProduct(t)

	products := []*models.LoanProduct{
		{Name: first.Name, MinAmount: first.MinAmount, MaxAmount: first.MaxAmount, MinTermMonths: 3, MaxTermMonths: 6,
			InterestRate: first.InterestRate, MaxLTV: first.MaxLTV, LateFeeRate: first.LateFeeRate, IsActive: true},
		{Name: "Premium Land Loan", MinAmount: first.MinAmount, MaxAmount: first.MaxAmount, MinTermMonths: 3, MaxTermMonths: 6,
			InterestRate: first.InterestRate, MaxLTV: first.MaxLTV, LateFeeRate: first.LateFeeRate, IsActive: true},
	}

	added, err := env.svc.Product.Seed(ctx, products)
	if err != nil || added != 1 {
		t.Fatalf("Expected one product added, got %d (%v)", added, err)
	}

	if err := env.svc.Product.SetActive(ctx, first.ID, false); err != nil {
		t.Fatalf("Failed to deactivate: %v", err)
	}
	active, _ := env.svc.Product.List(ctx, true)
	if len(active) != 1 || active[0].Name != "Premium Land Loan" {
		t.Errorf("Expected only the premium product active, got %d", len(active))
	}

	if err := env.svc.Product.Create(ctx, products[1]); !errors.Is(err, models.ErrAlreadyExists) {
		t.Errorf("Expected duplicate product to be refused, got %v", err)
	}
}

func TestBorrowerProperties(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	borrower := env.seedBorrower(t, false)
	env.seedProperty(t, borrower.ID, 300000, false)

	properties, err := env.svc.Borrower.Properties(ctx, borrower.ID)
	if err != nil || len(properties) != 1 {
		t.Fatalf("Expected one property, got %d (%v)", len(properties), err)
	}

	loan := env.draftLoan(t, false)
	property, err := env.svc.Property.GetByID(ctx, loan.PropertyID)
	if err != nil || len(property.Liens) != 1 || property.Liens[0].LoanNumber != loan.LoanNumber {
		t.Errorf("Expected the loan as a lien, got %+v (%v)", property, err)
	}
}
