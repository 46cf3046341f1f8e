package models

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestFormatLoanNumber(t *testing.T) {
	number := FormatLoanNumber(date(2024, 1, 17), 7)
	if number != "ANC-202401-0007" {
		t.Errorf("Expected ANC-202401-0007, got %s", number)
	}
	if prefix := LoanNumberPrefix(date(2024, 11, 2)); prefix != "ANC-202411" {
		t.Errorf("Expected ANC-202411, got %s", prefix)
	}

	seq, err := ParseLoanNumberSequence(number)
	if err != nil || seq != 7 {
		t.Errorf("Expected sequence 7, got %d (%v)", seq, err)
	}

	if _, err := ParseLoanNumberSequence("ANC-202401-"); err == nil {
		t.Error("Expected error for malformed loan number")
	}
}

func TestNextLoanSequence(t *testing.T) {
	tests := []struct {
		name    string
		numbers []string
		want    int
	}{
		{"first of the month", nil, 1},
		{"unordered", []string{"ANC-202401-0002", "ANC-202401-0007", "ANC-202401-0003"}, 8},
		{"past four digits", []string{"ANC-202401-9999", "ANC-202401-10000", "ANC-202401-9998"}, 10001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextLoanSequence(tt.numbers)
			if err != nil || got != tt.want {
				t.Errorf("Expected %d, got %d (%v)", tt.want, got, err)
			}
		})
	}

	if FormatLoanNumber(date(2024, 1, 5), 10001) != "ANC-202401-10001" {
		t.Error("Expected five digit sequence to be kept")
	}
	if _, err := NextLoanSequence([]string{"ANC-202401-x"}); err == nil {
		t.Error("Expected error for malformed loan number")
	}
}

func TestCalculateLTV(t *testing.T) {
	if ltv := CalculateLTV(dec("100000"), dec("400000")); !ltv.Equal(dec("0.25")) {
		t.Errorf("Expected LTV 0.25, got %s", ltv)
	}
	if ltv := CalculateLTV(dec("100000"), dec("0")); !ltv.IsZero() {
		t.Errorf("Expected zero LTV for unknown value, got %s", ltv)
	}
}

func TestLoanRequest(t *testing.T) {
	product := reviewLoan().Product
	product.ID = uuid.New()

	req := &LoanRequest{
		BorrowerID: uuid.New(),
		PropertyID: uuid.New(),
		ProductID:  product.ID,
		Amount:     dec("100000"),
		TermMonths: 4,
	}
	if err := req.Validate(product); err != nil {
		t.Fatalf("Expected valid request, got %v", err)
	}

	collateral := &Property{ID: req.PropertyID, MarketValue: dec("500000")}
	loan := req.ToLoan(product, collateral, "ANC-202401-0001", uuid.New(), date(2024, 1, 3))

	if loan.Status != LoanStatusDraft {
		t.Errorf("Expected Draft loan, got %s", loan.Status)
	}
	if !loan.InterestRate.Equal(product.InterestRate) {
		t.Errorf("Expected product rate, got %s", loan.InterestRate)
	}
	if !loan.LTV.Equal(dec("0.2")) {
		t.Errorf("Expected LTV 0.2, got %s", loan.LTV)
	}
	if !loan.MonthlyInterest().Equal(dec("10000")) {
		t.Errorf("Expected monthly interest 10000, got %s", loan.MonthlyInterest())
	}

	bad := &LoanRequest{Amount: dec("-1"), TermMonths: 12}
	err := bad.Validate(product)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(verr.Reasons) != 4 {
		t.Errorf("Expected 4 reasons, got %v", verr.Reasons)
	}
}

func TestLoanProductValidate(t *testing.T) {
	product := reviewLoan().Product
	if err := product.Validate(); err != nil {
		t.Errorf("Expected valid product, got %v", err)
	}

	product.MaxAmount = dec("1")
	product.MaxLTV = dec("1.5")
	if err := product.Validate(); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Expected validation failure, got %v", err)
	}
}

func TestBorrowerMaskedDPI(t *testing.T) {
	b := &Borrower{DPI: "1234567890101"}
	if masked := b.MaskedDPI(); masked != "*********0101" {
		t.Errorf("Expected *********0101, got %s", masked)
	}
}
