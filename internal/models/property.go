package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyType defines the kind of real estate offered as collateral
type PropertyType string

const (
	PropertyTypeLand         PropertyType = "Land"
	PropertyTypeHouse        PropertyType = "House"
	PropertyTypeCommercial   PropertyType = "Commercial"
	PropertyTypeAgricultural PropertyType = "Agricultural"
)

// Property is a collateral asset registered to a borrower
type Property struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	BorrowerID     uuid.UUID       `json:"borrower_id" db:"borrower_id"`
	PropertyType   PropertyType    `json:"property_type" db:"property_type"`
	Finca          string          `json:"finca" db:"finca"`
	Folio          string          `json:"folio" db:"folio"`
	Libro          string          `json:"libro" db:"libro"`
	Department     string          `json:"department" db:"department"`
	Municipality   string          `json:"municipality" db:"municipality"`
	Address        string          `json:"address,omitempty" db:"address"`
	MarketValue    decimal.Decimal `json:"market_value" db:"market_value"`
	AppraisedValue decimal.Decimal `json:"appraised_value" db:"appraised_value"`
	Verified       bool            `json:"verified" db:"verified"`
	VerifiedBy     *uuid.UUID      `json:"verified_by,omitempty" db:"verified_by"`
	VerifiedAt     *time.Time      `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`

	// Liens lists every loan filed against the property
	Liens []PropertyLien `json:"liens,omitempty" db:"-"`
}

// PropertyLien is a loan secured by a property
type PropertyLien struct {
	LoanID     uuid.UUID  `json:"loan_id"`
	LoanNumber string     `json:"loan_number"`
	Status     LoanStatus `json:"status"`
}

// PropertyCreate represents collateral registration data
type PropertyCreate struct {
	BorrowerID     uuid.UUID       `json:"borrower_id"`
	PropertyType   PropertyType    `json:"property_type"`
	Finca          string          `json:"finca"`
	Folio          string          `json:"folio"`
	Libro          string          `json:"libro"`
	Department     string          `json:"department"`
	Municipality   string          `json:"municipality"`
	Address        string          `json:"address,omitempty"`
	MarketValue    decimal.Decimal `json:"market_value"`
	AppraisedValue decimal.Decimal `json:"appraised_value"`
}

// Validate validates collateral registration data
func (p *PropertyCreate) Validate() error {
	var reasons []string

	if p.BorrowerID == uuid.Nil {
		reasons = append(reasons, "borrower is required")
	}
	switch p.PropertyType {
	case "":
		p.PropertyType = PropertyTypeLand
	case PropertyTypeLand, PropertyTypeHouse, PropertyTypeCommercial, PropertyTypeAgricultural:
	default:
		reasons = append(reasons, fmt.Sprintf("unknown property type %q", p.PropertyType))
	}
	if strings.TrimSpace(p.Finca) == "" || strings.TrimSpace(p.Folio) == "" || strings.TrimSpace(p.Libro) == "" {
		reasons = append(reasons, "finca, folio and libro are required")
	}
	if strings.TrimSpace(p.Department) == "" || strings.TrimSpace(p.Municipality) == "" {
		reasons = append(reasons, "department and municipality are required")
	}
	if !p.MarketValue.IsPositive() {
		reasons = append(reasons, "market value must be positive")
	}

	return newValidationError(reasons)
}

// ToProperty converts PropertyCreate to Property
func (p *PropertyCreate) ToProperty() *Property {
	return &Property{
		ID:             uuid.New(),
		BorrowerID:     p.BorrowerID,
		PropertyType:   p.PropertyType,
		Finca:          strings.TrimSpace(p.Finca),
		Folio:          strings.TrimSpace(p.Folio),
		Libro:          strings.TrimSpace(p.Libro),
		Department:     p.Department,
		Municipality:   p.Municipality,
		Address:        p.Address,
		MarketValue:    p.MarketValue,
		AppraisedValue: p.AppraisedValue,
	}
}

// RegistryNumber renders the land registry reference
func (p *Property) RegistryNumber() string {
	return fmt.Sprintf("Finca %s, Folio %s, Libro %s", p.Finca, p.Folio, p.Libro)
}

// HasOtherActiveLoan reports whether a loan other than loanID is Active or Approved on the property
func (p *Property) HasOtherActiveLoan(loanID uuid.UUID) bool {
	for _, lien := range p.Liens {
		if lien.LoanID == loanID {
			continue
		}
		if lien.Status == LoanStatusActive || lien.Status == LoanStatusApproved {
			return true
		}
	}
	return false
}

// Verify marks the property as verified by legal
func (p *Property) Verify(by uuid.UUID, at time.Time) {
	p.Verified = true
	p.VerifiedBy = &by
	p.VerifiedAt = &at
}
