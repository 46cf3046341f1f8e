package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentType defines the kind of loan document
type DocumentType string

const (
	DocumentMutuoMercantil     DocumentType = "MutuoMercantil"
	DocumentPagare             DocumentType = "Pagare"
	DocumentPromesaCompraventa DocumentType = "PromesaCompraventa"
	DocumentAnnex              DocumentType = "Annex"
	DocumentDPICopy            DocumentType = "DPICopy"
	DocumentProofOfIncome      DocumentType = "ProofOfIncome"
	DocumentPropertyTitle      DocumentType = "PropertyTitle"
	DocumentAppraisal          DocumentType = "Appraisal"
	DocumentOther              DocumentType = "Other"
)

// ExecutionStatus tracks signing of a document
type ExecutionStatus string

const (
	ExecutionPending  ExecutionStatus = "Pending"
	ExecutionUploaded ExecutionStatus = "Uploaded"
	ExecutionSent     ExecutionStatus = "Sent"
	ExecutionExecuted ExecutionStatus = "Executed"
	ExecutionRejected ExecutionStatus = "Rejected"
)

// RequiredDocument is a document type that must be executed before disbursement
type RequiredDocument struct {
	Type        DocumentType
	Name        string
	Description string
}

// RequiredDocuments are the legal documents every loan needs before activation
var RequiredDocuments = []RequiredDocument{
	{Type: DocumentMutuoMercantil, Name: "Mutuo Mercantil", Description: "Loan agreement contract"},
	{Type: DocumentPagare, Name: "Pagaré", Description: "Promissory note"},
	{Type: DocumentPromesaCompraventa, Name: "Promesa de Compraventa", Description: "Property sale promise agreement"},
}

// Document holds the metadata of a loan document. File storage is handled elsewhere.
type Document struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	LoanID          uuid.UUID       `json:"loan_id" db:"loan_id"`
	DocumentType    DocumentType    `json:"document_type" db:"document_type"`
	Name            string          `json:"name" db:"name"`
	ExecutionStatus ExecutionStatus `json:"execution_status" db:"execution_status"`
	UploadedBy      uuid.UUID       `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// DocumentCreate represents document registration data
type DocumentCreate struct {
	DocumentType DocumentType `json:"document_type"`
	Name         string       `json:"name"`
}

// Validate validates document registration data
func (d *DocumentCreate) Validate() error {
	var reasons []string
	if !d.DocumentType.Valid() {
		reasons = append(reasons, fmt.Sprintf("unknown document type %q", d.DocumentType))
	}
	if d.Name == "" {
		reasons = append(reasons, "name is required")
	}
	return newValidationError(reasons)
}

// Valid reports whether t is a known document type
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentMutuoMercantil, DocumentPagare, DocumentPromesaCompraventa, DocumentAnnex,
		DocumentDPICopy, DocumentProofOfIncome, DocumentPropertyTitle, DocumentAppraisal, DocumentOther:
		return true
	}
	return false
}

// Valid reports whether s is a known execution status
func (s ExecutionStatus) Valid() bool {
	switch s {
	case ExecutionPending, ExecutionUploaded, ExecutionSent, ExecutionExecuted, ExecutionRejected:
		return true
	}
	return false
}

// ChecklistItem reports the state of one required document
type ChecklistItem struct {
	Type        DocumentType `json:"type"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	IsComplete  bool         `json:"is_complete"`
	Document    *Document    `json:"document,omitempty"`
}

// findDocument returns the first document of the given type
func (l *Loan) findDocument(t DocumentType) *Document {
	for _, doc := range l.Documents {
		if doc.DocumentType == t {
			return doc
		}
	}
	return nil
}

// DocumentChecklist lists the required documents and their execution state
func (l *Loan) DocumentChecklist() []ChecklistItem {
	checklist := make([]ChecklistItem, 0, len(RequiredDocuments))
	for _, req := range RequiredDocuments {
		item := ChecklistItem{
			Type:        req.Type,
			Name:        req.Name,
			Description: req.Description,
			Status:      "Not Uploaded",
		}
		if doc := l.findDocument(req.Type); doc != nil {
			item.Status = string(doc.ExecutionStatus)
			item.IsComplete = doc.ExecutionStatus == ExecutionExecuted
			item.Document = doc
		}
		checklist = append(checklist, item)
	}
	return checklist
}

// AllDocumentsComplete reports whether every required document is executed
func (l *Loan) AllDocumentsComplete() bool {
	for _, item := range l.DocumentChecklist() {
		if !item.IsComplete {
			return false
		}
	}
	return true
}
