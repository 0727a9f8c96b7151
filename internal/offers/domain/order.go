package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProductFamily groups insurer products sold through the same wizard.
type ProductFamily string

const (
	FamilyRCA       ProductFamily = "rca"
	FamilyCASCO     ProductFamily = "casco"
	FamilyPAD       ProductFamily = "pad"
	FamilyHouse     ProductFamily = "house"
	FamilyMalpraxis ProductFamily = "malpraxis"
	FamilyGarantii  ProductFamily = "garantii"
)

// Families lists every supported product family.
var Families = []ProductFamily{FamilyRCA, FamilyCASCO, FamilyPAD, FamilyHouse, FamilyMalpraxis, FamilyGarantii}

// ParseFamily validates a family name.
func ParseFamily(value string) (ProductFamily, error) {
	candidate := ProductFamily(strings.ToLower(strings.TrimSpace(value)))
	for _, family := range Families {
		if family == candidate {
			return family, nil
		}
	}
	return "", fmt.Errorf("unknown product family %q", value)
}

// LegalType distinguishes natural persons from companies.
type LegalType string

const (
	LegalIndividual LegalType = "individual"
	LegalCompany    LegalType = "company"
)

// Address is the applicant's (or insured property's) postal address.
type Address struct {
	CountyID   int    `json:"countyId"`
	CityID     int    `json:"cityId"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Building   string `json:"building,omitempty"`
	Apartment  string `json:"apartment,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Applicant is the validated applicant supplied by the form layer.
// It is treated as immutable for the lifetime of a quoting session.
type Applicant struct {
	LegalType   LegalType `json:"legalType"`
	Identifier  string    `json:"identifier"` // CNP or CUI
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	CompanyName string    `json:"companyName,omitempty"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     Address   `json:"address"`
}

// DisplayName returns the name shown on summaries.
func (a Applicant) DisplayName() string {
	if a.LegalType == LegalCompany {
		return a.CompanyName
	}
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Order is a backend-issued quoting session.
type Order struct {
	ID        int64
	Hash      string
	Family    ProductFamily
	Applicant Applicant
	CreatedAt time.Time
}

// ProductRequestBody is the request for one candidate insurer product.
// It is immutable once built for a batch.
type ProductRequestBody struct {
	ProductID   string
	ProductName string
	VendorName  string
	StartDate   time.Time
	EndDate     time.Time
	Variant     *VariantKey
	Details     map[string]any
}

// Key identifies the body inside a batch: product id plus variant when present.
func (b ProductRequestBody) Key() string {
	return bodyKey(b.ProductID, b.Variant)
}
