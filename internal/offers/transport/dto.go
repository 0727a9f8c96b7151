// Package transport holds the wire types of the offers module.
package transport

import (
	"github.com/shopspring/decimal"
)

// Request DTOs

type AddressRequest struct {
	CountyID   int    `json:"countyId" validate:"required,min=1"`
	CityID     int    `json:"cityId" validate:"required,min=1"`
	Street     string `json:"street" validate:"required,notblank,max=200"`
	Number     string `json:"number" validate:"required,notblank,max=20"`
	Building   string `json:"building,omitempty" validate:"omitempty,max=20"`
	Apartment  string `json:"apartment,omitempty" validate:"omitempty,max=20"`
	PostalCode string `json:"postalCode,omitempty" validate:"omitempty,numeric,len=6"`
}

type ApplicantRequest struct {
	LegalType   string         `json:"legalType" validate:"required,oneof=individual company"`
	Identifier  string         `json:"identifier" validate:"required,alphanum,min=2,max=13"`
	FirstName   string         `json:"firstName,omitempty" validate:"required_if=LegalType individual,max=100"`
	LastName    string         `json:"lastName,omitempty" validate:"required_if=LegalType individual,max=100"`
	CompanyName string         `json:"companyName,omitempty" validate:"required_if=LegalType company,max=200"`
	Email       string         `json:"email" validate:"required,email"`
	Phone       string         `json:"phone" validate:"required,min=5,max=20"`
	Address     AddressRequest `json:"address" validate:"required"`
}

// CreateOffersRequest starts a quoting attempt. PassID identifies the
// wizard pass; a newer attempt with the same pass supersedes older ones.
type CreateOffersRequest struct {
	PassID    string           `json:"passId" validate:"required,uuid"`
	Applicant ApplicantRequest `json:"applicant" validate:"required"`
	Details   map[string]any   `json:"details" validate:"required"`
}

type SnapshotQuery struct {
	Hash string `form:"hash" validate:"required,notblank,max=128"`
}

type CompareQuery struct {
	Hash string `form:"hash" validate:"required,notblank,max=128"`
	Tab  string `form:"tab" validate:"required,max=32"`
}

// Response DTOs

type VariantResponse struct {
	DurationMonths int    `json:"durationMonths"`
	Settlement     string `json:"settlement"`
}

type InstallmentResponse struct {
	Number  int             `json:"number"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"dueDate,omitempty"`
}

// OfferResponse keeps the legacy isError flag next to the tagged status.
type OfferResponse struct {
	ID           int64                 `json:"id"`
	Key          string                `json:"key"`
	ProductID    string                `json:"productId"`
	ProductName  string                `json:"productName,omitempty"`
	VendorName   string                `json:"vendorName,omitempty"`
	VendorLogo   string                `json:"vendorLogo,omitempty"`
	Status       string                `json:"status"`
	Reason       string                `json:"reason,omitempty"`
	IsError      bool                  `json:"isError"`
	Message      string                `json:"message,omitempty"`
	Premium      decimal.Decimal       `json:"premium"`
	TotalPremium *decimal.Decimal      `json:"totalPremium,omitempty"`
	Currency     string                `json:"currency,omitempty"`
	Installments []InstallmentResponse `json:"installments,omitempty"`
	Coverage     map[string]any        `json:"coverage,omitempty"`
	Variant      *VariantResponse      `json:"variant,omitempty"`
}

type VendorGroupResponse struct {
	VendorName   string          `json:"vendorName"`
	VendorLogo   string          `json:"vendorLogo,omitempty"`
	HasLivePrice bool            `json:"hasLivePrice"`
	Offers       []OfferResponse `json:"offers"`
}

type OrderResponse struct {
	ID              int64  `json:"id"`
	Hash            string `json:"hash"`
	Family          string `json:"family"`
	ApplicantName   string `json:"applicantName"`
	ApplicantMasked string `json:"applicantIdentifier"`
}

type OffersResponse struct {
	Order     OrderResponse         `json:"order"`
	Vendors   []VendorGroupResponse `json:"vendors"`
	Ancillary *OfferResponse        `json:"ancillary,omitempty"`
	// AncillaryEstimated tells the UI to label the rider price as indicative.
	AncillaryEstimated bool `json:"ancillaryEstimated"`
	Total              int  `json:"total"`
}

type GridColumnResponse struct {
	Variant  VariantResponse  `json:"variant"`
	Cheapest *decimal.Decimal `json:"cheapest,omitempty"`
}

type GridCellResponse struct {
	Variant VariantResponse `json:"variant"`
	Offer   *OfferResponse  `json:"offer,omitempty"`
	Best    bool            `json:"best"`
}

type GridRowResponse struct {
	VendorName string             `json:"vendorName"`
	VendorLogo string             `json:"vendorLogo,omitempty"`
	Cells      []GridCellResponse `json:"cells"`
}

type GridResponse struct {
	Tab     string               `json:"tab"`
	Label   string               `json:"label"`
	Columns []GridColumnResponse `json:"columns"`
	Rows    []GridRowResponse    `json:"rows"`
}

type TabResponse struct {
	ID      string            `json:"id"`
	Label   string            `json:"label"`
	Columns []VariantResponse `json:"columns"`
}
