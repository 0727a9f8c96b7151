// Package service orchestrates a quoting attempt from consent to the merged,
// displayable offer set.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strconv"
	"strings"

	"insurance_portal_backend/internal/events"
	"insurance_portal_backend/internal/offers/aggregate"
	"insurance_portal_backend/internal/offers/batch"
	"insurance_portal_backend/internal/offers/compare"
	"insurance_portal_backend/internal/offers/domain"
	"insurance_portal_backend/internal/offers/eligibility"
	"insurance_portal_backend/internal/offers/pricing"
	"insurance_portal_backend/internal/offers/repository"
	"insurance_portal_backend/internal/offers/session"
	"insurance_portal_backend/platform/apperr"
	"insurance_portal_backend/platform/logger"
	"insurance_portal_backend/platform/phone"
)

const (
	msgSuperseded      = "quoting session was superseded by a newer one"
	msgSnapshotMissing = "offers not found"
)

// ConsentGate ensures a consent exists; it never fails.
type ConsentGate interface {
	Ensure(ctx context.Context, applicant domain.Applicant, family domain.ProductFamily)
}

// OrderCreator opens quoting sessions.
type OrderCreator interface {
	Create(ctx context.Context, applicant domain.Applicant, family domain.ProductFamily, details map[string]any) (domain.Order, error)
}

// EligibilityFilter narrows candidate products.
type EligibilityFilter interface {
	Filter(ctx context.Context, order domain.Order, candidates []string, risk map[string]any) eligibility.Result
}

// Input is everything a quoting attempt depends on. Nothing is read from
// ambient state.
type Input struct {
	PassID    string
	Applicant domain.Applicant
	Details   map[string]any
}

// Result is the outcome of a quoting attempt.
type Result struct {
	Order     domain.Order
	Offers    []domain.Offer
	Vendors   []aggregate.VendorGroup
	Ancillary *domain.Offer
}

// Service runs the offer pipeline.
type Service struct {
	consent  ConsentGate
	orders   OrderCreator
	registry session.Registry
	filter   EligibilityFilter
	batch    *batch.Batch
	repo     repository.Repository
	pricing  *pricing.Config
	events   events.Bus
	phones   *phone.Normalizer
	log      *logger.Logger
}

// Deps groups the collaborators of the service.
type Deps struct {
	Consent  ConsentGate
	Orders   OrderCreator
	Registry session.Registry
	Filter   EligibilityFilter
	Batch    *batch.Batch
	Repo     repository.Repository
	Pricing  *pricing.Config
	Events   events.Bus
	Phones   *phone.Normalizer
	Log      *logger.Logger
}

// New creates the offers service. Repo may be nil, in which case snapshots
// are not stored. Events may be nil. Phones defaults to the Romanian region.
func New(deps Deps) *Service {
	phones := deps.Phones
	if phones == nil {
		phones = phone.New(phone.DefaultRegion)
	}
	return &Service{
		phones:   phones,
		consent:  deps.Consent,
		orders:   deps.Orders,
		registry: deps.Registry,
		filter:   deps.Filter,
		batch:    deps.Batch,
		repo:     deps.Repo,
		pricing:  deps.Pricing,
		events:   deps.Events,
		log:      deps.Log,
	}
}

// CreateOrderAndOffers is the single entry point shared by every product.
// Only order creation failures block; every product-level problem ends up
// as a placeholder or an estimate in the result.
func (s *Service) CreateOrderAndOffers(ctx context.Context, in Input, product Product) (*Result, error) {
	family := product.Family()

	orderDetails, err := product.OrderDetails(in.Details)
	if err != nil {
		return nil, err
	}

	applicant, err := s.checkPhone(in.Applicant)
	if err != nil {
		return nil, err
	}
	in.Applicant = applicant

	s.consent.Ensure(ctx, in.Applicant, family)

	order, err := s.orders.Create(ctx, in.Applicant, family, orderDetails)
	if err != nil {
		return nil, err
	}

	ctx = context.WithValue(ctx, logger.OrderIDKey, strconv.FormatInt(order.ID, 10))
	log := s.log.WithContext(ctx)

	activated := true
	if err := s.registry.Activate(ctx, in.PassID, order); err != nil {
		log.Warn("failed to activate order for pass, skipping supersession check", "error", err, "pass_id", in.PassID)
		activated = false
	}

	bodies, err := product.FetchBodies(ctx, order, in.Details)
	if err != nil {
		return nil, err
	}

	eligible, rejections := s.screen(ctx, order, bodies, in.Details, product)
	batchResult := s.batch.RequestAll(ctx, order, eligible, product)
	offers := aggregate.Merge(batchResult.Offers, rejections, batchResult.Dropped)

	var ancillary *domain.Offer
	if bundled, ok := product.(Bundled); ok {
		ancillary = s.resolveAncillary(ctx, order, in.Details, bundled)
	}

	if activated && !s.isCurrent(ctx, in.PassID, order.ID) {
		log.Info("discarding results of superseded order", "pass_id", in.PassID)
		s.publish(ctx, events.OrderSuperseded{BaseEvent: events.ForOrder(order.ID), OrderID: order.ID, PassID: in.PassID})
		return nil, apperr.Gone(msgSuperseded).WithOp("offers.CreateOrderAndOffers")
	}

	if s.repo != nil {
		snapshot := repository.Snapshot{Order: order, PassID: in.PassID, Offers: offers, Ancillary: ancillary}
		if err := s.repo.SaveSnapshot(ctx, snapshot); err != nil {
			log.DatabaseError("save offer snapshot", err)
		}
	}

	log.Info("offers aggregated", "family", family, "bodies", len(bodies), "offers", len(offers), "dropped", len(batchResult.Dropped))
	s.publish(ctx, quotedEvent(order, family, offers, len(batchResult.Dropped), ancillary))
	return &Result{
		Order:     order,
		Offers:    offers,
		Vendors:   aggregate.GroupByVendor(offers),
		Ancillary: ancillary,
	}, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events != nil {
		s.events.Publish(ctx, event)
	}
}

func quotedEvent(order domain.Order, family domain.ProductFamily, offers []domain.Offer, dropped int, ancillary *domain.Offer) events.OffersQuoted {
	event := events.OffersQuoted{
		BaseEvent: events.ForOrder(order.ID),
		OrderID:   order.ID,
		Family:    string(family),
		Dropped:   dropped,
	}
	for _, offer := range offers {
		if offer.IsPlaceholder() {
			event.Unavailable++
		} else if offer.IsAvailable() {
			event.Confirmed++
		}
	}
	if ancillary != nil {
		event.AncillaryStatus = string(ancillary.Status)
	}
	return event
}

// screen splits bodies into eligible ones and ineligible placeholders, one
// per rejected product.
func (s *Service) screen(ctx context.Context, order domain.Order, bodies []domain.ProductRequestBody, details map[string]any, product Product) ([]domain.ProductRequestBody, []domain.Offer) {
	screened, ok := product.(EligibilityScreened)
	if !ok || s.filter == nil {
		return bodies, nil
	}

	candidates := make([]string, 0, len(bodies))
	seen := make(map[string]struct{}, len(bodies))
	for _, body := range bodies {
		if _, ok := seen[body.ProductID]; ok {
			continue
		}
		seen[body.ProductID] = struct{}{}
		candidates = append(candidates, body.ProductID)
	}

	result := s.filter.Filter(ctx, order, candidates, screened.RiskProfile(details))

	eligible := make([]domain.ProductRequestBody, 0, len(bodies))
	rejections := make([]domain.Offer, 0, len(result.Rejected))
	placed := make(map[string]struct{}, len(result.Rejected))
	for _, body := range bodies {
		reason, rejected := result.Rejected[body.ProductID]
		if !rejected {
			eligible = append(eligible, body)
			continue
		}
		if _, ok := placed[body.ProductID]; ok {
			continue
		}
		placed[body.ProductID] = struct{}{}
		rejections = append(rejections, domain.Unavailable(body, domain.ReasonIneligible, reason))
	}
	return eligible, rejections
}

func (s *Service) resolveAncillary(ctx context.Context, order domain.Order, details map[string]any, bundled Bundled) *domain.Offer {
	body, ok := bundled.AncillaryBody(ctx, order, details)
	if !ok {
		return nil
	}

	if offer := bundled.AncillaryChain().Resolve(ctx, order, body); offer != nil {
		offer.MergeDisplay(body.VendorName, body.ProductName, "")
		return offer
	}

	estimate, ok := bundled.AncillaryEstimate(details)
	if !ok {
		s.log.WithContext(ctx).Warn("no estimate available for unconfirmed rider", "product_id", body.ProductID)
		return nil
	}
	if estimate.ProductID == "" {
		estimate.ProductID = body.ProductID
	}
	estimate.MergeDisplay(body.VendorName, body.ProductName, "")
	return &estimate
}

// checkPhone requires individuals to be reachable on a mobile number of the
// home region. Company numbers are only normalized.
func (s *Service) checkPhone(applicant domain.Applicant) (domain.Applicant, error) {
	if applicant.LegalType != domain.LegalIndividual {
		applicant.Phone = s.phones.E164(applicant.Phone)
		return applicant, nil
	}
	mobile, err := s.phones.Mobile(applicant.Phone)
	if err != nil {
		return applicant, apperr.Validation("applicant phone must be a mobile number").
			WithOp("offers.CreateOrderAndOffers").
			WithDetails(map[string]string{"field": "applicant.phone", "region": s.phones.Region()})
	}
	applicant.Phone = mobile
	return applicant, nil
}

// isCurrent fails open: the registry is a UI guard, and losing it must not
// block quoting.
func (s *Service) isCurrent(ctx context.Context, passID string, orderID int64) bool {
	current, err := s.registry.IsCurrent(ctx, passID, orderID)
	if err != nil {
		s.log.WithContext(ctx).Warn("failed to check current order, assuming current", "error", err)
		return true
	}
	return current
}

// GetSnapshot returns a stored offer set. The order hash is the capability
// token; a wrong hash is reported as not found.
func (s *Service) GetSnapshot(ctx context.Context, orderID int64, hash string) (*Result, error) {
	if s.repo == nil {
		return nil, apperr.NotFound(msgSnapshotMissing)
	}

	snapshot, err := s.repo.GetSnapshot(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(msgSnapshotMissing)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load offers", err).WithOp("offers.GetSnapshot")
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(hash)), []byte(snapshot.Order.Hash)) != 1 {
		return nil, apperr.NotFound(msgSnapshotMissing)
	}
	if snapshot.Status == repository.StatusSuperseded {
		return nil, apperr.Gone(msgSuperseded).WithOp("offers.GetSnapshot")
	}

	return &Result{
		Order:     snapshot.Order,
		Offers:    snapshot.Offers,
		Vendors:   aggregate.GroupByVendor(snapshot.Offers),
		Ancillary: snapshot.Ancillary,
	}, nil
}

// Compare builds the comparison grid of a stored offer set for one tab.
func (s *Service) Compare(ctx context.Context, orderID int64, hash, tabID string) (*compare.Grid, error) {
	tab, ok := s.pricing.Tab(tabID)
	if !ok {
		return nil, apperr.Validation("unknown comparison tab").WithDetails(map[string]any{"tab": tabID})
	}

	result, err := s.GetSnapshot(ctx, orderID, hash)
	if err != nil {
		return nil, err
	}

	grid := compare.Build(result.Vendors, tab)
	return &grid, nil
}

// Tabs returns the configured comparison tabs.
func (s *Service) Tabs() []pricing.Tab {
	return s.pricing.Tabs
}
