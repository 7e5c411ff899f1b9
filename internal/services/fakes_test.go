package services

import (
	"context"
	"sort"
	"time"

	"github.com/escrow-platform/backend/internal/errs"
	"github.com/escrow-platform/backend/internal/events"
	"github.com/escrow-platform/backend/internal/models"
	"github.com/escrow-platform/backend/internal/repositories"
)

// In-memory store fakes shared by the service tests.

type fakeUserStore struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*models.User), nextID: 1}
}

func (s *fakeUserStore) add(email, role string) *models.User {
	u := &models.User{
		ID:        s.nextID,
		Email:     email,
		Username:  email,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now().Add(-48 * time.Hour),
		UpdatedAt: time.Now(),
	}
	s.users[u.ID] = u
	s.nextID++
	return u
}

func (s *fakeUserStore) Create(_ context.Context, u *models.User) error {
	u.ID = s.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	s.users[u.ID] = u
	s.nextID++
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errs.NotFoundf("user %d not found", id)
	}
	return u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errs.NotFoundf("user %s not found", email)
}

func (s *fakeUserStore) CountByEmail(_ context.Context, email string) (int, error) {
	n := 0
	for _, u := range s.users {
		if u.Email == email {
			n++
		}
	}
	return n, nil
}

type fakeDealStore struct {
	users  *fakeUserStore
	deals  map[int64]*models.Deal
	nextID int64
}

func newFakeDealStore(users *fakeUserStore) *fakeDealStore {
	return &fakeDealStore{users: users, deals: make(map[int64]*models.Deal), nextID: 1}
}

func (s *fakeDealStore) Create(_ context.Context, d *models.Deal) error {
	d.ID = s.nextID
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	cp := *d
	s.deals[d.ID] = &cp
	s.nextID++
	return nil
}

func (s *fakeDealStore) GetByID(_ context.Context, id int64) (*models.Deal, error) {
	d, ok := s.deals[id]
	if !ok {
		return nil, errs.NotFoundf("deal %d not found", id)
	}
	cp := *d
	return &cp, nil
}

func (s *fakeDealStore) GetByIDWithParties(ctx context.Context, id int64) (*models.DealWithParties, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &models.DealWithParties{Deal: *d}
	if u, ok := s.users.users[d.BuyerID]; ok {
		out.BuyerEmail = u.Email
	}
	if u, ok := s.users.users[d.SellerID]; ok {
		out.SellerEmail = u.Email
	}
	return out, nil
}

func (s *fakeDealStore) List(ctx context.Context, f repositories.DealFilter) ([]models.DealWithParties, error) {
	var ids []int64
	for id := range s.deals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []models.DealWithParties
	for _, id := range ids {
		d := s.deals[id]
		if f.Status != nil && d.Status != *f.Status {
			continue
		}
		if f.UserID != nil && d.BuyerID != *f.UserID && d.SellerID != *f.UserID {
			continue
		}
		dp, err := s.GetByIDWithParties(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *dp)
	}
	return out, nil
}

func (s *fakeDealStore) UpdateStatus(_ context.Context, id int64, status string) error {
	d, ok := s.deals[id]
	if !ok {
		return errs.NotFoundf("deal %d not found", id)
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	return nil
}

func (s *fakeDealStore) Resolve(_ context.Context, id int64, status string, resolverID int64) error {
	d, ok := s.deals[id]
	if !ok {
		return errs.NotFoundf("deal %d not found", id)
	}
	now := time.Now()
	d.Status = status
	d.ResolvedBy = &resolverID
	d.ResolvedAt = &now
	d.UpdatedAt = now
	return nil
}

func (s *fakeDealStore) CountRecentByUser(_ context.Context, userID int64, since time.Time) (int, error) {
	n := 0
	for _, d := range s.deals {
		if (d.BuyerID == userID || d.SellerID == userID) && !d.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type fakePaymentStore struct {
	payments []*models.Payment
	nextID   int64
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{nextID: 1}
}

func (s *fakePaymentStore) Create(_ context.Context, p *models.Payment) error {
	p.ID = s.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	cp := *p
	s.payments = append(s.payments, &cp)
	s.nextID++
	return nil
}

func (s *fakePaymentStore) LatestByDealAndStatus(_ context.Context, dealID int64, status string) (*models.Payment, error) {
	for i := len(s.payments) - 1; i >= 0; i-- {
		p := s.payments[i]
		if p.DealID == dealID && p.Status == status {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errs.NotFoundf("no %s payment found for deal %d", status, dealID)
}

func (s *fakePaymentStore) LatestByDeal(_ context.Context, dealID int64) (*models.Payment, error) {
	for i := len(s.payments) - 1; i >= 0; i-- {
		if s.payments[i].DealID == dealID {
			cp := *s.payments[i]
			return &cp, nil
		}
	}
	return nil, errs.NotFoundf("no payment found for deal %d", dealID)
}

func (s *fakePaymentStore) FindByProviderAndDeal(_ context.Context, providerPaymentID string, dealID int64) (*models.Payment, error) {
	for i := len(s.payments) - 1; i >= 0; i-- {
		p := s.payments[i]
		if p.ProviderPaymentID == providerPaymentID && p.DealID == dealID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errs.NotFoundf("no payment found for provider id %s", providerPaymentID)
}

func (s *fakePaymentStore) ListByDeal(_ context.Context, dealID int64) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range s.payments {
		if p.DealID == dealID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakePaymentStore) ListAll(_ context.Context) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range s.payments {
		out = append(out, *p)
	}
	return out, nil
}

func (s *fakePaymentStore) UpdateStatus(_ context.Context, id int64, status string) error {
	for _, p := range s.payments {
		if p.ID == id {
			p.Status = status
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return errs.NotFoundf("payment %d not found", id)
}

func (s *fakePaymentStore) MarkCaptured(_ context.Context, id int64, providerTxID string) error {
	for _, p := range s.payments {
		if p.ID == id {
			p.Status = models.PaymentStatusCompleted
			p.ProviderTransactionID = &providerTxID
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return errs.NotFoundf("payment %d not found", id)
}

type fakeWebhookStore struct {
	events map[string]*models.WebhookEvent
	nextID int64
}

func newFakeWebhookStore() *fakeWebhookStore {
	return &fakeWebhookStore{events: make(map[string]*models.WebhookEvent), nextID: 1}
}

func (s *fakeWebhookStore) Create(_ context.Context, e *models.WebhookEvent) error {
	e.ID = s.nextID
	e.CreatedAt = time.Now()
	s.events[e.EventID] = e
	s.nextID++
	return nil
}

func (s *fakeWebhookStore) GetByEventID(_ context.Context, eventID string) (*models.WebhookEvent, error) {
	e, ok := s.events[eventID]
	if !ok {
		return nil, nil
	}
	return e, nil
}

func (s *fakeWebhookStore) MarkProcessed(_ context.Context, id int64) error {
	now := time.Now()
	for _, e := range s.events {
		if e.ID == id {
			e.Processed = true
			e.ProcessedAt = &now
			return nil
		}
	}
	return errs.NotFoundf("webhook event %d not found", id)
}

type fakeAuditStore struct {
	entries []models.AuditLog
	err     error
}

func (s *fakeAuditStore) Log(_ context.Context, entry models.AuditLog) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeAuditStore) GetByEntity(_ context.Context, entity string, entityID int64, _, _ int) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for _, e := range s.entries {
		if e.Entity == entity && e.EntityID != nil && *e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeAuditStore) actions() []string {
	var out []string
	for _, e := range s.entries {
		out = append(out, e.Action)
	}
	return out
}

func (s *fakeAuditStore) hasAction(action string) bool {
	for _, e := range s.entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

type fakePublisher struct {
	published []events.Event
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, _ string, event events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, event)
	return nil
}

func (p *fakePublisher) types() []string {
	var out []string
	for _, e := range p.published {
		out = append(out, e.Type)
	}
	return out
}
