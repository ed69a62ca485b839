package main

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"mazad-client/models"
)

// mockUser is a registered account in the in-memory store.
type mockUser struct {
	ID        string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// store 는 목 서버의 전체 상태를 담는 인메모리 저장소다. 프로세스가 죽으면
// 전부 사라진다. 모든 접근은 mu 로 직렬화된다.
type store struct {
	mu         sync.Mutex
	users      map[string]*mockUser // keyed by email
	categories []models.Category
	auctions   map[string]*models.Auction
	offers     map[string][]models.Offer  // keyed by auction id
	autoBids   map[string]models.AutoBid  // keyed by auctionID+"|"+userID
	chats      map[string]*models.Chat    // keyed by chat id
	messages   map[string][]models.ChatMessage
	identities []models.Identity
	plans      []models.SubscriptionPlan
	payments   map[string]*models.Payment
	terms      []models.Terms
}

func newStore() *store {
	s := &store{
		users:    make(map[string]*mockUser),
		auctions: make(map[string]*models.Auction),
		offers:   make(map[string][]models.Offer),
		autoBids: make(map[string]models.AutoBid),
		chats:    make(map[string]*models.Chat),
		messages: make(map[string][]models.ChatMessage),
		payments: make(map[string]*models.Payment),
	}
	s.seed()
	return s
}

// seed 는 클라이언트 개발에 필요한 최소 데이터를 채운다: 관리자 계정과
// 신원, 카테고리 트리, 구독 플랜, 약관 한 건.
func (s *store) seed() {
	s.users["admin@mazad.local"] = &mockUser{
		ID:        "admin",
		Email:     "admin@mazad.local",
		Password:  "admin1234",
		FirstName: "Support",
		LastName:  "Admin",
		Role:      models.RoleAdmin,
	}
	s.identities = append(s.identities, models.Identity{
		ID:        "admin",
		UserID:    "admin",
		Role:      models.RoleAdmin,
		Status:    "active",
		CreatedAt: time.Now(),
	})

	electronics := models.Category{ID: uuid.New().String(), Name: "Electronics"}
	phones := models.Category{ID: uuid.New().String(), Name: "Phones", ParentID: electronics.ID}
	vehicles := models.Category{ID: uuid.New().String(), Name: "Vehicles"}
	s.categories = []models.Category{electronics, phones, vehicles}

	s.plans = []models.SubscriptionPlan{
		{ID: uuid.New().String(), Name: "Basic", Price: 0, DurationDays: 30, IsActive: true},
		{ID: uuid.New().String(), Name: "Pro", Price: 2900, DurationDays: 30, Role: models.RoleReseller, IsActive: true},
	}

	s.terms = []models.Terms{
		{ID: uuid.New().String(), Title: "Terms of Service", Content: "Be excellent to each other.", Version: 1, PublishedAt: time.Now()},
	}

	auction := &models.Auction{
		ID:            uuid.New().String(),
		Title:         "Vintage camera",
		Description:   "Working 35mm rangefinder",
		CategoryID:    electronics.ID,
		SellerID:      "admin",
		StartingPrice: 50,
		CurrentPrice:  50,
		EndingAt:      time.Now().Add(72 * time.Hour),
		CreatedAt:     time.Now(),
	}
	s.auctions[auction.ID] = auction
}

func (s *store) userByID(id string) (*mockUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

func (s *store) categoryList() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *store) categoryByID(id string) (models.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

func (s *store) auctionList() []models.Auction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Auction, 0, len(s.auctions))
	for _, a := range s.auctions {
		out = append(out, *a)
	}
	return out
}

func (s *store) auctionByID(id string) (models.Auction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return models.Auction{}, false
	}
	return *a, true
}

// addOffer 는 입찰을 기록하고 현재가를 끌어올린다.
func (s *store) addOffer(auctionID, userID string, price float64) (models.Offer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[auctionID]
	if !ok {
		return models.Offer{}, false
	}
	offer := models.Offer{
		ID:        uuid.New().String(),
		AuctionID: auctionID,
		UserID:    userID,
		Price:     price,
		CreatedAt: time.Now(),
	}
	s.offers[auctionID] = append(s.offers[auctionID], offer)
	if price > a.CurrentPrice {
		a.CurrentPrice = price
	}
	return offer, true
}

func (s *store) offersByAuction(auctionID string) []models.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()
	offers := s.offers[auctionID]
	out := make([]models.Offer, len(offers))
	copy(out, offers)
	return out
}

func (s *store) offersByUser(userID string) []models.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Offer
	for _, offers := range s.offers {
		for _, o := range offers {
			if o.UserID == userID {
				out = append(out, o)
			}
		}
	}
	return out
}

func (s *store) saveAutoBid(auctionID, userID string, maxPrice float64) models.AutoBid {
	s.mu.Lock()
	defer s.mu.Unlock()
	ab := models.AutoBid{
		ID:        uuid.New().String(),
		AuctionID: auctionID,
		UserID:    userID,
		MaxPrice:  maxPrice,
		CreatedAt: time.Now(),
	}
	s.autoBids[auctionID+"|"+userID] = ab
	return ab
}

func (s *store) autoBidsByAuction(auctionID string) []models.AutoBid {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AutoBid
	for _, ab := range s.autoBids {
		if ab.AuctionID == auctionID {
			out = append(out, ab)
		}
	}
	return out
}

func (s *store) autoBidFor(auctionID, userID string) (models.AutoBid, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ab, ok := s.autoBids[auctionID+"|"+userID]
	return ab, ok
}

func (s *store) identityList() []models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Identity, len(s.identities))
	copy(out, s.identities)
	return out
}

func (s *store) identityForUser(userID string) (models.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.identities {
		if id.UserID == userID {
			return id, true
		}
	}
	return models.Identity{}, false
}

func (s *store) upsertIdentity(identity models.Identity) models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.identities {
		if existing.UserID == identity.UserID {
			identity.ID = existing.ID
			identity.CreatedAt = existing.CreatedAt
			s.identities[i] = identity
			return identity
		}
	}
	identity.ID = uuid.New().String()
	identity.CreatedAt = time.Now()
	s.identities = append(s.identities, identity)
	return identity
}

func (s *store) planList() []models.SubscriptionPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SubscriptionPlan, len(s.plans))
	copy(out, s.plans)
	return out
}

func (s *store) planByID(id string) (models.SubscriptionPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.plans {
		if p.ID == id {
			return p, true
		}
	}
	return models.SubscriptionPlan{}, false
}

func (s *store) addPlan(plan models.SubscriptionPlan) models.SubscriptionPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan.ID = uuid.New().String()
	s.plans = append(s.plans, plan)
	return plan
}

func (s *store) updatePlan(plan models.SubscriptionPlan) (models.SubscriptionPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.plans {
		if p.ID == plan.ID {
			s.plans[i] = plan
			return plan, true
		}
	}
	return models.SubscriptionPlan{}, false
}

func (s *store) deletePlan(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.plans {
		if p.ID == id {
			s.plans = append(s.plans[:i], s.plans[i+1:]...)
			return true
		}
	}
	return false
}

func (s *store) createPayment(planID, userID string, amount float64) *models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Payment{
		ID:          uuid.New().String(),
		PlanID:      planID,
		UserID:      userID,
		Amount:      amount,
		Status:      models.PaymentPending,
		ProviderRef: "mock-" + uuid.New().String(),
		CreatedAt:   time.Now(),
	}
	p.RedirectURL = "/subscription/payment/" + p.ID + "/confirm"
	s.payments[p.ID] = p
	return p
}

func (s *store) paymentByID(id string) (models.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return models.Payment{}, false
	}
	return *p, true
}

func (s *store) paymentByRef(ref string) (models.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.ProviderRef == ref {
			return *p, true
		}
	}
	return models.Payment{}, false
}

// settlePayment moves a pending payment to its final status.
func (s *store) settlePayment(id, status string) (models.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return models.Payment{}, false
	}
	if p.Status == models.PaymentPending {
		p.Status = status
	}
	return *p, true
}

func (s *store) paymentStats() models.SubscriptionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stats models.SubscriptionStats
	for _, p := range s.payments {
		switch p.Status {
		case models.PaymentPending:
			stats.PendingPayments++
		case models.PaymentConfirmed:
			stats.ConfirmedPayments++
			stats.Revenue += p.Amount
		}
	}
	stats.ActiveSubscriptions = stats.ConfirmedPayments
	return stats
}

// cleanupPayments drops payments still pending after the cutoff.
func (s *store) cleanupPayments(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for id, p := range s.payments {
		if p.Status == models.PaymentPending && p.CreatedAt.Before(cutoff) {
			delete(s.payments, id)
			removed++
		}
	}
	return removed
}

func (s *store) termsList() []models.Terms {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Terms, len(s.terms))
	copy(out, s.terms)
	return out
}

func (s *store) latestTerms() (models.Terms, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.terms) == 0 {
		return models.Terms{}, false
	}
	latest := s.terms[0]
	for _, t := range s.terms[1:] {
		if t.Version > latest.Version {
			latest = t
		}
	}
	return latest, true
}

func (s *store) unreadCountFor(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, msgs := range s.messages {
		for _, m := range msgs {
			if m.ReceiverID == userID {
				count++
			}
		}
	}
	return count
}

func (s *store) findUserByEmail(email string) (*mockUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	return u, ok
}

func (s *store) createUser(email, password, firstName, lastName string) (*mockUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return nil, false
	}
	u := &mockUser{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleBuyer,
	}
	s.users[email] = u
	return u, true
}

func (s *store) chatsFor(userID string) []models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Chat
	for _, c := range s.chats {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	return out
}

// createChat 은 동일 참가자 조합의 기존 대화가 있으면 그걸 돌려준다.
func (s *store) createChat(participantIDs []string) models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.chats {
		if sameParticipants(c.ParticipantIDs, participantIDs) {
			return *c
		}
	}
	c := &models.Chat{ID: uuid.New().String(), ParticipantIDs: participantIDs}
	s.chats[c.ID] = c
	return *c
}

func sameParticipants(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

func (s *store) appendMessage(msg models.ChatMessage) models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = uuid.New().String()
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	s.messages[msg.ChatID] = append(s.messages[msg.ChatID], msg)
	return msg
}

func (s *store) messagesFor(chatID string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[chatID]
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

func (s *store) chatByID(chatID string) (models.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return models.Chat{}, false
	}
	return *c, true
}
