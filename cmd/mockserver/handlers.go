package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mazad-client/models"
)

// server bundles the in-memory state behind the HTTP handlers.
type server struct {
	store *store
	jwt   *jwtManager
	hub   *hub
}

func newServer() *server {
	return &server{
		store: newStore(),
		jwt:   newJWTManagerFromEnv(),
		hub:   newHub(),
	}
}

// ok 는 표준 성공 봉투를 내려보낸다. 목 서버의 응답 형태는 일부러
// 엔드포인트마다 다르게 두었다: 실제 배포들이 그렇듯 봉투형/배열형/
// 평문 객체형이 섞여 있어야 클라이언트 정규화가 전부 단련된다.
func ok(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "message": message})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func currentUserID(c *gin.Context) string {
	return c.GetString("userID")
}

// --- auth ---

type credentials struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// signIn 은 원시 {user, session:{access_token, refresh_token}} 형태로
// 응답한다. 클라이언트는 이 호출만 봉투 정규화를 우회한다.
func (s *server) signIn(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "email and password are required")
		return
	}
	u, found := s.store.findUserByEmail(req.Email)
	if !found || u.Password != req.Password {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	access, refresh, err := s.jwt.signPair(u.ID, u.Role)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to issue tokens")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"_id":       u.ID,
			"email":     u.Email,
			"firstName": u.FirstName,
			"lastName":  u.LastName,
			"role":      u.Role,
		},
		"session": gin.H{
			"access_token":  access,
			"refresh_token": refresh,
		},
	})
}

func (s *server) signUp(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "email and password are required")
		return
	}
	u, created := s.store.createUser(req.Email, req.Password, req.FirstName, req.LastName)
	if !created {
		fail(c, http.StatusConflict, "An account with this email already exists")
		return
	}
	ok(c, gin.H{
		"_id":       u.ID,
		"email":     u.Email,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"role":      u.Role,
	}, "Account created")
}

func (s *server) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		fail(c, http.StatusBadRequest, "refreshToken is required")
		return
	}
	userID, role, err := s.jwt.parse(req.RefreshToken)
	if err != nil {
		fail(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	access, refresh, err := s.jwt.signPair(userID, role)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to issue tokens")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session": gin.H{
			"access_token":  access,
			"refresh_token": refresh,
		},
	})
}

func (s *server) resetPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		fail(c, http.StatusBadRequest, "email is required")
		return
	}
	// 메일 발송은 흉내만 낸다. 등록 여부와 무관하게 같은 응답을 준다.
	ok(c, nil, "If the address exists, a reset email has been sent")
}

// --- categories ---

func (s *server) listCategories(c *gin.Context) {
	ok(c, s.store.categoryList(), "")
}

// categoryTree 는 봉투 없이 배열만 내려보낸다.
func (s *server) categoryTree(c *gin.Context) {
	all := s.store.categoryList()
	byParent := make(map[string][]models.Category)
	for _, cat := range all {
		byParent[cat.ParentID] = append(byParent[cat.ParentID], cat)
	}
	var attach func(cat models.Category) models.Category
	attach = func(cat models.Category) models.Category {
		for _, child := range byParent[cat.ID] {
			cat.Children = append(cat.Children, attach(child))
		}
		return cat
	}
	roots := make([]models.Category, 0, len(byParent[""]))
	for _, root := range byParent[""] {
		roots = append(roots, attach(root))
	}
	c.JSON(http.StatusOK, roots)
}

func (s *server) categoryRoots(c *gin.Context) {
	var roots []models.Category
	for _, cat := range s.store.categoryList() {
		if cat.ParentID == "" {
			roots = append(roots, cat)
		}
	}
	ok(c, roots, "")
}

func (s *server) categoriesByParent(c *gin.Context) {
	parent := c.Query("parent")
	var out []models.Category
	for _, cat := range s.store.categoryList() {
		if cat.ParentID == parent {
			out = append(out, cat)
		}
	}
	ok(c, out, "")
}

func (s *server) getCategory(c *gin.Context) {
	cat, found := s.store.categoryByID(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, "category not found")
		return
	}
	ok(c, cat, "")
}

func (s *server) categoryWithAncestors(c *gin.Context) {
	cat, found := s.store.categoryByID(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, "category not found")
		return
	}
	out := models.CategoryWithRelations{Category: cat}
	for cat.ParentID != "" {
		parent, okParent := s.store.categoryByID(cat.ParentID)
		if !okParent {
			break
		}
		out.Ancestors = append(out.Ancestors, parent)
		cat = parent
	}
	ok(c, out, "")
}

func (s *server) categoryWithDescendants(c *gin.Context) {
	cat, found := s.store.categoryByID(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, "category not found")
		return
	}
	out := models.CategoryWithRelations{Category: cat}
	queue := []string{cat.ID}
	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]
		for _, candidate := range s.store.categoryList() {
			if candidate.ParentID == parentID {
				out.Descendants = append(out.Descendants, candidate)
				queue = append(queue, candidate.ID)
			}
		}
	}
	ok(c, out, "")
}

// --- auctions, offers, auto-bids ---

// listAuctions 는 success 없이 {data: [...]} 만 내려보낸다.
func (s *server) listAuctions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.store.auctionList()})
}

func (s *server) getAuction(c *gin.Context) {
	a, found := s.store.auctionByID(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, "auction not found")
		return
	}
	ok(c, a, "")
}

func (s *server) createOffer(c *gin.Context) {
	var req struct {
		AuctionID string  `json:"auction"`
		Price     float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.AuctionID == "" {
		fail(c, http.StatusBadRequest, "auction and price are required")
		return
	}
	offer, created := s.store.addOffer(req.AuctionID, currentUserID(c), req.Price)
	if !created {
		fail(c, http.StatusNotFound, "auction not found")
		return
	}
	ok(c, offer, "Offer placed")
}

func (s *server) offersByAuction(c *gin.Context) {
	ok(c, s.store.offersByAuction(c.Param("auctionId")), "")
}

func (s *server) offersByUser(c *gin.Context) {
	ok(c, s.store.offersByUser(c.Param("userId")), "")
}

func (s *server) createAutoBid(c *gin.Context) {
	var req struct {
		AuctionID string  `json:"auction"`
		MaxPrice  float64 `json:"maxPrice"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.AuctionID == "" {
		fail(c, http.StatusBadRequest, "auction and maxPrice are required")
		return
	}
	ok(c, s.store.saveAutoBid(req.AuctionID, currentUserID(c), req.MaxPrice), "Auto-bid saved")
}

func (s *server) autoBidsByAuction(c *gin.Context) {
	ok(c, s.store.autoBidsByAuction(c.Param("auctionId")), "")
}

func (s *server) autoBidForUser(c *gin.Context) {
	ab, found := s.store.autoBidFor(c.Param("auctionId"), currentUserID(c))
	if !found {
		fail(c, http.StatusNotFound, "no auto-bid for this auction")
		return
	}
	ok(c, ab, "")
}

// --- chat & messages ---

func (s *server) getChats(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		fail(c, http.StatusBadRequest, "id is required")
		return
	}
	ok(c, s.store.chatsFor(req.ID), "")
}

func (s *server) createChat(c *gin.Context) {
	var req struct {
		Users []string `json:"users"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Users) < 2 {
		fail(c, http.StatusBadRequest, "at least two participants are required")
		return
	}
	chat := s.store.createChat(req.Users)
	creator := currentUserID(c)
	for _, participant := range chat.ParticipantIDs {
		if participant != creator {
			s.hub.push(participant, "sendNotificationChatCreate", chat)
		}
	}
	ok(c, chat, "Chat created")
}

// createMessage 는 메시지를 저장한 뒤 대화 참가자 전원에게 웹소켓 이벤트를
// 쏜다. 관리자가 보낸 메시지는 sendMessage 와 adminMessage 두 채널로 모두
// 나간다 — 클라이언트의 중복 제거가 감당해야 하는 실제 배포의 동작이다.
func (s *server) createMessage(c *gin.Context) {
	var msg models.ChatMessage
	if err := c.ShouldBindJSON(&msg); err != nil || msg.Body == "" || msg.ChatID == "" {
		fail(c, http.StatusBadRequest, "message and idChat are required")
		return
	}
	msg.SenderID = currentUserID(c)
	if _, found := s.store.chatByID(msg.ChatID); !found {
		fail(c, http.StatusNotFound, "chat not found")
		return
	}
	saved := s.store.appendMessage(msg)

	chat, _ := s.store.chatByID(saved.ChatID)
	senderRole := c.GetString("role")
	for _, participant := range chat.ParticipantIDs {
		s.hub.push(participant, "sendMessage", saved)
		if senderRole == models.RoleAdmin {
			s.hub.push(participant, "adminMessage", saved)
		}
	}
	ok(c, saved, "Message sent")
}

func (s *server) getMessages(c *gin.Context) {
	ok(c, s.store.messagesFor(c.Param("chatId")), "")
}

func (s *server) markRead(c *gin.Context) {
	if _, found := s.store.chatByID(c.Param("chatId")); !found {
		fail(c, http.StatusNotFound, "chat not found")
		return
	}
	ok(c, nil, "Messages marked as read")
}

func (s *server) markChatRead(c *gin.Context) {
	var req struct {
		ChatID string `json:"idChat"`
		UserID string `json:"user"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ChatID == "" {
		fail(c, http.StatusBadRequest, "idChat is required")
		return
	}
	ok(c, nil, "Chat marked as read")
}

func (s *server) unreadMessages(c *gin.Context) {
	ok(c, gin.H{"count": s.store.unreadCountFor(c.Param("userId"))}, "")
}

// --- identities ---

func (s *server) listIdentities(c *gin.Context) {
	ok(c, s.store.identityList(), "")
}

func (s *server) myIdentity(c *gin.Context) {
	identity, found := s.store.identityForUser(currentUserID(c))
	if !found {
		fail(c, http.StatusNotFound, "no identity on file")
		return
	}
	ok(c, identity, "")
}

// submitReseller accepts the multipart verification upload. Files are
// discarded; only the resulting identity record matters here.
func (s *server) submitReseller(c *gin.Context) {
	if _, err := c.MultipartForm(); err != nil {
		fail(c, http.StatusBadRequest, "multipart form data is required")
		return
	}
	identity := s.store.upsertIdentity(models.Identity{
		UserID:      currentUserID(c),
		DisplayName: c.PostForm("displayName"),
		Role:        models.RoleReseller,
		Status:      "pending",
	})
	ok(c, identity, "Reseller application submitted")
}

// --- subscription ---

func (s *server) listPlans(c *gin.Context) {
	ok(c, s.store.planList(), "")
}

func (s *server) getPlan(c *gin.Context) {
	plan, found := s.store.planByID(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, "plan not found")
		return
	}
	ok(c, plan, "")
}

func (s *server) createPlan(c *gin.Context) {
	var plan models.SubscriptionPlan
	if err := c.ShouldBindJSON(&plan); err != nil || plan.Name == "" {
		fail(c, http.StatusBadRequest, "plan name is required")
		return
	}
	ok(c, s.store.addPlan(plan), "Plan created")
}

func (s *server) updatePlan(c *gin.Context) {
	var plan models.SubscriptionPlan
	if err := c.ShouldBindJSON(&plan); err != nil {
		fail(c, http.StatusBadRequest, "invalid plan body")
		return
	}
	plan.ID = c.Param("id")
	updated, found := s.store.updatePlan(plan)
	if !found {
		fail(c, http.StatusNotFound, "plan not found")
		return
	}
	ok(c, updated, "Plan updated")
}

func (s *server) deletePlan(c *gin.Context) {
	if !s.store.deletePlan(c.Param("id")) {
		fail(c, http.StatusNotFound, "plan not found")
		return
	}
	ok(c, nil, "Plan deleted")
}

func (s *server) createPayment(c *gin.Context) {
	var req struct {
		PlanID string `json:"plan"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PlanID == "" {
		fail(c, http.StatusBadRequest, "plan is required")
		return
	}
	plan, found := s.store.planByID(req.PlanID)
	if !found {
		fail(c, http.StatusNotFound, "plan not found")
		return
	}
	ok(c, s.store.createPayment(plan.ID, currentUserID(c), plan.Price), "Payment created")
}

func (s *server) confirmPayment(c *gin.Context) {
	p, found := s.store.settlePayment(c.Param("id"), models.PaymentConfirmed)
	if !found {
		fail(c, http.StatusNotFound, "payment not found")
		return
	}
	ok(c, p, "Payment confirmed")
}

// paymentStatus 는 봉투 없이 결제 객체만 내려보낸다.
func (s *server) paymentStatus(c *gin.Context) {
	p, found := s.store.paymentByID(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, "payment not found")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *server) simulatePayment(c *gin.Context) {
	var req struct {
		Outcome string `json:"outcome"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "outcome is required")
		return
	}
	status := models.PaymentFailed
	if req.Outcome == models.PaymentConfirmed {
		status = models.PaymentConfirmed
	}
	p, found := s.store.settlePayment(c.Param("id"), status)
	if !found {
		fail(c, http.StatusNotFound, "payment not found")
		return
	}
	ok(c, p, "Payment settled")
}

// paymentWebhook 은 결제 제공자가 쏘는 콜백이다. 제공자 참조로 결제를 찾아
// 최종 상태로 옮긴다. 인증 토큰 없이 호출된다.
func (s *server) paymentWebhook(c *gin.Context) {
	var req struct {
		Ref    string `json:"ref"`
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Ref == "" {
		fail(c, http.StatusBadRequest, "ref is required")
		return
	}
	p, found := s.store.paymentByRef(req.Ref)
	if !found {
		fail(c, http.StatusNotFound, "payment not found")
		return
	}
	status := models.PaymentFailed
	if req.Status == models.PaymentConfirmed {
		status = models.PaymentConfirmed
	}
	settled, _ := s.store.settlePayment(p.ID, status)
	ok(c, settled, "Webhook processed")
}

func (s *server) subscriptionStats(c *gin.Context) {
	ok(c, s.store.paymentStats(), "")
}

func (s *server) subscriptionCleanup(c *gin.Context) {
	removed := s.store.cleanupPayments(24 * time.Hour)
	ok(c, gin.H{"removed": removed}, "Stale pending payments removed")
}

// --- terms ---

func (s *server) publicTerms(c *gin.Context) {
	ok(c, s.store.termsList(), "")
}

// latestTerms 는 success 필드 없는 평문 객체로 응답한다.
func (s *server) latestTerms(c *gin.Context) {
	t, found := s.store.latestTerms()
	if !found {
		fail(c, http.StatusNotFound, "no published terms")
		return
	}
	c.JSON(http.StatusOK, t)
}
