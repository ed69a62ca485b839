package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// newRouter 는 모든 라우트를 gin 엔진에 묶고 CORS 로 감싼 핸들러를 돌려준다.
// 인증 엔드포인트와 /ws, /health 만 토큰 없이 접근할 수 있다.
func newRouter(s *server) http.Handler {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ws", gin.WrapF(s.hub.serveWS))

	api := r.Group("/api/v1")
	{
		api.POST("/auth/signin", s.signIn)
		api.POST("/auth/signup", s.signUp)
		api.POST("/auth/refresh", s.refresh)
		api.POST("/auth/reset-password", s.resetPassword)

		// 결제 제공자 콜백은 토큰을 들고 오지 않는다.
		api.POST("/subscription/payment/webhook", s.paymentWebhook)

		authed := api.Group("")
		authed.Use(requireAuth(s.jwt))
		{
			authed.GET("/category", s.listCategories)
			authed.GET("/category/tree", s.categoryTree)
			authed.GET("/category/roots", s.categoryRoots)
			authed.GET("/category/by-parent", s.categoriesByParent)
			authed.GET("/category/:id", s.getCategory)
			authed.GET("/category/:id/with-ancestors", s.categoryWithAncestors)
			authed.GET("/category/:id/with-descendants", s.categoryWithDescendants)

			authed.GET("/bid", s.listAuctions)
			authed.GET("/bid/:id", s.getAuction)

			authed.POST("/offers", s.createOffer)
			authed.GET("/offers/user/:userId", s.offersByUser)
			authed.GET("/offers/:auctionId", s.offersByAuction)

			authed.POST("/auto-bids", s.createAutoBid)
			authed.GET("/auto-bid/auction/:auctionId/user", s.autoBidForUser)
			authed.GET("/auto-bid/:auctionId", s.autoBidsByAuction)

			authed.POST("/chat/getchats", s.getChats)
			authed.POST("/chat/create", s.createChat)

			authed.POST("/message/create", s.createMessage)
			authed.GET("/message/getAll/:chatId", s.getMessages)
			authed.PATCH("/message/mark-read/:chatId", s.markRead)
			authed.POST("/message/mark-chat-read", s.markChatRead)
			authed.GET("/message/unread-messages/:userId", s.unreadMessages)

			authed.GET("/identities", s.listIdentities)
			authed.GET("/identities/me", s.myIdentity)
			authed.POST("/identities/reseller", s.submitReseller)

			authed.GET("/subscription/plans", s.listPlans)
			authed.GET("/subscription/plans/:id", s.getPlan)
			authed.POST("/subscription/plans", s.createPlan)
			authed.PUT("/subscription/plans/:id", s.updatePlan)
			authed.DELETE("/subscription/plans/:id", s.deletePlan)
			authed.POST("/subscription/payment", s.createPayment)
			authed.POST("/subscription/payment/:id/confirm", s.confirmPayment)
			authed.GET("/subscription/payment/:id/status", s.paymentStatus)
			authed.POST("/subscription/payment/:id/simulate", s.simulatePayment)
			authed.GET("/subscription/admin/stats", s.subscriptionStats)
			authed.POST("/subscription/admin/cleanup", s.subscriptionCleanup)

			authed.GET("/terms/public", s.publicTerms)
			authed.GET("/terms/latest", s.latestTerms)
		}
	}

	// 로컬 개발 전용 서버라 출처 제한 없이 연다.
	return cors.AllowAll().Handler(r)
}
