package main

import (
	"log"
	"net/http"
	"os"

	"mazad-client/config"
	"mazad-client/logger"
)

// 마켓플레이스 백엔드와 실시간 게이트웨이를 흉내내는 개발용 서버.
// 클라이언트 통합 개발과 수동 테스트에 쓴다.
func main() {
	config.InitApp()
	logger.InitFromEnv("LOG_LEVEL")

	addr := os.Getenv("MOCK_SERVER_ADDR")
	if addr == "" {
		addr = ":9080"
	}

	s := newServer()
	handler := newRouter(s)

	logger.InfoWithFields("mock marketplace server listening", logger.Fields{"addr": addr})
	if err := http.ListenAndServe(addr, handler); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
