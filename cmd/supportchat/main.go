package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"mazad-client/api"
	"mazad-client/chat"
	"mazad-client/config"
	"mazad-client/httpclient"
	"mazad-client/logger"
	"mazad-client/models"
	"mazad-client/session"
)

// 지원 채팅 데모 CLI. 로그인하고 관리자와의 대화를 연 뒤, 표준 입력으로
// 받은 줄을 메시지로 보낸다. 수신 메시지는 즉시 출력한다.
//
// 자격 증명은 환경변수로 받는다:
//   - MAZAD_EMAIL / MAZAD_PASSWORD (필수)
func main() {
	config.InitApp()
	logger.InitFromEnv("LOG_LEVEL")
	cfg := config.GetConfig()

	email := os.Getenv("MAZAD_EMAIL")
	password := os.Getenv("MAZAD_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("MAZAD_EMAIL and MAZAD_PASSWORD are required")
	}

	sessions, err := session.NewSQLite(filepath.Join(config.GetBasePath(), ".data", "session.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer sessions.Close()

	client := httpclient.New(cfg.API, sessions, httpclient.WithLogoutHook(func() {
		fmt.Println("! signed out by the server, run again to sign back in")
	}))
	marketplace := api.New(client, sessions)

	ctx := context.Background()
	sess, err := marketplace.Auth.SignIn(ctx, api.SignInRequest{Email: email, Password: password})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("signed in as %s\n", email)

	support := chat.NewSupportChat(marketplace, sessions, cfg.Chat)
	support.OnAppend = func() {
		printLatest(support)
	}

	channel := chat.NewChannel(cfg.API, cfg.Chat, sess.UserID(), chat.Handlers{
		OnMessage: support.HandleInbound,
		OnConnectionError: func(err error) {
			fmt.Println("! realtime connection lost:", err)
		},
	})
	if err := channel.Open(ctx); err != nil {
		// 소켓 없이도 REST 전송은 동작하므로 경고만 남기고 계속 간다.
		fmt.Println("! could not open realtime channel:", err)
	}
	defer channel.Close()

	fmt.Println("type a message and press enter (ctrl-d to quit)")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := support.Send(ctx, text); err != nil {
			if errors.Is(err, chat.ErrSendInFlight) {
				fmt.Println("! still sending the previous message")
				continue
			}
			fmt.Println("!", err)
		}
	}
}

// printLatest 는 스크롤 훅 자리다: 목록의 마지막 메시지를 상태 표시와 함께
// 출력한다.
func printLatest(support *chat.SupportChat) {
	msgs := support.Thread().Snapshot()
	if len(msgs) == 0 {
		return
	}
	last := msgs[len(msgs)-1]
	switch last.LocalState {
	case models.MessagePending:
		fmt.Printf("  … %s\n", last.Body)
	case models.MessageFailed:
		fmt.Printf("  ✗ %s (%s)\n", last.Body, last.ErrorText)
	default:
		fmt.Printf("  %s: %s\n", last.SenderID, last.Body)
	}
}
