package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"mazad-client/httpclient"
	"mazad-client/session"
)

// AuthAPI 는 인증 엔드포인트 모듈이다. 로그인 성공 시 세션 스토어에
// 세션을 저장하고, 로그아웃 시 비운다.
type AuthAPI struct {
	http     *httpclient.Client
	sessions session.Store
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// rawSessionBody 는 로그인/갱신 응답의 원시 형태다. 백엔드는 토큰을
// snake_case 로 내려주므로 여기서 Session 의 camelCase 토큰으로 옮긴다.
type rawSessionBody struct {
	User    *session.UserProfile `json:"user"`
	Session *struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"session"`
}

// SignIn 은 자격 증명으로 로그인한다. 이 호출만 정규화를 우회하고 원시
// 응답을 직접 다룬다(returnFullResponse): 로그인 플로우는 상태 코드로
// "잘못된 자격 증명"을 구분해야 하기 때문이다.
func (a *AuthAPI) SignIn(ctx context.Context, req SignInRequest) (session.Session, error) {
	resp, err := a.http.PostRaw(ctx, "auth/signin", req)
	if err != nil {
		return session.Session{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return session.Session{}, fmt.Errorf("read sign-in response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		env := httpclient.Normalize(resp.StatusCode, raw)
		return session.Session{}, fmt.Errorf("sign in: %s", httpclient.ErrorMessage(&env))
	}

	sess, err := sessionFromRaw(raw)
	if err != nil {
		return session.Session{}, err
	}
	if err := a.sessions.Save(sess); err != nil {
		return session.Session{}, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

// sessionFromRaw 는 {user, session:{access_token, refresh_token}} 형태를
// Session 으로 정규화한다. {data: {...}} 로 감싸져 오는 배포도 있어 한 단계
// 중첩까지 허용한다.
func sessionFromRaw(raw []byte) (session.Session, error) {
	var body rawSessionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return session.Session{}, fmt.Errorf("decode sign-in response: %w", err)
	}
	if body.User == nil && body.Session == nil {
		var nested struct {
			Data rawSessionBody `json:"data"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil {
			body = nested.Data
		}
	}
	if body.Session == nil || body.Session.AccessToken == "" {
		return session.Session{}, fmt.Errorf("sign-in response carries no tokens")
	}

	return session.Session{
		User: body.User,
		Tokens: &session.Tokens{
			AccessToken:  body.Session.AccessToken,
			RefreshToken: body.Session.RefreshToken,
		},
	}, nil
}

// SignUp registers a new account. The backend responds with the created
// profile; no session is established until the user signs in.
func (a *AuthAPI) SignUp(ctx context.Context, req SignUpRequest) (*session.UserProfile, error) {
	env, err := a.http.Post(ctx, "auth/signup", req)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("sign up: %s", httpclient.ErrorMessage(env))
	}
	var profile session.UserProfile
	if err := env.Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode sign-up response: %w", err)
	}
	return &profile, nil
}

// Refresh 는 refresh 토큰으로 토큰 쌍을 갱신하고 세션 슬롯을 덮어쓴다.
// 기존 프로필은 유지한다.
func (a *AuthAPI) Refresh(ctx context.Context) (session.Session, error) {
	current, ok := a.sessions.Load()
	if !ok || current.Tokens == nil || current.Tokens.RefreshToken == "" {
		return session.Session{}, fmt.Errorf("no refresh token available")
	}

	resp, err := a.http.PostRaw(ctx, "auth/refresh", map[string]string{
		"refreshToken": current.Tokens.RefreshToken,
	})
	if err != nil {
		return session.Session{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return session.Session{}, fmt.Errorf("read refresh response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		env := httpclient.Normalize(resp.StatusCode, raw)
		return session.Session{}, fmt.Errorf("refresh: %s", httpclient.ErrorMessage(&env))
	}

	refreshed, err := sessionFromRaw(raw)
	if err != nil {
		return session.Session{}, err
	}
	if refreshed.User == nil {
		refreshed.User = current.User
	}
	if err := a.sessions.Save(refreshed); err != nil {
		return session.Session{}, fmt.Errorf("persist session: %w", err)
	}
	return refreshed, nil
}

// ResetPassword requests a password-reset email.
func (a *AuthAPI) ResetPassword(ctx context.Context, email string) error {
	env, err := a.http.Post(ctx, "auth/reset-password", map[string]string{"email": email})
	if err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("reset password: %s", httpclient.ErrorMessage(env))
	}
	return nil
}

// SignOut clears the persisted session. The backend keeps no server-side
// session state for the client to tear down.
func (a *AuthAPI) SignOut(_ context.Context) error {
	return a.sessions.Clear()
}
