package api

import (
	"context"

	"mazad-client/trace"
)

// firstOf 는 후보 연산들을 순서대로 시도해 첫 성공 결과를 반환한다.
// 백엔드 배포별로 경로가 다른 엔드포인트(chat 생성, message 전송)를 위한
// 순차 fallback 조합자다. 모든 후보가 실패하면 마지막 에러를 반환하며,
// 로컬 placeholder 합성 여부는 호출자가 결정한다.
//
// 체인 전체가 하나의 논리적 호출이므로 request id 는 여기서 한 번 심는다.
// 각 시도는 같은 request id 아래 span 1..n 으로 로깅된다.
func firstOf[T any](ctx context.Context, attempts ...func(context.Context) (T, error)) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if trace.RequestIDFromContext(ctx) == "" {
		ctx = trace.WithRequestAndSpan(ctx, trace.GenerateID(), 0)
	}

	var zero T
	var lastErr error
	for _, attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := attempt(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	return zero, lastErr
}
