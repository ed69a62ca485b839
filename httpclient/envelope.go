package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DefaultSuccessMessage is the message attached when a body is wrapped and
// carries no message of its own.
const DefaultSuccessMessage = "Request successful"

// Envelope 은 모든 API 호출이 최종적으로 수렴하는 정규화된 응답 형태다.
//
// 서버 응답 바디의 모양이 엔드포인트마다 제각각이라 Normalize 가 다섯 가지
// 케이스로 분류해 이 형태로 감싼다. 바디가 자체 success/data 필드를 들고
// 있는 경우에는 재계산하지 않고 그대로 통과시킨다 — 원본 프런트엔드의
// (일관적이지 않은) 동작을 의도적으로 보존한 것이므로 "고치면" 안 된다.
type Envelope struct {
	Success bool
	Data    json.RawMessage
	Message string

	// Extra holds passthrough keys other than success/data/message so
	// callers depending on spread fields still see them.
	Extra map[string]json.RawMessage

	// raw keeps the exact original bytes for passthrough bodies, making
	// re-marshalling an identity operation.
	raw json.RawMessage
}

// Decode unmarshals the envelope's data payload into v.
func (e *Envelope) Decode(v any) error {
	if len(e.Data) > 0 {
		return json.Unmarshal(e.Data, v)
	}
	if len(e.raw) > 0 {
		return json.Unmarshal(e.raw, v)
	}
	return fmt.Errorf("envelope has no data payload")
}

// MarshalJSON re-serializes the envelope. Passthrough bodies round-trip
// byte-for-byte; wrapped bodies are emitted as {data, success, message, ...}.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if len(e.raw) > 0 {
		return e.raw, nil
	}

	out := map[string]json.RawMessage{}
	for k, v := range e.Extra {
		out[k] = v
	}
	successRaw, _ := json.Marshal(e.Success)
	out["success"] = successRaw
	if len(e.Data) > 0 {
		out["data"] = e.Data
	}
	if e.Message != "" {
		msgRaw, _ := json.Marshal(e.Message)
		out["message"] = msgRaw
	}

	// Deterministic key order keeps logs and tests stable.
	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyRaw, _ := json.Marshal(k)
		buf.Write(keyRaw)
		buf.WriteByte(':')
		buf.Write(out[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func is2xx(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// Normalize 는 원시 전송 응답(상태 코드 + 바디)을 Envelope 으로 분류한다.
// 우선순위가 있는 다섯 가지 케이스:
//
//  1. success 와 data 를 모두 가진 객체   → 그대로 통과
//  2. success 만 가진 객체                → 그대로 통과 (이미 올바른 형태로 취급)
//  3. 배열                               → {data: 배열, success: true} 로 래핑
//  4. success 없는 일반 객체              → {data: 객체, success: <2xx>} 로 래핑
//  5. data 만 가진 객체                   → 필드 spread + success: <2xx> 추가
//
// 그 외(원시값, 비JSON)는 {data: 바디, success: <2xx>} 로 래핑한다.
func Normalize(statusCode int, body []byte) Envelope {
	ok := is2xx(statusCode)
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) == 0 {
		return Envelope{Success: ok, Message: DefaultSuccessMessage}
	}

	if trimmed[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			_, hasSuccess := obj["success"]
			_, hasData := obj["data"]

			switch {
			case hasSuccess:
				// Cases 1 and 2: the body already speaks the envelope
				// shape; pass it through without recomputing success.
				return passthrough(trimmed, obj)
			case hasData:
				// Case 5: spread the body and add the computed success.
				return spread(ok, obj)
			default:
				// Case 4: plain object without a success flag.
				return Envelope{
					Success: ok,
					Data:    append(json.RawMessage(nil), trimmed...),
					Message: stringField(obj, "message", DefaultSuccessMessage),
				}
			}
		}
	}

	if trimmed[0] == '[' && json.Valid(trimmed) {
		// Case 3: raw arrays are always treated as a successful listing.
		return Envelope{
			Success: true,
			Data:    append(json.RawMessage(nil), trimmed...),
			Message: DefaultSuccessMessage,
		}
	}

	// Fallback: primitives and unrecognized bodies.
	data := append(json.RawMessage(nil), trimmed...)
	if !json.Valid(trimmed) {
		data, _ = json.Marshal(string(trimmed))
	}
	return Envelope{Success: ok, Data: data, Message: DefaultSuccessMessage}
}

func passthrough(raw []byte, obj map[string]json.RawMessage) Envelope {
	env := Envelope{raw: append(json.RawMessage(nil), raw...)}
	if v, ok := obj["success"]; ok {
		_ = json.Unmarshal(v, &env.Success)
	}
	if v, ok := obj["data"]; ok {
		env.Data = v
	}
	env.Message = stringField(obj, "message", "")
	env.Extra = extraFields(obj)
	return env
}

func spread(success bool, obj map[string]json.RawMessage) Envelope {
	return Envelope{
		Success: success,
		Data:    obj["data"],
		Message: stringField(obj, "message", ""),
		Extra:   extraFields(obj),
	}
}

func extraFields(obj map[string]json.RawMessage) map[string]json.RawMessage {
	var extra map[string]json.RawMessage
	for k, v := range obj {
		if k == "success" || k == "data" || k == "message" {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}
	return extra
}

func stringField(obj map[string]json.RawMessage, key, fallback string) string {
	if v, ok := obj[key]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	}
	return fallback
}

// ErrorMessage extracts the best human-readable message from a failed
// envelope, in the priority order the UI layer expects: data.message,
// data.error, joined data.errors, then the envelope message itself.
func ErrorMessage(env *Envelope) string {
	if env == nil {
		return "Request failed"
	}
	if len(env.Data) > 0 {
		var obj struct {
			Message string   `json:"message"`
			Error   string   `json:"error"`
			Errors  []string `json:"errors"`
		}
		if err := json.Unmarshal(env.Data, &obj); err == nil {
			if obj.Message != "" {
				return obj.Message
			}
			if obj.Error != "" {
				return obj.Error
			}
			if len(obj.Errors) > 0 {
				return strings.Join(obj.Errors, ", ")
			}
		}
	}
	if env.Message != "" {
		return env.Message
	}
	return "Request failed"
}
