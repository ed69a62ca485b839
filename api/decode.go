package api

import (
	"fmt"

	"mazad-client/httpclient"
)

// decodeEnvelope collapses the (envelope, error) pair every pipeline call
// returns into a typed result, surfacing the extracted server message on
// HTTP-level failure.
func decodeEnvelope[T any](env *httpclient.Envelope, err error, what string) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if !env.Success {
		return out, fmt.Errorf("%s: %s", what, httpclient.ErrorMessage(env))
	}
	if err := env.Decode(&out); err != nil {
		return out, fmt.Errorf("decode %s: %w", what, err)
	}
	return out, nil
}

// checkEnvelope is decodeEnvelope for calls whose payload the caller ignores.
func checkEnvelope(env *httpclient.Envelope, err error, what string) error {
	if err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("%s: %s", what, httpclient.ErrorMessage(env))
	}
	return nil
}
