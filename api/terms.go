package api

import (
	"context"

	"mazad-client/httpclient"
	"mazad-client/models"
)

// TermsAPI wraps the public terms-of-service endpoints.
type TermsAPI struct {
	http *httpclient.Client
}

func (a *TermsAPI) Public(ctx context.Context) ([]models.Terms, error) {
	env, err := a.http.Get(ctx, "terms/public", nil)
	return decodeEnvelope[[]models.Terms](env, err, "public terms")
}

func (a *TermsAPI) Latest(ctx context.Context) (models.Terms, error) {
	env, err := a.http.Get(ctx, "terms/latest", nil)
	return decodeEnvelope[models.Terms](env, err, "latest terms")
}
