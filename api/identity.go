package api

import (
	"context"

	"mazad-client/httpclient"
	"mazad-client/models"
)

// IdentityAPI wraps the identity directory endpoints.
type IdentityAPI struct {
	http *httpclient.Client
}

func (a *IdentityAPI) List(ctx context.Context) ([]models.Identity, error) {
	env, err := a.http.Get(ctx, "identities", nil)
	return decodeEnvelope[[]models.Identity](env, err, "list identities")
}

// Me returns the caller's own identity record.
func (a *IdentityAPI) Me(ctx context.Context) (models.Identity, error) {
	env, err := a.http.Get(ctx, "identities/me", nil)
	return decodeEnvelope[models.Identity](env, err, "own identity")
}

// FindAdmin looks up the support admin identity in the directory. The
// zero Identity and ok=false mean the lookup found nothing usable; callers
// synthesize a fallback admin instead of failing.
func (a *IdentityAPI) FindAdmin(ctx context.Context) (models.Identity, bool) {
	identities, err := a.List(ctx)
	if err != nil {
		return models.Identity{}, false
	}
	for _, id := range identities {
		if id.Role == models.RoleAdmin {
			return id, true
		}
	}
	return models.Identity{}, false
}

// SubmitReseller uploads the reseller verification documents as multipart
// form data.
func (a *IdentityAPI) SubmitReseller(ctx context.Context, fields map[string]string, files []httpclient.File) (models.Identity, error) {
	env, err := a.http.PostMultipart(ctx, "identities/reseller", fields, files)
	return decodeEnvelope[models.Identity](env, err, "submit reseller identity")
}
