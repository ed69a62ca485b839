package api

import (
	"context"
	"net/url"
	"path"

	"mazad-client/httpclient"
	"mazad-client/models"
)

// CategoryAPI wraps the category-tree retrieval endpoints.
type CategoryAPI struct {
	http *httpclient.Client
}

func (a *CategoryAPI) List(ctx context.Context) ([]models.Category, error) {
	env, err := a.http.Get(ctx, "category", nil)
	return decodeEnvelope[[]models.Category](env, err, "list categories")
}

func (a *CategoryAPI) Tree(ctx context.Context) ([]models.Category, error) {
	env, err := a.http.Get(ctx, "category/tree", nil)
	return decodeEnvelope[[]models.Category](env, err, "category tree")
}

func (a *CategoryAPI) Roots(ctx context.Context) ([]models.Category, error) {
	env, err := a.http.Get(ctx, "category/roots", nil)
	return decodeEnvelope[[]models.Category](env, err, "category roots")
}

func (a *CategoryAPI) ByParent(ctx context.Context, parentID string) ([]models.Category, error) {
	q := url.Values{"parent": {parentID}}
	env, err := a.http.Get(ctx, "category/by-parent", q)
	return decodeEnvelope[[]models.Category](env, err, "categories by parent")
}

func (a *CategoryAPI) Get(ctx context.Context, id string) (models.Category, error) {
	env, err := a.http.Get(ctx, path.Join("category", id), nil)
	return decodeEnvelope[models.Category](env, err, "category")
}

func (a *CategoryAPI) WithAncestors(ctx context.Context, id string) (models.CategoryWithRelations, error) {
	env, err := a.http.Get(ctx, path.Join("category", id, "with-ancestors"), nil)
	return decodeEnvelope[models.CategoryWithRelations](env, err, "category with ancestors")
}

func (a *CategoryAPI) WithDescendants(ctx context.Context, id string) (models.CategoryWithRelations, error) {
	env, err := a.http.Get(ctx, path.Join("category", id, "with-descendants"), nil)
	return decodeEnvelope[models.CategoryWithRelations](env, err, "category with descendants")
}
