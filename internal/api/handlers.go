// Routinely - Survey-Driven Exercise Routine Recommendation Service
// Copyright 2026 RaiseDev
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/raisedev/routinely

package api

import (
	"context"

	"github.com/raisedev/routinely/internal/catalog"
	"github.com/raisedev/routinely/internal/config"
	"github.com/raisedev/routinely/internal/models"
)

// Recommender generates routine output from a survey.
type Recommender interface {
	Recommend(ctx context.Context, survey *models.Survey) (*models.Output, error)
}

// ResponseBuilder validates output and assembles API responses.
type ResponseBuilder interface {
	Build(output *models.Output, taskID string, survey *models.Survey) (*models.Response, error)
	BuildFailed(taskID, errorMessage string) *models.Response
}

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	recommender Recommender
	builder     ResponseBuilder
	catalog     *catalog.Catalog
	catalogCfg  config.CatalogConfig
	version     string
}

// NewHandler constructs the API handler set.
func NewHandler(recommender Recommender, builder ResponseBuilder, cat *catalog.Catalog, catalogCfg config.CatalogConfig, version string) *Handler {
	return &Handler{
		recommender: recommender,
		builder:     builder,
		catalog:     cat,
		catalogCfg:  catalogCfg,
		version:     version,
	}
}
