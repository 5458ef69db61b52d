package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/supplelab/tierank/core/algo"
	"github.com/supplelab/tierank/internal/catalog"
	"github.com/supplelab/tierank/internal/contract"
	"github.com/supplelab/tierank/schema"
)

// ErrProductNotFound is returned when an explained product is not in the catalog.
var ErrProductNotFound = errors.New("product not found")

// ExplainProduct ranks the catalog and returns the full breakdown of one product:
// raw value, population size, percentile and grade per axis, plus the weights the
// overall grade was computed with.
func ExplainProduct(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, productID string) (*schema.ExplainRenderModel, error) {
	products, err := loadCatalog(cfg, mgr)
	if err != nil {
		return nil, err
	}

	results, _, err := RankCatalog(ctx, cfg, products)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.ProductID == productID {
			return buildExplainModel(r, cfg), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
}

// buildExplainModel turns a rank result into its render model.
func buildExplainModel(r schema.RankResult, cfg *contract.Config) *schema.ExplainRenderModel {
	_, weights := rankingTables(cfg)

	model := &schema.ExplainRenderModel{
		ProductID:    r.ProductID,
		Name:         r.Name,
		GroupKey:     r.GroupKey,
		OverallGrade: r.OverallGrade,
		OverallScore: r.OverallScore,
		Axes:         r.Axes,
		Weights:      weights,
		Effective:    algo.EffectiveWeights(r.Scores, weights),
	}
	for _, axis := range schema.AllAxes {
		if _, ok := r.Grade(axis); !ok {
			model.Unset = append(model.Unset, axis)
		}
	}
	return model
}

// loadCatalog reads the catalog files, or the latest retained snapshot when no
// catalog is given.
func loadCatalog(cfg *contract.Config, mgr contract.StoreManager) ([]schema.Product, error) {
	if len(cfg.CatalogPatterns) > 0 {
		return catalog.Load(cfg.CatalogPatterns)
	}

	store := snapshotStore(mgr)
	if store == nil {
		return nil, fmt.Errorf("no catalog given and no snapshot store configured. Pass catalog files or globs as arguments")
	}
	id, err := store.Latest()
	if err != nil {
		return nil, fmt.Errorf("no catalog given and no retained snapshot found: %w", err)
	}
	snapshot, err := LoadSnapshot(store, id)
	if err != nil {
		return nil, err
	}
	return snapshot.Products, nil
}
