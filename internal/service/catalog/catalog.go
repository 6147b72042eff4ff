package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
)

type Store interface {
	ListIndustries(ctx context.Context) ([]*repo.IndustryCategory, error)
	ListObjectives(ctx context.Context) ([]*repo.Objective, error)
	UpsertCategory(ctx context.Context, name, slug string) (int64, error)
	UpsertSubcategory(ctx context.Context, categoryID int64, name, slug string) (int64, error)
	UpsertObjective(ctx context.Context, name, slug string, category repo.ObjectiveCategory) (int64, error)
}

type StageOption struct {
	Value repo.Stage `json:"value"`
	Label string     `json:"label"`
}

type SeedResult struct {
	Categories    int
	Subcategories int
	Objectives    int
}

type Service interface {
	ListIndustries(ctx context.Context) ([]*repo.IndustryCategory, error)
	ListObjectives(ctx context.Context) ([]*repo.Objective, error)
	ListStages() []StageOption

	// Seed upserts the built-in catalog. Running it twice is a no-op.
	Seed(ctx context.Context) (SeedResult, error)
}

type catalogService struct {
	store Store
}

func New(store Store) Service {
	return &catalogService{store: store}
}

func (s *catalogService) ListIndustries(ctx context.Context) ([]*repo.IndustryCategory, error) {
	cats, err := s.store.ListIndustries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list industries: %w", err)
	}
	if cats == nil {
		cats = []*repo.IndustryCategory{}
	}
	return cats, nil
}

func (s *catalogService) ListObjectives(ctx context.Context) ([]*repo.Objective, error) {
	objs, err := s.store.ListObjectives(ctx)
	if err != nil {
		return nil, fmt.Errorf("list objectives: %w", err)
	}
	if objs == nil {
		objs = []*repo.Objective{}
	}
	return objs, nil
}

func (s *catalogService) ListStages() []StageOption {
	out := make([]StageOption, 0, len(repo.Stages))
	for _, st := range repo.Stages {
		out = append(out, StageOption{Value: st, Label: st.Label()})
	}
	return out
}

func (s *catalogService) Seed(ctx context.Context) (SeedResult, error) {
	var res SeedResult
	for _, c := range seedIndustries {
		slug := CategorySlug(c.Name)
		catID, err := s.store.UpsertCategory(ctx, c.Name, slug)
		if err != nil {
			return res, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		res.Categories++
		for _, sub := range c.Subcategories {
			if _, err := s.store.UpsertSubcategory(ctx, catID, sub, SubcategorySlug(slug, sub)); err != nil {
				return res, fmt.Errorf("seed subcategory %q: %w", sub, err)
			}
			res.Subcategories++
		}
	}
	for _, o := range seedObjectives {
		if _, err := s.store.UpsertObjective(ctx, o.Name, ObjectiveSlug(o.Name), o.Category); err != nil {
			return res, fmt.Errorf("seed objective %q: %w", o.Name, err)
		}
		res.Objectives++
	}
	slog.Info("catalog seeded",
		slog.Int("categories", res.Categories),
		slog.Int("subcategories", res.Subcategories),
		slog.Int("objectives", res.Objectives),
	)
	return res, nil
}
