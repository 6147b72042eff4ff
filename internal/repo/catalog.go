package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const (
	tableIndustryCategories    = "industry_categories"
	tableIndustrySubcategories = "industry_subcategories"
	tableObjectives            = "objectives"
)

type CatalogRepo struct {
	c *conn
}

// ListIndustries returns categories by name with nested subcategories by name.
func (r *CatalogRepo) ListIndustries(ctx context.Context) ([]*IndustryCategory, error) {
	ct := entsql.Table(tableIndustryCategories)
	q, args := r.c.builder().Select(ct.Columns("id", "name", "slug")...).
		From(ct).
		OrderBy(ct.C("name")).
		Query()

	var cats []*IndustryCategory
	byID := map[int64]*IndustryCategory{}
	err := r.c.query(ctx, q, args, func(row rowScanner) error {
		c := &IndustryCategory{Subcategories: []*IndustrySubcategory{}}
		if err := row.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return err
		}
		cats = append(cats, c)
		byID[c.ID] = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list industry categories: %w", err)
	}

	st := entsql.Table(tableIndustrySubcategories)
	q, args = r.c.builder().Select(st.Columns("id", "category_id", "name", "slug")...).
		From(st).
		OrderBy(st.C("name")).
		Query()
	err = r.c.query(ctx, q, args, func(row rowScanner) error {
		s := &IndustrySubcategory{}
		if err := row.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug); err != nil {
			return err
		}
		if c, ok := byID[s.CategoryID]; ok {
			c.Subcategories = append(c.Subcategories, s)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list industry subcategories: %w", err)
	}
	return cats, nil
}

// ListObjectives orders by category then name.
func (r *CatalogRepo) ListObjectives(ctx context.Context) ([]*Objective, error) {
	t := entsql.Table(tableObjectives)
	q, args := r.c.builder().Select(t.Columns("id", "name", "slug", "category")...).
		From(t).
		OrderBy(t.C("category"), t.C("name")).
		Query()
	var out []*Objective
	err := r.c.query(ctx, q, args, func(row rowScanner) error {
		o := &Objective{}
		if err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Category); err != nil {
			return err
		}
		out = append(out, o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objectives: %w", err)
	}
	return out, nil
}

// CountSubcategories returns how many of ids exist.
func (r *CatalogRepo) CountSubcategories(ctx context.Context, ids []int64) (int, error) {
	return r.count(ctx, tableIndustrySubcategories, ids)
}

// CountObjectives returns how many of ids exist.
func (r *CatalogRepo) CountObjectives(ctx context.Context, ids []int64) (int, error) {
	return r.count(ctx, tableObjectives, ids)
}

func (r *CatalogRepo) count(ctx context.Context, table string, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	t := entsql.Table(table)
	q, args := r.c.builder().Select(entsql.Count("*")).
		From(t).
		Where(entsql.In(t.C("id"), int64Args(ids)...)).
		Query()
	var n int
	err := r.c.query(ctx, q, args, func(row rowScanner) error { return row.Scan(&n) })
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// UpsertCategory inserts or renames the category keyed by slug.
func (r *CatalogRepo) UpsertCategory(ctx context.Context, name, slug string) (int64, error) {
	q, args := r.c.builder().Insert(tableIndustryCategories).
		Columns("name", "slug").
		Values(name, slug).
		OnConflict(entsql.ConflictColumns("slug"), entsql.ResolveWithNewValues()).
		Returning("id").
		Query()
	return r.returningID(ctx, q, args)
}

func (r *CatalogRepo) UpsertSubcategory(ctx context.Context, categoryID int64, name, slug string) (int64, error) {
	q, args := r.c.builder().Insert(tableIndustrySubcategories).
		Columns("category_id", "name", "slug").
		Values(categoryID, name, slug).
		OnConflict(entsql.ConflictColumns("slug"), entsql.ResolveWithNewValues()).
		Returning("id").
		Query()
	return r.returningID(ctx, q, args)
}

func (r *CatalogRepo) UpsertObjective(ctx context.Context, name, slug string, category ObjectiveCategory) (int64, error) {
	q, args := r.c.builder().Insert(tableObjectives).
		Columns("name", "slug", "category").
		Values(name, slug, string(category)).
		OnConflict(entsql.ConflictColumns("slug"), entsql.ResolveWithNewValues()).
		Returning("id").
		Query()
	return r.returningID(ctx, q, args)
}

func (r *CatalogRepo) returningID(ctx context.Context, q string, args []any) (int64, error) {
	var id int64
	if err := r.c.queryOne(ctx, "catalog entry", q, args, func(row rowScanner) error {
		return row.Scan(&id)
	}); err != nil {
		return 0, fmt.Errorf("upsert catalog entry: %w", err)
	}
	return id, nil
}
