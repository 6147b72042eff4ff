package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const tableAvailabilityRules = "availability_rules"

var ruleColumns = []string{
	"id", "mentor_id", "weekday", "start_time", "end_time",
	"slot_duration_minutes", "timezone", "is_active", "created_at", "updated_at",
}

func scanRule(row rowScanner, r *AvailabilityRule) error {
	return row.Scan(
		&r.ID, &r.MentorID, &r.Weekday, &r.StartTime, &r.EndTime,
		&r.SlotDurationMinutes, &r.Timezone, &r.IsActive, &r.CreatedAt, &r.UpdatedAt,
	)
}

type RuleRepo struct {
	c *conn
}

// List returns the mentor's rules by weekday then start time.
func (r *RuleRepo) List(ctx context.Context, mentorID uuid.UUID, activeOnly bool) ([]*AvailabilityRule, error) {
	t := entsql.Table(tableAvailabilityRules)
	p := entsql.EQ(t.C("mentor_id"), mentorID)
	if activeOnly {
		p = entsql.And(p, entsql.EQ(t.C("is_active"), true))
	}
	q, args := r.c.builder().Select(t.Columns(ruleColumns...)...).
		From(t).
		Where(p).
		OrderBy(t.C("weekday"), t.C("start_time")).
		Query()

	var out []*AvailabilityRule
	err := r.c.query(ctx, q, args, func(row rowScanner) error {
		rule := &AvailabilityRule{}
		if err := scanRule(row, rule); err != nil {
			return err
		}
		out = append(out, rule)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list availability rules: %w", err)
	}
	return out, nil
}

func (r *RuleRepo) Get(ctx context.Context, id uuid.UUID) (*AvailabilityRule, error) {
	t := entsql.Table(tableAvailabilityRules)
	q, args := r.c.builder().Select(t.Columns(ruleColumns...)...).
		From(t).
		Where(entsql.EQ(t.C("id"), id)).
		Query()
	rule := &AvailabilityRule{}
	if err := r.c.queryOne(ctx, "availability rule", q, args, func(row rowScanner) error {
		return scanRule(row, rule)
	}); err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *RuleRepo) Create(ctx context.Context, rule *AvailabilityRule) error {
	if rule.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		rule.ID = id
	}
	now := r.c.timestamp()
	rule.CreatedAt, rule.UpdatedAt = now, now

	q, args := r.c.builder().Insert(tableAvailabilityRules).
		Columns(ruleColumns...).
		Values(
			rule.ID, rule.MentorID, rule.Weekday, rule.StartTime, rule.EndTime,
			rule.SlotDurationMinutes, rule.Timezone, rule.IsActive, rule.CreatedAt, rule.UpdatedAt,
		).Query()
	if _, err := r.c.exec(ctx, q, args); err != nil {
		return fmt.Errorf("create availability rule: %w", err)
	}
	return nil
}

// Update rewrites every mutable column of an existing rule owned by
// rule.MentorID.
func (r *RuleRepo) Update(ctx context.Context, rule *AvailabilityRule) error {
	rule.UpdatedAt = r.c.timestamp()
	q, args := r.c.builder().Update(tableAvailabilityRules).
		Set("weekday", rule.Weekday).
		Set("start_time", rule.StartTime).
		Set("end_time", rule.EndTime).
		Set("slot_duration_minutes", rule.SlotDurationMinutes).
		Set("timezone", rule.Timezone).
		Set("is_active", rule.IsActive).
		Set("updated_at", rule.UpdatedAt).
		Where(entsql.And(entsql.EQ("id", rule.ID), entsql.EQ("mentor_id", rule.MentorID))).
		Query()
	n, err := r.c.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("update availability rule: %w", err)
	}
	if n == 0 {
		return notFound("availability rule")
	}
	return nil
}

func (r *RuleRepo) Delete(ctx context.Context, id, mentorID uuid.UUID) error {
	q, args := r.c.builder().Delete(tableAvailabilityRules).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("mentor_id", mentorID))).
		Query()
	n, err := r.c.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("delete availability rule: %w", err)
	}
	if n == 0 {
		return notFound("availability rule")
	}
	return nil
}
