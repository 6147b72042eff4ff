package repo

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

const (
	tableFounderProfiles   = "founder_profiles"
	tableFounderObjectives = "founder_profile_objectives"
	tableMentorProfiles    = "mentor_profiles"
	tableMentorIndustries  = "mentor_profile_industries"
	tableMentorObjectives  = "mentor_profile_objectives"
)

var (
	founderColumns = []string{"user_id", "startup_name", "industry_id", "stage", "about_startup", "created_at", "updated_at"}
	mentorColumns  = []string{"user_id", "company", "role", "years_of_experience", "created_at", "updated_at"}
)

type ProfileRepo struct {
	c *conn
}

// Get returns the variant for the user's type. Users without a type have
// no profile.
func (r *ProfileRepo) Get(ctx context.Context, u *User) (Profile, error) {
	switch u.UserType {
	case UserTypeFounder:
		return r.GetFounder(ctx, u.ID)
	case UserTypeMentor:
		return r.GetMentor(ctx, u.ID)
	default:
		return nil, notFound("profile")
	}
}

// ---------------------------------------------------------------------------
// Founders
// ---------------------------------------------------------------------------

func scanFounder(row rowScanner, p *FounderProfile, u *User) error {
	var industry sql.NullInt64
	dest := []any{&p.UserID, &p.StartupName, &industry, &p.Stage, &p.AboutStartup, &p.CreatedAt, &p.UpdatedAt}
	if u != nil {
		dest = append(dest,
			&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.UserType, &u.Bio, &u.AvatarURL,
			&u.ProfilePhotoKey, &u.PasswordHash, &u.IsApproved, &u.IsProfileComplete,
			&u.CreatedAt, &u.UpdatedAt)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	if industry.Valid {
		p.IndustryID = &industry.Int64
	}
	if u != nil {
		s := u.Summary()
		p.User = &s
	}
	return nil
}

func (r *ProfileRepo) founderSelect() (*entsql.Selector, *entsql.SelectTable, *entsql.SelectTable) {
	fp := entsql.Table(tableFounderProfiles).As("fp")
	u := entsql.Table(tableUsers).As("u")
	cols := append(fp.Columns(founderColumns...), u.Columns(userColumns...)...)
	s := r.c.builder().Select(cols...).
		From(fp).
		Join(u).On(fp.C("user_id"), u.C("id"))
	return s, fp, u
}

func (r *ProfileRepo) GetFounder(ctx context.Context, userID uuid.UUID) (*FounderProfile, error) {
	s, fp, _ := r.founderSelect()
	q, args := s.Where(entsql.EQ(fp.C("user_id"), userID)).Query()
	p := &FounderProfile{}
	if err := r.c.queryOne(ctx, "founder profile", q, args, func(row rowScanner) error {
		return scanFounder(row, p, &User{})
	}); err != nil {
		return nil, err
	}
	if err := r.loadFounderObjectives(ctx, []*FounderProfile{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepo) ListFounders(ctx context.Context, f FounderFilter) ([]*FounderProfile, error) {
	s, fp, u := r.founderSelect()
	preds := []*entsql.Predicate{entsql.EQ(u.C("user_type"), string(UserTypeFounder))}
	if f.IndustryID != 0 {
		preds = append(preds, entsql.EQ(fp.C("industry_id"), f.IndustryID))
	}
	if f.Stage != "" {
		preds = append(preds, entsql.EQ(fp.C("stage"), string(f.Stage)))
	}
	if f.ObjectiveID != 0 {
		fo := entsql.Table(tableFounderObjectives)
		preds = append(preds, entsql.Exists(
			r.c.builder().Select(fo.C("user_id")).From(fo).Where(entsql.And(
				entsql.ColumnsEQ(fo.C("user_id"), fp.C("user_id")),
				entsql.EQ(fo.C("objective_id"), f.ObjectiveID),
			)),
		))
	}
	if f.Search != "" {
		preds = append(preds, entsql.Or(
			entsql.ContainsFold(u.C("first_name"), f.Search),
			entsql.ContainsFold(u.C("last_name"), f.Search),
			entsql.ContainsFold(fp.C("startup_name"), f.Search),
			entsql.ContainsFold(fp.C("about_startup"), f.Search),
		))
	}
	q, args := s.Where(entsql.And(preds...)).
		OrderBy(u.C("last_name"), u.C("first_name")).
		Query()

	var out []*FounderProfile
	err := r.c.query(ctx, q, args, func(row rowScanner) error {
		p := &FounderProfile{}
		if err := scanFounder(row, p, &User{}); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list founders: %w", err)
	}
	if err := r.loadFounderObjectives(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProfileRepo) loadFounderObjectives(ctx context.Context, ps []*FounderProfile) error {
	if len(ps) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*FounderProfile, len(ps))
	ids := make([]uuid.UUID, 0, len(ps))
	for _, p := range ps {
		p.ObjectiveIDs = []int64{}
		byID[p.UserID] = p
		ids = append(ids, p.UserID)
	}
	links, err := r.links(ctx, tableFounderObjectives, "objective_id", ids)
	if err != nil {
		return fmt.Errorf("load founder objectives: %w", err)
	}
	for _, l := range links {
		byID[l.owner].ObjectiveIDs = append(byID[l.owner].ObjectiveIDs, l.target)
	}
	return nil
}

// SaveFounder writes the scalar fields and replaces the objective set.
func (r *ProfileRepo) SaveFounder(ctx context.Context, p *FounderProfile) error {
	err := r.c.withTx(ctx, func(tc *conn) error {
		now := tc.timestamp()
		var industry any
		if p.IndustryID != nil {
			industry = *p.IndustryID
		}
		q, args := tc.builder().Insert(tableFounderProfiles).
			Columns(founderColumns...).
			Values(p.UserID, p.StartupName, industry, string(p.Stage), p.AboutStartup, now, now).
			OnConflict(
				entsql.ConflictColumns("user_id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.SetExcluded("startup_name")
					u.SetExcluded("industry_id")
					u.SetExcluded("stage")
					u.SetExcluded("about_startup")
					u.SetExcluded("updated_at")
				}),
			).Query()
		if _, err := tc.exec(ctx, q, args); err != nil {
			return err
		}
		p.UpdatedAt = now
		return replaceLinks(ctx, tc, tableFounderObjectives, "objective_id", p.UserID, p.ObjectiveIDs)
	})
	if err != nil {
		return fmt.Errorf("save founder profile: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mentors
// ---------------------------------------------------------------------------

func scanMentor(row rowScanner, p *MentorProfile, u *User) error {
	dest := []any{&p.UserID, &p.Company, &p.Role, &p.YearsOfExperience, &p.CreatedAt, &p.UpdatedAt,
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.UserType, &u.Bio, &u.AvatarURL,
		&u.ProfilePhotoKey, &u.PasswordHash, &u.IsApproved, &u.IsProfileComplete,
		&u.CreatedAt, &u.UpdatedAt}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	s := u.Summary()
	p.User = &s
	return nil
}

func (r *ProfileRepo) mentorSelect() (*entsql.Selector, *entsql.SelectTable, *entsql.SelectTable) {
	mp := entsql.Table(tableMentorProfiles).As("mp")
	u := entsql.Table(tableUsers).As("u")
	cols := append(mp.Columns(mentorColumns...), u.Columns(userColumns...)...)
	s := r.c.builder().Select(cols...).
		From(mp).
		Join(u).On(mp.C("user_id"), u.C("id"))
	return s, mp, u
}

func (r *ProfileRepo) GetMentor(ctx context.Context, userID uuid.UUID) (*MentorProfile, error) {
	return r.getMentor(ctx, userID, false)
}

// GetApprovedMentor is GetMentor restricted to approved mentors.
func (r *ProfileRepo) GetApprovedMentor(ctx context.Context, userID uuid.UUID) (*MentorProfile, error) {
	return r.getMentor(ctx, userID, true)
}

func (r *ProfileRepo) getMentor(ctx context.Context, userID uuid.UUID, approvedOnly bool) (*MentorProfile, error) {
	s, mp, u := r.mentorSelect()
	p := entsql.And(entsql.EQ(mp.C("user_id"), userID), entsql.EQ(u.C("user_type"), string(UserTypeMentor)))
	if approvedOnly {
		p = entsql.And(p, entsql.EQ(u.C("is_approved"), true))
	}
	q, args := s.Where(p).Query()
	m := &MentorProfile{}
	if err := r.c.queryOne(ctx, "mentor profile", q, args, func(row rowScanner) error {
		return scanMentor(row, m, &User{})
	}); err != nil {
		return nil, err
	}
	if err := r.loadMentorLinks(ctx, []*MentorProfile{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMentors returns approved mentors only.
func (r *ProfileRepo) ListMentors(ctx context.Context, f MentorFilter) ([]*MentorProfile, error) {
	s, mp, u := r.mentorSelect()
	preds := []*entsql.Predicate{
		entsql.EQ(u.C("user_type"), string(UserTypeMentor)),
		entsql.EQ(u.C("is_approved"), true),
	}
	if f.IndustryID != 0 {
		mi := entsql.Table(tableMentorIndustries)
		preds = append(preds, entsql.Exists(
			r.c.builder().Select(mi.C("user_id")).From(mi).Where(entsql.And(
				entsql.ColumnsEQ(mi.C("user_id"), mp.C("user_id")),
				entsql.EQ(mi.C("subcategory_id"), f.IndustryID),
			)),
		))
	}
	if f.ObjectiveID != 0 {
		mo := entsql.Table(tableMentorObjectives)
		preds = append(preds, entsql.Exists(
			r.c.builder().Select(mo.C("user_id")).From(mo).Where(entsql.And(
				entsql.ColumnsEQ(mo.C("user_id"), mp.C("user_id")),
				entsql.EQ(mo.C("objective_id"), f.ObjectiveID),
			)),
		))
	}
	if f.Search != "" {
		preds = append(preds, entsql.Or(
			entsql.ContainsFold(u.C("first_name"), f.Search),
			entsql.ContainsFold(u.C("last_name"), f.Search),
			entsql.ContainsFold(mp.C("company"), f.Search),
			entsql.ContainsFold(u.C("bio"), f.Search),
		))
	}
	q, args := s.Where(entsql.And(preds...)).
		OrderBy(u.C("last_name"), u.C("first_name")).
		Query()

	var out []*MentorProfile
	err := r.c.query(ctx, q, args, func(row rowScanner) error {
		m := &MentorProfile{}
		if err := scanMentor(row, m, &User{}); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}
	if err := r.loadMentorLinks(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProfileRepo) loadMentorLinks(ctx context.Context, ms []*MentorProfile) error {
	if len(ms) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*MentorProfile, len(ms))
	ids := make([]uuid.UUID, 0, len(ms))
	for _, m := range ms {
		m.ExpertiseIndustries = []int64{}
		m.CanHelpWith = []int64{}
		byID[m.UserID] = m
		ids = append(ids, m.UserID)
	}
	inds, err := r.links(ctx, tableMentorIndustries, "subcategory_id", ids)
	if err != nil {
		return fmt.Errorf("load mentor industries: %w", err)
	}
	for _, l := range inds {
		byID[l.owner].ExpertiseIndustries = append(byID[l.owner].ExpertiseIndustries, l.target)
	}
	objs, err := r.links(ctx, tableMentorObjectives, "objective_id", ids)
	if err != nil {
		return fmt.Errorf("load mentor objectives: %w", err)
	}
	for _, l := range objs {
		byID[l.owner].CanHelpWith = append(byID[l.owner].CanHelpWith, l.target)
	}
	return nil
}

// SaveMentor writes the scalar fields and replaces both link sets.
func (r *ProfileRepo) SaveMentor(ctx context.Context, p *MentorProfile) error {
	err := r.c.withTx(ctx, func(tc *conn) error {
		now := tc.timestamp()
		q, args := tc.builder().Insert(tableMentorProfiles).
			Columns(mentorColumns...).
			Values(p.UserID, p.Company, p.Role, p.YearsOfExperience, now, now).
			OnConflict(
				entsql.ConflictColumns("user_id"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.SetExcluded("company")
					u.SetExcluded("role")
					u.SetExcluded("years_of_experience")
					u.SetExcluded("updated_at")
				}),
			).Query()
		if _, err := tc.exec(ctx, q, args); err != nil {
			return err
		}
		p.UpdatedAt = now
		if err := replaceLinks(ctx, tc, tableMentorIndustries, "subcategory_id", p.UserID, p.ExpertiseIndustries); err != nil {
			return err
		}
		return replaceLinks(ctx, tc, tableMentorObjectives, "objective_id", p.UserID, p.CanHelpWith)
	})
	if err != nil {
		return fmt.Errorf("save mentor profile: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Join-table helpers
// ---------------------------------------------------------------------------

type link struct {
	owner  uuid.UUID
	target int64
}

func (r *ProfileRepo) links(ctx context.Context, table, targetCol string, owners []uuid.UUID) ([]link, error) {
	t := entsql.Table(table)
	q, args := r.c.builder().Select(t.C("user_id"), t.C(targetCol)).
		From(t).
		Where(entsql.In(t.C("user_id"), uuidArgs(owners)...)).
		OrderBy(t.C(targetCol)).
		Query()
	var out []link
	err := r.c.query(ctx, q, args, func(row rowScanner) error {
		var l link
		if err := row.Scan(&l.owner, &l.target); err != nil {
			return err
		}
		out = append(out, l)
		return nil
	})
	return out, err
}

func replaceLinks(ctx context.Context, tc *conn, table, targetCol string, owner uuid.UUID, targets []int64) error {
	q, args := tc.builder().Delete(table).Where(entsql.EQ("user_id", owner)).Query()
	if _, err := tc.exec(ctx, q, args); err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}
	ins := tc.builder().Insert(table).Columns("user_id", targetCol)
	seen := make(map[int64]bool, len(targets))
	for _, id := range targets {
		if seen[id] {
			continue
		}
		seen[id] = true
		ins.Values(owner, id)
	}
	q, args = ins.Query()
	_, err := tc.exec(ctx, q, args)
	return err
}
