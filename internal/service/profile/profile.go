package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
)

type Store interface {
	Get(ctx context.Context, u *repo.User) (repo.Profile, error)
	GetFounder(ctx context.Context, userID uuid.UUID) (*repo.FounderProfile, error)
	ListFounders(ctx context.Context, f repo.FounderFilter) ([]*repo.FounderProfile, error)
	SaveFounder(ctx context.Context, p *repo.FounderProfile) error
	GetMentor(ctx context.Context, userID uuid.UUID) (*repo.MentorProfile, error)
	GetApprovedMentor(ctx context.Context, userID uuid.UUID) (*repo.MentorProfile, error)
	ListMentors(ctx context.Context, f repo.MentorFilter) ([]*repo.MentorProfile, error)
	SaveMentor(ctx context.Context, p *repo.MentorProfile) error
}

// Catalog checks that referenced catalog ids exist.
type Catalog interface {
	CountSubcategories(ctx context.Context, ids []int64) (int, error)
	CountObjectives(ctx context.Context, ids []int64) (int, error)
}

type UserReader interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.User, error)
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Update carries fields for either variant. Only the fields of the caller's
// variant are applied. Nil leaves a field unchanged; an empty slice clears a
// link set.
type Update struct {
	// founder
	StartupName  *string     `json:"startup_name"`
	IndustryID   *int64      `json:"industry_id"`
	Stage        *repo.Stage `json:"stage"`
	ObjectiveIDs []int64     `json:"objective_ids"`
	AboutStartup *string     `json:"about_startup"`

	// mentor
	Company             *string `json:"company"`
	Role                *string `json:"role"`
	YearsOfExperience   *int    `json:"years_of_experience"`
	ExpertiseIndustries []int64 `json:"expertise_industries"`
	CanHelpWith         []int64 `json:"can_help_with"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// GetMine returns *repo.FounderProfile or *repo.MentorProfile.
	GetMine(ctx context.Context, userID uuid.UUID) (repo.Profile, error)
	UpdateMine(ctx context.Context, userID uuid.UUID, in Update) (repo.Profile, error)

	ListMentors(ctx context.Context, f repo.MentorFilter) ([]*repo.MentorProfile, error)
	GetMentor(ctx context.Context, id uuid.UUID) (*repo.MentorProfile, error)
	ListFounders(ctx context.Context, f repo.FounderFilter) ([]*repo.FounderProfile, error)
	GetFounder(ctx context.Context, id uuid.UUID) (*repo.FounderProfile, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type profileService struct {
	store   Store
	catalog Catalog
	users   UserReader
}

func New(store Store, catalog Catalog, users UserReader) Service {
	return &profileService{store: store, catalog: catalog, users: users}
}

func (s *profileService) typedUser(ctx context.Context, userID uuid.UUID) (*repo.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !u.UserType.Valid() {
		return nil, ErrProfileIncomplete
	}
	return u, nil
}

func (s *profileService) GetMine(ctx context.Context, userID uuid.UUID) (repo.Profile, error) {
	u, err := s.typedUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Get(ctx, u)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrProfileIncomplete
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *profileService) UpdateMine(ctx context.Context, userID uuid.UUID, in Update) (repo.Profile, error) {
	cur, err := s.GetMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch p := cur.(type) {
	case *repo.FounderProfile:
		if err := s.applyFounder(ctx, p, in); err != nil {
			return nil, err
		}
		if err := s.store.SaveFounder(ctx, p); err != nil {
			return nil, err
		}
		return s.store.GetFounder(ctx, userID)
	case *repo.MentorProfile:
		if err := s.applyMentor(ctx, p, in); err != nil {
			return nil, err
		}
		if err := s.store.SaveMentor(ctx, p); err != nil {
			return nil, err
		}
		return s.store.GetMentor(ctx, userID)
	default:
		return nil, fmt.Errorf("update profile: unexpected variant %T", cur)
	}
}

func (s *profileService) applyFounder(ctx context.Context, p *repo.FounderProfile, in Update) error {
	if in.Stage != nil {
		if *in.Stage != "" && !in.Stage.Valid() {
			return ErrInvalidStage
		}
		p.Stage = *in.Stage
	}
	if in.IndustryID != nil {
		if err := s.checkSubcategories(ctx, []int64{*in.IndustryID}); err != nil {
			return err
		}
		p.IndustryID = in.IndustryID
	}
	if in.ObjectiveIDs != nil {
		ids := dedupe(in.ObjectiveIDs)
		if err := s.checkObjectives(ctx, ids); err != nil {
			return err
		}
		p.ObjectiveIDs = ids
	}
	if in.StartupName != nil {
		p.StartupName = strings.TrimSpace(*in.StartupName)
	}
	if in.AboutStartup != nil {
		p.AboutStartup = strings.TrimSpace(*in.AboutStartup)
	}
	return nil
}

func (s *profileService) applyMentor(ctx context.Context, p *repo.MentorProfile, in Update) error {
	if in.YearsOfExperience != nil {
		if *in.YearsOfExperience < 0 {
			return ErrInvalidExperience
		}
		p.YearsOfExperience = *in.YearsOfExperience
	}
	if in.ExpertiseIndustries != nil {
		ids := dedupe(in.ExpertiseIndustries)
		if err := s.checkSubcategories(ctx, ids); err != nil {
			return err
		}
		p.ExpertiseIndustries = ids
	}
	if in.CanHelpWith != nil {
		ids := dedupe(in.CanHelpWith)
		if err := s.checkObjectives(ctx, ids); err != nil {
			return err
		}
		p.CanHelpWith = ids
	}
	if in.Company != nil {
		p.Company = strings.TrimSpace(*in.Company)
	}
	if in.Role != nil {
		p.Role = strings.TrimSpace(*in.Role)
	}
	return nil
}

func (s *profileService) checkSubcategories(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := s.catalog.CountSubcategories(ctx, ids)
	if err != nil {
		return err
	}
	if n != len(ids) {
		return ErrUnknownIndustry
	}
	return nil
}

func (s *profileService) checkObjectives(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := s.catalog.CountObjectives(ctx, ids)
	if err != nil {
		return err
	}
	if n != len(ids) {
		return ErrUnknownObjective
	}
	return nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ---------------------------------------------------------------------------
// Directory
// ---------------------------------------------------------------------------

func (s *profileService) ListMentors(ctx context.Context, f repo.MentorFilter) ([]*repo.MentorProfile, error) {
	f.Search = strings.TrimSpace(f.Search)
	ms, err := s.store.ListMentors(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}
	if ms == nil {
		ms = []*repo.MentorProfile{}
	}
	return ms, nil
}

func (s *profileService) GetMentor(ctx context.Context, id uuid.UUID) (*repo.MentorProfile, error) {
	m, err := s.store.GetApprovedMentor(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrMentorNotFound
		}
		return nil, fmt.Errorf("get mentor: %w", err)
	}
	return m, nil
}

func (s *profileService) ListFounders(ctx context.Context, f repo.FounderFilter) ([]*repo.FounderProfile, error) {
	if f.Stage != "" && !f.Stage.Valid() {
		return nil, ErrInvalidStage
	}
	f.Search = strings.TrimSpace(f.Search)
	fs, err := s.store.ListFounders(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list founders: %w", err)
	}
	if fs == nil {
		fs = []*repo.FounderProfile{}
	}
	return fs, nil
}

func (s *profileService) GetFounder(ctx context.Context, id uuid.UUID) (*repo.FounderProfile, error) {
	p, err := s.store.GetFounder(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrFounderNotFound
		}
		return nil, fmt.Errorf("get founder: %w", err)
	}
	return p, nil
}
