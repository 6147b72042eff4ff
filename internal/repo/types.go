package repo

import (
	"time"

	"github.com/google/uuid"
)

// UserType selects the profile variant a user carries.
type UserType string

const (
	UserTypeNone    UserType = ""
	UserTypeFounder UserType = "founder"
	UserTypeMentor  UserType = "mentor"
)

func (t UserType) Valid() bool {
	return t == UserTypeFounder || t == UserTypeMentor
}

type User struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	UserType          UserType  `json:"user_type"`
	Bio               string    `json:"bio"`
	AvatarURL         string    `json:"avatar_url"`
	ProfilePhotoKey   string    `json:"-"`
	PasswordHash      string    `json:"-"`
	IsApproved        bool      `json:"is_approved"`
	IsProfileComplete bool      `json:"is_profile_complete"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserSummary is the public view of another user embedded in responses.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	UserType  UserType  `json:"user_type"`
	Bio       string    `json:"bio"`
	AvatarURL string    `json:"avatar_url"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserType:  u.UserType,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
	}
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

type IndustryCategory struct {
	ID            int64                  `json:"id"`
	Name          string                 `json:"name"`
	Slug          string                 `json:"slug"`
	Subcategories []*IndustrySubcategory `json:"subcategories"`
}

type IndustrySubcategory struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
}

type ObjectiveCategory string

const (
	ObjectiveFundraising ObjectiveCategory = "fundraising"
	ObjectiveOperations  ObjectiveCategory = "operations"
)

type Objective struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Slug     string            `json:"slug"`
	Category ObjectiveCategory `json:"category"`
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

type Stage string

const (
	StageIdea    Stage = "idea"
	StagePreSeed Stage = "pre_seed"
	StageSeed    Stage = "seed"
	StageSeriesA Stage = "series_a"
	StageGrowth  Stage = "growth"
)

// Stages lists every stage in funnel order.
var Stages = []Stage{StageIdea, StagePreSeed, StageSeed, StageSeriesA, StageGrowth}

var stageLabels = map[Stage]string{
	StageIdea:    "Idea Stage",
	StagePreSeed: "Pre-seed",
	StageSeed:    "Seed",
	StageSeriesA: "Series A",
	StageGrowth:  "Growth",
}

func (s Stage) Label() string { return stageLabels[s] }

func (s Stage) Valid() bool {
	_, ok := stageLabels[s]
	return ok
}

// Profile is implemented by *FounderProfile and *MentorProfile.
type Profile interface {
	profileOwner() uuid.UUID
}

type FounderProfile struct {
	UserID       uuid.UUID    `json:"user_id"`
	StartupName  string       `json:"startup_name"`
	IndustryID   *int64       `json:"industry_id"`
	Stage        Stage        `json:"stage"`
	ObjectiveIDs []int64      `json:"objective_ids"`
	AboutStartup string       `json:"about_startup"`
	User         *UserSummary `json:"user,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (p *FounderProfile) profileOwner() uuid.UUID { return p.UserID }

type MentorProfile struct {
	UserID              uuid.UUID    `json:"user_id"`
	Company             string       `json:"company"`
	Role                string       `json:"role"`
	YearsOfExperience   int          `json:"years_of_experience"`
	ExpertiseIndustries []int64      `json:"expertise_industries"`
	CanHelpWith         []int64      `json:"can_help_with"`
	User                *UserSummary `json:"user,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

func (p *MentorProfile) profileOwner() uuid.UUID { return p.UserID }

// MentorFilter narrows ListMentors. Zero values do not filter.
type MentorFilter struct {
	IndustryID  int64
	ObjectiveID int64
	Search      string
}

// FounderFilter narrows ListFounders. Zero values do not filter.
type FounderFilter struct {
	IndustryID  int64
	Stage       Stage
	ObjectiveID int64
	Search      string
}

// ---------------------------------------------------------------------------
// Office hours
// ---------------------------------------------------------------------------

// AvailabilityRule is a recurring weekly window. Weekday 0 is Monday.
type AvailabilityRule struct {
	ID                  uuid.UUID `json:"id"`
	MentorID            uuid.UUID `json:"mentor_id"`
	Weekday             int       `json:"weekday"`
	StartTime           TimeOfDay `json:"start_time"`
	EndTime             TimeOfDay `json:"end_time"`
	SlotDurationMinutes int       `json:"slot_duration_minutes"`
	Timezone            string    `json:"timezone"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type BookingStatus string

const (
	BookingConfirmed          BookingStatus = "confirmed"
	BookingCancelledByFounder BookingStatus = "cancelled_by_founder"
	BookingCancelledByMentor  BookingStatus = "cancelled_by_mentor"
	BookingCompleted          BookingStatus = "completed"
)

// ConstraintOneConfirmedPerStart guards double-booking of a mentor slot.
const ConstraintOneConfirmedPerStart = "bookings_one_confirmed_per_start"

type Booking struct {
	ID             uuid.UUID     `json:"id"`
	MentorID       uuid.UUID     `json:"mentor_id"`
	FounderID      uuid.UUID     `json:"founder_id"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Agenda         string        `json:"agenda"`
	GoogleMeetLink string        `json:"google_meet_link"`
	Status         BookingStatus `json:"status"`
	ReminderSent   bool          `json:"-"`
	Mentor         *UserSummary  `json:"mentor,omitempty"`
	Founder        *UserSummary  `json:"founder,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type CalendarToken struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Scope        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ---------------------------------------------------------------------------
// Connections
// ---------------------------------------------------------------------------

type ConnectionIntent string

const (
	IntentMentorMe    ConnectionIntent = "mentor_me"
	IntentCollaborate ConnectionIntent = "collaborate"
	IntentPeerNetwork ConnectionIntent = "peer_network"
)

func (i ConnectionIntent) Valid() bool {
	switch i {
	case IntentMentorMe, IntentCollaborate, IntentPeerNetwork:
		return true
	}
	return false
}

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
)

type ConnectionRequest struct {
	ID          uuid.UUID        `json:"id"`
	FromUserID  uuid.UUID        `json:"from_user_id"`
	ToUserID    uuid.UUID        `json:"to_user_id"`
	Intent      ConnectionIntent `json:"intent"`
	Message     string           `json:"message"`
	Status      ConnectionStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	RespondedAt *time.Time       `json:"responded_at"`
	FromUser    *UserSummary     `json:"from_user,omitempty"`
	ToUser      *UserSummary     `json:"to_user,omitempty"`
}
