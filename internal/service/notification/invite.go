package notification

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/pkg/email"
)

const inviteProductID = "-//Sapan//Office Hours//EN"

func inviteUID(id fmt.Stringer) string {
	return "sapan-booking-" + id.String() + "@sapan.io"
}

// BuildInvite renders the booking as an iCalendar REQUEST attachment. Times
// are written in UTC.
func BuildInvite(b *repo.Booking, stamp time.Time) email.Attachment {
	cal := ics.NewCalendar()
	cal.SetProductId(inviteProductID)
	cal.SetMethod(ics.MethodRequest)

	ev := cal.AddEvent(inviteUID(b.ID))
	ev.SetDtStampTime(stamp.UTC())
	ev.SetStartAt(b.StartTime.UTC())
	ev.SetEndAt(b.EndTime.UTC())
	ev.SetSummary(fmt.Sprintf("Office Hours: %s & %s", firstName(b.Founder), firstName(b.Mentor)))
	ev.SetLocation(b.GoogleMeetLink)
	ev.SetDescription(inviteDescription(b))
	if b.Mentor != nil && b.Mentor.Email != "" {
		ev.SetOrganizer("mailto:"+b.Mentor.Email, ics.WithCN(partyName(b.Mentor)))
	}
	for _, p := range []*repo.UserSummary{b.Founder, b.Mentor} {
		if p == nil || p.Email == "" {
			continue
		}
		ev.AddAttendee(p.Email,
			ics.CalendarUserTypeIndividual,
			ics.ParticipationStatusNeedsAction,
			ics.ParticipationRoleReqParticipant,
			ics.WithCN(partyName(p)),
			ics.WithRSVP(true),
		)
	}

	return email.Attachment{
		Filename:    "office-hours-" + b.ID.String() + ".ics",
		ContentType: "text/calendar; method=REQUEST; charset=UTF-8",
		Data:        []byte(cal.Serialize()),
	}
}

func inviteDescription(b *repo.Booking) string {
	var parts []string
	if a := strings.TrimSpace(b.Agenda); a != "" {
		parts = append(parts, "Agenda: "+a)
	}
	if b.GoogleMeetLink != "" {
		parts = append(parts, "Join: "+b.GoogleMeetLink)
	}
	return strings.Join(parts, "\n\n")
}

func firstName(u *repo.UserSummary) string {
	if u == nil {
		return ""
	}
	return u.FirstName
}

func partyName(u *repo.UserSummary) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
