package email

import (
	"fmt"
	"html"
	"strings"
	"time"
)

const (
	appName = "Sapan"

	displayDateTime = "Monday, January 02, 2006 at 03:04 PM"
	displayTime     = "03:04 PM"
)

// Party is one side of an office-hours booking as shown in emails.
type Party struct {
	FirstName string
	LastName  string
	Email     string
}

func (p Party) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p Party) greetingName() string {
	if p.FirstName == "" {
		return "there"
	}
	return p.FirstName
}

// BookingEmailData contains the data needed for office-hours email templates.
type BookingEmailData struct {
	Founder  Party
	Mentor   Party
	Start    time.Time
	End      time.Time
	MeetLink string
	Agenda   string

	// CancelledBy is "founder" or "mentor"; only read by cancellation emails.
	CancelledBy string

	// Location controls the displayed wall-clock times. UTC when nil.
	Location *time.Location
}

func (d BookingEmailData) loc() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}

func (d BookingEmailData) startText() string {
	return d.Start.In(d.loc()).Format(displayDateTime)
}

func (d BookingEmailData) endText() string {
	return d.End.In(d.loc()).Format(displayTime)
}

func (d BookingEmailData) agendaText() string {
	if strings.TrimSpace(d.Agenda) == "" {
		return "Not specified"
	}
	return d.Agenda
}

const htmlHead = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
`

const htmlFoot = `    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Best regards,<br>The ` + appName + ` Team</p>
</body>
</html>`

func detailsBlock(when, meetLink, agenda string) string {
	var b strings.Builder
	b.WriteString(`    <div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">` + "\n")
	fmt.Fprintf(&b, `        <p style="margin: 5px 0;"><strong>When:</strong> %s</p>`+"\n", html.EscapeString(when))
	fmt.Fprintf(&b, `        <p style="margin: 5px 0;"><strong>Where:</strong> <a href="%s">Google Meet</a></p>`+"\n", html.EscapeString(meetLink))
	if agenda != "" {
		fmt.Fprintf(&b, `        <p style="margin: 5px 0;"><strong>Agenda:</strong> %s</p>`+"\n", html.EscapeString(agenda))
	}
	b.WriteString("    </div>\n")
	return b.String()
}

func joinButton(meetLink string) string {
	return fmt.Sprintf(`    <p style="text-align: center; margin: 30px 0;">
        <a href="%s" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Join Google Meet</a>
    </p>
`, html.EscapeString(meetLink))
}

// BuildBookingConfirmationEmails returns the confirmation messages for the
// founder and the mentor, in that order. Both carry the same invite when ics
// is non-empty.
func BuildBookingConfirmationEmails(d BookingEmailData, ics *Attachment) (Message, Message) {
	when := d.startText() + " - " + d.endText()

	founderText := fmt.Sprintf(`Hi %s,

Your office hours session with %s has been confirmed.

When: %s
Where: %s
Agenda: %s

We've attached a calendar invite (.ics file) that you can add to your calendar.

Best regards,
The %s Team`,
		d.Founder.greetingName(), d.Mentor.FullName(), when, d.MeetLink, d.agendaText(), appName)

	founderHTML := htmlHead +
		`    <h2 style="color: #2563eb;">Your Office Hours Session is Confirmed!</h2>` + "\n" +
		fmt.Sprintf(`    <p>Hi %s,</p>`+"\n", html.EscapeString(d.Founder.greetingName())) +
		fmt.Sprintf(`    <p>Your office hours session with <strong>%s</strong> has been confirmed.</p>`+"\n", html.EscapeString(d.Mentor.FullName())) +
		detailsBlock(when, d.MeetLink, d.agendaText()) +
		joinButton(d.MeetLink) +
		`    <p style="color: #6b7280; font-size: 14px;">We've attached a calendar invite (.ics file) that you can add to your calendar.</p>` + "\n" +
		htmlFoot

	mentorText := fmt.Sprintf(`Hi %s,

%s has booked an office hours session with you.

When: %s
Where: %s
Agenda: %s

We've attached a calendar invite (.ics file) that you can add to your calendar.

Best regards,
The %s Team`,
		d.Mentor.greetingName(), d.Founder.FullName(), when, d.MeetLink, d.agendaText(), appName)

	mentorHTML := htmlHead +
		`    <h2 style="color: #2563eb;">New Office Hours Booking</h2>` + "\n" +
		fmt.Sprintf(`    <p>Hi %s,</p>`+"\n", html.EscapeString(d.Mentor.greetingName())) +
		fmt.Sprintf(`    <p><strong>%s</strong> has booked an office hours session with you.</p>`+"\n", html.EscapeString(d.Founder.FullName())) +
		detailsBlock(when, d.MeetLink, d.agendaText()) +
		joinButton(d.MeetLink) +
		`    <p style="color: #6b7280; font-size: 14px;">We've attached a calendar invite (.ics file) that you can add to your calendar.</p>` + "\n" +
		htmlFoot

	founder := Message{
		To:       []string{d.Founder.Email},
		Subject:  "Office Hours Confirmed with " + d.Mentor.FirstName,
		TextBody: founderText,
		HTMLBody: founderHTML,
	}
	mentor := Message{
		To:       []string{d.Mentor.Email},
		Subject:  "Office Hours Booked: " + d.Founder.FirstName,
		TextBody: mentorText,
		HTMLBody: mentorHTML,
	}
	if ics != nil && len(ics.Data) > 0 {
		founder.Attachments = []Attachment{*ics}
		mentor.Attachments = []Attachment{*ics}
	}
	return founder, mentor
}

// BuildBookingCancellationEmails returns the cancellation notices for the
// founder and the mentor, in that order.
func BuildBookingCancellationEmails(d BookingEmailData) (Message, Message) {
	start := d.startText()
	canceller := d.Mentor.FullName()
	if d.CancelledBy == "founder" {
		canceller = d.Founder.FullName()
	}
	subject := "Office Hours Cancelled - " + start

	build := func(to Party, rebook bool) Message {
		text := fmt.Sprintf(`Hi %s,

The office hours session scheduled for %s has been cancelled by %s.
`, to.greetingName(), start, canceller)
		body := htmlHead +
			`    <h2 style="color: #dc2626;">Office Hours Session Cancelled</h2>` + "\n" +
			fmt.Sprintf(`    <p>Hi %s,</p>`+"\n", html.EscapeString(to.greetingName())) +
			fmt.Sprintf(`    <p>The office hours session scheduled for <strong>%s</strong> has been cancelled by %s.</p>`+"\n",
				html.EscapeString(start), html.EscapeString(canceller))
		if rebook {
			text += "\nIf you'd like to reschedule, you can book a new session through " + appName + ".\n"
			body += `    <p>If you'd like to reschedule, you can book a new session through ` + appName + `.</p>` + "\n"
		}
		text += "\nBest regards,\nThe " + appName + " Team"
		body += htmlFoot
		return Message{
			To:       []string{to.Email},
			Subject:  subject,
			TextBody: text,
			HTMLBody: body,
		}
	}

	return build(d.Founder, true), build(d.Mentor, false)
}

// BuildBookingReminderEmails returns the day-before reminders for the founder
// and the mentor, in that order.
func BuildBookingReminderEmails(d BookingEmailData) (Message, Message) {
	start := d.startText()

	build := func(to, other Party) Message {
		text := fmt.Sprintf(`Hi %s,

This is a reminder that you have an office hours session with %s tomorrow.

When: %s
Where: %s

Best regards,
The %s Team`, to.greetingName(), other.FirstName, start, d.MeetLink, appName)
		body := htmlHead +
			`    <h2 style="color: #2563eb;">Reminder: Office Hours Tomorrow</h2>` + "\n" +
			fmt.Sprintf(`    <p>Hi %s,</p>`+"\n", html.EscapeString(to.greetingName())) +
			fmt.Sprintf(`    <p>This is a reminder that you have an office hours session with <strong>%s</strong> tomorrow.</p>`+"\n",
				html.EscapeString(other.FirstName)) +
			detailsBlock(start, d.MeetLink, "") +
			joinButton(d.MeetLink) +
			htmlFoot
		return Message{
			To:       []string{to.Email},
			Subject:  "Reminder: Office Hours Tomorrow with " + other.FirstName,
			TextBody: text,
			HTMLBody: body,
		}
	}

	return build(d.Founder, d.Mentor), build(d.Mentor, d.Founder)
}
