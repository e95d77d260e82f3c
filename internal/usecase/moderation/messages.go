package moderation

import (
	"fmt"
	"strings"

	"blue-collar-portal/internal/domain/appeal"
	"blue-collar-portal/internal/domain/company"
	"blue-collar-portal/internal/domain/listing"
	"blue-collar-portal/internal/domain/notification"
	"blue-collar-portal/internal/domain/report"

	"github.com/google/uuid"
)

func listingRef(id uuid.UUID) string { return "/listings/" + id.String() }
func appealRef(id uuid.UUID) string  { return "/appeals/" + id.String() }
func reportRef(id uuid.UUID) string  { return "/reports/" + id.String() }
func companyRef(id uuid.UUID) string { return "/companies/" + id.String() }

func screeningMessage(l listing.Listing) notification.Message {
	m := notification.Message{UserID: l.EmployerID, ActionRef: listingRef(l.ID)}
	switch l.Status {
	case listing.StatusApproved:
		m.Title = "Listing approved"
		m.Body = fmt.Sprintf("Your listing %q passed automated screening and is now live.", l.Title)
	case listing.StatusRejectedAI:
		m.Title = "Listing rejected"
		m.Body = fmt.Sprintf("Your listing %q was rejected by automated screening: %s. Edit the listing to have it screened again, or submit an appeal.", l.Title, deref(l.RejectionReason))
	default:
		m.Title = "Listing pending review"
		m.Body = fmt.Sprintf("Your listing %q is waiting for review by our moderation team.", l.Title)
	}
	return m
}

func approvedMessage(l listing.Listing) notification.Message {
	return notification.Message{
		UserID:    l.EmployerID,
		Title:     "Listing approved",
		Body:      fmt.Sprintf("Your listing %q was approved by a moderator and is now live.", l.Title),
		ActionRef: listingRef(l.ID),
	}
}

func newListingMessage(seeker uuid.UUID, l listing.Listing) notification.Message {
	return notification.Message{
		UserID:    seeker,
		Title:     "New job in your industry",
		Body:      fmt.Sprintf("%s in %s was just posted.", l.Title, orDefault(l.Location, "your area")),
		ActionRef: listingRef(l.ID),
	}
}

func rejectedFinalMessage(l listing.Listing) notification.Message {
	return notification.Message{
		UserID:    l.EmployerID,
		Title:     "Listing rejected",
		Body:      fmt.Sprintf("Your listing %q was rejected by a moderator: %s. This decision is final.", l.Title, deref(l.RejectionReason)),
		ActionRef: listingRef(l.ID),
	}
}

func suspendedMessage(l listing.Listing) notification.Message {
	return notification.Message{
		UserID:    l.EmployerID,
		Title:     "Listing suspended",
		Body:      fmt.Sprintf("Your listing %q was suspended: %s. You may submit an appeal.", l.Title, deref(l.SuspensionReason)),
		ActionRef: listingRef(l.ID),
	}
}

func unsuspendedMessage(l listing.Listing) notification.Message {
	return notification.Message{
		UserID:    l.EmployerID,
		Title:     "Listing restored",
		Body:      fmt.Sprintf("The suspension on your listing %q was lifted and it is live again.", l.Title),
		ActionRef: listingRef(l.ID),
	}
}

func deletedMessage(l listing.Listing, reason string) notification.Message {
	return notification.Message{
		UserID: l.EmployerID,
		Title:  "Listing removed",
		Body:   fmt.Sprintf("Your listing %q was removed by a moderator: %s.", l.Title, orDefault(reason, "no reason given")),
	}
}

func reportActionMessage(r report.Report) notification.Message {
	m := notification.Message{UserID: r.ReporterID, ActionRef: reportRef(r.ID)}
	switch r.Status {
	case report.StatusResolved:
		m.Title = "Report resolved"
		m.Body = "Thank you. We reviewed your report and took action on the listing."
	case report.StatusDismissed:
		m.Title = "Report closed"
		m.Body = "We reviewed your report and found no policy violation."
	default:
		m.Title = "Report updated"
		m.Body = "Your report is being reviewed."
	}
	if r.AdminNotes != nil {
		m.Body += " Notes: " + *r.AdminNotes
	}
	return m
}

func newReportMessage(admin uuid.UUID, r report.Report) notification.Message {
	return notification.Message{
		UserID:    admin,
		Title:     "New listing report",
		Body:      fmt.Sprintf("A %s report was filed against a listing.", strings.ToLower(string(r.Type))),
		ActionRef: reportRef(r.ID),
	}
}

func appealReceivedMessage(a appeal.Appeal, l listing.Listing) notification.Message {
	return notification.Message{
		UserID:    a.EmployerID,
		Title:     "Appeal received",
		Body:      fmt.Sprintf("We received your appeal for %q and will review it shortly.", l.Title),
		ActionRef: appealRef(a.ID),
	}
}

func newAppealMessage(admin uuid.UUID, a appeal.Appeal) notification.Message {
	return notification.Message{
		UserID:    admin,
		Title:     "New appeal",
		Body:      fmt.Sprintf("An employer appealed a %s decision.", strings.ToLower(strings.ReplaceAll(string(a.Type), "_", " "))),
		ActionRef: appealRef(a.ID),
	}
}

func appealDecisionMessage(a appeal.Appeal, l listing.Listing) notification.Message {
	m := notification.Message{UserID: a.EmployerID, ActionRef: appealRef(a.ID)}
	if a.Status == appeal.StatusAccepted {
		m.Title = "Appeal accepted"
		m.Body = fmt.Sprintf("Your appeal was accepted and %q is live again.", l.Title)
	} else {
		m.Title = "Appeal rejected"
		m.Body = fmt.Sprintf("Your appeal for %q was rejected.", l.Title)
	}
	if a.AdminNotes != nil {
		m.Body += " Notes: " + *a.AdminNotes
	}
	return m
}

func companyDisabledMessage(c company.Company, suspended int) notification.Message {
	return notification.Message{
		UserID:    c.OwnerUserID,
		Title:     "Company disabled",
		Body:      fmt.Sprintf("%s was disabled: %s. %d active listing(s) were suspended.", c.Name, deref(c.DisabledReason), suspended),
		ActionRef: companyRef(c.ID),
	}
}

func companyEnabledMessage(c company.Company) notification.Message {
	return notification.Message{
		UserID:    c.OwnerUserID,
		Title:     "Company re-enabled",
		Body:      fmt.Sprintf("%s was re-enabled. Suspended listings stay suspended until each is reviewed or appealed.", c.Name),
		ActionRef: companyRef(c.ID),
	}
}

func verificationMessage(c company.Company) notification.Message {
	m := notification.Message{UserID: c.OwnerUserID, ActionRef: companyRef(c.ID)}
	if c.VerificationStatus == company.VerificationApproved {
		m.Title = "Company verified"
		m.Body = fmt.Sprintf("%s is verified. You can now post job listings.", c.Name)
		return m
	}
	m.Title = "Company verification rejected"
	m.Body = fmt.Sprintf("%s could not be verified: %s. Update your details and resubmit.", c.Name, deref(c.VerificationRemark))
	return m
}

func resubmittedMessage(admin uuid.UUID, c company.Company) notification.Message {
	return notification.Message{
		UserID:    admin,
		Title:     "Company resubmitted for verification",
		Body:      fmt.Sprintf("%s resubmitted its verification.", c.Name),
		ActionRef: companyRef(c.ID),
	}
}

func screeningReason(score int, flags []string, explanation string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Automated screening risk score %d/100", score)
	if len(flags) > 0 {
		b.WriteString("; flags: " + strings.Join(flags, ", "))
	}
	if explanation = strings.TrimSpace(explanation); explanation != "" {
		b.WriteString("; " + explanation)
	}
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
