// Package render turns typed ledger events into the German timeline text shown
// in the web client and in notification mails.
package render

import (
	"fmt"

	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/events"
	vo "github.com/fachwerk-hq/fachwerk/internal/domain/marketplace/valueobjects"
	"github.com/fachwerk-hq/fachwerk/internal/shared/biztime"
	"github.com/fachwerk-hq/fachwerk/internal/shared/money"
)

var invoiceStatusLabels = map[string]string{
	"draft":    "Entwurf",
	"sent":     "versendet",
	"paid":     "bezahlt",
	"overdue":  "überfällig",
	"canceled": "storniert",
}

// Text renders e as one timeline line.
func Text(e events.Event) string {
	switch ev := e.(type) {
	case events.ChatText:
		return ev.Body
	case events.ApplicationAccepted:
		return "Bewerbung angenommen"
	case events.AppointmentProposed:
		return fmt.Sprintf("%s vorgeschlagen: %s (%d Min.)",
			vo.AppointmentKind(ev.Kind).Label(), biztime.FormatDateTime(ev.StartAt), ev.DurationMin)
	case events.AppointmentConfirmed:
		return "Termin bestätigt"
	case events.AppointmentDeclined:
		if ev.Superseded {
			return "Termin durch neuen Vorschlag ersetzt"
		}
		return "Termin abgelehnt"
	case events.OrderIssued:
		return fmt.Sprintf("Angebot „%s“ über %s erstellt", ev.Title, money.FormatEUR(ev.GrossCents))
	case events.OrderAccepted:
		return fmt.Sprintf("Auftrag „%s“ über %s erteilt", ev.Title, money.FormatEUR(ev.GrossCents))
	case events.OrderDeclined:
		return fmt.Sprintf("Angebot „%s“ über %s abgelehnt", ev.Title, money.FormatEUR(ev.TotalCents))
	case events.OrderCanceled:
		if ev.Superseded {
			return fmt.Sprintf("Angebot „%s“ durch anderen Auftrag erledigt", ev.Title)
		}
		return fmt.Sprintf("Angebot „%s“ zurückgezogen", ev.Title)
	case events.RatingSubmitted:
		return fmt.Sprintf("Bewertung abgegeben: %d/10", ev.Stars)
	case events.InvoiceStatusChanged:
		label, ok := invoiceStatusLabels[ev.Status]
		if !ok {
			label = ev.Status
		}
		return fmt.Sprintf("Rechnung %s: %s", ev.InvoiceID, label)
	case events.ProblemReported:
		return "Problem gemeldet: " + ev.Note
	}
	return ""
}

// Subject is the mail subject for a notification about e.
func Subject(e events.Event, requestSummary string) string {
	switch e.(type) {
	case events.ChatText:
		return "Neue Nachricht zu „" + requestSummary + "“"
	case events.AppointmentProposed, events.AppointmentConfirmed, events.AppointmentDeclined:
		return "Terminänderung zu „" + requestSummary + "“"
	case events.OrderIssued, events.OrderAccepted, events.OrderDeclined, events.OrderCanceled:
		return "Neuigkeiten zum Angebot für „" + requestSummary + "“"
	}
	return "Aktualisierung zu „" + requestSummary + "“"
}
