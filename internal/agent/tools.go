package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/faridmamadou/anipHair/internal/model"
	"github.com/faridmamadou/anipHair/internal/service"
)

const (
	toolListAppointments  = "list_appointments"
	toolListFreeSlots     = "list_free_slots"
	toolBlockTimeSlot     = "block_time_slot"
	toolCancelAppointment = "cancel_appointment"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

func toolSpecs() []ToolSpec {
	return []ToolSpec{
		{
			Name:        toolListAppointments,
			Description: "Liste les rendez-vous d'une journée.",
			Params: map[string]string{
				"date": "Date au format YYYY-MM-DD",
			},
			Required: []string{"date"},
		},
		{
			Name:        toolListFreeSlots,
			Description: "Trouve les créneaux libres d'une journée.",
			Params: map[string]string{
				"date": "Date au format YYYY-MM-DD",
			},
			Required: []string{"date"},
		},
		{
			Name:        toolBlockTimeSlot,
			Description: "Bloque un créneau horaire.",
			Params: map[string]string{
				"customer_name": "Nom du client",
				"style_name":    "Nom de la prestation du catalogue",
				"date_time":     "YYYY-MM-DD HH:MM",
			},
			Required: []string{"customer_name", "style_name", "date_time"},
		},
		{
			Name:        toolCancelAppointment,
			Description: "Annule un rendez-vous.",
			Params: map[string]string{
				"appointment_id": "ID ou partie de l'ID",
				"customer_name":  "Nom du client",
			},
		},
	}
}

// execute runs one requested tool against the scheduling operations.
// Domain failures become relayable text; only store failures are errors.
func (a *Agent) execute(ctx context.Context, call ToolCall, styles []model.Service) (ToolResult, error) {
	switch call.Name {
	case toolListAppointments:
		return a.runListAppointments(ctx, call.Args)
	case toolListFreeSlots:
		return a.runListFreeSlots(ctx, call.Args)
	case toolBlockTimeSlot:
		return a.runBlockTimeSlot(ctx, call.Args, styles)
	case toolCancelAppointment:
		return a.runCancelAppointment(ctx, call.Args)
	default:
		return TextResult(fmt.Sprintf("Outil inconnu : %s.", call.Name)), nil
	}
}

func (a *Agent) runListAppointments(ctx context.Context, args map[string]any) (ToolResult, error) {
	day, ok := a.argDate(args, "date")
	if !ok {
		return TextResult("Format de date invalide. Utilisez YYYY-MM-DD."), nil
	}

	appts, err := a.booking.ListForDay(ctx, day)
	if err != nil {
		return nil, err
	}

	if len(appts) == 0 {
		return TextResult(fmt.Sprintf("Aucun rendez-vous prévu pour le %s.", day.Format("02/01/2006"))), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rendez-vous pour le %s :\n", day.Format("02/01/2006"))
	for _, appt := range appts {
		styleName := "N/A"
		if appt.Service != nil {
			styleName = appt.Service.Name
		}
		fmt.Fprintf(&b, "- %s : %s (%s) [ID: %s]\n",
			appt.StartTime.Format("15:04"), appt.CustomerName, styleName, appt.ShortID())
	}
	return TextResult(b.String()), nil
}

func (a *Agent) runListFreeSlots(ctx context.Context, args map[string]any) (ToolResult, error) {
	day, ok := a.argDate(args, "date")
	if !ok {
		return TextResult("Format de date invalide. Utilisez YYYY-MM-DD."), nil
	}

	slots, err := a.booking.FreeSlotsForDay(ctx, day)
	if err != nil {
		return nil, err
	}

	times := make([]string, 0, len(slots))
	for _, slot := range slots {
		times = append(times, slot.Format("15:04"))
	}

	return StructuredResult{
		"date":       day.Format(dateLayout),
		"free_slots": times,
	}, nil
}

func (a *Agent) runBlockTimeSlot(ctx context.Context, args map[string]any, styles []model.Service) (ToolResult, error) {
	customerName := argString(args, "customer_name")
	styleName := argString(args, "style_name")

	start, err := time.ParseInLocation(dateTimeLayout, argString(args, "date_time"), a.now().Location())
	if err != nil {
		return TextResult("Format date_time invalide. Utilisez YYYY-MM-DD HH:MM."), nil
	}

	style, found := matchStyle(styles, styleName)
	if !found {
		return TextResult(fmt.Sprintf(
			"Prestation '%s' non trouvée dans le catalogue. Veuillez préciser une prestation valide.",
			styleName)), nil
	}

	appt, err := a.booking.Create(ctx, style.ID, customerName, "Unknown", start, "")
	if err != nil {
		var conflict *service.ConflictError
		if errors.As(err, &conflict) {
			return TextResult(fmt.Sprintf(
				"Conflit de planning : un rendez-vous (%s) est déjà prévu de %s à %s.",
				conflict.CustomerName,
				conflict.Start.Format("15:04"),
				conflict.End.Format("15:04"))), nil
		}
		if errors.Is(err, service.ErrServiceNotFound) {
			return TextResult(fmt.Sprintf(
				"Prestation '%s' non trouvée dans le catalogue. Veuillez préciser une prestation valide.",
				styleName)), nil
		}
		return nil, err
	}

	// Bookings taken over chat are confirmed on the spot.
	if _, err := a.booking.Confirm(ctx, appt.ID); err != nil {
		return nil, err
	}

	return TextResult(fmt.Sprintf(
		"Rendez-vous confirmé pour %s (%s) le %s. [ID: %s]",
		customerName, style.Name, start.Format("02/01/2006 à 15:04"), appt.ShortID())), nil
}

func (a *Agent) runCancelAppointment(ctx context.Context, args map[string]any) (ToolResult, error) {
	appointmentID := argString(args, "appointment_id")
	customerName := argString(args, "customer_name")

	if appointmentID == "" && customerName == "" {
		return TextResult("Veuillez fournir un ID de rendez-vous ou un nom de client."), nil
	}

	appt, err := a.booking.Cancel(ctx, appointmentID, customerName)
	if err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			return TextResult("Rendez-vous introuvable."), nil
		}
		return nil, err
	}

	return TextResult(fmt.Sprintf(
		"Le rendez-vous de %s le %s a été annulé avec succès.",
		appt.CustomerName, appt.StartTime.Format("02/01/2006 à 15:04"))), nil
}

// matchStyle finds a catalog entry whose name contains name,
// case-insensitively. Among multiple matches the shortest name wins, ties
// broken by lowest catalog id, so resolution never depends on store
// iteration order.
func matchStyle(styles []model.Service, name string) (model.Service, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return model.Service{}, false
	}

	var best model.Service
	found := false
	for _, s := range styles {
		if !strings.Contains(strings.ToLower(s.Name), needle) {
			continue
		}
		if !found ||
			len(s.Name) < len(best.Name) ||
			(len(s.Name) == len(best.Name) && s.ID < best.ID) {
			best = s
			found = true
		}
	}
	return best, found
}

func (a *Agent) argDate(args map[string]any, key string) (time.Time, bool) {
	raw := argString(args, key)
	if raw == "" {
		now := a.now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	}

	day, err := time.ParseInLocation(dateLayout, raw, a.now().Location())
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
