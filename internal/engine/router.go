package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/faridmamadou/anipHair/internal/model"
	"github.com/faridmamadou/anipHair/internal/service"
)

// Keyword commands form the fast deterministic tier: common operator
// actions stay auditable and independent of the inference backend.
const (
	cmdList    = "LIST"
	cmdToday   = "TODAY"
	cmdHelp    = "HELP"
	cmdConfirm = "CONFIRM"
	cmdCancel  = "CANCEL"
)

const upcomingDays = 7

// Responder handles free-form text; in production it is the tool-calling
// agent.
type Responder interface {
	Reply(ctx context.Context, senderID int64, text string) (string, error)
}

// Transcriber turns voice notes into text fed back through Handle.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// LastMessages records the last inbound message per sender; best-effort.
type LastMessages interface {
	SetLast(ctx context.Context, senderID int64, text string) error
}

// Engine is the per-message dispatcher: exact keyword commands go
// straight to scheduling operations, everything else to the agent. It is
// stateless between messages.
type Engine struct {
	booking     *service.BookingService
	agent       Responder
	transcriber Transcriber
	lastMsgs    LastMessages
	logger      *zap.Logger
	now         func() time.Time
}

func NewEngine(
	booking *service.BookingService,
	agent Responder,
	transcriber Transcriber,
	lastMsgs LastMessages,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		booking:     booking,
		agent:       agent,
		transcriber: transcriber,
		lastMsgs:    lastMsgs,
		logger:      logger,
		now:         time.Now,
	}
}

// Handle classifies one inbound message and returns the reply text, ""
// when there is nothing to say. Domain errors become user-facing French
// replies; only store failures are returned as errors.
func (e *Engine) Handle(ctx context.Context, senderID int64, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", nil
	}

	fields := strings.Fields(trimmed)
	keyword := strings.ToUpper(fields[0])
	args := fields[1:]

	var reply string
	var err error

	switch keyword {
	case cmdList:
		reply, err = e.replyUpcoming(ctx)
	case cmdToday:
		reply, err = e.replyForDay(ctx, e.now())
	case cmdHelp:
		reply = helpText()
	case cmdConfirm:
		reply, err = e.replyConfirm(ctx, args)
	case cmdCancel:
		reply, err = e.replyCancel(ctx, args)
	default:
		e.logger.Info("Routing to agent", zap.Int64("sender_id", senderID))
		reply, err = e.agent.Reply(ctx, senderID, trimmed)
	}
	if err != nil {
		return "", err
	}

	e.recordLast(ctx, senderID, trimmed)

	return reply, nil
}

// HandleAudio transcribes a voice note and routes the text through
// Handle. Transcription failure degrades to an apology reply.
func (e *Engine) HandleAudio(ctx context.Context, senderID int64, audio []byte, filename string) (string, error) {
	text, err := e.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		e.logger.Error("Transcription failed",
			zap.Int64("sender_id", senderID),
			zap.String("filename", filename),
			zap.Error(err))
		return "Désolé, je n'ai pas pu traiter ce message vocal. Pouvez-vous l'écrire ?", nil
	}

	e.logger.Info("Voice note transcribed",
		zap.Int64("sender_id", senderID),
		zap.String("text", text))

	return e.Handle(ctx, senderID, text)
}

func (e *Engine) replyUpcoming(ctx context.Context) (string, error) {
	appts, err := e.booking.ListUpcoming(ctx, upcomingDays)
	if err != nil {
		return "", err
	}

	if len(appts) == 0 {
		return "Aucun rendez-vous prévu pour les 7 prochains jours.", nil
	}

	var b strings.Builder
	b.WriteString("Planning Anip Hair\n\n")
	for _, appt := range appts {
		fmt.Fprintf(&b, "[%s] %s - %s | %s (%s)\n",
			strings.ToUpper(string(appt.Status)),
			appt.ShortID(),
			appt.StartTime.Format("02/01 15:04"),
			appt.CustomerName,
			styleName(&appt))
	}
	b.WriteString("\nUtilisez CONFIRM [ID] ou CANCEL [ID]")

	return b.String(), nil
}

func (e *Engine) replyForDay(ctx context.Context, day time.Time) (string, error) {
	appts, err := e.booking.ListForDay(ctx, day)
	if err != nil {
		return "", err
	}

	if len(appts) == 0 {
		return "Aucun rendez-vous prévu pour aujourd'hui.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Planning du %s\n\n", day.Format("02/01/2006"))
	for _, appt := range appts {
		icon := "⏳"
		if appt.Status == model.AppointmentStatusConfirmed {
			icon = "✅"
		}
		fmt.Fprintf(&b, "%s %s - %s (%s) [ID: %s]\n",
			icon,
			appt.StartTime.Format("15:04"),
			appt.CustomerName,
			styleName(&appt),
			appt.ShortID())
	}

	return b.String(), nil
}

func (e *Engine) replyConfirm(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "Précisez l'ID. Exemple : CONFIRM ab12cd34", nil
	}

	appt, err := e.booking.Confirm(ctx, args[0])
	if err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			return fmt.Sprintf("Rendez-vous %s introuvable.", args[0]), nil
		}
		return "", err
	}

	return fmt.Sprintf("RDV de %s (%s) confirmé.", appt.CustomerName, appt.ShortID()), nil
}

func (e *Engine) replyCancel(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "Précisez l'ID. Exemple : CANCEL ab12cd34", nil
	}

	appt, err := e.booking.Cancel(ctx, args[0], "")
	if err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			return fmt.Sprintf("Rendez-vous %s introuvable.", args[0]), nil
		}
		return "", err
	}

	return fmt.Sprintf("RDV de %s (%s) annulé.", appt.CustomerName, appt.ShortID()), nil
}

// recordLast feeds the side-cache; a failure only costs the agent one
// turn of context.
func (e *Engine) recordLast(ctx context.Context, senderID int64, text string) {
	if e.lastMsgs == nil {
		return
	}
	if err := e.lastMsgs.SetLast(ctx, senderID, text); err != nil {
		e.logger.Warn("Last-message cache write failed",
			zap.Int64("sender_id", senderID),
			zap.Error(err))
	}
}

func helpText() string {
	return "Guide de l'Agent Anip Hair\n\n" +
		"LIST : Voir les rendez-vous à venir\n" +
		"TODAY : Voir les rendez-vous du jour\n" +
		"CONFIRM [ID] : Valider un rendez-vous\n" +
		"CANCEL [ID] : Annuler un rendez-vous\n" +
		"HELP : Afficher ce guide\n\n" +
		"Toute autre demande est traitée par l'assistant."
}

func styleName(appt *model.Appointment) string {
	if appt.Service != nil {
		return appt.Service.Name
	}
	return "N/A"
}
