package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/faridmamadou/anipHair/internal/model"
	"github.com/faridmamadou/anipHair/internal/service"
	"github.com/faridmamadou/anipHair/internal/service/ports"
)

// LastMessages is the optional conversational side-cache. A read failure
// is treated as a miss.
type LastMessages interface {
	GetLast(ctx context.Context, senderID int64) (string, error)
}

// Agent answers free-form requests by giving the inference backend the
// catalog, today's date and four scheduling tools, executing whatever
// tools it asks for and relaying its final wording verbatim.
type Agent struct {
	completer Completer
	booking   *service.BookingService
	catalog   ports.Catalog
	lastMsgs  LastMessages
	logger    *zap.Logger
	now       func() time.Time
}

func NewAgent(
	completer Completer,
	booking *service.BookingService,
	catalog ports.Catalog,
	lastMsgs LastMessages,
	logger *zap.Logger,
) *Agent {
	return &Agent{
		completer: completer,
		booking:   booking,
		catalog:   catalog,
		lastMsgs:  lastMsgs,
		logger:    logger,
		now:       time.Now,
	}
}

// Reply runs at most two round trips: one that may request tool calls,
// and after executing them, one for the final natural-language answer.
// Backend failures degrade to an apology; only store failures return an
// error.
func (a *Agent) Reply(ctx context.Context, senderID int64, text string) (string, error) {
	styles, err := a.catalog.ListServices(ctx)
	if err != nil {
		return "", fmt.Errorf("list services: %w", err)
	}

	system := a.systemPrompt(ctx, senderID, styles)
	conversation := []Message{{Role: RoleUser, Text: text}}

	first, err := a.completer.Complete(ctx, system, conversation, toolSpecs())
	if err != nil {
		a.logger.Error("Inference backend failed", zap.Error(err))
		return apology(err), nil
	}

	if len(first.ToolCalls) == 0 {
		return first.Text, nil
	}

	conversation = append(conversation, Message{
		Role:  RoleModel,
		Text:  first.Text,
		Calls: first.ToolCalls,
	})

	for _, call := range first.ToolCalls {
		a.logger.Info("Executing tool call",
			zap.Int64("sender_id", senderID),
			zap.String("tool", call.Name))

		result, err := a.execute(ctx, call, styles)
		if err != nil {
			return "", fmt.Errorf("execute tool %s: %w", call.Name, err)
		}

		conversation = append(conversation, Message{
			Role:         RoleTool,
			ToolName:     call.Name,
			ToolResponse: result.Payload(),
		})
	}

	second, err := a.completer.Complete(ctx, system, conversation, nil)
	if err != nil {
		a.logger.Error("Inference backend failed on final round trip", zap.Error(err))
		return apology(err), nil
	}

	return second.Text, nil
}

// systemPrompt embeds today's date and the catalog, plus the sender's
// previous message when the side-cache has one.
func (a *Agent) systemPrompt(ctx context.Context, senderID int64, styles []model.Service) string {
	names := make([]string, 0, len(styles))
	for _, s := range styles {
		names = append(names, s.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tu es l'assistant de gestion d'Anip Hair. ")
	fmt.Fprintf(&b, "Date du jour : %s. ", a.now().Format("2006-01-02"))
	fmt.Fprintf(&b, "Catalogue : %s. ", strings.Join(names, ", "))
	b.WriteString("Utilise les outils pour répondre aux demandes.")

	if a.lastMsgs != nil {
		if last, err := a.lastMsgs.GetLast(ctx, senderID); err != nil {
			a.logger.Warn("Last-message cache read failed", zap.Error(err))
		} else if last != "" {
			fmt.Fprintf(&b, " Message précédent de l'utilisateur : %q.", last)
		}
	}

	return b.String()
}

func apology(err error) string {
	return fmt.Sprintf("Désolé, j'ai rencontré une erreur technique : %v", err)
}
