package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/faridmamadou/anipHair/internal/model"
	"github.com/faridmamadou/anipHair/internal/service"
	"github.com/faridmamadou/anipHair/internal/service/servicetest"
)

type completerCall struct {
	system       string
	conversation []Message
	tools        []ToolSpec
}

// fakeCompleter replays scripted completions and records every round
// trip it receives.
type fakeCompleter struct {
	responses []*Completion
	err       error
	calls     []completerCall
}

func (c *fakeCompleter) Complete(_ context.Context, system string, conversation []Message, tools []ToolSpec) (*Completion, error) {
	c.calls = append(c.calls, completerCall{
		system:       system,
		conversation: append([]Message(nil), conversation...),
		tools:        tools,
	})
	if c.err != nil {
		return nil, c.err
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

type fakeLastMessages struct {
	last string
	err  error
}

func (c *fakeLastMessages) GetLast(context.Context, int64) (string, error) {
	return c.last, c.err
}

type agentFixture struct {
	agent     *Agent
	completer *fakeCompleter
	booking   *service.BookingService
}

func newAgentFixture(t *testing.T, completer *fakeCompleter) *agentFixture {
	t.Helper()

	catalog := servicetest.DefaultCatalog()
	appts := servicetest.NewAppointments(catalog)
	booking := service.NewBookingService(catalog, appts, &servicetest.Notifier{}, zap.NewNop())

	a := NewAgent(completer, booking, catalog, &fakeLastMessages{}, zap.NewNop())
	a.now = func() time.Time {
		return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	}

	return &agentFixture{agent: a, completer: completer, booking: booking}
}

func TestReply_NoToolCalls(t *testing.T) {
	completer := &fakeCompleter{responses: []*Completion{
		{Text: "Bonjour ! Comment puis-je vous aider ?"},
	}}
	f := newAgentFixture(t, completer)

	reply, err := f.agent.Reply(context.Background(), 7, "Bonjour")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour ! Comment puis-je vous aider ?", reply)

	require.Len(t, completer.calls, 1, "no tool calls means a single round trip")
	first := completer.calls[0]
	assert.Len(t, first.tools, 4)
	require.Len(t, first.conversation, 1)
	assert.Equal(t, RoleUser, first.conversation[0].Role)
	assert.Equal(t, "Bonjour", first.conversation[0].Text)
	assert.Contains(t, first.system, "Date du jour : 2024-06-03")
	assert.Contains(t, first.system, "Coiffe Afro")
}

func TestReply_ToolRoundTrip(t *testing.T) {
	completer := &fakeCompleter{responses: []*Completion{
		{ToolCalls: []ToolCall{{
			Name: toolListFreeSlots,
			Args: map[string]any{"date": "2024-06-10"},
		}}},
		{Text: "Voici les créneaux libres du 10 juin."},
	}}
	f := newAgentFixture(t, completer)

	reply, err := f.agent.Reply(context.Background(), 7, "Quels créneaux libres lundi prochain ?")
	require.NoError(t, err)
	assert.Equal(t, "Voici les créneaux libres du 10 juin.", reply)

	require.Len(t, completer.calls, 2)
	second := completer.calls[1]
	assert.Nil(t, second.tools, "the final round trip offers no tools")

	require.Len(t, second.conversation, 3)
	assert.Equal(t, RoleModel, second.conversation[1].Role)
	require.Len(t, second.conversation[1].Calls, 1)

	toolMsg := second.conversation[2]
	assert.Equal(t, RoleTool, toolMsg.Role)
	assert.Equal(t, toolListFreeSlots, toolMsg.ToolName)
	assert.Equal(t, "2024-06-10", toolMsg.ToolResponse["date"])
	slots, ok := toolMsg.ToolResponse["free_slots"].([]string)
	require.True(t, ok)
	assert.Len(t, slots, 9, "an empty business day has nine hourly slots")
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "17:00", slots[8])
}

func TestReply_BackendFailureBecomesApology(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("quota exceeded")}
	f := newAgentFixture(t, completer)

	reply, err := f.agent.Reply(context.Background(), 7, "Bonjour")
	require.NoError(t, err, "backend failure must not surface as an error")
	assert.Contains(t, reply, "Désolé, j'ai rencontré une erreur technique")
	assert.Contains(t, reply, "quota exceeded")
}

func TestReply_BlockTimeSlotConfirmsBooking(t *testing.T) {
	completer := &fakeCompleter{responses: []*Completion{
		{ToolCalls: []ToolCall{{
			Name: toolBlockTimeSlot,
			Args: map[string]any{
				"customer_name": "Marie",
				"style_name":    "nattes",
				"date_time":     "2024-06-10 10:00",
			},
		}}},
		{Text: "C'est noté pour Marie."},
	}}
	f := newAgentFixture(t, completer)

	reply, err := f.agent.Reply(context.Background(), 7, "Bloque un créneau pour Marie")
	require.NoError(t, err)
	assert.Equal(t, "C'est noté pour Marie.", reply)

	toolMsg := completer.calls[1].conversation[2]
	content, _ := toolMsg.ToolResponse["content"].(string)
	assert.Contains(t, content, "Rendez-vous confirmé pour Marie (Nattes Collées)")

	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	appts, err := f.booking.ListForDay(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, model.AppointmentStatusConfirmed, appts[0].Status)
	assert.Equal(t, "Marie", appts[0].CustomerName)
}

func TestReply_BlockTimeSlotConflict(t *testing.T) {
	completer := &fakeCompleter{responses: []*Completion{
		{ToolCalls: []ToolCall{{
			Name: toolBlockTimeSlot,
			Args: map[string]any{
				"customer_name": "Marie",
				"style_name":    "nattes",
				"date_time":     "2024-06-10 11:00",
			},
		}}},
		{Text: "Ce créneau est déjà pris."},
	}}
	f := newAgentFixture(t, completer)

	// Nattes Collées runs two hours, so 10:00 occupies 10:00-12:00.
	_, err := f.booking.Create(context.Background(), 2, "Alice", "+123",
		time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)

	reply, err := f.agent.Reply(context.Background(), 7, "Bloque 11h pour Marie")
	require.NoError(t, err)
	assert.Equal(t, "Ce créneau est déjà pris.", reply)

	toolMsg := completer.calls[1].conversation[2]
	content, _ := toolMsg.ToolResponse["content"].(string)
	assert.Contains(t, content, "Conflit de planning")
	assert.Contains(t, content, "Alice")
	assert.Contains(t, content, "de 10:00 à 12:00")
}

func TestReply_BlockTimeSlotUnknownStyle(t *testing.T) {
	completer := &fakeCompleter{responses: []*Completion{
		{ToolCalls: []ToolCall{{
			Name: toolBlockTimeSlot,
			Args: map[string]any{
				"customer_name": "Marie",
				"style_name":    "dreadlocks",
				"date_time":     "2024-06-10 10:00",
			},
		}}},
		{Text: "Cette prestation n'existe pas."},
	}}
	f := newAgentFixture(t, completer)

	_, err := f.agent.Reply(context.Background(), 7, "Des dreadlocks pour Marie")
	require.NoError(t, err)

	toolMsg := completer.calls[1].conversation[2]
	content, _ := toolMsg.ToolResponse["content"].(string)
	assert.Contains(t, content, "Prestation 'dreadlocks' non trouvée")
}

func TestReply_CancelWithoutIdentifiers(t *testing.T) {
	completer := &fakeCompleter{responses: []*Completion{
		{ToolCalls: []ToolCall{{
			Name: toolCancelAppointment,
			Args: map[string]any{},
		}}},
		{Text: "Il me faut plus de détails."},
	}}
	f := newAgentFixture(t, completer)

	_, err := f.agent.Reply(context.Background(), 7, "Annule le rendez-vous")
	require.NoError(t, err)

	toolMsg := completer.calls[1].conversation[2]
	content, _ := toolMsg.ToolResponse["content"].(string)
	assert.Equal(t, "Veuillez fournir un ID de rendez-vous ou un nom de client.", content)
}

func TestReply_CancelByCustomerName(t *testing.T) {
	completer := &fakeCompleter{responses: []*Completion{
		{ToolCalls: []ToolCall{{
			Name: toolCancelAppointment,
			Args: map[string]any{"customer_name": "Marie"},
		}}},
		{Text: "Le rendez-vous de Marie est annulé."},
	}}
	f := newAgentFixture(t, completer)

	_, err := f.booking.Create(context.Background(), 5, "Marie", "+123",
		time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)

	reply, err := f.agent.Reply(context.Background(), 7, "Annule le RDV de Marie")
	require.NoError(t, err)
	assert.Equal(t, "Le rendez-vous de Marie est annulé.", reply)

	toolMsg := completer.calls[1].conversation[2]
	content, _ := toolMsg.ToolResponse["content"].(string)
	assert.Contains(t, content, "Le rendez-vous de Marie le 10/06/2024 à 15:00 a été annulé")

	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	appts, err := f.booking.ListForDay(context.Background(), day)
	require.NoError(t, err)
	assert.Empty(t, appts, "canceled appointments leave the active listing")
}

func TestReply_ListAppointmentsEmptyDay(t *testing.T) {
	completer := &fakeCompleter{responses: []*Completion{
		{ToolCalls: []ToolCall{{
			Name: toolListAppointments,
			Args: map[string]any{"date": "2024-06-10"},
		}}},
		{Text: "Rien de prévu ce jour-là."},
	}}
	f := newAgentFixture(t, completer)

	_, err := f.agent.Reply(context.Background(), 7, "Quoi de prévu lundi ?")
	require.NoError(t, err)

	toolMsg := completer.calls[1].conversation[2]
	content, _ := toolMsg.ToolResponse["content"].(string)
	assert.Equal(t, "Aucun rendez-vous prévu pour le 10/06/2024.", content)
}

func TestReply_ListAppointmentsDefaultsToToday(t *testing.T) {
	completer := &fakeCompleter{responses: []*Completion{
		{ToolCalls: []ToolCall{{
			Name: toolListAppointments,
			Args: map[string]any{},
		}}},
		{Text: "Voici le planning du jour."},
	}}
	f := newAgentFixture(t, completer)

	_, err := f.booking.Create(context.Background(), 5, "Alice", "+123",
		time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)

	_, err = f.agent.Reply(context.Background(), 7, "Quoi de prévu aujourd'hui ?")
	require.NoError(t, err)

	toolMsg := completer.calls[1].conversation[2]
	content, _ := toolMsg.ToolResponse["content"].(string)
	assert.Contains(t, content, "Rendez-vous pour le 03/06/2024")
	assert.Contains(t, content, "- 15:00 : Alice (Chignon Haut)")
}

func TestSystemPrompt_IncludesPreviousMessage(t *testing.T) {
	completer := &fakeCompleter{responses: []*Completion{{Text: "ok"}}}
	f := newAgentFixture(t, completer)
	f.agent.lastMsgs = &fakeLastMessages{last: "Et pour jeudi ?"}

	_, err := f.agent.Reply(context.Background(), 7, "À quelle heure ?")
	require.NoError(t, err)

	assert.Contains(t, completer.calls[0].system, `Message précédent de l'utilisateur : "Et pour jeudi ?".`)
}

func TestSystemPrompt_CacheFailureIsAMiss(t *testing.T) {
	completer := &fakeCompleter{responses: []*Completion{{Text: "ok"}}}
	f := newAgentFixture(t, completer)
	f.agent.lastMsgs = &fakeLastMessages{err: errors.New("redis down")}

	reply, err := f.agent.Reply(context.Background(), 7, "Bonjour")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.NotContains(t, completer.calls[0].system, "Message précédent")
}

func TestMatchStyle(t *testing.T) {
	styles := []model.Service{
		{ID: 1, Name: "Coiffe Afro"},
		{ID: 2, Name: "Nattes Collées"},
		{ID: 3, Name: "Coupe Courte"},
	}

	tests := []struct {
		name   string
		needle string
		wantID int64
		found  bool
	}{
		{name: "exact", needle: "Nattes Collées", wantID: 2, found: true},
		{name: "substring", needle: "nattes", wantID: 2, found: true},
		{name: "case insensitive", needle: "COUPE", wantID: 3, found: true},
		{name: "shortest name wins", needle: "co", wantID: 1, found: true},
		{name: "unknown", needle: "dreadlocks", found: false},
		{name: "blank", needle: "  ", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := matchStyle(styles, tt.needle)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}
}
