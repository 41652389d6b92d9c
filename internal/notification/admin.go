package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/faridmamadou/anipHair/internal/model"
	"github.com/faridmamadou/anipHair/internal/service/ports"
)

const sendTimeout = 30 * time.Second

// AdminNotifier pushes booking alerts to the salon owner's chat.
// Delivery is fire-and-forget: failures are retried, then logged and
// swallowed; a booking never fails because a notification did.
type AdminNotifier struct {
	messenger   ports.Messenger
	adminChatID int64
	logger      *zap.Logger
}

func NewAdminNotifier(messenger ports.Messenger, adminChatID int64, logger *zap.Logger) *AdminNotifier {
	return &AdminNotifier{
		messenger:   messenger,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// NotifyNewAppointment sends the "new booking" alert in the background.
func (n *AdminNotifier) NotifyNewAppointment(_ context.Context, appt *model.Appointment, svc *model.Service) {
	if n.adminChatID == 0 {
		return
	}

	text := fmt.Sprintf(
		"🔔 Nouvelle Réservation\n"+
			"👤 Client : %s\n"+
			"💇 Prestation : %s\n"+
			"📅 Date : %s\n"+
			"📞 Tel : %s\n"+
			"🆔 ID : %s",
		appt.CustomerName,
		svc.Name,
		appt.StartTime.Format("02/01/2006 à 15:04"),
		appt.Telephone,
		appt.ShortID(),
	)

	// Detached from the request that triggered the booking.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		backoff := retry.WithMaxRetries(3, retry.NewExponential(time.Second))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := n.messenger.Send(ctx, n.adminChatID, text); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			n.logger.Error("Failed to send admin notification",
				zap.String("appointment_id", appt.ID),
				zap.Error(err))
			return
		}

		n.logger.Info("Admin notified of new appointment",
			zap.String("appointment_id", appt.ID))
	}()
}
