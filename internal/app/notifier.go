package app

import (
	"fmt"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/cafedesk/cafedesk/config"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/service"
)

// Notifier turns service events into mail. Deliveries run on the worker pool.
type Notifier struct {
	cfg  config.MailConfig
	pool *ants.Pool
	send func(m *gomail.Message) error
}

func NewNotifier(cfg config.MailConfig, pool *ants.Pool) *Notifier {
	n := &Notifier{cfg: cfg, pool: pool}
	if cfg.Enabled {
		dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		n.send = func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		}
	}
	return n
}

func (a *Application) initNotifier(bus EventBus.Bus) error {
	workers := a.appConfig.Mail.Workers
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return errors.Wrap(err, "create mail pool")
	}
	a.pool = pool
	a.notifier = NewNotifier(a.appConfig.Mail, pool)
	return a.notifier.Subscribe(bus)
}

// Subscribe registers the notifier handlers on bus.
func (n *Notifier) Subscribe(bus EventBus.Bus) error {
	if err := bus.Subscribe(service.TopicLowStock, n.onLowStock); err != nil {
		return errors.Wrap(err, "subscribe low stock")
	}
	if err := bus.Subscribe(service.TopicPasswordReset, n.onPasswordReset); err != nil {
		return errors.Wrap(err, "subscribe password reset")
	}
	if err := bus.Subscribe(service.TopicReservationNew, n.onReservation); err != nil {
		return errors.Wrap(err, "subscribe reservation")
	}
	if err := bus.Subscribe(service.TopicOrderPlaced, n.onOrderPlaced); err != nil {
		return errors.Wrap(err, "subscribe order placed")
	}
	return nil
}

func (n *Notifier) onLowStock(ev service.LowStockEvent) {
	zap.L().Warn("inventory below minimum stock",
		zap.String("item", ev.Item.Name),
		zap.Float64("quantity", ev.Item.Quantity),
		zap.Float64("minStock", ev.Item.MinStock),
		zap.String("namespace", "notify"))
	if n.cfg.Notify == "" {
		return
	}
	body := fmt.Sprintf("%s is at %v %s, %v below the minimum of %v.",
		ev.Item.Name, ev.Item.Quantity, ev.Item.Unit, ev.Shortage, ev.Item.MinStock)
	n.deliver(n.cfg.Notify, "Low stock: "+ev.Item.Name, body)
}

func (n *Notifier) onPasswordReset(ev service.PasswordResetEvent) {
	zap.L().Info("password reset requested", zap.String("email", ev.Email), zap.String("namespace", "notify"))
	body := fmt.Sprintf("Hello %s,\n\nUse the link below within one hour to reset your password:\n\n%s\n", ev.Name, ev.Link)
	n.deliver(ev.Email, "Reset your password", body)
}

func (n *Notifier) onReservation(res domain.Reservation) {
	zap.L().Info("reservation booked",
		zap.String("reservation_id", res.ID),
		zap.String("date", res.Date),
		zap.String("time", res.Time),
		zap.String("namespace", "notify"))
	if n.cfg.Notify == "" {
		return
	}
	body := fmt.Sprintf("%s booked table %s on %s at %s for %d guests.\n\nNotes: %s\n",
		res.CustomerEmail, res.TableID, res.Date, res.Time, res.Guests, res.Notes)
	n.deliver(n.cfg.Notify, fmt.Sprintf("New reservation %s %s", res.Date, res.Time), body)
}

// Orders are only logged.
func (n *Notifier) onOrderPlaced(order domain.Order) {
	zap.L().Info("order received",
		zap.String("order_id", order.ID),
		zap.String("customer", order.CustomerEmail),
		zap.Float64("total", order.Total),
		zap.String("namespace", "notify"))
}

func (n *Notifier) deliver(to, subject, body string) {
	if n.send == nil {
		zap.L().Debug("mail disabled, message dropped", zap.String("to", to), zap.String("subject", subject))
		return
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	err := n.pool.Submit(func() {
		if err := n.send(m); err != nil {
			zap.S().Errorf("send mail to %s error %s", to, err.Error())
		}
	})
	if err != nil {
		zap.S().Errorf("queue mail to %s error %s", to, err.Error())
	}
}
