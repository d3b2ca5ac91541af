package notification

import (
	"bytes"
	"context"
	"strconv"
	"text/template"
	"time"

	"github.com/coldchain-go/coldchain/internal/coldchain"
	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/logger"
	"github.com/coldchain-go/coldchain/internal/observability/metrics"
	"github.com/coldchain-go/coldchain/internal/privacy"
)

const (
	alertSubjectTemplate = `🚨 {{.ProductName}} Alert: Temp Out of Range!`
	alertBodyTemplate    = `ALERT: Temperature for {{.Product}} is out of range!

🧊 Predicted Temp: {{temp .PredictedTemp}} °C
✅ Safe Range: {{temp .SafeMin}} °C to {{temp .SafeMax}} °C

Please act to preserve product quality!
{{- if .Instance}}

Sent by {{.Instance}}{{end}}
`
	testSubject = "Cold Chain Advisor test message"
	testBody    = "This is a test message. Alert emails from this advisor reach this address."
)

// AlertData is the template input for an out-of-range alert.
type AlertData struct {
	Product       string
	ProductName   string
	PredictedTemp float64
	SafeMin       float64
	SafeMax       float64
	Instance      string
}

var templateFuncs = template.FuncMap{
	"temp": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}

var (
	subjectTmpl = template.Must(template.New("subject").Funcs(templateFuncs).Parse(alertSubjectTemplate))
	bodyTmpl    = template.Must(template.New("body").Funcs(templateFuncs).Parse(alertBodyTemplate))
)

// ShouldNotify reports whether a submission warrants an alert email: an
// address was given and the verdict is out of range.
func ShouldNotify(email string, v coldchain.Verdict) bool {
	return email != "" && v.Alert
}

// AlertNotifier renders and sends out-of-range alerts. It does not retry.
type AlertNotifier struct {
	provider Provider
	instance string
	metrics  *metrics.NotificationMetrics
}

// NewAlertNotifier creates a notifier backed by the SMTP relay settings. When
// notification is disabled the notifier is created but every send reports
// ErrNotConfigured.
func NewAlertNotifier(settings *conf.Settings, m *metrics.NotificationMetrics) (*AlertNotifier, error) {
	p := NewShoutrrrProvider(settings.Notification.Enabled, settings.Notification.SMTP, settings.Notification.Timeout)
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}
	return NewAlertNotifierWithProvider(p, settings.Main.Name, m), nil
}

// NewAlertNotifierWithProvider creates a notifier on top of any provider.
func NewAlertNotifierWithProvider(p Provider, instance string, m *metrics.NotificationMetrics) *AlertNotifier {
	return &AlertNotifier{provider: p, instance: instance, metrics: m}
}

// Enabled reports whether alerts can be delivered.
func (a *AlertNotifier) Enabled() bool {
	return a != nil && a.provider != nil && a.provider.IsEnabled()
}

// NotifyAlert emails the alert for product to recipient.
func (a *AlertNotifier) NotifyAlert(ctx context.Context, recipient string, product coldchain.Product, predicted float64, v coldchain.Verdict) error {
	if !a.Enabled() {
		a.metrics.RecordAlert(product.String(), metrics.NotificationDisabled, "", 0)
		return ErrNotConfigured
	}

	data := AlertData{
		Product:       product.String(),
		ProductName:   product.DisplayName(),
		PredictedTemp: predicted,
		SafeMin:       v.Range.Min,
		SafeMax:       v.Range.Max,
		Instance:      a.instance,
	}
	subject, body, err := RenderAlert(&data)
	if err != nil {
		return err
	}

	n := NewNotification(TypeAlert, PriorityCritical, subject, body, recipient)
	start := time.Now()
	err = a.send(ctx, n)
	elapsed := time.Since(start)

	log := GetLogger().WithContext(ctx).With(
		logger.String("product_type", product.String()),
		logger.String("recipient", privacy.MaskEmail(recipient)),
		logger.String("notification_id", n.ID),
		logger.Duration("elapsed", elapsed))
	if err != nil {
		a.metrics.RecordAlert(product.String(), metrics.NotificationFailed, a.provider.GetName(), elapsed)
		log.Warn("alert email failed", logger.Error(err))
		return err
	}
	a.metrics.RecordAlert(product.String(), metrics.NotificationSent, a.provider.GetName(), elapsed)
	log.Info("alert email sent")
	return nil
}

// SendTest sends a fixed test message to recipient.
func (a *AlertNotifier) SendTest(ctx context.Context, recipient string) error {
	if !a.Enabled() {
		return ErrNotConfigured
	}
	n := NewNotification(TypeTest, PriorityLow, testSubject, testBody, recipient)
	if err := a.send(ctx, n); err != nil {
		return err
	}
	GetLogger().Info("test email sent", logger.String("recipient", privacy.MaskEmail(recipient)))
	return nil
}

func (a *AlertNotifier) send(ctx context.Context, n *Notification) error {
	if !a.provider.SupportsType(n.Type) {
		return errors.Newf("provider %s does not support %s notifications", a.provider.GetName(), n.Type).
			Component("notification").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if err := a.provider.Send(ctx, n); err != nil {
		return errors.New(err).
			Component("notification").
			Category(errors.CategoryNotification).
			Context("provider", a.provider.GetName()).
			Context("type", string(n.Type)).
			Build()
	}
	return nil
}

// RenderAlert renders the subject and body of an alert email.
func RenderAlert(data *AlertData) (subject, body string, err error) {
	var sb, bb bytes.Buffer
	if err := subjectTmpl.Execute(&sb, data); err != nil {
		return "", "", errors.New(err).Component("notification").Category(errors.CategoryGeneric).Build()
	}
	if err := bodyTmpl.Execute(&bb, data); err != nil {
		return "", "", errors.New(err).Component("notification").Category(errors.CategoryGeneric).Build()
	}
	return sb.String(), bb.String(), nil
}
