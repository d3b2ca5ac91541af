package notification

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/privacy"
)

// ShoutrrrProvider sends through nicholas-fedor/shoutrrr. The recipient is
// only known per message, so a sender is built for each Send from the
// relay settings.
type ShoutrrrProvider struct {
	name    string
	enabled bool
	smtp    conf.SMTPSettings
	timeout time.Duration
}

// NewShoutrrrProvider creates an SMTP provider from the relay settings.
func NewShoutrrrProvider(enabled bool, smtp conf.SMTPSettings, timeout time.Duration) *ShoutrrrProvider {
	return &ShoutrrrProvider{
		name:    "smtp",
		enabled: enabled,
		smtp:    smtp,
		timeout: timeout,
	}
}

func (s *ShoutrrrProvider) GetName() string { return s.name }
func (s *ShoutrrrProvider) IsEnabled() bool { return s.enabled }

func (s *ShoutrrrProvider) SupportsType(t Type) bool {
	return t == TypeAlert || t == TypeTest
}

// ValidateConfig builds a sender addressed to the configured From address,
// which exercises URL parsing without sending anything.
func (s *ShoutrrrProvider) ValidateConfig() error {
	if !s.enabled {
		return nil
	}
	if s.smtp.Host == "" || s.smtp.From == "" {
		return errors.Newf("smtp host and from address are required").
			Component("notification").
			Category(errors.CategoryConfiguration).
			Build()
	}
	u, err := SMTPURL(&s.smtp, s.smtp.From, "")
	if err != nil {
		return err
	}
	if _, err := shoutrrr.CreateSender(u); err != nil {
		// Wrap error to sanitize any URLs that may contain credentials
		return errors.New(privacy.WrapError(err)).
			Component("notification").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// Send delivers n to n.Recipient. The relay timeout bounds the send; ctx is
// checked before connecting.
func (s *ShoutrrrProvider) Send(ctx context.Context, n *Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u, err := SMTPURL(&s.smtp, n.Recipient, n.Title)
	if err != nil {
		return err
	}
	var sender *router.ServiceRouter
	if sender, err = shoutrrr.CreateSender(u); err != nil {
		return privacy.WrapError(err)
	}
	if s.timeout > 0 {
		sender.Timeout = s.timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	params := stypes.Params{}
	if n.Title != "" {
		params.SetTitle(n.Title)
	}
	for _, e := range sender.Send(n.Message, &params) {
		if e != nil {
			// Wrap error to sanitize any URLs that may contain credentials
			return privacy.WrapError(e)
		}
	}
	return nil
}

// SMTPURL builds the shoutrrr smtp:// URL delivering to recipient.
func SMTPURL(s *conf.SMTPSettings, recipient, subject string) (string, error) {
	to, err := mail.ParseAddress(strings.TrimSpace(recipient))
	if err != nil {
		return "", errors.New(err).
			Component("notification").
			Category(errors.CategoryValidation).
			Context("field", "recipient").
			Build()
	}

	u := url.URL{
		Scheme: "smtp",
		Host:   s.Host + ":" + strconv.Itoa(s.Port),
		Path:   "/",
	}
	q := url.Values{}
	if s.Username != "" {
		u.User = url.UserPassword(s.Username, s.Password)
		q.Set("auth", "Plain")
	} else {
		q.Set("auth", "None")
	}
	q.Set("fromaddress", s.From)
	if s.FromName != "" {
		q.Set("fromname", s.FromName)
	}
	q.Set("toaddresses", to.Address)
	if subject != "" {
		q.Set("subject", subject)
	}
	q.Set("encryption", encryptionParam(s.Encryption))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func encryptionParam(e string) string {
	switch strings.ToLower(e) {
	case conf.EncryptionNone:
		return "None"
	case conf.EncryptionExplicitTLS:
		return "ExplicitTLS"
	case conf.EncryptionImplicitTLS:
		return "ImplicitTLS"
	default:
		return "Auto"
	}
}

func (s *ShoutrrrProvider) String() string {
	return fmt.Sprintf("%s(%s:%d)", s.name, s.smtp.Host, s.smtp.Port)
}
