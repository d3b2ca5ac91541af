// client.go: paho-backed implementation of Client.
package mqtt

import (
	"context"
	"net/url"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/logger"
	"github.com/coldchain-go/coldchain/internal/observability/metrics"
	"github.com/coldchain-go/coldchain/internal/privacy"
)

// client implements the Client interface. Reconnects after a lost
// connection are left to paho's auto-reconnect. A failed first connect is
// retried in the background with exponential backoff until it succeeds or
// Disconnect is called.
type client struct {
	config         Config
	internalClient paho.Client
	mu             sync.Mutex
	metrics        *metrics.MQTTMetrics

	reconnecting  bool
	reconnectStop chan struct{}
	reconnectWG   sync.WaitGroup
}

// NewClient creates a new MQTT client. m may be nil.
func NewClient(cfg Config, m *metrics.MQTTMetrics) (Client, error) {
	if _, err := parseBroker(cfg.Broker); err != nil {
		return nil, err
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "coldchain"
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = time.Second
	}
	if cfg.MaxReconnectDelay < cfg.ReconnectDelay {
		cfg.MaxReconnectDelay = cfg.ReconnectDelay
	}
	return &client{config: cfg, metrics: m, reconnectStop: make(chan struct{})}, nil
}

func parseBroker(broker string) (*url.URL, error) {
	u, err := url.Parse(broker)
	if err == nil && u.Host == "" {
		err = errors.NewStd("missing host")
	}
	if err != nil {
		return nil, errors.New(privacy.WrapError(err)).
			Component("mqtt").
			Category(errors.CategoryConfiguration).
			Context("setting", "mqtt.broker").
			Build()
	}
	return u, nil
}

// Connect attempts to establish a connection to the MQTT broker. On failure
// the error is returned and a background retry loop keeps trying.
func (c *client) Connect(ctx context.Context) error {
	pc, err := c.dial(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.internalClient = pc
	if err != nil {
		c.metrics.UpdateConnectionStatus(false)
		c.startReconnectLocked()
		return c.connectError(err)
	}

	c.metrics.UpdateConnectionStatus(true)
	return nil
}

// dial builds a fresh paho client and waits for its first connect.
func (c *client) dial(ctx context.Context) (paho.Client, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(c.config.ConnectTimeout)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	pc := paho.NewClient(opts)
	return pc, waitToken(ctx, pc.Connect(), c.config.ConnectTimeout)
}

func (c *client) connectError(err error) error {
	return errors.New(privacy.WrapError(err)).
		Component("mqtt").
		Category(errors.CategoryMQTTConnect).
		Context("broker", privacy.AnonymizeURL(c.config.Broker)).
		Build()
}

// startReconnectLocked starts the retry loop unless one is running or the
// client was disconnected. c.mu must be held.
func (c *client) startReconnectLocked() {
	if c.reconnecting {
		return
	}
	select {
	case <-c.reconnectStop:
		return
	default:
	}
	c.reconnecting = true
	c.reconnectWG.Add(1)
	go c.reconnectWithBackoff()
}

// dialUntilStopped is dial bounded by ConnectTimeout and cut short by
// Disconnect.
func (c *client) dialUntilStopped() (paho.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.ConnectTimeout)
	defer cancel()
	go func() {
		select {
		case <-c.reconnectStop:
			cancel()
		case <-ctx.Done():
		}
	}()
	return c.dial(ctx)
}

func (c *client) reconnectWithBackoff() {
	defer c.reconnectWG.Done()
	defer func() {
		c.mu.Lock()
		c.reconnecting = false
		c.mu.Unlock()
	}()

	log := GetLogger()
	backoff := c.config.ReconnectDelay
	for attempt := 1; ; attempt++ {
		select {
		case <-time.After(backoff):
		case <-c.reconnectStop:
			return
		}

		if c.IsConnected() {
			return
		}

		pc, err := c.dialUntilStopped()

		c.mu.Lock()
		select {
		case <-c.reconnectStop:
			c.mu.Unlock()
			pc.Disconnect(uint(c.config.DisconnectTimeout.Milliseconds()))
			return
		default:
		}
		if err == nil {
			c.internalClient = pc
			c.metrics.UpdateConnectionStatus(true)
			c.mu.Unlock()
			log.Info("connected to MQTT broker after retry", logger.Int("attempt", attempt))
			return
		}
		c.mu.Unlock()

		backoff = min(backoff*2, c.config.MaxReconnectDelay)
		log.Debug("MQTT connect retry failed",
			logger.Int("attempt", attempt),
			logger.Duration("next_retry", backoff),
			logger.Error(privacy.WrapError(err)))
	}
}

// Publish sends payload to the configured topic.
func (c *client) Publish(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isConnectedLocked() {
		err := errors.Newf("not connected to MQTT broker").
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Context("topic", c.config.Topic).
			Build()
		c.metrics.RecordPublish(len(payload), 0, err)
		return err
	}

	start := time.Now()
	token := c.internalClient.Publish(c.config.Topic, c.config.QoS, c.config.Retain, payload)
	err := waitToken(ctx, token, c.config.PublishTimeout)
	c.metrics.RecordPublish(len(payload), time.Since(start), err)
	if err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Context("topic", c.config.Topic).
			Build()
	}

	GetLogger().Debug("record published",
		logger.String("topic", c.config.Topic),
		logger.Int("bytes", len(payload)))
	return nil
}

// IsConnected returns true if the client is currently connected to the MQTT broker.
func (c *client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnectedLocked()
}

func (c *client) isConnectedLocked() bool {
	return c.internalClient != nil && c.internalClient.IsConnected()
}

// Disconnect closes the connection to the MQTT broker.
func (c *client) Disconnect() {
	c.mu.Lock()
	select {
	case <-c.reconnectStop:
	default:
		close(c.reconnectStop)
	}
	c.mu.Unlock()
	c.reconnectWG.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.internalClient != nil {
		c.internalClient.Disconnect(uint(c.config.DisconnectTimeout.Milliseconds()))
		c.internalClient = nil
	}
	c.metrics.UpdateConnectionStatus(false)
}

func (c *client) onConnect(_ paho.Client) {
	GetLogger().Info("connected to MQTT broker", logger.String("broker", privacy.AnonymizeURL(c.config.Broker)))
	c.metrics.UpdateConnectionStatus(true)
}

func (c *client) onConnectionLost(_ paho.Client, err error) {
	GetLogger().Warn("connection to MQTT broker lost",
		logger.String("broker", privacy.AnonymizeURL(c.config.Broker)),
		logger.Error(err))
	c.metrics.UpdateConnectionStatus(false)
}

// waitToken waits for a paho token, bounded by timeout and ctx.
func waitToken(ctx context.Context, token paho.Token, timeout time.Duration) error {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer:
		return errors.NewStd("operation timed out")
	}
}
