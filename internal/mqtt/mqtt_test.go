package mqtt

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldchain-go/coldchain/internal/conf"
	"github.com/coldchain-go/coldchain/internal/datastore"
	"github.com/coldchain-go/coldchain/internal/errors"
	"github.com/coldchain-go/coldchain/internal/observability/metrics"
)

// fakeToken completes immediately with err, or never when pending is set.
type fakeToken struct {
	err     error
	pending bool
	done    chan struct{}
}

func newFakeToken(err error, pending bool) *fakeToken {
	t := &fakeToken{err: err, pending: pending, done: make(chan struct{})}
	if !pending {
		close(t.done)
	}
	return t
}

func (t *fakeToken) Wait() bool {
	<-t.done
	return true
}

func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.pending }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

// fakePaho stands in for the paho client. Methods not overridden panic.
type fakePaho struct {
	paho.Client
	mu        sync.Mutex
	connected bool
	token     *fakeToken
	messages  []published
}

func (f *fakePaho) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakePaho) Disconnect(uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
}

func (f *fakePaho) Publish(topic string, qos byte, retained bool, payload any) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, published{topic, qos, retained, payload.([]byte)})
	if f.token != nil {
		return f.token
	}
	return newFakeToken(nil, false)
}

func testClient(t *testing.T, fake *fakePaho) (*client, *metrics.MQTTMetrics) {
	t.Helper()
	m, err := metrics.NewMQTTMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Broker = "tcp://localhost:1883"
	cfg.Topic = "coldchain/predictions"
	cfg.QoS = 1
	cfg.PublishTimeout = 50 * time.Millisecond
	c, err := NewClient(cfg, m)
	require.NoError(t, err)
	cl := c.(*client)
	if fake != nil {
		cl.internalClient = fake
	}
	return cl, m
}

func TestConfigFromSettings(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{
		Main: conf.MainSettings{Name: "dock-7"},
		MQTT: conf.MQTTSettings{
			Enabled: true, Broker: "tcp://broker:1883", Topic: "cc/records",
			Username: "u", Password: "p", Retain: true, QoS: 2,
		},
	}
	cfg := ConfigFromSettings(settings)
	assert.Equal(t, "tcp://broker:1883", cfg.Broker)
	assert.Equal(t, "dock-7", cfg.ClientID)
	assert.Equal(t, "cc/records", cfg.Topic)
	assert.True(t, cfg.Retain)
	assert.Equal(t, byte(2), cfg.QoS)
	assert.Equal(t, 10*time.Second, cfg.PublishTimeout)
}

func TestNewClientRejectsBadBroker(t *testing.T) {
	t.Parallel()

	for _, broker := range []string{"", "not a url", "://missing-scheme"} {
		_, err := NewClient(Config{Broker: broker}, nil)
		require.Error(t, err, broker)
		assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	}
}

func TestPublishWhileDisconnected(t *testing.T) {
	t.Parallel()

	c, m := testClient(t, nil)
	err := c.Publish(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMQTTPublish))
	assert.InDelta(t, 1, testutil.ToFloat64(m.Errors), 0)
	assert.False(t, c.IsConnected())
}

func TestPublishDelivers(t *testing.T) {
	t.Parallel()

	fake := &fakePaho{connected: true}
	c, m := testClient(t, fake)

	require.NoError(t, c.Publish(context.Background(), []byte(`{"id":1}`)))
	require.Len(t, fake.messages, 1)
	assert.Equal(t, "coldchain/predictions", fake.messages[0].topic)
	assert.Equal(t, byte(1), fake.messages[0].qos)
	assert.JSONEq(t, `{"id":1}`, string(fake.messages[0].payload))
	assert.InDelta(t, 1, testutil.ToFloat64(m.MessagesDelivered), 0)
}

func TestPublishTimeout(t *testing.T) {
	t.Parallel()

	fake := &fakePaho{connected: true, token: newFakeToken(nil, true)}
	c, m := testClient(t, fake)

	err := c.Publish(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.InDelta(t, 1, testutil.ToFloat64(m.Errors), 0)
}

func TestPublishHonoursContext(t *testing.T) {
	t.Parallel()

	fake := &fakePaho{connected: true, token: newFakeToken(nil, true)}
	c, _ := testClient(t, fake)
	c.config.PublishTimeout = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Publish(ctx, []byte(`{}`))
	require.ErrorIs(t, err, context.Canceled)
}

func TestDisconnect(t *testing.T) {
	t.Parallel()

	fake := &fakePaho{connected: true}
	c, m := testClient(t, fake)
	assert.True(t, c.IsConnected())

	c.Disconnect()
	assert.False(t, c.IsConnected())
	assert.InDelta(t, 0, testutil.ToFloat64(m.ConnectionStatus), 0)
}

func TestPublisherPayload(t *testing.T) {
	t.Parallel()

	fake := &fakePaho{connected: true}
	c, _ := testClient(t, fake)
	p := NewPublisher(c, "dock-7")

	rec := &datastore.Prediction{
		ID: 7, Timestamp: "2024-06-01 09:00:00", ProductType: "milk",
		PredictedTemp: 1.5, Email: "ops@example.com", AlertSent: "Yes",
	}
	require.NoError(t, p.PublishRecord(context.Background(), rec, 2, 4))
	require.Len(t, fake.messages, 1)

	var got map[string]any
	require.NoError(t, json.Unmarshal(fake.messages[0].payload, &got))
	assert.InDelta(t, 7, got["id"], 0)
	assert.Equal(t, "milk", got["product_type"])
	assert.Equal(t, true, got["alert"])
	assert.InDelta(t, 2, got["safe_min"], 0)
	assert.InDelta(t, 4, got["safe_max"], 0)
	assert.Equal(t, "dock-7", got["source"])
	assert.NotContains(t, got, "email")

	p.Close()
	assert.False(t, c.IsConnected())
}

// serveConnack accepts connections on l and answers each CONNECT with a
// successful CONNACK, then discards whatever the client sends.
func serveConnack(l net.Listener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		go func(conn net.Conn) {
			defer conn.Close()
			r := bufio.NewReader(conn)
			if _, err := r.ReadByte(); err != nil { // fixed header
				return
			}
			var length, shift int
			for {
				b, err := r.ReadByte()
				if err != nil {
					return
				}
				length |= int(b&0x7f) << shift
				if b&0x80 == 0 {
					break
				}
				shift += 7
			}
			if _, err := io.CopyN(io.Discard, r, int64(length)); err != nil {
				return
			}
			if _, err := conn.Write([]byte{0x20, 0x02, 0x00, 0x00}); err != nil {
				return
			}
			_, _ = io.Copy(io.Discard, r)
		}(conn)
	}
}

func TestConnectRetriesUntilBrokerIsReachable(t *testing.T) {
	t.Parallel()

	// Reserve a port, then free it so the first connect is refused.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	m, err := metrics.NewMQTTMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Broker = "tcp://" + addr
	cfg.Topic = "coldchain/predictions"
	cfg.ConnectTimeout = 2 * time.Second
	cfg.ReconnectDelay = 20 * time.Millisecond
	cfg.MaxReconnectDelay = 100 * time.Millisecond
	c, err := NewClient(cfg, m)
	require.NoError(t, err)
	t.Cleanup(c.Disconnect)

	err = c.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMQTTConnect))
	assert.False(t, c.IsConnected())

	broker, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = broker.Close() })
	go serveConnack(broker)

	assert.Eventually(t, c.IsConnected, 5*time.Second, 10*time.Millisecond)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ConnectionStatus), 0)
}

func TestDisconnectStopsConnectRetries(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	cfg := DefaultConfig()
	cfg.Broker = "tcp://" + addr
	cfg.ConnectTimeout = time.Second
	cfg.ReconnectDelay = 10 * time.Millisecond
	c, err := NewClient(cfg, nil)
	require.NoError(t, err)

	require.Error(t, c.Connect(context.Background()))

	done := make(chan struct{})
	go func() {
		c.Disconnect()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Disconnect did not return while a connect retry was pending")
	}
	assert.False(t, c.IsConnected())
	assert.False(t, c.(*client).reconnecting)
}
