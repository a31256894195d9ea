package connectivity

import (
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/vehiclemate/internal/notify"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) Notify(_ notify.Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (o *Observer) subscribers() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.subs)
}

func TestObserver_InitialState(t *testing.T) {
	logger, _ := test.NewNullLogger()

	assert.False(t, NewObserver(true, nil, logger).Offline())
	assert.True(t, NewObserver(false, nil, logger).Offline())
}

func TestObserver_OneNotificationPerTransition(t *testing.T) {
	logger, _ := test.NewNullLogger()
	n := &recordingNotifier{}
	o := NewObserver(true, n, logger)

	// Several subscribers must not multiply the notification.
	for i := 0; i < 3; i++ {
		o.Subscribe(func(bool) {})
	}

	o.HandleOffline()
	o.HandleOffline()
	assert.True(t, o.Offline())
	assert.Equal(t, 1, n.count())
	assert.Equal(t, OfflineMessage, n.messages[0])

	o.HandleOnline()
	assert.False(t, o.Offline())
	assert.Equal(t, 1, n.count())

	o.HandleOffline()
	assert.Equal(t, 2, n.count())
}

func TestObserver_SubscribeAndUnsubscribe(t *testing.T) {
	logger, _ := test.NewNullLogger()
	o := NewObserver(true, nil, logger)

	var seen []bool
	unsubscribe := o.Subscribe(func(offline bool) { seen = append(seen, offline) })
	assert.Equal(t, 1, o.subscribers())

	o.HandleOffline()
	o.HandleOnline()
	unsubscribe()
	o.HandleOffline()

	assert.Equal(t, []bool{true, false}, seen)
	assert.Equal(t, 0, o.subscribers())
}

func TestParseSignal(t *testing.T) {
	cases := []struct {
		payload string
		online  bool
		wantErr bool
	}{
		{"online", true, false},
		{" OFFLINE\n", false, false},
		{`{"online":true}`, true, false},
		{`{"online":false}`, false, false},
		{`{"status":"up"}`, false, true},
		{"maybe", false, true},
	}
	for _, tc := range cases {
		t.Run(tc.payload, func(t *testing.T) {
			online, err := ParseSignal([]byte(tc.payload))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnknownSignal)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.online, online)
		})
	}
}

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Error() error                   { return t.err }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakeClient struct {
	mqtt.Client
	topic    string
	handler  mqtt.MessageHandler
	unsubbed []string
}

func (c *fakeClient) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	c.topic = topic
	c.handler = cb
	return fakeToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) mqtt.Token {
	c.unsubbed = append(c.unsubbed, topics...)
	return fakeToken{}
}

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

func TestMQTTSource_RelaysMessages(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := &recordingNotifier{}
	o := NewObserver(true, n, logger)
	client := &fakeClient{}

	src := NewMQTTSource(client, "vehiclemate/connectivity", o, logger)
	require.NoError(t, src.Start())
	require.NotNil(t, client.handler)
	assert.Equal(t, "vehiclemate/connectivity", client.topic)

	client.handler(client, fakeMessage{topic: client.topic, payload: []byte("offline")})
	assert.True(t, o.Offline())
	assert.Equal(t, 1, n.count())

	client.handler(client, fakeMessage{topic: client.topic, payload: []byte(`{"online":true}`)})
	assert.False(t, o.Offline())

	hook.Reset()
	client.handler(client, fakeMessage{topic: client.topic, payload: []byte("garbage")})
	assert.False(t, o.Offline())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Ignoring connectivity message", hook.LastEntry().Message)

	src.Stop()
	assert.Equal(t, []string{"vehiclemate/connectivity"}, client.unsubbed)
}
