package connection

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rickgao/refbox-bridge/internal/model"
	"github.com/rickgao/refbox-bridge/internal/refbox"
	"github.com/rickgao/refbox-bridge/internal/translate"
)

// sentMessage is a message captured by fakeTransport.
type sentMessage struct {
	componentID uint16
	msgType     uint16
	payload     []byte
}

// fakeTransport implements Transport in memory. Callbacks are fired
// explicitly by the test.
type fakeTransport struct {
	handlers

	mu          sync.Mutex
	connects    []string
	disconnects int
	sent        []sentMessage
	sendErr     error
}

func (f *fakeTransport) AsyncConnect(host string, port uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects = append(f.connects, host)
}

func (f *fakeTransport) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
}

func (f *fakeTransport) Send(componentID, msgType uint16, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{componentID, msgType, payload})
	return nil
}

func (f *fakeTransport) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.connects)
}

func (f *fakeTransport) disconnectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnects
}

func (f *fakeTransport) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func newTestManager(t *testing.T) (*Manager, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{}
	cfg := DefaultManagerConfig()
	cfg.Host = "refbox.local"
	cfg.Port = 4444
	return NewManager(cfg, tr, nil), tr
}

func connectedManager(t *testing.T) (*Manager, *fakeTransport) {
	t.Helper()
	m, tr := newTestManager(t)
	if err := m.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.fireConnected()
	if !m.IsConnected() {
		t.Fatal("expected connected after callback")
	}
	return m, tr
}

func scenarioOrder() model.Order {
	return model.Order{ID: "web-1", Items: []model.Item{{
		Model: "X2-ABC",
		Options: []model.Option{
			{Name: "BASE_COLOR", Value: "black"},
			{Name: "CAP_color", Value: "GREY"},
			{Name: "Ring_1_Top", Value: "blue"},
			{Name: "ring_2_bottom", Value: "green"},
		},
	}}}
}

func TestManager_InitialState(t *testing.T) {
	m, tr := newTestManager(t)

	if m.IsConnected() {
		t.Error("new manager must not be connected")
	}
	if m.State() != StateDisconnected {
		t.Errorf("State() = %v, want disconnected", m.State())
	}
	if m.Host() != "refbox.local" || m.Port() != 4444 {
		t.Errorf("endpoint = %s:%d, want refbox.local:4444", m.Host(), m.Port())
	}
	if tr.connectCount() != 0 {
		t.Error("NewManager must not connect")
	}
}

func TestManager_ConnectTwiceSingleAttempt(t *testing.T) {
	m, tr := newTestManager(t)

	if err := m.Connect(); err != nil {
		t.Fatalf("first Connect failed: %v", err)
	}
	if err := m.Connect(); err != nil {
		t.Fatalf("second Connect failed: %v", err)
	}

	if got := tr.connectCount(); got != 1 {
		t.Errorf("AsyncConnect calls = %d, want 1", got)
	}
	if m.State() != StateConnecting {
		t.Errorf("State() = %v, want connecting", m.State())
	}
	if m.IsConnected() {
		t.Error("must not report connected before callback")
	}

	tr.fireConnected()
	if err := m.Connect(); err != nil {
		t.Fatalf("Connect while connected failed: %v", err)
	}
	if got := tr.connectCount(); got != 1 {
		t.Errorf("AsyncConnect calls = %d, want 1", got)
	}
}

func TestManager_ConnectUsesConfiguredEndpoint(t *testing.T) {
	m, tr := newTestManager(t)

	if err := m.Configure("10.0.0.7", 4445); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if err := m.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	tr.mu.Lock()
	host := tr.connects[0]
	tr.mu.Unlock()
	if host != "10.0.0.7" {
		t.Errorf("connect host = %q, want %q", host, "10.0.0.7")
	}
	if m.Port() != 4445 {
		t.Errorf("Port() = %d, want 4445", m.Port())
	}
}

func TestManager_ConnectNotConfigured(t *testing.T) {
	tr := &fakeTransport{}
	m := NewManager(ManagerConfig{}, tr, nil)

	if err := m.Connect(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Connect() = %v, want ErrNotConfigured", err)
	}
	if tr.connectCount() != 0 {
		t.Error("transport must not be called without endpoint")
	}
}

func TestManager_ConfigureWhileConnected(t *testing.T) {
	m, _ := connectedManager(t)

	if err := m.Configure("other", 1); !errors.Is(err, ErrConfigureWhileConnected) {
		t.Errorf("Configure() = %v, want ErrConfigureWhileConnected", err)
	}
	if m.Host() != "refbox.local" {
		t.Errorf("Host() = %q, endpoint must be unchanged", m.Host())
	}
}

func TestManager_ReconnectAfterDisconnect(t *testing.T) {
	m, tr := connectedManager(t)

	tr.fireDisconnected(nil)
	if m.IsConnected() {
		t.Fatal("expected disconnected")
	}

	if err := m.Configure("backup", 4446); err != nil {
		t.Fatalf("Configure between attempts failed: %v", err)
	}
	if err := m.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if got := tr.connectCount(); got != 2 {
		t.Errorf("AsyncConnect calls = %d, want 2", got)
	}
}

func TestManager_DisconnectWhenDisconnectedIsNoop(t *testing.T) {
	m, tr := newTestManager(t)

	m.Disconnect()
	if tr.disconnectCount() != 0 {
		t.Errorf("Disconnect calls = %d, want 0", tr.disconnectCount())
	}
}

func TestManager_DisconnectWaitsForCallback(t *testing.T) {
	m, tr := connectedManager(t)

	m.Disconnect()
	if tr.disconnectCount() != 1 {
		t.Fatalf("Disconnect calls = %d, want 1", tr.disconnectCount())
	}
	if !m.IsConnected() {
		t.Error("state must only change via callback")
	}

	tr.fireDisconnected(nil)
	if m.IsConnected() {
		t.Error("expected disconnected after callback")
	}

	select {
	case err := <-m.Errors():
		t.Errorf("unexpected error for normal close: %v", err)
	default:
	}
}

func TestManager_DisconnectCancelsPendingAttempt(t *testing.T) {
	m, tr := newTestManager(t)

	if err := m.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	m.Disconnect()
	if tr.disconnectCount() != 1 {
		t.Errorf("Disconnect calls = %d, want 1", tr.disconnectCount())
	}
}

func TestManager_AbnormalDisconnectReportsError(t *testing.T) {
	m, tr := connectedManager(t)

	reason := errors.New("connection reset by peer")
	tr.fireDisconnected(reason)

	if m.IsConnected() {
		t.Error("expected disconnected")
	}

	select {
	case err := <-m.Errors():
		var connErr *ConnectionError
		if !errors.As(err, &connErr) {
			t.Fatalf("err = %T, want *ConnectionError", err)
		}
		if !errors.Is(err, reason) {
			t.Errorf("err = %v, want to wrap %v", err, reason)
		}
		if connErr.Host != "refbox.local" || connErr.Port != 4444 {
			t.Errorf("endpoint = %s:%d", connErr.Host, connErr.Port)
		}
	case <-time.After(time.Second):
		t.Fatal("expected connection error")
	}
}

func TestManager_FailedAttemptAllowsRetry(t *testing.T) {
	m, tr := newTestManager(t)

	if err := m.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.fireDisconnected(errors.New("connection refused"))

	if m.State() != StateDisconnected {
		t.Errorf("State() = %v, want disconnected", m.State())
	}
	<-m.Errors()

	if err := m.Connect(); err != nil {
		t.Fatalf("retry Connect failed: %v", err)
	}
	if got := tr.connectCount(); got != 2 {
		t.Errorf("AsyncConnect calls = %d, want 2", got)
	}
}

func TestManager_ErrorBufferFullDoesNotBlock(t *testing.T) {
	tr := &fakeTransport{}
	m := NewManager(ManagerConfig{Host: "h", Port: 1, ErrorBufferSize: 1}, tr, nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			tr.fireDisconnected(errors.New("boom"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disconnect callback blocked on full error buffer")
	}

	if n := len(m.Errors()); n != 1 {
		t.Errorf("buffered errors = %d, want 1", n)
	}
}

func TestManager_SendOrderDisconnected(t *testing.T) {
	m, tr := newTestManager(t)

	// Invalid order: would fail translation if it were attempted.
	bad := model.Order{Items: []model.Item{{Model: "X9"}}}

	ok, err := m.SendOrder(bad)
	if ok {
		t.Error("SendOrder() = true while disconnected")
	}
	if err != nil {
		t.Errorf("SendOrder() error = %v, want nil (no translation)", err)
	}
	if len(tr.sentMessages()) != 0 {
		t.Error("nothing must be sent while disconnected")
	}
}

func TestManager_SendOrderConnected(t *testing.T) {
	m, tr := connectedManager(t)

	ok, err := m.SendOrder(scenarioOrder())
	if err != nil {
		t.Fatalf("SendOrder failed: %v", err)
	}
	if !ok {
		t.Fatal("SendOrder() = false while connected")
	}

	sent := tr.sentMessages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if sent[0].componentID != 2000 || sent[0].msgType != 41 {
		t.Errorf("ids = (%d, %d), want (2000, 41)", sent[0].componentID, sent[0].msgType)
	}

	info, err := refbox.UnmarshalOrderInfo(sent[0].payload)
	if err != nil {
		t.Fatalf("payload does not decode: %v", err)
	}
	got := info.Orders[0]
	if got.Complexity != refbox.C2 || got.BaseColor != refbox.BaseBlack || got.CapColor != refbox.CapGrey {
		t.Errorf("order = %+v", got)
	}
	if len(got.RingColors) != 2 || got.RingColors[0] != refbox.RingBlue || got.RingColors[1] != refbox.RingGreen {
		t.Errorf("RingColors = %v, want [RING_BLUE RING_GREEN]", got.RingColors)
	}
}

func TestManager_SendOrderTranslationError(t *testing.T) {
	m, tr := connectedManager(t)

	ok, err := m.SendOrder(model.Order{Items: []model.Item{{Model: "X5"}}})
	if ok {
		t.Error("SendOrder() = true for invalid order")
	}

	var terr *translate.TranslationError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want *translate.TranslationError", err)
	}
	if len(tr.sentMessages()) != 0 {
		t.Error("invalid order must not be sent")
	}
}

func TestManager_SendOrderStrict(t *testing.T) {
	tr := &fakeTransport{}
	m := NewManager(ManagerConfig{Host: "h", Port: 1, StrictTranslation: true}, tr, nil)
	m.Connect()
	tr.fireConnected()

	order := model.Order{Items: []model.Item{{Model: "X0", Options: []model.Option{{Name: "base_color", Value: "gold"}}}}}
	if _, err := m.SendOrder(order); !errors.Is(err, translate.ErrUnknownColor) {
		t.Errorf("SendOrder() error = %v, want ErrUnknownColor", err)
	}
}

func TestManager_SendOrderTransportError(t *testing.T) {
	m, tr := connectedManager(t)
	tr.sendErr = errors.New("broken pipe")

	ok, err := m.SendOrder(scenarioOrder())
	if ok {
		t.Error("SendOrder() = true on transport failure")
	}
	if !errors.Is(err, tr.sendErr) {
		t.Errorf("err = %v, want to wrap %v", err, tr.sendErr)
	}
}

func TestManager_SendOrderTransportNotConnected(t *testing.T) {
	m, tr := connectedManager(t)
	tr.sendErr = ErrNotConnected

	ok, err := m.SendOrder(scenarioOrder())
	if ok || err != nil {
		t.Errorf("SendOrder() = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestManager_Close(t *testing.T) {
	m, tr := connectedManager(t)

	m.Close()
	m.Close()

	if tr.disconnectCount() != 1 {
		t.Errorf("Disconnect calls = %d, want 1", tr.disconnectCount())
	}
	if _, open := <-m.Errors(); open {
		t.Error("Errors() must be closed after Close")
	}

	// Late callback after Close must not panic on the closed channel.
	tr.fireDisconnected(errors.New("late"))
	if m.IsConnected() {
		t.Error("expected disconnected")
	}
	if err := m.Connect(); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("Connect after Close = %v, want ErrManagerClosed", err)
	}
}

func TestManager_ConcurrentSendAndCallbacks(t *testing.T) {
	m, tr := connectedManager(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := m.SendOrder(scenarioOrder()); err != nil {
					t.Errorf("SendOrder failed: %v", err)
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 100; j++ {
			tr.fireDisconnected(nil)
			m.Connect()
			tr.fireConnected()
		}
	}()

	wg.Wait()
}

func TestConnectionStateString(t *testing.T) {
	tests := []struct {
		s    ConnectionState
		want string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnecting, "connecting"},
		{StateConnected, "connected"},
		{ConnectionState(9), "ConnectionState(9)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestConnectionErrorMessage(t *testing.T) {
	err := &ConnectionError{Host: "refbox", Port: 4444, Err: errors.New("EOF")}
	if got, want := err.Error(), "refbox connection refbox:4444 lost: EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDefaultConfigs(t *testing.T) {
	mgrCfg := DefaultManagerConfig()
	if mgrCfg.Port != 4444 {
		t.Errorf("Port = %d, want 4444", mgrCfg.Port)
	}
	if mgrCfg.ErrorBufferSize != 16 {
		t.Errorf("ErrorBufferSize = %d, want 16", mgrCfg.ErrorBufferSize)
	}

	streamCfg := DefaultStreamClientConfig()
	if streamCfg.DialTimeout != 10*time.Second {
		t.Errorf("DialTimeout = %v, want 10s", streamCfg.DialTimeout)
	}

	wsCfg := DefaultWSClientConfig()
	if wsCfg.PingTimeout != 60*time.Second {
		t.Errorf("PingTimeout = %v, want 60s", wsCfg.PingTimeout)
	}
}
