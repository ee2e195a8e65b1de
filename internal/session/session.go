// Package session binds one WebSocket connection to its own gesture state
// machine, selected device and broadcast registration.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tusharNova/hgr/internal/detector"
	"github.com/tusharNova/hgr/internal/device"
	"github.com/tusharNova/hgr/internal/gesture"
	"github.com/tusharNova/hgr/internal/hub"
	"github.com/tusharNova/hgr/internal/metrics"
	"github.com/tusharNova/hgr/internal/protocol"
	"github.com/tusharNova/hgr/internal/settings"
	"github.com/tusharNova/hgr/internal/store"
)

const (
	// writeWait bounds a single write to the peer.
	writeWait = 10 * time.Second
	// outboundBufferSize is the session's own outbound message queue.
	outboundBufferSize = 16
)

// MotionGate decides whether a frame differs enough from its predecessor
// to be worth running detection on.
type MotionGate interface {
	ShouldProcess(frame []byte) bool
	Close()
}

// Config wires one session's collaborators.
type Config struct {
	Conn     *websocket.Conn
	Registry *device.Registry
	Hub      *hub.Hub
	Settings *settings.Manager
	Detector detector.Detector
	Events   *store.EventRepository
	Metrics  *metrics.Metrics
	Motion   MotionGate
	Logger   *slog.Logger
}

// Session is the server-side state for one active connection. Frame
// processing within a session is strictly sequential; the registry is the
// only resource shared with other sessions.
type Session struct {
	id       string
	conn     *websocket.Conn
	registry *device.Registry
	hub      *hub.Hub
	settings *settings.Manager
	detector detector.Detector
	events   *store.EventRepository
	metrics  *metrics.Metrics
	motion   MotionGate
	logger   *slog.Logger

	tracker *gesture.Tracker
	mailbox *Mailbox
	out     chan any

	mu       sync.Mutex
	selected string

	// lastClassified feeds the motion gate's skip path; only touched by
	// the process loop.
	lastClassified gesture.Sample
}

// New creates a fresh session: nothing selected, gesture state idle. A
// reconnecting client always gets a new session; no state survives
// disconnect.
func New(cfg Config) *Session {
	id := uuid.New().String()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		id:       id,
		conn:     cfg.Conn,
		registry: cfg.Registry,
		hub:      cfg.Hub,
		settings: cfg.Settings,
		detector: cfg.Detector,
		events:   cfg.Events,
		metrics:  cfg.Metrics,
		motion:   cfg.Motion,
		logger:   logger.With("component", "session", "session_id", id),
		tracker:  gesture.NewTracker(),
		mailbox:  NewMailbox(),
		out:      make(chan any, outboundBufferSize),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Selected returns the currently selected device id, empty when none.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Run drives the session until the connection drops or ctx is cancelled.
// It owns three concurrent strands: the read loop (socket to mailbox), the
// process loop (mailbox through classifier and tracker) and the write pump
// (sole socket writer, merging session output with hub updates).
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, subID := s.hub.Subscribe(ctx)
	defer s.hub.Unsubscribe(subID)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.processLoop()
	}()
	go func() {
		defer wg.Done()
		s.writePump(ctx, updates)
	}()

	s.logger.Info("session connected")
	s.readLoop()

	s.mailbox.Close()
	cancel()
	wg.Wait()

	if s.motion != nil {
		s.motion.Close()
	}
	s.logger.Info("session disconnected", "frames_dropped", s.mailbox.Drops())
}

// readLoop decodes inbound messages. Control messages are handled inline;
// frames go through the latest-wins mailbox so a burst never queues up
// behind the process loop. Malformed messages close the connection.
func (s *Session) readLoop() {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseInbound(raw)
		if err != nil {
			s.logger.Warn("rejecting malformed message", "error", err)
			deadline := time.Now().Add(writeWait)
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "malformed message"), deadline)
			return
		}

		switch msg.Type {
		case protocol.TypeFrame:
			s.metrics.RecordFrame()
			data, err := msg.FrameBytes()
			if err != nil {
				// Degrade to a no-hand observation; never kill the session.
				s.logger.Warn("undecodable frame payload", "error", err)
				data = nil
			}
			if s.mailbox.Put(Frame{Data: data, At: time.Now()}) {
				s.metrics.RecordFrameDropped()
			}

		case protocol.TypePing:
			s.send(protocol.NewPong())

		case protocol.TypeSelectDevice:
			s.handleSelect(msg.DeviceID)
		}
	}
}

// handleSelect processes an explicit select_device request. Unknown ids are
// reported to this session only.
func (s *Session) handleSelect(deviceID string) {
	dev, err := s.registry.Get(deviceID)
	if err != nil {
		s.logger.Debug("select rejected", "device_id", deviceID, "error", err)
		s.send(protocol.NewError("device not found"))
		return
	}

	s.setSelected(dev.ID)
	s.send(protocol.NewDeviceSelected(dev.ID))
}

// processLoop consumes the mailbox one frame at a time. A new frame is only
// accepted once the previous one's classification and state transition
// completed, which keeps hold timing exact.
func (s *Session) processLoop() {
	for {
		frame, ok := s.mailbox.Take()
		if !ok {
			return
		}
		s.processFrame(frame)
	}
}

// processFrame runs one frame through classifier and tracker and applies
// whatever events fall out.
func (s *Session) processFrame(frame Frame) {
	started := time.Now()
	cfg := s.settings.Get()

	sample := s.classify(frame, cfg)
	res := s.tracker.Advance(sample, cfg.HoldTime)
	s.metrics.RecordGesture(res.Sample.Label.String())

	result := protocol.NewGestureResult(res.Sample, res.HoldDuration)

	if res.Selected != gesture.LabelNone {
		if deviceID, changed := s.applySelection(res.Selected); changed {
			result.DeviceSelected = deviceID
		}
	}

	if res.Action != "" {
		if deviceID, ok := s.applyAction(res.Sample.Label, res.Action); ok {
			result.ActionTriggered = string(res.Action)
			result.DeviceID = deviceID
		}
	}

	s.send(result)
	s.metrics.ObserveFrameDuration(time.Since(started))
}

// classify turns a frame into a gesture sample. Detection is skipped when
// gestures are disabled, the payload is empty, or the motion gate saw a
// static scene; a detector failure degrades to a no-hand sample.
func (s *Session) classify(frame Frame, cfg settings.Settings) gesture.Sample {
	none := gesture.Sample{Label: gesture.LabelNone, ObservedAt: frame.At}

	if !cfg.Enabled || len(frame.Data) == 0 || s.detector == nil {
		s.lastClassified = none
		return none
	}

	if s.motion != nil && !s.motion.ShouldProcess(frame.Data) {
		// Static scene: re-stamp the previous classification instead of
		// invoking the detector again.
		sample := s.lastClassified
		sample.ObservedAt = frame.At
		return sample
	}

	hands, err := s.detector.Detect(frame.Data)
	if err != nil {
		s.logger.Warn("detector failure", "error", err)
		s.lastClassified = none
		return none
	}

	sample := gesture.Classify(hands, cfg.Confidence, cfg.MaxHands, frame.At)
	s.lastClassified = sample
	return sample
}

// applySelection resolves a selection label to the device at that ordinal
// and updates the selected device idempotently. It reports the device id
// and whether the selection actually changed.
func (s *Session) applySelection(label gesture.Label) (string, bool) {
	dev, err := s.registry.ByOrdinal(label.Ordinal())
	if err != nil {
		s.logger.Debug("no device at ordinal", "ordinal", label.Ordinal())
		return "", false
	}

	s.mu.Lock()
	changed := s.selected != dev.ID
	s.selected = dev.ID
	s.mu.Unlock()

	if changed {
		s.logger.Debug("device selected", "device_id", dev.ID)
		s.send(protocol.NewDeviceSelected(dev.ID))
	}
	return dev.ID, changed
}

// applyAction applies a completed hold to the selected device. Without a
// selection the action is dropped with no effect.
func (s *Session) applyAction(label gesture.Label, action gesture.Action) (string, bool) {
	selected := s.Selected()
	if selected == "" {
		s.logger.Debug("action dropped, no device selected", "action", action)
		return "", false
	}

	dev, err := s.registry.SetState(selected, action == gesture.ActionTurnedOn)
	if err != nil {
		s.logger.Warn("action failed", "device_id", selected, "error", err)
		return "", false
	}

	s.logger.Info("action triggered", "device_id", dev.ID, "action", action)
	s.metrics.RecordAction(string(action))
	s.journal(label, dev.ID, action)
	return dev.ID, true
}

// journal records the action event; history is best effort and never
// affects the pipeline.
func (s *Session) journal(label gesture.Label, deviceID string, action gesture.Action) {
	if s.events == nil {
		return
	}

	err := s.events.Insert(&store.Event{
		ID:        uuid.New().String(),
		SessionID: s.id,
		DeviceID:  deviceID,
		Gesture:   label.String(),
		Action:    string(action),
	})
	if err != nil {
		s.logger.Warn("journal insert failed", "error", err)
	}
}

func (s *Session) setSelected(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = deviceID
}

// send queues a message for the write pump without blocking; a full queue
// drops the message rather than stalling frame processing.
func (s *Session) send(msg any) {
	select {
	case s.out <- msg:
	default:
		s.logger.Warn("outbound queue full, dropping message")
	}
}

// writePump is the sole writer on the connection. It merges the session's
// own messages with hub device updates; a closed update channel means this
// session was evicted or the hub shut down, either way the connection goes
// with it.
func (s *Session) writePump(ctx context.Context, updates <-chan device.Update) {
	for {
		var msg any

		select {
		case <-ctx.Done():
			s.conn.Close()
			return
		case m := <-s.out:
			msg = m
		case u, ok := <-updates:
			if !ok {
				s.conn.Close()
				return
			}
			msg = protocol.NewDeviceUpdate(u)
		}

		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteJSON(msg); err != nil {
			s.conn.Close()
			return
		}
	}
}
