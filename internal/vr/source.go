package vr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/nerrad567/vr-bridge/internal/openvr"
)

// Logger defines the logging interface used by the capture source.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Namer assigns stable entity ids to hardware serials. Satisfied by
// the identity catalog.
type Namer interface {
	Assign(ctx context.Context, serial, class string) (string, error)
}

// ProcessNamer resolves an OS process id to an executable name. The
// default implementation asks the OS; tests substitute their own.
type ProcessNamer func(pid uint32) (string, error)

// Source captures live runtime state into snapshots.
type Source struct {
	runtime  openvr.Runtime
	namer    Namer
	procName ProcessNamer
	timeout  time.Duration
	logger   Logger

	mu      sync.Mutex
	ids     map[string]string
	lastApp appName
}

// appName caches the resolved name of the current scene process, so a
// stable foreground application costs one lookup rather than one per
// tick.
type appName struct {
	pid  uint32
	name string
}

// NewSource wires a capture source over an initialised runtime.
// timeout bounds every Capture call; logger may be nil.
func NewSource(runtime openvr.Runtime, namer Namer, timeout time.Duration, logger Logger) *Source {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Source{
		runtime:  runtime,
		namer:    namer,
		procName: defaultProcessName,
		timeout:  timeout,
		logger:   logger,
		ids:      make(map[string]string),
	}
}

// Capture reads one snapshot of the runtime's state.
//
// The runtime API has no cancellation, so the read runs aside and is
// abandoned once the deadline passes; an abandoned read finishes in
// the background without a consumer.
//
// Returns ErrRuntimeUnavailable when the read outlives the configured
// timeout; the caller must treat that tick as a no-op rather than act
// on a partial snapshot.
func (s *Source) Capture(ctx context.Context) (StateSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type outcome struct {
		snap StateSnapshot
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		snap, err := s.read(ctx)
		done <- outcome{snap: snap, err: err}
	}()

	select {
	case out := <-done:
		return out.snap, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return StateSnapshot{}, fmt.Errorf("%w: capture exceeded %s", ErrRuntimeUnavailable, s.timeout)
		}
		return StateSnapshot{}, ctx.Err()
	}
}

func (s *Source) read(ctx context.Context) (StateSnapshot, error) {
	snap := StateSnapshot{CapturedAt: time.Now().UTC()}

	hmdPresent := s.runtime.DeviceConnected(openvr.HMDIndex) &&
		s.runtime.DeviceClass(openvr.HMDIndex) == openvr.ClassHMD
	snap.HeadsetConnected = hmdPresent

	// Only a present headset can be user-active.
	if hmdPresent {
		snap.Active = s.runtime.DeviceActivity(openvr.HMDIndex) != openvr.ActivityStandby
	}

	devices, err := s.readDevices(ctx)
	if err != nil {
		return StateSnapshot{}, err
	}
	snap.Devices = devices

	snap.Application = s.applicationName()

	if width, depth, ok := s.runtime.PlayArea(); ok && width > 0 && depth > 0 {
		snap.Boundary = &Boundary{Width: float64(width), Depth: float64(depth)}
	}

	return snap, nil
}

// readDevices walks the runtime's device index space and records every
// publishable device. Devices without a usable class, a live
// connection or a serial number are skipped. A serial that cannot be
// mapped to an identity fails the whole capture: partial snapshots
// must never reach the differ.
func (s *Source) readDevices(ctx context.Context) ([]DeviceRecord, error) {
	var records []DeviceRecord
	for index := uint32(0); index < openvr.MaxTrackedDevices; index++ {
		class := s.runtime.DeviceClass(index)
		if ClassPrefix(class) == "" {
			continue
		}
		if !s.runtime.DeviceConnected(index) {
			continue
		}

		serial, err := s.runtime.StringProperty(index, openvr.PropSerialNumber)
		if err != nil || serial == "" {
			s.logger.Debug("skipping device without serial",
				"index", index,
				"class", class.String())
			continue
		}

		entityID, err := s.entityID(ctx, serial, class)
		if err != nil {
			return nil, fmt.Errorf("assign identity for %s: %w", serial, err)
		}

		rec := DeviceRecord{
			EntityID:  entityID,
			Serial:    serial,
			Class:     class,
			Connected: true,
		}
		if class == openvr.ClassController {
			rec.Role = s.runtime.ControllerRole(index)
		}
		s.readBattery(index, &rec)
		records = append(records, rec)
	}
	return records, nil
}

func (s *Source) readBattery(index uint32, rec *DeviceRecord) {
	provides, err := s.runtime.BoolProperty(index, openvr.PropProvidesBatteryStatus)
	if err != nil || !provides {
		return
	}

	// The runtime reports charge as a 0..1 fraction.
	fraction, err := s.runtime.FloatProperty(index, openvr.PropBatteryPercentage)
	if err != nil {
		s.logger.Debug("battery level unavailable",
			"entity", rec.EntityID,
			"error", err)
		return
	}

	charging, err := s.runtime.BoolProperty(index, openvr.PropDeviceIsCharging)
	if err != nil {
		charging = false
	}

	rec.HasBattery = true
	rec.Battery = float64(fraction) * 100
	rec.Charging = charging
}

// entityID resolves a serial to its stable entity id, remembering the
// answer so a steady device costs no catalog round trip per tick.
func (s *Source) entityID(ctx context.Context, serial string, class openvr.DeviceClass) (string, error) {
	s.mu.Lock()
	id, ok := s.ids[serial]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	id, err := s.namer.Assign(ctx, serial, ClassPrefix(class))
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.ids[serial] = id
	s.mu.Unlock()
	return id, nil
}

func (s *Source) applicationName() string {
	pid := s.runtime.SceneProcessID()
	if pid == 0 {
		return ""
	}

	s.mu.Lock()
	cached := s.lastApp
	s.mu.Unlock()
	if cached.pid == pid {
		return cached.name
	}

	name := s.resolveApplication(pid)

	s.mu.Lock()
	s.lastApp = appName{pid: pid, name: name}
	s.mu.Unlock()

	if name != "" {
		s.logger.Info("scene application changed", "pid", pid, "name", name)
	}
	return name
}

// resolveApplication turns a scene process id into a display name.
// Processes not registered with the runtime fall back to the OS
// executable name.
func (s *Source) resolveApplication(pid uint32) string {
	key, err := s.runtime.ApplicationKeyForProcess(pid)
	if err != nil {
		name, osErr := s.procName(pid)
		if osErr != nil {
			s.logger.Warn("cannot name scene process", "pid", pid, "error", osErr)
			return ""
		}
		return name
	}

	name, err := s.runtime.ApplicationName(key)
	if err != nil || name == "" {
		// The key still identifies manifests without a name property.
		return key
	}
	return name
}

// DrainEvents empties the runtime's event queue, acknowledging a quit
// request when one arrives. Returns whether the runtime asked the
// process to exit.
func (s *Source) DrainEvents() bool {
	return s.runtime.DrainEvents()
}

// RuntimeVersion reports the connected runtime's version string.
func (s *Source) RuntimeVersion() string {
	return s.runtime.Version()
}

func defaultProcessName(pid uint32) (string, error) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", err
	}
	return proc.Name()
}
