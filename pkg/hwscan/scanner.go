package hwscan

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/video-system/go-hwscan/pkg/native"
)

// Scanner runs scans against one scanner library. Build it once at
// startup and share it; ScanDevices is safe for concurrent use as long as
// the library is.
type Scanner struct {
	lib    native.Library
	layout *native.Layout
	log    *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLayout overrides the record layout used to read results.
func WithLayout(l *native.Layout) Option {
	return func(s *Scanner) {
		if l != nil {
			s.layout = l
		}
	}
}

// NewScanner returns a Scanner over lib.
func NewScanner(lib native.Library, opts ...Option) *Scanner {
	s := &Scanner{
		lib:    lib,
		layout: native.Host,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanDevices queries the hardware and returns every device in scanner
// order, or exactly one *Error. It blocks for the duration of the native
// scan.
//
// The native tree is released exactly once on every path that produced
// one, after all reads are done and before the result is returned.
func (s *Scanner) ScanDevices() (devices []Device, err error) {
	root, status := s.invoke()
	if err := status.Err(); err != nil {
		s.log.Warn("scan failed",
			zap.String("kind", string(status.Kind())),
			zap.Int32("code", int32(status)))
		return nil, err
	}
	if root == 0 {
		s.log.Warn("scan reported success without a result")
		return nil, &Error{Kind: KindCritical, Code: StatusCritical, Detail: "scan returned success with a null result"}
	}

	defer func() {
		s.lib.Release(root)
		s.log.Debug("released scan result", zap.Uintptr("addr", root))

		if r := recover(); r != nil {
			devices = nil
			err = &Error{Kind: KindCritical, Code: StatusCritical, Detail: fmt.Sprintf("panic while reading result: %v", r)}
			s.log.Error("scan result read panicked", zap.Any("panic", r))
		}
	}()

	devices, err = UnmarshalLayout(s.lib.Memory(), s.layout, root)
	if err != nil {
		s.log.Warn("scan result conversion failed", zap.Error(err))
		return nil, err
	}

	s.log.Debug("scan complete", zap.Int("devices", len(devices)))
	return devices, nil
}

// invoke calls Scan, turning a panic into StatusCritical. Nothing is
// released in that case because no result was handed over.
func (s *Scanner) invoke() (root uintptr, status Status) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scan panicked", zap.Any("panic", r))
			root, status = 0, StatusCritical
		}
	}()

	status = Status(s.lib.Scan(&root))
	return root, status
}
