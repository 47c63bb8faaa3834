package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/moviepilot/mp-cli/internal/config"
)

const (
	// SessionKey is the fixed key the session is stored under.
	SessionKey = "moviepilot_user_info"

	serviceName     = "moviepilot"
	sessionFileName = "session.json"

	// LockTimeout bounds how long the file backend waits for its lock.
	// On timeout the operation proceeds unlocked.
	LockTimeout = 100 * time.Millisecond
)

// Credential store modes accepted by NewStore.
const (
	ModeAuto    = "auto"
	ModeKeyring = "keyring"
	ModeFile    = "file"
)

// errNotFound is returned by backends when no session is stored.
var errNotFound = errors.New("session not found")

// backend stores the serialized session under SessionKey.
type backend interface {
	get() (string, error)
	set(value string) error
	remove() error
	location() string
}

// Store persists a single Session. Reads fail open: any problem reading or
// decoding the stored value is treated as "no session".
type Store struct {
	b   backend
	log zerolog.Logger
}

// NewStore selects a backend for mode. MP_NO_KEYRING forces the file
// backend. In auto mode the keyring is probed and the file backend is used
// (with a warning on stderr) when it is unavailable.
func NewStore(mode, dir string, log zerolog.Logger) *Store {
	return newStore(mode, dir, log, os.Stderr)
}

func newStore(mode, dir string, log zerolog.Logger, warn io.Writer) *Store {
	if dir == "" {
		dir = config.GlobalConfigDir()
	}
	if os.Getenv("MP_NO_KEYRING") != "" || mode == ModeFile {
		return NewFileStore(dir, log)
	}
	if mode == ModeKeyring {
		return NewKeyringStore(log)
	}

	if keyringAvailable() {
		return NewKeyringStore(log)
	}
	fs := NewFileStore(dir, log)
	fmt.Fprintf(warn, "warning: system keyring unavailable, session stored in plaintext at %s\n", fs.Location())
	return fs
}

// NewFileStore returns a store backed by <dir>/session.json.
func NewFileStore(dir string, log zerolog.Logger) *Store {
	return &Store{b: &fileBackend{dir: dir}, log: log}
}

// NewKeyringStore returns a store backed by the system keyring.
func NewKeyringStore(log zerolog.Logger) *Store {
	return &Store{b: keyringBackend{}, log: log}
}

// NewMemoryStore returns a store that lives only as long as the process.
func NewMemoryStore() *Store {
	return &Store{b: &memoryBackend{}, log: zerolog.Nop()}
}

// SetLogger replaces the diagnostics logger.
func (s *Store) SetLogger(l zerolog.Logger) {
	s.log = l
}

// Location describes where the session is kept.
func (s *Store) Location() string {
	return s.b.location()
}

// Save overwrites the stored session. ServerURL is stored without a
// trailing slash; the caller's value is left unchanged.
func (s *Store) Save(sess *Session) error {
	if sess == nil {
		return errors.New("nil session")
	}
	c := sess.Clone()
	c.ServerURL = config.NormalizeServerURL(c.ServerURL)

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.b.set(string(data)); err != nil {
		return fmt.Errorf("saving session to %s: %w", s.b.location(), err)
	}
	return nil
}

// Load returns the stored session, or nil when there is none or it cannot
// be read.
func (s *Store) Load() *Session {
	raw, err := s.b.get()
	if err != nil {
		if !errors.Is(err, errNotFound) {
			s.log.Debug().Err(err).Str("store", s.b.location()).Msg("session read failed")
		}
		return nil
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.log.Debug().Err(err).Str("store", s.b.location()).Msg("session decode failed")
		return nil
	}
	return &sess
}

// Clear removes the stored session. Failures are logged and ignored.
func (s *Store) Clear() {
	if err := s.b.remove(); err != nil && !errors.Is(err, errNotFound) {
		s.log.Debug().Err(err).Str("store", s.b.location()).Msg("session clear failed")
	}
}

// File backend

type fileBackend struct {
	dir string
}

func (f *fileBackend) path() string {
	return filepath.Join(f.dir, sessionFileName)
}

func (f *fileBackend) location() string {
	return f.path()
}

func (f *fileBackend) get() (string, error) {
	all, err := f.readAll()
	if err != nil {
		return "", err
	}
	v, ok := all[SessionKey]
	if !ok {
		return "", errNotFound
	}
	return string(v), nil
}

func (f *fileBackend) set(value string) error {
	unlock, err := f.lock()
	if err != nil {
		return err
	}
	defer unlock()

	// A corrupt file is replaced rather than blocking login.
	all, err := f.readAll()
	if err != nil {
		all = map[string]json.RawMessage{}
	}
	all[SessionKey] = json.RawMessage(value)
	return f.writeAll(all)
}

func (f *fileBackend) remove() error {
	unlock, err := f.lock()
	if err != nil {
		return err
	}
	defer unlock()

	all, err := f.readAll()
	if err != nil {
		return err
	}
	if _, ok := all[SessionKey]; !ok {
		return errNotFound
	}
	delete(all, SessionKey)
	if len(all) == 0 {
		return os.Remove(f.path())
	}
	return f.writeAll(all)
}

func (f *fileBackend) readAll() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	if all == nil {
		all = map[string]json.RawMessage{}
	}
	return all, nil
}

func (f *fileBackend) writeAll(all map[string]json.RawMessage) error {
	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(f.dir, "session-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Chmod(0600); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	dest := f.path()
	if err := os.Rename(tmpPath, dest); err != nil {
		if runtime.GOOS == "windows" {
			_ = os.Remove(dest)
			return os.Rename(tmpPath, dest)
		}
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// lock takes an advisory lock next to the session file. If another process
// holds it past LockTimeout the caller proceeds without it.
func (f *fileBackend) lock() (func(), error) {
	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return nil, err
	}

	fl := flock.New(f.path() + ".lock")
	ctx, cancel := context.WithTimeout(context.Background(), LockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return func() {}, nil
		}
		return nil, err
	}
	if !locked {
		return func() {}, nil
	}
	return func() { _ = fl.Unlock() }, nil
}

// Memory backend

type memoryBackend struct {
	mu    sync.Mutex
	value *string
}

func (m *memoryBackend) location() string { return "memory" }

func (m *memoryBackend) get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.value == nil {
		return "", errNotFound
	}
	return *m.value, nil
}

func (m *memoryBackend) set(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = &value
	return nil
}

func (m *memoryBackend) remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.value == nil {
		return errNotFound
	}
	m.value = nil
	return nil
}
