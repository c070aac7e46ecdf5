package tls

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloader serves a certificate that follows the files on disk. Operators
// can replace the self-signed pair with a CA issued one without a restart.
type Reloader struct {
	certPath string
	keyPath  string

	mu      sync.RWMutex
	cert    *tls.Certificate
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewReloader loads the current pair and starts watching the directories
// holding it. Directories are watched rather than files because editors and
// certificate tooling usually replace files by rename.
func NewReloader(certPath, keyPath string) (*Reloader, error) {
	r := &Reloader{
		certPath: certPath,
		keyPath:  keyPath,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}

	if err := r.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dirs := map[string]bool{
		filepath.Dir(certPath): true,
		filepath.Dir(keyPath):  true,
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
		}
	}

	r.watcher = watcher
	go r.watchLoop()

	slog.Info("watching TLS certificate for changes", "cert_path", certPath, "key_path", keyPath)
	return r, nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *Reloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// Apply points cfg at the reloader. The static certificate list is cleared
// so GetCertificate is always consulted. NextProtos is left untouched.
func (r *Reloader) Apply(cfg *tls.Config) {
	cfg.Certificates = nil
	cfg.GetCertificate = r.GetCertificate
}

// Close stops watching. It is safe to call more than once.
func (r *Reloader) Close() error {
	var err error
	r.once.Do(func() {
		close(r.stopCh)
		err = r.watcher.Close()
		<-r.done
	})
	return err
}

func (r *Reloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certPath, r.keyPath)
	if err != nil {
		return fmt.Errorf("failed to load certificate: %w", err)
	}
	if err := ValidateCertificate(&cert, time.Now()); err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()
	return nil
}

func (r *Reloader) relevant(name string) bool {
	clean := filepath.Clean(name)
	return clean == filepath.Clean(r.certPath) || clean == filepath.Clean(r.keyPath)
}

func (r *Reloader) watchLoop() {
	defer close(r.done)

	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !r.relevant(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			// The pair is written as two files; a half-replaced pair fails to
			// load and the previous certificate keeps serving until the
			// second write arrives.
			if err := r.reload(); err != nil {
				slog.Debug("certificate reload deferred", "file", filepath.Base(event.Name), "error", err)
				continue
			}
			slog.Info("certificate reloaded", "cert_path", r.certPath)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("certificate watcher error", "error", err)

		case <-r.stopCh:
			return
		}
	}
}
