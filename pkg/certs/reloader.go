package certs

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay lets writers finish replacing both files before a reload.
const reloadDelay = 200 * time.Millisecond

// Reloader holds the current certificate of a cert/key file pair.
type Reloader struct {
	certFile string
	keyFile  string
	logger   *slog.Logger

	mu   sync.RWMutex
	cert *tls.Certificate
}

// NewReloader loads and validates the pair.
func NewReloader(certFile, keyFile string) (*Reloader, error) {
	certAbs, err := filepath.Abs(certFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", certFile, err)
	}
	keyAbs, err := filepath.Abs(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", keyFile, err)
	}

	r := &Reloader{
		certFile: certAbs,
		keyFile:  keyAbs,
		logger:   slog.Default().With("component", "certs"),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload reads the pair from disk. On error the current certificate is kept.
func (r *Reloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load certificate: %w", err)
	}

	leaf, err := Leaf(&cert)
	if err != nil {
		return err
	}
	now := time.Now()
	if err := ValidateAt(leaf, now); err != nil {
		return fmt.Errorf("certificate validation failed: %w", err)
	}
	cert.Leaf = leaf

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()

	attrs := []any{
		"subject", leaf.Subject.CommonName,
		"issuer", leaf.Issuer.CommonName,
		"expires_at", leaf.NotAfter.Format(time.RFC3339),
	}
	if ExpiresSoon(leaf, now) {
		r.logger.Warn("certificate expiring soon", attrs...)
	} else {
		r.logger.Info("certificate loaded", attrs...)
	}
	return nil
}

// Certificate returns the current certificate.
func (r *Reloader) Certificate() *tls.Certificate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *Reloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return r.Certificate(), nil
}

// Watch reloads the pair after either file changes, until ctx ends. It
// watches the parent directories, since certificate managers usually
// replace files by rename.
func (r *Reloader) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range uniqueDirs(r.certFile, r.keyFile) {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	r.logger.Info("watching certificate files", "cert_file", r.certFile, "key_file", r.keyFile)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			name := filepath.Clean(event.Name)
			if name != r.certFile && name != r.keyFile {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, func() {
				if err := r.Reload(); err != nil {
					r.logger.Error("failed to reload certificate", "error", err)
				}
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			r.logger.Error("certificate watcher error", "error", err)
		}
	}
}

// ServerConfig returns a TLS server configuration that serves r's current
// certificate. minVersion is "1.2" or "1.3"; anything else means 1.2.
func ServerConfig(r *Reloader, minVersion string) *tls.Config {
	version := uint16(tls.VersionTLS12)
	if minVersion == "1.3" {
		version = tls.VersionTLS13
	}
	return &tls.Config{
		MinVersion:     version,
		GetCertificate: r.GetCertificate,
		NextProtos:     []string{"http/1.1"},
	}
}

func uniqueDirs(paths ...string) []string {
	var dirs []string
	seen := make(map[string]bool)
	for _, p := range paths {
		dir := filepath.Dir(p)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
