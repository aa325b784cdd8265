package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/vertextoedge/pkgfetch/internal/domain"
	"github.com/vertextoedge/pkgfetch/internal/port"
	"go.uber.org/zap"
)

// Config holds the transport options. All fields are applied once at
// construction; the resulting Transport is immutable.
type Config struct {
	// SSLEngine names an external crypto engine. This transport has no
	// engine support, so a non-empty value fails construction.
	SSLEngine string

	// Client certificate and key, PEM files. Both or neither must be set.
	ClientCert string
	ClientKey  string
	// ClientKeyPassword would decrypt an encrypted key; not supported.
	ClientKeyPassword string

	// CAFile and CAPath point at additional trusted CA certificates
	// (a single PEM file and a directory of PEM files respectively).
	CAFile string
	CAPath string

	// SkipVerifyPeer disables server certificate verification.
	SkipVerifyPeer bool

	// ProxyURL routes requests through a proxy; ProxyUsername and
	// ProxyPassword supply proxy credentials.
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string

	// AuthUsername and AuthPassword supply HTTP basic auth for the
	// remote server itself.
	AuthUsername string
	AuthPassword string

	// ConnectTimeout bounds connection establishment; zero means no
	// limit. TransferTimeout bounds the whole exchange including the
	// body; zero means no limit.
	ConnectTimeout  time.Duration
	TransferTimeout time.Duration

	// FollowRedirects enables following Location redirects.
	FollowRedirects bool
}

// Transport is an HTTP implementation of port.Transport.
//
// One Transport carries one in-flight exchange at a time: the last-error
// detail is plain state, so callers needing concurrency must construct one
// Transport per concurrent operation.
type Transport struct {
	client     *http.Client
	authHeader string
	lastDetail string
	logger     *zap.Logger
}

// Ensure Transport implements port.Transport
var _ port.Transport = (*Transport)(nil)

// New constructs a Transport from cfg. Options naming capabilities this
// implementation does not have fail here rather than being silently
// ignored.
func New(cfg *Config, logger *zap.Logger) (*Transport, error) {
	if cfg.SSLEngine != "" {
		return nil, fmt.Errorf("ssl engine %q is not supported by this transport", cfg.SSLEngine)
	}
	if cfg.ClientKeyPassword != "" {
		return nil, errors.New("encrypted client keys are not supported")
	}
	if (cfg.ClientCert == "") != (cfg.ClientKey == "") {
		return nil, errors.New("client cert and key must be configured together")
	}

	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.SkipVerifyPeer,
	}

	if cfg.ClientCert != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	if cfg.CAFile != "" || cfg.CAPath != "" {
		pool, err := loadCAPool(cfg.CAFile, cfg.CAPath)
		if err != nil {
			return nil, err
		}
		tlsCfg.RootCAs = pool
	}

	httpTransport := &http.Transport{
		TLSClientConfig: tlsCfg,
		Proxy:           http.ProxyFromEnvironment,
	}

	if cfg.ConnectTimeout > 0 {
		dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
		httpTransport.DialContext = dialer.DialContext
	}

	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		if cfg.ProxyUsername != "" {
			proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
		}
		httpTransport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: httpTransport,
		Timeout:   cfg.TransferTimeout,
	}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	t := &Transport{
		client: client,
		logger: logger,
	}
	if cfg.AuthUsername != "" {
		creds := cfg.AuthUsername + ":" + cfg.AuthPassword
		t.authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
	}
	return t, nil
}

// loadCAPool builds a certificate pool from a PEM file and/or a directory
// of PEM files.
func loadCAPool(caFile, caPath string) (*x509.CertPool, error) {
	pool := x509.NewCertPool()

	if caFile != "" {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read ca file: %w", err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in ca file %s", caFile)
		}
	}

	if caPath != "" {
		entries, err := os.ReadDir(caPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read ca path: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			pem, err := os.ReadFile(filepath.Join(caPath, entry.Name()))
			if err != nil {
				return nil, fmt.Errorf("failed to read ca certificate %s: %w", entry.Name(), err)
			}
			pool.AppendCertsFromPEM(pem)
		}
	}

	return pool, nil
}

// HeadOnly retrieves response metadata for rawURL without the body.
func (t *Transport) HeadOnly(rawURL string) (port.HeadResult, error) {
	t.lastDetail = ""

	req, err := http.NewRequest(http.MethodHead, rawURL, nil)
	if err != nil {
		t.lastDetail = err.Error()
		return port.HeadResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	t.applyAuth(req)

	t.logger.Debug("metadata request", zap.String("url", rawURL))

	resp, err := t.client.Do(req)
	if err != nil {
		t.lastDetail = err.Error()
		return port.HeadResult{}, fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return port.HeadResult{}, t.statusError(resp.StatusCode)
	}

	return port.HeadResult{
		ETag:          resp.Header.Get("Etag"),
		ContentLength: resp.ContentLength,
	}, nil
}

// GetRange requests the resource body starting at fromOffset; 0 requests
// the full body. The caller must close the returned reader.
func (t *Transport) GetRange(rawURL string, fromOffset int64) (io.ReadCloser, error) {
	t.lastDetail = ""

	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		t.lastDetail = err.Error()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	t.applyAuth(req)

	if fromOffset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", fromOffset))
	}

	t.logger.Debug("body request",
		zap.String("url", rawURL),
		zap.Int64("from_offset", fromOffset))

	resp, err := t.client.Do(req)
	if err != nil {
		t.lastDetail = err.Error()
		return nil, fmt.Errorf("body request failed: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, t.statusError(resp.StatusCode)
	}

	// Appending a full body onto a partial file would corrupt the cache,
	// so a server that ignores the range request is a failure.
	if fromOffset > 0 && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		t.lastDetail = fmt.Sprintf("server ignored range request (status %d)", resp.StatusCode)
		return nil, domain.ErrRangeRejected
	}

	return resp.Body, nil
}

// LastErrorDetail returns the detail recorded by the most recent exchange.
func (t *Transport) LastErrorDetail() string {
	return t.lastDetail
}

// statusError records and returns an error for an HTTP error status.
func (t *Transport) statusError(code int) error {
	t.lastDetail = fmt.Sprintf("The requested URL returned error: %d", code)
	return fmt.Errorf("http error %d: %s", code, http.StatusText(code))
}

func (t *Transport) applyAuth(req *http.Request) {
	if t.authHeader != "" {
		req.Header.Set("Authorization", t.authHeader)
	}
}
