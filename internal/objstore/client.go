// Package objstore stores profile and course images in MinIO.
package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"coursemarket/internal/config"
)

// MaxImageBytes caps the size of an imported image.
const MaxImageBytes = 10 << 20

var (
	// ErrInvalidSource is returned for source URLs that are not http(s).
	ErrInvalidSource = errors.New("image source must be an http or https URL")
	// ErrNotImage is returned when the source does not serve an image.
	ErrNotImage = errors.New("image source did not return an image")
	// ErrTooLarge is returned when the source exceeds MaxImageBytes.
	ErrTooLarge = errors.New("image exceeds size limit")
	// ErrBlockedAddress is returned when the source resolves to a loopback,
	// private, link-local or otherwise internal address.
	ErrBlockedAddress = errors.New("image source address is not allowed")
)

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598).
var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// Client wraps a MinIO client bound to one bucket.
type Client struct {
	mc        *minio.Client
	bucket    string
	publicURL string
	http      *http.Client
	// allowInternal lifts the internal address checks; tests only.
	allowInternal bool
}

// NewClient creates a MinIO client. Callers skip it when no endpoint is configured.
func NewClient(cfg config.MinIOConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio access key and secret key are required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "coursemarket"
	}
	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, bucket)
	}

	return &Client{
		mc:        mc,
		bucket:    bucket,
		publicURL: publicURL,
		http:      newImageHTTPClient(false),
	}, nil
}

// newImageHTTPClient returns the client used to fetch image sources. Unless
// allowInternal is set, every dialled address is checked after DNS resolution
// so redirects and rebinding cannot reach internal hosts.
func newImageHTTPClient(allowInternal bool) *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	if !allowInternal {
		dialer.Control = func(_, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip == nil || isBlockedIP(ip) {
				return ErrBlockedAddress
			}
			return nil
		}
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{
		Timeout:   15 * time.Second,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			return validateSource(req.URL.String(), allowInternal)
		},
	}
}

// EnsureBucket creates the bucket when missing.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		logrus.WithField("bucket", c.bucket).Info("created image bucket")
	}
	return nil
}

// Upload puts one object.
func (c *Client) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := c.mc.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// ImportImage downloads sourceURL and stores it under prefix, returning the
// public URL of the stored copy.
func (c *Client) ImportImage(ctx context.Context, prefix, sourceURL string) (string, error) {
	if err := validateSource(sourceURL, c.allowInternal); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !isImage(contentType) {
		return "", ErrNotImage
	}
	if resp.ContentLength > MaxImageBytes {
		return "", ErrTooLarge
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(body) > MaxImageBytes {
		return "", ErrTooLarge
	}

	key := objectKey(prefix, contentType)
	if err := c.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), contentType); err != nil {
		return "", err
	}
	return c.publicURL + "/" + key, nil
}

func validateSource(raw string, allowInternal bool) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrInvalidSource
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidSource
	}
	if allowInternal {
		return nil
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return ErrBlockedAddress
	}
	if ip := net.ParseIP(host); ip != nil && isBlockedIP(ip) {
		return ErrBlockedAddress
	}
	return nil
}

func isBlockedIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		sharedAddressSpace.Contains(ip)
}

func isImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && strings.HasPrefix(mediaType, "image/")
}

func objectKey(prefix, contentType string) string {
	ext := ""
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return strings.Trim(prefix, "/") + "/" + uuid.NewString() + ext
}
