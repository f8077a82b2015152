package fetch

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const archiveName = "latest.zip"

// s3iface is the minimal subset of s3 client methods we use; allows test fakes.
type s3iface interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// newS3Client constructs an s3 client; overridden in tests.
var newS3Client = func(ctx context.Context) (s3iface, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

// Fetcher retrieves feed archives from http(s), s3, or the local filesystem.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a fetcher. A nil client gets a generous download timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch resolves source to a local zip path. Remote sources are streamed
// into destDir; a plain filesystem path is used where it is.
func (f *Fetcher) Fetch(ctx context.Context, source, destDir string) (string, error) {
	u, err := url.Parse(source)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return f.download(ctx, source, destDir)
		case "s3":
			return f.downloadS3(ctx, u, destDir)
		}
	}
	if _, err := os.Stat(source); err != nil {
		return "", fmt.Errorf("fetch: archive %s: %w", source, err)
	}
	return source, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, destDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch: build request for %s: %w", rawURL, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch: download %s: status %d", rawURL, resp.StatusCode)
	}
	return writeArchive(destDir, resp.Body)
}

func (f *Fetcher) downloadS3(ctx context.Context, u *url.URL, destDir string) (string, error) {
	cl, err := newS3Client(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch: s3 client: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	resp, err := cl.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("fetch: s3 get %s: %w", u.String(), err)
	}
	defer resp.Body.Close()
	return writeArchive(destDir, resp.Body)
}

func writeArchive(destDir string, body io.Reader) (string, error) {
	path := filepath.Join(destDir, archiveName)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("fetch: create %s: %w", path, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, body); err != nil {
		return "", fmt.Errorf("fetch: write %s: %w", path, err)
	}
	return path, nil
}

// Extract unpacks every regular file in the zip into destDir, flattened to
// its base name. GTFS consumers look files up by base name, and some feeds
// nest their .txt files one directory deep.
func Extract(zipPath, destDir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("fetch: open zip %s: %w", zipPath, err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(filepath.Clean(zf.Name))
		if name == "." || name == ".." || name == string(filepath.Separator) {
			return errors.New("fetch: zip entry with unusable name: " + zf.Name)
		}
		if err := extractOne(zf, filepath.Join(destDir, name)); err != nil {
			return err
		}
	}
	return nil
}

func extractOne(zf *zip.File, dest string) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("fetch: open zip entry %s: %w", zf.Name, err)
	}
	defer rc.Close()
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("fetch: create %s: %w", dest, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("fetch: extract %s: %w", zf.Name, err)
	}
	return nil
}
