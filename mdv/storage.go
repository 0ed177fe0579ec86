// mdv/storage.go
// Copyright(c) 2025 mdvplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package mdv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	fpath "path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// StorageBackend provides access to stored volumes, wherever they are.
// Paths are relative to the backend's root and use forward slashes.
type StorageBackend interface {
	// List returns the paths and sizes of the objects whose path starts
	// with the given prefix.
	List(prefix string) (map[string]int64, error)
	OpenRead(path string) (io.ReadCloser, error)
	Store(path string, r io.Reader) (int64, error)
	Close() error
}

var ErrUnknownScheme = errors.New("unknown storage scheme")

// ParseLocation splits a location into the root of the backend that holds
// it and the path within that backend. Locations of the form
// gs://bucket/path and s3://bucket/path refer to cloud storage; anything
// else is a local file path, for which the root is empty.
func ParseLocation(loc string) (root, path string, err error) {
	scheme, rest, ok := strings.Cut(loc, "://")
	if !ok {
		return "", loc, nil
	}
	switch scheme {
	case "gs", "s3":
		bucket, p, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return "", "", fmt.Errorf("%s: no bucket given", loc)
		}
		return scheme + "://" + bucket, p, nil
	default:
		return "", "", fmt.Errorf("%s: %w", scheme, ErrUnknownScheme)
	}
}

// OpenBackend returns a StorageBackend for the given root as returned by
// ParseLocation.
func OpenBackend(ctx context.Context, root string) (StorageBackend, error) {
	scheme, bucket, ok := strings.Cut(root, "://")
	switch {
	case !ok:
		return LocalBackend{Root: root}, nil
	case scheme == "gs":
		return MakeGCSBackend(ctx, bucket)
	case scheme == "s3":
		return MakeS3Backend(ctx, bucket)
	default:
		return nil, fmt.Errorf("%s: %w", scheme, ErrUnknownScheme)
	}
}

///////////////////////////////////////////////////////////////////////////
// LocalBackend

// LocalBackend stores volumes in the local filesystem under Root; an
// empty Root means paths are used as given.
type LocalBackend struct {
	Root string
}

func (l LocalBackend) fullPath(path string) string {
	return fpath.Join(l.Root, fpath.FromSlash(path))
}

func (l LocalBackend) List(prefix string) (map[string]int64, error) {
	root := l.Root
	if root == "" {
		root = "."
	}

	m := make(map[string]int64)
	err := fpath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := fpath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = fpath.ToSlash(rel)
		if !strings.HasPrefix(rel, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		m[rel] = info.Size()
		return nil
	})
	return m, err
}

func (l LocalBackend) OpenRead(path string) (io.ReadCloser, error) {
	return os.Open(l.fullPath(path))
}

// Store writes the object to a temporary file that is renamed into place
// once it is complete.
func (l LocalBackend) Store(path string, r io.Reader) (int64, error) {
	p := l.fullPath(path)
	if err := os.MkdirAll(fpath.Dir(p), 0o755); err != nil {
		return 0, err
	}

	f, err := os.CreateTemp(fpath.Dir(p), ".tmp-"+fpath.Base(p))
	if err != nil {
		return 0, err
	}
	defer os.Remove(f.Name())

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return n, err
	}
	if err := f.Close(); err != nil {
		return n, err
	}
	return n, os.Rename(f.Name(), p)
}

func (l LocalBackend) Close() error { return nil }

///////////////////////////////////////////////////////////////////////////
// GCSBackend

type GCSBackend struct {
	ctx    context.Context
	client *storage.Client
	bucket *storage.BucketHandle
}

// MakeGCSBackend returns a backend for the given Google Cloud Storage
// bucket. If MDVPLOT_GCS_CREDENTIALS holds a service account's JSON key,
// it is used for authentication; otherwise the application default
// credentials are.
func MakeGCSBackend(ctx context.Context, bucketName string) (StorageBackend, error) {
	var opts []option.ClientOption
	if creds := os.Getenv("MDVPLOT_GCS_CREDENTIALS"); creds != "" {
		config, err := google.JWTConfigFromJSON([]byte(creds), storage.ScopeReadWrite)
		if err != nil {
			return nil, fmt.Errorf("MDVPLOT_GCS_CREDENTIALS: %w", err)
		}
		opts = append(opts, option.WithHTTPClient(oauth2.NewClient(ctx, config.TokenSource(ctx))))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GCSBackend{
		ctx:    ctx,
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

func (g *GCSBackend) List(prefix string) (map[string]int64, error) {
	query := storage.Query{
		Projection: storage.ProjectionNoACL,
		Prefix:     prefix,
	}

	m := make(map[string]int64)
	it := g.bucket.Objects(g.ctx, &query)
	for {
		if obj, err := it.Next(); err == iterator.Done {
			break
		} else if err != nil {
			return nil, err
		} else if !strings.HasSuffix(obj.Name, "/") { // skip ~folders
			m[obj.Name] = obj.Size
		}
	}

	return m, nil
}

func (g *GCSBackend) OpenRead(path string) (io.ReadCloser, error) {
	return g.bucket.Object(path).NewReader(g.ctx)
}

func (g *GCSBackend) Store(path string, r io.Reader) (int64, error) {
	objw := g.bucket.Object(path).NewWriter(g.ctx)
	n, err := io.Copy(objw, r)
	if err != nil {
		objw.Close()
		return n, err
	}
	return n, objw.Close()
}

func (g *GCSBackend) Close() error { return g.client.Close() }

///////////////////////////////////////////////////////////////////////////
// S3Backend

type S3Backend struct {
	ctx    context.Context
	client *s3.Client
	bucket string
}

// MakeS3Backend returns a backend for the given S3 bucket. The standard
// AWS configuration sources are used, with the following overrides from
// the environment: MDVPLOT_S3_REGION, MDVPLOT_S3_ENDPOINT (for
// S3-compatible services, which are then addressed path-style), and
// MDVPLOT_S3_ACCESS_KEY_ID / MDVPLOT_S3_SECRET_ACCESS_KEY.
func MakeS3Backend(ctx context.Context, bucket string) (StorageBackend, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region := os.Getenv("MDVPLOT_S3_REGION"); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if id, secret := os.Getenv("MDVPLOT_S3_ACCESS_KEY_ID"), os.Getenv("MDVPLOT_S3_SECRET_ACCESS_KEY"); id != "" && secret != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(id, secret, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	endpoint := os.Getenv("MDVPLOT_S3_ENDPOINT")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Backend{ctx: ctx, client: client, bucket: bucket}, nil
}

func (b *S3Backend) List(prefix string) (map[string]int64, error) {
	m := make(map[string]int64)
	pager := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})
	for pager.HasMorePages() {
		page, err := pager.NextPage(b.ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if key := aws.ToString(obj.Key); !strings.HasSuffix(key, "/") {
				m[key] = aws.ToInt64(obj.Size)
			}
		}
	}
	return m, nil
}

func (b *S3Backend) OpenRead(path string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(b.ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// Store reads all of r before uploading it since S3 requires the length
// of the object up front.
func (b *S3Backend) Store(path string, r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	_, err = b.client.PutObject(b.ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(buf),
	})
	if err != nil {
		return 0, err
	}
	return int64(len(buf)), nil
}

func (b *S3Backend) Close() error { return nil }
