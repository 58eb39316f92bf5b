package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"visage/models"
)

// S3 stores media in a single bucket, one key per upload under the target
// folder. Only uploaded files and data URIs are accepted.
type S3 struct {
	s3      *s3.S3
	bucket  string
	region  string
	maxSize int64
}

func NewS3(region, bucket string, maxSize int64) (*S3, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return &S3{s3: s3.New(sess), bucket: bucket, region: region, maxSize: maxSize}, nil
}

func (c *S3) Upload(ctx context.Context, src Source, target Target) (*Result, error) {
	data, err := c.read(src)
	if err != nil {
		return nil, err
	}

	mt := mimetype.Detect(data)
	typ := models.MediaImage
	switch {
	case strings.HasPrefix(mt.String(), "video/"):
		typ = models.MediaVideo
	case !strings.HasPrefix(mt.String(), "image/"):
		return nil, ErrUnsupportedType
	}

	name := target.PublicID
	if name == "" {
		name = uuid.NewString()
	}
	key := strings.TrimPrefix(target.Folder+"/"+name+mt.Extension(), "/")

	_, err = c.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mt.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 put %s: %w", key, err)
	}

	return &Result{URL: c.objectURL(key), PublicID: key, Type: typ}, nil
}

func (c *S3) Delete(ctx context.Context, mediaURL, _ string) error {
	key, err := c.keyFromURL(mediaURL)
	if err != nil {
		return err
	}
	_, err = c.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (c *S3) read(src Source) ([]byte, error) {
	switch {
	case src.Reader != nil:
		r := src.Reader
		if c.maxSize > 0 {
			r = io.LimitReader(r, c.maxSize+1)
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		if c.maxSize > 0 && int64(len(data)) > c.maxSize {
			return nil, ErrTooLarge
		}
		return data, nil
	case IsDataURI(src.Data):
		_, data, err := decodeDataURI(src.Data)
		if err != nil {
			return nil, ErrUnsupportedSource
		}
		if c.maxSize > 0 && int64(len(data)) > c.maxSize {
			return nil, ErrTooLarge
		}
		return data, nil
	case strings.TrimSpace(src.Data) == "":
		return nil, ErrEmptySource
	default:
		return nil, ErrUnsupportedSource
	}
}

func (c *S3) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}

func (c *S3) keyFromURL(mediaURL string) (string, error) {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return "", err
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", fmt.Errorf("no object key in %q", mediaURL)
	}
	return key, nil
}
