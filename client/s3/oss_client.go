package s3

import (
	"io"
	"os"

	"batiplan/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

var (
	DocumentBucket *oss.Bucket

	GetObjectFunc    func(string, *session.Session, ...oss.Option) (io.ReadCloser, error)
	PutObjectFunc    func(string, io.Reader, *session.Session, ...oss.Option) error
	DeleteObjectFunc func(string, *session.Session) error
)

func Bootstrap() {
	var err error
	DocumentBucket, err = BuildBucketFromEnv()
	if err != nil {
		panic(err)
	}

	GetObjectFunc = GetObject
	PutObjectFunc = PutObject
	DeleteObjectFunc = DeleteObject
}

func BuildBucketFromEnv() (*oss.Bucket, error) {
	endpoint := os.ExpandEnv(os.Getenv("OSS_ENDPOINT"))
	if endpoint == "" {
		endpoint = "dummy"
	}
	accessKey := os.Getenv("OSS_ACCESS_KEY")
	secretKey := os.Getenv("OSS_SECRET_KEY")
	bucket := os.Getenv("OSS_BUCKET")
	if bucket == "" {
		bucket = "batiplan"
	}
	return BuildBucket(endpoint, accessKey, secretKey, bucket)
}

func BuildBucket(endpoint, accessKey, secretKey, bucketName string) (*oss.Bucket, error) {
	// endpoint http://oss-cn-hangzhou.aliyuncs.com
	cli, err := oss.New(endpoint, accessKey, secretKey, oss.HTTPClient(nil))
	if err != nil {
		return nil, err
	}

	bucket, err := cli.Bucket(bucketName)
	if err != nil {
		return nil, err
	}
	return bucket, nil
}

func GetObject(key string, s *session.Session, opts ...oss.Option) (io.ReadCloser, error) {
	defer traceObjectAccess("get-object", key, s)()
	return DocumentBucket.GetObject(key, opts...)
}

func PutObject(key string, r io.Reader, s *session.Session, opts ...oss.Option) error {
	defer traceObjectAccess("put-object", key, s)()
	return DocumentBucket.PutObject(key, r, opts...)
}

func DeleteObject(key string, s *session.Session) error {
	defer traceObjectAccess("delete-object", key, s)()
	return DocumentBucket.DeleteObject(key)
}

func traceObjectAccess(operation, key string, s *session.Session) func() {
	if s == nil || s.Context == nil {
		return func() {}
	}
	parentSpan := opentracing.SpanFromContext(s.Context)
	if parentSpan == nil {
		return func() {}
	}
	sp := parentSpan.Tracer().StartSpan(operation, opentracing.ChildOf(parentSpan.Context()))
	ext.Component.Set(sp, "oss")
	sp.SetTag("object-key", key)
	return func() {
		sp.Finish()
	}
}
