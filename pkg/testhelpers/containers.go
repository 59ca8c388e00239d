package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MinIOImage is the S3-compatible server used for object store integration tests.
const MinIOImage = "minio/minio:RELEASE.2025-04-22T22-12-26Z"

// Credentials and bucket of the shared MinIO container.
const (
	MinIOAccessKey = "inspections"
	MinIOSecretKey = "inspections-secret"
	MinIOBucket    = "inspections-test"
	MinIORegion    = "us-east-1"
)

// TestMinIO holds a shared MinIO container with an empty test bucket.
type TestMinIO struct {
	Container testcontainers.Container
	Endpoint  string
	Client    *s3.Client
}

var (
	sharedMinIO     *TestMinIO
	sharedMinIOOnce sync.Once
	sharedMinIOErr  error
)

// GetMinIO returns a shared MinIO container for integration tests.
// The container is created once and reused across all tests in the run.
func GetMinIO(t *testing.T) *TestMinIO {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedMinIOOnce.Do(func() {
		sharedMinIO, sharedMinIOErr = setupMinIO()
	})

	if sharedMinIOErr != nil {
		t.Fatalf("Failed to setup MinIO: %v", sharedMinIOErr)
	}

	return sharedMinIO
}

func setupMinIO() (*TestMinIO, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        MinIOImage,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     MinIOAccessKey,
			"MINIO_ROOT_PASSWORD": MinIOSecretKey,
		},
		Cmd: []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").
			WithPort("9000/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start minio container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "9000")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(MinIORegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(MinIOAccessKey, MinIOSecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	// The health endpoint can answer before the bucket API is ready.
	for i := 0; i < 10; i++ {
		_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(MinIOBucket)})
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket %s: %w", MinIOBucket, err)
	}

	return &TestMinIO{
		Container: container,
		Endpoint:  endpoint,
		Client:    client,
	}, nil
}
