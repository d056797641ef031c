package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func newImageService() *ImageService {
	return NewImageService(testConfig())
}

func stubPresignSeams(t *testing.T) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := presignPutObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestGetPresignedPutUrl_Success(t *testing.T) {
	stubPresignSeams(t)

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if *in.Bucket != "papertrail-images" {
			t.Fatalf("unexpected bucket %q", *in.Bucket)
		}
		if !strings.HasPrefix(*in.Key, "images/") {
			t.Fatalf("unexpected key %q", *in.Key)
		}
		return &v4.PresignedHTTPRequest{URL: "http://signed/put"}, nil
	}

	svc := newImageService()
	key, url, err := svc.GetPresignedPutUrl(context.Background())
	if err != nil {
		t.Fatalf("GetPresignedPutUrl error: %v", err)
	}
	if key == "" || url != "http://signed/put" {
		t.Fatalf("unexpected result key=%q url=%q", key, url)
	}
}

func TestGetPresignedGetUrl_Success(t *testing.T) {
	stubPresignSeams(t)

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if *in.Key != "images/2026/1/1/abc" {
			t.Fatalf("unexpected key %q", *in.Key)
		}
		return &v4.PresignedHTTPRequest{URL: "http://signed/get"}, nil
	}

	svc := newImageService()
	url, err := svc.GetPresignedGetUrl(context.Background(), "images/2026/1/1/abc")
	if err != nil {
		t.Fatalf("GetPresignedGetUrl error: %v", err)
	}
	if url != "http://signed/get" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestGetPresignedPutUrl_ConfigError(t *testing.T) {
	stubPresignSeams(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no credentials")
	}

	svc := newImageService()
	if _, _, err := svc.GetPresignedPutUrl(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetRandomStorageKey_Unique(t *testing.T) {
	a := GetRandomStorageKey()
	b := GetRandomStorageKey()
	if a == b {
		t.Fatal("expected unique keys")
	}
	if !strings.HasPrefix(a, "images/") {
		t.Fatalf("unexpected key format %q", a)
	}
}
