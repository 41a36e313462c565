package gcs_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gcs "github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/gcs"
	"github.com/go-kratos/kratos/v2/log"
)

func TestSignedGetURL(t *testing.T) {
	ctx := context.Background()
	keyPEM, accessID := generateTestKey(t)
	fixed := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	signer, err := gcs.NewURLSigner(ctx, accessID, log.NewStdLogger(io.Discard),
		gcs.WithServiceAccountKey(accessID, keyPEM),
		gcs.WithClock(func() time.Time { return fixed }),
	)
	if err != nil {
		t.Fatalf("NewURLSigner: %v", err)
	}

	ttl := 15 * time.Minute
	signedURL, expires, err := signer.SignedGetURL(ctx, "lecture-media", "videos/user/lecture.mp4", ttl)
	if err != nil {
		t.Fatalf("SignedGetURL: %v", err)
	}
	if !expires.Equal(fixed.Add(ttl)) {
		t.Fatalf("expected expires %v, got %v", fixed.Add(ttl), expires)
	}

	parsed, err := url.Parse(signedURL)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	if !strings.Contains(parsed.Path, "videos/user/lecture.mp4") {
		t.Fatalf("expected object path in signed url, got %s", parsed.Path)
	}
	query := parsed.Query()
	if query.Get("X-Goog-Expires") != "900" {
		t.Fatalf("expected 900s TTL, got %q", query.Get("X-Goog-Expires"))
	}
	if query.Get("X-Goog-Signature") == "" {
		t.Fatal("missing signature")
	}
}

func TestSignedGetURLValidatesInput(t *testing.T) {
	ctx := context.Background()
	keyPEM, accessID := generateTestKey(t)
	signer, err := gcs.NewURLSigner(ctx, accessID, log.NewStdLogger(io.Discard), gcs.WithServiceAccountKey(accessID, keyPEM))
	if err != nil {
		t.Fatalf("NewURLSigner: %v", err)
	}
	if _, _, err := signer.SignedGetURL(ctx, "", "obj", time.Minute); err == nil {
		t.Fatal("expected bucket error")
	}
	if _, _, err := signer.SignedGetURL(ctx, "bucket", "", time.Minute); err == nil {
		t.Fatal("expected object error")
	}
	if _, _, err := signer.SignedGetURL(ctx, "bucket", "obj", 0); err == nil {
		t.Fatal("expected ttl error")
	}
}

func TestSignerReadsCredentialsFile(t *testing.T) {
	keyPEM, accessID := generateTestKey(t)
	raw, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"private_key":  string(keyPEM),
		"client_email": accessID,
	})
	if err != nil {
		t.Fatalf("marshal credentials: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}

	signer, err := gcs.NewURLSigner(context.Background(), "", log.NewStdLogger(io.Discard), gcs.WithCredentialsFile(path))
	if err != nil {
		t.Fatalf("NewURLSigner: %v", err)
	}
	signedURL, _, err := signer.SignedGetURL(context.Background(), "bucket", "obj", time.Minute)
	if err != nil {
		t.Fatalf("SignedGetURL: %v", err)
	}
	if !strings.Contains(signedURL, url.QueryEscape(accessID)) {
		t.Fatalf("expected credential %s in url %s", accessID, signedURL)
	}
}

func TestObjectName(t *testing.T) {
	if got := gcs.ObjectName("", "a/b.mp4"); got != "a/b.mp4" {
		t.Fatalf("unexpected %s", got)
	}
	if got := gcs.ObjectName("lectures", "a/b.mp4"); got != "lectures/a/b.mp4" {
		t.Fatalf("unexpected %s", got)
	}
}

func generateTestKey(t *testing.T) ([]byte, string) {
	t.Helper()
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	pkcs8, err := x509.MarshalPKCS8PrivateKey(rsaKey)
	if err != nil {
		t.Fatalf("marshal pkcs8: %v", err)
	}
	block := &pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8}
	pemBytes := pem.EncodeToMemory(block)
	accessID := "test-signer@unit-test.iam.gserviceaccount.com"
	return pemBytes, accessID
}
