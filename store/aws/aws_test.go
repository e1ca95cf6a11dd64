package aws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/scalescape/expire"
	"github.com/scalescape/expire/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore creates a StorageClient talking path-style S3 XML to handler.
func testStore(t *testing.T, handler http.Handler) StorageClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:       "test-region",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
	})
	return StorageClient{client: client, region: "test-region"}
}

func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

const firstPage = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>backups</Name>
  <KeyCount>2</KeyCount>
  <MaxKeys>2</MaxKeys>
  <IsTruncated>true</IsTruncated>
  <NextContinuationToken>page-2</NextContinuationToken>
  <Contents><Key>a.tar.gz</Key><LastModified>2023-01-02T03:04:05.000Z</LastModified><Size>10</Size></Contents>
  <Contents><Key>b.tar.gz</Key><LastModified>2023-02-02T03:04:05.000Z</LastModified><Size>20</Size></Contents>
</ListBucketResult>`

const secondPage = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>backups</Name>
  <KeyCount>1</KeyCount>
  <MaxKeys>2</MaxKeys>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>c.tar.gz</Key><LastModified>2023-03-02T03:04:05.000Z</LastModified><Size>30</Size></Contents>
</ListBucketResult>`

func pagedBucket(t *testing.T, calls *int) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/backups", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("list-type"))
		if r.URL.Query().Get("continuation-token") == "page-2" {
			xmlResponse(w, http.StatusOK, secondPage)
			return
		}
		xmlResponse(w, http.StatusOK, firstPage)
	})
}

func TestShouldListOnlyTheFirstPage(t *testing.T) {
	calls := 0
	st := testStore(t, pagedBucket(t, &calls))

	listing, err := st.ListObject(context.Background(), "backups", false)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, listing.Truncated)
	require.Len(t, listing.Objects, 2)
	assert.Equal(t, "a.tar.gz", listing.Objects[0].Key)
	assert.Equal(t, "backups", listing.Objects[0].Bucket)
	require.NotNil(t, listing.Objects[0].LastModified)
	assert.True(t, time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC).Equal(*listing.Objects[0].LastModified))
	assert.Equal(t, "b.tar.gz", listing.Objects[1].Key)
}

func TestShouldFollowContinuationTokensForAllPages(t *testing.T) {
	calls := 0
	st := testStore(t, pagedBucket(t, &calls))

	listing, err := st.ListObject(context.Background(), "backups", true)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.False(t, listing.Truncated)
	require.Len(t, listing.Objects, 3)
	assert.Equal(t, "c.tar.gz", listing.Objects[2].Key)
}

func TestShouldLeaveLastModifiedNilWhenMissing(t *testing.T) {
	st := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>backups</Name>
  <IsTruncated>false</IsTruncated>
  <Contents><Key>no-time</Key></Contents>
</ListBucketResult>`)
	}))

	listing, err := st.ListObject(context.Background(), "backups", false)

	require.NoError(t, err)
	require.Len(t, listing.Objects, 1)
	assert.Nil(t, listing.Objects[0].LastModified)
}

func TestShouldReportMissingBucket(t *testing.T) {
	st := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, http.StatusNotFound, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchBucket</Code><Message>The specified bucket does not exist</Message><BucketName>backups</BucketName></Error>`)
	}))

	_, err := st.ListObject(context.Background(), "backups", false)

	assert.ErrorIs(t, err, expire.ErrBucketNotFound)
}

func TestShouldDeleteObjectByKey(t *testing.T) {
	var gotMethod, gotPath string
	st := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	err := st.DeleteObject(context.Background(), "backups", "daily/a.tar.gz")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/backups/daily/a.tar.gz", gotPath)
}

func TestShouldPropagateDeleteFailure(t *testing.T) {
	st := testStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, http.StatusForbidden, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
	}))

	err := st.DeleteObject(context.Background(), "backups", "a.tar.gz")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.tar.gz")
	assert.NotErrorIs(t, err, expire.ErrBucketNotFound)
}

func isolateSharedConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
}

func TestShouldPreferExplicitRegion(t *testing.T) {
	isolateSharedConfig(t)
	t.Setenv("AWS_REGION", "ap-south-1")

	acfg, err := LoadConfig(context.Background(), Config{Region: "eu-central-1"})

	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", acfg.Region)
}

func TestShouldUseDefaultProviderRegion(t *testing.T) {
	isolateSharedConfig(t)
	t.Setenv("AWS_REGION", "ap-south-1")

	acfg, err := LoadConfig(context.Background(), Config{})

	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", acfg.Region)
}

func TestShouldFallBackToDefaultRegion(t *testing.T) {
	isolateSharedConfig(t)

	acfg, err := LoadConfig(context.Background(), Config{})

	require.NoError(t, err)
	assert.Equal(t, DefaultRegion, acfg.Region)
}

func TestShouldUseStaticCredentialsWhenComplete(t *testing.T) {
	isolateSharedConfig(t)
	creds := config.AWSCredentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret"}

	acfg, err := LoadConfig(context.Background(), Config{Region: "eu-central-1", Credentials: creds})
	require.NoError(t, err)
	value, err := acfg.Credentials.Retrieve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "AKIDEXAMPLE", value.AccessKeyID)
	assert.Equal(t, "secret", value.SecretAccessKey)
}

func TestShouldBuildStoreWithResolvedRegion(t *testing.T) {
	isolateSharedConfig(t)

	st, err := NewStore(context.Background(), Config{Endpoint: "http://localhost:9000", PathStyle: true})

	require.NoError(t, err)
	assert.Equal(t, DefaultRegion, st.Region())
}
