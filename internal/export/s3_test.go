package export

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves the handful of path-style S3 calls the vault makes.
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

type listBucketResult struct {
	XMLName     xml.Name `xml:"ListBucketResult"`
	Name        string   `xml:"Name"`
	KeyCount    int      `xml:"KeyCount"`
	IsTruncated bool     `xml:"IsTruncated"`
	Contents    []struct {
		Key  string `xml:"Key"`
		Size int    `xml:"Size"`
	} `xml:"Contents"`
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if bucket != f.bucket {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `<Error><Code>NoSuchBucket</Code></Error>`)
		return
	}

	switch {
	case r.Method == http.MethodHead && key == "":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && key == "":
		prefix := r.URL.Query().Get("prefix")
		var res listBucketResult
		res.Name = f.bucket
		keys := make([]string, 0, len(f.objects))
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			res.Contents = append(res.Contents, struct {
				Key  string `xml:"Key"`
				Size int    `xml:"Size"`
			}{Key: k, Size: len(f.objects[k])})
		}
		res.KeyCount = len(keys)
		w.Header().Set("Content-Type", "application/xml")
		xml.NewEncoder(w).Encode(res)
	case r.Method == http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newS3Fixture(t *testing.T, prefix string) (*S3Vault, *fakeS3) {
	t.Helper()
	fake := &fakeS3{bucket: "diagrams", objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	v, err := NewS3Vault(t.Context(), "s3", S3Options{
		Bucket:          "diagrams",
		Prefix:          prefix,
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err)
	return v, fake
}

func TestS3Vault_RoundTrip(t *testing.T) {
	v, fake := newS3Fixture(t, "team-a/")
	require.NoError(t, v.ValidateSetup())

	body := "digraph G {}"
	require.NoError(t, v.Put("diagram-1.dot", strings.NewReader(body), int64(len(body))))
	fake.mu.Lock()
	assert.Contains(t, fake.objects, "team-a/diagram-1.dot")
	fake.mu.Unlock()

	var buf bytes.Buffer
	require.NoError(t, v.Get("diagram-1.dot", &buf))
	assert.Equal(t, body, buf.String())

	require.NoError(t, v.Put("a.json", strings.NewReader("{}"), 2))
	fake.mu.Lock()
	fake.objects["other/skip.json"] = []byte("{}")
	fake.objects["team-a/nested/deep.json"] = []byte("{}")
	fake.mu.Unlock()

	names, err := v.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "diagram-1.dot"}, names)
}

func TestS3Vault_Errors(t *testing.T) {
	v, _ := newS3Fixture(t, "")

	err := v.Get("missing.json", &bytes.Buffer{})
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	err = v.Put("short.json", strings.NewReader("{}"), 10)
	assert.ErrorContains(t, err, "size mismatch")

	assert.Error(t, v.Put("../escape", strings.NewReader("{}"), 2))

	other, err := NewS3Vault(t.Context(), "s3", S3Options{
		Bucket: "nope", Region: "us-east-1", Endpoint: fakeURL(t, v), AccessKeyID: "test", SecretAccessKey: "test",
	})
	require.NoError(t, err)
	assert.Error(t, other.ValidateSetup())
}

func fakeURL(t *testing.T, v *S3Vault) string {
	t.Helper()
	endpoint := v.client.Options().BaseEndpoint
	require.NotNil(t, endpoint)
	return *endpoint
}
