package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetchJSONPrettyPrinted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"owner":"JOHN","model":"SWIFT"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/my.php?vehicle=", time.Second)
	res := c.Fetch(context.Background(), "KL70C1679")

	require.True(t, res.OK)
	assert.Equal(t, "{\n  \"owner\": \"JOHN\",\n  \"model\": \"SWIFT\"\n}", res.Payload)
	assert.Equal(t, res.Payload, res.Display())
}

func TestClientFetchPlainTextPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Owner: JOHN\nModel: SWIFT"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/my.php?vehicle=", time.Second)
	res := c.Fetch(context.Background(), "KL70C1679")

	require.True(t, res.OK)
	assert.Equal(t, "Owner: JOHN\nModel: SWIFT", res.Payload)
}

func TestClientFetchMalformedJSONFallsBackToRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/my.php?vehicle=", time.Second)
	res := c.Fetch(context.Background(), "KL70C1679")

	require.True(t, res.OK)
	assert.Equal(t, "not json at all", res.Payload)
}

func TestClientFetchNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/my.php?vehicle=", time.Second)
	res := c.Fetch(context.Background(), "KL70C1679")

	require.False(t, res.OK)
	assert.Contains(t, res.Reason, "502")
	assert.Contains(t, res.Display(), "❌ Error fetching vehicle data: ")
}

func TestClientFetchUnreachableHostIsFailure(t *testing.T) {
	c := NewClient("http://127.0.0.1:1/my.php?vehicle=", 200*time.Millisecond)
	res := c.Fetch(context.Background(), "KL70C1679")

	require.False(t, res.OK)
	assert.NotEmpty(t, res.Reason)
}

func TestClientFetchEncodesVehicle(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("vehicle")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/my.php?vehicle=", time.Second)
	res := c.Fetch(context.Background(), "KL 70/C&1679")

	require.True(t, res.OK)
	assert.Equal(t, "KL 70/C&1679", gotQuery)
}
