package deeplink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver() *Resolver {
	return NewResolver(Rules{
		Scheme:      "lacos",
		Hosts:       []string{"lacosapp.com", "lacos.com", "gateway.lacosapp.com", "localhost"},
		DevPrefixes: []string{"exp://", "exps://", "exp+"},
	})
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		code string
		ok   bool
	}{
		{"group path", "https://lacosapp.com/grupo/ABC123", "ABC123", true},
		{"join query", "https://lacosapp.com/join?code=XYZ789", "XYZ789", true},
		{"host not allowed", "https://not-allowed.example/grupo/ABC123", "", false},
		{"lookalike host", "https://evil-lacosapp.com/grupo/ABC123", "", false},
		{"subdomain", "https://www.lacosapp.com/join/abc123", "ABC123", true},
		{"uppercase host", "HTTPS://LACOSAPP.COM/grupo/ab12cd", "AB12CD", true},
		{"localhost dev server", "http://localhost:8081/grupo/QWE123", "QWE123", true},
		{"path beats query", "https://lacos.com/grupo/AAA111?code=BBB222", "AAA111", true},
		{"query must be alphanumeric", "https://lacos.com/join?code=AB-12", "", false},
		{"custom scheme query", "lacos://join?code=Z9Z9Z9", "Z9Z9Z9", true},
		{"custom scheme group", "lacos://grupo/ABC123", "ABC123", true},
		{"custom scheme triple slash", "lacos:///join/HELLO1", "HELLO1", true},
		{"custom scheme bare", "lacos://ABC123", "ABC123", true},
		{"bare path", "https://lacosapp.com/ABC123XYZ", "ABC123XYZ", true},
		{"bare path word", "https://lacosapp.com/groups", "GROUPS", true},
		{"bare path word custom scheme", "lacos://welcome", "WELCOME", true},
		{"bare path two segments", "https://lacosapp.com/app/groups", "", false},
		{"bare path too short", "https://lacosapp.com/ABC12", "", false},
		{"bare path too long", "https://lacosapp.com/" + strings.Repeat("A", 21), "", false},
		{"no code", "https://lacosapp.com/", "", false},
		{"dev transport", "exp://192.168.0.10:8081/--/grupo/ABC123", "", false},
		{"dev transport secure", "exps://u.expo.dev/--/join?code=ABC123", "", false},
		{"dev transport prefixed scheme", "exp+lacos://grupo/ABC123", "", false},
		{"dev transport mixed case", "EXP://host/grupo/ABC123", "", false},
		{"other scheme", "ftp://lacosapp.com/grupo/ABC123", "", false},
		{"malformed", "https://lacosapp.com/%zz", "", false},
		{"control characters", "https://lacos\x7f.com/grupo/ABC123", "", false},
		{"empty", "   ", "", false},
	}

	r := testResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := r.Resolve(tt.uri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.code, code)

			again, okAgain := r.Resolve(tt.uri)
			assert.Equal(t, code, again)
			assert.Equal(t, ok, okAgain)
		})
	}
}

func TestResolveIsSafeForConcurrentUse(t *testing.T) {
	r := testResolver()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, ok := r.Resolve("https://lacosapp.com/grupo/ABC123")
			assert.True(t, ok)
			assert.Equal(t, "ABC123", code)
		}()
	}
	wg.Wait()
}

func TestChannelSource(t *testing.T) {
	src := NewChannelSource("lacos://join?code=AAA111")

	uri, ok := src.Initial(context.Background())
	require.True(t, ok)
	assert.Equal(t, "lacos://join?code=AAA111", uri)
	_, ok = src.Initial(context.Background())
	assert.False(t, ok)

	var got []string
	unsubscribe := src.Subscribe(func(uri string) { got = append(got, uri) })
	assert.Equal(t, 1, src.Deliver("one"))
	unsubscribe()
	assert.Equal(t, 0, src.Deliver("two"))
	assert.Equal(t, []string{"one"}, got)
	assert.Equal(t, 0, src.Subscribers())
}

func TestHTTPSource(t *testing.T) {
	src := NewHTTPSource("", func() any { return map[string]string{"state": "anonymous"} }, nil)
	srv := httptest.NewServer(src)
	t.Cleanup(srv.Close)

	var mu sync.Mutex
	var got []string
	unsubscribe := src.Subscribe(func(uri string) {
		mu.Lock()
		got = append(got, uri)
		mu.Unlock()
	})
	defer unsubscribe()

	resp, err := http.Post(srv.URL+"/deeplinks", "application/json", strings.NewReader(`{"uri":"https://lacosapp.com/grupo/ABC123"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/open?uri=" + url.QueryEscape("lacos://join?code=Z9Z9Z9"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/open")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/deeplinks")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"https://lacosapp.com/grupo/ABC123", "lacos://join?code=Z9Z9Z9"}, got)
}
