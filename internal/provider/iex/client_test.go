package iex_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"stocks/internal/provider/iex"
)

// jsonResponse builds a response carrying body with the given status.
func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

const appleQuote = `{"companyName":"Apple Inc.","symbol":"AAPL","latestPrice":150.25,"change":-1.5}`

func TestNewClient(t *testing.T) {
	t.Parallel()

	// Assert: a valid token should return a client.
	client, err := iex.NewClient("test")
	require.NoErrorf(t, err, "unexpected error: %v", err)
	require.NotNilf(t, client, "unexpected nil client")
	require.Equal(t, "IEXCloud", client.Name())
}

func TestNewClient_MissingToken(t *testing.T) {
	t.Parallel()

	// Act: create a client without a token.
	client, err := iex.NewClient("")

	// Assert: the token is mandatory.
	require.ErrorIs(t, err, iex.ErrMissingToken)
	require.Nil(t, client)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: the custom client receives exactly one call
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, appleQuote), nil).
		Times(1)

	// Arrange: create a new client with a custom HTTP client.
	client, err := iex.NewClient("test", iex.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call FetchQuote with the custom HTTP client.
	_, err = client.FetchQuote(t.Context(), "AAPL")
	require.NoError(t, err)
}

func TestWithBaseURL(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Arrange: define a base url
	baseURL := "http://localhost:8080/stable"

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Truef(t, strings.HasPrefix(req.URL.String(), baseURL), "expected url to start with base url, received: %s", req.URL.String())
			require.Equal(t, "/stable/stock/AAPL/logo", req.URL.Path)
			return jsonResponse(http.StatusOK, `{"url":"https://example.com/aapl.png"}`), nil
		}).
		Times(1)

	// Arrange: create a new client.
	client, err := iex.NewClient("test", iex.WithHTTPClient(httpClient), iex.WithBaseURL(baseURL+"/"))
	require.NoError(t, err)

	// Act: call FetchLogo with the overridden base URL.
	_, err = client.FetchLogo(t.Context(), "AAPL")
	require.NoError(t, err)
}

func TestWithHeader(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: the custom header and the token are both sent
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "bar", req.Header.Get("foo"))
			require.Equal(t, "application/json", req.Header.Get("Accept"))
			require.Equal(t, "test", req.URL.Query().Get("token"))
			return jsonResponse(http.StatusOK, appleQuote), nil
		}).
		Times(2)

	// Arrange: create a new client with a custom header.
	client, err := iex.NewClient("test", iex.WithHTTPClient(httpClient), iex.WithHeader(http.Header{
		"foo": []string{"bar"},
	}))
	require.NoError(t, err)

	// Act: two calls must not accumulate headers between requests.
	_, err = client.FetchQuote(t.Context(), "AAPL")
	require.NoError(t, err)
	_, err = client.FetchQuote(t.Context(), "AAPL")
	require.NoError(t, err)
}

func TestValidSymbol(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"AAPL", "BRK.B", "BF-B", "goog", "A"} {
		require.Truef(t, iex.ValidSymbol(s), "expected %q to be valid", s)
	}
	for _, s := range []string{"", "AA PL", "A/B", "A?B", "ABCDEFGHIJK", "%2F", ".", "..", "...", ".A", "-A"} {
		require.Falsef(t, iex.ValidSymbol(s), "expected %q to be invalid", s)
	}
}
