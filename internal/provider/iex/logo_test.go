package iex_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"stocks/internal/provider"
	"stocks/internal/provider/iex"
)

func TestFetchLogo(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/stable/stock/AAPL/logo", req.URL.Path)
			require.Equal(t, "test-token", req.URL.Query().Get("token"))
			return jsonResponse(http.StatusOK, `{"url":"https://example.com/aapl.png"}`), nil
		}).
		Times(1)

	client, err := iex.NewClient("test-token", iex.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call FetchLogo
	logo, err := client.FetchLogo(t.Context(), "AAPL")

	// Assert: the url field becomes the image URL
	require.NoError(t, err)
	require.Equal(t, provider.Logo{ImageURL: "https://example.com/aapl.png"}, logo)
}

func TestFetchLogo_DecodeErrors(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{}`, `{"url":null}`, `{"url":17}`, `{"link":"https://example.com"}`, `"https://example.com"`, `nope`} {
		client := newQuoteClient(t, http.StatusOK, body)

		_, err := client.FetchLogo(t.Context(), "AAPL")

		var de *provider.DecodeError
		require.Truef(t, errors.As(err, &de), "body %s: expected DecodeError, got %v", body, err)
		require.Equal(t, "logo", de.Op)
	}
}

func TestFetchLogo_ErrUnexpectedStatusCode(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusNotFound, http.StatusUnauthorized, http.StatusBadGateway} {
		client := newQuoteClient(t, status, `{"url":"https://example.com/aapl.png"}`)

		_, err := client.FetchLogo(t.Context(), "AAPL")

		require.Truef(t, provider.IsNetwork(err), "status %d", status)
		require.False(t, provider.IsDecode(err))
	}
}

func TestFetchLogo_ErrInvalidSymbol(t *testing.T) {
	t.Parallel()

	// Arrange: no request may leave the client
	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Times(0)

	client, err := iex.NewClient("test-token", iex.WithHTTPClient(httpClient))
	require.NoError(t, err)

	for _, symbol := range []string{".", "..", "..."} {
		// Act: dot segments would resolve to another endpoint
		_, err := client.FetchLogo(t.Context(), symbol)

		// Assert
		require.Truef(t, provider.IsNetwork(err), "symbol %q", symbol)
		require.ErrorIs(t, err, provider.ErrInvalidSymbol)
	}
}
