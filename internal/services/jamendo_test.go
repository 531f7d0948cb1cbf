package services_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/outofbits/ccatalog/internal/services"
	"github.com/outofbits/ccatalog/internal/shared"
	tu "github.com/outofbits/ccatalog/internal/testing"
)

func newTestService(t *testing.T, baseURL string) *services.JamendoService {
	t.Helper()

	srv, err := services.NewJamendoService(shared.CatalogConfig{
		BaseURL:   baseURL,
		ClientID:  "test_client_id",
		RateLimit: 1000,
	}, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return srv
}

func TestJamendoService(t *testing.T) {
	t.Run("MissingClientID", func(t *testing.T) {
		_, err := services.NewJamendoService(shared.CatalogConfig{}, nil)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("InjectsCredentialsAndFormat", func(t *testing.T) {
		var got url.Values
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.URL.Query()
			fmt.Fprint(w, `{"headers": {"status": "success", "code": 0, "results_count": 0}, "results": []}`)
		}))
		defer server.Close()

		srv := newTestService(t, server.URL)

		params := url.Values{}
		params.Set("limit", "all")
		params.Set("format", "xml")

		if _, err := srv.Call(context.Background(), "artists", params); err != nil {
			t.Fatalf("call failed: %v", err)
		}

		if got.Get("client_id") != "test_client_id" {
			t.Errorf("expected injected client_id, got %q", got.Get("client_id"))
		}
		if got.Get("format") != "json" {
			t.Errorf("caller must not override format, got %q", got.Get("format"))
		}
		if got.Get("limit") != "all" {
			t.Errorf("expected caller param limit=all, got %q", got.Get("limit"))
		}
	})

	t.Run("DoesNotMutateCallerParams", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"headers": {"status": "success", "code": 0, "results_count": 0}, "results": []}`)
		}))
		defer server.Close()

		srv := newTestService(t, server.URL)

		params := url.Values{}
		params.Set("limit", "all")

		if _, err := srv.Call(context.Background(), "artists", params); err != nil {
			t.Fatalf("call failed: %v", err)
		}

		if params.Get("client_id") != "" {
			t.Error("caller params must not gain credentials")
		}
		if params.Get("format") != "" {
			t.Error("caller params must not gain format flag")
		}
	})

	t.Run("FailedStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"headers": {"status": "failed", "code": 5, "error_message": "Your credential is not authorized."}, "results": []}`)
		}))
		defer server.Close()

		srv := newTestService(t, server.URL)

		_, err := srv.Call(context.Background(), "artists", nil)
		if !errors.Is(err, shared.ErrRemoteCall) {
			t.Errorf("expected ErrRemoteCall, got %v", err)
		}
	})

	t.Run("CorruptedEnvelope", func(t *testing.T) {
		t.Run("Malformed JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"headers": `)
			}))
			defer server.Close()

			srv := newTestService(t, server.URL)

			_, err := srv.Call(context.Background(), "artists", nil)
			if !errors.Is(err, shared.ErrProtocol) {
				t.Errorf("expected ErrProtocol, got %v", err)
			}
		})

		t.Run("Missing Headers", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"results": []}`)
			}))
			defer server.Close()

			srv := newTestService(t, server.URL)

			_, err := srv.Call(context.Background(), "artists", nil)
			if !errors.Is(err, shared.ErrProtocol) {
				t.Errorf("expected ErrProtocol, got %v", err)
			}
		})

		// A successful header block without a results array must not read
		// as a final empty page, or an exhaustive harvest would silently
		// stop short and still be recorded as finished.
		t.Run("Missing Results", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"headers": {"status": "success", "results_count": 3}}`)
			}))
			defer server.Close()

			srv := newTestService(t, server.URL)

			_, err := srv.Call(context.Background(), "artists", nil)
			if !errors.Is(err, shared.ErrProtocol) {
				t.Errorf("expected ErrProtocol, got %v", err)
			}
		})

		t.Run("Missing Status Header", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"headers": {"code": 0}, "results": []}`)
			}))
			defer server.Close()

			srv := newTestService(t, server.URL)

			_, err := srv.Call(context.Background(), "artists", nil)
			if !errors.Is(err, shared.ErrProtocol) {
				t.Errorf("expected ErrProtocol, got %v", err)
			}
		})

		t.Run("Unreadable Body", func(t *testing.T) {
			srv := newTestService(t, "http://jamendo.invalid")
			srv.SetHTTPClient(&http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
				}, nil),
			})

			_, err := srv.Call(context.Background(), "artists", nil)
			if !errors.Is(err, shared.ErrProtocol) {
				t.Errorf("expected ErrProtocol, got %v", err)
			}
		})
	})

	t.Run("TransportFailure", func(t *testing.T) {
		srv := newTestService(t, "http://jamendo.invalid")
		srv.SetHTTPClient(&http.Client{
			Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused")),
		})

		_, err := srv.Call(context.Background(), "artists", nil)
		if !errors.Is(err, shared.ErrRemoteCall) {
			t.Errorf("expected ErrRemoteCall, got %v", err)
		}
	})

	t.Run("HTTPError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		srv := newTestService(t, server.URL)

		_, err := srv.Call(context.Background(), "artists", nil)
		if !errors.Is(err, shared.ErrRemoteCall) {
			t.Errorf("expected ErrRemoteCall, got %v", err)
		}
	})
}
