package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 30*time.Second, 45*time.Second, zap.NewNop())
}

func TestBearerHeaderAttachedWhenTokenHeld(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Get("/dishes", func(w http.ResponseWriter, req *http.Request) {
		got = req.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	c := newTestClient(t, r)
	c.SetToken("tok-123")
	if _, err := c.Dishes(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", got)
	}
}

func TestValidationErrorUsesFirstFieldMessage(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/dishes", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":[{"loc":["body","price"],"msg":"Price must be greater than 0","type":"value_error"},{"msg":"second"}]}`))
	})

	c := newTestClient(t, r)
	_, err := c.CreateDish(context.Background(), DishCreate{Name: "Soup", Price: -1})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Msg != "Price must be greater than 0" {
		t.Fatalf("expected first field message, got %q", vErr.Msg)
	}
}

func TestValidationErrorFallsBackWhenDetailMissing(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/dishes", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{}`))
	})

	c := newTestClient(t, r)
	_, err := c.CreateDish(context.Background(), DishCreate{})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Msg != genericValidationMsg {
		t.Fatalf("expected generic fallback, got %q", vErr.Msg)
	}
}

func TestUnauthorizedWithTokenExpiresSession(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/orders", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid token"}`))
	})

	c := newTestClient(t, r)
	c.SetToken("stale")
	expired := false
	c.OnSessionExpired(func() { expired = true })

	_, err := c.Orders(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if !expired {
		t.Fatalf("expected expiry hook to fire")
	}
	if c.Token() != "" {
		t.Fatalf("expected token to be cleared")
	}
}

func TestUnauthorizedLoginIsBadCredentialsNotExpiry(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect username or password"}`))
	})

	c := newTestClient(t, r)
	expired := false
	c.OnSessionExpired(func() { expired = true })

	_, err := c.Login(context.Background(), "waiter", "wrong")
	if errors.Is(err, ErrSessionExpired) {
		t.Fatalf("login rejection must not be classified as expiry")
	}
	var sErr *StatusError
	if !errors.As(err, &sErr) || sErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
	if sErr.Msg != "Incorrect username or password" {
		t.Fatalf("expected bad-credentials detail, got %q", sErr.Msg)
	}
	if expired {
		t.Fatalf("expiry hook must not fire on a login rejection")
	}
}

func TestBadCredentialsWhileTokenHeldKeepsSession(t *testing.T) {
	// Re-login with wrong credentials while signed in: the 401 carries
	// the bad-credentials detail and must not kill the held session.
	r := chi.NewRouter()
	r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect username or password"}`))
	})

	c := newTestClient(t, r)
	c.SetToken("still-valid")

	_, err := c.Login(context.Background(), "waiter", "typo")
	if errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected bad-credentials error, got expiry")
	}
	if c.Token() != "still-valid" {
		t.Fatalf("held token must survive a rejected login")
	}
}

func TestGenericErrorExtractsDetail(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{
			name:     "detail string",
			status:   http.StatusBadRequest,
			body:     `{"detail":"Table is not available"}`,
			expected: "Table is not available",
		},
		{
			name:     "message field",
			status:   http.StatusForbidden,
			body:     `{"message":"Only administrators can delete orders"}`,
			expected: "Only administrators can delete orders",
		},
		{
			name:     "unparseable body falls back to raw text",
			status:   http.StatusBadGateway,
			body:     "upstream exploded",
			expected: "upstream exploded",
		},
		{
			name:     "empty body falls back to status",
			status:   http.StatusInternalServerError,
			body:     "",
			expected: "HTTP error 500",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Get("/orders", func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			c := newTestClient(t, r)
			_, err := c.Orders(context.Background())

			var sErr *StatusError
			if !errors.As(err, &sErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if sErr.Status != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, sErr.Status)
			}
			if sErr.Error() != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, sErr.Error())
			}
		})
	}
}

func TestDeleteShortCircuitsWithoutDecoding(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/orders/{id}", func(w http.ResponseWriter, req *http.Request) {
		// Not JSON: a decode attempt would fail.
		w.Write([]byte("order removed"))
	})

	c := newTestClient(t, r)
	if err := c.DeleteOrder(context.Background(), 9); err != nil {
		t.Fatalf("expected bare success for DELETE, got %v", err)
	}
}

func TestTimeoutIsDistinctAndUnknownOutcome(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/orders", func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c := New(srv.URL, 20*time.Millisecond, 30*time.Millisecond, zap.NewNop())

	_, err := c.Orders(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestDestructiveCallsGetExtendedBound(t *testing.T) {
	r := chi.NewRouter()
	slow := func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(80 * time.Millisecond)
		w.Write([]byte(`{"message":"done"}`))
	}
	r.Delete("/me", slow)
	r.Get("/orders", func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(80 * time.Millisecond)
		w.Write([]byte(`[]`))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c := New(srv.URL, 30*time.Millisecond, 300*time.Millisecond, zap.NewNop())
	c.SetToken("tok")

	if _, err := c.Orders(context.Background()); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected the default bound to trip, got %v", err)
	}
	if err := c.DeleteMe(context.Background()); err != nil {
		t.Fatalf("expected the extended bound to cover the deletion, got %v", err)
	}
}

func TestSuccessDecodesBody(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/orders/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":4,"code":"B-4","table_number":2,"status":"preparing","waiter_id":1,"waiter_name":"ann","items":[{"dish_id":1,"quantity":2,"dish_name":"Margherita","dish_price":9.5}],"created_at":"2026-09-01T10:00:00"}`))
	})

	c := newTestClient(t, r)
	order, err := c.Order(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Label() != "B-4" {
		t.Fatalf("expected label B-4, got %q", order.Label())
	}
	if order.Status != StatusPreparing || len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order: %+v", order)
	}
}
