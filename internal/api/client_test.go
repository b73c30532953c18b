package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/boss/internal/errors"
	"github.com/felixgeelhaar/boss/internal/notify"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *notify.Recorder) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	rec := &notify.Recorder{}
	opts = append([]Option{WithNotifier(rec)}, opts...)
	return New(Config{BaseURL: server.URL, MaxRetries: 1}, opts...), rec
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginSendsForm(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "admin@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "secret1", r.PostForm.Get("password"))

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": "tok-123",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}, WithTokenSource(StaticToken("stale")))

	token, err := client.Login(context.Background(), LoginRequest{Email: "admin@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token.AccessToken)
	assert.Equal(t, 3600, token.ExpiresIn)
}

func TestLoginInvalidCredentials(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
	})

	fired := 0
	client.OnUnauthorized(func(error) { fired++ })

	_, err := client.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "wrongpw"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindUnauthorized))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidCredentials))
	assert.Equal(t, 0, fired, "a rejected login must not trigger session teardown")
	assert.Empty(t, rec.Toasts())
}

func TestLoginMissingAccessToken(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"token_type": "bearer"})
	})

	_, err := client.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDecode))
}

func TestBearerHeader(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		expect string
	}{
		{name: "with token", token: "abc", expect: "Bearer abc"},
		{name: "without token", token: "", expect: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			var requestID string
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				requestID = r.Header.Get("X-Request-ID")
				assert.Equal(t, "application/json", r.Header.Get("Accept"))
				writeJSON(w, http.StatusOK, User{ID: 1, Email: "admin@example.com"})
			}, WithTokenSource(StaticToken(tt.token)))

			_, err := client.Me(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
			assert.Len(t, requestID, 36)
		})
	}
}

func TestSetTokenSource(t *testing.T) {
	var got string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, User{ID: 1})
	})

	client.SetTokenSource(StaticToken("fresh"))
	_, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh", got)

	client.SetTokenSource(nil)
	_, err = client.Me(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnauthorizedFiresObservers(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
	}, WithTokenSource(StaticToken("expired")))

	var order []string
	client.OnUnauthorized(func(err error) {
		assert.True(t, errors.Is(err, errors.KindUnauthorized))
		order = append(order, "first")
	})
	remove := client.OnUnauthorized(func(error) { order = append(order, "second") })

	_, err := client.Me(context.Background())
	order = append(order, "returned")

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionExpired))
	assert.Equal(t, []string{"first", "second", "returned"}, order)
	assert.Empty(t, rec.Toasts(), "unauthorized is handled by teardown, not a toast")

	remove()
	order = nil
	_, err = client.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"first"}, order)
}

func TestServerErrorRetriesGetAndNotifiesOnce(t *testing.T) {
	var hits int32
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
	})

	_, err := client.DashboardStats(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindServer))

	e, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, e.Status)

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Equal(t, 1, rec.Count(notify.LevelError))
	assert.Equal(t, MessageServerError, rec.Toasts()[0].Message)
}

func TestRetrySucceedsWithoutNotification(t *testing.T) {
	var hits int32
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, MemberStats{TotalMembers: 10, ActiveMembers: 7})
	})

	stats, err := client.MemberStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalMembers)
	assert.Empty(t, rec.Toasts())
}

func TestWritesAreNotRetried(t *testing.T) {
	var hits int32
	var body map[string]interface{}
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/members/42", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	status := StatusSuspended
	_, err := client.UpdateMember(context.Background(), 42, MemberUpdate{Status: &status})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindServer))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, 1, rec.Count(notify.LevelError))
	assert.Equal(t, map[string]interface{}{"status": "suspended"}, body)
}

func TestNotFoundNotifies(t *testing.T) {
	var hits int32
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Member not found"})
	})

	_, err := client.GetMember(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "404 is not retried")
	require.Len(t, rec.Toasts(), 1)
	assert.Equal(t, MessageNotFound, rec.Toasts()[0].Message)
}

func TestOfflineNotifies(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	rec := &notify.Recorder{}
	client := New(Config{BaseURL: url, MaxRetries: 1}, WithNotifier(rec))

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindOffline))
	require.Len(t, rec.Toasts(), 1)
	assert.Equal(t, MessageOffline, rec.Toasts()[0].Message)
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    interface{}
		kind    errors.Kind
		message string
	}{
		{
			name:    "validation detail list",
			status:  http.StatusUnprocessableEntity,
			body:    map[string]interface{}{"detail": []map[string]interface{}{{"loc": []string{"body", "email"}, "msg": "value is not a valid email address"}}},
			kind:    errors.KindValidation,
			message: "email: value is not a valid email address",
		},
		{
			name:   "validation detail with index",
			status: http.StatusUnprocessableEntity,
			body: map[string]interface{}{"detail": []map[string]interface{}{
				{"loc": []interface{}{"body", "items", 0, "quantity"}, "msg": "field required"},
				{"loc": []interface{}{"query", "limit"}, "msg": "ensure this value is less than or equal to 100"},
			}},
			kind:    errors.KindValidation,
			message: "items.0.quantity: field required; limit: ensure this value is less than or equal to 100",
		},
		{
			name:    "detail string",
			status:  http.StatusBadRequest,
			body:    map[string]string{"detail": "Member code already exists"},
			kind:    errors.KindRequest,
			message: "Member code already exists",
		},
		{
			name:    "message field",
			status:  http.StatusConflict,
			body:    map[string]string{"message": "conflict"},
			kind:    errors.KindRequest,
			message: "conflict",
		},
		{
			name:    "forbidden without body",
			status:  http.StatusForbidden,
			kind:    errors.KindRequest,
			message: "request failed with status 403",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.body == nil {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, tt.body)
			})

			_, err := client.CreateMember(context.Background(), MemberCreate{MemberCode: "M0001"})
			require.Error(t, err)

			e, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.status, e.Status)
			assert.Equal(t, tt.message, e.Message)
			assert.Empty(t, rec.Toasts())
		})
	}
}

func TestListMembers(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/members/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "20", q.Get("skip"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "tanaka", q.Get("search"))
		assert.Equal(t, "active", q.Get("status"))

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"members": []map[string]interface{}{
				{"id": 1, "member_code": "M0001", "family_name": "Tanaka", "given_name": "Taro", "status": "active"},
			},
			"total": 21,
			"page":  3,
			"size":  10,
		})
	})

	page, err := client.ListMembers(context.Background(), ListMembersParams{
		Skip: 20, Limit: 10, Search: "tanaka", Status: StatusActive,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Tanaka Taro", page.Items[0].FullName())
	assert.Equal(t, 21, page.Total)
	assert.Equal(t, 3, page.Page)
}

func TestListMembersDefaults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "0", q.Get("skip"))
		assert.Equal(t, "20", q.Get("limit"))
		assert.False(t, q.Has("search"))
		assert.False(t, q.Has("status"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"items": []interface{}{}, "total": 0})
	})

	page, err := client.ListMembers(context.Background(), ListMembersParams{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestDeleteMemberNoContent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/members/9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteMember(context.Background(), 9))
}

func TestChartDataPeriod(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/dashboard/chart-data", r.URL.Path)
		assert.Equal(t, PeriodMonthly, r.URL.Query().Get("period"))
		writeJSON(w, http.StatusOK, ChartData{Labels: []string{"Jan"}, Sales: []float64{100}, Members: []int{3}})
	})

	data, err := client.ChartData(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jan"}, data.Labels)
}

func TestContextCanceledIsUnclassified(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, User{})
	})

	fired := false
	client.OnUnauthorized(func(error) { fired = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Me(ctx)
	require.ErrorIs(t, err, context.Canceled)
	_, classified := errors.As(err)
	assert.False(t, classified)
	assert.Empty(t, rec.Toasts())
	assert.False(t, fired)
}

func TestNewDefaults(t *testing.T) {
	client := New(Config{BaseURL: "https://api.example.com/"}, WithUserAgent("boss-test"))

	cfg := client.Config()
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, DefaultPrefix, cfg.Prefix)
	assert.Equal(t, "boss-test", cfg.UserAgent)
	assert.Positive(t, cfg.Timeout)
	assert.Equal(t, "https://api.example.com/api/v1/auth/me", client.Endpoint("/auth/me"))
}

func TestFingerprint(t *testing.T) {
	assert.Empty(t, Fingerprint(""))

	fp := Fingerprint("secret-token")
	assert.Len(t, fp, 12)
	assert.Equal(t, fp, Fingerprint("secret-token"))
	assert.NotEqual(t, fp, Fingerprint("other-token"))
	assert.NotContains(t, fp, "secret")
}

func TestListResponseItemsKey(t *testing.T) {
	var page ListResponse[Member]
	require.NoError(t, json.Unmarshal([]byte(`{"items":[{"id":5}],"total":1}`), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, 5, page.Items[0].ID)
}

func TestMemberUpdateEmpty(t *testing.T) {
	assert.True(t, MemberUpdate{}.Empty())
	email := "x@example.com"
	assert.False(t, MemberUpdate{Email: &email}.Empty())
}

func TestHealthIsUnprefixedAndSilent(t *testing.T) {
	var calls int32
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/health", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		if atomic.LoadInt32(&calls) > 2 {
			writeJSON(w, http.StatusOK, Health{Status: "healthy", Environment: "staging", Version: "1.0.0"})
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithTokenSource(StaticToken("tok")))

	_, err := client.Health(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.KindServer))
	assert.Empty(t, rec.Toasts(), "health failures are not toasted")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "retried like any read")

	h, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "staging", h.Environment)
}
