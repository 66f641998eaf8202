package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIRefresher(t *testing.T) {
	testCases := []struct {
		name      string
		status    int
		body      string
		want      bool
		expectErr bool
	}{
		{
			name:   "Non-null session means success",
			status: http.StatusOK,
			body:   `{"session":{"access_token":"tok","expires_at":1700000000}}`,
			want:   true,
		},
		{
			name:   "Null session means failure",
			status: http.StatusOK,
			body:   `{"session":null,"error":"refresh_token_expired"}`,
			want:   false,
		},
		{
			name:   "Error payload without session",
			status: http.StatusUnauthorized,
			body:   `{"error":"invalid_grant"}`,
			want:   false,
		},
		{
			name:      "Malformed response",
			status:    http.StatusOK,
			body:      `not json`,
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("Expected POST, got %s", r.Method)
				}
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			r := NewAPIRefresher(srv.Client(), srv.URL)
			ok, err := r.Refresh(context.Background())

			if tc.expectErr {
				if err == nil {
					t.Fatal("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if ok != tc.want {
				t.Errorf("Expected %v, got %v", tc.want, ok)
			}
		})
	}
}
