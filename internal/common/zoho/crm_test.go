package zoho

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Leads", r.URL.Path)
		assert.Equal(t, "Zoho-oauthtoken tok", r.Header.Get("Authorization"))

		var body struct {
			Data []Lead `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, "a@b.com", body.Data[0].Email)
		assert.Equal(t, "Alex", body.Data[0].LastName)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":[{"code":"SUCCESS","details":{"id":"555"},"message":"record added","status":"success"}]}`))
	}))
	defer srv.Close()

	c := NewCRMClient(srv.URL, "tok", time.Second)
	id, err := c.CreateLead(context.Background(), &Lead{Email: "a@b.com", LastName: "Alex"})
	require.NoError(t, err)
	assert.Equal(t, "555", id)
}

func TestCreateLead_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"rejected record", http.StatusOK, `{"data":[{"code":"MANDATORY_NOT_FOUND","message":"required field not found","status":"error"}]}`, "required field not found"},
		{"empty data", http.StatusOK, `{"data":[]}`, "no data"},
		{"unauthorized", http.StatusUnauthorized, `{"code":"INVALID_TOKEN"}`, "401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewCRMClient(srv.URL, "tok", time.Second).CreateLead(context.Background(), &Lead{LastName: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
