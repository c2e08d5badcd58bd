// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym-fulfillment/internal/api"
	"gym-fulfillment/internal/common/config"
	"gym-fulfillment/internal/common/logger"
	"gym-fulfillment/internal/fulfillment/dispatch"
	"gym-fulfillment/internal/fulfillment/pricing"
	"gym-fulfillment/internal/fulfillment/quotes"
	"gym-fulfillment/internal/models"
	"gym-fulfillment/internal/notify"
	"gym-fulfillment/internal/store"
	"gym-fulfillment/pkg/seed"
)

// TestEnvironment is the whole service wired the way the server binary wires
// it, on the memory store seeded from configs/seed.yaml.
type TestEnvironment struct {
	Config *config.Config
	Memory *store.Memory
	Server *api.Server
	Sales  *recordingSink
}

type recordingSink struct {
	mu    sync.Mutex
	leads []models.QuoteLead
}

func (s *recordingSink) Channel() string { return notify.ChannelEvent }

func (s *recordingSink) Notify(ctx context.Context, lead models.QuoteLead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = append(s.leads, lead)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}

func setupEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	seedPath, err := filepath.Abs(filepath.Join("..", "..", "configs", "seed.yaml"))
	require.NoError(t, err)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
app:
  name: gym-fulfillment-e2e
  version: e2e
  timezone: Europe/London
http:
  request_timeout: 5000
  rate_limit: 1000
  rate_burst: 1000
store:
  driver: memory
  seed_path: `+seedPath+`
breaker:
  enabled: true
  max_requests: 1
  interval: 60000
  timeout: 30000
  min_requests: 5
  failure_threshold: 0.6
`), 0o600))

	cfg, err := config.LoadFromFile(cfgPath)
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	ctx := context.Background()

	backend, closeStore, err := store.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeStore() })

	f, err := seed.LoadFile(cfg.Store.SeedPath)
	require.NoError(t, err)
	_, err = seed.Apply(ctx, backend, f)
	require.NoError(t, err)

	documents := store.Decorate(backend, cfg, nil, log)
	sales := &recordingSink{}
	notifier := notify.NewMulti(time.Second, log, sales)

	router := dispatch.NewRouter(
		dispatch.SettingsFromConfig(cfg),
		pricing.NewAccessor(documents, cfg.Store.GymsCollection, log),
		quotes.NewRepository(documents, cfg.Store.QuoteCollection, notifier, log),
		nil,
		log,
	).WithClock(func() time.Time { return time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC) })

	mem, ok := backend.(*store.Memory)
	require.True(t, ok)

	return &TestEnvironment{
		Config: cfg,
		Memory: mem,
		Server: api.NewServer(cfg, router, documents, log),
		Sales:  sales,
	}
}

func (env *TestEnvironment) post(t *testing.T, body string) models.WebhookResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.Server.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out models.WebhookResponse
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func texts(resp models.WebhookResponse) []string {
	var out []string
	for _, m := range resp.FulfillmentResponse.Messages {
		if m.Text != nil {
			out = append(out, m.Text.Text...)
		}
	}
	return out
}

func chips(resp models.WebhookResponse) []string {
	var out []string
	for _, m := range resp.FulfillmentResponse.Messages {
		if m.Payload == nil {
			continue
		}
		for _, row := range m.Payload.RichContent {
			for _, item := range row {
				if item.Type != models.RichContentChips {
					continue
				}
				for _, o := range item.Options {
					out = append(out, o.Text)
				}
			}
		}
	}
	return out
}

func intentBody(intent string) string {
	return `{"intentInfo":{"displayName":"` + intent + `"}}`
}

func TestCompleteUserJourney(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping complete user journey test in short mode")
	}
	env := setupEnvironment(t)

	t.Run("membership overview", func(t *testing.T) {
		resp := env.post(t, intentBody(dispatch.IntentPricingMembership))
		require.Len(t, texts(resp), 1)
		assert.True(t, strings.HasPrefix(texts(resp)[0], "Membership & Pricing"))
		assert.Equal(t, []string{dispatch.ChipViewPricing, dispatch.ChipGetQuote}, chips(resp))
	})

	t.Run("pricing details", func(t *testing.T) {
		resp := env.post(t, intentBody(dispatch.IntentViewPricing))
		require.Len(t, texts(resp), 1)
		text := texts(resp)[0]
		assert.Contains(t, text, "Pricing Details for Covent Garden")
		assert.Contains(t, text, "1. 12-Month Commitment Plan")
		assert.Contains(t, text, "2. 1-Month Rolling Plan")
		assert.Equal(t, []string{dispatch.ChipGetQuote, dispatch.ChipJoinNow}, chips(resp))
	})

	t.Run("join now", func(t *testing.T) {
		resp := env.post(t, intentBody(dispatch.IntentJoinNow))
		require.NotEmpty(t, texts(resp))
		text := texts(resp)[0]
		assert.Contains(t, text, "14 June")
		assert.Contains(t, text, "Starting 1st July 2025")
		assert.Contains(t, text, "To pay today: £60.85")
	})

	t.Run("quote prompt", func(t *testing.T) {
		resp := env.post(t, intentBody(dispatch.IntentGetQuote))
		require.Len(t, texts(resp), 1)
		assert.Contains(t, texts(resp)[0], "personalized quote")
		assert.Equal(t, 0, env.Memory.Count(env.Config.Store.QuoteCollection))
	})

	t.Run("quote submission", func(t *testing.T) {
		resp := env.post(t, `{"intentInfo":{"displayName":"SubmitQuoteFormIntent"},
			"sessionInfo":{"parameters":{"name":{"original":"Alex Morgan"},"email_address":"alex@example.com","contact_time":{"hours":14,"minutes":30}}}}`)
		require.Len(t, texts(resp), 1)
		assert.Contains(t, texts(resp)[0], "Alex Morgan")
		assert.Contains(t, texts(resp)[0], "14:30")

		require.Equal(t, 1, env.Memory.Count(env.Config.Store.QuoteCollection))
		for _, doc := range env.Memory.All(env.Config.Store.QuoteCollection) {
			assert.Equal(t, "Alex Morgan", doc["name"])
			assert.Equal(t, "alex@example.com", doc["email"])
			assert.Equal(t, "14:30", doc["contact_time"])
		}
		assert.Equal(t, 1, env.Sales.count())
	})
}

func TestUnknownAndMalformedRequests(t *testing.T) {
	env := setupEnvironment(t)
	const fallback = "I'm sorry, I didn't understand that. Could you please rephrase?"

	for _, body := range []string{
		intentBody("SmallTalkIntent"),
		`{}`,
		`{"intentInfo":`,
	} {
		resp := env.post(t, body)
		assert.Equal(t, []string{fallback}, texts(resp), body)
	}
	assert.Equal(t, 0, env.Memory.Count(env.Config.Store.QuoteCollection))
}

func TestHealthAndReadiness(t *testing.T) {
	env := setupEnvironment(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := env.Server.App().Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		resp.Body.Close()
	}
}
