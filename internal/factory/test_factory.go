package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/lanova-arcade/internal/api/sse"
	"github.com/mcoot/lanova-arcade/internal/dependencies/mocks"
	"github.com/mcoot/lanova-arcade/internal/dependencies/random"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/notify"
	"github.com/mcoot/lanova-arcade/internal/services/auth"
	"github.com/mcoot/lanova-arcade/internal/services/ledger"
	"github.com/mcoot/lanova-arcade/internal/services/modes"
	"github.com/mcoot/lanova-arcade/internal/storage/memory"
)

// TestSecret signs tokens in test apps
const TestSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	// In-process ledger and a recorder of every published event
	MemoryLedger *ledger.MemoryClient
	Events       *notify.MemoryPublisher
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Session ids come from MockRandom; boards come from a fixed seed.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	memLedger := ledger.NewMemoryClient(mockClock, ledger.DefaultDailyCap)
	events := notify.NewMemoryPublisher()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	hubManager := sse.NewHubManager(mockClock, logger)

	authCfg := auth.DefaultConfig()
	authCfg.Secret = TestSecret

	app := newWithDependencies(dependencies{
		store:        store,
		settlements:  store,
		clock:        mockClock,
		random:       mockRandom,
		engineRandom: random.NewSeeded(42),
		ledger:       memLedger,
		publisher:    notify.Fanout{events, sse.NewBroadcaster(hubManager, logger)},
		hubManager:   hubManager,
		modes:        modes.Default(),
		authConfig:   authCfg,
		logger:       logger,
	})

	return &TestApp{
		App:          app,
		MockClock:    mockClock,
		MockRandom:   mockRandom,
		MemoryLedger: memLedger,
		Events:       events,
	}
}

// Token mints a bearer token for a player id
func (t *TestApp) Token(playerID string) string {
	token, _, err := t.AuthService.Issue(model.Player{ID: model.PlayerID(playerID), Role: "user"})
	if err != nil {
		panic(err)
	}
	return token
}
