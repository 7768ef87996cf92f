package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lanova-arcade/internal/model"
)

type HTTPClientSuite struct {
	suite.Suite
	server   *httptest.Server
	client   *HTTPClient
	handler  http.HandlerFunc
	lastReq  *http.Request
	lastBody map[string]any
}

func TestHTTPClientSuite(t *testing.T) {
	suite.Run(t, new(HTTPClientSuite))
}

func (s *HTTPClientSuite) SetupTest() {
	s.handler = nil
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lastReq = r
		s.lastBody = nil
		_ = json.NewDecoder(r.Body).Decode(&s.lastBody)
		s.handler(w, r)
	}))
	s.client = NewHTTPClient(HTTPConfig{BaseURL: s.server.URL + "/", APIKey: "anon-key", Timeout: time.Second})
}

func (s *HTTPClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *HTTPClientSuite) respond(status int, body string) {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func award() model.AwardRequest {
	return model.AwardRequest{
		IdempotencyKey:  "s1:1",
		PlayerID:        "player-1",
		Game:            model.ModeCandyCrush,
		Score:           1234,
		DurationSeconds: 61,
	}
}

func (s *HTTPClientSuite) TestAwardSuccess() {
	s.respond(http.StatusOK, `{"success":true,"coins_awarded":12,"new_balance":40}`)

	result, err := s.client.AwardCoins(context.Background(), award())
	s.Require().NoError(err)
	s.True(result.Success)
	s.Equal(12, result.CoinsAwarded)
	s.Equal(40, result.NewBalance)

	s.Equal(http.MethodPost, s.lastReq.Method)
	s.Equal("/rest/v1/rpc/award_coins", s.lastReq.URL.Path)
	s.Equal("anon-key", s.lastReq.Header.Get("apikey"))
	s.Equal("Bearer anon-key", s.lastReq.Header.Get("Authorization"))
	s.Equal("s1:1", s.lastReq.Header.Get("Idempotency-Key"))

	s.Equal("player-1", s.lastBody["p_user_id"])
	s.Equal("candy-crush", s.lastBody["p_game_type"])
	s.InDelta(1234, s.lastBody["p_score"], 0)
	s.InDelta(61, s.lastBody["p_duration_seconds"], 0)
}

func (s *HTTPClientSuite) TestAwardRejected() {
	s.respond(http.StatusOK, `{"success":false,"error":"Daily coin limit reached"}`)

	result, err := s.client.AwardCoins(context.Background(), award())
	s.ErrorIs(err, model.ErrLedgerRejected)
	s.Require().NotNil(result)
	s.Equal("Daily coin limit reached", result.Error)
}

func (s *HTTPClientSuite) TestAwardHTTPError() {
	s.respond(http.StatusInternalServerError, `{"message":"boom"}`)

	_, err := s.client.AwardCoins(context.Background(), award())
	s.ErrorIs(err, model.ErrLedgerCallFailed)
	s.NotErrorIs(err, model.ErrLedgerRejected)
}

func (s *HTTPClientSuite) TestAwardMalformedResponse() {
	s.respond(http.StatusOK, `not json`)

	_, err := s.client.AwardCoins(context.Background(), award())
	s.ErrorIs(err, model.ErrLedgerCallFailed)
}

func (s *HTTPClientSuite) TestAwardTransportError() {
	s.respond(http.StatusOK, `{}`)
	s.server.Close()

	_, err := s.client.AwardCoins(context.Background(), award())
	s.ErrorIs(err, model.ErrLedgerCallFailed)
}
