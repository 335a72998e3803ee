package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KirkDiggler/dicetray/internal/dice"
	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/KirkDiggler/dicetray/internal/repositories/history"
	"github.com/KirkDiggler/dicetray/internal/services/roller"
	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type HandlerTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	server *httptest.Server
}

func (s *HandlerTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := history.NewRedis(&history.RedisConfig{RedisClient: s.client})
	s.Require().NoError(err)

	svc, err := roller.New(&roller.Config{
		Repository: repo,
		DiceRoller: dice.New(&dice.Config{Seed: 42}),
	})
	s.Require().NoError(err)

	handler, err := New(&Config{Service: svc})
	s.Require().NoError(err)

	s.server = httptest.NewServer(handler.Router())
}

func (s *HandlerTestSuite) TearDownTest() {
	s.server.Close()
	s.client.Close()
	s.mr.Close()
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) do(method, path string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	request, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)

	response, err := http.DefaultClient.Do(request)
	s.Require().NoError(err)
	return response
}

func (s *HandlerTestSuite) decode(response *http.Response, into any) {
	defer response.Body.Close()
	s.Require().NoError(json.NewDecoder(response.Body).Decode(into))
}

func (s *HandlerTestSuite) createUser(name string) string {
	response := s.do(http.MethodPost, "/api/users", &CreateUserRequest{UserName: name})
	s.Require().Equal(http.StatusCreated, response.StatusCode)

	var user UserResponse
	s.decode(response, &user)
	return user.ID
}

func (s *HandlerTestSuite) TestLivez() {
	response := s.do(http.MethodGet, "/livez", nil)
	defer response.Body.Close()
	s.Equal(http.StatusOK, response.StatusCode)
}

func (s *HandlerTestSuite) TestCreateUser() {
	response := s.do(http.MethodPost, "/api/users", &CreateUserRequest{})
	s.Require().Equal(http.StatusCreated, response.StatusCode)

	var user UserResponse
	s.decode(response, &user)
	s.NotEmpty(user.ID)
	s.Equal(models.DefaultUserName, user.UserName)

	response = s.do(http.MethodPost, "/api/users", nil)
	defer response.Body.Close()
	s.Equal(http.StatusBadRequest, response.StatusCode)
}

func (s *HandlerTestSuite) TestRollAndList() {
	userID := s.createUser("Gandalf")

	response := s.do(http.MethodPost, "/api/rolls", &CreateRollRequest{UserID: userID, Sides: 6, Count: 3})
	s.Require().Equal(http.StatusCreated, response.StatusCode)

	var roll models.Roll
	s.decode(response, &roll)
	s.NotEmpty(roll.ID)
	s.Equal("3D6", roll.DiceType)
	s.Len(roll.Results, 3)
	s.Equal(models.Sum(roll.Results), roll.Total)
	s.Equal("Gandalf", roll.UserName)

	response = s.do(http.MethodGet, "/api/rolls", nil)
	s.Require().Equal(http.StatusOK, response.StatusCode)

	var rolls []*models.Roll
	s.decode(response, &rolls)
	s.Require().Len(rolls, 1)
	s.Equal(roll.ID, rolls[0].ID)

	response = s.do(http.MethodGet, "/api/rolls?user_id=someone-else", nil)
	s.Require().Equal(http.StatusOK, response.StatusCode)
	s.decode(response, &rolls)
	s.Empty(rolls)
}

func (s *HandlerTestSuite) TestRollClampsCount() {
	userID := s.createUser("Pippin")

	response := s.do(http.MethodPost, "/api/rolls", &CreateRollRequest{UserID: userID, Sides: 4, Count: 99})
	s.Require().Equal(http.StatusCreated, response.StatusCode)

	var roll models.Roll
	s.decode(response, &roll)
	s.Equal(models.MaxDiceCount, roll.DiceCount)
	s.Len(roll.Results, models.MaxDiceCount)
}

func (s *HandlerTestSuite) TestRollErrors() {
	userID := s.createUser("Sam")

	response := s.do(http.MethodPost, "/api/rolls", &CreateRollRequest{UserID: userID, Sides: 7, Count: 1})
	response.Body.Close()
	s.Equal(http.StatusBadRequest, response.StatusCode)

	response = s.do(http.MethodPost, "/api/rolls", &CreateRollRequest{Sides: 6, Count: 1})
	response.Body.Close()
	s.Equal(http.StatusBadRequest, response.StatusCode)

	response = s.do(http.MethodPost, "/api/rolls", &CreateRollRequest{UserID: "missing", Sides: 6, Count: 1})
	response.Body.Close()
	s.Equal(http.StatusNotFound, response.StatusCode)
}

func (s *HandlerTestSuite) TestRenameUser() {
	userID := s.createUser("Strider")

	response := s.do(http.MethodPatch, "/api/users/"+userID, &RenameUserRequest{UserName: "Aragorn"})
	response.Body.Close()
	s.Equal(http.StatusNoContent, response.StatusCode)

	response = s.do(http.MethodPost, "/api/rolls", &CreateRollRequest{UserID: userID, Sides: 20, Count: 1})
	var roll models.Roll
	s.decode(response, &roll)
	s.Equal("Aragorn", roll.UserName)

	response = s.do(http.MethodPatch, "/api/users/missing", &RenameUserRequest{UserName: "x"})
	response.Body.Close()
	s.Equal(http.StatusNotFound, response.StatusCode)
}

func (s *HandlerTestSuite) TestFeedStreamsInsertedRolls() {
	userID := s.createUser("Merry")

	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/api/rolls/feed"
	conn, _, err := websocket.DefaultDialer.DialContext(context.Background(), url, nil)
	s.Require().NoError(err)
	defer conn.Close()

	response := s.do(http.MethodPost, "/api/rolls", &CreateRollRequest{UserID: userID, Sides: 8, Count: 2})
	s.Require().Equal(http.StatusCreated, response.StatusCode)
	var stored models.Roll
	s.decode(response, &stored)

	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))

	var received models.Roll
	s.Require().NoError(conn.ReadJSON(&received))
	s.Equal(stored.ID, received.ID)
	s.Equal(stored.Results, received.Results)
	s.Equal(userID, received.UserID)
}
