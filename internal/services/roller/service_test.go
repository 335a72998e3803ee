package roller

import (
	"context"
	"errors"
	"testing"

	"github.com/KirkDiggler/dicetray/internal/common/profile"
	"github.com/KirkDiggler/dicetray/internal/dice"
	diceMocks "github.com/KirkDiggler/dicetray/internal/dice/mocks"
	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/KirkDiggler/dicetray/internal/repositories/history"
	historyMocks "github.com/KirkDiggler/dicetray/internal/repositories/history/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type RollerServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockRepo       *historyMocks.MockRepository
	mockDiceRoller *diceMocks.MockRoller
	service        Service
	ctx            context.Context

	// Test data
	testUserID   string
	testUserName string
}

func (s *RollerServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockRepo = historyMocks.NewMockRepository(s.mockCtrl)
	s.mockDiceRoller = diceMocks.NewMockRoller(s.mockCtrl)
	s.ctx = context.Background()

	s.testUserID = "test-user-id"
	s.testUserName = "Test Roller"

	svc, err := New(&Config{
		Repository: s.mockRepo,
		DiceRoller: s.mockDiceRoller,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *RollerServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestRollerServiceSuite(t *testing.T) {
	suite.Run(t, new(RollerServiceTestSuite))
}

func (s *RollerServiceTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{DiceRoller: s.mockDiceRoller})
	s.ErrorIs(err, ErrNilRepository)

	_, err = New(&Config{Repository: s.mockRepo})
	s.ErrorIs(err, ErrNilDiceRoller)
}

func (s *RollerServiceTestSuite) TestEnsureUserUsesCachedID() {
	store := profile.NewMemory()
	s.Require().NoError(store.Set(profile.KeyUserID, s.testUserID))

	// No repository call expected
	output, err := s.service.EnsureUser(s.ctx, &EnsureUserInput{
		Profile:  store,
		UserName: s.testUserName,
	})
	s.Require().NoError(err)
	s.Equal(s.testUserID, output.UserID)
	s.False(output.Created)
}

func (s *RollerServiceTestSuite) TestEnsureUserCreatesAndCaches() {
	store := profile.NewMemory()

	s.mockRepo.EXPECT().
		CreateUser(s.ctx, &history.CreateUserInput{UserName: s.testUserName}).
		Return(&history.CreateUserOutput{
			User: &models.User{ID: s.testUserID, UserName: s.testUserName},
		}, nil)

	output, err := s.service.EnsureUser(s.ctx, &EnsureUserInput{
		Profile:  store,
		UserName: "  " + s.testUserName + " ",
	})
	s.Require().NoError(err)
	s.Equal(s.testUserID, output.UserID)
	s.True(output.Created)

	cached, err := store.Get(profile.KeyUserID)
	s.Require().NoError(err)
	s.Equal(s.testUserID, cached)

	// Second call is served from the profile
	output, err = s.service.EnsureUser(s.ctx, &EnsureUserInput{Profile: store})
	s.Require().NoError(err)
	s.False(output.Created)
}

func (s *RollerServiceTestSuite) TestEnsureUserFailure() {
	store := profile.NewMemory()

	s.mockRepo.EXPECT().
		CreateUser(s.ctx, gomock.Any()).
		Return(nil, errors.New("connection refused"))

	_, err := s.service.EnsureUser(s.ctx, &EnsureUserInput{Profile: store})
	s.ErrorIs(err, ErrUserUnavailable)

	_, err = store.Get(profile.KeyUserID)
	s.ErrorIs(err, profile.ErrNotFound)

	_, err = s.service.EnsureUser(s.ctx, &EnsureUserInput{})
	s.ErrorIs(err, ErrNilProfile)
}

func (s *RollerServiceTestSuite) TestRenameUser() {
	s.mockRepo.EXPECT().
		UpdateUserName(s.ctx, &history.UpdateUserNameInput{UserID: s.testUserID, UserName: "Aragorn"}).
		Return(nil)

	_, err := s.service.RenameUser(s.ctx, &RenameUserInput{UserID: s.testUserID, UserName: " Aragorn "})
	s.Require().NoError(err)

	s.mockRepo.EXPECT().
		UpdateUserName(s.ctx, gomock.Any()).
		Return(history.ErrUserNotFound)

	_, err = s.service.RenameUser(s.ctx, &RenameUserInput{UserID: "missing", UserName: "x"})
	s.ErrorIs(err, history.ErrUserNotFound)

	_, err = s.service.RenameUser(s.ctx, &RenameUserInput{})
	s.ErrorIs(err, ErrMissingUserID)
}

func (s *RollerServiceTestSuite) TestRollDiceSingleDie() {
	s.mockDiceRoller.EXPECT().Roll(20).Return(17)

	output, err := s.service.RollDice(s.ctx, &RollDiceInput{Sides: 20, Count: 1})
	s.Require().NoError(err)
	s.Equal("D20", output.Roll.DiceType)
	s.Equal([]int{17}, output.Roll.Results)
	s.Equal(17, output.Roll.Total)
}

func (s *RollerServiceTestSuite) TestRollDiceManyDice() {
	s.mockDiceRoller.EXPECT().RollMany(6, 3).Return(&dice.Result{Results: []int{1, 4, 6}, Total: 11})

	output, err := s.service.RollDice(s.ctx, &RollDiceInput{Sides: 6, Count: 3})
	s.Require().NoError(err)
	s.Equal("3D6", output.Roll.DiceType)
	s.Equal(3, output.Roll.DiceCount)
	s.Equal([]int{1, 4, 6}, output.Roll.Results)
	s.Equal(11, output.Roll.Total)
}

func (s *RollerServiceTestSuite) TestRollDiceClampsCount() {
	many := make([]int, models.MaxDiceCount)
	for i := range many {
		many[i] = 2
	}
	s.mockDiceRoller.EXPECT().RollMany(4, models.MaxDiceCount).Return(&dice.Result{Results: many, Total: 40})
	s.mockDiceRoller.EXPECT().Roll(4).Return(3)

	output, err := s.service.RollDice(s.ctx, &RollDiceInput{Sides: 4, Count: 99})
	s.Require().NoError(err)
	s.Equal(models.MaxDiceCount, output.Roll.DiceCount)

	output, err = s.service.RollDice(s.ctx, &RollDiceInput{Sides: 4, Count: -2})
	s.Require().NoError(err)
	s.Equal(1, output.Roll.DiceCount)
}

func (s *RollerServiceTestSuite) TestRollDiceRejectsUnknownDie() {
	_, err := s.service.RollDice(s.ctx, &RollDiceInput{Sides: 7, Count: 1})
	s.ErrorIs(err, ErrUnsupportedDie)
}

func (s *RollerServiceTestSuite) TestSaveRoll() {
	roll := models.NewRoll("", 8, []int{5})

	s.mockRepo.EXPECT().
		StoreRoll(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, input *history.StoreRollInput) (*history.StoreRollOutput, error) {
			s.Equal(s.testUserID, input.Roll.UserID)
			stored := input.Roll.Clone()
			stored.ID = "roll-1"
			stored.UserName = s.testUserName
			return &history.StoreRollOutput{Roll: stored}, nil
		})

	output, err := s.service.SaveRoll(s.ctx, &SaveRollInput{UserID: s.testUserID, Roll: roll})
	s.Require().NoError(err)
	s.Equal("roll-1", output.Roll.ID)
	s.Equal(s.testUserName, output.Roll.UserName)

	// The caller's roll is untouched
	s.Empty(roll.UserID)

	_, err = s.service.SaveRoll(s.ctx, &SaveRollInput{Roll: roll})
	s.ErrorIs(err, ErrMissingUserID)
}

func (s *RollerServiceTestSuite) TestSaveRollFailure() {
	s.mockRepo.EXPECT().
		StoreRoll(s.ctx, gomock.Any()).
		Return(nil, errors.New("connection refused"))

	_, err := s.service.SaveRoll(s.ctx, &SaveRollInput{
		UserID: s.testUserID,
		Roll:   models.NewRoll("", 8, []int{5}),
	})
	s.Error(err)
}

func (s *RollerServiceTestSuite) TestGetHistory() {
	rolls := []*models.Roll{models.NewRoll(s.testUserID, 6, []int{2})}

	s.mockRepo.EXPECT().
		ListRolls(s.ctx, &history.ListRollsInput{UserID: s.testUserID, Limit: models.HistoryLimit}).
		Return(&history.ListRollsOutput{Rolls: rolls}, nil)

	output, err := s.service.GetHistory(s.ctx, &GetHistoryInput{UserID: s.testUserID})
	s.Require().NoError(err)
	s.Equal(rolls, output.Rolls)
}

func (s *RollerServiceTestSuite) TestWatchRolls() {
	sub := historyMocks.NewMockSubscription(s.mockCtrl)

	s.mockRepo.EXPECT().
		Subscribe(s.ctx, gomock.Any()).
		Return(sub, nil)

	output, err := s.service.WatchRolls(s.ctx, &WatchRollsInput{OnRoll: func(*models.Roll) {}})
	s.Require().NoError(err)
	s.Equal(sub, output.Subscription)

	_, err = s.service.WatchRolls(s.ctx, &WatchRollsInput{})
	s.Error(err)
}
