package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/KirkDiggler/dicetray/internal/models"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/suite"
)

type SQLiteRepositoryTestSuite struct {
	suite.Suite
	dsn     string
	repo    *sqliteRepository
	testNow time.Time
}

func (s *SQLiteRepositoryTestSuite) SetupTest() {
	s.dsn = "file:" + filepath.Join(s.T().TempDir(), "history.db")
	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)

	repo, err := NewSQLite(&SQLiteConfig{
		DSN:   s.dsn,
		Clock: newTickClock(s.testNow),
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *SQLiteRepositoryTestSuite) TearDownTest() {
	s.Require().NoError(s.repo.Close())
}

func TestSQLiteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositoryTestSuite))
}

func (s *SQLiteRepositoryTestSuite) createUser(name string) string {
	output, err := s.repo.CreateUser(context.Background(), &CreateUserInput{
		UserName: name,
	})
	s.Require().NoError(err)
	return output.User.ID
}

func (s *SQLiteRepositoryTestSuite) storeRoll(userID string, sides int, results ...int) *models.Roll {
	output, err := s.repo.StoreRoll(context.Background(), &StoreRollInput{
		Roll: models.NewRoll(userID, sides, results),
	})
	s.Require().NoError(err)
	return output.Roll
}

func (s *SQLiteRepositoryTestSuite) TestNewSQLiteValidatesConfig() {
	_, err := NewSQLite(nil)
	s.Error(err)

	_, err = NewSQLite(&SQLiteConfig{})
	s.Error(err)
}

func (s *SQLiteRepositoryTestSuite) TestIDsAreULIDs() {
	userID := s.createUser("Gimli")
	_, err := ulid.ParseStrict(userID)
	s.NoError(err)

	roll := s.storeRoll(userID, 10, 7)
	_, err = ulid.ParseStrict(roll.ID)
	s.NoError(err)
}

func (s *SQLiteRepositoryTestSuite) TestStoreAndListRolls() {
	userID := s.createUser("Gandalf")

	first := s.storeRoll(userID, 20, 17)
	second := s.storeRoll(userID, 6, 1, 4, 6)
	s.Equal("Gandalf", second.UserName)

	output, err := s.repo.ListRolls(context.Background(), &ListRollsInput{})
	s.Require().NoError(err)
	s.Require().Len(output.Rolls, 2)

	s.Equal(second.ID, output.Rolls[0].ID)
	s.Equal("3D6", output.Rolls[0].DiceType)
	s.Equal(3, output.Rolls[0].DiceCount)
	s.Equal([]int{1, 4, 6}, output.Rolls[0].Results)
	s.Equal(11, output.Rolls[0].Total)
	s.Equal("Gandalf", output.Rolls[0].UserName)
	s.True(s.testNow.Add(time.Second).Equal(output.Rolls[0].CreatedAt))

	s.Equal(first.ID, output.Rolls[1].ID)
	s.Equal([]int{17}, output.Rolls[1].Results)
	s.True(s.testNow.Equal(output.Rolls[1].CreatedAt))
}

func (s *SQLiteRepositoryTestSuite) TestListRollsFiltersByUser() {
	gandalf := s.createUser("Gandalf")
	frodo := s.createUser("")

	s.storeRoll(gandalf, 20, 3)
	s.storeRoll(frodo, 8, 8)

	output, err := s.repo.ListRolls(context.Background(), &ListRollsInput{UserID: frodo})
	s.Require().NoError(err)
	s.Require().Len(output.Rolls, 1)
	s.Equal(models.DefaultUserName, output.Rolls[0].UserName)
	s.Equal("D8", output.Rolls[0].DiceType)
}

func (s *SQLiteRepositoryTestSuite) TestListRollsIsCapped() {
	userID := s.createUser("Pippin")
	for i := 0; i < models.HistoryLimit+5; i++ {
		s.storeRoll(userID, 6, i%6+1)
	}

	output, err := s.repo.ListRolls(context.Background(), &ListRollsInput{})
	s.Require().NoError(err)
	s.Len(output.Rolls, models.HistoryLimit)

	output, err = s.repo.ListRolls(context.Background(), &ListRollsInput{Limit: 10})
	s.Require().NoError(err)
	s.Len(output.Rolls, 10)
}

func (s *SQLiteRepositoryTestSuite) TestUpdateUserName() {
	userID := s.createUser("Strider")
	s.storeRoll(userID, 12, 9)

	err := s.repo.UpdateUserName(context.Background(), &UpdateUserNameInput{
		UserID:   userID,
		UserName: "Aragorn",
	})
	s.Require().NoError(err)

	output, err := s.repo.ListRolls(context.Background(), &ListRollsInput{})
	s.Require().NoError(err)
	s.Equal("Aragorn", output.Rolls[0].UserName)

	err = s.repo.UpdateUserName(context.Background(), &UpdateUserNameInput{
		UserID:   "missing",
		UserName: "Nobody",
	})
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *SQLiteRepositoryTestSuite) TestStoreRollErrors() {
	_, err := s.repo.StoreRoll(context.Background(), &StoreRollInput{
		Roll: models.NewRoll("missing", 6, []int{3}),
	})
	s.ErrorIs(err, ErrUserNotFound)

	userID := s.createUser("Sam")
	_, err = s.repo.StoreRoll(context.Background(), &StoreRollInput{
		Roll: models.NewRoll(userID, 4, []int{5}),
	})
	s.ErrorIs(err, ErrInvalidRoll)
}

func (s *SQLiteRepositoryTestSuite) TestMigrationsAreIdempotent() {
	userID := s.createUser("Legolas")
	s.storeRoll(userID, 100, 42)

	reopened, err := NewSQLite(&SQLiteConfig{DSN: s.dsn})
	s.Require().NoError(err)
	defer reopened.Close()

	output, err := reopened.ListRolls(context.Background(), &ListRollsInput{})
	s.Require().NoError(err)
	s.Require().Len(output.Rolls, 1)
	s.Equal("Legolas", output.Rolls[0].UserName)
}

func (s *SQLiteRepositoryTestSuite) TestSubscribeDeliversInsertsInOrder() {
	userID := s.createUser("Merry")
	received := newCollector()

	sub, err := s.repo.Subscribe(context.Background(), &SubscribeInput{
		OnInsert: received.handle,
	})
	s.Require().NoError(err)

	var stored []*models.Roll
	for i := 1; i <= 3; i++ {
		stored = append(stored, s.storeRoll(userID, 6, i))
	}

	for _, want := range stored {
		got := received.next(2 * time.Second)
		s.Require().NotNil(got)
		s.Equal(want.ID, got.ID)
		s.Equal("Merry", got.UserName)
	}

	s.Require().NoError(sub.Unsubscribe())
	s.storeRoll(userID, 6, 6)
	s.Nil(received.next(100 * time.Millisecond))
}

func (s *SQLiteRepositoryTestSuite) TestSubscribeAfterClose() {
	reopened, err := NewSQLite(&SQLiteConfig{DSN: s.dsn})
	s.Require().NoError(err)
	s.Require().NoError(reopened.Close())

	_, err = reopened.Subscribe(context.Background(), &SubscribeInput{
		OnInsert: func(*models.Roll) {},
	})
	s.ErrorIs(err, ErrFeedClosed)
}
