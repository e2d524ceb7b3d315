package campaign_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/errors"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/pkg/clock"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/campaign"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/testutils"
)

type SQLiteRepositoryTestSuite struct {
	suite.Suite
	db      *sqlx.DB
	cleanup func()
	clock   *clock.Fixed
	repo    campaign.Repository
	ctx     context.Context
}

func (s *SQLiteRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db, s.cleanup = testutils.CreateTestDB(s.T())
	s.clock = clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	var err error
	s.repo, err = campaign.NewSQLite(&campaign.Config{DB: s.db, Clock: s.clock})
	s.Require().NoError(err)
}

func (s *SQLiteRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *SQLiteRepositoryTestSuite) TestCreateAndGet() {
	created, err := s.repo.Create(s.ctx, campaign.CreateInput{
		Campaign: &entities.Campaign{
			ID:        "camp_1",
			AccountID: "acct_1",
			Name:      "Into the Deep",
		},
	})
	s.Require().NoError(err)
	s.Equal(entities.CampaignActive, created.Campaign.State)
	s.Equal(s.clock.T, created.Campaign.CreatedAt)

	got, err := s.repo.Get(s.ctx, campaign.GetInput{ID: "camp_1"})
	s.Require().NoError(err)
	s.Equal("Into the Deep", got.Campaign.Name)
	s.Equal("acct_1", got.Campaign.AccountID)
}

func (s *SQLiteRepositoryTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, campaign.GetInput{ID: "camp_nope"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *SQLiteRepositoryTestSuite) TestUpdateState() {
	created, err := s.repo.Create(s.ctx, campaign.CreateInput{
		Campaign: &entities.Campaign{ID: "camp_1", AccountID: "acct_1", Name: "Run"},
	})
	s.Require().NoError(err)

	s.clock.T = s.clock.T.Add(time.Hour)
	c := *created.Campaign
	c.State = entities.CampaignGameOver
	updated, err := s.repo.Update(s.ctx, campaign.UpdateInput{Campaign: &c})
	s.Require().NoError(err)
	s.Equal(s.clock.T, updated.Campaign.UpdatedAt)

	got, err := s.repo.Get(s.ctx, campaign.GetInput{ID: "camp_1"})
	s.Require().NoError(err)
	s.Equal(entities.CampaignGameOver, got.Campaign.State)
}

func (s *SQLiteRepositoryTestSuite) TestUpdateMissing() {
	_, err := s.repo.Update(s.ctx, campaign.UpdateInput{
		Campaign: &entities.Campaign{ID: "camp_nope", AccountID: "acct_1"},
	})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *SQLiteRepositoryTestSuite) TestListByAccount() {
	for i, id := range []string{"camp_a", "camp_b"} {
		s.clock.T = s.clock.T.Add(time.Duration(i) * time.Minute)
		_, err := s.repo.Create(s.ctx, campaign.CreateInput{
			Campaign: &entities.Campaign{ID: id, AccountID: "acct_1", Name: id},
		})
		s.Require().NoError(err)
	}
	_, err := s.repo.Create(s.ctx, campaign.CreateInput{
		Campaign: &entities.Campaign{ID: "camp_other", AccountID: "acct_2", Name: "other"},
	})
	s.Require().NoError(err)

	out, err := s.repo.ListByAccount(s.ctx, campaign.ListByAccountInput{AccountID: "acct_1"})
	s.Require().NoError(err)
	s.Require().Len(out.Campaigns, 2)
	// Newest first.
	s.Equal("camp_b", out.Campaigns[0].ID)
	s.Equal("camp_a", out.Campaigns[1].ID)
}

func TestSQLiteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositoryTestSuite))
}
