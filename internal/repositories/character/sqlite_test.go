package character_test

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
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/repositories/character"
	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/testutils"
)

type SQLiteRepositoryTestSuite struct {
	suite.Suite
	db      *sqlx.DB
	cleanup func()
	repo    character.Repository
	ctx     context.Context
}

func (s *SQLiteRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db, s.cleanup = testutils.CreateTestDB(s.T())

	campaigns, err := campaign.NewSQLite(&campaign.Config{
		DB:    s.db,
		Clock: clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	})
	s.Require().NoError(err)
	_, err = campaigns.Create(s.ctx, campaign.CreateInput{
		Campaign: &entities.Campaign{ID: "camp_1", AccountID: "acct_1", Name: "Test"},
	})
	s.Require().NoError(err)

	s.repo, err = character.NewSQLite(&character.Config{DB: s.db})
	s.Require().NoError(err)
}

func (s *SQLiteRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *SQLiteRepositoryTestSuite) newCharacter() *entities.Character {
	return &entities.Character{
		ID:            "char_1",
		CampaignID:    "camp_1",
		Name:          "Brynn",
		CurrentHealth: 30,
		MaxHealth:     30,
		Attack:        10,
		Defense:       6,
		WeaponID:      "wpn_rusty_sword",
		ArmorID:       "arm_leather",
	}
}

func (s *SQLiteRepositoryTestSuite) TestCreateHydratesEquipment() {
	out, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter()})
	s.Require().NoError(err)

	s.Require().NotNil(out.Character.Weapon)
	s.Equal("Rusty Sword", out.Character.Weapon.Name)
	s.Equal(2, out.Character.WeaponBonus())
	s.Require().NotNil(out.Character.Armor)
	s.Equal(5, out.Character.ArmorBonus())
	s.Nil(out.Character.Shield)
	s.Equal(0, out.Character.ShieldBonus())
}

func (s *SQLiteRepositoryTestSuite) TestGetByCampaign() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter()})
	s.Require().NoError(err)

	out, err := s.repo.GetByCampaign(s.ctx, character.GetByCampaignInput{CampaignID: "camp_1"})
	s.Require().NoError(err)
	s.Equal("char_1", out.Character.ID)
	s.Equal(12, out.Character.EffectiveAttack())
	s.Equal(35, out.Character.EffectiveMaxHealth())
}

func (s *SQLiteRepositoryTestSuite) TestGetByCampaignMissing() {
	_, err := s.repo.GetByCampaign(s.ctx, character.GetByCampaignInput{CampaignID: "camp_empty"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *SQLiteRepositoryTestSuite) TestUpdatePersistsHealth() {
	created, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter()})
	s.Require().NoError(err)

	ch := *created.Character
	applied := ch.ApplyHealthDelta(-12)
	s.Equal(-12, applied)

	_, err = s.repo.Update(s.ctx, character.UpdateInput{Character: &ch})
	s.Require().NoError(err)

	got, err := s.repo.GetByCampaign(s.ctx, character.GetByCampaignInput{CampaignID: "camp_1"})
	s.Require().NoError(err)
	s.Equal(18, got.Character.CurrentHealth)
}

func (s *SQLiteRepositoryTestSuite) TestEquipReplacesSlot() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter()})
	s.Require().NoError(err)

	out, err := s.repo.Equip(s.ctx, character.EquipInput{
		CampaignID:  "camp_1",
		EquipmentID: "wpn_iron_axe",
	})
	s.Require().NoError(err)
	s.Equal("wpn_iron_axe", out.Character.WeaponID)
	s.Equal(4, out.Character.WeaponBonus())
	// Other slots untouched.
	s.Equal("arm_leather", out.Character.ArmorID)
}

func (s *SQLiteRepositoryTestSuite) TestEquipUnknownEquipment() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.newCharacter()})
	s.Require().NoError(err)

	_, err = s.repo.Equip(s.ctx, character.EquipInput{
		CampaignID:  "camp_1",
		EquipmentID: "wpn_vorpal",
	})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func TestSQLiteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositoryTestSuite))
}
