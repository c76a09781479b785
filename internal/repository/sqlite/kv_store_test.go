package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/lessonflow/internal/repository"
	"github.com/vytor/lessonflow/internal/repository/sqlite"
	"github.com/vytor/lessonflow/internal/testutil"
)

type KVStoreSuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.KVStore
}

func (s *KVStoreSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewKVStore(s.db)
}

func (s *KVStoreSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *KVStoreSuite) TestGet_NotFoundIsEmptyState() {
	entry, err := s.repo.Get(context.Background(), "sequence/ana/l1")
	s.Require().NoError(err)
	s.Assert().Nil(entry)
}

func (s *KVStoreSuite) TestSetAndGet() {
	ctx := context.Background()

	applied, err := s.repo.Set(ctx, "sequence/ana/l1", []byte(`{"a":1}`), 1)
	s.Require().NoError(err)
	s.Assert().True(applied)

	entry, err := s.repo.Get(ctx, "sequence/ana/l1")
	s.Require().NoError(err)
	s.Require().NotNil(entry)
	s.Assert().JSONEq(`{"a":1}`, string(entry.Value))
	s.Assert().Equal(int64(1), entry.Revision)
}

func (s *KVStoreSuite) TestSet_StaleRevisionRejected() {
	ctx := context.Background()
	key := "activity/ana/q1"

	_, err := s.repo.Set(ctx, key, []byte("rev3"), 3)
	s.Require().NoError(err)

	applied, err := s.repo.Set(ctx, key, []byte("rev2"), 2)
	s.Require().NoError(err)
	s.Assert().False(applied)

	entry, err := s.repo.Get(ctx, key)
	s.Require().NoError(err)
	s.Assert().Equal("rev3", string(entry.Value))

	applied, err = s.repo.Set(ctx, key, []byte("rev4"), 4)
	s.Require().NoError(err)
	s.Assert().True(applied)

	entry, err = s.repo.Get(ctx, key)
	s.Require().NoError(err)
	s.Assert().Equal("rev4", string(entry.Value))
}

func (s *KVStoreSuite) TestSet_SameRevisionOverwrites() {
	ctx := context.Background()

	_, err := s.repo.Set(ctx, "k", []byte("a"), 5)
	s.Require().NoError(err)
	applied, err := s.repo.Set(ctx, "k", []byte("b"), 5)
	s.Require().NoError(err)
	s.Assert().True(applied)
}

func (s *KVStoreSuite) TestUpdate() {
	ctx := context.Background()
	key := "day/ana/2026-10-17"

	err := s.repo.Update(ctx, key, func(current []byte, found bool) ([]byte, error) {
		s.Assert().False(found)
		return []byte("1"), nil
	})
	s.Require().NoError(err)

	err = s.repo.Update(ctx, key, func(current []byte, found bool) ([]byte, error) {
		s.Assert().True(found)
		return append(current, '2'), nil
	})
	s.Require().NoError(err)

	entries, err := s.repo.List(ctx, key)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Assert().Equal("12", string(entries[0].Value))
	s.Assert().Equal(int64(2), entries[0].Revision)
}

func (s *KVStoreSuite) TestUpdate_ErrorRollsBack() {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.repo.Update(ctx, "k", func([]byte, bool) ([]byte, error) { return nil, boom })
	s.Assert().ErrorIs(err, boom)

	entry, err := s.repo.Get(ctx, "k")
	s.Require().NoError(err)
	s.Assert().Nil(entry)
}

func (s *KVStoreSuite) TestList_ByPrefix() {
	ctx := context.Background()
	for _, key := range []string{
		"day/ana/2026-10-16",
		"day/ana/2026-10-15",
		"day/ana_b/2026-10-15",
		"day/bob/2026-10-15",
		"sequence/ana/l1",
	} {
		_, err := s.repo.Set(ctx, key, []byte("x"), 1)
		s.Require().NoError(err)
	}

	entries, err := s.repo.List(ctx, "day/ana/")
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Assert().Equal("day/ana/2026-10-15", entries[0].Key)
	s.Assert().Equal("day/ana/2026-10-16", entries[1].Key)

	all, err := s.repo.List(ctx, "")
	s.Require().NoError(err)
	s.Assert().Len(all, 5)
}

func TestKVStoreSuite(t *testing.T) {
	suite.Run(t, new(KVStoreSuite))
}
