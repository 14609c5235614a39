package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/artemivanov/shortlink/internal/entity"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
)

type ShortLinkRepositoryTestSuite struct {
	suite.Suite
	errUnknown      error
	errAffectedRows error
	columns         []string
	mock            sqlmock.Sqlmock
	repo            *ShortLinkRepository
}

func (suite *ShortLinkRepositoryTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
	suite.errAffectedRows = errors.New("affected rows error")
	suite.columns = []string{"id", "short_code", "original_url", "access_count", "created_at", "updated_at"}
}

func (suite *ShortLinkRepositoryTestSuite) SetupSubTest() {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		suite.T().Fatalf("Failed to create mock database: %v", err)
	}
	suite.T().Cleanup(func() {
		mockDB.Close()
	})

	db := sqlx.NewDb(mockDB, "sqlmock")
	suite.T().Cleanup(func() {
		db.Close()
	})

	suite.mock = mock
	suite.repo = NewShortLinkRepository(db)
}

func (suite *ShortLinkRepositoryTestSuite) TearDownSubTest() {
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *ShortLinkRepositoryTestSuite) TestSave() {
	suite.Run("short code exists", func() {
		suite.mock.ExpectQuery(`INSERT INTO short_links`).
			WithArgs("abc123", "https://example.com").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationErrCode})

		link, err := suite.repo.Save(context.Background(), "abc123", "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrShortCodeExists)
		suite.Nil(link)
	})

	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`INSERT INTO short_links`).
			WithArgs("abc123", "https://example.com").
			WillReturnError(suite.errUnknown)

		link, err := suite.repo.Save(context.Background(), "abc123", "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(link)
	})

	suite.Run("success", func() {
		rows := sqlmock.NewRows(suite.columns).
			AddRow(0, "abc123", "https://example.com", 0, time.Time{}, time.Time{})

		suite.mock.ExpectQuery(`INSERT INTO short_links`).
			WithArgs("abc123", "https://example.com").
			WillReturnRows(rows)

		link, err := suite.repo.Save(context.Background(), "abc123", "https://example.com")

		suite.NoError(err)
		suite.NotNil(link)
		suite.Equal("abc123", link.ShortCode)
		suite.Equal("https://example.com", link.OriginalURL)
		suite.Zero(link.AccessCount)
	})
}

func (suite *ShortLinkRepositoryTestSuite) TestRetrieveByShortCode() {
	suite.Run("short link not found", func() {
		suite.mock.ExpectQuery(`SELECT (.+) FROM short_links`).
			WithArgs("abc123").
			WillReturnError(sql.ErrNoRows)

		link, err := suite.repo.RetrieveByShortCode(context.Background(), "abc123")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrLinkNotFound)
		suite.Nil(link)
	})

	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`SELECT (.+) FROM short_links`).
			WithArgs("abc123").
			WillReturnError(suite.errUnknown)

		link, err := suite.repo.RetrieveByShortCode(context.Background(), "abc123")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(link)
	})

	suite.Run("success", func() {
		rows := sqlmock.NewRows(suite.columns).
			AddRow(0, "abc123", "https://example.com", 0, time.Time{}, time.Time{})

		suite.mock.ExpectQuery(`SELECT (.+) FROM short_links`).
			WithArgs("abc123").
			WillReturnRows(rows)

		link, err := suite.repo.RetrieveByShortCode(context.Background(), "abc123")

		suite.NoError(err)
		suite.NotNil(link)
		suite.Equal("abc123", link.ShortCode)
		suite.Equal("https://example.com", link.OriginalURL)
		suite.Zero(link.AccessCount)
	})
}

func (suite *ShortLinkRepositoryTestSuite) TestRetrieveAndUpdateStats() {
	suite.Run("short link not found", func() {
		suite.mock.ExpectQuery(`UPDATE short_links`).
			WithArgs("abc123").
			WillReturnError(sql.ErrNoRows)

		link, err := suite.repo.RetrieveAndUpdateStats(context.Background(), "abc123")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrLinkNotFound)
		suite.Nil(link)
	})

	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`UPDATE short_links`).
			WithArgs("abc123").
			WillReturnError(suite.errUnknown)

		link, err := suite.repo.RetrieveAndUpdateStats(context.Background(), "abc123")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(link)
	})

	suite.Run("success", func() {
		rows := sqlmock.NewRows(suite.columns).
			AddRow(0, "abc123", "https://example.com", 1, time.Time{}, time.Time{})

		suite.mock.ExpectQuery(`UPDATE short_links`).
			WithArgs("abc123").
			WillReturnRows(rows)

		link, err := suite.repo.RetrieveAndUpdateStats(context.Background(), "abc123")

		suite.NoError(err)
		suite.NotNil(link)
		suite.Equal("abc123", link.ShortCode)
		suite.Equal("https://example.com", link.OriginalURL)
		suite.Equal(int64(1), link.AccessCount)
	})
}

func (suite *ShortLinkRepositoryTestSuite) TestUpdate() {
	suite.Run("short link not found", func() {
		suite.mock.ExpectQuery(`UPDATE short_links`).
			WithArgs("https://new-example.com", "abc123").
			WillReturnError(sql.ErrNoRows)

		link, err := suite.repo.Update(context.Background(), "abc123", "https://new-example.com")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrLinkNotFound)
		suite.Nil(link)
	})

	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`UPDATE short_links`).
			WithArgs("https://new-example.com", "abc123").
			WillReturnError(suite.errUnknown)

		link, err := suite.repo.Update(context.Background(), "abc123", "https://new-example.com")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(link)
	})

	suite.Run("success", func() {
		rows := sqlmock.NewRows(suite.columns).
			AddRow(0, "abc123", "https://new-example.com", 0, time.Time{}, time.Time{})

		suite.mock.ExpectQuery(`UPDATE short_links`).
			WithArgs("https://new-example.com", "abc123").
			WillReturnRows(rows)

		link, err := suite.repo.Update(context.Background(), "abc123", "https://new-example.com")

		suite.NoError(err)
		suite.NotNil(link)
		suite.Equal("abc123", link.ShortCode)
		suite.Equal("https://new-example.com", link.OriginalURL)
		suite.Zero(link.AccessCount)
	})
}

func (suite *ShortLinkRepositoryTestSuite) TestRemove() {
	suite.Run("unknown error", func() {
		suite.mock.ExpectExec(`DELETE FROM short_links`).
			WithArgs("abc123").
			WillReturnError(suite.errUnknown)

		err := suite.repo.Remove(context.Background(), "abc123")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
	})

	suite.Run("rows affected error", func() {
		suite.mock.ExpectExec(`DELETE FROM short_links`).
			WithArgs("abc123").
			WillReturnResult(sqlmock.NewErrorResult(suite.errAffectedRows))

		err := suite.repo.Remove(context.Background(), "abc123")

		suite.Error(err)
		suite.ErrorIs(err, suite.errAffectedRows)
	})

	suite.Run("short link not found", func() {
		suite.mock.ExpectExec(`DELETE FROM short_links`).
			WithArgs("abc123").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := suite.repo.Remove(context.Background(), "abc123")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrLinkNotFound)
	})

	suite.Run("success", func() {
		suite.mock.ExpectExec(`DELETE FROM short_links`).
			WithArgs("abc123").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := suite.repo.Remove(context.Background(), "abc123")

		suite.NoError(err)
	})
}

func TestShortLinkRepository(t *testing.T) {
	suite.Run(t, new(ShortLinkRepositoryTestSuite))
}
