//go:build unit
// +build unit

package v1

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/MGTheTrain/crypto-dispatch/internal/domain/journal"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testRecord(operation, outcome string) *journal.OperationRecord {
	return &journal.OperationRecord{
		ID:              uuid.NewString(),
		Operation:       operation,
		Algorithm:       "SHA-256",
		Outcome:         outcome,
		Duration:        1500 * time.Microsecond,
		DateTimeCreated: time.Now().UTC(),
	}
}

func TestJournalHandler_ListOperations(t *testing.T) {
	records := []*journal.OperationRecord{
		testRecord("digest", journal.OutcomeBuffer),
		testRecord("verify", journal.OutcomeBoolean),
	}

	t.Run("defaults", func(t *testing.T) {
		repo := new(MockJournalRepository)
		repo.On("List", mock.Anything, mock.MatchedBy(func(q *journal.OperationQuery) bool {
			return q.Limit == 100 && q.SortBy == "date_time_created" && q.SortOrder == "desc"
		})).Return(records, nil)
		server := setupTestServer(t, repo)

		w := server.do(t, "GET", "/operations", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		response := decode[[]OperationRecordResponse](t, w)
		require.Len(t, response, 2)
		assert.Equal(t, records[0].ID, response[0].ID)
		assert.Equal(t, int64(1500), response[0].DurationMicros)
		repo.AssertExpectations(t)
	})

	t.Run("filters", func(t *testing.T) {
		since := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		repo := new(MockJournalRepository)
		repo.On("List", mock.Anything, mock.MatchedBy(func(q *journal.OperationQuery) bool {
			return q.Operation == "verify" && q.Outcome == journal.OutcomeBoolean &&
				q.Since.Equal(since) && q.Limit == 5 && q.Offset == 10 &&
				q.SortBy == "duration" && q.SortOrder == "asc"
		})).Return(records[1:], nil)
		server := setupTestServer(t, repo)

		path := fmt.Sprintf("/operations?operation=verify&outcome=boolean&since=%s&limit=5&offset=10&sortBy=duration&sortOrder=asc",
			since.Format(time.RFC3339))
		w := server.do(t, "GET", path, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, decode[[]OperationRecordResponse](t, w), 1)
		repo.AssertExpectations(t)
	})

	badQueries := []string{
		"limit=ten",
		"limit=5000",
		"offset=-1",
		"since=yesterday",
		"sortBy=name",
		"sortOrder=up",
		"outcome=maybe",
	}
	for _, query := range badQueries {
		t.Run(query, func(t *testing.T) {
			repo := new(MockJournalRepository)
			server := setupTestServer(t, repo)

			w := server.do(t, "GET", "/operations?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockJournalRepository)
		repo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
		server := setupTestServer(t, repo)

		w := server.do(t, "GET", "/operations", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestJournalHandler_GetOperationByID(t *testing.T) {
	record := testRecord("digest", journal.OutcomeBuffer)
	missingID := uuid.NewString()

	repo := new(MockJournalRepository)
	repo.On("GetByID", mock.Anything, record.ID).Return(record, nil)
	repo.On("GetByID", mock.Anything, missingID).Return(nil, fmt.Errorf("%w: %s", journal.ErrRecordNotFound, missingID))
	server := setupTestServer(t, repo)

	w := server.do(t, "GET", "/operations/"+record.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	response := decode[OperationRecordResponse](t, w)
	assert.Equal(t, record.ID, response.ID)
	assert.Equal(t, "digest", response.Operation)
	assert.Equal(t, journal.OutcomeBuffer, response.Outcome)

	w = server.do(t, "GET", "/operations/"+missingID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
