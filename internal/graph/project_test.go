package graph

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewStore(conn), mock
}

func TestBuildJobGraphLabelsCompanyEdgePostsJob(t *testing.T) {
	store, mock := newMockStore(t)

	// nodes upsert in declaration order: job, company, then attributes
	for _, args := range [][]driver.Value{
		{NodeJob, "job_1", sqlmock.AnyArg()},
		{NodeCompany, "company_3", sqlmock.AnyArg()},
		{NodeSkill, "skill_go", sqlmock.AnyArg()},
		{NodeBenefit, "benefit_gym membership", sqlmock.AnyArg()},
	} {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO graph_nodes")).
			WithArgs(args...).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	edges := []struct {
		srcType, srcID string
		tgtType, tgtID string
		edgeType       string
	}{
		{NodeCompany, "company_3", NodeJob, "job_1", RelPostsJob},
		{NodeJob, "job_1", NodeSkill, "skill_go", RelRequiresSkill},
		{NodeJob, "job_1", NodeBenefit, "benefit_gym membership", RelOffersBenefit},
	}
	for i, e := range edges {
		srcID := int64(i*2 + 1)
		tgtID := int64(i*2 + 2)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM graph_nodes")).
			WithArgs(e.srcType, e.srcID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(srcID))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM graph_nodes")).
			WithArgs(e.tgtType, e.tgtID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(tgtID))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO graph_edges")).
			WithArgs(srcID, tgtID, e.edgeType, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	err := store.BuildJobGraph(context.Background(), &JobProfile{
		JobID:          1,
		Title:          "Backend Engineer",
		CompanyID:      3,
		CompanyName:    "Acme",
		RequiredSkills: []string{"Go"},
		Benefits:       []string{"Gym Membership"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildJobGraphSkipsBlankAttributeValues(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO graph_nodes")).
		WithArgs(NodeJob, "job_5", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.BuildJobGraph(context.Background(), &JobProfile{
		JobID:          5,
		Title:          "Analyst",
		RequiredSkills: []string{"  ", ""},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "blank values create no nodes or edges")
}
